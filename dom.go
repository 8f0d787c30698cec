package uilang

import (
	"strings"

	"golang.org/x/net/html"
)

// ElementFinder resolves a CSS selector against the whole document. Elements
// are returned in document order.
type ElementFinder interface {
	QueryAll(selector string) ([]*html.Node, error)
}

// ClassMutator changes the class list of an element.
type ClassMutator interface {
	AddClass(n *html.Node, class string)
	RemoveClass(n *html.Node, class string)
	ToggleClass(n *html.Node, class string)
}

// EventSubscriber registers click listeners on elements.
type EventSubscriber interface {
	OnClick(n *html.Node, l Listener)
}

// Document is everything the Binder needs from a page.
type Document interface {
	ElementFinder
	ClassMutator
	EventSubscriber
}

// Listener handles one click. A returned error is reported to whoever
// dispatched the click and does not stop other listeners.
type Listener func(ev *Event) error

// Event is a click travelling from the clicked element up to the root.
type Event struct {
	// Target is the element that was actually clicked.
	Target *html.Node
	// CurrentTarget is the element whose listener is running.
	CurrentTarget *html.Node

	defaultPrevented bool
}

// PreventDefault marks the default action of the click (following a link) as
// cancelled.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// classList returns the class tokens of n without duplicates.
func classList(n *html.Node) []string {
	val, _ := attr(n, "class")
	ret := []string{}
	seen := map[string]bool{}
	for _, c := range strings.Fields(val) {
		if !seen[c] {
			seen[c] = true
			ret = append(ret, c)
		}
	}
	return ret
}

// HasClass reports whether the element n carries class.
func HasClass(n *html.Node, class string) bool {
	val, _ := attr(n, "class")
	for _, c := range strings.Fields(val) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	setAttr(n, "class", strings.Join(append(classList(n), class), " "))
}

func removeClass(n *html.Node, class string) {
	if !HasClass(n, class) {
		return
	}
	var ret []string
	for _, c := range classList(n) {
		if c != class {
			ret = append(ret, c)
		}
	}
	setAttr(n, "class", strings.Join(ret, " "))
}

func toggleClass(n *html.Node, class string) {
	if HasClass(n, class) {
		removeClass(n, class)
	} else {
		addClass(n, class)
	}
}
