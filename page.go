package uilang

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ErrInvalidSelector is returned for selectors cascadia cannot compile.
var ErrInvalidSelector = errors.New("invalid selector")

// DefaultInstructionSelector selects the elements searched for instruction
// text.
const DefaultInstructionSelector = "code"

// Page is an HTML document with click listeners. It implements Document.
type Page struct {
	// InstructionSelector selects the candidate elements for Instruction. If
	// empty, DefaultInstructionSelector is used.
	InstructionSelector string
	Logger              *slog.Logger
	Stylesheets         []*Stylesheet

	doc       *goquery.Document
	listeners map[*html.Node][]Listener
	selectors map[string]cascadia.Selector
}

// NewPage wraps doc.
func NewPage(doc *goquery.Document) *Page {
	return &Page{
		doc:       doc,
		listeners: make(map[*html.Node][]Listener),
		selectors: make(map[string]cascadia.Selector),
	}
}

// Document returns the underlying goquery document.
func (p *Page) Document() *goquery.Document {
	return p.doc
}

func (p *Page) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.Logger
}

func (p *Page) compile(selector string) (cascadia.Selector, error) {
	selector = strings.TrimSpace(selector)
	if sel, ok := p.selectors[selector]; ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSelector, selector, err)
	}
	p.selectors[selector] = sel
	return sel, nil
}

// QueryAll returns all elements of the page matching selector.
func (p *Page) QueryAll(selector string) ([]*html.Node, error) {
	sel, err := p.compile(selector)
	if err != nil {
		return nil, err
	}
	return p.doc.FindMatcher(sel).Nodes, nil
}

// AddClass adds class to n.
func (p *Page) AddClass(n *html.Node, class string) { addClass(n, class) }

// RemoveClass removes class from n.
func (p *Page) RemoveClass(n *html.Node, class string) { removeClass(n, class) }

// ToggleClass adds class to n if it is missing and removes it otherwise.
func (p *Page) ToggleClass(n *html.Node, class string) { toggleClass(n, class) }

// OnClick registers l on n. Listeners on one element run in registration
// order.
func (p *Page) OnClick(n *html.Node, l Listener) {
	p.listeners[n] = append(p.listeners[n], l)
}

// Click dispatches a click on the element n. The event bubbles from n to the
// document root. All listener errors are joined into the returned error; the
// event is returned in any case.
func (p *Page) Click(n *html.Node) (*Event, error) {
	if n == nil || n.Type != html.ElementNode {
		return nil, errors.New("click: not an element")
	}
	ev := &Event{Target: n}
	var errs []error
	for cur := n; cur != nil; cur = cur.Parent {
		ls := p.listeners[cur]
		if len(ls) == 0 {
			continue
		}
		ev.CurrentTarget = cur
		for _, l := range ls {
			if err := l(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	ev.CurrentTarget = nil
	return ev, errors.Join(errs...)
}

// ClickAll clicks every element matching selector in document order and
// returns the events.
func (p *Page) ClickAll(selector string) ([]*Event, error) {
	nodes, err := p.QueryAll(selector)
	if err != nil {
		return nil, err
	}
	var events []*Event
	var errs []error
	for _, n := range nodes {
		ev, err := p.Click(n)
		if err != nil {
			errs = append(errs, err)
		}
		events = append(events, ev)
	}
	return events, errors.Join(errs...)
}

// Instruction looks for the first candidate element whose text starts with
// the trigger phrase, removes it from the page and returns its trimmed text.
func (p *Page) Instruction() (string, bool) {
	selector := p.InstructionSelector
	if selector == "" {
		selector = DefaultInstructionSelector
	}
	var text string
	var found bool
	p.doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		t := strings.TrimSpace(sel.Text())
		if !strings.HasPrefix(t, TriggerPhrase) {
			return true
		}
		sel.Remove()
		text, found = t, true
		return false
	})
	return text, found
}

// Activate finds the instruction of the page and binds all of its clauses. A
// page without instruction is not an error.
func (p *Page) Activate() ([]*Binding, error) {
	text, ok := p.Instruction()
	if !ok {
		p.logger().Debug("no instruction found")
		return nil, nil
	}
	b := &Binder{Doc: p, Logger: p.Logger}
	return b.BindInstructions(text)
}

// HTML renders the current state of the page.
func (p *Page) HTML() (string, error) {
	return p.doc.Html()
}
