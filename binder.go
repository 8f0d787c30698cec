package uilang

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoMatchingTriggerElements is returned by Bind when the trigger selector
// matches nothing.
var ErrNoMatchingTriggerElements = errors.New("no matching trigger elements")

// Binding is a rule whose listeners are registered on the trigger elements.
// It lives as long as the document.
type Binding struct {
	Rule     Rule
	Triggers []*html.Node
}

// Binder attaches rules to a Document.
type Binder struct {
	Doc    Document
	Logger *slog.Logger
}

// NewBinder returns a Binder for doc that does not log.
func NewBinder(doc Document) *Binder {
	return &Binder{Doc: doc}
}

func (b *Binder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return b.Logger
}

// Bind resolves the trigger elements of r once and registers a click listener
// on each of them. If no element matches, nothing is registered.
func (b *Binder) Bind(r Rule) (*Binding, error) {
	triggers, err := b.Doc.QueryAll(r.Trigger)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", r, err)
	}
	if len(triggers) == 0 {
		return nil, fmt.Errorf("%w: there's no element matching your %q CSS selector", ErrNoMatchingTriggerElements, r.Trigger)
	}
	l := b.listener(r)
	for _, n := range triggers {
		b.Doc.OnClick(n, l)
	}
	bd := &Binding{Rule: r, Triggers: triggers}
	b.logger().Debug("bound rule", "rule", r.String(), "triggers", len(triggers))
	return bd, nil
}

func (b *Binder) listener(r Rule) Listener {
	return func(ev *Event) error {
		targets := []*html.Node{ev.Target}
		if !r.TargetsSelf() {
			var err error
			if targets, err = b.Doc.QueryAll(r.Target); err != nil {
				return fmt.Errorf("rule %s: %w", r, err)
			}
		}
		for _, n := range targets {
			b.apply(r, n)
		}
		if isAnchor(ev.Target) {
			ev.PreventDefault()
		}
		return nil
	}
}

func (b *Binder) apply(r Rule, n *html.Node) {
	switch r.Behavior {
	case BehaviorAdd:
		b.Doc.AddClass(n, r.Class)
	case BehaviorRemove:
		b.Doc.RemoveClass(n, r.Class)
	case BehaviorToggle:
		b.Doc.ToggleClass(n, r.Class)
	}
}

func isAnchor(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == atom.A
}

// BindInstructions parses every clause in text and binds the resulting rules.
// A clause that fails does not keep the others from being bound. The returned
// error joins all clause failures.
func (b *Binder) BindInstructions(text string) ([]*Binding, error) {
	var bindings []*Binding
	var errs []error
	for i, clause := range Clauses(text) {
		r, err := ParseClause(clause)
		if err == nil {
			var bd *Binding
			if bd, err = b.Bind(r); err == nil {
				bindings = append(bindings, bd)
				continue
			}
		}
		b.logger().Warn("skip clause", "clause", i+1, "err", err)
		errs = append(errs, fmt.Errorf("clause %d: %w", i+1, err))
	}
	return bindings, errors.Join(errs...)
}
