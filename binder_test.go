package uilang

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fakeDoc is a Document backed by a fixed selector table.
type fakeDoc struct {
	matches   map[string][]*html.Node
	listeners map[*html.Node][]Listener
	calls     []string
	queries   int
}

func newFakeDoc() *fakeDoc {
	return &fakeDoc{
		matches:   make(map[string][]*html.Node),
		listeners: make(map[*html.Node][]Listener),
	}
}

func (d *fakeDoc) QueryAll(selector string) ([]*html.Node, error) {
	d.queries++
	if selector == "!!" {
		return nil, ErrInvalidSelector
	}
	return d.matches[selector], nil
}

func (d *fakeDoc) AddClass(n *html.Node, class string) {
	d.calls = append(d.calls, fmt.Sprintf("add %s %s", describeNode(n), class))
	addClass(n, class)
}

func (d *fakeDoc) RemoveClass(n *html.Node, class string) {
	d.calls = append(d.calls, fmt.Sprintf("remove %s %s", describeNode(n), class))
	removeClass(n, class)
}

func (d *fakeDoc) ToggleClass(n *html.Node, class string) {
	d.calls = append(d.calls, fmt.Sprintf("toggle %s %s", describeNode(n), class))
	toggleClass(n, class)
}

func (d *fakeDoc) OnClick(n *html.Node, l Listener) {
	d.listeners[n] = append(d.listeners[n], l)
}

// click runs the listeners of owner for a click on target.
func (d *fakeDoc) click(owner, target *html.Node) (*Event, error) {
	ev := &Event{Target: target, CurrentTarget: owner}
	var errs []error
	for _, l := range d.listeners[owner] {
		if err := l(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return ev, errors.Join(errs...)
}

func element(a atom.Atom, id string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if id != "" {
		n.Attr = []html.Attribute{{Key: "id", Val: id}}
	}
	return n
}

func TestBindNoMatchingTrigger(t *testing.T) {
	doc := newFakeDoc()
	b := NewBinder(doc)
	_, err := b.Bind(Rule{Trigger: ".missing", Behavior: BehaviorAdd, Class: "x"})
	require.ErrorIs(t, err, ErrNoMatchingTriggerElements)
	assert.Empty(t, doc.listeners)
}

func TestBindInvalidTrigger(t *testing.T) {
	doc := newFakeDoc()
	_, err := NewBinder(doc).Bind(Rule{Trigger: "!!", Behavior: BehaviorAdd, Class: "x"})
	require.ErrorIs(t, err, ErrInvalidSelector)
	assert.Empty(t, doc.listeners)
}

func TestBindRegistersEveryTrigger(t *testing.T) {
	doc := newFakeDoc()
	b1, b2 := element(atom.Button, "b1"), element(atom.Button, "b2")
	doc.matches[".btn"] = []*html.Node{b1, b2}

	bd, err := NewBinder(doc).Bind(Rule{Trigger: ".btn", Behavior: BehaviorAdd, Class: "active"})
	require.NoError(t, err)
	assert.Equal(t, []*html.Node{b1, b2}, bd.Triggers)
	assert.Len(t, doc.listeners[b1], 1)
	assert.Len(t, doc.listeners[b2], 1)
	assert.Equal(t, "/.btn/add/.active/to/it on [button#b1 button#b2]", bd.String())
}

func TestSelfTargetUsesClickedElement(t *testing.T) {
	doc := newFakeDoc()
	owner := element(atom.Div, "card")
	inner := element(atom.Span, "label")
	doc.matches[".card"] = []*html.Node{owner}

	_, err := NewBinder(doc).Bind(Rule{Trigger: ".card", Behavior: BehaviorAdd, Class: "hit"})
	require.NoError(t, err)

	_, err = doc.click(owner, inner)
	require.NoError(t, err)
	assert.True(t, HasClass(inner, "hit"))
	assert.False(t, HasClass(owner, "hit"))
	assert.Equal(t, []string{"add span#label hit"}, doc.calls)
}

func TestTargetSelectorIsResolvedPerClick(t *testing.T) {
	doc := newFakeDoc()
	toggle := element(atom.Button, "t")
	doc.matches["#t"] = []*html.Node{toggle}

	_, err := NewBinder(doc).Bind(Rule{Trigger: "#t", Behavior: BehaviorToggle, Class: "open", Target: ".menu"})
	require.NoError(t, err)
	queriesAfterBind := doc.queries

	// nothing matches yet: silent no-op
	_, err = doc.click(toggle, toggle)
	require.NoError(t, err)
	assert.Empty(t, doc.calls)

	m1, m2 := element(atom.Ul, "m1"), element(atom.Ul, "m2")
	doc.matches[".menu"] = []*html.Node{m1, m2}
	_, err = doc.click(toggle, toggle)
	require.NoError(t, err)
	assert.True(t, HasClass(m1, "open"))
	assert.True(t, HasClass(m2, "open"))
	assert.False(t, HasClass(toggle, "open"))
	assert.Equal(t, queriesAfterBind+2, doc.queries)

	_, err = doc.click(toggle, toggle)
	require.NoError(t, err)
	assert.False(t, HasClass(m1, "open"))
	assert.False(t, HasClass(m2, "open"))
}

func TestToggleIsPerElement(t *testing.T) {
	doc := newFakeDoc()
	btn := element(atom.Button, "")
	on, off := element(atom.Li, "on"), element(atom.Li, "off")
	addClass(on, "x")
	doc.matches["button"] = []*html.Node{btn}
	doc.matches["li"] = []*html.Node{on, off}

	_, err := NewBinder(doc).Bind(Rule{Trigger: "button", Behavior: BehaviorToggle, Class: "x", Target: "li"})
	require.NoError(t, err)
	_, err = doc.click(btn, btn)
	require.NoError(t, err)
	assert.False(t, HasClass(on, "x"))
	assert.True(t, HasClass(off, "x"))
}

func TestAddRemoveIdempotent(t *testing.T) {
	doc := newFakeDoc()
	btn := element(atom.Button, "")
	doc.matches["button"] = []*html.Node{btn}
	b := NewBinder(doc)
	_, err := b.Bind(Rule{Trigger: "button", Behavior: BehaviorAdd, Class: "a"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = doc.click(btn, btn)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, classList(btn))
	}

	other := element(atom.Button, "")
	addClass(other, "a")
	doc.matches[".other"] = []*html.Node{other}
	_, err = b.Bind(Rule{Trigger: ".other", Behavior: BehaviorRemove, Class: "a"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = doc.click(other, other)
		require.NoError(t, err)
		assert.False(t, HasClass(other, "a"))
	}
}

func TestAnchorPreventsDefault(t *testing.T) {
	doc := newFakeDoc()
	a := element(atom.A, "link")
	div := element(atom.Div, "box")
	doc.matches[".x"] = []*html.Node{a, div}

	_, err := NewBinder(doc).Bind(Rule{Trigger: ".x", Behavior: BehaviorAdd, Class: "on"})
	require.NoError(t, err)

	ev, err := doc.click(a, a)
	require.NoError(t, err)
	assert.True(t, ev.DefaultPrevented())

	ev, err = doc.click(div, div)
	require.NoError(t, err)
	assert.False(t, ev.DefaultPrevented())
}

func TestInvalidTargetReportedOnClick(t *testing.T) {
	doc := newFakeDoc()
	btn := element(atom.Button, "")
	doc.matches["button"] = []*html.Node{btn}
	_, err := NewBinder(doc).Bind(Rule{Trigger: "button", Behavior: BehaviorAdd, Class: "a", Target: "!!"})
	require.NoError(t, err)

	_, err = doc.click(btn, btn)
	assert.ErrorIs(t, err, ErrInvalidSelector)
}

func TestBindInstructionsIndependentClauses(t *testing.T) {
	doc := newFakeDoc()
	btn := element(atom.Button, "")
	doc.matches[".btn"] = []*html.Node{btn}

	bindings, err := NewBinder(doc).BindInstructions(
		"clicking on/.btn/adds/.active/to/it clicking on/.btn/adds clicking on/.gone/adds/x",
	)
	require.Len(t, bindings, 1)
	assert.Equal(t, ".btn", bindings[0].Rule.Trigger)
	assert.ErrorIs(t, err, ErrMalformedInstruction)
	assert.ErrorIs(t, err, ErrNoMatchingTriggerElements)
	assert.ErrorContains(t, err, "clause 2")
	assert.ErrorContains(t, err, "clause 3")

	_, err = doc.click(btn, btn)
	require.NoError(t, err)
	assert.True(t, HasClass(btn, "active"))
}
