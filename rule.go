package uilang

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TriggerPhrase starts every instruction clause.
const TriggerPhrase = "clicking on"

var (
	// ErrMalformedInstruction is returned when a clause lacks the trigger
	// selector, the behavior or the class.
	ErrMalformedInstruction = errors.New("malformed instruction")
	// ErrUnsupportedBehavior is returned for verbs other than add, remove
	// and toggle.
	ErrUnsupportedBehavior = errors.New("unsupported behavior")
	// ErrInvalidClassName is returned when the class token cannot be used
	// as a single class name.
	ErrInvalidClassName = errors.New("invalid class name")
)

// Behavior is the class mutation a rule performs.
type Behavior int

const (
	// BehaviorAdd inserts the class if it is absent.
	BehaviorAdd Behavior = iota
	// BehaviorRemove deletes the class if it is present.
	BehaviorRemove
	// BehaviorToggle flips the presence of the class.
	BehaviorToggle
)

func (b Behavior) String() string {
	switch b {
	case BehaviorAdd:
		return "add"
	case BehaviorRemove:
		return "remove"
	case BehaviorToggle:
		return "toggle"
	}
	return fmt.Sprintf("Behavior(%d)", int(b))
}

// ParseBehavior turns a verb like "adds" or "toggle" into a Behavior. A single
// trailing "s" is dropped before matching, no matter what the word is.
func ParseBehavior(word string) (Behavior, error) {
	switch strings.TrimSuffix(word, "s") {
	case "add":
		return BehaviorAdd, nil
	case "remove":
		return BehaviorRemove, nil
	case "toggle":
		return BehaviorToggle, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnsupportedBehavior, word)
}

// Field names a position in an instruction clause.
type Field int

const (
	// FieldTrigger is the selector of the elements that get the listener.
	FieldTrigger Field = iota + 1
	// FieldBehavior is the verb phrase.
	FieldBehavior
	// FieldClass is the class token.
	FieldClass
	// FieldConnective is the ignored word between class and target.
	FieldConnective
	// FieldTarget is the optional target phrase.
	FieldTarget
)

func (f Field) String() string {
	switch f {
	case FieldTrigger:
		return "trigger selector"
	case FieldBehavior:
		return "behavior"
	case FieldClass:
		return "class"
	case FieldConnective:
		return "connective"
	case FieldTarget:
		return "target"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// MalformedInstructionError reports the first missing field of a clause.
type MalformedInstructionError struct {
	Clause string
	Field  Field
}

func (e *MalformedInstructionError) Error() string {
	return fmt.Sprintf("%s: missing %s in %q", ErrMalformedInstruction, e.Field, e.Clause)
}

func (e *MalformedInstructionError) Unwrap() error {
	return ErrMalformedInstruction
}

// selfAliases are the target phrases that mean "the clicked element".
var selfAliases = map[string]bool{
	"target": true,
	"this":   true,
	"it":     true,
	"itself": true,
}

// Rule is one parsed instruction clause. A Rule is a plain value and is not
// changed after parsing.
type Rule struct {
	Trigger  string   // selector of the elements that receive the click listener
	Behavior Behavior // class mutation to perform
	Class    string   // class name without the leading dot
	Target   string   // selector of the elements to change, empty for the clicked element
}

// TargetsSelf reports whether the rule changes the clicked element instead of
// a selector match.
func (r Rule) TargetsSelf() bool {
	return r.Target == ""
}

// ParseClause parses one clause of the form
//
//	D<trigger>D<behavior>D<class>[D<connective>D<target>]
//
// where D is the first character of the clause. Selectors are not checked
// here, they are compiled when the rule is bound.
func ParseClause(clause string) (Rule, error) {
	var r Rule
	delim, size := utf8.DecodeRuneInString(clause)
	if size == 0 {
		return r, &MalformedInstructionError{Clause: clause, Field: FieldTrigger}
	}
	fields := strings.Split(clause, string(delim))
	field := func(f Field) string {
		if int(f) < len(fields) {
			return fields[f]
		}
		return ""
	}

	r.Trigger = field(FieldTrigger)
	if strings.TrimSpace(r.Trigger) == "" {
		return Rule{}, &MalformedInstructionError{Clause: clause, Field: FieldTrigger}
	}
	words := strings.Fields(field(FieldBehavior))
	if len(words) == 0 {
		return Rule{}, &MalformedInstructionError{Clause: clause, Field: FieldBehavior}
	}
	r.Class = strings.TrimPrefix(field(FieldClass), ".")
	if r.Class == "" {
		return Rule{}, &MalformedInstructionError{Clause: clause, Field: FieldClass}
	}

	behavior, err := ParseBehavior(words[0])
	if err != nil {
		return Rule{}, fmt.Errorf("clause %q: %w", clause, err)
	}
	r.Behavior = behavior
	if strings.IndexFunc(r.Class, unicode.IsSpace) >= 0 {
		return Rule{}, fmt.Errorf("clause %q: %w %q", clause, ErrInvalidClassName, r.Class)
	}

	target := strings.TrimSpace(field(FieldTarget))
	if !selfAliases[target] {
		r.Target = target
	}
	return r, nil
}

// Clauses splits instruction text on the trigger phrase and returns the
// trimmed, non-empty clauses in order.
func Clauses(text string) []string {
	var ret []string
	for _, c := range strings.Split(text, TriggerPhrase) {
		if c = strings.TrimSpace(c); c != "" {
			ret = append(ret, c)
		}
	}
	return ret
}
