package uilang

import (
	"sort"

	"github.com/speedata/css/scanner"
)

// tokenstream is a list of CSS tokens
type tokenstream []*scanner.Token

// ruleset is a block with a selector; children are nested blocks such as the
// rules inside @media.
type ruleset struct {
	prelude  tokenstream
	children []ruleset
}

// Stylesheet records the class selectors of one style sheet.
type Stylesheet struct {
	Name    string // file name or "<style>"
	classes map[string]bool
}

// ParseStylesheet reads the CSS text and collects every class used in a
// selector.
func ParseStylesheet(name, css string) *Stylesheet {
	s := &Stylesheet{Name: name, classes: make(map[string]bool)}
	s.collect(consumeRulesets(tokenizeCSSString(css)))
	return s
}

func (s *Stylesheet) collect(blocks []ruleset) {
	for _, b := range blocks {
		toks := b.prelude
		for i := 0; i < len(toks)-1; i++ {
			if toks[i].Type == scanner.Delim && toks[i].Value == "." && toks[i+1].Type == scanner.Ident {
				s.classes[toks[i+1].Value] = true
			}
		}
		s.collect(b.children)
	}
}

// DefinesClass reports whether class appears in any selector of s.
func (s *Stylesheet) DefinesClass(class string) bool {
	return s.classes[class]
}

// Classes returns the sorted class names of s.
func (s *Stylesheet) Classes() []string {
	ret := make([]string, 0, len(s.classes))
	for c := range s.classes {
		ret = append(ret, c)
	}
	sort.Strings(ret)
	return ret
}

// UnstyledClasses returns the classes of rules that none of the sheets
// mention, sorted and without duplicates. The class may still be styled by a
// sheet the page does not reference directly.
func UnstyledClasses(rules []Rule, sheets []*Stylesheet) []string {
	seen := map[string]bool{}
	ret := []string{}
outer:
	for _, r := range rules {
		if seen[r.Class] {
			continue
		}
		seen[r.Class] = true
		for _, s := range sheets {
			if s.DefinesClass(r.Class) {
				continue outer
			}
		}
		ret = append(ret, r.Class)
	}
	sort.Strings(ret)
	return ret
}

func tokenizeCSSString(css string) tokenstream {
	var toks tokenstream
	s := scanner.New(css)
	for {
		tok := s.Next()
		if tok.Type == scanner.EOF || tok.Type == scanner.Error {
			break
		}
		if tok.Type == scanner.Comment {
			continue
		}
		toks = append(toks, tok)
	}
	return toks
}

// Return the position of the matching closing brace "}", -1 if the block is
// not closed.
func findClosingBrace(toks tokenstream) int {
	level := 1
	for i, t := range toks {
		if t.Type == scanner.Delim {
			switch t.Value {
			case "{":
				level++
			case "}":
				level--
				if level == 0 {
					return i
				}
			}
		}
	}
	return -1
}

func trimSpace(toks tokenstream) tokenstream {
	for len(toks) > 0 && toks[0].Type == scanner.S {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].Type == scanner.S {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// consumeRulesets splits toks into blocks. Declarations are skipped, the
// prelude of every block and its nested blocks are kept.
func consumeRulesets(toks tokenstream) []ruleset {
	var ret []ruleset
	start := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Type != scanner.Delim {
			continue
		}
		switch t.Value {
		case ";", "}":
			start = i + 1
		case "{":
			body := toks[i+1:]
			end := len(toks)
			if l := findClosingBrace(body); l >= 0 {
				body = body[:l]
				end = i + 1 + l
			}
			ret = append(ret, ruleset{
				prelude:  trimSpace(toks[start:i]),
				children: consumeRulesets(body),
			})
			i = end
			start = i + 1
		}
	}
	return ret
}
