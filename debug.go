package uilang

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// String renders the rule as a clause with "/" as delimiter. The result parses
// back into the same rule as long as no field contains a "/".
func (r Rule) String() string {
	target := "it"
	if !r.TargetsSelf() {
		target = r.Target
	}
	return fmt.Sprintf("/%s/%s/.%s/to/%s", r.Trigger, r.Behavior, r.Class, target)
}

func (b *Binding) String() string {
	ret := []string{}
	for _, n := range b.Triggers {
		ret = append(ret, describeNode(n))
	}
	return fmt.Sprintf("%s on [%s]", b.Rule, strings.Join(ret, " "))
}

// describeNode returns a short selector-like name such as a#home.nav for n.
func describeNode(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return "?"
	}
	var sb strings.Builder
	sb.WriteString(n.Data)
	if id, ok := attr(n, "id"); ok && id != "" {
		sb.WriteString("#" + id)
	}
	for _, c := range classList(n) {
		sb.WriteString("." + c)
	}
	return sb.String()
}
