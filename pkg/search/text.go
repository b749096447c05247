package search

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText strips markup and entities from a result fragment and collapses
// whitespace. Brave wraps matched terms in <strong>; SerpAPI passes entities
// through.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// Block tags separate words; inline ones like <strong> do not.
			if name, _ := z.TagName(); isBreakingTag(string(name)) {
				b.WriteByte(' ')
			}
		}
	}
}

func isBreakingTag(name string) bool {
	switch name {
	case "br", "p", "div", "li", "ul", "ol", "tr", "td", "h1", "h2", "h3", "h4":
		return true
	}
	return false
}
