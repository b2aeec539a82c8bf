package htmldoc

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// boilerplateName matches class and id names used for navigation and page
// chrome
var boilerplateName = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumbs?|` +
		`site-header|page-header|masthead|banner|` +
		`footer|site-footer|page-footer|colophon|` +
		`sidebar|widget-area|widget|aside)([^a-z]|$)`)

// exclusionChecker decides which elements the reader skips
type exclusionChecker struct {
	mode    NavigationExclusionMode
	body    *html.Node
	wrapper *html.Node // single top-level div or main, if any
}

func newExclusionChecker(mode NavigationExclusionMode, body *html.Node) *exclusionChecker {
	return &exclusionChecker{mode: mode, body: body, wrapper: topLevelWrapper(body)}
}

// topLevelWrapper finds the single structural element wrapping a page, as
// in <body><div id="wrapper">...</div></body>
func topLevelWrapper(body *html.Node) *html.Node {
	var found *html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Div, atom.Main:
			if found != nil {
				return nil
			}
			found = c
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
		default:
			return nil
		}
	}
	return found
}

func (ec *exclusionChecker) exclude(n *html.Node) bool {
	if n.Type != html.ElementNode || ec.mode == NavigationExclusionNone {
		return false
	}
	if ec.explicit(n) {
		return true
	}
	if ec.mode >= NavigationExclusionStandard && ec.namedBoilerplate(n) {
		return true
	}
	return ec.mode >= NavigationExclusionAggressive && linkHeavy(n)
}

// explicit checks semantic HTML5 elements and ARIA roles
func (ec *exclusionChecker) explicit(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Nav, atom.Aside:
		return true
	case atom.Header, atom.Footer:
		return ec.topLevel(n)
	}
	switch attr(n, "role") {
	case "navigation", "complementary":
		return true
	case "banner", "contentinfo":
		return ec.topLevel(n)
	}
	return false
}

func (ec *exclusionChecker) topLevel(n *html.Node) bool {
	return n.Parent != nil && (n.Parent == ec.body || (ec.wrapper != nil && n.Parent == ec.wrapper))
}

// namedBoilerplate matches class and id names. Tables are kept whatever
// their name.
func (ec *exclusionChecker) namedBoilerplate(n *html.Node) bool {
	if n.DataAtom == atom.Table {
		return false
	}
	return boilerplateName.MatchString(attr(n, "class")) || boilerplateName.MatchString(attr(n, "id"))
}

// linkHeavy reports block containers where more than 60% of the text sits
// in four or more links
func linkHeavy(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Div, atom.Section, atom.Ul, atom.Ol:
	default:
		return false
	}
	total := textLength(n)
	if total == 0 {
		return false
	}
	links, linkText := linkStats(n)
	return links >= 4 && float64(linkText)/float64(total) > 0.6
}

func textLength(n *html.Node) int {
	if n.Type == html.TextNode {
		return len(strings.TrimSpace(n.Data))
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += textLength(c)
	}
	return total
}

// linkStats returns the number of <a> elements below n and the length of
// their text
func linkStats(n *html.Node) (count, length int) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		return 1, textLength(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cc, cl := linkStats(c)
		count += cc
		length += cl
	}
	return count, length
}

// attr returns the value of an attribute, or "" when it is not set
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
