package docx

import (
	"encoding/xml"
	"slices"
	"strings"
)

// stylesXML represents the structure of word/styles.xml
type stylesXML struct {
	XMLName xml.Name      `xml:"styles"`
	Styles  []styleDefXML `xml:"style"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type    string            `xml:"type,attr"` // paragraph, character, table, numbering
	StyleID string            `xml:"styleId,attr"`
	Name    valXML            `xml:"name"`
	BasedOn valXML            `xml:"basedOn"`
	PPr     paragraphPropsXML `xml:"pPr"`
}

// maxStyleDepth bounds basedOn chains, which may be cyclic in broken files
const maxStyleDepth = 16

// styleResolver answers paragraph style questions, following basedOn
// inheritance.
type styleResolver struct {
	byID map[string]*styleDefXML
}

func newStyleResolver(styles *stylesXML) *styleResolver {
	sr := &styleResolver{byID: make(map[string]*styleDefXML)}
	if styles == nil {
		return sr
	}
	for i := range styles.Styles {
		def := &styles.Styles[i]
		sr.byID[strings.ToLower(def.StyleID)] = def
	}
	return sr
}

// chain returns the style and its ancestors, nearest first
func (sr *styleResolver) chain(styleID string) []*styleDefXML {
	var defs []*styleDefXML
	seen := make(map[string]bool)
	id := strings.ToLower(styleID)
	for id != "" && !seen[id] && len(defs) < maxStyleDepth {
		seen[id] = true
		def, ok := sr.byID[id]
		if !ok {
			break
		}
		defs = append(defs, def)
		id = strings.ToLower(def.BasedOn.Val)
	}
	return defs
}

// headingLevel returns the heading level (1-6) of a paragraph style, or 0
// for body text
func (sr *styleResolver) headingLevel(styleID string) int {
	if level := builtInHeading(styleID); level > 0 {
		return level
	}
	for _, def := range sr.chain(styleID) {
		if def.PPr.OutlineLvl.Present() {
			if lvl := def.PPr.OutlineLvl.Int(-1); lvl >= 0 && lvl < 9 {
				return min(lvl+1, 6)
			}
		}
		if level := builtInHeading(strings.ReplaceAll(def.Name.Val, " ", "")); level > 0 {
			return level
		}
	}
	return 0
}

// builtInHeading recognizes Word's built-in heading style IDs and names
func builtInHeading(id string) int {
	id = strings.ToLower(id)
	if id == "title" {
		return 1
	}
	if rest, ok := strings.CutPrefix(id, "heading"); ok && len(rest) == 1 && rest[0] >= '1' && rest[0] <= '9' {
		return min(int(rest[0]-'0'), 6)
	}
	return 0
}

// isQuote reports whether a paragraph style is a quotation style
func (sr *styleResolver) isQuote(styleID string) bool {
	return sr.matches(styleID, "quote", "intensequote", "blocktext")
}

// isCode reports whether a paragraph style is a preformatted code style
func (sr *styleResolver) isCode(styleID string) bool {
	return sr.matches(styleID, "code", "htmlpreformatted", "sourcecode")
}

// matches reports whether the style, or a style it is based on, has one of
// the given IDs or names. Comparison ignores case and spaces.
func (sr *styleResolver) matches(styleID string, names ...string) bool {
	if styleID == "" {
		return false
	}
	defs := append([]*styleDefXML{{StyleID: styleID}}, sr.chain(styleID)...)
	for _, def := range defs {
		for _, s := range []string{def.StyleID, def.Name.Val} {
			if slices.Contains(names, strings.ToLower(strings.ReplaceAll(s, " ", ""))) {
				return true
			}
		}
	}
	return false
}

// justification returns the paragraph's horizontal alignment: direct
// formatting first, then the style chain
func (sr *styleResolver) justification(p *paragraphXML) string {
	if p.Properties.Justification.Present() {
		return p.Properties.Justification.Val
	}
	for _, def := range sr.chain(p.Properties.Style.Val) {
		if def.PPr.Justification.Present() {
			return def.PPr.Justification.Val
		}
	}
	return ""
}
