package odt

import (
	"slices"
	"strconv"
	"strings"

	"github.com/tsawler/gridtable/model"
)

// maxStyleDepth bounds parent chains, which may be cyclic in broken files
const maxStyleDepth = 16

// styleResolver answers style questions, following parent-style-name
// inheritance. Automatic styles shadow common styles of the same name.
type styleResolver struct {
	byName map[string]*styleXML
}

func newStyleResolver(sheets ...*documentXML) *styleResolver {
	sr := &styleResolver{byName: make(map[string]*styleXML)}
	for _, sheet := range sheets {
		if sheet == nil {
			continue
		}
		for i := range sheet.Common {
			sr.byName[sheet.Common[i].Name] = &sheet.Common[i]
		}
	}
	for _, sheet := range sheets {
		if sheet == nil {
			continue
		}
		for i := range sheet.Automatic {
			sr.byName[sheet.Automatic[i].Name] = &sheet.Automatic[i]
		}
	}
	return sr
}

// chain returns the style and its ancestors, nearest first
func (sr *styleResolver) chain(name string) []*styleXML {
	var defs []*styleXML
	seen := make(map[string]bool)
	for name != "" && !seen[name] && len(defs) < maxStyleDepth {
		seen[name] = true
		def, ok := sr.byName[name]
		if !ok {
			break
		}
		defs = append(defs, def)
		name = def.Parent
	}
	return defs
}

// first returns the first non-empty value of get along the chain
func (sr *styleResolver) first(name string, get func(*styleXML) string) string {
	for _, def := range sr.chain(name) {
		if v := get(def); v != "" {
			return v
		}
	}
	return ""
}

func (sr *styleResolver) align(name string) model.Align {
	switch sr.first(name, func(s *styleXML) string { return s.Paragraph.TextAlign }) {
	case "start", "left":
		return model.AlignLeft
	case "center":
		return model.AlignCenter
	case "end", "right":
		return model.AlignRight
	case "justify":
		return model.AlignJustify
	}
	return model.AlignNone
}

func (sr *styleResolver) valign(name string) model.VAlign {
	switch sr.first(name, func(s *styleXML) string { return s.Cell.VerticalAlign }) {
	case "top":
		return model.VAlignTop
	case "middle":
		return model.VAlignMiddle
	case "bottom":
		return model.VAlignBottom
	}
	return model.VAlignNone
}

func (sr *styleResolver) bold(name string) bool {
	switch w := sr.first(name, func(s *styleXML) string { return s.Text.FontWeight }); w {
	case "bold":
		return true
	case "", "normal":
		return false
	default:
		n, err := strconv.Atoi(w)
		return err == nil && n >= 600
	}
}

func (sr *styleResolver) italic(name string) bool {
	s := sr.first(name, func(s *styleXML) string { return s.Text.FontStyle })
	return s == "italic" || s == "oblique"
}

// headingLevel returns the outline level a paragraph style assigns, or 0
func (sr *styleResolver) headingLevel(name string) int {
	lvl := sr.first(name, func(s *styleXML) string { return s.OutlineLevel })
	n, err := strconv.Atoi(lvl)
	if err != nil || n < 1 {
		return 0
	}
	return min(n, 6)
}

func (sr *styleResolver) isQuote(name string) bool {
	return sr.matches(name, "quotations", "quote")
}

func (sr *styleResolver) isCode(name string) bool {
	return sr.matches(name, "preformattedtext", "sourcetext", "code")
}

// matches reports whether the style or an ancestor has one of the given
// names. LibreOffice encodes spaces in style names as _20_.
func (sr *styleResolver) matches(name string, names ...string) bool {
	if name == "" {
		return false
	}
	normalize := func(s string) string {
		s = strings.ReplaceAll(s, "_20_", "")
		return strings.ToLower(strings.ReplaceAll(s, " ", ""))
	}
	candidates := []string{name}
	for _, def := range sr.chain(name) {
		candidates = append(candidates, def.Name, def.DisplayName)
	}
	for _, c := range candidates {
		if c != "" && slices.Contains(names, normalize(c)) {
			return true
		}
	}
	return false
}
