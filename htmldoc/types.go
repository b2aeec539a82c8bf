// Package htmldoc renders documents as HTML and reads HTML back into
// documents.
//
// Grid tables are written as <table data-type="grid-table">. Cell spans
// become colspan and rowspan attributes, emitted only when greater than 1.
// Alignment is written twice, as a data attribute that survives a round
// trip and as an inline style that browsers honour:
//
//	<td colspan="2" data-align="center" style="text-align: center">
//
// The reader accepts the same attributes plus the legacy align and valign
// attributes and the text-align and vertical-align style properties.
package htmldoc

// Options controls rendering and reading
type Options struct {
	// Pretty indents table structure and block quotes.
	Pretty bool

	// PreferSimple reads foreign tables that carry none of the grid
	// features (spans, ragged rows, a footer, vertical alignment or the
	// grid-table marker) as simple tables when they qualify.
	PreferSimple bool

	// Navigation controls which page boilerplate the reader skips.
	Navigation NavigationExclusionMode
}

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		Pretty:       false,
		PreferSimple: true,
		Navigation:   NavigationExclusionStandard,
	}
}

// NavigationExclusionMode controls how navigation, headers, and footers are filtered.
type NavigationExclusionMode int

const (
	// NavigationExclusionNone includes all content without filtering.
	NavigationExclusionNone NavigationExclusionMode = iota

	// NavigationExclusionExplicit skips only explicit semantic HTML5 elements:
	// <nav>, <aside>, and ARIA roles (role="navigation", role="complementary").
	// <header> and <footer> are only skipped when they are direct children of <body>
	// or a single top-level wrapper element.
	NavigationExclusionExplicit

	// NavigationExclusionStandard (default) also matches common class and id
	// names such as nav, menu, footer and sidebar.
	NavigationExclusionStandard

	// NavigationExclusionAggressive adds link-density heuristics to standard detection.
	// Sections with very high link-to-text ratios are excluded.
	NavigationExclusionAggressive
)

// Grid features reported by GridFeatures
const (
	FeatureMarker  = "grid-table marker"
	FeatureColSpan = "colspan"
	FeatureRowSpan = "rowspan"
	FeatureRagged  = "ragged rows"
	FeatureFooter  = "tfoot"
	FeatureVAlign  = "vertical alignment"
)
