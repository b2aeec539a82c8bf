package gridtable

import (
	"github.com/tsawler/gridtable/htmldoc"
	"github.com/tsawler/gridtable/markup"
	"github.com/tsawler/gridtable/xlsx"
)

// ConvertOptions holds configuration for conversion.
type ConvertOptions struct {
	// Export
	promote        bool // write qualifying grid tables in simple form
	minColumnWidth int
	pretty         bool   // indent HTML output
	sheet          string // worksheet name for XLSX output

	// Import
	navigation htmldoc.NavigationExclusionMode
}

// defaultOptions returns the default conversion options.
func defaultOptions() ConvertOptions {
	return ConvertOptions{
		promote:        true,
		minColumnWidth: markup.DefaultOptions().MinColumnWidth,
		pretty:         false,
		sheet:          xlsx.DefaultOptions().Sheet,
		navigation:     htmldoc.NavigationExclusionStandard,
	}
}

// clone creates a copy of ConvertOptions.
func (o ConvertOptions) clone() ConvertOptions {
	return o
}

func (o ConvertOptions) markup() markup.Options {
	opts := markup.DefaultOptions()
	opts.Promote = o.promote
	opts.MinColumnWidth = o.minColumnWidth
	return opts
}

func (o ConvertOptions) html() htmldoc.Options {
	opts := htmldoc.DefaultOptions()
	opts.Pretty = o.pretty
	opts.PreferSimple = o.promote
	opts.Navigation = o.navigation
	return opts
}

func (o ConvertOptions) xlsx() xlsx.Options {
	opts := xlsx.DefaultOptions()
	opts.Sheet = o.sheet
	return opts
}
