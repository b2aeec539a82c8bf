// Package xlsx exports the tables of a document to an XLSX workbook.
//
// Every table is placed on its visual grid: a cell spanning rows or
// columns becomes a merged range, and its alignment becomes the alignment
// of the range. Tables are stacked on one worksheet with blank rows between
// them.
package xlsx

// Options controls the export
type Options struct {
	// Sheet is the name of the worksheet holding the tables.
	Sheet string

	// Gap is the number of blank rows between two tables.
	Gap int

	// BoldHeader sets head rows in bold.
	BoldHeader bool

	// Numbers stores cell text that parses as a number as a number.
	Numbers bool
}

// DefaultOptions returns the default export options
func DefaultOptions() Options {
	return Options{
		Sheet:      "Sheet1",
		Gap:        1,
		BoldHeader: true,
		Numbers:    true,
	}
}

// sheetName returns the worksheet name, falling back to the default
func (o Options) sheetName() string {
	if o.Sheet == "" {
		return DefaultOptions().Sheet
	}
	return o.Sheet
}
