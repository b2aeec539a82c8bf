package markup

import "fmt"

// Options controls how documents are written as markdown
type Options struct {
	// Promote writes grid tables that qualify as simple pipe tables.
	// When false every grid table is written in grid form.
	Promote bool

	// MinColumnWidth is the smallest interior width of a grid column,
	// in terminal cells. Alignment markers need at least 3.
	MinColumnWidth int
}

// DefaultOptions returns the default writer options
func DefaultOptions() Options {
	return Options{
		Promote:        true,
		MinColumnWidth: 3,
	}
}

func (o Options) minWidth() int {
	return max(o.MinColumnWidth, 3)
}

// Diagnostic is a non-fatal note produced while reading or writing
type Diagnostic struct {
	Line    int // 1-based source line, 0 when writing
	Pos     int // document position of the table concerned, -1 when reading
	Message string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	}
	return fmt.Sprintf("table at %d: %s", d.Pos, d.Message)
}
