package gridtable

import (
	"fmt"
	"strings"

	"github.com/tsawler/gridtable/markup"
	"github.com/tsawler/gridtable/promote"
)

// Warning is a non-fatal note about a conversion: a grid block that could
// not be parsed and was kept as text, or a table that could not be written
// in simple form.
type Warning struct {
	Line    int // 1-based source line, 0 when not from reading
	Pos     int // document position of the table concerned, -1 when unknown
	Message string
}

func (w Warning) String() string {
	switch {
	case w.Line > 0:
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	case w.Pos >= 0:
		return fmt.Sprintf("table at %d: %s", w.Pos, w.Message)
	}
	return w.Message
}

// FormatWarnings joins warnings into one line each
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

func fromDiagnostics(diags []markup.Diagnostic) []Warning {
	var out []Warning
	for _, d := range diags {
		out = append(out, Warning{Line: d.Line, Pos: d.Pos, Message: d.Message})
	}
	return out
}

func fromSkipped(skipped []promote.Skipped) []Warning {
	var out []Warning
	for _, s := range skipped {
		out = append(out, Warning{Pos: s.Pos, Message: "kept as grid table: " + s.Reason.Error()})
	}
	return out
}
