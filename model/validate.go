package model

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of every table in the document:
// section order and multiplicity, a body with at least one row, rows with
// at least one cell, cells with positive spans, known alignments and block
// content. All violations are reported, joined into one error.
func Validate(doc *Node) error {
	var errs []error
	for i, ref := range Tables(doc) {
		if err := ValidateTable(ref.Node); err != nil {
			errs = append(errs, fmt.Errorf("table %d at %d: %w", i, ref.Pos, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateTable checks a single table node
func ValidateTable(table *Node) error {
	if table.Type != NodeTable {
		return fmt.Errorf("expected %s, got %s", NodeTable, table.Type)
	}

	var errs []error
	// head? body foot?
	stage := 0
	bodies := 0
	for i, section := range table.Content {
		var want int
		switch section.Type {
		case NodeTableHead:
			want = 0
		case NodeTableBody:
			want = 1
			bodies++
		case NodeTableFoot:
			want = 2
		default:
			errs = append(errs, fmt.Errorf("child %d: %s is not a table section", i, section.Type))
			continue
		}
		if want < stage || (want == stage && i > 0) {
			errs = append(errs, fmt.Errorf("child %d: %s out of order", i, section.Type))
		}
		stage = want
		errs = append(errs, validateSection(section)...)
	}
	if bodies != 1 {
		errs = append(errs, fmt.Errorf("table has %d body sections, want 1", bodies))
	}
	return errors.Join(errs...)
}

func validateSection(section *Node) []error {
	var errs []error
	if len(section.Content) == 0 {
		errs = append(errs, fmt.Errorf("%s has no rows", section.Type))
	}
	for r, row := range section.Content {
		if row.Type != NodeTableRow {
			errs = append(errs, fmt.Errorf("%s child %d: unexpected %s", section.Type, r, row.Type))
			continue
		}
		if len(row.Content) == 0 {
			errs = append(errs, fmt.Errorf("%s row %d has no cells", section.Type, r))
		}
		for c, cell := range row.Content {
			if err := validateCell(cell); err != nil {
				errs = append(errs, fmt.Errorf("%s row %d cell %d: %w", section.Type, r, c, err))
			}
		}
	}
	return errs
}

func validateCell(cell *Node) error {
	if cell.Type != NodeTableCell {
		return fmt.Errorf("unexpected %s", cell.Type)
	}
	var errs []error
	if cell.Attrs.ColSpan < 1 || cell.Attrs.RowSpan < 1 {
		errs = append(errs, fmt.Errorf("span %dx%d", cell.Attrs.ColSpan, cell.Attrs.RowSpan))
	}
	if !cell.Attrs.Align.Valid() {
		errs = append(errs, fmt.Errorf("align %q", cell.Attrs.Align))
	}
	if !cell.Attrs.VAlign.Valid() {
		errs = append(errs, fmt.Errorf("valign %q", cell.Attrs.VAlign))
	}
	if len(cell.Content) == 0 {
		errs = append(errs, errors.New("no content"))
	}
	for _, b := range cell.Content {
		if !b.Type.IsBlock() {
			errs = append(errs, fmt.Errorf("%s is not a block", b.Type))
		}
	}
	return errors.Join(errs...)
}
