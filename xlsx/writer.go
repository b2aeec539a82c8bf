package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"github.com/tsawler/gridtable/model"
)

const (
	minColumnWidth = 8
	maxColumnWidth = 60
)

// Plan lays out the tables of doc on one sheet. Tables inside block quotes
// are included; tables nested in cells contribute their text to the
// enclosing cell.
func Plan(doc *model.Node, opts Options) *Sheet {
	s := &Sheet{Name: opts.sheetName(), MaxRow: -1, MaxCol: -1}
	row := 0
	for _, table := range topLevelTables(doc) {
		if table.Type == model.NodeSimpleTable {
			table = gridOf(table)
		}
		l := model.LayoutTable(table)
		s.Tables = append(s.Tables, row)
		for _, p := range l.Cells {
			if p.Cell == nil {
				continue
			}
			c := Cell{
				Value:     p.Cell.TextContent(),
				Row:       row + p.Row,
				Col:       p.Col,
				Align:     p.Cell.Attrs.Align,
				VAlign:    p.Cell.Attrs.VAlign,
				Header:    p.Section == model.NodeTableHead,
				MergeRows: p.RowSpan,
				MergeCols: p.ColSpan,
			}
			c.Type = cellType(c.Value, opts.Numbers)
			s.set(c)

			if p.RowSpan == 1 && p.ColSpan == 1 {
				continue
			}
			region := MergedRegion{
				StartRow: c.Row, StartCol: c.Col,
				EndRow: c.Row + p.RowSpan - 1, EndCol: c.Col + p.ColSpan - 1,
			}
			s.MergedRegions = append(s.MergedRegions, region)
			for r := region.StartRow; r <= region.EndRow; r++ {
				for col := region.StartCol; col <= region.EndCol; col++ {
					covered := Cell{Type: CellTypeEmpty, Row: r, Col: col, IsMerged: true, MergeRows: 1, MergeCols: 1}
					if r == region.StartRow && col == region.StartCol {
						covered = c
						covered.IsMergeRoot = true
					}
					covered.IsMerged = true
					s.set(covered)
				}
			}
		}
		row += l.Rows + max(opts.Gap, 0)
	}
	return s
}

func topLevelTables(n *model.Node) []*model.Node {
	var out []*model.Node
	for _, c := range n.Content {
		switch c.Type {
		case model.NodeTable, model.NodeSimpleTable:
			out = append(out, c)
		case model.NodeBlockquote:
			out = append(out, topLevelTables(c)...)
		}
	}
	return out
}

// gridOf turns a simple table back into a grid table so that both share
// one layout
func gridOf(simple *model.Node) *model.Node {
	var head, body []*model.Node
	for _, row := range simple.Content {
		cells := make([]*model.Node, len(row.Content))
		for i, c := range row.Content {
			cells[i] = model.NewCell(model.Attrs{Align: c.Attrs.Align}, c.Content...)
		}
		if row.Type == model.NodeSimpleHeaderRow {
			head = append(head, model.NewRow(cells...))
		} else {
			body = append(body, model.NewRow(cells...))
		}
	}
	var headSection *model.Node
	if len(head) > 0 {
		headSection = model.NewSection(model.NodeTableHead, head...)
	}
	return model.NewTable(headSection, model.NewSection(model.NodeTableBody, body...), nil)
}

func cellType(value string, numbers bool) CellType {
	switch {
	case value == "":
		return CellTypeEmpty
	case numbers && number(value) != nil:
		return CellTypeNumber
	}
	return CellTypeString
}

// number returns value as an int64 or float64, or nil when it is not a
// number
func number(value string) any {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return nil
}

// Workbook builds a workbook holding the tables of doc. The caller closes
// the returned file.
func Workbook(doc *model.Node, opts Options) (*excelize.File, error) {
	plan := Plan(doc, opts)
	f := excelize.NewFile()
	if plan.Name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", plan.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("naming sheet: %w", err)
		}
	}
	if err := fill(f, plan, opts); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

type styleKey struct {
	align  model.Align
	valign model.VAlign
	bold   bool
}

func fill(f *excelize.File, plan *Sheet, opts Options) error {
	styles := map[styleKey]int{}
	widths := make([]int, plan.ColCount())

	for _, row := range plan.Rows {
		for _, c := range row {
			if c.IsMerged && !c.IsMergeRoot {
				continue
			}
			ref, err := CellRef(c.Col, c.Row)
			if err != nil {
				return err
			}
			switch c.Type {
			case CellTypeNumber:
				err = f.SetCellValue(plan.Name, ref, number(c.Value))
			case CellTypeString:
				err = f.SetCellStr(plan.Name, ref, c.Value)
			}
			if err != nil {
				return fmt.Errorf("setting %s: %w", ref, err)
			}

			key := styleKey{align: c.Align, valign: c.VAlign, bold: c.Header && opts.BoldHeader}
			if c.MergeCols == 1 {
				for _, line := range strings.Split(c.Value, "\n") {
					widths[c.Col] = max(widths[c.Col], runewidth.StringWidth(line))
				}
			}
			if key == (styleKey{}) && !strings.Contains(c.Value, "\n") {
				continue
			}
			id, ok := styles[key]
			if !ok {
				if id, err = f.NewStyle(cellStyle(key)); err != nil {
					return fmt.Errorf("creating style: %w", err)
				}
				styles[key] = id
			}
			if err := f.SetCellStyle(plan.Name, ref, ref, id); err != nil {
				return fmt.Errorf("styling %s: %w", ref, err)
			}
		}
	}

	for _, m := range plan.MergedRegions {
		topLeft, bottomRight, err := m.Refs()
		if err != nil {
			return err
		}
		if err := f.MergeCell(plan.Name, topLeft, bottomRight); err != nil {
			return fmt.Errorf("merging %s:%s: %w", topLeft, bottomRight, err)
		}
	}

	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		width := float64(min(max(w+2, minColumnWidth), maxColumnWidth))
		if err := f.SetColWidth(plan.Name, name, name, width); err != nil {
			return fmt.Errorf("sizing column %s: %w", name, err)
		}
	}
	return nil
}

func cellStyle(key styleKey) *excelize.Style {
	style := &excelize.Style{Alignment: &excelize.Alignment{WrapText: true}}
	switch key.align {
	case model.AlignLeft, model.AlignCenter, model.AlignRight, model.AlignJustify:
		style.Alignment.Horizontal = string(key.align)
	}
	switch key.valign {
	case model.VAlignTop, model.VAlignBottom:
		style.Alignment.Vertical = string(key.valign)
	case model.VAlignMiddle:
		style.Alignment.Vertical = "center"
	}
	if key.bold {
		style.Font = &excelize.Font{Bold: true}
	}
	return style
}

// Write writes the tables of doc to w as an XLSX workbook
func Write(w io.Writer, doc *model.Node, opts Options) error {
	f, err := Workbook(doc, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteFile saves the tables of doc as an XLSX workbook at path
func WriteFile(path string, doc *model.Node, opts Options) error {
	f, err := Workbook(doc, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
