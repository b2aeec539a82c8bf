package commands

import (
	"regexp"
	"strconv"

	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/transform"
)

// Keymap binds key names such as "Tab" or "Mod-Enter" to commands
type Keymap map[string]Command

// DefaultKeymap returns the table navigation bindings
func DefaultKeymap() Keymap {
	return Keymap{
		"Tab":             NextCell,
		"Shift-Tab":       PrevCell,
		"Mod-Enter":       ExitTable,
		"Mod-Shift-Enter": AddRowAfter,
	}
}

// Handle runs the command bound to key. It returns false when the key is
// unbound or its command does not apply.
func (k Keymap) Handle(key string, s State) (bool, *transform.Transaction) {
	cmd, ok := k[key]
	if !ok {
		return false, nil
	}
	return cmd(s)
}

// InputRule rewrites a textblock whose text matches Pattern. Build
// receives the submatches and returns the command that performs the
// rewrite, or nil when the match must be ignored.
type InputRule struct {
	Pattern *regexp.Regexp
	Build   func(match []string) Command
}

// Input rules for typing a table into an empty paragraph:
//
//	|grid-table|           3x3 with a header row
//	|grid-table 4x2|       rows 1-20, cols 1-10, with a header row
//	|grid-table-full 4x2|  rows 2-20, cols 1-10, with header and footer
var (
	TableRule = InputRule{
		Pattern: regexp.MustCompile(`^\|grid-table(?:\s+(\d+)x(\d+))?\|\s?$`),
		Build: func(m []string) Command {
			rows, cols := dimensions(m)
			if rows < 1 || rows > 20 || cols < 1 || cols > 10 {
				return nil
			}
			return InsertTable(rows, cols, true, false)
		},
	}
	FullTableRule = InputRule{
		Pattern: regexp.MustCompile(`^\|grid-table-full(?:\s+(\d+)x(\d+))?\|\s?$`),
		Build: func(m []string) Command {
			rows, cols := dimensions(m)
			if rows < 2 || rows > 20 || cols < 1 || cols > 10 {
				return nil
			}
			return InsertTable(rows, cols, true, true)
		},
	}
)

// DefaultInputRules returns the table input rules
func DefaultInputRules() []InputRule {
	return []InputRule{TableRule, FullTableRule}
}

func dimensions(m []string) (int, int) {
	rows, cols := 3, 3
	if m[1] != "" {
		rows, _ = strconv.Atoi(m[1])
		cols, _ = strconv.Atoi(m[2])
	}
	return rows, cols
}

// ApplyInputRules checks the paragraph holding the cursor against rules.
// When the cursor sits at the end of a paragraph whose whole text matches,
// the paragraph is replaced by what the rule builds.
func ApplyInputRules(rules []InputRule) Command {
	return func(s State) (bool, *transform.Transaction) {
		if !s.Selection.Empty() {
			return false, nil
		}
		r, err := model.Resolve(s.Doc, s.Selection.Head)
		if err != nil || r.Depth == 0 {
			return false, nil
		}
		p := r.Parent()
		if p.Type != model.NodeParagraph || r.ParentOffset != p.ContentSize() {
			return false, nil
		}

		text := p.TextContent()
		for _, rule := range rules {
			m := rule.Pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			cmd := rule.Build(m)
			if cmd == nil {
				continue
			}
			// Clear the paragraph, then let the command replace it.
			start := r.Start(r.Depth)
			tr := transform.New(s.Doc)
			if err := tr.Delete(start, start+p.ContentSize()); err != nil {
				return false, nil
			}
			ok, inner := cmd(NewState(tr.Doc(), model.Cursor(start)))
			if !ok {
				return false, nil
			}
			for _, step := range inner.Steps() {
				if err := tr.Step(step); err != nil {
					return false, nil
				}
			}
			if sel, ok := inner.Selection(); ok {
				tr.SetSelection(sel)
			}
			return true, tr
		}
		return false, nil
	}
}
