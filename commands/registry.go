package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/gridtable/model"
)

// Factory builds a command from textual arguments
type Factory func(args []string) (Command, error)

// Registry maps command names to factories. It is passed explicitly to
// whatever dispatches commands by name, such as a keymap or the CLI.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty command registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register registers a factory under name
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Get retrieves a factory by name
func (r *Registry) Get(name string) Factory {
	return r.factories[name]
}

// List returns all registered command names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the command registered under name
func (r *Registry) Lookup(name string, args ...string) (Command, error) {
	f := r.Get(name)
	if f == nil {
		return nil, fmt.Errorf("unknown command %q (known: %s)", name, strings.Join(r.List(), ", "))
	}
	cmd, err := f(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cmd, nil
}

// DefaultRegistry returns a registry holding every table command:
//
//	insertTable ROWS COLS [header] [footer]
//	exitTable, nextCell, prevCell
//	addRowAfter, addRowBefore, deleteRow
//	addColumnAfter, addColumnBefore, deleteColumn
//	mergeCellRight, splitCell
//	setAlign left|center|right|justify|none
//	setVAlign top|middle|bottom|none
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for name, cmd := range map[string]Command{
		"exitTable":       ExitTable,
		"nextCell":        NextCell,
		"prevCell":        PrevCell,
		"addRowAfter":     AddRowAfter,
		"addRowBefore":    AddRowBefore,
		"deleteRow":       DeleteRow,
		"addColumnAfter":  AddColumnAfter,
		"addColumnBefore": AddColumnBefore,
		"deleteColumn":    DeleteColumn,
		"mergeCellRight":  MergeCellRight,
		"splitCell":       SplitCell,
	} {
		r.Register(name, fixed(cmd))
	}

	r.Register("insertTable", func(args []string) (Command, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("want ROWS COLS [header] [footer], got %d arguments", len(args))
		}
		rows, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("rows: %w", err)
		}
		cols, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("cols: %w", err)
		}
		var header, footer bool
		for _, flag := range args[2:] {
			switch flag {
			case "header":
				header = true
			case "footer":
				footer = true
			default:
				return nil, fmt.Errorf("unknown option %q", flag)
			}
		}
		return InsertTable(rows, cols, header, footer), nil
	})

	r.Register("setAlign", func(args []string) (Command, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("want one alignment, got %d arguments", len(args))
		}
		a, err := model.ParseAlign(args[0])
		if err != nil {
			return nil, err
		}
		return SetAlign(a), nil
	})

	r.Register("setVAlign", func(args []string) (Command, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("want one vertical alignment, got %d arguments", len(args))
		}
		v, err := model.ParseVAlign(args[0])
		if err != nil {
			return nil, err
		}
		return SetVAlign(v), nil
	})

	return r
}

func fixed(cmd Command) Factory {
	return func(args []string) (Command, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("takes no arguments, got %d", len(args))
		}
		return cmd, nil
	}
}
