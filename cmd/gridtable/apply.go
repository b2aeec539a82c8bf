package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/gridtable"
	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/store"
)

func newApplyCmd() *cobra.Command {
	var (
		pos        int
		cell       string
		dbPath     string
		to         string
		outputPath string
		noPromote  bool
	)

	cmd := &cobra.Command{
		Use:   "apply FILE COMMAND [ARG...]",
		Short: "Apply a table command to a document",
		Long: `Apply a table command at a cursor position and write the result.

The cursor is set with --pos (a document position) or --cell
(TABLE:ROW:CELL, all zero-based, rows counted across head, body and foot).
Without either it is placed in the first textblock.

With --db, FILE names a stored document; the result is saved as a new
version and is only written out when -o is given.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("pos") && cell != "" {
				return fmt.Errorf("--pos and --cell cannot be used together")
			}

			var (
				doc *model.Node
				st  *store.Store
			)
			if dbPath != "" {
				s, err := store.Open(dbPath)
				if err != nil {
					return err
				}
				defer s.Close()
				st = s

				d, _, err := st.Load(args[0])
				if err != nil {
					return fmt.Errorf("loading %s: %w", args[0], err)
				}
				doc = d
			} else {
				d, warnings, err := gridtable.Open(args[0]).Document()
				if err != nil {
					return err
				}
				printWarnings(cmd, warnings)
				doc = d
			}

			ed := gridtable.New(doc)
			switch {
			case cmd.Flags().Changed("pos"):
				if err := ed.MoveTo(pos); err != nil {
					return err
				}
			case cell != "":
				t, r, c, err := parseCellAddress(cell)
				if err != nil {
					return err
				}
				if err := ed.MoveToCell(t, r, c); err != nil {
					return err
				}
			}

			name := args[1]
			ok, err := ed.Exec(name, args[2:]...)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s does not apply at the cursor", name)
			}
			if err := ed.Validate(); err != nil {
				return fmt.Errorf("invalid result: %w", err)
			}

			if st != nil {
				v, err := st.Save(args[0], ed.Doc())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved %s version %d\n", args[0], v)
				if outputPath == "" {
					return nil
				}
			}

			f, err := outputFormat(to, outputPath)
			if err != nil {
				return err
			}
			c := gridtable.FromDocument(ed.Doc())
			if noPromote {
				c = c.NoPromotion()
			}
			return writeOutput(cmd, c, f, outputPath)
		},
	}

	cmd.Flags().IntVar(&pos, "pos", 0, "Cursor position in the document")
	cmd.Flags().StringVar(&cell, "cell", "", "Cursor cell as TABLE:ROW:CELL")
	cmd.Flags().StringVar(&dbPath, "db", "", "Snapshot database; FILE is then a stored document name")
	cmd.Flags().StringVar(&to, "to", "", "Output format: markdown, html, json, xlsx")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&noPromote, "no-promote", false, "Keep every grid table in grid form")
	return cmd
}

// parseCellAddress parses TABLE:ROW:CELL
func parseCellAddress(s string) (table, row, cell int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid cell %q: want TABLE:ROW:CELL", s)
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, 0, 0, fmt.Errorf("invalid cell %q: want TABLE:ROW:CELL", s)
		}
		n[i] = v
	}
	return n[0], n[1], n[2], nil
}
