package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tsawler/gridtable"
	"github.com/tsawler/gridtable/model"
)

func newNewCmd() *cobra.Command {
	var (
		header     bool
		footer     bool
		to         string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "new ROWS COLS",
		Short: "Write an empty grid table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := strconv.Atoi(args[0])
			if err != nil || rows < 1 {
				return fmt.Errorf("invalid row count: %s", args[0])
			}
			cols, err := strconv.Atoi(args[1])
			if err != nil || cols < 1 {
				return fmt.Errorf("invalid column count: %s", args[1])
			}

			f, err := outputFormat(to, outputPath)
			if err != nil {
				return err
			}
			doc := model.NewDoc(model.BuildTable(rows, cols, header, footer))
			return writeOutput(cmd, gridtable.FromDocument(doc).NoPromotion(), f, outputPath)
		},
	}

	cmd.Flags().BoolVar(&header, "header", false, "Put the first row in a header section")
	cmd.Flags().BoolVar(&footer, "footer", false, "Add a footer row")
	cmd.Flags().StringVar(&to, "to", "", "Output format: markdown, html, json, xlsx")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}
