package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/gridtable"
)

func newConvertCmd() *cobra.Command {
	var (
		to         string
		outputPath string
		noPromote  bool
		pretty     bool
		sheet      string
	)

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a document to another format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			if _, err := os.Stat(inputPath); os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", inputPath)
			}

			f, err := outputFormat(to, outputPath)
			if err != nil {
				return err
			}

			c := gridtable.Open(inputPath)
			if noPromote {
				c = c.NoPromotion()
			}
			if pretty {
				c = c.Pretty()
			}
			if sheet != "" {
				c = c.Sheet(sheet)
			}
			return writeOutput(cmd, c, f, outputPath)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output format: markdown, html, json, xlsx (default: from -o, else markdown)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&noPromote, "no-promote", false, "Keep every grid table in grid form")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent HTML output")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name for xlsx output")
	return cmd
}
