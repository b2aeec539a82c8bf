// Package main provides the CLI entry point for gridtable.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/gridtable"
	"github.com/tsawler/gridtable/format"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gridtable",
		Short: "Edit and convert documents holding spanning grid tables",
		Long: `gridtable reads markdown with grid tables, HTML, Word, PowerPoint,
OpenDocument text, EPUB and document JSON, applies table commands to them
and writes markdown, HTML, JSON or XLSX.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newConvertCmd(),
		newApplyCmd(),
		newNewCmd(),
		newStoreCmd(),
	)
	return rootCmd
}

// outputFormat picks the output format from --to, then from the extension
// of the output path, then falls back to markdown.
func outputFormat(to, outputPath string) (format.Format, error) {
	if to != "" {
		return format.Parse(to)
	}
	if outputPath != "" {
		if f := format.Detect(outputPath); f != format.Unknown {
			return f, nil
		}
	}
	return format.Markdown, nil
}

// writeOutput converts c to f and writes it to outputPath, or to stdout when
// no path is given. Warnings go to stderr.
func writeOutput(cmd *cobra.Command, c *gridtable.Converter, f format.Format, outputPath string) error {
	var w io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer file.Close()
		w = file
	} else if f == format.XLSX {
		return fmt.Errorf("xlsx output needs an output file (-o)")
	}

	warnings, err := c.Convert(w, f)
	if err != nil {
		return err
	}
	printWarnings(cmd, warnings)
	return nil
}

func printWarnings(cmd *cobra.Command, warnings []gridtable.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}
