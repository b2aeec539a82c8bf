package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/gridtable"
	"github.com/tsawler/gridtable/model"
	"github.com/tsawler/gridtable/store"
)

func newStoreCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep versioned snapshots of documents",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "gridtable.db", "Snapshot database path")

	withStore := func(fn func(cmd *cobra.Command, s *store.Store, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			return fn(cmd, s, args)
		}
	}

	save := &cobra.Command{
		Use:   "save NAME FILE",
		Short: "Save a document as the next version of NAME",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			doc, warnings, err := gridtable.Open(args[1]).Document()
			if err != nil {
				return err
			}
			printWarnings(cmd, warnings)

			v, err := s.Save(args[0], doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s version %d\n", args[0], v)
			return nil
		}),
	}

	var (
		version    int
		to         string
		outputPath string
		noPromote  bool
	)
	show := &cobra.Command{
		Use:   "show NAME",
		Short: "Write a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			var doc *model.Node
			var err error
			if version > 0 {
				doc, err = s.LoadVersion(args[0], version)
			} else {
				doc, _, err = s.Load(args[0])
			}
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}

			f, err := outputFormat(to, outputPath)
			if err != nil {
				return err
			}
			c := gridtable.FromDocument(doc)
			if noPromote {
				c = c.NoPromotion()
			}
			return writeOutput(cmd, c, f, outputPath)
		}),
	}
	show.Flags().IntVar(&version, "version", 0, "Version to show (default: latest)")
	show.Flags().StringVar(&to, "to", "", "Output format: markdown, html, json, xlsx")
	show.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	show.Flags().BoolVar(&noPromote, "no-promote", false, "Keep every grid table in grid form")

	log := &cobra.Command{
		Use:   "log [NAME]",
		Short: "List the versions of NAME, or every stored name",
		Args:  cobra.MaximumNArgs(1),
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			if len(args) == 0 {
				names, err := s.Names()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			versions, err := s.Versions(args[0])
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}
			printVersions(cmd, versions)
			return nil
		}),
	}

	var limit int
	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find snapshots whose text contains QUERY",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			versions, err := s.Search(args[0], limit)
			if err != nil {
				return err
			}
			printVersions(cmd, versions)
			return nil
		}),
	}
	search.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")

	del := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete every version of NAME",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			return s.Delete(args[0])
		}),
	}

	cmd.AddCommand(save, show, log, search, del)
	return cmd
}

func printVersions(cmd *cobra.Command, versions []store.Version) {
	for _, v := range versions {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%d tables\n",
			v.Name, v.Version, v.Saved.Format(time.RFC3339), v.Tables)
	}
}
