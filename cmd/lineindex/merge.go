package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/lineindex/pkg/store"
)

var (
	mergeOutput string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source1.db> <source2.db> [source3.db...]",
	Short: "Merge multiple index databases",
	Long: `Merge multiple index databases into a single output database.

Sources and output may be SQLite paths or postgres:// connection strings.
This is useful for combining indexes built on different machines.

Deduplication is automatic - an index stored in several sources is kept
once, with the provenance of every source.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output database path")
}

func runMerge(cmd *cobra.Command, args []string) error {
	var srcs []store.Store
	defer func() {
		for _, s := range srcs {
			s.Close()
		}
	}()
	for _, path := range args {
		s, err := store.New(store.Config{Path: path})
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		srcs = append(srcs, s)
	}

	dst, err := store.New(store.Config{Path: mergeOutput})
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer dst.Close()

	stats, err := store.Merge(dst, srcs...)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merge complete:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Sources processed: %d\n", stats.SourcesProcessed)
	fmt.Fprintf(cmd.OutOrStdout(), "  Indexes merged: %d\n", stats.IndexesMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Indexes skipped: %d\n", stats.IndexesSkipped)
	fmt.Fprintf(cmd.OutOrStdout(), "  Provenance merged: %d\n", stats.ProvenanceMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", mergeOutput)

	return nil
}
