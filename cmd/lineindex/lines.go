package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var linesCmd = &cobra.Command{
	Use:   "lines <source>",
	Short: "Print the line start table of a source",
	Long: `Read a source to the end and print the byte offset at which each line
begins. The first line always begins at offset 0.`,
	Args: cobra.ExactArgs(1),
	RunE: runLines,
}

// lineTable is the lines command result.
type lineTable struct {
	Source string  `json:"source" yaml:"source"`
	Length int64   `json:"length" yaml:"length"`
	Lines  []int64 `json:"lines" yaml:"lines"`
}

func runLines(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	t, err := openTarget(context.Background(), cmd, cfg, args[0])
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer t.Close()

	table, err := t.table()
	if err != nil {
		return fmt.Errorf("reading %s: %w", t.name, err)
	}
	result := lineTable{Source: t.name, Length: table.Len(), Lines: table.Lines()}

	return newPrinter(cmd, cfg).emit(result, func(w io.Writer, s *styles) {
		fmt.Fprintf(w, "%s (%d bytes, %d lines)\n", s.name.Sprint(result.Source), result.Length, len(result.Lines))
		for i, off := range result.Lines {
			fmt.Fprintf(w, "%s\t%s\n", s.position.Sprint(i), s.offset.Sprint(off))
		}
	})
}
