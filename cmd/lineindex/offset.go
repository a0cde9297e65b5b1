package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/lineindex/pkg/types"
)

var (
	offsetOneBased bool
)

var offsetCmd = &cobra.Command{
	Use:   "offset <source> <line:column>...",
	Short: "Convert line and column positions to byte offsets",
	Long: `Convert line:column positions to byte offsets.

Positions are read as zero-based unless --one-based is given. A column past
the end of its line is not rejected; it yields an offset further on.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runOffset,
}

func init() {
	offsetCmd.Flags().BoolVar(&offsetOneBased, "one-based", false, "Read positions as one-based")
}

// resolvedPosition is one offset result. Line and Column echo the input.
type resolvedPosition struct {
	Line   int64 `json:"line" yaml:"line"`
	Column int64 `json:"column" yaml:"column"`
	Offset int64 `json:"offset" yaml:"offset"`
}

// parsePosition parses "line:column".
func parsePosition(s string) (line, column int64, err error) {
	l, c, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid position %q: want line:column", s)
	}
	if line, err = strconv.ParseInt(l, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid line in %q: %w", s, err)
	}
	if column, err = strconv.ParseInt(c, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid column in %q: %w", s, err)
	}
	return line, column, nil
}

func runOffset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	inputs := make([]resolvedPosition, 0, len(args)-1)
	positions := make([]types.Position, 0, len(args)-1)
	for _, arg := range args[1:] {
		line, column, err := parsePosition(arg)
		if err != nil {
			return err
		}
		pos := types.Pos(line, column)
		if offsetOneBased {
			ob, err := types.NewOneBasedPosition(line, column)
			if err != nil {
				return err
			}
			pos = ob.ZeroBased()
		}
		inputs = append(inputs, resolvedPosition{Line: line, Column: column})
		positions = append(positions, pos)
	}

	t, err := openTarget(context.Background(), cmd, cfg, args[0])
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer t.Close()

	for i, pos := range positions {
		off, err := t.locator.OffsetOf(pos)
		if err != nil {
			return fmt.Errorf("position %s: %w", args[i+1], err)
		}
		inputs[i].Offset = off.Raw()
	}

	return newPrinter(cmd, cfg).emit(inputs, func(w io.Writer, s *styles) {
		for _, r := range inputs {
			fmt.Fprintf(w, "%s\t%s\n", s.position.Sprintf("%d:%d", r.Line, r.Column), s.offset.Sprint(r.Offset))
		}
	})
}
