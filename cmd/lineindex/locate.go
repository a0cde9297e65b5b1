package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/lineindex/pkg/types"
)

var (
	locateOneBased bool
)

var locateCmd = &cobra.Command{
	Use:   "locate <source> <offset>...",
	Short: "Convert byte offsets to line and column positions",
	Long: `Convert byte offsets to line and column positions.

Positions are zero-based unless --one-based is given. The source is read
only as far as the largest offset requires.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runLocate,
}

func init() {
	locateCmd.Flags().BoolVar(&locateOneBased, "one-based", false, "Print one-based lines and columns")
}

// locatedOffset is one locate result.
type locatedOffset struct {
	Offset int64 `json:"offset" yaml:"offset"`
	Line   int64 `json:"line" yaml:"line"`
	Column int64 `json:"column" yaml:"column"`
}

func runLocate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	offsets := make([]types.Offset, 0, len(args)-1)
	for _, arg := range args[1:] {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid offset %q: %w", arg, err)
		}
		offsets = append(offsets, types.Offset(n))
	}

	t, err := openTarget(context.Background(), cmd, cfg, args[0])
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer t.Close()

	results := make([]locatedOffset, 0, len(offsets))
	for _, off := range offsets {
		pos, err := t.locator.PositionOf(off)
		if err != nil {
			return fmt.Errorf("offset %d: %w", off, err)
		}
		r := locatedOffset{Offset: off.Raw(), Line: pos.Line, Column: pos.Column}
		if locateOneBased {
			ob := pos.OneBased()
			r.Line, r.Column = ob.Line(), ob.Column()
		}
		results = append(results, r)
	}

	if t.stream != nil {
		debugf(cmd, "%s: read %d bytes in %d steps", t.name, t.stream.ReadLen(), t.stream.Stats().ScanSteps)
	}

	return newPrinter(cmd, cfg).emit(results, func(w io.Writer, s *styles) {
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\n", s.offset.Sprint(r.Offset), s.position.Sprintf("%d:%d", r.Line, r.Column))
		}
	})
}
