package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/praetorian-inc/lineindex/pkg/config"
)

// styles holds color formatters for human output
type styles struct {
	name     *color.Color
	offset   *color.Color
	position *color.Color
	heading  *color.Color
	muted    *color.Color
}

// newStyles creates color formatters for human output
// enabled=false respects --color=never and NO_COLOR env var
func newStyles(enabled bool) *styles {
	s := &styles{
		name:     color.New(color.Bold, color.FgHiWhite),
		offset:   color.New(color.FgHiGreen),
		position: color.New(color.Bold, color.FgHiBlue),
		heading:  color.New(color.Bold),
		muted:    color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{s.name, s.offset, s.position, s.heading, s.muted} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// colorEnabled resolves the color mode for out. Auto enables color only on a
// terminal with NO_COLOR unset.
func colorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

// printer writes command results in the configured format.
type printer struct {
	out    io.Writer
	format string
	styles *styles
}

func newPrinter(cmd *cobra.Command, cfg *config.Config) *printer {
	out := cmd.OutOrStdout()
	return &printer{
		out:    out,
		format: cfg.Format,
		styles: newStyles(colorEnabled(cfg.Color, out)),
	}
}

// emit writes v as JSON or YAML, or calls human for the human format.
func (p *printer) emit(v any, human func(w io.Writer, s *styles)) error {
	switch p.format {
	case config.FormatJSON:
		encoder := json.NewEncoder(p.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case config.FormatYAML:
		encoder := yaml.NewEncoder(p.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	}
	human(p.out, p.styles)
	return nil
}

// status writes a progress line to stderr unless --quiet is set.
func status(cmd *cobra.Command, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

// debugf writes a diagnostic line to stderr when --verbose is set.
func debugf(cmd *cobra.Command, format string, args ...any) {
	if !verbose || quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
