package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/lineindex/pkg/sarif"
	"github.com/praetorian-inc/lineindex/pkg/types"
)

var (
	annotateOutput string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <source> <diagnostics.json>",
	Short: "Convert offset-based diagnostics to SARIF",
	Long: `Read a JSON array of diagnostics whose spans are byte offsets and write a
SARIF 2.1.0 report with line and column regions resolved against the source.

Each diagnostic has the form:

  {"rule_id": "...", "severity": "error", "message": "...", "span": {"start": 5, "end": 7}}`,
	Args: cobra.ExactArgs(2),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().StringVarP(&annotateOutput, "output", "o", "", "Write the report to a file instead of stdout")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading diagnostics: %w", err)
	}
	var diags []types.Diagnostic
	if err := json.Unmarshal(data, &diags); err != nil {
		return fmt.Errorf("parsing diagnostics %s: %w", args[1], err)
	}

	t, err := openTarget(context.Background(), cmd, cfg, args[0])
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer t.Close()

	sarif.ToolVersion = version
	report, err := sarif.FromDiagnostics(t.name, diags, t.locator)
	if err != nil {
		return err
	}
	out, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	out = append(out, '\n')

	if annotateOutput == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(annotateOutput, out, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	status(cmd, "Wrote %d results to %s", len(diags), annotateOutput)
	return nil
}
