package main

import (
	"github.com/spf13/cobra"

	"github.com/praetorian-inc/lineindex/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long:  "Print the configuration after applying the config file, environment and flags. Tokens are redacted.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return config.Write(cmd.OutOrStdout(), cfg)
}
