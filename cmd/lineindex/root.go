package main

import (
	"github.com/spf13/cobra"

	"github.com/praetorian-inc/lineindex/pkg/config"
	"github.com/praetorian-inc/lineindex/pkg/source"
	"github.com/praetorian-inc/lineindex/pkg/stream"
)

var (
	verbose       bool
	quiet         bool
	configPath    string
	bufferSize    int
	outputFormat  string
	colorMode     string
	datastorePath string
)

var rootCmd = &cobra.Command{
	Use:   "lineindex",
	Short: "Convert between byte offsets and line/column positions",
	Long: `lineindex maps byte offsets to line and column positions, and back, for
files, archive members, git blobs and remote objects.

Sources are read forward only and only as far as each query needs. Drained
line tables can be kept in a datastore so later lookups skip the read.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	flags.StringVar(&configPath, "config", "", "Config file (default: user config dir)")
	flags.IntVar(&bufferSize, "buffer-size", 0, "Bytes read per scan step (default from config)")
	flags.StringVar(&outputFormat, "format", "", "Output format: human, json, yaml (default from config)")
	flags.StringVar(&colorMode, "color", "", "Color output: auto, always, never (default from config)")
	flags.StringVar(&datastorePath, "datastore", "", "Datastore directory for stored line indexes")

	// Add subcommands
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(offsetCmd)
	rootCmd.AddCommand(linesCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the configuration file and applies global flag
// overrides. Zero flag values leave the configured value in place.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if bufferSize != 0 {
		cfg.BufferSize = bufferSize
	}
	if outputFormat != "" {
		cfg.Format = outputFormat
	}
	if colorMode != "" {
		cfg.Color = colorMode
	}
	if datastorePath != "" {
		cfg.Datastore = datastorePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func sourceConfig(cmd *cobra.Command, cfg *config.Config) source.Config {
	return source.Config{
		Stdin:         cmd.InOrStdin(),
		GitHubToken:   cfg.GitHub.Token,
		GitHubBaseURL: cfg.GitHub.BaseURL,
		GitLabToken:   cfg.GitLab.Token,
		GitLabBaseURL: cfg.GitLab.BaseURL,
		AWSRegion:     cfg.AWSRegion,
		AWSRoleARN:    cfg.AWSRoleARN,
		S3Endpoint:    cfg.S3Endpoint,
		IncludeHidden: cfg.IncludeHidden,
		Workers:       cfg.Workers,
	}
}

func streamOptions(cfg *config.Config) []stream.Option {
	return []stream.Option{stream.WithBufferSize(cfg.BufferSize)}
}
