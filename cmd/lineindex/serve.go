package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/lineindex/pkg/serve"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a streaming NDJSON server",
	Long: `Run lineindex as a long-lived server that accepts requests via stdin and
writes responses to stdout using NDJSON format.

One source is open at a time. The process handles requests until stdin
closes, a close request arrives, or SIGTERM is received.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Standard input carries requests, so "-" cannot name a source.
	srcCfg := sourceConfig(cmd, cfg)
	srcCfg.Stdin = eofReader{}

	srv := serve.NewServer(serve.SourceOpener(srcCfg), cmd.InOrStdin(), cmd.OutOrStdout(), streamOptions(cfg)...)
	return srv.Run(ctx)
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
