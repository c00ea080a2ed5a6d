package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/solwatch/solwatch/internal/txreport"

	"github.com/urfave/cli/v3"
)

// startPipelineCommand returns a CLI command that starts the wallet watching
// pipeline: the signature subscription, the transaction processor pool, and
// activity reporting.
//
// Usage example:
//
//	solwatch start
//
// The process runs indefinitely until it receives an interrupt (SIGINT or SIGTERM).
func startPipelineCommand(tr txreport.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the wallet watching pipeline including the signature subscription and transaction reporting.",
		Usage:       "Initializes and runs the full pipeline. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			if err := tr.Start(ctx); err != nil {
				return err
			}
			defer tr.Close()

			<-quit
			return nil
		},
	}
}
