package cli

import (
	"context"
	"os"

	"github.com/solwatch/solwatch/internal/pricing"
	"github.com/solwatch/solwatch/internal/tokenmeta"
	"github.com/solwatch/solwatch/internal/txreport"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the solwatch CLI application.
//
// It registers all available commands:
//
//   - `start`: Runs the wallet watching pipeline until interrupted.
//   - `inspect`: Processes a single transaction signature and prints its report.
//   - `resolve`: Resolves a mint's token metadata.
//   - `price`: Quotes a mint in USD.
func Run(ctx context.Context, tr txreport.Service, tm tokenmeta.Service, pr pricing.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "solwatch",
		Description:           "Command-line interface for watching a Solana wallet's transaction activity.",
		Usage:                 "solwatch [command] [flags]",
		Commands: []*cli.Command{
			startPipelineCommand(tr),
			inspectTransactionCommand(tr),
			resolveTokenCommand(tm),
			priceTokenCommand(pr),
		},
	}

	return app.Run(ctx, os.Args)
}
