package cli

import (
	"context"

	"github.com/solwatch/solwatch/internal/txreport"

	"github.com/urfave/cli/v3"
)

// inspectTransactionCommand returns a CLI command that processes a single
// transaction signature and prints the resulting activity report, without
// starting the subscription pipeline.
//
// Usage example:
//
//	solwatch inspect --signature 5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7
func inspectTransactionCommand(tr txreport.Service) *cli.Command {
	return &cli.Command{
		Name:        "inspect",
		Description: "Process one confirmed transaction and report the watched wallet's balance changes.",
		Usage:       "Fetches and reports a single transaction by signature.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "signature",
				Usage:    "Transaction signature to inspect",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return tr.ProcessSignature(ctx, c.String("signature"))
		},
	}
}
