package cli

import (
	"context"
	"fmt"

	"github.com/solwatch/solwatch/internal/pricing"
	"github.com/solwatch/solwatch/internal/tokenmeta"

	"github.com/urfave/cli/v3"
)

// resolveTokenCommand returns a CLI command that resolves a mint's on-chain
// metadata and prints it.
//
// Usage example:
//
//	solwatch resolve --mint EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v
func resolveTokenCommand(tm tokenmeta.Service) *cli.Command {
	return &cli.Command{
		Name:        "resolve",
		Description: "Resolve a token mint's name, symbol and decimals from its metadata account.",
		Usage:       "Resolves token metadata for a mint address.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "mint",
				Usage:    "Token mint address to resolve",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			metadata := tm.Resolve(ctx, c.String("mint"))

			_, err := fmt.Fprintf(c.Root().Writer, "Name: %s\nSymbol: %s\nDecimals: %d\n",
				metadata.Name, metadata.Symbol, metadata.Decimals)
			return err
		},
	}
}

// priceTokenCommand returns a CLI command that quotes a mint in USD.
//
// Usage example:
//
//	solwatch price --mint EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v
func priceTokenCommand(pr pricing.Service) *cli.Command {
	return &cli.Command{
		Name:        "price",
		Description: "Quote a token mint in USD from the pairs API.",
		Usage:       "Fetches the current USD price for a mint address.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "mint",
				Usage:    "Token mint address to quote",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			mint := c.String("mint")

			price, found, err := pr.UsdPrice(ctx, mint)
			if err != nil {
				return err
			}

			if !found {
				_, err := fmt.Fprintf(c.Root().Writer, "No USD price available for %s\n", mint)
				return err
			}

			_, err = fmt.Fprintf(c.Root().Writer, "Price: $%s\n", price.String())
			return err
		},
	}
}
