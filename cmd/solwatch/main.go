package main

import (
	"context"
	"os"

	"github.com/solwatch/solwatch/internal/config"
	"github.com/solwatch/solwatch/internal/handlers/cli"
	"github.com/solwatch/solwatch/internal/infra/blockchain/solana"
	redisstorage "github.com/solwatch/solwatch/internal/infra/storage/redis"
	"github.com/solwatch/solwatch/internal/pkg/logger"
	"github.com/solwatch/solwatch/internal/pkg/resilience/retry"
	"github.com/solwatch/solwatch/internal/pkg/telemetry"
	internalhttp "github.com/solwatch/solwatch/internal/pkg/transport/http"
	"github.com/solwatch/solwatch/internal/pkg/transport/jsonrpc"
	"github.com/solwatch/solwatch/internal/pricing"
	"github.com/solwatch/solwatch/internal/tokenmeta"
	"github.com/solwatch/solwatch/internal/txreport"
)

const serviceName = "solwatch"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if cfg.OtelEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			os.Stderr.WriteString("telemetry initialization failed: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("logger initialization failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	httpClient := internalhttp.NewClient()
	rpcClient := jsonrpc.NewClient(httpClient.StandardClient(), cfg.RPCEndpoint)

	chain := solana.NewClient(rpcClient, solana.WithRetry(retry.New()))
	stream := solana.NewSubscription(cfg.WSEndpoint, cfg.WalletAddress)

	var (
		cache tokenmeta.Cache = tokenmeta.NewMemoryCache()
		guard txreport.IdempotencyGuard
	)
	if cfg.Redis.Addr != "" {
		store, err := redisstorage.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal(ctx, "redis connection failed", "error", err)
		}
		defer store.Close()

		cache = store
		guard = store
	}

	resolver := tokenmeta.New(chain, cache)

	processorOpts := []txreport.Option{
		txreport.WithConcurrency(cfg.Concurrency),
	}
	if guard != nil {
		processorOpts = append(processorOpts, txreport.WithIdempotencyGuard(guard))
	}

	processor := txreport.New(
		cfg.WalletAddress,
		chain,
		resolver,
		txreport.NewWriterNotifier(os.Stdout),
		stream,
		processorOpts...,
	)

	pricingOpts := []pricing.Option{}
	if cfg.PricingBaseURL != "" {
		pricingOpts = append(pricingOpts, pricing.WithBaseURL(cfg.PricingBaseURL))
	}
	quotes := pricing.New(internalhttp.NewClient(), pricingOpts...)

	if err := cli.Run(ctx, processor, resolver, quotes); err != nil {
		logger.Fatal(ctx, "solwatch terminated with an error", "error", err)
	}
}
