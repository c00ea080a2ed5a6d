// Package pricing looks up indicative USD quotes for SPL token mints from a
// DexScreener-compatible pairs API. Quotes are best effort: a mint with no
// listed pair simply has no price.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
)

// defaultBaseURL is the public DexScreener API root.
const defaultBaseURL = "https://api.dexscreener.com"

// Service quotes token mints in USD.
type Service interface {
	// UsdPrice returns the current USD price for the mint. The boolean is
	// false when no pair quoting the mint exists; errors are reserved for
	// transport and decoding failures.
	UsdPrice(ctx context.Context, mint string) (decimal.Decimal, bool, error)
}

type (
	pairResponse struct {
		PriceUsd string `json:"priceUsd"`
	}

	tokenPairsResponse struct {
		Pairs []pairResponse `json:"pairs"`
	}
)

type service struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

var _ Service = (*service)(nil)

type config struct {
	baseURL string
}

// Option configures the pricing service.
type Option func(*config)

// WithBaseURL overrides the pairs API root, mainly for tests and self-hosted
// mirrors.
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

// New creates a pricing service on top of the given retrying HTTP client.
func New(httpClient *retryablehttp.Client, opts ...Option) *service {
	cfg := config{baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		baseURL:    strings.TrimRight(cfg.baseURL, "/"),
		httpClient: httpClient,
	}
}

// UsdPrice implements Service. The first pair returned by the API wins; it is
// the most liquid one in DexScreener's ordering.
func (s *service) UsdPrice(ctx context.Context, mint string) (decimal.Decimal, bool, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", s.baseURL, mint)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, false, err
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, false, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decimal.Zero, false, fmt.Errorf("pairs api returned status %d", res.StatusCode)
	}

	var pairs tokenPairsResponse
	if err := json.NewDecoder(res.Body).Decode(&pairs); err != nil {
		return decimal.Zero, false, err
	}

	if len(pairs.Pairs) == 0 || pairs.Pairs[0].PriceUsd == "" {
		return decimal.Zero, false, nil
	}

	price, err := decimal.NewFromString(pairs.Pairs[0].PriceUsd)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parsing priceUsd %q: %w", pairs.Pairs[0].PriceUsd, err)
	}

	return price, true, nil
}
