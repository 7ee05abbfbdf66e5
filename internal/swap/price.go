package swap

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"solana-sell-engine/internal/trigger"
)

// DefaultPriceTimeout bounds a single price lookup. Prices are advisory
// for sizing, so lookups stay short.
const DefaultPriceTimeout = 5 * time.Second

// PriceClient resolves USD prices per whole token from the price oracle
// service.
type PriceClient struct {
	client *resty.Client
}

// PriceOptions configures a PriceClient.
type PriceOptions struct {
	Endpoint  string
	Timeout   time.Duration // 0 = DefaultPriceTimeout
	RetryWait time.Duration // 0 = DefaultRetryWait
}

// NewPriceClient creates a client for the given price endpoint.
func NewPriceClient(opts PriceOptions) *PriceClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultPriceTimeout
	}
	retryWait := opts.RetryWait
	if retryWait == 0 {
		retryWait = DefaultRetryWait
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.Endpoint, "/")).
		SetTimeout(timeout).
		SetRetryCount(DefaultAggregatorRetries).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(DefaultRetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests
		})

	return &PriceClient{client: client}
}

type priceResponse struct {
	Data map[string]priceEntry `json:"data"`
}

type priceEntry struct {
	ID    string `json:"id"`
	Price string `json:"price"`
}

// PriceUSD returns the USD price of one whole token of mint.
func (p *PriceClient) PriceUSD(ctx context.Context, mint string) (float64, error) {
	if mint == "" {
		return 0, fmt.Errorf("price lookup requires a mint")
	}

	var parsed priceResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("ids", mint).
		SetResult(&parsed).
		Get("/price")
	if err != nil {
		return 0, fmt.Errorf("price request failed: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("price request failed: status %d: %s",
			resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}

	entry, ok := parsed.Data[mint]
	if !ok {
		return 0, fmt.Errorf("no price for mint %s", mint)
	}
	price, err := strconv.ParseFloat(entry.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q for mint %s: %w", entry.Price, mint, err)
	}
	return price, nil
}

var _ trigger.PriceOracle = (*PriceClient)(nil)
