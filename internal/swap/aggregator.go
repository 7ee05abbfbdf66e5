// Package swap contains HTTP clients for the external services a sell wave
// depends on: the public swap aggregator (quote and build), the low-latency
// relay (build and submit), and the price oracle.
package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Default settings for the aggregator client.
const (
	DefaultAggregatorTimeout = 15 * time.Second
	DefaultAggregatorRetries = 2
	DefaultRetryWait         = 500 * time.Millisecond
	DefaultRetryMaxWait      = 5 * time.Second
	DefaultQuoteRPS          = 10
	DefaultQuoteBurst        = 2
)

// QuoteRequest describes one quote lookup against the aggregator.
type QuoteRequest struct {
	InputMint   string
	OutputMint  string
	Amount      uint64 // raw base units of the input mint
	SlippageBps int
}

// Quote is a parsed aggregator route. Raw holds the untouched response
// body because the build endpoint expects the quote passed back verbatim.
type Quote struct {
	InputMint  string
	OutputMint string
	InAmount   uint64
	OutAmount  uint64
	Raw        json.RawMessage
}

// AggregatorClient talks to the public quote/swap aggregator.
type AggregatorClient struct {
	client  *resty.Client
	limiter *rate.Limiter
	verbose bool
}

// AggregatorOptions configures an AggregatorClient.
type AggregatorOptions struct {
	Endpoint  string
	Timeout   time.Duration // 0 = DefaultAggregatorTimeout
	RetryWait time.Duration // 0 = DefaultRetryWait
	RPS       float64       // quote/build calls per second, 0 = DefaultQuoteRPS
	Burst     int           // 0 = DefaultQuoteBurst
	Verbose   bool
}

// NewAggregatorClient creates a client for the given aggregator endpoint.
func NewAggregatorClient(opts AggregatorOptions) *AggregatorClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultAggregatorTimeout
	}
	retryWait := opts.RetryWait
	if retryWait == 0 {
		retryWait = DefaultRetryWait
	}
	rps := opts.RPS
	if rps == 0 {
		rps = DefaultQuoteRPS
	}
	burst := opts.Burst
	if burst == 0 {
		burst = DefaultQuoteBurst
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.Endpoint, "/")).
		SetTimeout(timeout).
		SetRetryCount(DefaultAggregatorRetries).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(DefaultRetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Transport errors and rate limiting are retried. HTTP errors
			// carry route information and are mapped, not retried.
			return err != nil || r.StatusCode() == http.StatusTooManyRequests
		})

	return &AggregatorClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		verbose: opts.Verbose,
	}
}

type quoteResponse struct {
	InputMint  string `json:"inputMint"`
	InAmount   string `json:"inAmount"`
	OutputMint string `json:"outputMint"`
	OutAmount  string `json:"outAmount"`
}

type aggregatorError struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"error"`
}

// Quote fetches a swap route for the request.
func (a *AggregatorClient) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if req.InputMint == "" || req.OutputMint == "" {
		return nil, fmt.Errorf("quote requires input and output mints")
	}
	if req.Amount == 0 {
		return nil, fmt.Errorf("quote requires a non-zero amount")
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":   req.InputMint,
			"outputMint":  req.OutputMint,
			"amount":      strconv.FormatUint(req.Amount, 10),
			"slippageBps": strconv.Itoa(req.SlippageBps),
		}).
		Get("/quote")
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quote failed: %w", mapAggregatorError(resp.StatusCode(), resp.Body()))
	}

	var parsed quoteResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}

	inAmount, err := strconv.ParseUint(parsed.InAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid inAmount %q: %w", parsed.InAmount, err)
	}
	outAmount, err := strconv.ParseUint(parsed.OutAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid outAmount %q: %w", parsed.OutAmount, err)
	}

	a.logf("quote %s -> %s: in=%d out=%d", req.InputMint, req.OutputMint, inAmount, outAmount)

	return &Quote{
		InputMint:  parsed.InputMint,
		OutputMint: parsed.OutputMint,
		InAmount:   inAmount,
		OutAmount:  outAmount,
		Raw:        json.RawMessage(resp.Body()),
	}, nil
}

type buildSwapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

type buildSwapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// BuildSwap turns a quote into an unsigned base64 transaction for owner.
func (a *AggregatorClient) BuildSwap(ctx context.Context, quote *Quote, owner string) (string, error) {
	if quote == nil || len(quote.Raw) == 0 {
		return "", fmt.Errorf("build requires a quote")
	}
	if owner == "" {
		return "", fmt.Errorf("build requires an owner address")
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	var parsed buildSwapResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(buildSwapRequest{
			QuoteResponse:    quote.Raw,
			UserPublicKey:    owner,
			WrapAndUnwrapSol: true,
		}).
		SetResult(&parsed).
		Post("/swap")
	if err != nil {
		return "", fmt.Errorf("build request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("build failed: %w", mapAggregatorError(resp.StatusCode(), resp.Body()))
	}
	if parsed.SwapTransaction == "" {
		return "", fmt.Errorf("build response contains no transaction")
	}

	a.logf("build for %s: %d bytes", owner, len(parsed.SwapTransaction))
	return parsed.SwapTransaction, nil
}

// mapAggregatorError translates aggregator error codes into sentinels so
// callers can distinguish route problems from provider outages.
func mapAggregatorError(status int, body []byte) error {
	var apiErr aggregatorError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorCode != "" {
		switch apiErr.ErrorCode {
		case "COULD_NOT_FIND_ANY_ROUTE", "NO_ROUTES_FOUND":
			return fmt.Errorf("%w: %s", ErrNoLiquidity, apiErr.Message)
		case "TOKEN_NOT_TRADABLE":
			return fmt.Errorf("%w: %s", ErrNotTradable, apiErr.Message)
		}
	}
	return fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(body)))
}

func (a *AggregatorClient) logf(format string, args ...interface{}) {
	if a.verbose {
		log.Printf("[swap] "+format, args...)
	}
}
