package swap

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultRelayTimeout bounds a single relay call. Build and submit are
// additionally boxed by the caller's phase deadlines.
const DefaultRelayTimeout = 10 * time.Second

// RelayClient talks to the low-latency relay. The relay both builds sell
// transactions and accepts signed transactions for broadcast.
type RelayClient struct {
	client  *resty.Client
	verbose bool
}

// RelayOptions configures a RelayClient.
type RelayOptions struct {
	Endpoint  string
	APIKey    string
	Timeout   time.Duration // 0 = DefaultRelayTimeout
	RetryWait time.Duration // 0 = DefaultRetryWait
	Verbose   bool
}

// NewRelayClient creates a client for the given relay endpoint.
func NewRelayClient(opts RelayOptions) *RelayClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultRelayTimeout
	}
	retryWait := opts.RetryWait
	if retryWait == 0 {
		retryWait = DefaultRetryWait
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.Endpoint, "/")).
		SetTimeout(timeout).
		SetHeader("X-API-Key", opts.APIKey).
		SetRetryCount(DefaultAggregatorRetries).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(DefaultRetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests
		})

	return &RelayClient{client: client, verbose: opts.Verbose}
}

// BuildSellRequest describes a sell the relay should build a transaction for.
type BuildSellRequest struct {
	Wallet      string
	Mint        string
	Amount      uint64 // raw base units to sell
	SlippageBps int
}

type relayBuildRequest struct {
	Wallet      string `json:"wallet"`
	Mint        string `json:"mint"`
	Side        string `json:"side"`
	Amount      string `json:"amount"`
	SlippageBps int    `json:"slippageBps"`
}

type relayBuildResponse struct {
	Transaction string `json:"transaction"`
}

// BuildSell asks the relay for an unsigned base64 sell transaction.
func (r *RelayClient) BuildSell(ctx context.Context, req BuildSellRequest) (string, error) {
	if req.Wallet == "" || req.Mint == "" {
		return "", fmt.Errorf("relay build requires wallet and mint")
	}
	if req.Amount == 0 {
		return "", fmt.Errorf("relay build requires a non-zero amount")
	}

	var parsed relayBuildResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(relayBuildRequest{
			Wallet:      req.Wallet,
			Mint:        req.Mint,
			Side:        "sell",
			Amount:      strconv.FormatUint(req.Amount, 10),
			SlippageBps: req.SlippageBps,
		}).
		SetResult(&parsed).
		Post("/v1/transactions/sell")
	if err != nil {
		return "", fmt.Errorf("relay build failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("relay build failed: status %d: %s",
			resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	if parsed.Transaction == "" {
		return "", fmt.Errorf("relay build response contains no transaction")
	}

	r.logf("built sell for %s: amount=%d", req.Wallet, req.Amount)
	return parsed.Transaction, nil
}

type relaySubmitRequest struct {
	Transaction string `json:"transaction"`
}

type relaySubmitResponse struct {
	Signature string `json:"signature"`
}

// Submit broadcasts a signed base64 transaction through the relay and
// returns the transaction signature.
func (r *RelayClient) Submit(ctx context.Context, signedTxBase64 string) (string, error) {
	if signedTxBase64 == "" {
		return "", fmt.Errorf("relay submit requires a signed transaction")
	}

	var parsed relaySubmitResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(relaySubmitRequest{Transaction: signedTxBase64}).
		SetResult(&parsed).
		Post("/v1/transactions/submit")
	if err != nil {
		return "", fmt.Errorf("relay submit failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("relay submit failed: status %d: %s",
			resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	if parsed.Signature == "" {
		return "", fmt.Errorf("relay submit response contains no signature")
	}

	r.logf("submitted: %s", parsed.Signature)
	return parsed.Signature, nil
}

func (r *RelayClient) logf(format string, args ...interface{}) {
	if r.verbose {
		log.Printf("[relay] "+format, args...)
	}
}
