package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"solana-sell-engine/internal/domain"
)

// DefaultExternalTimeout bounds one call to the external executor. The
// executor runs a whole wave before answering, so the bound is generous.
const DefaultExternalTimeout = 90 * time.Second

// ExternalExecutor POSTs sell requests to a remote executor service.
// Calls are never retried: a second attempt could fire a second wave.
type ExternalExecutor struct {
	client  *resty.Client
	verbose bool
}

// ExternalOptions configures an ExternalExecutor.
type ExternalOptions struct {
	Endpoint string
	Secret   string        // shared bearer secret
	Timeout  time.Duration // 0 = DefaultExternalTimeout
	Verbose  bool
}

// NewExternalExecutor creates a client for the executor endpoint.
func NewExternalExecutor(opts ExternalOptions) *ExternalExecutor {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultExternalTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.Endpoint, "/")).
		SetTimeout(timeout).
		SetAuthToken(opts.Secret)

	return &ExternalExecutor{client: client, verbose: opts.Verbose}
}

func (e *ExternalExecutor) Name() string { return domain.ExecutorExternal }

// Execute POSTs the request to the executor. A response with any HTTP
// status settles the call: non-2xx becomes OK=false with the provider's
// status and body surfaced verbatim. Only transport failures return
// ErrExecutorUnavailable.
func (e *ExternalExecutor) Execute(ctx context.Context, req Request) (*ExecutionResult, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/execute")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutorUnavailable, err)
	}

	result := &ExecutionResult{
		OK:       resp.IsSuccess(),
		Executor: domain.ExecutorExternal,
		Status:   resp.StatusCode(),
		Body:     string(resp.Body()),
	}
	if result.OK {
		var batch domain.BatchResult
		if jsonErr := json.Unmarshal(resp.Body(), &batch); jsonErr != nil {
			e.logf("executor response is not a batch result: %v", jsonErr)
		} else {
			result.Batch = &batch
		}
	}

	e.logf("external execute for %s: status=%d ok=%v", req.Mint, result.Status, result.OK)
	return result, nil
}

func (e *ExternalExecutor) logf(format string, args ...interface{}) {
	if e.verbose {
		log.Printf("[executor] "+format, args...)
	}
}

var _ Executor = (*ExternalExecutor)(nil)
