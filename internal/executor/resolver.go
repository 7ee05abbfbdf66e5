// Package executor resolves which execution path runs a sell: a configured
// external executor service or the in-process wallet pipeline. Both paths
// are normalized into one result shape, so callers never know which ran.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log"

	"solana-sell-engine/internal/domain"
)

// ErrExecutorUnavailable marks the external executor as unreachable or
// misconfigured. The resolver handles it by falling back to the internal
// pipeline; it is never surfaced to the trigger layer.
var ErrExecutorUnavailable = errors.New("executor unavailable")

// Request is the sell payload handed to an executor. NetUSD and SellUSD
// are advisory; execution sells Percentage of each wallet's balance.
type Request struct {
	Mint        string  `json:"mint"`
	Percentage  float64 `json:"percentage"`
	SlippageBps int     `json:"slippageBps"`
	NetUSD      float64 `json:"netUsd"`
	SellUSD     float64 `json:"sellUsd"`
	TriggeredBy string  `json:"triggeredBy"`
}

// ExecutionResult is the normalized outcome of one execution.
type ExecutionResult struct {
	OK       bool                // whether the execution counts as successful
	Executor string              // external | internal
	Status   int                 // HTTP status from the external path, 0 internally
	Body     string              // raw response body
	Batch    *domain.BatchResult // parsed batch, nil when the body is not one
}

// Executor turns a sell request into an execution result.
type Executor interface {
	Name() string
	Execute(ctx context.Context, req Request) (*ExecutionResult, error)
}

// Resolver prefers the external executor when one is configured and falls
// back to the internal pipeline when it is unreachable.
type Resolver struct {
	external Executor
	internal Executor
	verbose  bool
}

// ResolverOptions configures a Resolver. External may be nil.
type ResolverOptions struct {
	External Executor
	Internal Executor
	Verbose  bool
}

// NewResolver creates a Resolver from options.
func NewResolver(opts ResolverOptions) (*Resolver, error) {
	if opts.Internal == nil {
		return nil, fmt.Errorf("resolver requires an internal executor")
	}
	return &Resolver{
		external: opts.External,
		internal: opts.Internal,
		verbose:  opts.Verbose,
	}, nil
}

// Execute runs the sell on the first available path. An external executor
// that responds, with any status, settles the request; only an unreachable
// one falls through to the internal pipeline.
func (r *Resolver) Execute(ctx context.Context, req Request) (*ExecutionResult, error) {
	if r.external != nil {
		result, err := r.external.Execute(ctx, req)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrExecutorUnavailable) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logf("external executor unavailable, falling back to internal: %v", err)
	}
	return r.internal.Execute(ctx, req)
}

func (r *Resolver) logf(format string, args ...interface{}) {
	if r.verbose {
		log.Printf("[executor] "+format, args...)
	}
}
