package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solana-sell-engine/internal/domain"
)

type submitOutcome struct {
	path       string
	signature  string
	err        error
	durationMs int64
}

// race submits the signed transaction on every channel concurrently and
// returns the first signature to land. Losing channels are cancelled once
// a winner is known; a submission already in flight is not recalled and
// resolves to the same transaction signature.
func (p *Pipeline) race(ctx context.Context, signedTxBase64 string, result *domain.WalletSellResult) (string, string, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan submitOutcome, len(p.submitters))
	for _, s := range p.submitters {
		go func(s Submitter) {
			started := time.Now()
			submitCtx, cancelSubmit := context.WithTimeout(raceCtx, p.submitTimeout)
			defer cancelSubmit()

			signature, err := s.Submit(submitCtx, signedTxBase64)
			outcomes <- submitOutcome{
				path:       s.Name(),
				signature:  signature,
				err:        err,
				durationMs: time.Since(started).Milliseconds(),
			}
		}(s)
	}

	var errs []error
	for i := 0; i < len(p.submitters); i++ {
		out := <-outcomes

		attempt := domain.PathAttempt{
			Path:       out.path,
			Stage:      domain.StageSubmit,
			OK:         out.err == nil,
			DurationMs: out.durationMs,
		}
		if out.err != nil {
			attempt.Err = out.err.Error()
			result.Attempts = append(result.Attempts, attempt)
			errs = append(errs, fmt.Errorf("%s: %w", out.path, out.err))
			p.logf("submit via %s failed: %v", out.path, out.err)
			continue
		}

		result.Attempts = append(result.Attempts, attempt)
		return out.signature, out.path, nil
	}
	return "", "", fmt.Errorf("all broadcast channels failed: %w", errors.Join(errs...))
}
