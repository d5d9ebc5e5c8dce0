package corroborate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"truthlens/internal/discovery"
	"truthlens/internal/logger"
	"truthlens/internal/metrics"
	"truthlens/internal/query"
)

// orchestrator runs (variant, provider) searches on a shared worker pool.
type orchestrator struct {
	pool    *ants.Pool
	timeout time.Duration
	log     logger.Logger
	metrics *metrics.Metrics
}

// gather searches every provider for each query variant in priority order,
// moving to the next variant only while fewer than target candidates have
// been collected. Provider failures are logged and count as no results.
// Within a variant, candidates follow provider order.
func (o *orchestrator) gather(ctx context.Context, queries query.Queries, providers []discovery.Provider, target int) []discovery.Candidate {
	var (
		out   []discovery.Candidate
		count atomic.Int64
	)
	for i, variant := range queries {
		if ctx.Err() != nil || int(count.Load()) >= target {
			break
		}
		if i > 0 {
			o.log.Debug("widening search",
				logger.String("variant", variant),
				logger.Int("collected", int(count.Load())),
			)
		}

		slots := make([][]discovery.Candidate, len(providers))
		var wg sync.WaitGroup
		for j, p := range providers {
			if int(count.Load()) >= target {
				o.metrics.ObserveProviderCall(p.Name(), metrics.OutcomeSkipped, 0, 0)
				continue
			}
			wg.Add(1)
			err := o.pool.Submit(func() {
				defer wg.Done()
				found := o.search(ctx, p, variant, target)
				for k := range found {
					found[k].Query = variant
				}
				slots[j] = found
				count.Add(int64(len(found)))
			})
			if err != nil {
				wg.Done()
				o.log.Error("submit provider search",
					logger.String("provider", p.Name()),
					logger.Error(err),
				)
			}
		}
		wg.Wait()

		for _, s := range slots {
			out = append(out, s...)
		}
	}
	return out
}

// search runs one provider call bounded by the per-call timeout. A provider
// that ignores its context is abandoned when the timeout fires.
func (o *orchestrator) search(ctx context.Context, p discovery.Provider, variant string, limit int) []discovery.Candidate {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type outcome struct {
		cands []discovery.Candidate
		err   error
	}
	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%s: provider panic: %v", p.Name(), r)}
			}
		}()
		cands, err := p.Search(callCtx, variant, limit)
		done <- outcome{cands: cands, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-callCtx.Done():
		res.err = abandoned(p.Name(), callCtx.Err())
	}
	elapsed := time.Since(start)

	if res.err != nil {
		kind := discovery.KindOf(res.err)
		o.metrics.ObserveProviderCall(p.Name(), kind.String(), 0, elapsed)
		o.log.Warn("provider search failed",
			logger.String("provider", p.Name()),
			logger.String("variant", variant),
			logger.String("kind", kind.String()),
			logger.Duration("elapsed", elapsed),
			logger.Error(res.err),
		)
		return nil
	}

	outcomeLabel := metrics.OutcomeOK
	if len(res.cands) == 0 {
		outcomeLabel = metrics.OutcomeEmpty
	}
	o.metrics.ObserveProviderCall(p.Name(), outcomeLabel, len(res.cands), elapsed)
	o.log.Debug("provider search done",
		logger.String("provider", p.Name()),
		logger.String("variant", variant),
		logger.Int("candidates", len(res.cands)),
		logger.Duration("elapsed", elapsed),
	)
	return res.cands
}

func abandoned(provider string, err error) error {
	kind := discovery.KindUnreachable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = discovery.KindTimeout
	}
	return &discovery.ProviderError{Provider: provider, Kind: kind, Err: err}
}
