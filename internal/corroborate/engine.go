package corroborate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"

	"truthlens/internal/config"
	"truthlens/internal/discovery"
	"truthlens/internal/logger"
	"truthlens/internal/metrics"
	"truthlens/internal/query"
)

// ErrNoProviders is returned by NewEngine when it is given no providers.
var ErrNoProviders = errors.New("at least one provider is required")

// ResultCache stores encoded results. Do returns the cached value for key or
// calls compute; a computed value is stored only when compute says so.
type ResultCache interface {
	Do(ctx context.Context, key string, compute func(context.Context) ([]byte, bool, error)) ([]byte, error)
}

// Engine corroborates text against news providers. It is safe for
// concurrent use and holds no per-request state.
type Engine struct {
	providers      []discovery.Provider
	orch           *orchestrator
	scorer         Scorer
	ranker         Ranker
	targetCount    int
	defaultResults int
	poolSize       int
	cache          ResultCache
	log            logger.Logger
	metrics        *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine) error

// WithConfig applies engine settings from configuration.
func WithConfig(cfg config.EngineConfig) Option {
	return func(e *Engine) error {
		if cfg.CallTimeout > 0 {
			e.orch.timeout = cfg.CallTimeout
		}
		if cfg.TargetCount > 0 {
			e.targetCount = cfg.TargetCount
		}
		if cfg.DefaultResults > 0 {
			e.defaultResults = cfg.DefaultResults
		}
		if cfg.MinRelevance > 0 {
			e.scorer.MinRelevance = cfg.MinRelevance
		}
		if cfg.DuplicateThreshold > 0 {
			e.ranker.DuplicateThreshold = cfg.DuplicateThreshold
		}
		if cfg.PoolSize > 0 {
			e.poolSize = cfg.PoolSize
		}
		return nil
	}
}

// WithCallTimeout bounds each provider call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return fmt.Errorf("call timeout must be positive, got %s", d)
		}
		e.orch.timeout = d
		return nil
	}
}

// WithTargetCount sets how many candidates end the search early.
func WithTargetCount(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("target count must be at least 1, got %d", n)
		}
		e.targetCount = n
		return nil
	}
}

// WithMinRelevance sets the score a candidate must exceed.
func WithMinRelevance(v float64) Option {
	return func(e *Engine) error {
		if v < 0 || v >= 1 {
			return fmt.Errorf("min relevance must be in [0,1), got %v", v)
		}
		e.scorer.MinRelevance = v
		return nil
	}
}

// WithDuplicateThreshold sets the title overlap treated as the same story.
func WithDuplicateThreshold(v float64) Option {
	return func(e *Engine) error {
		if v <= 0 || v > 1 {
			return fmt.Errorf("duplicate threshold must be in (0,1], got %v", v)
		}
		e.ranker.DuplicateThreshold = v
		return nil
	}
}

// WithPoolSize bounds the number of concurrent provider calls.
func WithPoolSize(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			n = 1
		}
		e.poolSize = n
		return nil
	}
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) error {
		if l == nil {
			l = logger.NewNop()
		}
		e.log = l
		return nil
	}
}

// WithMetrics records provider and corroboration metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) error {
		e.metrics = m
		return nil
	}
}

// WithCache stores found results under (query, providers, count).
func WithCache(c ResultCache) Option {
	return func(e *Engine) error {
		e.cache = c
		return nil
	}
}

// NewEngine returns an Engine over providers. Providers that report
// themselves unavailable are kept out of every search.
func NewEngine(providers []discovery.Provider, opts ...Option) (*Engine, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	defaults := config.Default().Engine
	e := &Engine{
		providers:      discovery.Available(providers),
		orch:           &orchestrator{timeout: defaults.CallTimeout},
		scorer:         Scorer{MinRelevance: defaults.MinRelevance},
		ranker:         Ranker{DuplicateThreshold: defaults.DuplicateThreshold},
		targetCount:    defaults.TargetCount,
		defaultResults: defaults.DefaultResults,
		poolSize:       defaults.PoolSize,
		log:            logger.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(e.poolSize)
	if err != nil {
		return nil, fmt.Errorf("create provider pool: %w", err)
	}
	e.orch.pool = pool
	e.orch.log = e.log
	e.orch.metrics = e.metrics

	if len(e.providers) == 0 {
		e.log.Warn("no provider is available; every corroboration will return the placeholder",
			logger.Strings("configured", discovery.Names(providers)),
		)
	}
	return e, nil
}

// Providers returns the names of the providers searched.
func (e *Engine) Providers() []string {
	return discovery.Names(e.providers)
}

// Release stops the worker pool. The engine must not be used afterwards.
func (e *Engine) Release() {
	e.orch.pool.Release()
}

// Corroborate finds up to n references for text (the configured default when
// n <= 0). It never fails: provider errors degrade to fewer results and an
// empty outcome is reported as a single placeholder reference.
func (e *Engine) Corroborate(ctx context.Context, text string, n int) (res Result) {
	if n <= 0 {
		n = e.defaultResults
	}
	start := time.Now()
	queries := query.Extract(text)

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("corroboration panicked", logger.String("panic", fmt.Sprint(r)))
			res = Result{Query: queries.Primary(), Variants: queries.Variants(), References: []Reference{Placeholder(queries.Primary())}}
		}
		e.metrics.ObserveCorroboration(res.Found(), time.Since(start))
	}()

	if queries.Empty() {
		return Result{References: []Reference{Placeholder("")}}
	}
	if e.cache == nil {
		return e.run(ctx, queries, n)
	}
	return e.cached(ctx, queries, n)
}

func (e *Engine) run(ctx context.Context, queries query.Queries, n int) Result {
	primary := queries.Primary()
	target := max(n, e.targetCount)

	cands := e.orch.gather(ctx, queries, e.providers, target)
	scored := e.scorer.Score(primary, cands)
	refs := e.ranker.Finalize(primary, scored, n)

	res := Result{Query: primary, Variants: queries.Variants(), References: refs}
	e.log.Info("corroboration complete",
		logger.String("query", primary),
		logger.Int("candidates", len(cands)),
		logger.Int("relevant", len(scored)),
		logger.Int("references", len(refs)),
		logger.Bool("found", res.Found()),
	)
	return res
}

func (e *Engine) cached(ctx context.Context, queries query.Queries, n int) Result {
	raw, err := e.cache.Do(ctx, e.cacheKey(queries.Primary(), n), func(ctx context.Context) ([]byte, bool, error) {
		res := e.run(ctx, queries, n)
		data, err := json.Marshal(res)
		if err != nil {
			return nil, false, fmt.Errorf("encode result: %w", err)
		}
		// Only positive results are stored so a provider outage is not remembered.
		return data, res.Found(), nil
	})
	if err == nil {
		var res Result
		if err = json.Unmarshal(raw, &res); err == nil && len(res.References) > 0 {
			return res
		}
	}
	if ctx.Err() == nil {
		e.log.Warn("result cache unusable, searching directly", logger.Error(err))
	}
	return e.run(ctx, queries, n)
}

// cacheKey identifies a request by normalized query, provider set and count.
func (e *Engine) cacheKey(primary string, n int) string {
	names := e.Providers()
	sort.Strings(names)
	return strings.Join([]string{query.Normalize(primary), strings.Join(names, ","), strconv.Itoa(n)}, "|")
}
