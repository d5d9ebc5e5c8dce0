package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"truthlens/internal/api"
	"truthlens/internal/app"
	"truthlens/internal/cache"
	"truthlens/internal/config"
	"truthlens/internal/corroborate"
	"truthlens/internal/discovery"
	"truthlens/internal/logger"
	"truthlens/internal/metrics"
)

var errNoText = errors.New("no text provided")

// runtime is everything a command needs, built from configuration.
type runtime struct {
	cfg       *config.Config
	log       logger.Logger
	providers []discovery.Provider
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	store     *cache.Store
	engine    *corroborate.Engine
}

func loadConfig(c *cli.Context) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

// setup builds the provider set and engine. The Redis cache is attached only
// when withCache is set and an address is configured.
func setup(c *cli.Context, withCache bool) (*runtime, error) {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:       cfg,
		log:       log,
		providers: discovery.FromConfig(cfg.Providers, &http.Client{Timeout: cfg.Engine.CallTimeout}),
		registry:  prometheus.NewRegistry(),
	}
	rt.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rt.metrics = metrics.New(rt.registry)

	opts := []corroborate.Option{
		corroborate.WithConfig(cfg.Engine),
		corroborate.WithLogger(log),
		corroborate.WithMetrics(rt.metrics),
	}
	if withCache && cfg.Cache.Address != "" {
		client, err := cache.NewClient(cfg.Cache)
		if err != nil {
			// Corroboration still works uncached.
			log.Warn("result cache disabled", logger.String("address", cfg.Cache.Address), logger.Error(err))
		} else {
			rt.store = cache.NewStore(client, cfg.Cache.TTL, log, rt.metrics)
			opts = append(opts, corroborate.WithCache(rt.store))
			log.Info("result cache enabled", logger.String("address", cfg.Cache.Address), logger.Duration("ttl", cfg.Cache.TTL))
		}
	}

	rt.engine, err = corroborate.NewEngine(rt.providers, opts...)
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return rt, nil
}

func (rt *runtime) close() {
	if rt.engine != nil {
		rt.engine.Release()
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			rt.log.Warn("failed to close cache", logger.Error(err))
		}
	}
	_ = rt.log.Sync()
}

func checkCommand(c *cli.Context) error {
	var verdict *app.Verdict
	if raw := c.String("label"); raw != "" {
		label, err := app.ParseLabel(raw)
		if err != nil {
			return err
		}
		verdict = &app.Verdict{Label: label, Confidence: c.Float64("confidence")}
		if err := verdict.Validate(); err != nil {
			return err
		}
	}

	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		var err error
		if text, err = promptText(c.App.Reader, c.App.Writer); err != nil {
			return err
		}
	}

	rt, err := setup(c, false)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := app.NewService(rt.engine, nil, rt.log)
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	analysis, err := svc.Analyze(ctx, app.AnalyzeRequest{Text: text, Count: c.Int("count"), Verdict: verdict})
	if err != nil {
		return err
	}
	printAnalysis(c.App.Writer, analysis)

	if path := c.String("report"); path != "" {
		if err := svc.GenerateReport(path, analysis); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "\nReport written to %s\n", path)
	}
	return nil
}

// promptText reads news text interactively until it passes ValidateText.
func promptText(in io.Reader, out io.Writer) (string, error) {
	if in == nil {
		in = os.Stdin
	}
	r := bufio.NewReader(in)
	for {
		fmt.Fprintln(out, "Paste the news text, then an empty line:")
		text, err := app.ReadText(r, func() { fmt.Fprint(out, "> ") })
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", errNoText
		}
		ok, reason := app.ValidateText(text)
		if ok {
			return text, nil
		}
		fmt.Fprintf(out, "Input rejected: %s. Try again.\n\n", reason)
	}
}

func printAnalysis(w io.Writer, a *app.Analysis) {
	fmt.Fprintf(w, "Query:      %s\n", a.Result.Query)
	if len(a.Result.Variants) > 0 {
		fmt.Fprintf(w, "Variants:   %s\n", strings.Join(a.Result.Variants, " | "))
	}
	if a.Verdict != nil {
		fmt.Fprintf(w, "Classifier: %s (%.1f%%)\n", a.Verdict.Label, a.Verdict.Confidence*100)
	}
	fmt.Fprintf(w, "Assessment: %s\n", a.Assessment.Status)
	fmt.Fprintf(w, "            %s\n\n", a.Assessment.Message)

	for i, ref := range a.Result.References {
		if ref.Placeholder {
			fmt.Fprintf(w, "%s\n  %s\n", ref.Title, ref.URL)
			continue
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, ref.Title)
		meta := ref.Source
		if !ref.PublishedAt.IsZero() {
			meta += " | " + ref.PublishedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "   %s | relevance %.0f%% | via %s\n", meta, ref.Relevance*100, ref.Provider)
		fmt.Fprintf(w, "   %s\n", ref.URL)
	}
}

func providersCommand(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	providers := discovery.FromConfig(cfg.Providers, http.DefaultClient)
	for _, s := range discovery.Statuses(providers) {
		state := "unavailable"
		if s.Available {
			state = "available"
		}
		fmt.Fprintf(c.App.Writer, "%-12s %s\n", s.Name, state)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	rt, err := setup(c, true)
	if err != nil {
		return err
	}
	defer rt.close()

	recorder, err := app.NewRecorder(rt.cfg.Analysis.LogPath)
	if err != nil {
		return err
	}
	defer func() { _ = recorder.Close() }()

	addr := rt.cfg.Server.Address
	if a := c.String("address"); a != "" {
		addr = a
	}

	svc := app.NewService(rt.engine, recorder, rt.log)
	router := api.NewRouter(api.NewHandler(svc, rt.providers, rt.log), rt.registry, rt.log)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt.log.Info("truthlens starting",
		logger.String("address", addr),
		logger.Strings("providers", rt.engine.Providers()),
	)
	return api.NewServer(addr, router, rt.log).Run(ctx)
}
