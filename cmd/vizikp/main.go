// Command vizikp is the main entry point for the vizi-kp estimate server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/config"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/estimate"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/health"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/observe"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse/llmparse"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/quote"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/resilience"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/server"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/transcribe"
	"github.com/kairosUNIVERSAL/vizi-kp/pkg/provider/llm"
	"github.com/kairosUNIVERSAL/vizi-kp/pkg/provider/llm/anyllm"
	llmopenrouter "github.com/kairosUNIVERSAL/vizi-kp/pkg/provider/llm/openrouter"
)

const version = "0.3.0"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "vizikp: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "vizikp: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("vizikp starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(sctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	var (
		catalogStore  catalog.Store
		estimateStore estimate.Store
		checkers      []health.Checker
	)
	if cfg.Database.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			slog.Error("failed to connect to postgres", "err", err)
			return 1
		}
		defer pool.Close()

		cs := catalog.NewPostgresStore(pool)
		if err := cs.Migrate(ctx); err != nil {
			slog.Error("catalog migration failed", "err", err)
			return 1
		}
		es := estimate.NewPostgresStore(pool)
		if err := es.Migrate(ctx); err != nil {
			slog.Error("estimate migration failed", "err", err)
			return 1
		}
		catalogStore, estimateStore = cs, es
		checkers = append(checkers, health.Checker{Name: "postgres", Check: pool.Ping})
		slog.Info("postgres storage ready")
	} else {
		catalogStore = catalog.NewMemStore()
		estimateStore = estimate.NewMemStore()
		slog.Warn("no postgres_dsn configured, running on in-memory storage")
	}

	// ── Parse cache ───────────────────────────────────────────────────────────
	var quoteOpts []quote.Option
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		quoteOpts = append(quoteOpts, quote.WithCache(quote.NewRedisCache(rdb), cfg.Redis.CacheTTL))
		checkers = append(checkers, health.Checker{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		slog.Info("redis parse cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}
	quoteOpts = append(quoteOpts, quote.WithMetrics(metrics))

	// ── Parsing strategies ────────────────────────────────────────────────────
	provider, err := buildLLMProvider(cfg.Providers.LLM)
	if err != nil {
		slog.Error("failed to build LLM provider", "err", err)
		return 1
	}

	var entries []parse.ChainEntry
	if provider != nil {
		limiter := rate.NewLimiter(rate.Limit(cfg.Parser.RatePerMinute)/60, 1)
		entries = append(entries, parse.ChainEntry{
			Strategy: llmparse.New(provider, llmparse.WithLimiter(limiter)),
			Breaker:  resilience.NewBreaker("llm", cfg.Parser.BreakerFailures, cfg.Parser.BreakerCooldown),
		})
		slog.Info("llm parsing enabled",
			"provider", cfg.Providers.LLM.Name,
			"model", cfg.Providers.LLM.Model,
			"rate_per_minute", cfg.Parser.RatePerMinute,
		)
	}
	entries = append(entries, parse.ChainEntry{Strategy: parse.Deterministic{}})
	chain := parse.NewChain(logger, entries...)

	// ── Transcription ─────────────────────────────────────────────────────────
	transcriber, err := buildTranscriber(cfg.Providers.Transcribe)
	if err != nil {
		slog.Error("failed to build transcriber", "err", err)
		return 1
	}
	if transcriber == nil {
		slog.Warn("no transcribe provider configured, audio endpoint disabled")
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := server.New(server.Config{
		Parse:       quote.NewParseService(catalogStore, chain, logger, quoteOpts...),
		Estimates:   estimate.NewService(estimateStore, logger),
		Catalog:     catalogStore,
		Transcriber: transcriber,
		Health:      health.New(checkers...),
		Metrics:     metrics,
		Log:         logger,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", cfg.Server.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		slog.Info("shutdown signal received, stopping…")
		return httpSrv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildLLMProvider instantiates the configured LLM backend, or returns nil
// when none is configured.
func buildLLMProvider(entry config.ProviderEntry) (llm.Provider, error) {
	switch entry.Name {
	case "":
		return nil, nil
	case "openrouter":
		var opts []llmopenrouter.Option
		if entry.BaseURL != "" {
			opts = append(opts, llmopenrouter.WithBaseURL(entry.BaseURL))
		}
		opts = append(opts, llmopenrouter.WithAttribution("https://github.com/kairosUNIVERSAL/vizi-kp", "vizi-kp"))
		return llmopenrouter.New(entry.APIKey, entry.Model, opts...)
	default:
		opts := []anyllmlib.Option{anyllmlib.WithAPIKey(entry.APIKey)}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New(entry.Name, entry.Model, opts...)
	}
}

// buildTranscriber instantiates the configured speech-to-text backend, or
// returns nil when none is configured.
func buildTranscriber(entry config.ProviderEntry) (transcribe.Transcriber, error) {
	switch entry.Name {
	case "":
		return nil, nil
	case "openrouter":
		var opts []transcribe.OpenRouterOption
		if entry.BaseURL != "" {
			opts = append(opts, transcribe.WithOpenRouterBaseURL(entry.BaseURL))
		}
		return transcribe.NewOpenRouter(entry.APIKey, entry.Model, opts...)
	case "openai":
		var opts []transcribe.OpenAIOption
		if entry.BaseURL != "" {
			opts = append(opts, transcribe.WithOpenAIBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, transcribe.WithOpenAIModel(entry.Model))
		}
		return transcribe.NewOpenAI(entry.APIKey, opts...)
	default:
		return nil, fmt.Errorf("unsupported transcribe provider %q; supported: openrouter, openai", entry.Name)
	}
}
