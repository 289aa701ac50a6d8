// Package quote orchestrates one parse request end to end: fetch the
// company's active catalog, consult the result cache, run the strategy chain,
// and attach suggestions for whatever stayed unmatched.
package quote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/observe"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse/suggest"
)

const defaultCacheTTL = 15 * time.Minute

// Option is a functional option for configuring a [ParseService].
type Option func(*ParseService)

// WithCache installs a result cache. TTL below or at zero keeps the default
// of 15 minutes.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *ParseService) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMetrics overrides the metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *ParseService) { s.metrics = m }
}

// ParseService turns transcripts into parse responses for a company.
type ParseService struct {
	catalog  catalog.Store
	strategy parse.Strategy
	cache    Cache
	cacheTTL time.Duration
	metrics  *observe.Metrics
	log      *slog.Logger
}

// NewParseService wires a ParseService. strategy is usually a [parse.Chain].
// A nil logger disables logging.
func NewParseService(store catalog.Store, strategy parse.Strategy, log *slog.Logger, opts ...Option) *ParseService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &ParseService{
		catalog:  store,
		strategy: strategy,
		cacheTTL: defaultCacheTTL,
		log:      log,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// ParseResponse is what a parse request returns: the structured result plus
// catalog suggestions for its unknown mentions.
type ParseResponse struct {
	Result      *parse.Result        `json:"result"`
	Suggestions []suggest.Suggestion `json:"suggestions,omitempty"`
	Cached      bool                 `json:"cached"`
}

// Parse runs the full pipeline for one transcript.
func (s *ParseService) Parse(ctx context.Context, companyID int64, transcript string) (*ParseResponse, error) {
	if companyID <= 0 {
		return nil, errors.New("quote: company id is required")
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, errors.New("quote: transcript is required")
	}

	items, err := s.catalog.ListActive(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("quote: load catalog: %w", err)
	}

	key := cacheKey(companyID, transcript)
	if cached := s.fromCache(ctx, key); cached != nil {
		return &ParseResponse{
			Result:      cached,
			Suggestions: suggest.ForResult(cached, items),
			Cached:      true,
		}, nil
	}

	ctx, span := observe.StartSpan(ctx, "parse transcript")
	defer span.End()

	start := time.Now()
	result, err := s.strategy.Parse(ctx, transcript, items)
	s.metrics.RecordParseDuration(ctx, s.strategy.Name(), time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordStrategyRequest(ctx, s.strategy.Name(), "error")
		return nil, fmt.Errorf("quote: parse: %w", err)
	}
	s.metrics.RecordStrategyRequest(ctx, s.strategy.Name(), "ok")

	s.toCache(ctx, key, result)

	return &ParseResponse{
		Result:      result,
		Suggestions: suggest.ForResult(result, items),
	}, nil
}

// fromCache returns the cached result for key, or nil on miss or any cache
// trouble.
func (s *ParseService) fromCache(ctx context.Context, key string) *parse.Result {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			s.metrics.RecordCacheRequest(ctx, "miss")
		} else {
			s.metrics.RecordCacheRequest(ctx, "error")
			s.log.WarnContext(ctx, "parse cache read failed", "error", err)
		}
		return nil
	}
	var result parse.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		s.metrics.RecordCacheRequest(ctx, "error")
		s.log.WarnContext(ctx, "parse cache payload corrupt", "error", err)
		return nil
	}
	s.metrics.RecordCacheRequest(ctx, "hit")
	return &result
}

// toCache stores the result best-effort.
func (s *ParseService) toCache(ctx context.Context, key string, result *parse.Result) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		s.log.WarnContext(ctx, "parse cache marshal failed", "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.log.WarnContext(ctx, "parse cache write failed", "error", err)
	}
}

// cacheKey hashes the company and transcript into a stable cache key.
func cacheKey(companyID int64, transcript string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d\x00%s", companyID, transcript)
	return "vizikp:parse:" + hex.EncodeToString(h.Sum(nil))
}
