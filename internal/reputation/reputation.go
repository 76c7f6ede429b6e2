// Package reputation queries external threat-intelligence sources about
// URLs. Verdicts are cached in Redis; the lexical analyzer never depends on
// them, so an unreachable source degrades the scan instead of failing it.
package reputation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"qrshield/internal/infrastructure/cache"
	"qrshield/pkg/logger"
)

// Verdict is one source's opinion of a URL
type Verdict struct {
	Source     string    `json:"source"`
	URL        string    `json:"url"`
	Malicious  bool      `json:"malicious"`
	Suspicious bool      `json:"suspicious"`
	Categories []string  `json:"categories,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Checker queries a single external source
type Checker interface {
	Name() string
	Check(ctx context.Context, url string) (*Verdict, error)
}

// Aggregate combines the verdicts of every configured source
type Aggregate struct {
	URL       string    `json:"url"`
	Malicious bool      `json:"malicious"`
	Verdicts  []Verdict `json:"verdicts"`
	Errors    []string  `json:"errors,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
	CacheHit  bool      `json:"cache_hit"`
}

// Service fans a URL out to all configured checkers
type Service struct {
	checkers []Checker
	cache    *cache.Redis
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewService creates a reputation service. cache may be nil to disable
// verdict caching.
func NewService(checkers []Checker, redisCache *cache.Redis, cacheTTL time.Duration, log *logger.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &Service{
		checkers: checkers,
		cache:    redisCache,
		cacheTTL: cacheTTL,
		logger:   log.WithComponent("reputation"),
	}
}

// Enabled reports whether any source is configured
func (s *Service) Enabled() bool {
	return len(s.checkers) > 0
}

// Check queries every source for the URL. Individual source failures are
// recorded and skipped; the aggregate is malicious when any source says so.
func (s *Service) Check(ctx context.Context, url string) *Aggregate {
	cacheKey := s.cacheKey(url)
	if s.cache != nil {
		var cached Aggregate
		if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			cached.CacheHit = true
			return &cached
		}
	}

	result := &Aggregate{
		URL:       url,
		Verdicts:  []Verdict{},
		CheckedAt: time.Now().UTC(),
	}

	for _, checker := range s.checkers {
		verdict, err := checker.Check(ctx, url)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("source", checker.Name()).
				Str("url", url).
				Msg("reputation source failed")
			result.Errors = append(result.Errors, checker.Name()+": "+err.Error())
			continue
		}
		result.Verdicts = append(result.Verdicts, *verdict)
		if verdict.Malicious {
			result.Malicious = true
		}
	}

	if s.cache != nil && len(result.Errors) == 0 {
		if err := s.cache.SetJSON(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Debug().Err(err).Msg("failed to cache reputation verdict")
		}
	}
	return result
}

func (s *Service) cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "reputation:url:" + hex.EncodeToString(sum[:16])
}
