// Package rates provides currency conversion with a three-tier strategy:
// fresh cache, then a remote fetch, then a bundled static table. Network
// trouble never surfaces as an error; the worst case is static data.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/NotIntruder/Expense-Tracker/internal/core"
)

// BaseCurrency is the reference code all cached and static rates are
// expressed relative to.
const BaseCurrency = "USD"

// DefaultFreshness is how long fetched rates are served from cache.
const DefaultFreshness = 24 * time.Hour

// staticRates is the bundled fallback table, relative to BaseCurrency.
var staticRates = map[string]float64{
	"USD": 1.00,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 149.50,
	"INR": 83.12,
}

// Config holds the remote endpoint settings.
type Config struct {
	// URL of the rate endpoint for the reference base. The response
	// body must carry a "rates" map of code to factor.
	URL string

	// Timeout bounds a single fetch so a degraded request cannot hang
	// conversion; zero means 10 seconds.
	Timeout time.Duration

	// Freshness is the cache window; zero means DefaultFreshness.
	Freshness time.Duration
}

type cacheEntry struct {
	rates     map[string]float64
	base      string
	fetchedAt time.Time
}

// Service converts amounts between currencies. Construct it explicitly
// and pass it where needed; independent instances hold independent caches.
type Service struct {
	mu    sync.Mutex
	cache *cacheEntry

	client       *http.Client
	url          string
	freshness    time.Duration
	symbolToCode map[string]string
	group        singleflight.Group
	logger       *slog.Logger
}

// Status describes the cache slot for diagnostics.
type Status struct {
	Cached   bool   `json:"cached"`
	AgeHours int    `json:"ageHours"`
	Base     string `json:"base"`
	Expired  bool   `json:"expired"`
}

// NewService builds a rate service using the catalog's symbol table.
func NewService(cfg Config, cat core.Catalog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	freshness := cfg.Freshness
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &Service{
		client:       &http.Client{Timeout: timeout},
		url:          cfg.URL,
		freshness:    freshness,
		symbolToCode: cat.SymbolToCode(),
		logger:       logger,
	}
}

// GetRates returns conversion factors relative to BaseCurrency. Fresh
// cached rates are returned directly; otherwise one fetch is attempted
// (deduplicated across concurrent callers) and on any failure the static
// table is returned. This call never fails.
func (s *Service) GetRates(ctx context.Context) map[string]float64 {
	if rates, ok := s.cachedRates(s.freshness); ok {
		return rates
	}

	v, err, _ := s.group.Do("fetch", func() (any, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		s.logger.Warn("Rate fetch failed, using static rates", "error", err)
		return copyRates(staticRates)
	}
	return v.(map[string]float64)
}

// cachedRates returns a copy of the cached table when it is for the
// reference base and younger than maxAge.
func (s *Service) cachedRates(maxAge time.Duration) (map[string]float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil || s.cache.base != BaseCurrency {
		return nil, false
	}
	if time.Since(s.cache.fetchedAt) >= maxAge {
		return nil, false
	}
	return copyRates(s.cache.rates), true
}

func (s *Service) fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("rate endpoint returned %s", resp.Status)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rate response: %w", err)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("rate response carried no rates")
	}

	s.mu.Lock()
	s.cache = &cacheEntry{rates: copyRates(body.Rates), base: BaseCurrency, fetchedAt: time.Now()}
	s.mu.Unlock()

	s.logger.Info("Exchange rates refreshed", "base", BaseCurrency, "count", len(body.Rates))
	return copyRates(body.Rates), nil
}

// Convert converts an amount between currencies, refreshing rates over
// the network when the cache is stale. A missing rate is logged and the
// amount returned unconverted.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) float64 {
	from, to = s.code(from), s.code(to)
	if from == to {
		return amount
	}
	return s.triangulate(amount, from, to, s.GetRates(ctx))
}

// ConvertStatic converts without touching the network: it consults the
// cache regardless of age, or the static table when nothing is cached.
// Intended for bulk display paths that cannot await a fetch.
func (s *Service) ConvertStatic(amount float64, from, to string) float64 {
	from, to = s.code(from), s.code(to)
	if from == to {
		return amount
	}
	rates, ok := s.cachedRates(time.Duration(math.MaxInt64))
	if !ok {
		rates = staticRates
	}
	return s.triangulate(amount, from, to, rates)
}

// triangulate computes the cross rate through the shared base:
// (amount / rate[from]) * rate[to].
func (s *Service) triangulate(amount float64, from, to string, rates map[string]float64) float64 {
	rateFrom, okFrom := rates[from]
	rateTo, okTo := rates[to]
	if !okFrom || !okTo || rateFrom == 0 {
		s.logger.Warn("Missing exchange rate, returning amount unconverted",
			"from", from, "to", to)
		return amount
	}
	result := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(rateFrom)).
		Mul(decimal.NewFromFloat(rateTo))
	f, _ := result.Float64()
	return f
}

// Preload eagerly attempts one fetch so later synchronous conversions in
// the session see live rates. Failure is logged, never fatal.
func (s *Service) Preload(ctx context.Context) {
	if _, err := s.fetch(ctx); err != nil {
		s.logger.Warn("Rate preload failed, static rates remain in use", "error", err)
	}
}

// CacheStatus reports the cache slot for diagnostics.
func (s *Service) CacheStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		return Status{}
	}
	age := time.Since(s.cache.fetchedAt)
	return Status{
		Cached:   true,
		AgeHours: int(age.Hours()),
		Base:     s.cache.base,
		Expired:  age >= s.freshness,
	}
}

// ClearCache resets the cache slot.
func (s *Service) ClearCache() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// code maps a currency symbol to its canonical code; codes pass through.
func (s *Service) code(currency string) string {
	if code, ok := s.symbolToCode[currency]; ok {
		return code
	}
	return currency
}

func copyRates(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
