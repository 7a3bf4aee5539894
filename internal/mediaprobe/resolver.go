package mediaprobe

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"marquee/internal/logging"
	"marquee/internal/retry"
)

const (
	defaultProbeAttempts = 3
	defaultProbeTimeout  = 5 * time.Second
	defaultProbeDelay    = 250 * time.Millisecond
)

// Config captures resolver construction parameters.
type Config struct {
	// ImageBaseURL is the provider's image CDN root.
	ImageBaseURL string
	// Variants lists the quality renditions to try, best first.
	Variants []string
	// ProbeAttempts bounds liveness probes per variant.
	ProbeAttempts int
	// ProbeTimeout bounds each individual probe.
	ProbeTimeout time.Duration
	// ProbeDelay is the pause between probe attempts on the same variant.
	ProbeDelay time.Duration
	// CacheSize is the maximum number of cached probe verdicts; zero
	// disables caching.
	CacheSize int
	// CacheTTL is how long a cached verdict stays valid.
	CacheTTL time.Duration
}

// Resolver turns media pointers into verified candidates via liveness probes.
type Resolver struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	cache      *expirable.LRU[string, bool]
}

// Option customizes the resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the probing HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithLogger attaches a logger for probe diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logging.NewComponentLogger(logger, "mediaprobe")
		}
	}
}

// NewResolver constructs a resolver from config.
func NewResolver(cfg Config, opts ...Option) *Resolver {
	if cfg.ProbeAttempts < 1 {
		cfg.ProbeAttempts = defaultProbeAttempts
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.ProbeDelay < 0 {
		cfg.ProbeDelay = defaultProbeDelay
	}
	cfg.ImageBaseURL = strings.TrimRight(strings.TrimSpace(cfg.ImageBaseURL), "/")

	r := &Resolver{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.ProbeTimeout},
		logger:     logging.NewNop(),
	}
	if cfg.CacheSize > 0 {
		r.cache = expirable.NewLRU[string, bool](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Candidates expands a media pointer into quality-variant URLs, best first.
// A pointer that is already an absolute URL yields a single candidate.
func (r *Resolver) Candidates(pointer string) []Candidate {
	pointer = strings.TrimSpace(pointer)
	if pointer == "" {
		return nil
	}
	if strings.HasPrefix(pointer, "http://") || strings.HasPrefix(pointer, "https://") {
		return []Candidate{{URL: pointer, Variant: "direct"}}
	}
	if !strings.HasPrefix(pointer, "/") {
		pointer = "/" + pointer
	}
	candidates := make([]Candidate, 0, len(r.cfg.Variants))
	for _, variant := range r.cfg.Variants {
		candidates = append(candidates, Candidate{
			URL:     fmt.Sprintf("%s/%s%s", r.cfg.ImageBaseURL, variant, pointer),
			Variant: variant,
		})
	}
	return candidates
}

// Resolve probes the pointer's quality variants best-first and returns the
// first candidate that answers. Probe failure is not an error: when every
// variant exhausts its attempts the result is Unavailable. A nil or empty
// pointer resolves to Unavailable immediately.
func (r *Resolver) Resolve(ctx context.Context, pointer string) *Resolved {
	candidates := r.Candidates(pointer)
	if len(candidates) == 0 {
		return Unavailable()
	}

	for _, candidate := range candidates {
		if alive, ok := r.cachedVerdict(candidate.URL); ok {
			if alive {
				return Verified(candidate)
			}
			continue
		}

		alive := r.probe(ctx, candidate.URL)
		if !alive && ctx.Err() != nil {
			// An aborted probe says nothing about the URL; leave the
			// verdict uncached so the next run probes it for real.
			break
		}
		r.storeVerdict(candidate.URL, alive)
		if alive {
			return Verified(candidate)
		}
		r.logger.Debug("variant exhausted probes",
			logging.String("variant", candidate.Variant),
			logging.String("url", candidate.URL))
	}
	return Unavailable()
}

// probe runs the bounded liveness check for one URL.
func (r *Resolver) probe(ctx context.Context, url string) bool {
	policy := retry.Policy{
		Attempts: r.cfg.ProbeAttempts,
		Delay:    r.cfg.ProbeDelay,
		Timeout:  r.cfg.ProbeTimeout,
	}
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		return r.probeOnce(ctx, url)
	})
	return err == nil
}

func (r *Resolver) probeOnce(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("probe: http %d", resp.StatusCode)
	}
	return nil
}

func (r *Resolver) cachedVerdict(url string) (alive, ok bool) {
	if r.cache == nil {
		return false, false
	}
	return r.cache.Get(url)
}

func (r *Resolver) storeVerdict(url string, alive bool) {
	if r.cache == nil {
		return
	}
	r.cache.Add(url, alive)
}
