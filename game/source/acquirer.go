package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/wricardo/wordsearch-translate/game/group"
)

// DefaultTimeout bounds a remote fetch
const DefaultTimeout = 5 * time.Second

// maxBlobSize bounds a remote response body
const maxBlobSize = 32 << 20

// Outcome reports how a group was acquired
type Outcome string

const (
	RemoteFetchSucceeded       Outcome = "remote_fetch_succeeded"
	RemoteFetchFailedUsedLocal Outcome = "remote_fetch_failed_used_local"
	TotalFailure               Outcome = "total_failure"
)

var (
	ErrTotalFailure = errors.New("no puzzle source could be loaded")
	ErrRateLimited  = errors.New("remote fetch rate limited")
	ErrNoRemote     = errors.New("no remote url configured")
)

// BlobLoader reads a named local source
type BlobLoader interface {
	LoadBlob(name string) ([]byte, error)
}

// Config controls remote and local acquisition
type Config struct {
	RemoteURL      string
	FallbackSource string
	Timeout        time.Duration
	// MinInterval is the minimum spacing between remote fetches. Zero disables the limit.
	MinInterval time.Duration
}

// Option configures an Acquirer
type Option func(*Acquirer)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(a *Acquirer) {
		a.client = c
	}
}

// WithGroupOptions passes options to every group the acquirer builds
func WithGroupOptions(opts ...group.Option) Option {
	return func(a *Acquirer) {
		a.groupOpts = append(a.groupOpts, opts...)
	}
}

// Acquirer loads puzzle groups from a remote URL with a local fallback
type Acquirer struct {
	cfg       Config
	local     BlobLoader
	client    *http.Client
	limiter   *rate.Limiter
	groupOpts []group.Option
}

// NewAcquirer creates an acquirer that falls back to local
func NewAcquirer(cfg Config, local BlobLoader, opts ...Option) *Acquirer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	a := &Acquirer{
		cfg:     cfg,
		local:   local,
		client:  &http.Client{},
		limiter: rate.NewLimiter(limit, 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire tries the remote URL once, then the fallback source once
func (a *Acquirer) Acquire(ctx context.Context, method group.IterationMethod) (*group.Group, Outcome, error) {
	remoteErr := ErrNoRemote
	if a.cfg.RemoteURL != "" {
		g, err := a.fetchGroup(ctx, a.cfg.RemoteURL, method)
		if err == nil {
			return g, RemoteFetchSucceeded, nil
		}
		remoteErr = err
		log.Warn().Err(err).Str("url", a.cfg.RemoteURL).Msg("remote puzzle fetch failed, using local source")
	}

	g, localErr := a.loadLocal(a.cfg.FallbackSource, method)
	if localErr == nil {
		return g, RemoteFetchFailedUsedLocal, nil
	}

	log.Error().Err(localErr).Str("source", a.cfg.FallbackSource).Msg("local puzzle source failed")
	return nil, TotalFailure, fmt.Errorf("%w: %w", ErrTotalFailure, errors.Join(remoteErr, localErr))
}

// AcquireNamed loads name from the local catalog, or fetches it when name is a URL
func (a *Acquirer) AcquireNamed(ctx context.Context, name string, method group.IterationMethod) (*group.Group, error) {
	if IsURL(name) {
		return a.fetchGroup(ctx, name, method)
	}
	return a.loadLocal(name, method)
}

// IsURL reports whether name selects a remote source
func IsURL(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "http")
}

func (a *Acquirer) loadLocal(name string, method group.IterationMethod) (*group.Group, error) {
	if a.local == nil {
		return nil, fmt.Errorf("load %q: no local catalog", name)
	}
	blob, err := a.local.LoadBlob(name)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	return group.Load(name, blob, method, a.groupOpts...)
}

func (a *Acquirer) fetchGroup(ctx context.Context, url string, method group.IterationMethod) (*group.Group, error) {
	blob, err := a.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return group.Load(url, blob, method, a.groupOpts...)
}

func (a *Acquirer) fetch(ctx context.Context, url string) ([]byte, error) {
	if !a.limiter.Allow() {
		return nil, ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxBlobSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	log.Info().Str("url", url).Int("bytes", len(blob)).Dur("elapsed", time.Since(start)).Msg("remote puzzles fetched")
	return blob, nil
}
