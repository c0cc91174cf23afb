// internal/browser/loader/loader.go
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/htmlview/internal/browser/dom"
	"github.com/xkilldash9x/htmlview/internal/browser/style"
)

// ErrUnsupportedScheme is returned for URLs that are neither files nor
// HTTP(S) resources.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// maxResourceSize caps the body read for a single document or style sheet.
const maxResourceSize = 16 << 20

// Config controls fetching.
type Config struct {
	// Concurrency is the number of style sheets fetched in parallel.
	Concurrency int
	// RateLimit is the number of HTTP requests per second.
	RateLimit float64
	// Timeout bounds every single fetch.
	Timeout time.Duration
	// MaxImports caps the number of style sheets loaded for one document,
	// counting linked sheets and @import targets.
	MaxImports int
	// MediaTypes select the style sheets and @media blocks that apply.
	MediaTypes []string
}

// SetDefaults fills in zero values.
func (c *Config) SetDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 10
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxImports <= 0 {
		c.MaxImports = 32
	}
	if len(c.MediaTypes) == 0 {
		c.MediaTypes = style.DefaultMediaTypes
	}
}

// Loader reads documents and style sheets from files and HTTP(S) URLs.
type Loader struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// New creates a Loader.
func New(cfg Config, logger *zap.Logger, opts ...Option) *Loader {
	cfg.SetDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{
		cfg:     cfg,
		client:  &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:  logger.Named("loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// -- Resources --

// Resolve turns a command line reference into a URL. HTTP(S) and file URLs
// are taken as they are; anything else is a local path, with ~ expanded.
func Resolve(ref string) (*url.URL, error) {
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return u, nil
	}
	path, err := homedir.Expand(ref)
	if err != nil {
		return nil, fmt.Errorf("could not expand path '%s': %w", ref, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve path '%s': %w", ref, err)
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

// Fetch reads the resource at u. HTTP requests are rate limited.
func (l *Loader) Fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	switch strings.ToLower(u.Scheme) {
	case "file":
		data, err := os.ReadFile(filepath.FromSlash(u.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", u.Path, err)
		}
		return data, nil
	case "http", "https":
		return l.fetchHTTP(ctx, u)
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrUnsupportedScheme, u.Scheme, u)
}

func (l *Loader) fetchHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", u, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", u, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", u, err)
	}
	return data, nil
}

// LoadDocument fetches and parses the document at u. The URL becomes the
// document's base unless the document declares its own.
func (l *Loader) LoadDocument(ctx context.Context, u *url.URL, xhtml bool) (*dom.Document, error) {
	data, err := l.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	opts := []dom.Option{dom.WithBaseURL(u), dom.WithLogger(l.logger)}
	var doc *dom.Document
	if xhtml {
		doc, err = dom.ParseXHTML(bytes.NewReader(data), opts...)
	} else {
		doc, err = dom.ParseHTML(bytes.NewReader(data), opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", u, err)
	}
	l.logger.Debug("Loaded document.", zap.Stringer("url", u), zap.Int("bytes", len(data)))
	return doc, nil
}

// -- Style Sheets --

// pending is a style sheet waiting to be fetched.
type pending struct {
	url     *url.URL
	nesting []int
}

// LoadStyleSheet builds the author style sheet of doc from its style
// elements, linked sheets and the extra sheets given, following @import
// rules. Extra sheets rank after everything in the document. Sheets are
// fetched concurrently, one import level at a time; sheets that cannot be
// loaded are skipped with a warning. Only cancellation of ctx is an error.
func (l *Loader) LoadStyleSheet(ctx context.Context, doc *dom.Document, extra ...*url.URL) (*style.StyleSheet, error) {
	ss := style.NewStyleSheet(style.WithLogger(l.logger))
	seen := make(map[string]bool)
	var queue []pending

	enqueue := func(deps []pending) {
		for _, d := range deps {
			key := d.url.String()
			if seen[key] {
				continue
			}
			if len(seen) >= l.cfg.MaxImports {
				l.logger.Warn("Too many style sheets, ignoring the rest.",
					zap.Int("max_imports", l.cfg.MaxImports), zap.String("url", key))
				continue
			}
			seen[key] = true
			queue = append(queue, d)
		}
	}

	for _, src := range doc.StyleSources(l.cfg.MediaTypes) {
		if src.Href != nil {
			enqueue([]pending{{url: src.Href, nesting: src.Nesting}})
			continue
		}
		enqueue(imports(ss.Read(src.CSS, doc.BaseURL(), src.Nesting, l.cfg.MediaTypes)))
	}
	for i, u := range extra {
		enqueue([]pending{{url: u, nesting: []int{doc.Len() + i}}})
	}

	for len(queue) > 0 {
		wave := queue
		queue = nil
		bodies, err := l.fetchAll(ctx, wave)
		if err != nil {
			return nil, err
		}
		// Reading mutates the sheet, so it happens in order on this
		// goroutine.
		for i, p := range wave {
			if bodies[i] == nil {
				continue
			}
			enqueue(imports(ss.Read(string(bodies[i]), p.url, p.nesting, l.cfg.MediaTypes)))
		}
	}
	l.logger.Debug("Loaded style sheets.", zap.Int("count", len(seen)))
	return ss, nil
}

// fetchAll fetches the sheets of one wave with bounded parallelism. A nil
// entry marks a sheet that could not be loaded.
func (l *Loader) fetchAll(ctx context.Context, wave []pending) ([][]byte, error) {
	bodies := make([][]byte, len(wave))
	var mu sync.Mutex

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Concurrency)
	for i, p := range wave {
		g.Go(func() error {
			data, err := l.Fetch(groupCtx, p.url)
			if err != nil {
				if ctxErr := groupCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				l.logger.Warn("Could not load style sheet.", zap.Stringer("url", p.url), zap.Error(err))
				return nil
			}
			mu.Lock()
			bodies[i] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("style sheet loading interrupted: %w", err)
	}
	return bodies, nil
}

func imports(deps []style.Dependency) []pending {
	out := make([]pending, 0, len(deps))
	for _, d := range deps {
		if d.URL != nil {
			out = append(out, pending{url: d.URL, nesting: d.Nesting})
		}
	}
	return out
}
