package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/dread/internal/log"
)

const tracerName = "github.com/zjrosen/dread/internal/audio"

// maxSourceBytes caps a single fetched track.
const maxSourceBytes = 256 << 20

// LoaderConfig configures where relative sources resolve and how remote
// sources are fetched.
type LoaderConfig struct {
	// SoundsDir is the base for relative sources when BaseURL is empty.
	SoundsDir string
	// BaseURL, when set, is the base for relative sources (remote bucket).
	BaseURL string
	// FetchTimeout bounds a single remote fetch. Zero means 30s.
	FetchTimeout time.Duration
	// CacheTTL is how long fetched bytes stay in memory. Zero disables caching.
	CacheTTL time.Duration
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Loader fetches raw audio bytes from local paths or remote URLs.
type Loader struct {
	soundsDir    string
	baseURL      *url.URL
	fetchTimeout time.Duration
	client       *http.Client
	cache        *cache.Cache
	tracer       trace.Tracer
}

// NewLoader creates a Loader.
func NewLoader(cfg LoaderConfig) (*Loader, error) {
	l := &Loader{
		soundsDir:    cfg.SoundsDir,
		fetchTimeout: cfg.FetchTimeout,
		client:       cfg.HTTPClient,
		tracer:       otel.Tracer(tracerName),
	}
	if l.fetchTimeout <= 0 {
		l.fetchTimeout = 30 * time.Second
	}
	if l.client == nil {
		l.client = &http.Client{}
	}
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing base url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("base url %q: scheme must be http or https", cfg.BaseURL)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		l.baseURL = u
	}
	if cfg.CacheTTL > 0 {
		l.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return l, nil
}

// Resolve turns a configured source into an absolute path or URL.
func (l *Loader) Resolve(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", errors.New("empty source")
	}
	if isRemote(src) {
		return src, nil
	}
	if l.baseURL != nil {
		ref, err := url.Parse(strings.TrimPrefix(filepath.ToSlash(src), "/"))
		if err != nil {
			return "", fmt.Errorf("parsing source %q: %w", src, err)
		}
		return l.baseURL.ResolveReference(ref).String(), nil
	}
	if filepath.IsAbs(src) {
		return src, nil
	}
	return filepath.Join(l.soundsDir, src), nil
}

// Fetch returns the bytes of src, from cache when possible.
func (l *Loader) Fetch(ctx context.Context, src string) ([]byte, error) {
	resolved, err := l.Resolve(src)
	if err != nil {
		return nil, err
	}

	ctx, span := l.tracer.Start(ctx, "audio.fetch", trace.WithAttributes(
		attribute.String("audio.source", resolved),
		attribute.Bool("audio.remote", isRemote(resolved)),
	))
	defer span.End()

	if l.cache != nil {
		if v, ok := l.cache.Get(resolved); ok {
			data := v.([]byte)
			span.SetAttributes(attribute.Bool("audio.cache_hit", true), attribute.Int("audio.bytes", len(data)))
			log.Debug(log.CatAudio, "Source served from cache", "source", resolved, "bytes", len(data))
			return data, nil
		}
	}

	var data []byte
	if isRemote(resolved) {
		data, err = l.fetchRemote(ctx, resolved)
	} else {
		data, err = readLocal(resolved)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Bool("audio.cache_hit", false), attribute.Int("audio.bytes", len(data)))
	if l.cache != nil {
		l.cache.SetDefault(resolved, data)
	}
	return data, nil
}

func (l *Loader) fetchRemote(ctx context.Context, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", u, err)
	}
	log.Debug(log.CatAudio, "Fetching remote source", "url", u)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchStatusError{URL: u, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", u, err)
	}
	if len(data) > maxSourceBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", u, maxSourceBytes)
	}
	return data, nil
}

func readLocal(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if info.Size() > maxSourceBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, maxSourceBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// FetchStatusError is returned when a remote store answers with a non-200 status.
type FetchStatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *FetchStatusError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
}
