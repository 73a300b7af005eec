package rdf

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mmlkg/mizgra/pkg/buildinfo"
	"github.com/mmlkg/mizgra/pkg/cache"
	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/observability"
)

const (
	// DefaultTimeout bounds the fetch of a remote source.
	DefaultTimeout = 60 * time.Second

	// MaxBodySize caps the size of a remote source.
	MaxBodySize = 512 << 20

	cacheNamespace = "rdf"
)

// Document is a loaded RDF source with its resolved format.
type Document struct {
	Location string
	Format   Format
	Data     []byte
}

// Loader reads RDF sources from local files or http(s) URLs.
type Loader struct {
	Client *http.Client
	Logger *log.Logger

	// Cache holds fetched URL bodies between runs. TTL 0 keeps them until
	// they are evicted.
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration
}

// NewLoader returns a loader with a timed HTTP client and no cache.
func NewLoader(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{
		Client: &http.Client{Timeout: DefaultTimeout},
		Logger: logger,
		Cache:  cache.NewNullCache(),
		Keyer:  cache.NewDefaultKeyer(),
	}
}

// Load reads location and resolves its format. Format resolution follows
// the hint, then the extension, then the response Content-Type for URLs,
// then the content itself.
//
// An undeterminable format is an INVALID_FORMAT error. A source that cannot
// be read yields FILE_NOT_FOUND, INVALID_PATH or NETWORK_ERROR; callers treat
// those as recoverable.
func (l *Loader) Load(ctx context.Context, location string, hint Format) (*Document, error) {
	doc := &Document{Location: location, Format: hint}
	if doc.Format == "" {
		if f, ok := FromExtension(location); ok {
			doc.Format = f
		}
	}

	var contentType string
	var err error
	if errors.IsURL(location) {
		doc.Data, contentType, err = l.fetch(ctx, location)
	} else {
		doc.Data, err = readFile(location)
	}
	if err != nil {
		return nil, err
	}

	if doc.Format == "" && contentType != "" {
		if f, ok := FromContentType(contentType); ok {
			doc.Format = f
		}
	}
	if doc.Format == "" {
		if f, ok := Sniff(doc.Data); ok {
			doc.Format = f
		}
	}
	if doc.Format == "" {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"cannot determine RDF format of %s; pass one of: %v", location, FormatNames())
	}
	l.Logger.Debug("loaded RDF source", "location", location, "format", doc.Format, "bytes", len(doc.Data))
	return doc, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "rdf %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "rdf %s", path)
	}
	return data, nil
}

// cachedResponse is the cache envelope of a fetched source.
type cachedResponse struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	key := l.Keyer.HTTPKey(cacheNamespace, rawURL)
	if raw, ok, err := l.Cache.Get(ctx, key); err != nil {
		l.Logger.Warn("cache read failed", "key", key, "err", err)
	} else if ok {
		var cr cachedResponse
		if err := json.Unmarshal(raw, &cr); err == nil {
			l.Logger.Debug("RDF source served from cache", "url", rawURL)
			return cr.Body, cr.ContentType, nil
		}
	}

	body, contentType, err := l.get(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}

	if raw, err := json.Marshal(cachedResponse{ContentType: contentType, Body: body}); err == nil {
		if err := l.Cache.Set(ctx, key, raw, l.TTL); err != nil {
			l.Logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return body, contentType, nil
}

func (l *Loader) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "rdf url %s", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "rdf url %s", rawURL)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("Accept", acceptHeader)

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := l.Client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		code := errors.ErrCodeNetwork
		if ctx.Err() == nil && isTimeout(err) {
			code = errors.ErrCodeTimeout
		}
		return nil, "", errors.Wrap(code, err, "fetch %s", rawURL)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.New(errors.ErrCodeNetwork, "fetch %s: status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeNetwork, err, "read %s", rawURL)
	}
	if len(body) > MaxBodySize {
		return nil, "", errors.New(errors.ErrCodeNetwork, "fetch %s: body exceeds %d bytes", rawURL, MaxBodySize)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return stderrors.As(err, &t) && t.Timeout()
}

const acceptHeader = "text/turtle, application/n-triples, application/n-quads, application/ld+json, " +
	"application/rdf+xml, application/trix, text/n3;q=0.9, application/x-ndjson;q=0.8, */*;q=0.1"
