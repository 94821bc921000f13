package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	appLog "calspan/internal/log"
)

// Source names a calendar to load.
type Source struct {
	// ID is an internal identifier used for logging and SourceID.
	ID string
	// Location is an http(s) URL or a path on the fetcher's filesystem.
	Location string
}

// FetchResult contains the outcome of fetching a single source.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool // true if a cached body was reused
}

// cacheEntry holds HTTP cache metadata for a single URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher loads calendars from files or over HTTP with conditional
// requests (ETag / Last-Modified) backed by a cache on fs.
type Fetcher struct {
	client   *http.Client
	fs       afero.Fs
	cacheDir string
}

// NewFetcher creates a Fetcher reading files from fs. Remote bodies are
// cached under cacheDir; an empty cacheDir disables the cache.
func NewFetcher(fs afero.Fs, cacheDir string) *Fetcher {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		fs:       fs,
		cacheDir: cacheDir,
	}
}

// FetchAll fetches all given sources. Errors for individual sources are
// logged and returned in the error slice; results only contain sources
// that produced a body.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	results := make([]FetchResult, 0, len(sources))
	errs := make([]error, 0)

	for _, src := range sources {
		res, err := f.FetchOne(ctx, src)
		if err != nil {
			errs = append(errs, err)
			appLog.Error("ics fetch failed", err, "id", src.ID, "location", redactURL(src.Location))
			continue
		}
		results = append(results, res)
	}

	return results, errs
}

// FetchOne loads a single source.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.Location == "" {
		return FetchResult{}, errors.New("source location is empty")
	}
	if !isRemote(src.Location) {
		body, err := afero.ReadFile(f.fs, src.Location)
		if err != nil {
			return FetchResult{}, err
		}
		return FetchResult{Source: src, Body: body}, nil
	}
	return f.fetchRemote(ctx, src)
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func (f *Fetcher) fetchRemote(ctx context.Context, src Source) (FetchResult, error) {
	var (
		cachePath  string
		meta       cacheEntry
		cachedBody []byte
	)
	if f.cacheDir != "" {
		cachePath = f.cachePathForURL(src.Location)
		if err := f.fs.MkdirAll(cachePath, 0o700); err != nil {
			return FetchResult{}, err
		}
		meta, _ = f.loadCacheMeta(cachePath)
		cachedBody, _ = f.loadCacheBody(cachePath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Location, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Info("ics fetch start", "id", src.ID, "location", redactURL(src.Location))

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("ics fetch network error, using cached body", err, "id", src.ID, "location", redactURL(src.Location))
			return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return FetchResult{}, readErr
		}
		if cachePath != "" {
			newMeta := cacheEntry{
				URL:          src.Location,
				ETag:         resp.Header.Get("ETag"),
				LastModified: resp.Header.Get("Last-Modified"),
			}
			if err := f.saveCache(cachePath, newMeta, body); err != nil {
				// The fresh body is still usable.
				appLog.Error("ics cache save failed", err, "id", src.ID, "location", redactURL(src.Location))
			}
		}
		appLog.Info("ics fetch success", "id", src.ID, "location", redactURL(src.Location), "status", resp.StatusCode)
		return FetchResult{Source: src, Body: body}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return FetchResult{}, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Info("ics fetch not modified; using cache", "id", src.ID, "location", redactURL(src.Location))
		return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("ics fetch non-OK, using cached body", errors.New(resp.Status), "id", src.ID, "location", redactURL(src.Location), "status", resp.StatusCode)
			return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, fmt.Errorf("fetch %s: %s", redactURL(src.Location), resp.Status)
	}
}

func (f *Fetcher) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	// First 16 hex chars as directory name.
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := afero.ReadFile(f.fs, filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *Fetcher) loadCacheBody(cachePath string) ([]byte, error) {
	return afero.ReadFile(f.fs, filepath.Join(cachePath, "body.ics"))
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Write body first so meta never points at a missing body.
	if err := afero.WriteFile(f.fs, filepath.Join(cachePath, "body.ics"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(f.fs, filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// redactURL hides the path and query of a URL for logging. Local paths
// are returned as is.
//
//	https://example.com/path/to/private.ics?token=abcd -> https://example.com/...(redacted)
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	scheme := strings.Index(u, "://")
	if scheme < 0 {
		return u
	}
	rest := u[scheme+3:]
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		return u[:scheme+3+slash] + redactedSuffix
	}
	return u + redactedSuffix
}
