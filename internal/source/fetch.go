package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/peterbourgon/diskv/v3"

	appLog "classclock/internal/log"
)

// maxBodySize bounds a timetable download.
const maxBodySize = 4 << 20

// FetchResult is a downloaded timetable body.
type FetchResult struct {
	URL         string
	Body        []byte
	ContentType string
	FromCache   bool // true if the cached body was reused (304 or fetch failure)
}

// cacheEntry holds HTTP cache metadata for a single URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads remote timetables with conditional requests and keeps
// the last good body on disk so a flaky network does not blank the clock.
type Fetcher struct {
	client *http.Client
	cache  *diskv.Diskv
}

// NewFetcher creates a Fetcher caching under cacheDir. An empty cacheDir
// disables the disk cache.
func NewFetcher(cacheDir string) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
	}
	if cacheDir != "" {
		f.cache = diskv.New(diskv.Options{
			BasePath:     cacheDir,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 1 << 20,
		})
	}
	return f
}

// WithClient replaces the HTTP client, mainly for tests.
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// Fetch downloads url, honoring ETag and Last-Modified from the cache. On a
// network error or non-OK status it falls back to the cached body if there
// is one.
func (f *Fetcher) Fetch(ctx context.Context, url string) (FetchResult, error) {
	if url == "" {
		return FetchResult{}, errors.New("source: url is empty")
	}

	key := cacheKey(url)
	meta, _ := f.loadMeta(key)
	cachedBody := f.loadBody(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if len(cachedBody) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	cached := FetchResult{URL: url, Body: cachedBody, ContentType: meta.ContentType, FromCache: true}

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 && ctx.Err() == nil {
			appLog.Error("timetable fetch network error, using cached body", err, "url", redactURL(url))
			return cached, nil
		}
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return FetchResult{}, err
		}
		ct := resp.Header.Get("Content-Type")
		f.saveCache(key, cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			ContentType:  ct,
		}, body)
		appLog.Info("timetable fetch success", "url", redactURL(url), "bytes", len(body))
		return FetchResult{URL: url, Body: body, ContentType: ct}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return FetchResult{}, errors.New("source: 304 Not Modified but no cached body")
		}
		appLog.Debug("timetable not modified; using cache", "url", redactURL(url))
		return cached, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("timetable fetch non-OK, using cached body", errors.New(resp.Status), "url", redactURL(url))
			return cached, nil
		}
		return FetchResult{}, fmt.Errorf("source: %s", resp.Status)
	}
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}

func (f *Fetcher) loadMeta(key string) (cacheEntry, error) {
	var meta cacheEntry
	if f.cache == nil {
		return meta, errors.New("no cache")
	}
	data, err := f.cache.Read(key + ".meta")
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(data, &meta)
	return meta, err
}

func (f *Fetcher) loadBody(key string) []byte {
	if f.cache == nil {
		return nil
	}
	body, err := f.cache.Read(key + ".body")
	if err != nil {
		return nil
	}
	return body
}

func (f *Fetcher) saveCache(key string, meta cacheEntry, body []byte) {
	if f.cache == nil {
		return
	}
	// Body first so meta never points at a missing body.
	if err := f.cache.Write(key+".body", body); err != nil {
		appLog.Error("timetable cache save failed", err, "url", redactURL(meta.URL))
		return
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(&meta)
	if err != nil {
		return
	}
	if err := f.cache.Write(key+".meta", data); err != nil {
		appLog.Error("timetable cache meta save failed", err, "url", redactURL(meta.URL))
	}
}

// redactURL keeps scheme and host only; query strings often carry tokens.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := -1
	for idx := 0; idx+2 < len(u); idx++ {
		if u[idx:idx+3] == "://" {
			i = idx + 3
			break
		}
	}
	if i == -1 {
		return "...(redacted)"
	}
	j := i
	for j < len(u) && u[j] != '/' {
		j++
	}
	return u[:j] + redactedSuffix
}
