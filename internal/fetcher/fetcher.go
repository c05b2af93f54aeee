// Package fetcher downloads the remote menu
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pankajredekar/lemonmenu/internal/model"
)

const (
	// DefaultMenuURL is the endpoint serving the Little Lemon menu
	DefaultMenuURL = "https://raw.githubusercontent.com/Meta-Mobile-Developer-PC/Working-With-Data-API/main/littleLemonSimpleMenu.json"

	// DefaultTimeout is the default timeout for the menu request
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize is the maximum accepted body size (10MB)
	MaxResponseSize = 10 * 1024 * 1024

	// UserAgent is sent with every request
	UserAgent = "lemonmenu/1.0"
)

// Fetcher retrieves the remote menu
type Fetcher interface {
	// FetchMenu performs one network round-trip and returns the parsed menu entries
	FetchMenu(ctx context.Context) ([]model.RemoteMenuEntry, error)
}

// HTTPFetcher fetches the menu with a single GET per call.
// No retries and no caching of the HTTP response.
type HTTPFetcher struct {
	client *http.Client
	url    string
}

// Option configures an HTTPFetcher
type Option func(*HTTPFetcher)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// NewHTTPFetcher creates a fetcher for url.
// If timeout is 0, DefaultTimeout is used.
func NewHTTPFetcher(url string, timeout time.Duration, opts ...Option) *HTTPFetcher {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	f := &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the endpoint this fetcher reads from
func (f *HTTPFetcher) URL() string {
	return f.url
}

// FetchMenu downloads and decodes the menu
func (f *HTTPFetcher) FetchMenu(ctx context.Context) ([]model.RemoteMenuEntry, error) {
	body, err := f.get(ctx)
	if err != nil {
		return nil, err
	}
	return decodeMenu(body)
}

func (f *HTTPFetcher) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &NetworkError{URL: f.url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", UserAgent)
	// The endpoint serves JSON labelled as text/plain
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: f.url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{URL: f.url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, &NetworkError{URL: f.url, Err: fmt.Errorf("response size %d bytes exceeds maximum of %d bytes", resp.ContentLength, MaxResponseSize)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, &NetworkError{URL: f.url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, &NetworkError{URL: f.url, Err: fmt.Errorf("response exceeds maximum of %d bytes", MaxResponseSize)}
	}
	return body, nil
}

// menuEnvelope is the response body. Pointer fields tell absent or null
// values apart from zero values.
type menuEnvelope struct {
	Menu *[]*menuEntry `json:"menu"`
}

type menuEntry struct {
	ID    *int64  `json:"id"`
	Title *string `json:"title"`
	Price *string `json:"price"`
}

func decodeMenu(body []byte) ([]model.RemoteMenuEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	var menu menuEnvelope
	if err := dec.Decode(&menu); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Err: fmt.Errorf("unexpected content after menu object")}
	}
	if menu.Menu == nil {
		return nil, &DecodeError{Err: fmt.Errorf("response has no menu array")}
	}

	entries := make([]model.RemoteMenuEntry, 0, len(*menu.Menu))
	for i, e := range *menu.Menu {
		switch {
		case e == nil:
			return nil, &DecodeError{Err: fmt.Errorf("menu entry %d is null", i)}
		case e.ID == nil:
			return nil, &DecodeError{Err: fmt.Errorf("menu entry %d has no id", i)}
		case e.Title == nil:
			return nil, &DecodeError{Err: fmt.Errorf("menu entry %d has no title", i)}
		case e.Price == nil:
			return nil, &DecodeError{Err: fmt.Errorf("menu entry %d has no price", i)}
		}
		entries = append(entries, model.RemoteMenuEntry{ID: *e.ID, Title: *e.Title, Price: *e.Price})
	}
	return entries, nil
}
