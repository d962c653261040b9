package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/figpreorders/figorders/pkg/config"
)

const (
	OrdersResource    = "orders.json"
	VarietiesResource = "varieties.json"

	maxResourceBytes = 16 << 20
)

// ErrNoBundle is returned when no bundle source is configured.
var ErrNoBundle = errors.New("no bundle configured")

// Fetcher returns the raw bytes of a bundled default resource.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// NewFetcher prefers the base URL over the directory.
func NewFetcher(cfg config.BundleConfig) Fetcher {
	if strings.TrimSpace(cfg.URL) != "" {
		return NewHTTPFetcher(cfg.URL, cfg.Timeout)
	}
	if strings.TrimSpace(cfg.Dir) != "" {
		return NewFSFetcher(os.DirFS(cfg.Dir))
	}
	return noBundle{}
}

type noBundle struct{}

func (noBundle) Fetch(context.Context, string) ([]byte, error) { return nil, ErrNoBundle }

// FSFetcher reads resources from a file system, typically os.DirFS.
type FSFetcher struct {
	fsys fs.FS
}

func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{fsys: fsys}
}

func (f *FSFetcher) Fetch(_ context.Context, name string) ([]byte, error) {
	return fs.ReadFile(f.fsys, name)
}

// HTTPFetcher downloads resources relative to a base URL, bypassing caches.
type HTTPFetcher struct {
	base    string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPFetcher(base string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPFetcher{
		base:    strings.TrimRight(base, "/") + "/",
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	target, err := url.JoinPath(f.base, name)
	if err != nil {
		return nil, fmt.Errorf("bundle url: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResourceBytes))
}
