// Package source loads the carry and comparison tables from a URL or a local
// file and keeps them cached for the lifetime of a session.
package source

import (
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Default table locations on GitHub.
const (
	DefaultCarriesURL     = "https://raw.githubusercontent.com/jdellape/data-sources/main/cfb/rushing-analysis/big_10_carry_yards_by_running_backs.csv"
	DefaultComparisonsURL = "https://raw.githubusercontent.com/jdellape/data-sources/main/cfb/rushing-analysis/team_comparison_data.csv"
)

// Client opens table identifiers: http(s) URLs are fetched, anything else is
// read from disk. Compressed payloads are unpacked by file suffix.
type Client struct {
	http *http.Client
}

// NewClient returns a Client with a 30s HTTP timeout.
func NewClient() *Client {
	return &Client{http: &http.Client{Timeout: 30 * time.Second}}
}

// NewClientWithHTTP returns a Client using hc for remote identifiers.
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{http: hc}
}

// Open returns a reader over the decompressed contents of identifier.
// The caller must close it.
func (c *Client) Open(ctx context.Context, identifier string) (io.ReadCloser, error) {
	var body io.ReadCloser
	if isRemote(identifier) {
		rc, err := c.get(ctx, identifier)
		if err != nil {
			return nil, err
		}
		body = rc
	} else {
		f, err := os.Open(identifier)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", identifier, err)
		}
		body = f
	}
	return decompress(identifier, body)
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

func isRemote(identifier string) bool {
	return strings.HasPrefix(identifier, "http://") || strings.HasPrefix(identifier, "https://")
}

// decompress wraps body according to the identifier's suffix.
func decompress(identifier string, body io.ReadCloser) (io.ReadCloser, error) {
	name := identifier
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch {
	case strings.HasSuffix(name, ".bz2"):
		return wrapped{Reader: bzip2.NewReader(body), closers: []io.Closer{body}}, nil
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(body)
		if err != nil {
			body.Close()
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return wrapped{Reader: dec, closers: []io.Closer{zstdCloser{dec}, body}}, nil
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(body)
		if err != nil {
			body.Close()
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return wrapped{Reader: gz, closers: []io.Closer{gz, body}}, nil
	}
	return body, nil
}

type wrapped struct {
	io.Reader
	closers []io.Closer
}

func (w wrapped) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// zstdCloser adapts zstd.Decoder.Close, which returns nothing.
type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}
