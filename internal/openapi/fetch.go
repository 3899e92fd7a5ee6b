package openapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/viant/afs"
)

const (
	DefaultTimeout = 30 * time.Second
	// MaxDocumentSize caps how many bytes a single fetch may return.
	MaxDocumentSize = 10 << 20
)

// Fetcher reads raw document bytes. Local files and http(s) URLs are served
// directly; any other scheme (mem://, ssh://, ...) goes through afs.
type Fetcher struct {
	Timeout time.Duration
	MaxSize int64

	read openapi3.ReadFromURIFunc
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &Fetcher{Timeout: timeout, MaxSize: MaxDocumentSize}
	client := &http.Client{Timeout: timeout}
	f.read = openapi3.ReadFromURIs(
		readFromHTTP(client, f.MaxSize),
		openapi3.ReadFromFile,
		readFromStorage(afs.New()),
	)
	return f
}

// Fetch returns the bytes behind src. Every failure is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	u, err := src.URL()
	if err != nil {
		return nil, &FetchError{Source: src.Location, Cause: err}
	}
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	loader := &openapi3.Loader{Context: ctx}
	data, err := f.read(loader, u)
	if err == openapi3.ErrURINotSupported {
		err = fmt.Errorf("unsupported location scheme %q", u.Scheme)
	}
	if err == nil && int64(len(data)) > f.MaxSize {
		err = fmt.Errorf("document larger than %d bytes", f.MaxSize)
	}
	if err == nil {
		// Readers that do not watch the context still honour cancellation here.
		err = ctx.Err()
	}
	if err != nil {
		return nil, &FetchError{Source: src.Location, Cause: err}
	}
	return data, nil
}

func readFromHTTP(client *http.Client, maxSize int64) openapi3.ReadFromURIFunc {
	return func(loader *openapi3.Loader, location *url.URL) ([]byte, error) {
		if location.Scheme != "http" && location.Scheme != "https" {
			return nil, openapi3.ErrURINotSupported
		}
		ctx := loader.Context
		if ctx == nil {
			ctx = context.Background()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.8")

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("GET %s: %s", location, resp.Status)
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

func readFromStorage(fs afs.Service) openapi3.ReadFromURIFunc {
	return func(loader *openapi3.Loader, location *url.URL) ([]byte, error) {
		switch location.Scheme {
		case "", "file", "http", "https":
			return nil, openapi3.ErrURINotSupported
		}
		ctx := loader.Context
		if ctx == nil {
			ctx = context.Background()
		}
		return fs.DownloadWithURL(ctx, location.String())
	}
}
