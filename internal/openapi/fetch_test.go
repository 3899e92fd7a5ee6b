package openapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in     string
		remote bool
		label  string
	}{
		{"https://api.example.com/openapi.json", true, "https://api.example.com/openapi.json"},
		{"mem://localhost/spec.yaml", true, "mem://localhost/spec.yaml"},
		{"@/tmp/spec.yaml", false, "spec.yaml"},
		{"file:///tmp/other.yaml", false, "other.yaml"},
		{"specs/api.yaml", false, "api.yaml"},
		{`C:\specs\api.yaml`, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			src, err := ParseSource(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.remote, src.IsRemote())
			if tt.label != "" {
				assert.Equal(t, tt.label, src.Label())
			}
			if !tt.remote {
				assert.True(t, filepath.IsAbs(src.Location))
			}
		})
	}

	_, err := ParseSource("  ")
	assert.Error(t, err)
}

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petstore), 0o644))
	src, err := ParseSource(path)
	require.NoError(t, err)

	data, err := NewFetcher(time.Second).Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, petstore, string(data))
}

func TestFetchMissingFile(t *testing.T) {
	src, err := ParseSource(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	_, err = NewFetcher(time.Second).Fetch(context.Background(), src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, src.Location, fe.Source)
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/openapi.yaml":
			_, _ = w.Write([]byte(petstore))
		case "/huge":
			_, _ = w.Write([]byte(strings.Repeat("a", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := ParseSource(srv.URL + "/openapi.yaml")
	require.NoError(t, err)
	data, err := NewFetcher(time.Second).Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, petstore, string(data))

	src, _ = ParseSource(srv.URL + "/missing")
	_, err = NewFetcher(time.Second).Fetch(context.Background(), src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.Contains(t, err.Error(), "404")

	small := NewFetcher(time.Second)
	small.MaxSize = 16
	small.read = readFromHTTP(http.DefaultClient, small.MaxSize)
	src, _ = ParseSource(srv.URL + "/huge")
	_, err = small.Fetch(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than 16 bytes")
}

func TestFetchCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src, _ := ParseSource(srv.URL)
	_, err := NewFetcher(5*time.Second).Fetch(ctx, src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchStorageURL(t *testing.T) {
	const location = "mem://localhost/openapi-tools/fetch/spec.yaml"
	fs := afs.New()
	require.NoError(t, fs.Upload(context.Background(), location, 0o644, strings.NewReader(petstore)))

	src, err := ParseSource(location)
	require.NoError(t, err)
	data, err := NewFetcher(time.Second).Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, petstore, string(data))
}

func TestLoaderLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petstore), 0o644))
	src, _ := ParseSource(path)

	g, err := NewLoader(time.Second, 0, nil).Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, path, g.Source)
	assert.Zero(t, g.Generation)
	assert.NotZero(t, g.Fingerprint)
	assert.Len(t, g.Endpoints, 3)

	require.NoError(t, os.WriteFile(path, []byte("openapi: 3.0.0\npaths: 1"), 0o644))
	_, err = NewLoader(time.Second, 0, nil).Load(context.Background(), src)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestFingerprintDistinguishesContent(t *testing.T) {
	a, err := Fingerprint([]byte("openapi: 3.0.0"))
	require.NoError(t, err)
	b, err := Fingerprint([]byte("openapi: 3.1.0"))
	require.NoError(t, err)
	again, _ := Fingerprint([]byte("openapi: 3.0.0"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, again)
}
