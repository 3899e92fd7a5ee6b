package openapi

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source describes where a document comes from: a local path or a URL.
type Source struct {
	Location string
	remote   bool
}

// ParseSource normalizes s. A leading "@" marks an explicit local file;
// anything with a URL scheme other than file:// is fetched remotely and
// local paths are made absolute so reloads survive directory changes.
func ParseSource(s string) (Source, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Source{}, fmt.Errorf("source is empty")
	}
	if strings.HasPrefix(s, "@") {
		return localSource(strings.TrimPrefix(s, "@"))
	}
	if u, err := url.Parse(s); err == nil && len(u.Scheme) > 1 {
		if u.Scheme == "file" {
			return localSource(u.Path)
		}
		return Source{Location: s, remote: true}, nil
	}
	return localSource(s)
}

func localSource(p string) (Source, error) {
	if p == "" {
		return Source{}, fmt.Errorf("source is empty")
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return Source{Location: p}, nil
}

func (s Source) IsRemote() bool { return s.remote }

func (s Source) IsZero() bool { return s.Location == "" }

// URL returns the location in the form the fetch readers dispatch on.
func (s Source) URL() (*url.URL, error) {
	if !s.remote {
		return &url.URL{Path: s.Location}, nil
	}
	return url.Parse(s.Location)
}

// Label is the short form shown in headers: the file name or the full URL.
func (s Source) Label() string {
	if s.remote {
		return s.Location
	}
	return filepath.Base(s.Location)
}

func (s Source) String() string { return s.Location }
