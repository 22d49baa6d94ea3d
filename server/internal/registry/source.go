package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/wavealert360/wavealert360/pkg/githubfs"
)

// Source fetches the current registry document.
type Source interface {
	FetchDocument(ctx context.Context) (*Document, error)
}

// githubSource reads the registry document from a GitHub repository.
type githubSource struct {
	client *githubfs.Client
	path   string
}

// NewGitHubSource builds a Source backed by the contents API.
func NewGitHubSource(client *githubfs.Client, path string) Source {
	return &githubSource{client: client, path: path}
}

func (s *githubSource) FetchDocument(ctx context.Context) (*Document, error) {
	file, err := s.client.Get(ctx, s.path)
	if err != nil {
		return nil, fmt.Errorf("registry: fetch %q: %w", s.path, err)
	}
	var doc Document
	if err := json.Unmarshal(file.Content, &doc); err != nil {
		return nil, fmt.Errorf("registry: parse %q: %w", s.path, err)
	}
	return &doc, nil
}

// LoadFallback reads a local registry document, used when the remote source
// fails before anything was cached.
func LoadFallback(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read fallback %q: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry: parse fallback %q: %w", path, err)
	}
	return &doc, nil
}
