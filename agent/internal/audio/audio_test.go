package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wavealert360/wavealert360/pkg/hazard"
)

func newTestPlayer(t *testing.T) *Player {
	t.Helper()
	return New(t.TempDir(), "true", nil, 2*time.Second, nil)
}

func TestFetch_DownloadsAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("ID3 fake mp3 bytes"))
	}))
	defer srv.Close()

	p := newTestPlayer(t)
	url := srv.URL + "/high_alert.mp3"

	path, err := p.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ID3 fake mp3 bytes" {
		t.Errorf("cached content = %q", data)
	}
	if filepath.Ext(path) != ".mp3" {
		t.Errorf("cache name %q should keep the extension", path)
	}

	// Second fetch is served from disk.
	if _, err := p.Fetch(context.Background(), url); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}

func TestFetch_RejectsPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# Placeholder - audio not generated yet"))
	}))
	defer srv.Close()

	p := newTestPlayer(t)
	if _, err := p.Fetch(context.Background(), srv.URL+"/caution_alert.mp3"); err == nil {
		t.Fatal("expected error for placeholder content")
	}
	// Nothing may be left in the cache dir.
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("placeholder left %d files in cache", len(entries))
	}
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newTestPlayer(t)
	if _, err := p.Fetch(context.Background(), srv.URL+"/x.mp3"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestPlayLevel_LocalAssetFallback(t *testing.T) {
	p := newTestPlayer(t)
	asset := filepath.Join(p.dir, "caution_alert.mp3")
	if err := os.WriteFile(asset, []byte("ID3 local"), 0o644); err != nil {
		t.Fatal(err)
	}

	// No URL: the local per-level asset is played.
	if err := p.PlayLevel(context.Background(), hazard.LevelMedium, ""); err != nil {
		t.Fatalf("PlayLevel: %v", err)
	}
	p.Stop()
}

func TestPlayLevel_MissingAsset(t *testing.T) {
	p := newTestPlayer(t)
	if err := p.PlayLevel(context.Background(), hazard.LevelHigh, ""); err == nil {
		t.Fatal("expected error when no asset exists")
	}
}

func TestPlay_FallbackChain(t *testing.T) {
	dir := t.TempDir()
	asset := filepath.Join(dir, "normal_alert.mp3")
	if err := os.WriteFile(asset, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}

	// First command does not exist; "true" succeeds.
	p := New(dir, "definitely-not-a-player-xyz", []string{"true"}, time.Second, nil)
	if err := p.Play(asset); err != nil {
		t.Fatalf("Play with fallback: %v", err)
	}
	p.Stop()

	// No command in the chain works.
	p = New(dir, "definitely-not-a-player-xyz", nil, time.Second, nil)
	if err := p.Play(asset); err == nil {
		t.Fatal("expected error when every player fails")
	}
}
