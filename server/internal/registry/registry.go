package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wavealert360/wavealert360/server/internal/metrics"
)

// ErrNotFound is returned when no device with the given MAC is registered.
var ErrNotFound = errors.New("registry: device not found")

// Registry caches the device document fetched from a Source.
type Registry struct {
	source   Source
	ttl      time.Duration
	fallback *Document
	logger   *slog.Logger

	mu        sync.Mutex
	doc       *Document
	fetchedAt time.Time
	inflight  chan struct{}

	now func() time.Time
}

// New builds a Registry over source with the given cache TTL. fallback may be
// nil; when set it is served if the very first fetch fails.
func New(source Source, ttl time.Duration, fallback *Document, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		source:   source,
		ttl:      ttl,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// document returns the current registry document, refreshing it when the TTL
// has elapsed. At most one fetch is in flight; callers that arrive during a
// refresh are served the stale copy if one exists, and wait otherwise.
func (r *Registry) document(ctx context.Context) (*Document, error) {
	r.mu.Lock()

	if r.doc != nil && r.now().Sub(r.fetchedAt) < r.ttl {
		doc := r.doc
		r.mu.Unlock()
		return doc, nil
	}

	if r.inflight != nil {
		// A refresh is already running.
		if r.doc != nil {
			doc := r.doc
			r.mu.Unlock()
			return doc, nil
		}
		done := r.inflight
		r.mu.Unlock()
		select {
		case <-done:
			return r.document(ctx)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	done := make(chan struct{})
	r.inflight = done
	stale := r.doc
	r.mu.Unlock()

	doc, err := r.source.FetchDocument(ctx)

	r.mu.Lock()
	r.inflight = nil
	close(done)
	if err == nil {
		r.doc = doc
		r.fetchedAt = r.now()
		r.mu.Unlock()
		metrics.IncRegistryRefresh(metrics.ResultSuccess)
		return doc, nil
	}
	metrics.IncRegistryRefresh(metrics.ResultError)

	if stale == nil {
		stale = r.doc
	}
	r.mu.Unlock()

	if stale != nil {
		r.logger.Warn("registry refresh failed, serving stale document", "error", err)
		metrics.IncRegistryStaleServe()
		return stale, nil
	}
	if r.fallback != nil {
		r.logger.Warn("registry fetch failed, serving fallback document", "error", err)
		metrics.IncRegistryFallbackServe()
		return r.fallback, nil
	}
	return nil, fmt.Errorf("registry: no document available: %w", err)
}

// Lookup returns the device registered under mac.
func (r *Registry) Lookup(ctx context.Context, mac string) (Device, error) {
	doc, err := r.document(ctx)
	if err != nil {
		return Device{}, err
	}
	for _, d := range doc.Devices {
		if d.MACAddress == mac {
			return d, nil
		}
	}
	return Device{}, ErrNotFound
}

// List returns every registered device.
func (r *Registry) List(ctx context.Context) ([]Device, error) {
	doc, err := r.document(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Device, len(doc.Devices))
	copy(out, doc.Devices)
	return out, nil
}

// SetMode switches a device between LIVE and TEST on the cached copy. The
// change is acknowledged but not written back to the registry document; the
// next refresh overwrites it.
func (r *Registry) SetMode(ctx context.Context, mac, mode string) (Device, error) {
	return r.mutate(ctx, mac, func(d *Device) { d.OperatingMode = mode })
}

// SetTestScenario pins the level a TEST device reports, on the cached copy
// only. Overwritten by the next refresh.
func (r *Registry) SetTestScenario(ctx context.Context, mac, scenario string) (Device, error) {
	return r.mutate(ctx, mac, func(d *Device) { d.TestScenario = scenario })
}

func (r *Registry) mutate(ctx context.Context, mac string, fn func(*Device)) (Device, error) {
	if _, err := r.document(ctx); err != nil {
		return Device{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc := r.doc
	if doc == nil {
		doc = r.fallback
	}
	if doc == nil {
		return Device{}, ErrNotFound
	}
	for i := range doc.Devices {
		if doc.Devices[i].MACAddress == mac {
			fn(&doc.Devices[i])
			return doc.Devices[i], nil
		}
	}
	return Device{}, ErrNotFound
}
