package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSource struct {
	mu    sync.Mutex
	doc   *Document
	err   error
	calls int
	block chan struct{}
}

func (f *fakeSource) FetchDocument(ctx context.Context) (*Document, error) {
	f.mu.Lock()
	f.calls++
	doc, err, block := f.doc, f.err, f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	// Return a copy so tests can swap the backing document.
	out := &Document{Devices: append([]Device(nil), doc.Devices...)}
	return out, nil
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testDoc() *Document {
	return &Document{Devices: []Device{
		{
			MACAddress:    "b8:27:eb:01:02:03",
			DisplayName:   "Pier 7 Kiosk",
			LocationName:  "Half Moon Bay",
			Lat:           37.4636,
			Lon:           -122.4286,
			NWSZone:       "CAZ509",
			OperatingMode: ModeLive,
		},
		{
			MACAddress:    "b8:27:eb:aa:bb:cc",
			DisplayName:   "Harbor Office",
			OperatingMode: ModeTest,
			TestScenario:  "DANGER",
		},
	}}
}

func newTestRegistry(src Source, ttl time.Duration, fallback *Document) (*Registry, *time.Time) {
	r := New(src, ttl, fallback, nil)
	now := time.Date(2025, 8, 10, 15, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestLookup(t *testing.T) {
	src := &fakeSource{doc: testDoc()}
	r, _ := newTestRegistry(src, 15*time.Second, nil)

	d, err := r.Lookup(context.Background(), "b8:27:eb:01:02:03")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if d.DisplayName != "Pier 7 Kiosk" || d.NWSZone != "CAZ509" {
		t.Errorf("unexpected device %+v", d)
	}

	if _, err := r.Lookup(context.Background(), "de:ad:be:ef:00:00"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown MAC: err = %v, want ErrNotFound", err)
	}
}

func TestCacheFreshness(t *testing.T) {
	src := &fakeSource{doc: testDoc()}
	r, now := newTestRegistry(src, 15*time.Second, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := r.List(ctx); err != nil {
			t.Fatalf("List: %v", err)
		}
	}
	if got := src.fetchCount(); got != 1 {
		t.Fatalf("fetch count within TTL = %d, want 1", got)
	}

	*now = now.Add(16 * time.Second)
	if _, err := r.List(ctx); err != nil {
		t.Fatalf("List after TTL: %v", err)
	}
	if got := src.fetchCount(); got != 2 {
		t.Errorf("fetch count after TTL = %d, want 2", got)
	}
}

func TestServeStaleOnFailure(t *testing.T) {
	src := &fakeSource{doc: testDoc()}
	r, now := newTestRegistry(src, 15*time.Second, nil)
	ctx := context.Background()

	if _, err := r.List(ctx); err != nil {
		t.Fatalf("initial List: %v", err)
	}

	src.mu.Lock()
	src.err = errors.New("github unreachable")
	src.mu.Unlock()
	*now = now.Add(time.Minute)

	devices, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List with failing source: %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("stale list has %d devices, want 2", len(devices))
	}
}

func TestFallbackDocument(t *testing.T) {
	src := &fakeSource{err: errors.New("github unreachable")}
	fallback := &Document{Devices: []Device{{MACAddress: "aa:aa:aa:aa:aa:aa", OperatingMode: ModeLive}}}
	r, _ := newTestRegistry(src, 15*time.Second, fallback)

	d, err := r.Lookup(context.Background(), "aa:aa:aa:aa:aa:aa")
	if err != nil {
		t.Fatalf("Lookup via fallback: %v", err)
	}
	if d.OperatingMode != ModeLive {
		t.Errorf("fallback device %+v", d)
	}
}

func TestNoDocumentAtAll(t *testing.T) {
	src := &fakeSource{err: errors.New("github unreachable")}
	r, _ := newTestRegistry(src, 15*time.Second, nil)

	if _, err := r.List(context.Background()); err == nil {
		t.Fatal("expected error with no cache and no fallback")
	}
}

func TestSetModeNotPersisted(t *testing.T) {
	src := &fakeSource{doc: testDoc()}
	r, now := newTestRegistry(src, 15*time.Second, nil)
	ctx := context.Background()

	d, err := r.SetMode(ctx, "b8:27:eb:01:02:03", ModeTest)
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if d.OperatingMode != ModeTest {
		t.Errorf("OperatingMode = %q after SetMode", d.OperatingMode)
	}

	d, err = r.SetTestScenario(ctx, "b8:27:eb:01:02:03", "CAUTION")
	if err != nil {
		t.Fatalf("SetTestScenario: %v", err)
	}
	if d.TestScenario != "CAUTION" {
		t.Errorf("TestScenario = %q", d.TestScenario)
	}

	// A refresh restores the document from the source.
	*now = now.Add(time.Minute)
	d, err = r.Lookup(ctx, "b8:27:eb:01:02:03")
	if err != nil {
		t.Fatalf("Lookup after refresh: %v", err)
	}
	if d.OperatingMode != ModeLive || d.TestScenario != "" {
		t.Errorf("refresh did not overwrite local change: %+v", d)
	}
}

func TestSetModeUnknownDevice(t *testing.T) {
	src := &fakeSource{doc: testDoc()}
	r, _ := newTestRegistry(src, 15*time.Second, nil)

	if _, err := r.SetMode(context.Background(), "de:ad:be:ef:00:00", ModeTest); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSingleFlightServesStale(t *testing.T) {
	src := &fakeSource{doc: testDoc()}
	r, now := newTestRegistry(src, 15*time.Second, nil)
	ctx := context.Background()

	if _, err := r.List(ctx); err != nil {
		t.Fatalf("initial List: %v", err)
	}

	block := make(chan struct{})
	src.mu.Lock()
	src.block = block
	src.mu.Unlock()
	*now = now.Add(time.Minute)

	started := make(chan struct{})
	go func() {
		close(started)
		r.List(ctx) // triggers the blocked refresh
	}()
	<-started

	// Wait for the refresh goroutine to hold the inflight slot.
	deadline := time.After(2 * time.Second)
	for {
		r.mu.Lock()
		running := r.inflight != nil
		r.mu.Unlock()
		if running {
			break
		}
		select {
		case <-deadline:
			t.Fatal("refresh never started")
		case <-time.After(time.Millisecond):
		}
	}

	// Concurrent readers get the stale copy without a second fetch.
	devices, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List during refresh: %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("stale list has %d devices", len(devices))
	}
	if got := src.fetchCount(); got != 2 {
		t.Errorf("fetch count during refresh = %d, want 2", got)
	}

	close(block)
}
