package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-outlook-service/internal/adapter/spc"
	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	"github.com/couchcryptid/storm-outlook-service/internal/observability"
	"github.com/paulmach/orb/geojson"
)

const mockDir = "../../data/mock"

var norman = domain.GeoPoint{Lat: 35.22, Lon: -97.44}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func mockFeeds() *spc.DirProvider {
	return spc.NewDirProvider(mockDir, discardLogger())
}

func floatPtr(v float64) *float64 { return &v }

func coordSite(name string, p domain.GeoPoint) domain.Site {
	return domain.Site{Name: name, Lat: floatPtr(p.Lat), Lon: floatPtr(p.Lon)}
}

// --- mocks ---

// failingFeeds serves the mock fixtures but fails the listed layers.
type failingFeeds struct {
	inner  *spc.DirProvider
	fail   map[domain.LayerID]error
	delay  time.Duration
	calls  atomic.Int32
	active atomic.Int32
	peak   atomic.Int32
}

func (f *failingFeeds) FetchLayer(ctx context.Context, id domain.LayerID) (*geojson.FeatureCollection, error) {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.fail[id]; ok {
		return nil, err
	}
	return f.inner.FetchLayer(ctx, id)
}

func (f *failingFeeds) FetchDiscussions(ctx context.Context) ([]domain.MesoscaleDiscussion, error) {
	if err, ok := f.fail[domain.Discussions]; ok {
		return nil, err
	}
	return f.inner.FetchDiscussions(ctx)
}

type mockPublisher struct {
	mu      sync.Mutex
	batches [][]domain.Report
	failN   int // fail the first failN calls
	calls   int
}

func (m *mockPublisher) Publish(_ context.Context, reports []domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failN {
		return errors.New("broker unavailable")
	}
	m.batches = append(m.batches, reports)
	return nil
}

func (m *mockPublisher) published() [][]domain.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]domain.Report(nil), m.batches...)
}

type mockGeocoder struct {
	results map[string]domain.GeocodingResult
	err     error
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, name, _ string) (domain.GeocodingResult, error) {
	if m.err != nil {
		return domain.GeocodingResult{}, m.err
	}
	return m.results[name], nil
}
