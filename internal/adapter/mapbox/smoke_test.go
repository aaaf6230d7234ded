//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/storm-outlook-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), "Norman", "OK")
	require.NoError(t, err)

	assert.InDelta(t, 35.22, result.Lat, 0.1, "lat should be near Norman")
	assert.InDelta(t, -97.44, result.Lon, 0.1, "lon should be near Norman")
	assert.Contains(t, result.FormattedAddress, "Norman")
	assert.Greater(t, result.Confidence, 0.5)
}

func TestSmoke_ForwardGeocode_Nonsense(t *testing.T) {
	c := smokeClient(t)

	// Mapbox's fuzzy matching may still return results for nonsense queries,
	// so we verify the client handles any response gracefully (no error).
	_, err := c.ForwardGeocode(context.Background(), "XYZNONEXISTENT99", "ZZ")
	require.NoError(t, err)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.ForwardGeocode(context.Background(), "Moore", "OK")
	require.NoError(t, err)
	assert.Contains(t, r1.FormattedAddress, "Moore")

	r2, err := cached.ForwardGeocode(context.Background(), "Moore", "OK")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
