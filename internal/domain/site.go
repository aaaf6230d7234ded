package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrSiteUnresolved is returned when a site has neither coordinates nor a
// geocodable place.
var ErrSiteUnresolved = errors.New("site has no coordinates")

// Site is a configured location to evaluate on every refresh cycle. Either Lat and
// Lon, or Place (and optionally State) for geocoding, must be set.
type Site struct {
	Name  string   `yaml:"name" json:"name"`
	Place string   `yaml:"place,omitempty" json:"place,omitempty"`
	State string   `yaml:"state,omitempty" json:"state,omitempty"`
	Lat   *float64 `yaml:"lat,omitempty" json:"lat,omitempty"`
	Lon   *float64 `yaml:"lon,omitempty" json:"lon,omitempty"`
}

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves place names to coordinates.
type Geocoder interface {
	// ForwardGeocode converts a place name and state to coordinates.
	ForwardGeocode(ctx context.Context, name, state string) (GeocodingResult, error)
}

// LocateSite returns the point for a site. Explicit coordinates win; otherwise the
// place is forward geocoded. A nil geocoder only supports explicit coordinates.
func LocateSite(ctx context.Context, site Site, geocoder Geocoder) (GeoPoint, error) {
	if site.Lat != nil && site.Lon != nil {
		return NewGeoPoint(*site.Lat, *site.Lon)
	}
	if site.Place == "" || geocoder == nil {
		return GeoPoint{}, fmt.Errorf("%w: %q", ErrSiteUnresolved, site.Name)
	}

	result, err := geocoder.ForwardGeocode(ctx, site.Place, site.State)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("geocode %q: %w", site.Place, err)
	}
	if result.Lat == 0 && result.Lon == 0 {
		return GeoPoint{}, fmt.Errorf("%w: no geocoding match for %q", ErrSiteUnresolved, site.Place)
	}
	return NewGeoPoint(result.Lat, result.Lon)
}
