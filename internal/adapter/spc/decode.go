package spc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DecodeLayer parses an outlook layer. A malformed document is an error, but a
// feature whose geometry orb rejects is dropped and counted in skipped so one bad
// polygon cannot hide the rest of the layer.
func DecodeLayer(data []byte) (fc *geojson.FeatureCollection, skipped int, err error) {
	var raw struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode geojson: %w", err)
	}
	if raw.Type != "FeatureCollection" {
		return nil, 0, fmt.Errorf("decode geojson: type %q is not a FeatureCollection", raw.Type)
	}

	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		return fc, 0, nil
	}

	fc = geojson.NewFeatureCollection()
	for _, rf := range raw.Features {
		f, ferr := geojson.UnmarshalFeature(rf)
		if ferr != nil {
			skipped++
			continue
		}
		fc.Append(f)
	}
	return fc, skipped, nil
}

// DecodeDiscussions parses the mesoscale discussion index. Features without a
// name or a polygon area are dropped.
func DecodeDiscussions(data []byte) ([]domain.MesoscaleDiscussion, error) {
	fc, _, err := DecodeLayer(data)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MesoscaleDiscussion, 0, len(fc.Features))
	for _, f := range fc.Features {
		name, _ := f.Properties["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		out = append(out, domain.MesoscaleDiscussion{Name: name, Geometry: f.Geometry})
	}
	return out, nil
}
