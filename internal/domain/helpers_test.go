package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Norman, OK. The default site.
var norman = GeoPoint{Lat: 35.22, Lon: -97.44}

// box returns a closed rectangular polygon spanning the given bounds.
func box(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

// around returns a box of the given half-width in degrees centered on p.
func around(p GeoPoint, half float64) orb.Polygon {
	return box(p.Lon-half, p.Lat-half, p.Lon+half, p.Lat+half)
}

// away returns a box that does not contain p.
func away(p GeoPoint) orb.Polygon {
	return box(p.Lon+5, p.Lat+5, p.Lon+6, p.Lat+6)
}

func labeled(label string, g orb.Geometry) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties[LabelProperty] = label
	return f
}

func collection(features ...*geojson.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}
	return fc
}

// emptySnapshot has every layer present with no features.
func emptySnapshot() *FeedSnapshot {
	snap := &FeedSnapshot{Layers: map[LayerID]*geojson.FeatureCollection{}}
	for _, id := range RequiredLayers(Options{Extended: true}) {
		snap.Layers[id] = collection()
	}
	return snap
}
