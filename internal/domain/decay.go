package domain

import (
	"math"

	"github.com/paulmach/orb/geojson"
)

// DecayRisk blends candidate values by distance so that risk tapers near a polygon
// edge instead of dropping to zero. Polygons containing p contribute their full
// value; others contribute value*exp(-d/transitionMiles) where d is the distance
// to their boundary. The result is the maximum contribution.
//
// This is an experimental smoothing and is not part of Outlook.
func DecayRisk(candidates []PolygonFeature, p GeoPoint, transitionMiles float64) float64 {
	best := 0.0
	for _, c := range candidates {
		v := c.Value
		if !Contains(c.Geometry, p) {
			if transitionMiles <= 0 {
				continue
			}
			d, ok := DistanceToBoundary(c.Geometry, p)
			if !ok {
				continue
			}
			v *= math.Exp(-d / transitionMiles)
		}
		if v > best {
			best = v
		}
	}
	return best
}

// CategoricalCandidates extracts the categorical polygons of fc for use with
// DecayRisk.
func CategoricalCandidates(fc *geojson.FeatureCollection) []PolygonFeature {
	return Extract(fc, categoryValue, positive)
}

// DecayDay1 runs DecayRisk over the day 1 categorical layer of snap, so the blend
// and the Outlook evaluated from snap observe the same feeds.
func DecayDay1(snap *FeedSnapshot, p GeoPoint, transitionMiles float64) (float64, error) {
	fc, err := snap.layer(Day1Categorical)
	if err != nil {
		return 0, err
	}
	return DecayRisk(CategoricalCandidates(fc), p, transitionMiles), nil
}
