package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

const metersPerMile = 1609.344

// ErrInvalidPoint is returned for coordinates outside the WGS-84 range.
var ErrInvalidPoint = errors.New("invalid point")

// GeoPoint is a WGS-84 latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewGeoPoint validates latitude in [-90, 90] and longitude in [-180, 180].
func NewGeoPoint(lat, lon float64) (GeoPoint, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return GeoPoint{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidPoint, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return GeoPoint{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidPoint, lon)
	}
	return GeoPoint{Lat: lat, Lon: lon}, nil
}

// Orb returns the point in GeoJSON (lon, lat) order.
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Contains reports whether the polygon or multipolygon g contains p. A point in any
// part of a multipolygon is contained. Holes are honored, and points on any
// boundary count as inside, hole edges included. Parts without a usable outer
// ring are ignored, and any other geometry type contains nothing.
func Contains(g orb.Geometry, p GeoPoint) bool {
	pt := p.Orb()
	switch g := g.(type) {
	case orb.Polygon:
		return polygonContains(g, pt)
	case orb.MultiPolygon:
		for _, poly := range g {
			if polygonContains(poly, pt) {
				return true
			}
		}
	}
	return false
}

func polygonContains(poly orb.Polygon, pt orb.Point) bool {
	if !validPolygon(poly) {
		return false
	}
	if !poly.Bound().Contains(pt) {
		return false
	}
	if !planar.RingContains(poly[0], pt) {
		return false
	}
	for _, hole := range poly[1:] {
		if planar.RingContains(hole, pt) && !onRing(hole, pt) {
			return false
		}
	}
	return true
}

// boundaryEpsilon is the collinearity tolerance, in squared degrees, for onRing.
const boundaryEpsilon = 1e-12

// onRing reports whether pt lies on one of the ring's edges.
func onRing(ring orb.Ring, pt orb.Point) bool {
	for i := 0; i < len(ring); i++ {
		a, b := ring[i], ring[(i+1)%len(ring)]
		cross := (b[0]-a[0])*(pt[1]-a[1]) - (b[1]-a[1])*(pt[0]-a[0])
		if math.Abs(cross) > boundaryEpsilon {
			continue
		}
		if pt[0] >= math.Min(a[0], b[0]) && pt[0] <= math.Max(a[0], b[0]) &&
			pt[1] >= math.Min(a[1], b[1]) && pt[1] <= math.Max(a[1], b[1]) {
			return true
		}
	}
	return false
}

// validPolygon requires an outer ring with at least three vertices.
func validPolygon(poly orb.Polygon) bool {
	return len(poly) > 0 && len(poly[0]) >= 3
}

// polygonal reports whether g is a polygon or multipolygon with at least one valid part.
func polygonal(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return validPolygon(g)
	case orb.MultiPolygon:
		for _, poly := range g {
			if validPolygon(poly) {
				return true
			}
		}
	}
	return false
}

// DistanceToBoundary returns the great-circle distance in miles from p to the
// nearest edge of g, including hole edges. The second result is false when g has
// no valid ring.
func DistanceToBoundary(g orb.Geometry, p GeoPoint) (float64, bool) {
	var polys []orb.Polygon
	switch g := g.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{g}
	case orb.MultiPolygon:
		polys = g
	default:
		return 0, false
	}

	best := math.Inf(1)
	for _, poly := range polys {
		if !validPolygon(poly) {
			continue
		}
		for _, ring := range poly {
			for i := range ring {
				a := ring[i]
				b := ring[(i+1)%len(ring)]
				d := geo.DistanceHaversine(p.Orb(), closestOnSegment(p, a, b)) / metersPerMile
				if d < best {
					best = d
				}
			}
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// closestOnSegment projects p onto segment ab in a local equirectangular frame
// scaled by cos(lat), which is accurate enough at outlook polygon scales.
func closestOnSegment(p GeoPoint, a, b orb.Point) orb.Point {
	k := math.Cos(p.Lat * math.Pi / 180)
	ax, ay := (a[0]-p.Lon)*k, a[1]-p.Lat
	bx, by := (b[0]-p.Lon)*k, b[1]-p.Lat

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a
	}
	t := -(ax*dx + ay*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
}
