package domain

// Comparator folds the values of polygons that contain a point.
type Comparator[T any] struct {
	Initial T
	Combine func(best T, value float64) T
}

// MaxValue keeps the highest value; zero when nothing contains the point.
var MaxValue = Comparator[float64]{
	Initial: 0,
	Combine: func(best, value float64) float64 {
		if value > best {
			return value
		}
		return best
	},
}

// AnyContaining is true once any candidate contains the point. Reduce calls
// Combine only for containing candidates, so every call is a match and the fold
// is a boolean or over matches: false with none, true with any. The value is
// ignored; SIGN polygons carry no probability.
var AnyContaining = Comparator[bool]{
	Initial: false,
	Combine: func(bool, float64) bool { return true },
}

// Reduce folds candidates that contain p. Candidates that do not contain p are
// ignored entirely, so an empty match returns cmp.Initial.
func Reduce[T any](candidates []PolygonFeature, p GeoPoint, cmp Comparator[T]) T {
	best := cmp.Initial
	for _, c := range candidates {
		if Contains(c.Geometry, p) {
			best = cmp.Combine(best, c.Value)
		}
	}
	return best
}
