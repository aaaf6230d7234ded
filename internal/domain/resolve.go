package domain

import "github.com/paulmach/orb/geojson"

// ResolveCategory returns the most severe categorical level containing p.
func ResolveCategory(fc *geojson.FeatureCollection, p GeoPoint) Category {
	candidates := Extract(fc, categoryValue, positive)
	return Category(Reduce(candidates, p, MaxValue))
}

// ResolveProbability returns the highest probability (fraction) containing p.
// SIGN polygons never contribute.
func ResolveProbability(fc *geojson.FeatureCollection, p GeoPoint) float64 {
	candidates := Extract(fc, ParseProbability, positive)
	return Reduce(candidates, p, MaxValue)
}

// ResolveSignificant reports whether a SIGN polygon in fc contains p.
func ResolveSignificant(fc *geojson.FeatureCollection, p GeoPoint) bool {
	candidates := Extract(fc, ParseProbability, significant)
	return Reduce(candidates, p, AnyContaining)
}

// ResolveHazard returns the probability at p and its significant flag. The flag
// is only looked up when the probability is positive.
func ResolveHazard(fc *geojson.FeatureCollection, p GeoPoint) (float64, bool) {
	prob := ResolveProbability(fc, p)
	if prob <= 0 {
		return 0, false
	}
	return prob, ResolveSignificant(fc, p)
}

func resolveHazardDay(snap *FeedSnapshot, d hazardDay, p GeoPoint) (DayRisk, error) {
	cat, err := snap.layer(d.categorical)
	if err != nil {
		return DayRisk{}, err
	}
	torn, err := snap.layer(d.tornado)
	if err != nil {
		return DayRisk{}, err
	}
	hail, err := snap.layer(d.hail)
	if err != nil {
		return DayRisk{}, err
	}
	wind, err := snap.layer(d.wind)
	if err != nil {
		return DayRisk{}, err
	}

	risk := newDayRisk(d.day, ResolveCategory(cat, p))
	risk.TornadoProb, risk.TornadoSignificant = ResolveHazard(torn, p)
	risk.HailProb, risk.HailSignificant = ResolveHazard(hail, p)
	risk.WindProb, risk.WindSignificant = ResolveHazard(wind, p)
	risk.HasProbabilityRisk = risk.TornadoProb > 0 || risk.HailProb > 0 || risk.WindProb > 0
	return risk, nil
}

func resolveDay3(snap *FeedSnapshot, p GeoPoint) (ProbDayRisk, error) {
	cat, err := snap.layer(Day3Categorical)
	if err != nil {
		return ProbDayRisk{}, err
	}
	prob, err := snap.layer(Day3Probability)
	if err != nil {
		return ProbDayRisk{}, err
	}

	risk := newProbDayRisk(3, ResolveCategory(cat, p))
	risk.Probability, risk.Significant = ResolveHazard(prob, p)
	return risk, nil
}

func resolveExtendedDay(snap *FeedSnapshot, day int, id LayerID, p GeoPoint) (ProbDayRisk, error) {
	fc, err := snap.layer(id)
	if err != nil {
		return ProbDayRisk{}, err
	}

	prob, sig := ResolveHazard(fc, p)
	risk := newProbDayRisk(day, PercToRisk(prob, sig))
	risk.Probability, risk.Significant = prob, sig
	return risk, nil
}
