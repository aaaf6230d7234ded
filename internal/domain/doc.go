// Package domain evaluates Storm Prediction Center (SPC) convective outlooks for a
// single geographic point.
//
// # Data Source
//
// SPC publishes each outlook layer as a GeoJSON feature collection, e.g.
// https://www.spc.noaa.gov/products/outlook/day1otlk_cat.lyr.geojson. Every feature
// carries a LABEL property and a Polygon or MultiPolygon geometry in (lon, lat) order.
//
// # Layer Conventions
//
// Categorical layers (day 1-3 "cat"):
//
//	LABEL is one of TSTM, MRGL, SLGT, ENH, MDT, HIGH, ordered by ascending severity.
//	Areas outside every polygon have no categorical risk (NONE).
//
// Probabilistic layers (day 1-2 torn/hail/wind, day 3 prob, day 4-8 prob):
//
//	LABEL is a probability, "0.05" = 5%. A few feeds publish whole percents ("5")
//	or a trailing percent sign ("5%"); both are normalized to a fraction.
//	LABEL "SIGN" marks the hatched area where the hazard, if it occurs, is expected
//	to be significant (EF2+ tornado, 2"+ hail, 65 kt+ wind).
//
// Day 4-8 outlooks have no categorical layer. The category is derived from the
// probability with a fixed table (see [PercToRisk]):
//
//	45% significant -> MDT   45% -> ENH   30% -> ENH   15% -> SLGT   5% -> MRGL
//
// Any other probability maps to NONE. SPC only issues 15% and 30% areas for days
// 4-8, so the table is a lookup rather than an interpolation.
//
// # Mesoscale Discussions
//
// Mesoscale discussions (MDs) are short-fuse advisories for a small area. Each one is
// reduced to a name ("MD 0421") and a polygon; a point is "in" an MD when the polygon
// contains it. See [MatchDiscussions].
//
// # Evaluation
//
// Every resolver is the same two-step pattern: [Extract] turns a feature collection
// into labeled polygons with a numeric value, and [Reduce] folds the polygons that
// contain the point with a [Comparator]. [Evaluate] drives the resolvers over a
// [FeedSnapshot] and returns an [Outlook]. Evaluation is pure: a fixed snapshot and
// point always produce the same Outlook.
package domain
