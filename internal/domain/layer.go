package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb/geojson"
)

// LayerID names one published outlook layer.
type LayerID string

const (
	Day1Categorical LayerID = "day1_cat"
	Day1Tornado     LayerID = "day1_torn"
	Day1Hail        LayerID = "day1_hail"
	Day1Wind        LayerID = "day1_wind"
	Day2Categorical LayerID = "day2_cat"
	Day2Tornado     LayerID = "day2_torn"
	Day2Hail        LayerID = "day2_hail"
	Day2Wind        LayerID = "day2_wind"
	Day3Categorical LayerID = "day3_cat"
	Day3Probability LayerID = "day3_prob"
	Day4Probability LayerID = "day4_prob"
	Day5Probability LayerID = "day5_prob"
	Day6Probability LayerID = "day6_prob"
	Day7Probability LayerID = "day7_prob"
	Day8Probability LayerID = "day8_prob"

	// Discussions identifies the mesoscale discussion index in errors and metrics.
	Discussions LayerID = "mcd"
)

// hazardDay lists the layers behind a day 1 or day 2 outlook.
type hazardDay struct {
	day         int
	categorical LayerID
	tornado     LayerID
	hail        LayerID
	wind        LayerID
}

var hazardDays = [...]hazardDay{
	{day: 1, categorical: Day1Categorical, tornado: Day1Tornado, hail: Day1Hail, wind: Day1Wind},
	{day: 2, categorical: Day2Categorical, tornado: Day2Tornado, hail: Day2Hail, wind: Day2Wind},
}

// extendedDays lists the day 4-8 probability layers in day order.
var extendedDays = [...]LayerID{Day4Probability, Day5Probability, Day6Probability, Day7Probability, Day8Probability}

// Options selects the optional parts of an evaluation.
type Options struct {
	Extended    bool // days 4-8
	Discussions bool // active mesoscale discussions
}

// RequiredLayers returns every layer Evaluate reads for opts, in day order.
func RequiredLayers(opts Options) []LayerID {
	ids := make([]LayerID, 0, 15)
	for _, d := range hazardDays {
		ids = append(ids, d.categorical, d.tornado, d.hail, d.wind)
	}
	ids = append(ids, Day3Categorical, Day3Probability)
	if opts.Extended {
		ids = append(ids, extendedDays[:]...)
	}
	return ids
}

// FeedSnapshot is one refresh cycle's view of the outlook feeds. All sites
// evaluated in a cycle read the same snapshot.
type FeedSnapshot struct {
	Layers      map[LayerID]*geojson.FeatureCollection
	Discussions []MesoscaleDiscussion
	FetchedAt   time.Time
}

func (s *FeedSnapshot) layer(id LayerID) (*geojson.FeatureCollection, error) {
	if s == nil {
		return nil, &FeedError{Layer: id, Err: ErrLayerMissing}
	}
	fc, ok := s.Layers[id]
	if !ok || fc == nil {
		return nil, &FeedError{Layer: id, Err: ErrLayerMissing}
	}
	return fc, nil
}

// ErrLayerMissing is wrapped in a FeedError when a snapshot lacks a required layer.
var ErrLayerMissing = errors.New("layer missing from snapshot")

// FeedError reports a layer that could not be fetched or parsed. Any FeedError
// fails the whole evaluation.
type FeedError struct {
	Layer LayerID
	URL   string // empty for snapshot lookups
	Err   error
}

func (e *FeedError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("feed %s (%s): %v", e.Layer, e.URL, e.Err)
	}
	return fmt.Sprintf("feed %s: %v", e.Layer, e.Err)
}

func (e *FeedError) Unwrap() error { return e.Err }
