package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_OutsideEveryPolygon(t *testing.T) {
	snap := emptySnapshot()
	for _, id := range RequiredLayers(Options{Extended: true}) {
		snap.Layers[id] = collection(
			labeled("HIGH", away(norman)),
			labeled("0.45", away(norman)),
			labeled(SignificantLabel, away(norman)),
		)
	}

	out, err := Evaluate(snap, norman, Options{Extended: true})
	require.NoError(t, err)

	for _, d := range []DayRisk{out.Day1, out.Day2} {
		assert.Equal(t, CategoryNone, d.Category)
		assert.Zero(t, d.TornadoProb)
		assert.Zero(t, d.HailProb)
		assert.Zero(t, d.WindProb)
		assert.False(t, d.HasProbabilityRisk)
		assert.False(t, d.TornadoSignificant || d.HailSignificant || d.WindSignificant)
	}
	assert.Equal(t, CategoryNone, out.Day3.Category)
	assert.Zero(t, out.Day3.Probability)
	require.Len(t, out.Extended, 5)
	for _, d := range out.Extended {
		assert.Equal(t, CategoryNone, d.Category)
		assert.Zero(t, d.Probability)
	}
	assert.False(t, out.ExtendedRiskPresent)
	assert.True(t, out.NoSevereRisk())
}

func TestEvaluate_Day1CategoricalSlight(t *testing.T) {
	snap := emptySnapshot()
	snap.Layers[Day1Categorical] = collection(
		labeled("SLGT", around(norman, 1)),
		labeled("ENH", box(-96, 36, -95, 37)),
	)

	out, err := Evaluate(snap, norman, Options{})
	require.NoError(t, err)

	assert.Equal(t, CategorySLGT, out.Day1.Category)
	assert.Equal(t, "SLGT", out.Day1.Category.Code())
	assert.Equal(t, "Slight", out.Day1.Text)
	assert.Equal(t, "f7f690", out.Day1.Color)
	assert.Equal(t, 1, out.Day1.Day)
	assert.False(t, out.NoSevereRisk())
}

func TestEvaluate_OverlappingCategoriesTakeMax(t *testing.T) {
	snap := emptySnapshot()
	snap.Layers[Day2Categorical] = collection(
		labeled("TSTM", around(norman, 3)),
		labeled("MRGL", around(norman, 2)),
		labeled("ENH", around(norman, 0.5)),
		labeled("SLGT", around(norman, 1)),
		labeled("HIGH", away(norman)),
	)

	out, err := Evaluate(snap, norman, Options{})
	require.NoError(t, err)
	assert.Equal(t, CategoryENH, out.Day2.Category)
	assert.Equal(t, "e9c188", out.Day2.Color)
}

func TestEvaluate_TornadoWithSignificant(t *testing.T) {
	snap := emptySnapshot()
	snap.Layers[Day1Tornado] = collection(
		labeled("5", around(norman, 1)),
		labeled(SignificantLabel, around(norman, 0.5)),
	)

	out, err := Evaluate(snap, norman, Options{})
	require.NoError(t, err)

	assert.InDelta(t, 0.05, out.Day1.TornadoProb, 1e-9)
	assert.True(t, out.Day1.TornadoSignificant)
	assert.True(t, out.Day1.HasProbabilityRisk)
	assert.False(t, out.Day1.HailSignificant)
	assert.False(t, out.Day1.WindSignificant)
}

func TestEvaluate_SignificantIgnoredWithoutProbability(t *testing.T) {
	snap := emptySnapshot()
	snap.Layers[Day1Hail] = collection(
		labeled("0.15", away(norman)),
		labeled(SignificantLabel, around(norman, 0.5)),
	)

	out, err := Evaluate(snap, norman, Options{})
	require.NoError(t, err)
	assert.Zero(t, out.Day1.HailProb)
	assert.False(t, out.Day1.HailSignificant)
	assert.False(t, out.Day1.HasProbabilityRisk)
}

func TestEvaluate_HazardsHaveIndependentSignificance(t *testing.T) {
	snap := emptySnapshot()
	snap.Layers[Day2Hail] = collection(labeled("0.15", around(norman, 1)))
	snap.Layers[Day2Wind] = collection(
		labeled("0.30", around(norman, 1)),
		labeled("0.15", around(norman, 2)),
		labeled(SignificantLabel, around(norman, 0.5)),
	)

	out, err := Evaluate(snap, norman, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 0.15, out.Day2.HailProb, 1e-9)
	assert.False(t, out.Day2.HailSignificant)
	assert.InDelta(t, 0.30, out.Day2.WindProb, 1e-9)
	assert.True(t, out.Day2.WindSignificant)
	assert.True(t, out.Day2.HasProbabilityRisk)
}

func TestEvaluate_Day3(t *testing.T) {
	snap := emptySnapshot()
	snap.Layers[Day3Categorical] = collection(labeled("MRGL", around(norman, 1)))
	snap.Layers[Day3Probability] = collection(
		labeled("0.05", around(norman, 1)),
		labeled(SignificantLabel, away(norman)),
	)

	out, err := Evaluate(snap, norman, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Day3.Day)
	assert.Equal(t, CategoryMRGL, out.Day3.Category)
	assert.Equal(t, "7ac687", out.Day3.Color)
	assert.InDelta(t, 0.05, out.Day3.Probability, 1e-9)
	assert.False(t, out.Day3.Significant)
}

func TestEvaluate_Extended(t *testing.T) {
	snap := emptySnapshot()
	snap.Layers[Day4Probability] = collection(labeled("0.15", around(norman, 1)))
	snap.Layers[Day5Probability] = collection(labeled("0.30", around(norman, 1)))
	snap.Layers[Day6Probability] = collection(
		labeled("0.45", around(norman, 1)),
		labeled(SignificantLabel, around(norman, 1)),
	)
	snap.Layers[Day8Probability] = collection(labeled("0.15", away(norman)))

	t.Run("included", func(t *testing.T) {
		out, err := Evaluate(snap, norman, Options{Extended: true})
		require.NoError(t, err)
		require.Len(t, out.Extended, 5)

		want := []struct {
			day int
			cat Category
		}{
			{4, CategorySLGT},
			{5, CategoryENH},
			{6, CategoryMDT},
			{7, CategoryNone},
			{8, CategoryNone},
		}
		for i, w := range want {
			assert.Equal(t, w.day, out.Extended[i].Day)
			assert.Equal(t, w.cat, out.Extended[i].Category, "day %d", w.day)
			assert.Equal(t, w.cat.Color(), out.Extended[i].Color)
		}
		assert.True(t, out.Extended[2].Significant)
		assert.True(t, out.ExtendedRiskPresent)
	})

	t.Run("omitted", func(t *testing.T) {
		out, err := Evaluate(snap, norman, Options{})
		require.NoError(t, err)
		assert.Nil(t, out.Extended)
		assert.False(t, out.ExtendedRiskPresent)
	})
}

func TestEvaluate_ExtendedNotRequiredWhenDisabled(t *testing.T) {
	snap := emptySnapshot()
	for _, id := range extendedDays {
		delete(snap.Layers, id)
	}

	_, err := Evaluate(snap, norman, Options{})
	require.NoError(t, err)

	_, err = Evaluate(snap, norman, Options{Extended: true})
	require.Error(t, err)
}

func TestEvaluate_MissingLayerFailsWholeOutlook(t *testing.T) {
	snap := emptySnapshot()
	snap.Layers[Day1Categorical] = collection(labeled("HIGH", around(norman, 1)))
	delete(snap.Layers, Day3Probability)

	out, err := Evaluate(snap, norman, Options{})
	require.Error(t, err)

	var feedErr *FeedError
	require.True(t, errors.As(err, &feedErr))
	assert.Equal(t, Day3Probability, feedErr.Layer)
	assert.True(t, errors.Is(err, ErrLayerMissing))
	assert.Equal(t, Outlook{}, out, "no partial outlook")

	_, err = Evaluate(nil, norman, Options{})
	require.Error(t, err)
}

func TestEvaluate_Discussions(t *testing.T) {
	snap := emptySnapshot()
	snap.Discussions = []MesoscaleDiscussion{
		{Name: "MD 0421", Geometry: around(norman, 1)},
		{Name: "MD 0422", Geometry: away(norman)},
	}

	out, err := Evaluate(snap, norman, Options{Discussions: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"MD 0421"}, out.ActiveDiscussions)

	out, err = Evaluate(snap, norman, Options{})
	require.NoError(t, err)
	assert.Nil(t, out.ActiveDiscussions)
}

func TestEvaluate_Idempotent(t *testing.T) {
	snap := emptySnapshot()
	snap.Layers[Day1Categorical] = collection(labeled("ENH", around(norman, 1)))
	snap.Layers[Day1Wind] = collection(labeled("0.30", orb.MultiPolygon{away(norman), around(norman, 1)}))
	snap.Layers[Day5Probability] = collection(labeled("0.15", around(norman, 1)))
	snap.Discussions = []MesoscaleDiscussion{{Name: "MD 0001", Geometry: around(norman, 1)}}
	opts := Options{Extended: true, Discussions: true}

	first, err := Evaluate(snap, norman, opts)
	require.NoError(t, err)
	second, err := Evaluate(snap, norman, opts)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("outlook mismatch (-first +second):\n%s", diff)
	}

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestOutlook_Summary(t *testing.T) {
	t.Run("no risk", func(t *testing.T) {
		out, err := Evaluate(emptySnapshot(), norman, Options{})
		require.NoError(t, err)
		assert.Equal(t, "No Severe Weather Risk\n", out.Summary())
	})

	t.Run("with hazards", func(t *testing.T) {
		snap := emptySnapshot()
		snap.Layers[Day1Categorical] = collection(labeled("SLGT", around(norman, 1)))
		snap.Layers[Day1Tornado] = collection(
			labeled("0.05", around(norman, 1)),
			labeled(SignificantLabel, around(norman, 1)),
		)
		snap.Layers[Day1Hail] = collection(labeled("0.15", around(norman, 1)))
		snap.Discussions = []MesoscaleDiscussion{{Name: "MD 0421", Geometry: around(norman, 1)}}

		out, err := Evaluate(snap, norman, Options{Discussions: true})
		require.NoError(t, err)

		want := "Day 1: Slight | tornado 5% (sig) | hail 15%\n" +
			"Day 2: None\n" +
			"Day 3: None\n" +
			"Active: MD 0421\n"
		assert.Equal(t, want, out.Summary())
	})
}

func TestOutlook_JSONShape(t *testing.T) {
	snap := emptySnapshot()
	snap.Layers[Day1Categorical] = collection(labeled("SLGT", around(norman, 1)))

	out, err := Evaluate(snap, norman, Options{})
	require.NoError(t, err)

	data, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	day1 := decoded["day1"].(map[string]any)
	assert.Equal(t, "SLGT", day1["category"])
	assert.Equal(t, "f7f690", day1["color"])
	assert.NotContains(t, decoded, "extended")
	assert.NotContains(t, decoded, "active_discussions")
}

func TestNewReport(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() {
		SetClock(nil)
	})

	ok := NewReport("norman", norman, Outlook{Point: norman}, nil)
	require.NotNil(t, ok.Outlook)
	assert.Empty(t, ok.Error)
	assert.Equal(t, fakeClock.Now(), ok.EvaluatedAt)

	failed := NewReport("norman", norman, Outlook{}, &FeedError{Layer: Day1Hail, Err: errors.New("status 503")})
	assert.Nil(t, failed.Outlook)
	assert.Equal(t, "feed day1_hail: status 503", failed.Error)
}
