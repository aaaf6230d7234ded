package domain

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LabelProperty is the feature property SPC uses for risk labels.
const LabelProperty = "LABEL"

// SignificantLabel marks hatched significant-severe areas in probabilistic layers.
const SignificantLabel = "SIGN"

// PolygonFeature is one labeled outlook polygon with its numeric value.
type PolygonFeature struct {
	Label    string
	Value    float64
	Geometry orb.Geometry // orb.Polygon or orb.MultiPolygon
}

// Extract converts a feature collection into labeled polygons. labelToValue maps
// the LABEL property to a number and include decides whether the feature is kept.
// Features without a usable Polygon/MultiPolygon geometry are skipped. Output order
// follows the input.
func Extract(fc *geojson.FeatureCollection, labelToValue func(string) float64, include func(label string, value float64) bool) []PolygonFeature {
	if fc == nil {
		return nil
	}

	out := make([]PolygonFeature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		label := featureLabel(f)
		value := labelToValue(label)
		if !include(label, value) {
			continue
		}
		if !polygonal(f.Geometry) {
			continue
		}
		out = append(out, PolygonFeature{Label: label, Value: value, Geometry: f.Geometry})
	}
	return out
}

// featureLabel reads the LABEL property. Missing labels are empty; numeric labels
// are formatted so probability layers that publish numbers still parse.
func featureLabel(f *geojson.Feature) string {
	switch v := f.Properties[LabelProperty].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// ParseProbability parses a probability label into a fraction. "0.05", "5" and "5%"
// all yield 0.05. A trailing "%" always means whole percents; bare numbers above 1
// are read as percents too. Non-numeric labels (including "SIGN") are 0.
func ParseProbability(label string) float64 {
	s := strings.TrimSpace(label)
	s, percent := strings.CutSuffix(s, "%")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0
	}
	if percent || v > 1 {
		v /= 100
	}
	return v
}

func positive(_ string, value float64) bool { return value > 0 }

func significant(label string, _ float64) bool { return label == SignificantLabel }
