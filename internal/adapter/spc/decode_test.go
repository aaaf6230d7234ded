package spc

import (
	"os"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLayer_Valid(t *testing.T) {
	data := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[-98,35],[-97,35],[-97,36],[-98,35]]]},"properties":{"LABEL":"0.05"}},
		{"type":"Feature","geometry":{"type":"MultiPolygon","coordinates":[[[[-90,30],[-89,30],[-89,31],[-90,30]]]]},"properties":{"LABEL":"0.15"}}
	]}`)

	fc, skipped, err := DecodeLayer(data)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, fc.Features, 2)
	assert.IsType(t, orb.Polygon{}, fc.Features[0].Geometry)
	assert.IsType(t, orb.MultiPolygon{}, fc.Features[1].Geometry)
}

func TestDecodeLayer_Empty(t *testing.T) {
	fc, skipped, err := DecodeLayer([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Empty(t, fc.Features)
}

func TestDecodeLayer_SkipsBadFeature(t *testing.T) {
	data, err := os.ReadFile("testdata/bad_feature.geojson")
	require.NoError(t, err)

	fc, skipped, err := DecodeLayer(data)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "SLGT", fc.Features[0].Properties["LABEL"])
}

func TestDecodeLayer_Errors(t *testing.T) {
	tests := map[string]string{
		"not json":        `<html>503 Service Unavailable</html>`,
		"wrong type":      `{"type":"Feature","geometry":null,"properties":{}}`,
		"truncated":       `{"type":"FeatureCollection","features":[`,
		"features object": `{"type":"FeatureCollection","features":{}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeLayer([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestDecodeDiscussions(t *testing.T) {
	data, err := os.ReadFile("testdata/mcd.geojson")
	require.NoError(t, err)

	mds, err := DecodeDiscussions(data)
	require.NoError(t, err)
	require.Len(t, mds, 2)
	assert.Equal(t, "MD 0421", mds[0].Name)
	assert.Equal(t, "MD 0424", mds[1].Name)
	assert.IsType(t, orb.MultiPolygon{}, mds[1].Geometry)
}

func TestDecodeDiscussions_Empty(t *testing.T) {
	mds, err := DecodeDiscussions([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	assert.NotNil(t, mds)
	assert.Empty(t, mds)
}
