// Package spc reads Storm Prediction Center outlook layers and mesoscale
// discussions, either over HTTP or from a local fixture directory.
package spc

import (
	"fmt"
	"path"

	"github.com/couchcryptid/storm-outlook-service/internal/domain"
)

// DiscussionsFile is the fixture file name for the mesoscale discussion index.
const DiscussionsFile = "mcd.geojson"

var layerPaths = map[domain.LayerID]string{
	domain.Day1Categorical: "outlook/day1otlk_cat.lyr.geojson",
	domain.Day1Tornado:     "outlook/day1otlk_torn.lyr.geojson",
	domain.Day1Hail:        "outlook/day1otlk_hail.lyr.geojson",
	domain.Day1Wind:        "outlook/day1otlk_wind.lyr.geojson",
	domain.Day2Categorical: "outlook/day2otlk_cat.lyr.geojson",
	domain.Day2Tornado:     "outlook/day2otlk_torn.lyr.geojson",
	domain.Day2Hail:        "outlook/day2otlk_hail.lyr.geojson",
	domain.Day2Wind:        "outlook/day2otlk_wind.lyr.geojson",
	domain.Day3Categorical: "outlook/day3otlk_cat.lyr.geojson",
	domain.Day3Probability: "outlook/day3otlk_prob.lyr.geojson",
	domain.Day4Probability: "exper/day4-8/day4prob.lyr.geojson",
	domain.Day5Probability: "exper/day4-8/day5prob.lyr.geojson",
	domain.Day6Probability: "exper/day4-8/day6prob.lyr.geojson",
	domain.Day7Probability: "exper/day4-8/day7prob.lyr.geojson",
	domain.Day8Probability: "exper/day4-8/day8prob.lyr.geojson",
}

// LayerPath returns the path of a layer relative to the SPC products root.
func LayerPath(id domain.LayerID) (string, error) {
	p, ok := layerPaths[id]
	if !ok {
		return "", fmt.Errorf("unknown layer %q", id)
	}
	return p, nil
}

// LayerURL joins the products root and the layer path.
func LayerURL(baseURL string, id domain.LayerID) (string, error) {
	p, err := LayerPath(id)
	if err != nil {
		return "", err
	}
	return baseURL + "/" + p, nil
}

// LayerFile returns the fixture file name for a layer, the base name of its URL.
func LayerFile(id domain.LayerID) (string, error) {
	p, err := LayerPath(id)
	if err != nil {
		return "", err
	}
	return path.Base(p), nil
}
