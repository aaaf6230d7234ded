// Command validatefeeds checks a directory of SPC outlook GeoJSON files (the
// layout written by the SPC services and used by data/mock) before it is used as
// a fixture set. It verifies every layer is present and decodes cleanly, that
// risk labels are recognised, that polygon rings are well formed, that
// discussion names look like "MD 0421", and that a point evaluates end to end.
//
// Usage:
//
//	go run ./cmd/validatefeeds -dir data/mock -lat 35.22 -lon -97.44
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-outlook-service/internal/adapter/spc"
	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	"github.com/couchcryptid/storm-outlook-service/internal/observability"
	"github.com/couchcryptid/storm-outlook-service/internal/pipeline"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var discussionName = regexp.MustCompile(`^MD \d{4}$`)

var categoricalLayers = map[domain.LayerID]bool{
	domain.Day1Categorical: true,
	domain.Day2Categorical: true,
	domain.Day3Categorical: true,
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "data/mock", "directory containing the outlook GeoJSON files")
	lat := flag.Float64("lat", 35.22, "latitude for the evaluation check")
	lon := flag.Float64("lon", -97.44, "longitude for the evaluation check")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir, *lat, *lon); code != 0 {
		os.Exit(code)
	}
}

func run(dir string, lat, lon float64) int {
	fmt.Println("=== SPC Outlook Feed Validation ===")
	fmt.Println()

	layers, decode := loadLayers(dir)

	discussions, err := loadDiscussions(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load discussions: %v\n", err)
		return 1
	}

	phases := []*phase{
		decode,
		validateLabels(layers),
		validateGeometry(layers, discussions),
		validateDiscussionNames(discussions),
		validateEvaluation(dir, lat, lon),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Layers: %d loaded, %d features; discussions: %d\n",
		len(layers), countFeatures(layers), len(discussions))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// loadLayers reads every layer of an extended evaluation. Missing files, decode
// errors, and skipped features are reported on the returned phase.
func loadLayers(dir string) (map[domain.LayerID]*geojson.FeatureCollection, *phase) {
	p := &phase{name: "Phase 1: Layers present and decodable"}
	layers := make(map[domain.LayerID]*geojson.FeatureCollection)

	for _, id := range domain.RequiredLayers(domain.Options{Extended: true}) {
		name, err := spc.LayerFile(id)
		if err != nil {
			p.errorf("%s: %v", id, err)
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			p.errorf("%s: %v", id, err)
			continue
		}
		fc, skipped, err := spc.DecodeLayer(data)
		if err != nil {
			p.errorf("%s (%s): %v", id, name, err)
			continue
		}
		if skipped > 0 {
			p.errorf("%s (%s): %d features skipped", id, name, skipped)
		}
		layers[id] = fc
	}
	return layers, p
}

// loadDiscussions reads the discussion file. A missing file means none are active.
func loadDiscussions(dir string) ([]domain.MesoscaleDiscussion, error) {
	data, err := os.ReadFile(filepath.Join(dir, spc.DiscussionsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return spc.DecodeDiscussions(data)
}

func validateLabels(layers map[domain.LayerID]*geojson.FeatureCollection) *phase {
	p := &phase{name: "Phase 2: Risk labels recognised"}

	for id, fc := range layers {
		for i, f := range fc.Features {
			label := featureLabel(f)
			if label == "" {
				p.errorf("%s feature %d: missing %s", id, i, domain.LabelProperty)
				continue
			}
			if categoricalLayers[id] {
				if domain.ParseCategory(label).Code() != label {
					p.errorf("%s feature %d: unknown category %q", id, i, label)
				}
				continue
			}
			if label != domain.SignificantLabel && domain.ParseProbability(label) <= 0 {
				p.errorf("%s feature %d: unparseable probability %q", id, i, label)
			}
		}
	}
	return p
}

func validateGeometry(layers map[domain.LayerID]*geojson.FeatureCollection, discussions []domain.MesoscaleDiscussion) *phase {
	p := &phase{name: "Phase 3: Polygon rings well formed"}

	for id, fc := range layers {
		for i, f := range fc.Features {
			checkRings(p, fmt.Sprintf("%s feature %d", id, i), f.Geometry)
		}
	}
	for _, d := range discussions {
		checkRings(p, d.Name, d.Geometry)
	}
	return p
}

func checkRings(p *phase, where string, g orb.Geometry) {
	var polys []orb.Polygon
	switch g := g.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{g}
	case orb.MultiPolygon:
		polys = g
	default:
		p.errorf("%s: geometry %T is not polygonal", where, g)
		return
	}

	for _, poly := range polys {
		if len(poly) == 0 {
			p.errorf("%s: polygon has no rings", where)
		}
		for r, ring := range poly {
			if len(ring) < 4 {
				p.errorf("%s ring %d: %d points, need at least 4", where, r, len(ring))
				continue
			}
			if !ring.Closed() {
				p.errorf("%s ring %d: not closed", where, r)
			}
		}
	}
}

func validateDiscussionNames(discussions []domain.MesoscaleDiscussion) *phase {
	p := &phase{name: "Phase 4: Discussion names"}

	seen := make(map[string]bool, len(discussions))
	for i, d := range discussions {
		if !discussionName.MatchString(d.Name) {
			p.errorf("discussion %d: name %q does not look like \"MD 0000\"", i, d.Name)
		}
		if seen[d.Name] {
			p.errorf("discussion %d: duplicate name %q", i, d.Name)
		}
		seen[d.Name] = true
	}
	return p
}

// validateEvaluation runs the same aggregator the service uses against dir.
func validateEvaluation(dir string, lat, lon float64) *phase {
	p := &phase{name: "Phase 5: Point evaluation"}

	pt, err := domain.NewGeoPoint(lat, lon)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	logger := slog.New(slog.DiscardHandler)
	agg := pipeline.NewAggregator(spc.NewDirProvider(dir, logger), 4, observability.NewMetricsForTesting(), logger)

	out, err := agg.GetOutlook(context.Background(), pt, domain.Options{Extended: true, Discussions: true})
	if err != nil {
		p.errorf("evaluate (%.4f, %.4f): %v", lat, lon, err)
		return p
	}

	fmt.Printf("Evaluation at (%.4f, %.4f):\n", lat, lon)
	for _, line := range strings.Split(strings.TrimRight(out.Summary(), "\n"), "\n") {
		fmt.Printf("  %s\n", line)
	}
	return p
}

// featureLabel mirrors how the evaluator reads LABEL, including numeric labels.
func featureLabel(f *geojson.Feature) string {
	switch v := f.Properties[domain.LabelProperty].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func countFeatures(layers map[domain.LayerID]*geojson.FeatureCollection) int {
	n := 0
	for _, fc := range layers {
		n += len(fc.Features)
	}
	return n
}
