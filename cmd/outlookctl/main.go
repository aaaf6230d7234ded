// Command outlookctl evaluates the SPC outlook for one location and prints the
// report. Feeds come from the live SPC services or, with -fixtures, from a
// directory of GeoJSON files such as data/mock.
//
// Usage:
//
//	go run ./cmd/outlookctl -lat 35.22 -lon -97.44 -extended
//	go run ./cmd/outlookctl -fixtures data/mock -format text
//	go run ./cmd/outlookctl -place Moore -state OK -decay-miles 25
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/storm-outlook-service/internal/adapter/mapbox"
	"github.com/couchcryptid/storm-outlook-service/internal/adapter/spc"
	"github.com/couchcryptid/storm-outlook-service/internal/config"
	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	"github.com/couchcryptid/storm-outlook-service/internal/observability"
	"github.com/couchcryptid/storm-outlook-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
)

// result is the printed report, optionally with the blended day 1 risk.
type result struct {
	domain.Report
	Day1Blended *blended `json:"day1_blended,omitempty"`
}

type blended struct {
	TransitionMiles float64         `json:"transition_miles"`
	Value           float64         `json:"value"`
	Category        domain.Category `json:"category"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	lat := flag.Float64("lat", 35.22, "latitude")
	lon := flag.Float64("lon", -97.44, "longitude")
	place := flag.String("place", "", "place name to geocode instead of -lat/-lon (needs MAPBOX_TOKEN)")
	state := flag.String("state", "", "state for -place")
	extended := flag.Bool("extended", false, "include days 4-8")
	discussions := flag.Bool("discussions", true, "include active mesoscale discussions")
	fixtures := flag.String("fixtures", "", "read layers from this directory instead of the SPC services")
	decayMiles := flag.Float64("decay-miles", 0, "also print a day 1 risk blended across polygon edges over this many miles")
	format := flag.String("format", "json", "output format: json or text")
	at := flag.String("at", "", "fixed evaluation time (RFC3339) for reproducible output")
	flag.Parse()

	if *format != "json" && *format != "text" {
		flag.Usage()
		return fmt.Errorf("unknown -format %q", *format)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Logs go to stderr so stdout stays a clean report.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: observability.ParseLevel(cfg.LogLevel)}))

	if *at != "" {
		ts, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("invalid -at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(ts))
		defer domain.SetClock(nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()

	site := domain.Site{Name: "cli", Lat: lat, Lon: lon}
	var geocoder domain.Geocoder
	if *place != "" {
		if !cfg.MapboxEnabled {
			return fmt.Errorf("-place needs MAPBOX_TOKEN")
		}
		site = domain.Site{Name: *place, Place: *place, State: *state}
		geocoder = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
	}
	p, err := domain.LocateSite(ctx, site, geocoder)
	if err != nil {
		return err
	}

	var feeds pipeline.FeedProvider = spc.NewClient(cfg, logger)
	if *fixtures != "" {
		feeds = spc.NewDirProvider(*fixtures, logger)
	}
	agg := pipeline.NewAggregator(feeds, cfg.FeedConcurrency, metrics, logger)

	opts := domain.Options{Extended: *extended, Discussions: *discussions}
	out, blend, evalErr := evaluate(ctx, agg, p, opts, *decayMiles)
	res := result{Report: domain.NewReport(site.Name, p, out, evalErr), Day1Blended: blend}

	if err := printResult(res, *format); err != nil {
		return err
	}
	return evalErr
}

// evaluate takes one snapshot and derives both the Outlook and, when decayMiles is
// positive, the blended day 1 risk from it.
func evaluate(ctx context.Context, agg *pipeline.Aggregator, p domain.GeoPoint, opts domain.Options, decayMiles float64) (domain.Outlook, *blended, error) {
	snap, err := agg.Snapshot(ctx, opts)
	if err != nil {
		return domain.Outlook{}, nil, err
	}
	out, err := domain.Evaluate(snap, p, opts)
	if err != nil {
		return domain.Outlook{}, nil, err
	}
	if decayMiles <= 0 {
		return out, nil, nil
	}

	v, err := domain.DecayDay1(snap, p, decayMiles)
	if err != nil {
		return domain.Outlook{}, nil, err
	}
	return out, &blended{TransitionMiles: decayMiles, Value: v, Category: domain.Category(int(v))}, nil
}

func printResult(res result, format string) error {
	if format == "text" {
		if res.Outlook == nil {
			fmt.Printf("%s: %s\n", res.Site, res.Error)
			return nil
		}
		fmt.Printf("%s (%.4f, %.4f)\n", res.Site, res.Point.Lat, res.Point.Lon)
		fmt.Print(res.Outlook.Summary())
		if res.Day1Blended != nil {
			fmt.Printf("Day 1 blended (%.0f mi): %.2f %s\n", res.Day1Blended.TransitionMiles, res.Day1Blended.Value, res.Day1Blended.Category.Text())
		}
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
