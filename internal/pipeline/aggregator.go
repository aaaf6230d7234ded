package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	"github.com/couchcryptid/storm-outlook-service/internal/observability"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"
)

// Aggregator fetches every layer an evaluation needs into one FeedSnapshot.
type Aggregator struct {
	feeds       FeedProvider
	concurrency int
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewAggregator creates an Aggregator that runs at most concurrency fetches at once.
func NewAggregator(feeds FeedProvider, concurrency int, metrics *observability.Metrics, logger *slog.Logger) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{feeds: feeds, concurrency: concurrency, metrics: metrics, logger: logger}
}

// Snapshot fetches the layers required by opts, plus the discussion index when
// opts.Discussions is set. The first failure cancels the remaining fetches and
// is returned as a *domain.FeedError.
func (a *Aggregator) Snapshot(ctx context.Context, opts domain.Options) (*domain.FeedSnapshot, error) {
	ids := domain.RequiredLayers(opts)
	layers := make([]*geojson.FeatureCollection, len(ids))
	var discussions []domain.MesoscaleDiscussion

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			start := time.Now()
			fc, err := a.feeds.FetchLayer(gctx, id)
			a.observe(id, start, err)
			if err != nil {
				return asFeedError(id, err)
			}
			layers[i] = fc
			return nil
		})
	}
	if opts.Discussions {
		g.Go(func() error {
			start := time.Now()
			mds, err := a.feeds.FetchDiscussions(gctx)
			a.observe(domain.Discussions, start, err)
			if err != nil {
				return asFeedError(domain.Discussions, err)
			}
			discussions = mds
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Warn("feed snapshot failed", "error", err)
		return nil, err
	}

	snap := &domain.FeedSnapshot{
		Layers:      make(map[domain.LayerID]*geojson.FeatureCollection, len(ids)),
		Discussions: discussions,
		FetchedAt:   domain.Now(),
	}
	for i, id := range ids {
		snap.Layers[id] = layers[i]
	}
	return snap, nil
}

// GetOutlook takes a fresh snapshot and evaluates p against it.
func (a *Aggregator) GetOutlook(ctx context.Context, p domain.GeoPoint, opts domain.Options) (domain.Outlook, error) {
	start := time.Now()
	defer func() { a.metrics.EvaluationDuration.Observe(time.Since(start).Seconds()) }()

	snap, err := a.Snapshot(ctx, opts)
	if err != nil {
		a.metrics.Evaluations.WithLabelValues("feed_error").Inc()
		return domain.Outlook{}, err
	}

	out, err := domain.Evaluate(snap, p, opts)
	if err != nil {
		a.metrics.Evaluations.WithLabelValues("feed_error").Inc()
		return domain.Outlook{}, err
	}
	a.metrics.Evaluations.WithLabelValues("success").Inc()
	return out, nil
}

func (a *Aggregator) observe(id domain.LayerID, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	a.metrics.FeedFetches.WithLabelValues(string(id), outcome).Inc()
	a.metrics.FeedFetchDuration.WithLabelValues(string(id)).Observe(time.Since(start).Seconds())
}

func asFeedError(id domain.LayerID, err error) error {
	var feedErr *domain.FeedError
	if errors.As(err, &feedErr) {
		return err
	}
	return &domain.FeedError{Layer: id, Err: err}
}
