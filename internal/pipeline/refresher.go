package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	"github.com/couchcryptid/storm-outlook-service/internal/observability"
	"github.com/couchcryptid/storm-outlook-service/internal/retry"
)

// Refresher evaluates every configured site against one shared snapshot per
// cycle and publishes a report for each.
type Refresher struct {
	aggregator *Aggregator
	sites      []domain.Site
	geocoder   domain.Geocoder
	publisher  Publisher
	opts       domain.Options
	metrics    *observability.Metrics
	logger     *slog.Logger

	// Publish retries use exponential backoff, doubling from publishBackoff.
	publishAttempts int
	publishBackoff  time.Duration
	maxBackoff      time.Duration

	ready  atomic.Bool
	mu     sync.RWMutex
	latest []domain.Report
}

// NewRefresher creates a Refresher. geocoder may be nil when every site has
// coordinates.
func NewRefresher(agg *Aggregator, sites []domain.Site, geocoder domain.Geocoder, publisher Publisher, opts domain.Options, metrics *observability.Metrics, logger *slog.Logger) *Refresher {
	return &Refresher{
		aggregator:      agg,
		sites:           sites,
		geocoder:        geocoder,
		publisher:       publisher,
		opts:            opts,
		metrics:         metrics,
		logger:          logger,
		publishAttempts: 3,
		publishBackoff:  200 * time.Millisecond,
		maxBackoff:      5 * time.Second,
	}
}

// CheckReadiness returns nil once a refresh cycle has completed successfully.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no successful refresh cycle yet")
	}
	return nil
}

// Latest returns the reports of the most recent cycle.
func (r *Refresher) Latest() []domain.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Report, len(r.latest))
	copy(out, r.latest)
	return out
}

// RunOnce runs one refresh cycle. A feed failure produces an error report for
// every site and is returned; per-site geocoding failures only affect that site.
func (r *Refresher) RunOnce(ctx context.Context) ([]domain.Report, error) {
	start := time.Now()
	r.logger.Info("refresh cycle started", "sites", len(r.sites), "extended", r.opts.Extended)

	reports, cycleErr := r.evaluate(ctx)

	if err := r.publish(ctx, reports); err != nil {
		r.logger.Error("publish reports failed", "error", err, "reports", len(reports))
		if cycleErr == nil {
			cycleErr = err
		}
	}

	r.mu.Lock()
	r.latest = reports
	r.mu.Unlock()

	if cycleErr != nil {
		r.metrics.RefreshCycles.WithLabelValues("error").Inc()
		r.logger.Error("refresh cycle failed", "error", cycleErr, "duration", time.Since(start))
		return reports, cycleErr
	}

	r.ready.Store(true)
	r.metrics.RefreshCycles.WithLabelValues("success").Inc()
	r.logger.Info("refresh cycle complete", "reports", len(reports), "duration", time.Since(start))
	return reports, nil
}

func (r *Refresher) evaluate(ctx context.Context) ([]domain.Report, error) {
	reports := make([]domain.Report, 0, len(r.sites))

	snap, snapErr := r.aggregator.Snapshot(ctx, r.opts)
	if snapErr == nil {
		r.metrics.ActiveDiscussions.Set(float64(len(snap.Discussions)))
	}

	for _, site := range r.sites {
		p, err := domain.LocateSite(ctx, site, r.geocoder)
		if err != nil {
			r.logger.Warn("site could not be located", "site", site.Name, "error", err)
			r.metrics.Evaluations.WithLabelValues("invalid").Inc()
			reports = append(reports, domain.NewReport(site.Name, p, domain.Outlook{}, err))
			continue
		}
		if snapErr != nil {
			r.metrics.Evaluations.WithLabelValues("feed_error").Inc()
			reports = append(reports, domain.NewReport(site.Name, p, domain.Outlook{}, snapErr))
			continue
		}

		out, err := domain.Evaluate(snap, p, r.opts)
		if err != nil {
			r.metrics.Evaluations.WithLabelValues("feed_error").Inc()
		} else {
			r.metrics.Evaluations.WithLabelValues("success").Inc()
			r.logger.Debug("site evaluated", "site", site.Name, "day1", out.Day1.Category)
		}
		reports = append(reports, domain.NewReport(site.Name, p, out, err))
	}
	return reports, snapErr
}

// publish delivers reports, retrying with backoff on failure.
func (r *Refresher) publish(ctx context.Context, reports []domain.Report) error {
	if r.publisher == nil || len(reports) == 0 {
		return nil
	}

	backoff := r.publishBackoff
	var err error
	for attempt := 1; attempt <= r.publishAttempts; attempt++ {
		if err = r.publisher.Publish(ctx, reports); err == nil {
			r.metrics.ReportsPublished.Add(float64(len(reports)))
			return nil
		}
		if attempt == r.publishAttempts || ctx.Err() != nil {
			break
		}
		r.logger.Warn("publish failed, retrying", "error", err, "attempt", attempt)
		if !retry.Sleep(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, r.maxBackoff)
	}
	return err
}
