// Package pipeline gathers outlook feeds into snapshots, evaluates configured
// sites on a schedule, and hands the resulting reports to a publisher.
package pipeline

import (
	"context"

	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// FeedProvider fetches one outlook layer or the discussion index. Errors should
// be *domain.FeedError; other errors are wrapped by the Aggregator.
type FeedProvider interface {
	FetchLayer(ctx context.Context, id domain.LayerID) (*geojson.FeatureCollection, error)
	FetchDiscussions(ctx context.Context) ([]domain.MesoscaleDiscussion, error)
}

// Publisher delivers the reports of one refresh cycle.
type Publisher interface {
	Publish(ctx context.Context, reports []domain.Report) error
}
