package spc

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// DirProvider reads layers from a directory holding files named like the SPC
// URLs (day1otlk_cat.lyr.geojson, ..., mcd.geojson).
type DirProvider struct {
	dir    string
	logger *slog.Logger
}

// NewDirProvider creates a provider rooted at dir.
func NewDirProvider(dir string, logger *slog.Logger) *DirProvider {
	return &DirProvider{dir: dir, logger: logger}
}

// FetchLayer reads and parses one layer file. Failures are *domain.FeedError.
func (p *DirProvider) FetchLayer(ctx context.Context, id domain.LayerID) (*geojson.FeatureCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.FeedError{Layer: id, Err: err}
	}

	name, err := LayerFile(id)
	if err != nil {
		return nil, &domain.FeedError{Layer: id, Err: err}
	}
	path := filepath.Join(p.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.FeedError{Layer: id, URL: path, Err: err}
	}
	fc, skipped, err := DecodeLayer(data)
	if err != nil {
		return nil, &domain.FeedError{Layer: id, URL: path, Err: err}
	}
	if skipped > 0 {
		p.logger.Warn("skipped features with invalid geometry", "layer", id, "file", path, "skipped", skipped)
	}
	return fc, nil
}

// FetchDiscussions reads mcd.geojson. A missing file means no active discussions.
func (p *DirProvider) FetchDiscussions(ctx context.Context) ([]domain.MesoscaleDiscussion, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.FeedError{Layer: domain.Discussions, Err: err}
	}

	path := filepath.Join(p.dir, DiscussionsFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.MesoscaleDiscussion{}, nil
	}
	if err != nil {
		return nil, &domain.FeedError{Layer: domain.Discussions, URL: path, Err: err}
	}

	mds, err := DecodeDiscussions(data)
	if err != nil {
		return nil, &domain.FeedError{Layer: domain.Discussions, URL: path, Err: err}
	}
	return mds, nil
}
