package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/storm-outlook-service/internal/domain"
)

// LogPublisher writes a summary line per report. It is used when Kafka
// publishing is disabled.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, reports []domain.Report) error {
	for _, r := range reports {
		if r.Outlook == nil {
			p.logger.Warn("outlook report", "site", r.Site, "error", r.Error)
			continue
		}
		p.logger.Info("outlook report",
			"site", r.Site,
			"day1", r.Outlook.Day1.Category,
			"day2", r.Outlook.Day2.Category,
			"day3", r.Outlook.Day3.Category,
			"no_severe_risk", r.Outlook.NoSevereRisk(),
			"active_discussions", len(r.Outlook.ActiveDiscussions),
		)
	}
	return nil
}
