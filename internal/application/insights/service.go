package insights

import (
	"context"
	"errors"

	"github.com/fieldproof/tradecheck/internal/domain/compliance"
	"github.com/fieldproof/tradecheck/internal/domain/metrics"
	"github.com/fieldproof/tradecheck/internal/domain/profile"
)

// Service derives longitudinal metrics from the analysis history at read
// time. Everything here is recomputation over stored records; nothing derived
// is persisted.
type Service struct {
	Analyses compliance.Repository
	Profiles profile.Repository
}

// Dashboard is the read-model for the history view.
type Dashboard struct {
	TotalAnalyses     int                    `json:"total_analyses"`
	AverageCompliance int                    `json:"average_compliance"`
	Trend             metrics.Trend          `json:"trend"`
	Skills            []metrics.SkillScore   `json:"skills"`
	Recent            []*compliance.Analysis `json:"recent"`
}

const recentCount = 5

// Dashboard computes the stats for one user's full history.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	history, err := s.Analyses.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	scores := metrics.Scores(history)
	recent := history
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}
	return &Dashboard{
		TotalAnalyses:     len(history),
		AverageCompliance: metrics.AverageCompliance(scores),
		Trend:             metrics.ClassifyTrend(scores),
		Skills:            metrics.AggregateSkills(history),
		Recent:            recent,
	}, nil
}

// Credential builds the shareable snapshot. An absent profile is an empty
// state in browsing flows, not an error: the summary is built with zeroed
// identity fields.
func (s *Service) Credential(ctx context.Context, userID string) (*profile.CredentialSummary, error) {
	history, err := s.Analyses.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.Profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, compliance.ErrNotFound) {
		return nil, err
	}
	summary := profile.BuildCredential(p, history, metrics.AggregateSkills(history))
	if summary.UserID == "" {
		summary.UserID = userID
	}
	return &summary, nil
}
