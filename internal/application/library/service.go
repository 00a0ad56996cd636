package library

import (
	"context"
	"fmt"

	"github.com/fieldproof/tradecheck/internal/domain/compliance"
	"github.com/fieldproof/tradecheck/internal/domain/knowledge"
)

// Service serves knowledge clips, optionally relevance-filtered for an
// analysis's context. Read-only and stateless.
type Service struct {
	Clips    knowledge.Repository
	Analyses compliance.Repository
}

// Browse lists clips, filtered to a task type when one is given.
func (s *Service) Browse(ctx context.Context, taskType string) ([]knowledge.Clip, error) {
	if taskType != "" {
		return s.Clips.ListByTaskType(ctx, taskType)
	}
	return s.Clips.List(ctx)
}

// ForAnalysis returns the clips relevant to one analysis: its work type,
// violation description words, and code sections form the keyword set.
func (s *Service) ForAnalysis(ctx context.Context, userID string, id compliance.AnalysisID) ([]knowledge.Clip, error) {
	a, err := s.Analyses.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("analysis %s: %w", id, compliance.ErrNotFound)
	}
	clips, err := s.Clips.List(ctx)
	if err != nil {
		return nil, err
	}
	keywords := knowledge.ContextKeywords(a.WorkType, a.Violations)
	return knowledge.Match(clips, keywords), nil
}
