package profile

import (
	"github.com/fieldproof/tradecheck/internal/domain/compliance"
	"github.com/fieldproof/tradecheck/internal/domain/metrics"
)

// CredentialSummary is a presentable, shareable snapshot of a user's
// compliance record.
type CredentialSummary struct {
	UserID                 string        `json:"user_id"`
	Name                   string        `json:"name,omitempty"`
	Trade                  string        `json:"trade,omitempty"`
	TotalAnalyses          int           `json:"total_analyses"`
	AverageCompliance      int           `json:"average_compliance"`
	Trend                  metrics.Trend `json:"trend"`
	StrongSkills           []string      `json:"strong_skills"`
	DevelopingSkills       []string      `json:"developing_skills"`
	QualifiedJurisdictions []string      `json:"qualified_jurisdictions"`
}

// BuildCredential folds a profile, a newest-first analysis history, and the
// derived skill scores into a credential snapshot. Pure; empty inputs produce
// a zeroed summary, never an error.
//
// The declared primary jurisdiction is always listed first; jurisdictions
// actually worked in follow. No cross-jurisdiction code equivalence is
// attempted.
func BuildCredential(p *Profile, history []*compliance.Analysis, skills []metrics.SkillScore) CredentialSummary {
	s := CredentialSummary{
		StrongSkills:     []string{},
		DevelopingSkills: []string{},
	}
	if p != nil {
		s.UserID = p.UserID
		s.Name = p.Name
		s.Trade = p.Trade
	}

	scores := metrics.Scores(history)
	s.TotalAnalyses = len(history)
	s.AverageCompliance = metrics.AverageCompliance(scores)
	s.Trend = metrics.ClassifyTrend(scores)

	strong, developing := metrics.Partition(skills)
	for _, sk := range strong {
		s.StrongSkills = append(s.StrongSkills, sk.SkillName)
	}
	for _, sk := range developing {
		s.DevelopingSkills = append(s.DevelopingSkills, sk.SkillName)
	}

	seen := make(map[string]bool)
	if p != nil && p.PrimaryJurisdiction != "" {
		seen[p.PrimaryJurisdiction] = true
		s.QualifiedJurisdictions = append(s.QualifiedJurisdictions, p.PrimaryJurisdiction)
	}
	for _, a := range history {
		if a.Jurisdiction == "" || seen[a.Jurisdiction] {
			continue
		}
		seen[a.Jurisdiction] = true
		s.QualifiedJurisdictions = append(s.QualifiedJurisdictions, a.Jurisdiction)
	}
	if s.QualifiedJurisdictions == nil {
		s.QualifiedJurisdictions = []string{}
	}
	return s
}
