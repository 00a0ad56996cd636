package compliance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID tipe untuk Analysis
type AnalysisID string

// Severity enum
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the closed enum values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeverityCritical:
		return true
	}
	return false
}

// Mode enum: how many photos backed the assessment
type Mode string

const (
	ModeSingle      Mode = "single"
	ModeBeforeAfter Mode = "before_after"
)

// Violation is one non-conformance found in a photo. Immutable after the
// Analysis is created; a recheck annotates status, it never mutates these.
type Violation struct {
	ID             string   `json:"id,omitempty"`
	Description    string   `json:"description"`
	CodeSection    string   `json:"code_section"`
	Severity       Severity `json:"severity"`
	FixInstruction string   `json:"fix_instruction,omitempty"`
}

// Validate checks the required fields and the severity enum.
func (v Violation) Validate() error {
	if v.Description == "" {
		return fmt.Errorf("violation description is required: %w", ErrValidation)
	}
	if v.CodeSection == "" {
		return fmt.Errorf("violation code section is required: %w", ErrValidation)
	}
	if !v.Severity.Valid() {
		return fmt.Errorf("invalid severity %q: %w", v.Severity, ErrValidation)
	}
	return nil
}

// SkillDemonstrated is one skill the photo evidenced.
type SkillDemonstrated struct {
	Skill    string `json:"skill"`
	Evidence string `json:"evidence,omitempty"`
}

// Aggregate Root: Analysis — one compliance assessment event.
type Analysis struct {
	ID                 AnalysisID          `json:"id"`
	UserID             string              `json:"user_id"`
	CreatedAt          time.Time           `json:"created_at"`
	Jurisdiction       string              `json:"jurisdiction,omitempty"`
	WorkType           string              `json:"work_type"`
	Mode               Mode                `json:"mode"`
	PhotoURL           string              `json:"photo_url,omitempty"`
	Violations         []Violation         `json:"violations"`
	CorrectItems       []string            `json:"correct_items"`
	SkillsDemonstrated []SkillDemonstrated `json:"skills_demonstrated"`
	ComplianceScore    int                 `json:"compliance_score"`
	IsCompliant        bool                `json:"is_compliant"`
	OverallAssessment  string              `json:"overall_assessment"`
	FixedPhotoURL      string              `json:"fixed_photo_url,omitempty"`
	FixVerified        bool                `json:"fix_verified"`
	FixComplianceScore int                 `json:"fix_compliance_score,omitempty"`
	FixAnalysis        *RecheckResult      `json:"fix_analysis,omitempty"`
}

// NewAnalysisParams carries the inputs for constructing an Analysis.
type NewAnalysisParams struct {
	UserID             string
	Jurisdiction       string
	WorkType           string
	Mode               Mode
	PhotoURL           string
	Violations         []Violation
	CorrectItems       []string
	SkillsDemonstrated []SkillDemonstrated
	ComplianceScore    int
	OverallAssessment  string
}

// NewAnalysis builds an Analysis from an inference findings payload.
// The score is clamped to [0,100] rather than rejected: the payload is
// untrusted and may be slightly out of range. IsCompliant is always derived
// from the violation severities, never taken from the payload.
func NewAnalysis(id AnalysisID, at time.Time, p NewAnalysisParams) (*Analysis, error) {
	if p.WorkType == "" {
		return nil, fmt.Errorf("work type is required: %w", ErrValidation)
	}
	if p.OverallAssessment == "" {
		return nil, fmt.Errorf("overall assessment is required: %w", ErrValidation)
	}
	mode := p.Mode
	if mode == "" {
		mode = ModeSingle
	}
	violations := make([]Violation, len(p.Violations))
	for i, v := range p.Violations {
		if err := v.Validate(); err != nil {
			return nil, err
		}
		if v.ID == "" {
			// Stable id assigned at creation so a future inference contract
			// can join rechecks on it instead of the description text.
			v.ID = uuid.New().String()
		}
		violations[i] = v
	}
	return &Analysis{
		ID:                 id,
		UserID:             p.UserID,
		CreatedAt:          at,
		Jurisdiction:       p.Jurisdiction,
		WorkType:           p.WorkType,
		Mode:               mode,
		PhotoURL:           p.PhotoURL,
		Violations:         violations,
		CorrectItems:       p.CorrectItems,
		SkillsDemonstrated: p.SkillsDemonstrated,
		ComplianceScore:    ClampScore(p.ComplianceScore),
		IsCompliant:        !HasCritical(violations),
		OverallAssessment:  p.OverallAssessment,
	}, nil
}

// ClampScore bounds a compliance score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// HasCritical reports whether any violation is critical severity.
func HasCritical(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// ApplyRecheck merges a reconciliation outcome into the analysis. Only the
// most recent recheck is retained; any prior one is replaced wholesale.
func (a *Analysis) ApplyRecheck(r *RecheckResult, fixedPhotoURL string) {
	a.FixAnalysis = r
	a.FixedPhotoURL = fixedPhotoURL
	a.FixComplianceScore = r.ComplianceScore
	a.FixVerified = r.IsCompliant
}
