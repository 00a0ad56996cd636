package inference

import "context"

// FindingViolation is one raw non-conformance in a findings payload.
type FindingViolation struct {
	Description    string `json:"description"`
	CodeSection    string `json:"code_section"`
	Severity       string `json:"severity"`
	FixInstruction string `json:"fix_instruction,omitempty"`
}

// FindingSkill is one demonstrated skill in a findings payload.
type FindingSkill struct {
	Skill    string `json:"skill"`
	Evidence string `json:"evidence,omitempty"`
}

// Findings is the decoded payload from a photo analysis call.
type Findings struct {
	Violations        []FindingViolation `json:"violations"`
	CorrectItems      []string           `json:"correct_items"`
	Skills            []FindingSkill     `json:"skills_demonstrated"`
	ComplianceScore   int                `json:"compliance_score"`
	IsCompliant       bool               `json:"is_compliant"`
	OverallAssessment string             `json:"overall_assessment"`
}

// ReconciliationEntry is the upstream verdict for one original violation.
type ReconciliationEntry struct {
	OriginalDescription string `json:"original_description"`
	Status              string `json:"status"`
	Notes               string `json:"notes,omitempty"`
}

// NewViolation is an issue in the follow-up photo absent from the original list.
type NewViolation struct {
	Description string `json:"description"`
	Severity    string `json:"severity,omitempty"`
}

// Reconciliation is the decoded payload from a recheck call.
type Reconciliation struct {
	Entries         []ReconciliationEntry `json:"original_violation_status"`
	NewViolations   []NewViolation        `json:"new_violations_found"`
	ComplianceScore int                   `json:"compliance_score"`
	IsCompliant     *bool                 `json:"is_compliant"`
}

// AnalyzeRequest is the input for a photo analysis call. PhotoURLs holds one
// image, or a before/after pair.
type AnalyzeRequest struct {
	PhotoURLs       []string
	WorkType        string
	Jurisdiction    string
	UserDescription string
}

// RecheckRequest is the input for a follow-up reconciliation call.
type RecheckRequest struct {
	BeforePhotoURL     string
	AfterPhotoURL      string
	Jurisdiction       string
	UserDescription    string
	OriginalViolations []FindingViolation
}

// Client port for the vision inference collaborator. Retry/backoff for these
// calls is the collaborator's responsibility, not the engine's.
type Client interface {
	AnalyzePhoto(ctx context.Context, req AnalyzeRequest) (*Findings, error)
	RecheckPhoto(ctx context.Context, req RecheckRequest) (*Reconciliation, error)
}
