package analyses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldproof/tradecheck/internal/application"
	"github.com/fieldproof/tradecheck/internal/domain/compliance"
	"github.com/fieldproof/tradecheck/internal/domain/inference"
)

// Service implements use-cases untuk Analysis
type Service struct {
	Repo   compliance.Repository
	Photos compliance.PhotoStore
	AI     inference.Client
	Clock  application.Clock
}

//
// ==== USE CASES ====
//

// CreateCommand triggers a photo analysis. Either Image, or the
// BeforeImage/AfterImage pair, must be set.
type CreateCommand struct {
	UserID          string
	Image           []byte
	BeforeImage     []byte
	AfterImage      []byte
	ContentType     string
	WorkType        string
	UserDescription string
	Jurisdiction    string
}

// Create uploads the photo(s), runs the inference call, and persists the
// resulting Analysis. The findings payload is untrusted: the score is clamped
// and the compliance flag re-derived inside the domain constructor.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*compliance.Analysis, error) {
	if cmd.WorkType == "" {
		return nil, fmt.Errorf("work_type is required: %w", compliance.ErrValidation)
	}
	mode := compliance.ModeSingle
	var images [][]byte
	switch {
	case len(cmd.Image) > 0:
		images = [][]byte{cmd.Image}
	case len(cmd.BeforeImage) > 0 && len(cmd.AfterImage) > 0:
		mode = compliance.ModeBeforeAfter
		images = [][]byte{cmd.BeforeImage, cmd.AfterImage}
	default:
		return nil, fmt.Errorf("image or beforeImage/afterImage pair is required: %w", compliance.ErrValidation)
	}

	now := s.Clock.Now()
	id := compliance.AnalysisID(fmt.Sprintf("%s-%s", uuid.New().String(), slug(cmd.WorkType)))

	urls := make([]string, 0, len(images))
	for i, img := range images {
		key := fmt.Sprintf("%s/%s/photo-%d%s", cmd.UserID, id, i, extFor(cmd.ContentType))
		url, err := s.Photos.PutPhoto(ctx, key, img, cmd.ContentType)
		if err != nil {
			return nil, fmt.Errorf("uploading photo: %w", err)
		}
		urls = append(urls, url)
	}

	findings, err := s.AI.AnalyzePhoto(ctx, inference.AnalyzeRequest{
		PhotoURLs:       urls,
		WorkType:        cmd.WorkType,
		Jurisdiction:    cmd.Jurisdiction,
		UserDescription: cmd.UserDescription,
	})
	if err != nil {
		return nil, err
	}

	a, err := compliance.NewAnalysis(id, now, compliance.NewAnalysisParams{
		UserID:             cmd.UserID,
		Jurisdiction:       cmd.Jurisdiction,
		WorkType:           cmd.WorkType,
		Mode:               mode,
		PhotoURL:           urls[0],
		Violations:         mapViolations(findings.Violations),
		CorrectItems:       findings.CorrectItems,
		SkillsDemonstrated: mapSkills(findings.Skills),
		ComplianceScore:    findings.ComplianceScore,
		OverallAssessment:  findings.OverallAssessment,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("saving analysis: %w", err)
	}
	return a, nil
}

// RecheckCommand reconciles remediation against an original violation list.
// When AnalysisID is set the stored analysis supplies the originals and the
// outcome is merged back into it; otherwise OriginalViolations must be
// supplied and the result stands alone.
type RecheckCommand struct {
	UserID             string
	AnalysisID         compliance.AnalysisID
	OriginalViolations []compliance.Violation
	OriginalImage      []byte
	FixedImage         []byte
	ContentType        string
	Jurisdiction       string
	UserDescription    string
}

// RecheckOutcome carries the reconciliation plus the merged analysis (nil for
// a standalone recheck) and any discarded-entry warnings for the boundary
// layer to log.
type RecheckOutcome struct {
	ID        compliance.AnalysisID     `json:"id"`
	CreatedAt time.Time                 `json:"timestamp"`
	Result    *compliance.RecheckResult `json:"result"`
	Analysis  *compliance.Analysis      `json:"analysis,omitempty"`
	Warnings  []string                  `json:"-"`
}

// Recheck uploads the fixed photo, runs the recheck inference call, and
// reconciles the payload against the original violations.
func (s *Service) Recheck(ctx context.Context, cmd RecheckCommand) (*RecheckOutcome, error) {
	if len(cmd.FixedImage) == 0 {
		return nil, fmt.Errorf("fixedImage is required: %w", compliance.ErrValidation)
	}

	var parent *compliance.Analysis
	originals := cmd.OriginalViolations
	beforeURL := ""
	jurisdiction := cmd.Jurisdiction

	if cmd.AnalysisID != "" {
		a, err := s.Repo.Get(ctx, cmd.UserID, cmd.AnalysisID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, fmt.Errorf("analysis %s: %w", cmd.AnalysisID, compliance.ErrNotFound)
		}
		parent = a
		originals = a.Violations
		beforeURL = a.PhotoURL
		if jurisdiction == "" {
			jurisdiction = a.Jurisdiction
		}
	}
	if len(originals) == 0 {
		return nil, fmt.Errorf("originalViolations must be non-empty: %w", compliance.ErrValidation)
	}

	now := s.Clock.Now()
	recheckID := cmd.AnalysisID
	if recheckID == "" {
		recheckID = compliance.AnalysisID(fmt.Sprintf("%s-recheck", uuid.New().String()))
	}

	if beforeURL == "" && len(cmd.OriginalImage) > 0 {
		key := fmt.Sprintf("%s/%s/photo-original%s", cmd.UserID, recheckID, extFor(cmd.ContentType))
		url, err := s.Photos.PutPhoto(ctx, key, cmd.OriginalImage, cmd.ContentType)
		if err != nil {
			return nil, fmt.Errorf("uploading original photo: %w", err)
		}
		beforeURL = url
	}

	fixedKey := fmt.Sprintf("%s/%s/photo-fixed%s", cmd.UserID, recheckID, extFor(cmd.ContentType))
	fixedURL, err := s.Photos.PutPhoto(ctx, fixedKey, cmd.FixedImage, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("uploading fixed photo: %w", err)
	}

	payload, err := s.AI.RecheckPhoto(ctx, inference.RecheckRequest{
		BeforePhotoURL:     beforeURL,
		AfterPhotoURL:      fixedURL,
		Jurisdiction:       jurisdiction,
		UserDescription:    cmd.UserDescription,
		OriginalViolations: violationsForPrompt(originals),
	})
	if err != nil {
		return nil, err
	}

	result, warnings, err := compliance.Reconcile(originals, mapReconciliation(payload))
	if err != nil {
		return nil, err
	}

	out := &RecheckOutcome{
		ID:        recheckID,
		CreatedAt: now.UTC(),
		Result:    result,
		Warnings:  warnings,
	}

	if parent != nil {
		parent.ApplyRecheck(result, fixedURL)
		if err := s.Repo.SaveRecheck(ctx, cmd.UserID, parent.ID, fixedURL, result); err != nil {
			return nil, fmt.Errorf("saving recheck: %w", err)
		}
		out.Analysis = parent
	}
	return out, nil
}

// Get ambil 1 analysis by id
func (s *Service) Get(ctx context.Context, userID string, id compliance.AnalysisID) (*compliance.Analysis, error) {
	a, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("analysis %s: %w", id, compliance.ErrNotFound)
	}
	return a, nil
}

// Latest ambil N analysis terakhir
func (s *Service) Latest(ctx context.Context, userID string, limit int) ([]*compliance.Analysis, error) {
	return s.Repo.Latest(ctx, userID, limit)
}

//
// ==== helpers ====
//

func mapViolations(in []inference.FindingViolation) []compliance.Violation {
	out := make([]compliance.Violation, len(in))
	for i, v := range in {
		out[i] = compliance.Violation{
			Description:    v.Description,
			CodeSection:    v.CodeSection,
			Severity:       compliance.Severity(strings.ToLower(v.Severity)),
			FixInstruction: v.FixInstruction,
		}
	}
	return out
}

func mapSkills(in []inference.FindingSkill) []compliance.SkillDemonstrated {
	out := make([]compliance.SkillDemonstrated, len(in))
	for i, s := range in {
		out[i] = compliance.SkillDemonstrated{Skill: s.Skill, Evidence: s.Evidence}
	}
	return out
}

func violationsForPrompt(in []compliance.Violation) []inference.FindingViolation {
	out := make([]inference.FindingViolation, len(in))
	for i, v := range in {
		out[i] = inference.FindingViolation{
			Description:    v.Description,
			CodeSection:    v.CodeSection,
			Severity:       string(v.Severity),
			FixInstruction: v.FixInstruction,
		}
	}
	return out
}

func mapReconciliation(p *inference.Reconciliation) compliance.ReconciliationPayload {
	entries := make([]compliance.ReconciliationEntry, len(p.Entries))
	for i, e := range p.Entries {
		entries[i] = compliance.ReconciliationEntry{
			OriginalDescription: e.OriginalDescription,
			Status:              compliance.ResolutionStatus(strings.ToLower(e.Status)),
			Notes:               e.Notes,
		}
	}
	newViolations := make([]compliance.NewViolation, len(p.NewViolations))
	for i, nv := range p.NewViolations {
		newViolations[i] = compliance.NewViolation{
			Description: nv.Description,
			Severity:    compliance.Severity(strings.ToLower(nv.Severity)),
		}
	}
	return compliance.ReconciliationPayload{
		Entries:         entries,
		NewViolations:   newViolations,
		ComplianceScore: p.ComplianceScore,
		IsCompliant:     p.IsCompliant,
	}
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	var b strings.Builder
	for _, r := range s {
		if r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "work"
	}
	return b.String()
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
