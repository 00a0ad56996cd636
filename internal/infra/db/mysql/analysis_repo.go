package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/fieldproof/tradecheck/internal/domain/compliance"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const analysisColumns = `id, user_id, created_at, jurisdiction, work_type, mode, photo_url,
       violations_json, correct_items_json, skills_json,
       compliance_score, is_compliant, overall_assessment,
       fixed_photo_url, fix_verified, fix_compliance_score, fix_analysis_json`

// Save insert/update Analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO compliance_analyses
(id, user_id, created_at, jurisdiction, work_type, mode, photo_url,
 violations_json, correct_items_json, skills_json,
 compliance_score, is_compliant, overall_assessment,
 fixed_photo_url, fix_verified, fix_compliance_score, fix_analysis_json)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 compliance_score=VALUES(compliance_score), is_compliant=VALUES(is_compliant),
 overall_assessment=VALUES(overall_assessment),
 fixed_photo_url=VALUES(fixed_photo_url), fix_verified=VALUES(fix_verified),
 fix_compliance_score=VALUES(fix_compliance_score), fix_analysis_json=VALUES(fix_analysis_json);
`
	violations, err := jsonOrEmpty(a.Violations)
	if err != nil {
		return fmt.Errorf("marshaling violations: %w", err)
	}
	correct, err := jsonOrEmpty(a.CorrectItems)
	if err != nil {
		return fmt.Errorf("marshaling correct items: %w", err)
	}
	skills, err := jsonOrEmpty(a.SkillsDemonstrated)
	if err != nil {
		return fmt.Errorf("marshaling skills: %w", err)
	}
	var fixAnalysis sql.NullString
	if a.FixAnalysis != nil {
		b, err := json.Marshal(a.FixAnalysis)
		if err != nil {
			return fmt.Errorf("marshaling recheck: %w", err)
		}
		fixAnalysis = sql.NullString{String: string(b), Valid: true}
	}

	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q,
		a.ID, stringOrDash(a.UserID), created, a.Jurisdiction, stringOrDash(a.WorkType), a.Mode, a.PhotoURL,
		violations, correct, skills,
		a.ComplianceScore, a.IsCompliant, a.OverallAssessment,
		a.FixedPhotoURL, a.FixVerified, a.FixComplianceScore, fixAnalysis,
	)
	return err
}

// Get by ID + user
func (r *AnalysisRepository) Get(ctx context.Context, userID string, id domain.AnalysisID) (*domain.Analysis, error) {
	q := `
SELECT ` + analysisColumns + `
FROM compliance_analyses
WHERE user_id=? AND id=? LIMIT 1;
`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// Latest analyses per user
func (r *AnalysisRepository) Latest(ctx context.Context, userID string, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `
SELECT ` + analysisColumns + `
FROM compliance_analyses
WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?;
`
	return r.queryAnalyses(ctx, q, userID, limit)
}

// History returns the full record for one user, newest first. Read wholesale:
// the aggregator recomputes over it and history sizes stay small.
func (r *AnalysisRepository) History(ctx context.Context, userID string) ([]*domain.Analysis, error) {
	q := `
SELECT ` + analysisColumns + `
FROM compliance_analyses
WHERE user_id=? ORDER BY created_at DESC, id DESC;
`
	return r.queryAnalyses(ctx, q, userID)
}

// SaveRecheck writes the replacement recheck fields in a single statement so
// the merge is atomic with respect to concurrent reads of the same row.
func (r *AnalysisRepository) SaveRecheck(ctx context.Context, userID string, id domain.AnalysisID, fixedPhotoURL string, rr *domain.RecheckResult) error {
	const q = `
UPDATE compliance_analyses
SET fixed_photo_url = ?,
    fix_verified = ?,
    fix_compliance_score = ?,
    fix_analysis_json = ?
WHERE user_id = ? AND id = ?;`
	b, err := json.Marshal(rr)
	if err != nil {
		return fmt.Errorf("marshaling recheck: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, fixedPhotoURL, rr.IsCompliant, rr.ComplianceScore, string(b), userID, id)
	return err
}

func (r *AnalysisRepository) queryAnalyses(ctx context.Context, q string, args ...any) ([]*domain.Analysis, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var violations, correct, skills string
	var fixAnalysis sql.NullString
	if err := row.Scan(
		&a.ID, &a.UserID, &a.CreatedAt, &a.Jurisdiction, &a.WorkType, &a.Mode, &a.PhotoURL,
		&violations, &correct, &skills,
		&a.ComplianceScore, &a.IsCompliant, &a.OverallAssessment,
		&a.FixedPhotoURL, &a.FixVerified, &a.FixComplianceScore, &fixAnalysis,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(violations), &a.Violations); err != nil {
		return nil, fmt.Errorf("unmarshaling violations for %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(correct), &a.CorrectItems); err != nil {
		return nil, fmt.Errorf("unmarshaling correct items for %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(skills), &a.SkillsDemonstrated); err != nil {
		return nil, fmt.Errorf("unmarshaling skills for %s: %w", a.ID, err)
	}
	if fixAnalysis.Valid && fixAnalysis.String != "" {
		a.FixAnalysis = &domain.RecheckResult{}
		if err := json.Unmarshal([]byte(fixAnalysis.String), a.FixAnalysis); err != nil {
			return nil, fmt.Errorf("unmarshaling recheck for %s: %w", a.ID, err)
		}
	}
	return &a, nil
}
