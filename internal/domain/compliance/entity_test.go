package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() NewAnalysisParams {
	return NewAnalysisParams{
		UserID:            "u-1",
		WorkType:          "electrical",
		Jurisdiction:      "WA",
		PhotoURL:          "http://store/photo.jpg",
		ComplianceScore:   85,
		OverallAssessment: "Tidy panel work with one open item.",
		Violations: []Violation{
			{Description: "Missing GFCI protection at wet location", CodeSection: "NEC 210.8", Severity: SeverityModerate},
		},
	}
}

func TestNewAnalysisRequiresWorkTypeAndAssessment(t *testing.T) {
	now := time.Now()

	p := validParams()
	p.WorkType = ""
	_, err := NewAnalysis("a-1", now, p)
	require.ErrorIs(t, err, ErrValidation)

	p = validParams()
	p.OverallAssessment = ""
	_, err = NewAnalysis("a-1", now, p)
	require.ErrorIs(t, err, ErrValidation)
}

func TestNewAnalysisClampsScore(t *testing.T) {
	now := time.Now()

	p := validParams()
	p.ComplianceScore = 104
	a, err := NewAnalysis("a-1", now, p)
	require.NoError(t, err)
	assert.Equal(t, 100, a.ComplianceScore)

	p.ComplianceScore = -3
	a, err = NewAnalysis("a-2", now, p)
	require.NoError(t, err)
	assert.Equal(t, 0, a.ComplianceScore)
}

func TestNewAnalysisDerivesCompliance(t *testing.T) {
	now := time.Now()

	// No critical violation: compliant even though violations exist.
	a, err := NewAnalysis("a-1", now, validParams())
	require.NoError(t, err)
	assert.True(t, a.IsCompliant)

	// A critical violation always flips the flag, whatever upstream claimed.
	p := validParams()
	p.Violations = append(p.Violations, Violation{
		Description: "Exposed live conductor", CodeSection: "NEC 110.27", Severity: SeverityCritical,
	})
	a, err = NewAnalysis("a-2", now, p)
	require.NoError(t, err)
	assert.False(t, a.IsCompliant)
}

func TestNewAnalysisValidatesViolations(t *testing.T) {
	now := time.Now()

	p := validParams()
	p.Violations = []Violation{{Description: "", CodeSection: "NEC 210.8", Severity: SeverityMinor}}
	_, err := NewAnalysis("a-1", now, p)
	require.ErrorIs(t, err, ErrValidation)

	p.Violations = []Violation{{Description: "x", CodeSection: "", Severity: SeverityMinor}}
	_, err = NewAnalysis("a-1", now, p)
	require.ErrorIs(t, err, ErrValidation)

	p.Violations = []Violation{{Description: "x", CodeSection: "y", Severity: "catastrophic"}}
	_, err = NewAnalysis("a-1", now, p)
	require.ErrorIs(t, err, ErrValidation)
}

func TestNewAnalysisAssignsViolationIDs(t *testing.T) {
	a, err := NewAnalysis("a-1", time.Now(), validParams())
	require.NoError(t, err)
	for _, v := range a.Violations {
		assert.NotEmpty(t, v.ID)
	}
}

func TestApplyRecheckReplacesPriorRecheck(t *testing.T) {
	a, err := NewAnalysis("a-1", time.Now(), validParams())
	require.NoError(t, err)

	first := &RecheckResult{ComplianceScore: 70, IsCompliant: false}
	a.ApplyRecheck(first, "http://store/fix1.jpg")
	assert.Equal(t, 70, a.FixComplianceScore)
	assert.False(t, a.FixVerified)

	second := &RecheckResult{ComplianceScore: 95, IsCompliant: true}
	a.ApplyRecheck(second, "http://store/fix2.jpg")
	assert.Same(t, second, a.FixAnalysis)
	assert.Equal(t, 95, a.FixComplianceScore)
	assert.Equal(t, "http://store/fix2.jpg", a.FixedPhotoURL)
	assert.True(t, a.FixVerified)
}
