package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func originals() []Violation {
	return []Violation{
		{ID: "v-1", Description: "Missing GFCI protection at wet location", CodeSection: "NEC 210.8", Severity: SeverityModerate},
		{ID: "v-2", Description: "Junction box cover missing", CodeSection: "NEC 314.28", Severity: SeverityMinor},
	}
}

func TestReconcileOmittedEntryDefaultsUnresolved(t *testing.T) {
	// Payload only speaks to the first violation; the second gets no entry
	// and must default to unresolved, not drop off the report.
	p := ReconciliationPayload{
		Entries: []ReconciliationEntry{
			{OriginalDescription: "Missing GFCI protection at wet location", Status: StatusResolved, Notes: "GFCI outlet installed"},
		},
		ComplianceScore: 90,
	}

	res, warnings, err := Reconcile(originals(), p)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, res.OriginalViolationStatus, 2)
	assert.Equal(t, StatusResolved, res.OriginalViolationStatus[0].Status)
	assert.Equal(t, "GFCI outlet installed", res.OriginalViolationStatus[0].Notes)
	assert.Equal(t, StatusUnresolved, res.OriginalViolationStatus[1].Status)

	// One violation unresolved: cannot be compliant without an upstream verdict.
	assert.False(t, res.IsCompliant)
}

func TestReconcilePreservesOriginalOrder(t *testing.T) {
	p := ReconciliationPayload{
		Entries: []ReconciliationEntry{
			{OriginalDescription: "Junction box cover missing", Status: StatusResolved},
			{OriginalDescription: "Missing GFCI protection at wet location", Status: StatusPartiallyResolved},
		},
	}

	res, _, err := Reconcile(originals(), p)
	require.NoError(t, err)
	require.Len(t, res.OriginalViolationStatus, 2)
	assert.Equal(t, "Missing GFCI protection at wet location", res.OriginalViolationStatus[0].Description)
	assert.Equal(t, "Junction box cover missing", res.OriginalViolationStatus[1].Description)
}

func TestReconcileDiscardsUnmatchedEntriesWithWarning(t *testing.T) {
	p := ReconciliationPayload{
		Entries: []ReconciliationEntry{
			{OriginalDescription: "Missing GFCI protection at wet location", Status: StatusResolved},
			{OriginalDescription: "Junction box cover missing", Status: StatusResolved},
			{OriginalDescription: "Some violation nobody reported", Status: StatusResolved},
		},
		IsCompliant: boolPtr(true),
	}

	res, warnings, err := Reconcile(originals(), p)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Some violation nobody reported")
	require.Len(t, res.OriginalViolationStatus, 2)
	assert.True(t, res.IsCompliant)
}

func TestReconcileInvalidStatusFallsBackUnresolved(t *testing.T) {
	p := ReconciliationPayload{
		Entries: []ReconciliationEntry{
			{OriginalDescription: "Junction box cover missing", Status: "fixed-ish"},
		},
	}

	res, _, err := Reconcile(originals(), p)
	require.NoError(t, err)
	assert.Equal(t, StatusUnresolved, res.OriginalViolationStatus[1].Status)
}

func TestReconcileUpstreamVerdictIsAuthoritative(t *testing.T) {
	// Everything resolved and nothing new, but upstream says non-compliant:
	// upstream wins, it saw the photos.
	p := ReconciliationPayload{
		Entries: []ReconciliationEntry{
			{OriginalDescription: "Missing GFCI protection at wet location", Status: StatusResolved},
			{OriginalDescription: "Junction box cover missing", Status: StatusResolved},
		},
		IsCompliant: boolPtr(false),
	}

	res, _, err := Reconcile(originals(), p)
	require.NoError(t, err)
	assert.False(t, res.IsCompliant)
}

func TestReconcileDerivedVerdict(t *testing.T) {
	allResolvedEntries := []ReconciliationEntry{
		{OriginalDescription: "Missing GFCI protection at wet location", Status: StatusResolved},
		{OriginalDescription: "Junction box cover missing", Status: StatusResolved},
	}

	t.Run("all resolved, nothing new", func(t *testing.T) {
		res, _, err := Reconcile(originals(), ReconciliationPayload{Entries: allResolvedEntries})
		require.NoError(t, err)
		assert.True(t, res.IsCompliant)
	})

	t.Run("critical severity on new violation", func(t *testing.T) {
		res, _, err := Reconcile(originals(), ReconciliationPayload{
			Entries:       allResolvedEntries,
			NewViolations: []NewViolation{{Description: "Panel cover removed", Severity: SeverityCritical}},
		})
		require.NoError(t, err)
		assert.False(t, res.IsCompliant)
	})

	t.Run("minor severity on new violation", func(t *testing.T) {
		res, _, err := Reconcile(originals(), ReconciliationPayload{
			Entries:       allResolvedEntries,
			NewViolations: []NewViolation{{Description: "Label missing on breaker", Severity: SeverityMinor}},
		})
		require.NoError(t, err)
		assert.True(t, res.IsCompliant)
	})

	t.Run("keyword heuristic when severity absent", func(t *testing.T) {
		res, _, err := Reconcile(originals(), ReconciliationPayload{
			Entries:       allResolvedEntries,
			NewViolations: []NewViolation{{Description: "Exposed live wiring near sink creates shock hazard"}},
		})
		require.NoError(t, err)
		assert.False(t, res.IsCompliant)
	})

	t.Run("benign new violation without severity", func(t *testing.T) {
		res, _, err := Reconcile(originals(), ReconciliationPayload{
			Entries:       allResolvedEntries,
			NewViolations: []NewViolation{{Description: "Conduit strap slightly loose"}},
		})
		require.NoError(t, err)
		assert.True(t, res.IsCompliant)
	})
}

func TestReconcileNewViolationsPassThroughVerbatim(t *testing.T) {
	p := ReconciliationPayload{
		NewViolations: []NewViolation{
			{Description: "Missing GFCI protection at wet location"},
			{Description: "Scorch marks on receptacle"},
		},
	}

	res, _, err := Reconcile(originals(), p)
	require.NoError(t, err)
	// Repeat of an original description is kept: regression signal, not dedup fodder.
	assert.Equal(t, []string{
		"Missing GFCI protection at wet location",
		"Scorch marks on receptacle",
	}, res.NewViolationsFound)
}

func TestReconcileClampsScore(t *testing.T) {
	res, _, err := Reconcile(nil, ReconciliationPayload{ComplianceScore: 120})
	require.NoError(t, err)
	assert.Equal(t, 100, res.ComplianceScore)
}

func TestReconcileEmptyOriginals(t *testing.T) {
	res, warnings, err := Reconcile(nil, ReconciliationPayload{ComplianceScore: 100})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Empty(t, res.OriginalViolationStatus)
	assert.True(t, res.IsCompliant)
}
