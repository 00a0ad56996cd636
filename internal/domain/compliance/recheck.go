package compliance

import (
	"fmt"
	"strings"
)

// ResolutionStatus enum
type ResolutionStatus string

const (
	StatusResolved          ResolutionStatus = "resolved"
	StatusUnresolved        ResolutionStatus = "unresolved"
	StatusPartiallyResolved ResolutionStatus = "partially_resolved"
)

// Valid reports whether s is one of the closed enum values.
func (s ResolutionStatus) Valid() bool {
	switch s {
	case StatusResolved, StatusUnresolved, StatusPartiallyResolved:
		return true
	}
	return false
}

// ViolationStatus is the reconciled outcome for one original violation.
// Description is copied from the original violation and is the join key.
type ViolationStatus struct {
	Description string           `json:"description"`
	Status      ResolutionStatus `json:"status"`
	Notes       string           `json:"notes,omitempty"`
}

// RecheckResult is the outcome of reconciling an original analysis against a
// follow-up photo. OriginalViolationStatus is total: exactly one entry per
// original violation, in the same order.
type RecheckResult struct {
	OriginalViolationStatus []ViolationStatus `json:"original_violation_status"`
	NewViolationsFound      []string          `json:"new_violations_found"`
	ComplianceScore         int               `json:"compliance_score"`
	IsCompliant             bool              `json:"is_compliant"`
}

// ReconciliationEntry is the upstream verdict for one original violation,
// keyed by the original description text.
type ReconciliationEntry struct {
	OriginalDescription string
	Status              ResolutionStatus
	Notes               string
}

// NewViolation is an issue found in the follow-up photo that was absent from
// the original list. Severity may be empty when upstream omits it.
type NewViolation struct {
	Description string
	Severity    Severity
}

// ReconciliationPayload is the raw reconciliation supplied by the inference
// collaborator for the follow-up photo.
type ReconciliationPayload struct {
	Entries         []ReconciliationEntry
	NewViolations   []NewViolation
	ComplianceScore int
	// IsCompliant is the upstream verdict. When present it is authoritative;
	// when nil the engine derives the verdict itself.
	IsCompliant *bool
}

// criticalLanguage flags new-violation text that reads like a critical find
// when upstream did not attach a severity.
var criticalLanguage = []string{
	"critical",
	"immediate",
	"hazard",
	"danger",
	"shock",
	"fire",
	"exposed live",
	"collapse",
}

// Reconcile joins the original violation list against an upstream
// reconciliation payload and produces the recheck outcome.
//
// Join is by exact description match. An original violation with no matching
// entry defaults to unresolved (absence of evidence is not evidence of
// resolution). Payload entries that match no original violation are discarded
// and reported back as warnings; they indicate a prompt-contract mismatch
// upstream. New violations pass through verbatim, without dedup against the
// original list: a repeat of resolved text is a regression signal.
func Reconcile(original []Violation, p ReconciliationPayload) (*RecheckResult, []string, error) {
	byDescription := make(map[string]ReconciliationEntry, len(p.Entries))
	matched := make(map[string]bool, len(p.Entries))
	for _, e := range p.Entries {
		byDescription[e.OriginalDescription] = e
	}

	statuses := make([]ViolationStatus, 0, len(original))
	for _, v := range original {
		st := ViolationStatus{Description: v.Description, Status: StatusUnresolved}
		if e, ok := byDescription[v.Description]; ok {
			matched[v.Description] = true
			if e.Status.Valid() {
				st.Status = e.Status
			}
			st.Notes = e.Notes
		}
		statuses = append(statuses, st)
	}

	var warnings []string
	for _, e := range p.Entries {
		if !matched[e.OriginalDescription] {
			warnings = append(warnings, fmt.Sprintf("discarding reconciliation entry with no matching violation: %q", e.OriginalDescription))
		}
	}

	if len(statuses) != len(original) {
		return nil, warnings, fmt.Errorf("got %d statuses for %d violations: %w",
			len(statuses), len(original), ErrReconciliationMismatch)
	}

	newFound := make([]string, 0, len(p.NewViolations))
	for _, nv := range p.NewViolations {
		newFound = append(newFound, nv.Description)
	}

	compliant := false
	if p.IsCompliant != nil {
		// Upstream saw both photos; its verdict is the richer judgment.
		compliant = *p.IsCompliant
	} else {
		compliant = allResolved(statuses) && !anyCriticalNew(p.NewViolations)
	}

	return &RecheckResult{
		OriginalViolationStatus: statuses,
		NewViolationsFound:      newFound,
		ComplianceScore:         ClampScore(p.ComplianceScore),
		IsCompliant:             compliant,
	}, warnings, nil
}

func allResolved(statuses []ViolationStatus) bool {
	for _, s := range statuses {
		if s.Status != StatusResolved {
			return false
		}
	}
	return true
}

func anyCriticalNew(found []NewViolation) bool {
	for _, nv := range found {
		if nv.Severity == SeverityCritical {
			return true
		}
		if nv.Severity != "" {
			continue
		}
		lower := strings.ToLower(nv.Description)
		for _, kw := range criticalLanguage {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
