package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fieldproof/tradecheck/internal/domain/inference"
)

// RecheckSystemPrompt directs the reconciliation of an original violation
// list against a follow-up photo.
func RecheckSystemPrompt() string {
	return `You are a senior building-code compliance inspector verifying remediation work from before/after photographs. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- original_violation_status must contain exactly one entry for every violation in the provided original list, with original_description copied verbatim from that list. Do not paraphrase, reorder, merge, or drop entries.
- Use lowercase status values: resolved, unresolved, partially_resolved.
- new_violations_found lists issues visible in the after photo that were absent from the original list; attach a severity (minor, moderate, critical) to each.
- compliance_score is a fresh 0-100 integer for the after photo, independent of any earlier score.
- is_compliant is true only if every original violation is resolved and no new critical issue is visible.

Schema (example with empty values):
{
  "original_violation_status": [
    {"original_description": "<string>", "status": "<resolved|unresolved|partially_resolved>", "notes": "<string>"}
  ],
  "new_violations_found": [
    {"description": "<string>", "severity": "<minor|moderate|critical>"}
  ],
  "compliance_score": 0,
  "is_compliant": false
}`
}

// RecheckUserPrompt builds the user message carrying the original violation
// list as JSON so descriptions round-trip exactly.
func RecheckUserPrompt(originals []inference.FindingViolation, jurisdiction, userDescription string) string {
	var b strings.Builder
	b.WriteString("Compare the before and after photos and reconcile each original violation. ")
	if jurisdiction != "" {
		fmt.Fprintf(&b, "Jurisdiction: %s. ", jurisdiction)
	}
	if userDescription != "" {
		fmt.Fprintf(&b, "Tradesperson's notes: %s ", userDescription)
	}
	b.WriteString("Original violations: ")
	// Marshal cannot fail for this shape; fall back to an empty list anyway.
	data, err := json.Marshal(originals)
	if err != nil {
		data = []byte("[]")
	}
	b.Write(data)
	b.WriteString(" Respond with the JSON per schema.")
	return b.String()
}
