package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/fieldproof/tradecheck/internal/domain/inference"
)

// decodeFindings validates and decodes a raw analysis response. Any shape
// mismatch fails closed with inference.ErrParse; optional fields are never
// read ad hoc off an untyped map.
func decodeFindings(ctx context.Context, raw string) (*inference.Findings, error) {
	data, err := validated(ctx, analysisSchema, raw)
	if err != nil {
		return nil, err
	}
	var f inference.Findings
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding findings: %v: %w", err, inference.ErrParse)
	}
	return &f, nil
}

// decodeReconciliation validates and decodes a raw recheck response.
func decodeReconciliation(ctx context.Context, raw string) (*inference.Reconciliation, error) {
	data, err := validated(ctx, recheckSchema, raw)
	if err != nil {
		return nil, err
	}
	var r inference.Reconciliation
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding reconciliation: %v: %w", err, inference.ErrParse)
	}
	return &r, nil
}

func validated(ctx context.Context, schema *jsonschema.Schema, raw string) ([]byte, error) {
	data := []byte(stripFences(raw))
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response: %w", inference.ErrParse)
	}
	keyErrs, err := schema.ValidateBytes(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("validating response: %v: %w", err, inference.ErrParse)
	}
	if len(keyErrs) > 0 {
		return nil, fmt.Errorf("response failed schema: %s: %w", keyErrs[0].Error(), inference.ErrParse)
	}
	return data, nil
}

// stripFences tolerates a model that ignores the no-fences instruction.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
