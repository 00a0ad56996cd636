package inference

import "errors"

// ErrParse indicates the inference response did not match the expected shape.
// Surfaced distinctly (502-equivalent) so callers can offer a retry.
var ErrParse = errors.New("inference response parse failed")

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("inference quota exceeded")
