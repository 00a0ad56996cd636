package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUserID(t *testing.T) {
	assert.NoError(t, ValidateUserID("user_123"))
	assert.NoError(t, ValidateUserID("a-b-c"))
	assert.Error(t, ValidateUserID(""))
	assert.Error(t, ValidateUserID("user with spaces"))
	assert.Error(t, ValidateUserID(strings.Repeat("a", 65)))
}

func TestValidateWorkType(t *testing.T) {
	assert.NoError(t, ValidateWorkType("Electrical Rough-In"))
	assert.Error(t, ValidateWorkType(""))
	assert.Error(t, ValidateWorkType("   "))
	assert.Error(t, ValidateWorkType(strings.Repeat("x", 129)))
}

func TestValidateAnalysisID(t *testing.T) {
	assert.NoError(t, ValidateAnalysisID("11111111-2222-3333-4444-555555555555-electrical"))
	assert.Error(t, ValidateAnalysisID(""))
	assert.Error(t, ValidateAnalysisID("not-a-uuid"))
	// Bare uuid without the work-type suffix
	assert.Error(t, ValidateAnalysisID("11111111-2222-3333-4444-555555555555"))
}

func TestValidateImageSize(t *testing.T) {
	assert.Error(t, ValidateImageSize(0))
	assert.NoError(t, ValidateImageSize(1024))
	assert.NoError(t, ValidateImageSize(maxImageBytes))
	assert.Error(t, ValidateImageSize(maxImageBytes+1))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("hello\x00"))
	assert.Equal(t, "line1\nline2", SanitizeString("line1\nline2"))
	assert.Equal(t, "ab", SanitizeString("a\x01\x02b"))
	assert.Equal(t, "trimmed", SanitizeString("  trimmed  "))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 20, ValidateLimit(-5))
	assert.Equal(t, 50, ValidateLimit(50))
	assert.Equal(t, 100, ValidateLimit(250))
}
