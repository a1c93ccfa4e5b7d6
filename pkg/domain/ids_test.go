package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "veridoc/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseSubmissionID("")
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseSubmissionID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseReviewerID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, ReviewerID(valid), id)
	})
}

// TestParseID_SecurityInvariants validates trust-boundary parsing rules:
// attack vectors arriving through path parameters must be rejected.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"SQL injection attempt", "'; DROP TABLE submissions;--"},
		{"Path traversal", "../../../etc/passwd"},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000"},
		{"Oversized input", strings.Repeat("a", 1000)},
		{"Unicode zero-width space", "550e8400​-e29b-41d4-a716-446655440000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSubmissionID(tt.input)
			require.Error(t, err)
			assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
		})
	}
}

func TestDocumentType(t *testing.T) {
	t.Run("all enumerated types parse", func(t *testing.T) {
		for _, dt := range DocumentTypes() {
			parsed, err := ParseDocumentType(string(dt))
			require.NoError(t, err)
			assert.Equal(t, dt, parsed)
		}
	})

	t.Run("unknown type is rejected with unsupported code", func(t *testing.T) {
		_, err := ParseDocumentType("residence_permit")
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeUnsupportedDocument))
	})

	t.Run("empty type is rejected", func(t *testing.T) {
		_, err := ParseDocumentType("")
		require.Error(t, err)
	})
}
