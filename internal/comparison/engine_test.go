package comparison

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"veridoc/internal/comparison/sanitize"
	"veridoc/pkg/domain"
	derrors "veridoc/pkg/domain-errors"
)

// =============================================================================
// Comparison Engine Suite
// =============================================================================
// Justification for unit tests: the engine carries the match-aggregation
// invariants (single-field veto, mismatch-only diagnostics, empty-string
// semantics for missing OCR fields) that the moderation pipeline depends on.

type EngineSuite struct {
	suite.Suite
	ctx    context.Context
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupSuite() {
	s.ctx = context.Background()

	engine, err := NewEngine(
		sanitize.DefaultRegistry(),
		NewComparator(DefaultMatchThreshold),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
	s.engine = engine
}

func nationalIDInputs() (ocr, submitted map[string]string) {
	return map[string]string{
			"full_name":       "JANE DOE",
			"id_number":       "ID-123-456-789",
			"date_of_birth":   "15/05/1990",
			"address":         "12 Rose Street Springfield",
			"issuing_country": "Freedonia",
		}, map[string]string{
			"full_name":       "jane doe",
			"id_number":       "id123456789",
			"date_of_birth":   "1990-05-15",
			"address_line1":   "12 Rose Street",
			"city":            "Springfield",
			"issuing_country": "freedonia",
		}
}

func (s *EngineSuite) TestNew() {
	s.Run("nil registry returns error", func() {
		_, err := NewEngine(nil, NewComparator(DefaultMatchThreshold))
		s.Error(err)
	})

	s.Run("nil comparator returns error", func() {
		_, err := NewEngine(sanitize.DefaultRegistry(), nil)
		s.Error(err)
	})
}

func (s *EngineSuite) TestFullMatch() {
	ocr, submitted := nationalIDInputs()

	result, err := s.engine.CompareDocument(s.ctx, domain.DocumentTypeNationalID, ocr, submitted)
	s.Require().NoError(err)

	s.True(result.IsMatch)
	s.Empty(result.Mismatches)
	s.Len(result.Fields, 5)
	for _, f := range result.Fields {
		s.True(f.Match, "field %s expected to match", f.Field)
	}
}

func (s *EngineSuite) TestSingleFieldMismatchFailsDocument() {
	ocr, submitted := nationalIDInputs()
	submitted["id_number"] = "id999999999"

	result, err := s.engine.CompareDocument(s.ctx, domain.DocumentTypeNationalID, ocr, submitted)
	s.Require().NoError(err)

	s.False(result.IsMatch, "one mismatching field fails the whole document")
	s.Len(result.Mismatches, 1)

	mismatch, ok := result.Mismatches[sanitize.FieldIDNumber]
	s.Require().True(ok)
	s.Equal("id123456789", mismatch.OCRValue)
	s.Equal("id999999999", mismatch.SubmittedValue)
	s.NotEmpty(mismatch.Reason)
}

func (s *EngineSuite) TestMatchingFieldsOmittedFromMismatches() {
	ocr, submitted := nationalIDInputs()
	submitted["full_name"] = "completely different person"

	result, err := s.engine.CompareDocument(s.ctx, domain.DocumentTypeNationalID, ocr, submitted)
	s.Require().NoError(err)

	s.False(result.IsMatch)
	s.Contains(result.Mismatches, sanitize.FieldFullName)
	s.NotContains(result.Mismatches, sanitize.FieldIDNumber)
	s.NotContains(result.Mismatches, sanitize.FieldDateOfBirth)
}

func (s *EngineSuite) TestNoiseToleranceWithinThreshold() {
	ocr, submitted := nationalIDInputs()
	// Single-character OCR misread in the name.
	ocr["full_name"] = "JANE D0E"

	result, err := s.engine.CompareDocument(s.ctx, domain.DocumentTypeNationalID, ocr, submitted)
	s.Require().NoError(err)

	s.True(result.IsMatch, "a one-character misread stays within the similarity threshold")
}

func (s *EngineSuite) TestMissingOCRFieldSurfacesAsMismatch() {
	ocr, submitted := nationalIDInputs()
	delete(ocr, "id_number")

	result, err := s.engine.CompareDocument(s.ctx, domain.DocumentTypeNationalID, ocr, submitted)
	s.Require().NoError(err)

	s.False(result.IsMatch, "an unextracted mandatory field must not silently pass")
	mismatch, ok := result.Mismatches[sanitize.FieldIDNumber]
	s.Require().True(ok)
	s.Equal("", mismatch.OCRValue)
	s.Equal("field not extracted from document", mismatch.Reason)
}

func (s *EngineSuite) TestUnsupportedDocumentType() {
	ocr, submitted := nationalIDInputs()

	_, err := s.engine.CompareDocument(s.ctx, domain.DocumentType("residence_permit"), ocr, submitted)
	s.Require().Error(err)
	s.True(derrors.HasCode(err, derrors.CodeUnsupportedDocument))
}

func (s *EngineSuite) TestPassportComparison() {
	ocr := map[string]string{
		"surname_and_given_names": "DOE JANE",
		"passport_number":         "PA 9876543",
		"nationality":             "Freedonian",
		"dob":                     "15.05.1990",
		"date_of_issue":           "02.01.2020",
		"date_of_expiry":          "02.01.2030",
		"country_code":            "FRD",
	}
	submitted := map[string]string{
		"full_name":       "Doe Jane",
		"id_number":       "PA9876543",
		"nationality":     "freedonian",
		"date_of_birth":   "1990-05-15",
		"issue_date":      "2020-01-02",
		"expiry_date":     "2030-01-02",
		"issuing_country": "frd",
	}

	result, err := s.engine.CompareDocument(s.ctx, domain.DocumentTypePassport, ocr, submitted)
	s.Require().NoError(err)
	s.True(result.IsMatch)
	s.Len(result.Fields, 7)
}
