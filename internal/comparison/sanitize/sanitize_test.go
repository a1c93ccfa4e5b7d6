package sanitize

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"veridoc/pkg/domain"
	derrors "veridoc/pkg/domain-errors"
)

// =============================================================================
// Sanitizer Suite
// =============================================================================
// Justification for unit tests: sanitizers are pure functions carrying the
// per-document-type normalization rules; their idempotence is an invariant the
// comparison engine relies on (each map is sanitized once per comparison, but
// retries must not change the outcome).

type SanitizeSuite struct {
	suite.Suite
	registry *Registry
}

func TestSanitizeSuite(t *testing.T) {
	suite.Run(t, new(SanitizeSuite))
}

func (s *SanitizeSuite) SetupSuite() {
	s.registry = DefaultRegistry()
}

// sampleInputs returns representative raw extracted and submitted maps for a
// document type, deliberately noisy: mixed case, stray whitespace, separator
// characters and locale date formats.
func sampleInputs(dt domain.DocumentType) (ocr, submitted map[string]string) {
	switch dt {
	case domain.DocumentTypeNationalID:
		return map[string]string{
				"name":            "  JANE   DOE ",
				"document_number": "ID-123 456-789",
				"dob":             "15/05/1990",
				"address":         "12 Rose Street  Springfield",
				"country":         "Freedonia",
			}, map[string]string{
				"full_name":         "Jane Doe",
				"id_number":         "id123456789",
				"date_of_birth":     "1990-05-15",
				"address_line1":     "12 Rose Street",
				"city":              "Springfield",
				"issuing_country":   "freedonia",
				"residence_country": "freedonia",
			}
	case domain.DocumentTypePassport:
		return map[string]string{
				"surname_and_given_names": "DOE  JANE",
				"passport_number":         "PA 9876543",
				"dob":                     "1990-05-15",
				"nationality":             "Freedonian",
				"date_of_issue":           "02.01.2020",
				"date_of_expiry":          "02.01.2030",
				"country_code":            "FRD",
			}, map[string]string{
				"full_name":       "Doe Jane",
				"id_number":       "PA9876543",
				"date_of_birth":   "15-05-1990",
				"nationality":     "freedonian",
				"issue_date":      "2020-01-02",
				"expiry_date":     "2030-01-02",
				"issuing_country": "frd",
			}
	case domain.DocumentTypeTaxID:
		return map[string]string{
				"taxpayer_name": "Jane Doe",
				"tin":           "99-888-777",
				"dob":           "19900515",
				"country":       "Freedonia",
			}, map[string]string{
				"full_name":         "jane doe",
				"id_number":         "99888777",
				"date_of_birth":     "1990-05-15",
				"residence_country": "Freedonia",
			}
	case domain.DocumentTypeDrivingLicense:
		return map[string]string{
				"driver_name":    "Jane Doe",
				"license_number": "DL.55.443",
				"dob":            "15/05/1990",
				"issued":         "01/02/2019",
				"expires":        "01/02/2029",
				"issuing_state":  "West Province",
				"address":        "12 rose street springfield",
			}, map[string]string{
				"full_name":     "Jane Doe",
				"id_number":     "dl55443",
				"date_of_birth": "1990-05-15",
				"issue_date":    "2019-02-01",
				"expiry_date":   "2029-02-01",
				"state":         "west province",
				"address_line1": "12 Rose Street",
				"city":          "Springfield",
			}
	case domain.DocumentTypeVoterID:
		return map[string]string{
				"elector_name": "JANE DOE",
				"epic_number":  "VT/00123",
				"dob":          "15.05.1990",
				"town":         "Springfield",
				"state":        "West Province",
			}, map[string]string{
				"full_name":     "jane doe",
				"id_number":     "VT00123",
				"date_of_birth": "1990-05-15",
				"city":          "springfield",
				"state":         "West  Province",
			}
	}
	return nil, nil
}

// =============================================================================
// Idempotence (applies to every registered type)
// =============================================================================

func (s *SanitizeSuite) TestSanitizeIsIdempotent() {
	for _, dt := range domain.DocumentTypes() {
		s.Run(string(dt), func() {
			sanitizer, err := s.registry.For(dt)
			s.Require().NoError(err)

			ocr, submitted := sampleInputs(dt)

			onceOCR := sanitizer.SanitizeExtracted(ocr)
			s.Equal(onceOCR, sanitizer.SanitizeExtracted(onceOCR))

			onceSub := sanitizer.SanitizeSubmitted(submitted)
			s.Equal(onceSub, sanitizer.SanitizeSubmitted(onceSub))
		})
	}
}

func (s *SanitizeSuite) TestOutputCoversExactlyComparableFields() {
	for _, dt := range domain.DocumentTypes() {
		s.Run(string(dt), func() {
			sanitizer, err := s.registry.For(dt)
			s.Require().NoError(err)

			ocr, submitted := sampleInputs(dt)
			for _, out := range []map[string]string{
				sanitizer.SanitizeExtracted(ocr),
				sanitizer.SanitizeSubmitted(submitted),
			} {
				s.Len(out, len(sanitizer.Fields()))
				for _, f := range sanitizer.Fields() {
					s.Contains(out, f)
				}
			}
		})
	}
}

// =============================================================================
// Normalization rules
// =============================================================================

func (s *SanitizeSuite) TestNationalIDNormalization() {
	sanitizer, err := s.registry.For(domain.DocumentTypeNationalID)
	s.Require().NoError(err)

	ocr, submitted := sampleInputs(domain.DocumentTypeNationalID)
	gotOCR := sanitizer.SanitizeExtracted(ocr)
	gotSub := sanitizer.SanitizeSubmitted(submitted)

	s.Equal("jane doe", gotOCR[FieldFullName])
	s.Equal("id123456789", gotOCR[FieldIDNumber], "separators stripped from identifier")
	s.Equal("1990-05-15", gotOCR[FieldDateOfBirth], "locale date normalized")
	s.Equal(gotSub[FieldIDNumber], gotOCR[FieldIDNumber])
	s.Equal(gotSub[FieldDateOfBirth], gotOCR[FieldDateOfBirth])
	s.Equal("12 rose street springfield", gotSub[FieldAddress],
		"structured lines joined to the OCR granularity")
}

func (s *SanitizeSuite) TestUnparseableDateStaysVisible() {
	sanitizer, err := s.registry.For(domain.DocumentTypePassport)
	s.Require().NoError(err)

	got := sanitizer.SanitizeExtracted(map[string]string{"dob": "unknown  VALUE"})
	s.Equal("unknown value", got[FieldDateOfBirth])
}

// =============================================================================
// Registry
// =============================================================================

func (s *SanitizeSuite) TestRegistryRejectsUnknownType() {
	_, err := s.registry.For(domain.DocumentType("residence_permit"))
	s.Error(err)
	s.True(derrors.HasCode(err, derrors.CodeUnsupportedDocument))
}

func (s *SanitizeSuite) TestRegistryIsClosedOverFiveTypes() {
	s.Len(s.registry.Types(), 5)
}

func (s *SanitizeSuite) TestNewRegistryRejectsDuplicates() {
	_, err := NewRegistry(Passport{}, Passport{})
	s.Error(err)
	s.Contains(err.Error(), "duplicate sanitizer")
}
