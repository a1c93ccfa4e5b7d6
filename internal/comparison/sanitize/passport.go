package sanitize

import "veridoc/pkg/domain"

// Passport normalizes machine-readable passport fields. Passports carry no
// address; nationality and the issue/expiry window are the locale-sensitive
// parts.
type Passport struct{}

func (Passport) Type() domain.DocumentType { return domain.DocumentTypePassport }

func (Passport) Fields() []string {
	return []string{
		FieldFullName,
		FieldIDNumber,
		FieldNationality,
		FieldDateOfBirth,
		FieldIssueDate,
		FieldExpiryDate,
		FieldIssuingCountry,
	}
}

func (Passport) SanitizeExtracted(raw map[string]string) map[string]string {
	return map[string]string{
		FieldFullName:       normText(pick(raw, FieldFullName, "name", "surname_and_given_names")),
		FieldIDNumber:       normIdentifier(pick(raw, FieldIDNumber, "passport_number", "document_number")),
		FieldNationality:    normText(pick(raw, FieldNationality)),
		FieldDateOfBirth:    normDate(pick(raw, FieldDateOfBirth, "dob", "birth_date")),
		FieldIssueDate:      normDate(pick(raw, FieldIssueDate, "date_of_issue")),
		FieldExpiryDate:     normDate(pick(raw, FieldExpiryDate, "date_of_expiry", "expiration_date")),
		FieldIssuingCountry: normText(pick(raw, FieldIssuingCountry, "country_code", "country")),
	}
}

func (Passport) SanitizeSubmitted(raw map[string]string) map[string]string {
	return map[string]string{
		FieldFullName:       normText(raw[FieldFullName]),
		FieldIDNumber:       normIdentifier(raw[FieldIDNumber]),
		FieldNationality:    normText(raw[FieldNationality]),
		FieldDateOfBirth:    normDate(raw[FieldDateOfBirth]),
		FieldIssueDate:      normDate(raw[FieldIssueDate]),
		FieldExpiryDate:     normDate(raw[FieldExpiryDate]),
		FieldIssuingCountry: normText(raw[FieldIssuingCountry]),
	}
}
