package sanitize

import "veridoc/pkg/domain"

// TaxID normalizes tax identification card fields.
type TaxID struct{}

func (TaxID) Type() domain.DocumentType { return domain.DocumentTypeTaxID }

func (TaxID) Fields() []string {
	return []string{
		FieldFullName,
		FieldIDNumber,
		FieldDateOfBirth,
		FieldResidence,
	}
}

func (TaxID) SanitizeExtracted(raw map[string]string) map[string]string {
	return map[string]string{
		FieldFullName:    normText(pick(raw, FieldFullName, "name", "taxpayer_name")),
		FieldIDNumber:    normIdentifier(pick(raw, FieldIDNumber, "tax_id", "tin", "tax_number")),
		FieldDateOfBirth: normDate(pick(raw, FieldDateOfBirth, "dob")),
		FieldResidence:   normText(pick(raw, FieldResidence, "country_of_residence", "country")),
	}
}

func (TaxID) SanitizeSubmitted(raw map[string]string) map[string]string {
	return map[string]string{
		FieldFullName:    normText(raw[FieldFullName]),
		FieldIDNumber:    normIdentifier(raw[FieldIDNumber]),
		FieldDateOfBirth: normDate(raw[FieldDateOfBirth]),
		FieldResidence:   normText(raw[FieldResidence]),
	}
}
