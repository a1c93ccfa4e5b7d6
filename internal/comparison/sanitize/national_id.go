package sanitize

import "veridoc/pkg/domain"

// NationalID normalizes national identity card fields. The recognition
// service emits the card's address as one free-text string while the form
// collects structured lines, so the submitted side is re-joined to the same
// granularity before comparison.
type NationalID struct{}

func (NationalID) Type() domain.DocumentType { return domain.DocumentTypeNationalID }

func (NationalID) Fields() []string {
	return []string{
		FieldFullName,
		FieldIDNumber,
		FieldDateOfBirth,
		FieldAddress,
		FieldIssuingCountry,
	}
}

func (NationalID) SanitizeExtracted(raw map[string]string) map[string]string {
	return map[string]string{
		FieldFullName:       normText(pick(raw, FieldFullName, "name", "holder_name")),
		FieldIDNumber:       normIdentifier(pick(raw, FieldIDNumber, "document_number", "card_number")),
		FieldDateOfBirth:    normDate(pick(raw, FieldDateOfBirth, "dob", "birth_date")),
		FieldAddress:        normText(pick(raw, FieldAddress, "residential_address")),
		FieldIssuingCountry: normText(pick(raw, FieldIssuingCountry, "country")),
	}
}

func (NationalID) SanitizeSubmitted(raw map[string]string) map[string]string {
	address := joinAddress(raw["address_line1"], raw["address_line2"], raw[FieldCity], raw[FieldState], raw[FieldPostalCode])
	if address == "" {
		// Already-sanitized input carries the joined form; keep idempotent.
		address = normText(raw[FieldAddress])
	}
	return map[string]string{
		FieldFullName:       normText(raw[FieldFullName]),
		FieldIDNumber:       normIdentifier(raw[FieldIDNumber]),
		FieldDateOfBirth:    normDate(raw[FieldDateOfBirth]),
		FieldAddress:        address,
		FieldIssuingCountry: normText(raw[FieldIssuingCountry]),
	}
}
