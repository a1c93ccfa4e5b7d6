package sanitize

import "veridoc/pkg/domain"

// VoterID normalizes voter identity card fields. Voter cards localize the
// holder to a city and state rather than a full street address.
type VoterID struct{}

func (VoterID) Type() domain.DocumentType { return domain.DocumentTypeVoterID }

func (VoterID) Fields() []string {
	return []string{
		FieldFullName,
		FieldIDNumber,
		FieldDateOfBirth,
		FieldCity,
		FieldState,
	}
}

func (VoterID) SanitizeExtracted(raw map[string]string) map[string]string {
	return map[string]string{
		FieldFullName:    normText(pick(raw, FieldFullName, "name", "elector_name")),
		FieldIDNumber:    normIdentifier(pick(raw, FieldIDNumber, "voter_number", "epic_number")),
		FieldDateOfBirth: normDate(pick(raw, FieldDateOfBirth, "dob")),
		FieldCity:        normText(pick(raw, FieldCity, "town")),
		FieldState:       normText(pick(raw, FieldState)),
	}
}

func (VoterID) SanitizeSubmitted(raw map[string]string) map[string]string {
	return map[string]string{
		FieldFullName:    normText(raw[FieldFullName]),
		FieldIDNumber:    normIdentifier(raw[FieldIDNumber]),
		FieldDateOfBirth: normDate(raw[FieldDateOfBirth]),
		FieldCity:        normText(raw[FieldCity]),
		FieldState:       normText(raw[FieldState]),
	}
}
