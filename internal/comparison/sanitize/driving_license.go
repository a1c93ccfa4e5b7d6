package sanitize

import "veridoc/pkg/domain"

// DrivingLicense normalizes driving license fields. Licenses carry both an
// address and an issuing state, and the issue/expiry window matters for
// validity review, so all three survive into the comparable set.
type DrivingLicense struct{}

func (DrivingLicense) Type() domain.DocumentType { return domain.DocumentTypeDrivingLicense }

func (DrivingLicense) Fields() []string {
	return []string{
		FieldFullName,
		FieldIDNumber,
		FieldDateOfBirth,
		FieldIssueDate,
		FieldExpiryDate,
		FieldState,
		FieldAddress,
	}
}

func (DrivingLicense) SanitizeExtracted(raw map[string]string) map[string]string {
	return map[string]string{
		FieldFullName:    normText(pick(raw, FieldFullName, "name", "driver_name")),
		FieldIDNumber:    normIdentifier(pick(raw, FieldIDNumber, "license_number", "dl_number")),
		FieldDateOfBirth: normDate(pick(raw, FieldDateOfBirth, "dob")),
		FieldIssueDate:   normDate(pick(raw, FieldIssueDate, "date_of_issue", "issued")),
		FieldExpiryDate:  normDate(pick(raw, FieldExpiryDate, "date_of_expiry", "expires")),
		FieldState:       normText(pick(raw, FieldState, "issuing_state")),
		FieldAddress:     normText(pick(raw, FieldAddress)),
	}
}

func (DrivingLicense) SanitizeSubmitted(raw map[string]string) map[string]string {
	address := joinAddress(raw["address_line1"], raw["address_line2"], raw[FieldCity], raw[FieldPostalCode])
	if address == "" {
		address = normText(raw[FieldAddress])
	}
	return map[string]string{
		FieldFullName:    normText(raw[FieldFullName]),
		FieldIDNumber:    normIdentifier(raw[FieldIDNumber]),
		FieldDateOfBirth: normDate(raw[FieldDateOfBirth]),
		FieldIssueDate:   normDate(raw[FieldIssueDate]),
		FieldExpiryDate:  normDate(raw[FieldExpiryDate]),
		FieldState:       normText(raw[FieldState]),
		FieldAddress:     address,
	}
}
