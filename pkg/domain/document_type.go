package domain

import derrors "veridoc/pkg/domain-errors"

// DocumentType is the closed enumeration of identity documents the engine can
// verify. Each type selects its own sanitizer pair and comparable field set;
// anything outside this set is rejected, never passed through.
type DocumentType string

const (
	DocumentTypeNationalID     DocumentType = "national_id"
	DocumentTypePassport       DocumentType = "passport"
	DocumentTypeTaxID          DocumentType = "tax_id"
	DocumentTypeDrivingLicense DocumentType = "driving_license"
	DocumentTypeVoterID        DocumentType = "voter_id"
)

// DocumentTypes lists every supported type in a stable order.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeNationalID,
		DocumentTypePassport,
		DocumentTypeTaxID,
		DocumentTypeDrivingLicense,
		DocumentTypeVoterID,
	}
}

// IsValid reports whether the value is one of the supported document types.
func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentTypeNationalID, DocumentTypePassport, DocumentTypeTaxID,
		DocumentTypeDrivingLicense, DocumentTypeVoterID:
		return true
	}
	return false
}

// ParseDocumentType validates a raw string against the closed enumeration.
func ParseDocumentType(raw string) (DocumentType, error) {
	dt := DocumentType(raw)
	if !dt.IsValid() {
		return "", derrors.New(derrors.CodeUnsupportedDocument, "unsupported document type: "+raw)
	}
	return dt, nil
}
