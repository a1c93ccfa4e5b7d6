// Package sanitize normalizes raw document fields into a canonical comparable
// form. One strategy is registered per document type; each is applied twice
// per comparison, once to the extracted map and once to the user-submitted
// map, with type-specific rules because OCR output and form input have
// different raw shapes.
package sanitize

import (
	"fmt"
	"sort"

	"veridoc/pkg/domain"
	derrors "veridoc/pkg/domain-errors"
)

// Sanitizer is the normalization strategy for one document type. Both methods
// must be pure: the same input always yields the same output, and sanitizing
// an already-sanitized map is a no-op (idempotence is tested per type).
// Output maps contain only the type's comparable fields.
type Sanitizer interface {
	Type() domain.DocumentType
	// Fields returns the comparable field domain for this document type in a
	// stable order. The comparison engine iterates exactly this set.
	Fields() []string
	// SanitizeExtracted normalizes the field map returned by the recognition
	// service.
	SanitizeExtracted(raw map[string]string) map[string]string
	// SanitizeSubmitted normalizes the user's self-reported field map.
	SanitizeSubmitted(raw map[string]string) map[string]string
}

// Registry holds the closed set of sanitizers keyed by document type.
type Registry struct {
	byType map[domain.DocumentType]Sanitizer
}

// NewRegistry builds a registry from the given sanitizers, rejecting
// duplicates and invalid document types.
func NewRegistry(sanitizers ...Sanitizer) (*Registry, error) {
	byType := make(map[domain.DocumentType]Sanitizer, len(sanitizers))
	for _, s := range sanitizers {
		dt := s.Type()
		if !dt.IsValid() {
			return nil, fmt.Errorf("sanitizer registered for invalid document type %q", dt)
		}
		if _, exists := byType[dt]; exists {
			return nil, fmt.Errorf("duplicate sanitizer for document type %q", dt)
		}
		byType[dt] = s
	}
	return &Registry{byType: byType}, nil
}

// DefaultRegistry returns the registry with all five supported document types.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(
		NationalID{},
		Passport{},
		TaxID{},
		DrivingLicense{},
		VoterID{},
	)
	if err != nil {
		// The default set is fixed at compile time; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return reg
}

// For returns the sanitizer registered for the document type, or an
// unsupported-document-type error. No sanitization happens on failure.
func (r *Registry) For(docType domain.DocumentType) (Sanitizer, error) {
	s, ok := r.byType[docType]
	if !ok {
		return nil, derrors.New(derrors.CodeUnsupportedDocument,
			fmt.Sprintf("no sanitizer registered for document type %q", docType))
	}
	return s, nil
}

// Types lists the registered document types in a stable order.
func (r *Registry) Types() []domain.DocumentType {
	types := make([]domain.DocumentType, 0, len(r.byType))
	for dt := range r.byType {
		types = append(types, dt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
