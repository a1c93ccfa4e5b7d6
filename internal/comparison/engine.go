package comparison

import (
	"context"
	"fmt"
	"log/slog"

	"veridoc/internal/comparison/sanitize"
	"veridoc/pkg/domain"
)

// FieldComparisonResult records the outcome for a single field: both
// normalized values and whether the comparator judged them equivalent.
type FieldComparisonResult struct {
	Field          string `json:"field"`
	OCRValue       string `json:"ocr_value"`
	SubmittedValue string `json:"submitted_value"`
	Match          bool   `json:"match"`
}

// Mismatch is the diagnostic payload for a failing field. Both values are
// carried so a reviewer can audit the disagreement.
type Mismatch struct {
	OCRValue       string `json:"ocr_value"`
	SubmittedValue string `json:"submitted_value"`
	Reason         string `json:"reason"`
}

// Result is the verdict for a whole document. IsMatch is the logical AND over
// all field results; Mismatches holds only the failing fields.
type Result struct {
	IsMatch    bool                    `json:"is_match"`
	Fields     []FieldComparisonResult `json:"fields"`
	Mismatches map[string]Mismatch     `json:"mismatches"`
}

// Engine dispatches to the sanitizer pair registered for a document type and
// runs the comparator over the type's comparable field set.
type Engine struct {
	registry *sanitize.Registry
	cmp      Comparator
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine builds a comparison engine. Both the registry and the comparator
// are required.
func NewEngine(registry *sanitize.Registry, cmp Comparator, opts ...EngineOption) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("sanitizer registry is required")
	}
	if cmp == nil {
		return nil, fmt.Errorf("comparator is required")
	}
	e := &Engine{registry: registry, cmp: cmp, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// CompareDocument sanitizes both sides with the pair registered for docType
// and compares every field in the type's comparable set. Fields absent from
// the extracted map are compared as empty strings so a document that failed
// to extract a mandatory field surfaces as a mismatch, not a silent pass.
// An unregistered document type fails before any sanitization runs.
func (e *Engine) CompareDocument(ctx context.Context, docType domain.DocumentType, ocrData, submittedData map[string]string) (Result, error) {
	sanitizer, err := e.registry.For(docType)
	if err != nil {
		return Result{}, err
	}

	sanitizedOCR := sanitizer.SanitizeExtracted(ocrData)
	sanitizedSubmitted := sanitizer.SanitizeSubmitted(submittedData)

	fields := sanitizer.Fields()
	result := Result{
		IsMatch:    true,
		Fields:     make([]FieldComparisonResult, 0, len(fields)),
		Mismatches: make(map[string]Mismatch),
	}

	for _, field := range fields {
		ocrValue := sanitizedOCR[field]
		submittedValue := sanitizedSubmitted[field]
		match := e.cmp.Match(ocrValue, submittedValue)

		result.Fields = append(result.Fields, FieldComparisonResult{
			Field:          field,
			OCRValue:       ocrValue,
			SubmittedValue: submittedValue,
			Match:          match,
		})

		if !match {
			result.IsMatch = false
			result.Mismatches[field] = Mismatch{
				OCRValue:       ocrValue,
				SubmittedValue: submittedValue,
				Reason:         mismatchReason(ocrValue, submittedValue),
			}
		}
	}

	if !result.IsMatch {
		e.logger.DebugContext(ctx, "document comparison found mismatches",
			"document_type", docType,
			"mismatched_fields", len(result.Mismatches),
		)
	}

	return result, nil
}

func mismatchReason(ocrValue, submittedValue string) string {
	switch {
	case ocrValue == "" && submittedValue != "":
		return "field not extracted from document"
	case ocrValue != "" && submittedValue == "":
		return "field not provided by user"
	default:
		return "values differ beyond similarity threshold"
	}
}
