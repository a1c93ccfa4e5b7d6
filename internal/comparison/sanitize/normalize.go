package sanitize

import (
	"strings"
	"time"
	"unicode"
)

// Shared field names. Extracted and submitted maps converge on these keys so
// the engine can compare both sides at the same granularity.
const (
	FieldFullName       = "full_name"
	FieldIDNumber       = "id_number"
	FieldDateOfBirth    = "date_of_birth"
	FieldIssueDate      = "issue_date"
	FieldExpiryDate     = "expiry_date"
	FieldNationality    = "nationality"
	FieldIssuingCountry = "issuing_country"
	FieldResidence      = "residence_country"
	FieldAddress        = "address"
	FieldCity           = "city"
	FieldState          = "state"
	FieldPostalCode     = "postal_code"
)

// dateLayouts lists the representations sanitizers accept, most specific
// first. OCR output and form input disagree on date shape constantly; both
// normalize to canonicalDateLayout.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"2 January 2006",
	"02 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"20060102",
}

const canonicalDateLayout = "2006-01-02"

// normText trims, case-folds and collapses internal whitespace runs.
func normText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// normIdentifier strips punctuation, separators and whitespace from an
// identifier number and case-folds the rest, so "PA-123 456/7" and
// "pa1234567" compare equal.
func normIdentifier(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normDate parses any accepted layout and reformats to 2006-01-02. Values
// that parse under no layout are passed through normText so the comparator
// still sees them; garbage-in stays visible to the reviewer instead of being
// swallowed.
func normDate(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(canonicalDateLayout)
		}
	}
	return normText(trimmed)
}

// joinAddress concatenates non-empty address parts into the single-string
// granularity OCR emits, normalized as text.
func joinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := normText(p); n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, " ")
}

// pick returns the first non-empty raw value among the given keys. Extraction
// services are inconsistent about naming; submitted forms are not, but the
// helper keeps both sides uniform.
func pick(raw map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
