// Package httputil maps domain errors onto HTTP responses so handlers never
// hand-roll status codes or leak internals.
package httputil

import (
	"encoding/json"
	"net/http"

	derrors "veridoc/pkg/domain-errors"
)

var statusByCode = map[derrors.Code]int{
	derrors.CodeBadRequest:          http.StatusBadRequest,
	derrors.CodeValidation:          http.StatusUnprocessableEntity,
	derrors.CodeInvalidInput:        http.StatusBadRequest,
	derrors.CodeNotFound:            http.StatusNotFound,
	derrors.CodeConflict:            http.StatusConflict,
	derrors.CodeDuplicateModeration: http.StatusConflict,
	derrors.CodeUnauthorized:        http.StatusUnauthorized,
	derrors.CodeForbidden:           http.StatusForbidden,
	derrors.CodeTimeout:             http.StatusGatewayTimeout,
	derrors.CodeUnsupportedDocument: http.StatusUnprocessableEntity,
	derrors.CodeInvalidTransition:   http.StatusUnprocessableEntity,
	derrors.CodeExtractionFailed:    http.StatusBadGateway,
	derrors.CodeInternal:            http.StatusInternalServerError,
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError renders a domain error as JSON. Internal errors omit the
// description so infrastructure details never reach clients.
func WriteError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		code = derrors.CodeInternal
		status = http.StatusInternalServerError
	}

	body := errorBody{Error: string(code)}
	if code != derrors.CodeInternal {
		body.Description = derrors.MessageOf(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
