package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"mealshare/trustcore/pkg/location"
)

// Error types returned in ErrorResponse bodies.
const (
	ErrorTypeInvalidRequest   = "invalid_request"
	ErrorTypeInvalidArgument  = "invalid_argument"
	ErrorTypeMethodNotAllowed = "method_not_allowed"
	ErrorTypeBodyTooLarge     = "request_too_large"
	ErrorTypeInternal         = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response except content
// violations, which are reported as results.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`

	// Field names the rejected argument for invalid_argument errors.
	Field string `json:"field,omitempty"`
}

// writeJSON writes body as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, errType, message string) {
	writeJSON(w, code, ErrorResponse{Error: ErrorDetail{Type: errType, Message: message}})
}

// writeArgumentError maps a location argument error to 400. The response
// names the field but never echoes the rejected value.
func writeArgumentError(w http.ResponseWriter, err error) {
	detail := ErrorDetail{Type: ErrorTypeInvalidArgument, Message: "invalid argument"}
	var argErr *location.ArgumentError
	if errors.As(err, &argErr) {
		detail.Field = argErr.Field
		detail.Message = argErr.Field + " is invalid"
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: detail})
}

// decodeJSON decodes a single JSON object from the request body, rejecting
// unknown fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorTypeBodyTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, "malformed JSON body")
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, "request body must contain a single JSON object")
		return false
	}
	return true
}
