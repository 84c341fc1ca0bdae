package httpext

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents a standardised JSON error response
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// JsonError writes a JSON error response with the specified status code
func JsonError(w http.ResponseWriter, message string, code int) {
	JsonErrorWithDetails(w, code, ErrorResponse{Error: message})
}

// JsonErrorWithDetails writes a detailed JSON error response with an optional description
func JsonErrorWithDetails(w http.ResponseWriter, code int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Int("status", code).Msg("Failed to encode error response")
		return
	}
}

// ReadError decodes an ErrorResponse body and returns its message, or an
// empty string when the body is not a JSON error object.
func ReadError(r io.Reader) string {
	var resp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(r, 64*1024)).Decode(&resp); err != nil {
		return ""
	}
	if resp.ErrorDescription != "" && resp.Error == "" {
		return resp.ErrorDescription
	}
	return resp.Error
}
