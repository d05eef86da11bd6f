// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/domain"
)

// DefaultMaxBody is the request body limit used by ReadBody when none is given.
const DefaultMaxBody = 1 << 20

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteData writes data inside a success envelope.
func WriteData[T any](w http.ResponseWriter, status int, data T) {
	WriteJSON(w, status, domain.Envelope[T]{Success: true, Data: &data})
}

// WriteMessage writes a success envelope that carries only a message.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, domain.Envelope[struct{}]{Success: true, Message: message})
}

// WriteError writes the error body for err and returns it. Errors outside the
// apperr taxonomy are reported as a generic internal error.
func WriteError(w http.ResponseWriter, err error) *apperr.Response {
	resp := apperr.ToResponse(err)
	WriteJSON(w, resp.StatusCode, resp)
	return resp
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ReadBody reads the request body up to limit bytes. An empty body and an
// oversized body are validation errors.
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &apperr.ValidationError{Message: fmt.Sprintf("request body exceeds %d bytes", limit)}
		}
		return nil, &apperr.ValidationError{Message: "failed to read request body"}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &apperr.ValidationError{Message: "request body is required"}
	}
	return data, nil
}

// DecodeJSON unmarshals data into v, reporting syntax and type errors as
// validation errors.
func DecodeJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &apperr.ValidationError{Field: typeErr.Field, Message: "has the wrong type"}
		}
		return &apperr.ValidationError{Message: "invalid JSON body: " + err.Error()}
	}
	return nil
}

// BearerToken returns the token of an Authorization: Bearer header, or "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
