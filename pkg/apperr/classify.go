package apperr

import (
	"errors"
	"net/http"
)

// Kind is the coarse category of an error.
type Kind string

// Error kinds.
const (
	KindNone         Kind = ""
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindServer       Kind = "server"
	KindNetwork      Kind = "network"
	KindCancelled    Kind = "cancelled"
	KindTransition   Kind = "invalid_transition"
	KindInternal     Kind = "internal"
)

// Classify maps err to its kind. Unknown errors are KindInternal.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		validation   *ValidationError
		notFound     *NotFoundError
		conflict     *ConflictError
		unauthorized *UnauthorizedError
		forbidden    *ForbiddenError
		server       *ServerError
		network      *NetworkError
		cancelled    *UserCancelledError
		transition   *InvalidTransitionError
	)
	switch {
	case errors.As(err, &cancelled):
		return KindCancelled
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &conflict):
		return KindConflict
	case errors.As(err, &transition):
		return KindTransition
	case errors.As(err, &unauthorized):
		return KindUnauthorized
	case errors.As(err, &forbidden):
		return KindForbidden
	case errors.As(err, &server):
		return KindServer
	case errors.As(err, &network):
		return KindNetwork
	}
	return KindInternal
}

// FromStatus builds the typed error for an HTTP error status. Statuses that
// have no dedicated type become a ServerError for 5xx and 429 and a
// ValidationError for the remaining 4xx codes.
func FromStatus(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized:
		return &UnauthorizedError{Message: message}
	case status == http.StatusForbidden:
		return &ForbiddenError{Message: message}
	case status == http.StatusNotFound:
		return &NotFoundError{Resource: message}
	case status == http.StatusConflict:
		return &ConflictError{ID: message}
	case status >= 500, status == http.StatusTooManyRequests:
		return &ServerError{Status: status, Message: message}
	case status >= 400:
		if message == "" {
			message = http.StatusText(status)
		}
		return &ValidationError{Message: message}
	}
	return nil
}

// Response is the JSON error body returned by the mock backend.
type Response struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Resource   string `json:"resource,omitempty"`
	ID         string `json:"id,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Hint       string `json:"hint,omitempty"`
	StatusCode int    `json:"-"`
}

// ToResponse converts err to an error body. Errors outside the taxonomy are
// reported as a generic internal error so their text never reaches clients.
func ToResponse(err error) *Response {
	resp := &Response{
		Error:      string(Classify(err)),
		StatusCode: http.StatusInternalServerError,
		Message:    "internal server error",
	}
	var sc StatusCodeError
	if resp.Error != string(KindInternal) && errors.As(err, &sc) {
		resp.StatusCode = sc.StatusCode()
		resp.Message = sc.Error()
	}
	var hint HintError
	if resp.Error != string(KindInternal) && errors.As(err, &hint) {
		resp.Hint = hint.Hint()
	}

	var (
		validation *ValidationError
		notFound   *NotFoundError
		conflict   *ConflictError
		transition *InvalidTransitionError
		unauth     *UnauthorizedError
		forbidden  *ForbiddenError
		server     *ServerError
	)
	switch {
	case errors.As(err, &unauth):
		resp.Message = unauth.Message
	case errors.As(err, &forbidden):
		resp.Message = forbidden.Message
	case errors.As(err, &server):
		resp.Message = server.Message
	case errors.As(err, &validation):
		resp.Field = validation.Field
		resp.Message = validation.Message
	case errors.As(err, &notFound):
		resp.Resource = notFound.Resource
		resp.ID = notFound.ID
	case errors.As(err, &conflict):
		resp.Resource = conflict.Resource
		resp.ID = conflict.ID
	case errors.As(err, &transition):
		resp.Resource = transition.Resource
		resp.From = transition.From
		resp.To = transition.To
	}
	return resp
}

// FromResponse rebuilds a typed error from an error body received with the
// given status. Bodies produced by ToResponse round-trip to the same type.
func FromResponse(status int, body *Response) error {
	if body == nil {
		return FromStatus(status, http.StatusText(status))
	}
	switch Kind(body.Error) {
	case KindValidation:
		return &ValidationError{Field: body.Field, Message: body.Message}
	case KindNotFound:
		return &NotFoundError{Resource: body.Resource, ID: body.ID}
	case KindConflict:
		return &ConflictError{Resource: body.Resource, ID: body.ID}
	case KindTransition:
		return &InvalidTransitionError{Resource: body.Resource, From: body.From, To: body.To}
	}
	return FromStatus(status, body.Message)
}
