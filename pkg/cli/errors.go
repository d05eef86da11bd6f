package cli

import (
	"errors"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/config"
)

// Exit codes.
const (
	ExitError     = 1
	ExitUsage     = 2
	ExitAuth      = 3
	ExitNotFound  = 4
	ExitCancelled = 130
)

// FormatError renders err for the terminal, followed by the error's hint
// when it has one.
func FormatError(err error) string {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return "invalid configuration: " + cfgErr.Error()
	}
	msg := err.Error()
	var h interface{ Hint() string }
	if errors.As(err, &h) && h.Hint() != "" {
		msg += "\n\n" + h.Hint()
	}
	return msg
}

func exitCode(err error) int {
	var (
		unauth    *apperr.UnauthorizedError
		forbidden *apperr.ForbiddenError
		notFound  *apperr.NotFoundError
		invalid   *apperr.ValidationError
		cancelled *apperr.UserCancelledError
	)
	switch {
	case errors.As(err, &cancelled):
		return ExitCancelled
	case errors.As(err, &unauth), errors.As(err, &forbidden):
		return ExitAuth
	case errors.As(err, &notFound):
		return ExitNotFound
	case errors.As(err, &invalid):
		return ExitUsage
	}
	return ExitError
}
