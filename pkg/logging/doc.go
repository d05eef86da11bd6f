// Package logging configures structured logging for regdesk.
//
// It wraps log/slog so every component logs the same way:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("license renewed", "id", id, "expiry", expiry)
//
// Components accept a *slog.Logger in their constructor or via an option.
// When none is given they use logging.Nop().
//
// A serving process may also append its log to a file next to the console
// output; see Tee.
package logging
