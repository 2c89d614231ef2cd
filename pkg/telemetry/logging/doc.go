// Package logging builds structured loggers on top of log/slog.
//
// Components receive a *slog.Logger and attach their identity with
// logger.With("component", ...). This package only owns construction:
// level and format parsing from configuration, and the process-wide
// default.
package logging
