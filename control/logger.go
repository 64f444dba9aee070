// control/logger.go
// Author: momentics <momentics@gmail.com>
//
// slog construction and transfer logging helpers.

package control

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds a logger writing to w. format is "text" or "json",
// level one of debug, info, warn, error.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("control: log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("control: unknown log format %q", format)
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns logger, or a discarding logger when it is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return DiscardLogger()
	}
	return logger
}

// EnrichLogger adds the transfer id to a logger.
func EnrichLogger(logger *slog.Logger, transferID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("transfer_id", transferID))
}

// LogTransferComplete logs a finished transfer.
func LogTransferComplete(logger *slog.Logger, bytesRead, bytesWritten int64, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("transfer completed",
		slog.Int64("bytes_read", bytesRead),
		slog.Int64("bytes_written", bytesWritten),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogTransferError logs a failed transfer.
func LogTransferError(logger *slog.Logger, err error, bytesRead, bytesWritten int64) {
	if logger == nil {
		return
	}
	logger.Warn("transfer failed",
		slog.String("error", err.Error()),
		slog.Int64("bytes_read", bytesRead),
		slog.Int64("bytes_written", bytesWritten),
	)
}
