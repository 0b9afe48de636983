package logging

import (
	"io"
	"log/slog"
	"os"

	"gorm.io/gorm"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(newJSONHandler(os.Stdout)))
}

// AttachDB keeps the stdout output and additionally persists ERROR+ records
// into system_logs. The returned handler must be stopped on shutdown.
func AttachDB(db *gorm.DB) *DBHandler {
	sink := NewDBHandler(db)
	slog.SetDefault(slog.New(NewMultiHandler(newJSONHandler(os.Stdout), sink)))
	return sink
}

func newJSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}
