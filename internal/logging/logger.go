// Package logging configures slog for the service and persists error
// records to the system_logs table.
package logging

import (
	"log/slog"
	"os"

	"gorm.io/gorm"
)

// stdout is the plain JSON handler; DB handler failures report here only so
// they cannot feed back into the DB handler.
var stdout slog.Handler

// Setup installs a JSON handler on stdout. Development runs log at debug.
func Setup(appEnv string) {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}
	stdout = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(stdout))
}

// AttachDB fans records out to stdout and the system_logs table. The
// returned handler must be stopped on shutdown to flush pending records.
func AttachDB(db *gorm.DB) *DBHandler {
	if stdout == nil {
		Setup("")
	}
	dbHandler := NewDBHandler(db)
	slog.SetDefault(slog.New(NewMultiHandler(stdout, dbHandler)))
	return dbHandler
}

func fallback() *slog.Logger {
	if stdout == nil {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return slog.New(stdout)
}
