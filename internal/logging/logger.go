package logging

import (
	"log/slog"
	"os"
)

// Setup installs the process-wide JSON logger writing to stdout. The audit
// file handler is attached later, once configuration has been loaded.
func Setup() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
}
