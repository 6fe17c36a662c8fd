package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/scitags/sockdiag-go/types"
)

const (
	StatesKey string = "states"
)

var logLevelMap = map[string]slog.Level{
	"trace": types.LevelTrace,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func logReplacements(groups []string, a slog.Attr) slog.Attr {
	// Remove time.
	if a.Key == slog.TimeKey && len(groups) == 0 && !logTimeFlag {
		return slog.Attr{}
	}

	// Remove the directory from the source's filename.
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		source.File = filepath.Base(source.File)
	}

	// Show the states bitmask both as a hex number and as state names
	if a.Key == StatesKey {
		// When slog gobbles the mask it becomes a uint64 instead of a uint32
		// apparently...
		states, ok := a.Value.Any().(uint64)
		if ok {
			return slog.Attr{Key: a.Key, Value: slog.StringValue(
				fmt.Sprintf("%#x(%s)", states, types.StatesString(uint32(states))))}
		}
	}

	// Show the trace level by name instead of as DEBUG-1
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok {
			return slog.Attr{Key: a.Key, Value: slog.StringValue(types.LevelName(level))}
		}
	}

	return a
}

func setupLogging(level string) error {
	l, ok := logLevelMap[level]
	if !ok {
		return fmt.Errorf("unknown log level %q", level)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   true,
		Level:       l,
		ReplaceAttr: logReplacements,
	}))
	slog.SetDefault(logger)

	return nil
}
