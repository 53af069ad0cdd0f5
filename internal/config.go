package internal

import (
	"log/slog"
	"strconv"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool   // Indicates whether quiet mode is enabled.
	debugMode   atomic.Bool   // Indicates whether debug logging is enabled.
	verboseMode atomic.Bool   // Indicates whether verbose logging is enabled.
	logLevel    slog.LevelVar // Level of the default logger, derived from the modes.
)

// Parses the linker flags into usable runtime variables.
//
// The rawQuiet, rawDebug, and rawVerbose variables should be set via ldflags
// during the build process. If not set, they default to "false".
func init() {
	if v, err := strconv.ParseBool(rawQuiet); err == nil {
		quietMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawDebug); err == nil {
		debugMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawVerbose); err == nil {
		verboseMode.Store(v)
	}
	updateLevel()
}

// Returns the level shared by every logger the program creates.
//
// The level follows the debug and quiet modes: debug wins over quiet, and
// neither means info.
func LogLevel() *slog.LevelVar {
	return &logLevel
}

func updateLevel() {
	switch {
	case IsDebug():
		logLevel.Set(slog.LevelDebug)
	case IsQuiet():
		logLevel.Set(slog.LevelWarn)
	default:
		logLevel.Set(slog.LevelInfo)
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) {
	quietMode.Store(enabled)
	updateLevel()
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Enables or disables debug mode.
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
	updateLevel()
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Enables or disables verbose logging.
func SetVerbose(enabled bool) {
	verboseMode.Store(enabled)
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}
