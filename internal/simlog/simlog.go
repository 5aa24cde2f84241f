// Package simlog wraps zerolog the way the rest of the corpus does:
// a package-level logger initialized once, plus thin leveled helpers that
// take a message and loosely-typed key/value pairs rather than forcing
// every call site to build zerolog fields by hand.
package simlog

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. InitLogger must be called once at
// startup before any other package logs.
var Logger zerolog.Logger

// InitLogger configures Logger for either a human console (default) or
// structured JSON lines (debug mode, so a CI harness can grep collision
// and IPC events).
func InitLogger(debugJSON bool) {
	if debugJSON {
		Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	Logger = zerolog.New(writer).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

func toFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}

// Debug logs loader/collision tracing detail, only visible with --debug.
func Debug(msg string, kv ...interface{}) {
	Logger.Debug().Fields(toFields(kv)).Msg(msg)
}

// Info logs lifecycle events: scene load, robot spawn, IPC ready.
func Info(msg string, kv ...interface{}) {
	Logger.Info().Fields(toFields(kv)).Msg(msg)
}

// Warn logs startup-recoverable conditions: missing mesh, missing robot
// definition, defaults applied.
func Warn(msg string, kv ...interface{}) {
	Logger.Warn().Fields(toFields(kv)).Msg(msg)
}

// Error logs runtime-recoverable conditions: IPC disconnect, malformed
// JSON, unknown message type.
func Error(msg string, kv ...interface{}) {
	Logger.Error().Fields(toFields(kv)).Msg(msg)
}
