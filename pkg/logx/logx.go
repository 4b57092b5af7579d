package logx

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// Level controls which messages are emitted.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	current atomic.Int32
	std     = log.New(os.Stdout, "", log.LstdFlags)
)

func init() {
	current.Store(int32(LevelInfo))
}

// SetLevel sets the minimum level that will be logged.
func SetLevel(l Level) { current.Store(int32(l)) }

func enabled(l Level) bool { return int32(l) >= current.Load() }

func output(tag, msg string) { std.Printf("[%s] %s", tag, msg) }

func Debug(msg string) {
	if enabled(LevelDebug) {
		output("DEBUG", msg)
	}
}

func Debugf(format string, args ...any) {
	if enabled(LevelDebug) {
		output("DEBUG", fmt.Sprintf(format, args...))
	}
}

func Info(msg string) {
	if enabled(LevelInfo) {
		output("INFO", msg)
	}
}

func Infof(format string, args ...any) {
	if enabled(LevelInfo) {
		output("INFO", fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if enabled(LevelWarn) {
		output("WARN", msg)
	}
}

func Warnf(format string, args ...any) {
	if enabled(LevelWarn) {
		output("WARN", fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if enabled(LevelError) {
		output("ERROR", msg)
	}
}

func Errorf(format string, args ...any) {
	if enabled(LevelError) {
		output("ERROR", fmt.Sprintf(format, args...))
	}
}

// Fatalf logs at error level and exits.
func Fatalf(format string, args ...any) {
	output("FATAL", fmt.Sprintf(format, args...))
	os.Exit(1)
}
