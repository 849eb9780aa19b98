package utils

import (
	"log"
	"os"
	"strings"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var currentLevel = LevelInfo

var levelTags = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// SetLevel sets verbosity from a name; unknown names mean info.
func SetLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		currentLevel = LevelDebug
	case "warn", "warning":
		currentLevel = LevelWarn
	case "error":
		currentLevel = LevelError
	case "fatal":
		currentLevel = LevelFatal
	default:
		currentLevel = LevelInfo
	}
}

// Enabled reports whether messages at level are written.
func Enabled(level LogLevel) bool { return level >= currentLevel }

func logMsg(level LogLevel, msg string, args ...any) {
	if !Enabled(level) {
		return
	}
	line := "[" + levelTags[level] + "] " + msg
	if level == LevelFatal {
		log.Printf(line, args...)
		os.Exit(1)
	}
	log.Printf(line, args...)
}

func Debug(msg string, args ...any) { logMsg(LevelDebug, msg, args...) }
func Info(msg string, args ...any)  { logMsg(LevelInfo, msg, args...) }
func Warn(msg string, args ...any)  { logMsg(LevelWarn, msg, args...) }
func Error(msg string, args ...any) { logMsg(LevelError, msg, args...) }
func Fatal(msg string, args ...any) { logMsg(LevelFatal, msg, args...) }

// LogSinkFailure records a failed write to an auxiliary store.
func LogSinkFailure(sink, timestamp string, err error) {
	Warn("sink %s: reading at %s not stored: %v", sink, timestamp, err)
}
