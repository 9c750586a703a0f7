package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lepinkainen/humanlog"
)

var (
	log     *slog.Logger
	logFile *os.File
)

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger sends log output to stdout and, when filename is not empty,
// appends it to that file as well.
func InitLogger(filename string, level slog.Level) error {
	var w io.Writer = os.Stdout
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		logFile = f
		w = io.MultiWriter(os.Stdout, f)
	}
	Init(w, level)
	return nil
}

// Init installs a human readable handler writing to w.
func Init(w io.Writer, level slog.Level) {
	log = slog.New(humanlog.NewHandler(w, &humanlog.Options{Level: level}))
	slog.SetDefault(log)
}

// Close releases the log file opened by InitLogger.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func get() *slog.Logger {
	if log == nil {
		Init(os.Stdout, slog.LevelInfo)
	}
	return log
}

func Debugf(format string, v ...interface{}) {
	get().Debug(fmt.Sprintf(format, v...))
}

func Info(msg string) {
	get().Info(msg)
}

func Infof(format string, v ...interface{}) {
	get().Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	get().Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	get().Error(fmt.Sprintf(format, v...))
}
