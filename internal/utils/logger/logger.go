package logger

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Logger struct {
	serviceName string
}

var (
	// INFO_EMOJI Emoji constants
	INFO_EMOJI    = "ℹ️ "
	SUCCESS_EMOJI = "✅ "
	WARN_EMOJI    = "⚠️ "
	ERROR_EMOJI   = "❌ "
	DEBUG_EMOJI   = "🔍 "
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	debugColor   = color.New(color.FgMagenta)

	outputMu sync.RWMutex
	output   io.Writer = color.Output
)

func New(serviceName string) *Logger {
	return &Logger{
		serviceName: serviceName,
	}
}

// SetOutput redirects every logger in the process. Tests use io.Discard.
func SetOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
}

func (l *Logger) formatMessage(level, emoji, msg string) string {
	_, file, line, _ := runtime.Caller(2)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fileName := filepath.Base(file)

	return fmt.Sprintf("%s | %s | %s | %s:%d | %s | %s",
		emoji,
		timestamp,
		level,
		fileName,
		line,
		l.serviceName,
		msg,
	)
}

func write(c *color.Color, line string) {
	outputMu.RLock()
	defer outputMu.RUnlock()
	_, _ = c.Fprintln(output, line)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	write(infoColor, l.formatMessage("INFO", INFO_EMOJI, fmt.Sprintf(msg, args...)))
}

func (l *Logger) Success(msg string, args ...interface{}) {
	write(successColor, l.formatMessage("SUCCESS", SUCCESS_EMOJI, fmt.Sprintf(msg, args...)))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	write(warnColor, l.formatMessage("WARN", WARN_EMOJI, fmt.Sprintf(msg, args...)))
}

// Error prints msg (formatted with args) followed by err, and returns them
// wrapped together so callers can log and propagate in one statement.
func (l *Logger) Error(msg string, err error, args ...interface{}) error {
	text := fmt.Sprintf(msg, args...)
	if err == nil {
		write(errorColor, l.formatMessage("ERROR", ERROR_EMOJI, text))
		return errors.New(text)
	}
	write(errorColor, l.formatMessage("ERROR", ERROR_EMOJI, fmt.Sprintf("%s: %v", text, err)))
	return fmt.Errorf("%s: %w", text, err)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	write(debugColor, l.formatMessage("DEBUG", DEBUG_EMOJI, fmt.Sprintf(msg, args...)))
}
