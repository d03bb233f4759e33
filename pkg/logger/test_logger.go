package logger

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a Logger implementation for tests that captures all log
// messages instead of writing them anywhere
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	buffer   *bytes.Buffer
	zerolog  *zerolog.Logger
}

// LogMessage is one captured log entry
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger returns a capture-only logger for assertions
func NewTestLogger() *TestLogger {
	nopLogger := zerolog.Nop()
	return &TestLogger{
		messages: make([]LogMessage, 0),
		buffer:   &bytes.Buffer{},
		zerolog:  &nopLogger,
	}
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil) }

// WithField returns a child logger carrying one extra field
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return &testLoggerChild{
		parent: l,
		fields: map[string]interface{}{key: value},
	}
}

// WithFields returns a child logger carrying the given fields
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &testLoggerChild{parent: l, fields: fields}
}

// WithError returns a child logger carrying the error as a field
func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// GetZerolog returns a no-op instance; nothing in tests should reach
// for raw zerolog
func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

// log appends one entry to the capture
func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  fields,
	})

	// A plain-text rendering helps failure messages
	fmt.Fprintf(l.buffer, "[%s] %s", level, msg)
	if len(fields) > 0 {
		fmt.Fprintf(l.buffer, " fields=%v", fields)
	}
	fmt.Fprintln(l.buffer)
}

// GetMessages returns a snapshot of every captured entry
func (l *TestLogger) GetMessages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	messages := make([]LogMessage, len(l.messages))
	copy(messages, l.messages)
	return messages
}

// GetMessagesByLevel returns the captured entries of one level
func (l *TestLogger) GetMessagesByLevel(level string) []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	var filtered []LogMessage
	for _, msg := range l.messages {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// HasMessage reports whether an entry with exactly this text was
// captured
func (l *TestLogger) HasMessage(text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, msg := range l.messages {
		if msg.Message == text {
			return true
		}
	}
	return false
}

// HasError reports whether anything was captured at error level
func (l *TestLogger) HasError() bool {
	return len(l.GetMessagesByLevel("ERROR")) > 0
}

// Clear drops everything captured so far
func (l *TestLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = l.messages[:0]
	l.buffer.Reset()
}

// String renders the capture as plain text
func (l *TestLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.buffer.String()
}

// testLoggerChild carries accumulated fields back to the parent capture
type testLoggerChild struct {
	parent *TestLogger
	fields map[string]interface{}
}

func (l *testLoggerChild) Debug(msg string) { l.parent.log("DEBUG", msg, l.fields) }
func (l *testLoggerChild) Info(msg string)  { l.parent.log("INFO", msg, l.fields) }
func (l *testLoggerChild) Warn(msg string)  { l.parent.log("WARN", msg, l.fields) }
func (l *testLoggerChild) Error(msg string) { l.parent.log("ERROR", msg, l.fields) }
func (l *testLoggerChild) Fatal(msg string) { l.parent.log("FATAL", msg, l.fields) }

func (l *testLoggerChild) WithField(key string, value interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		merged[k] = v
	}
	merged[key] = value
	return &testLoggerChild{parent: l.parent, fields: merged}
}

func (l *testLoggerChild) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &testLoggerChild{parent: l.parent, fields: merged}
}

func (l *testLoggerChild) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *testLoggerChild) GetZerolog() *zerolog.Logger {
	return l.parent.zerolog
}
