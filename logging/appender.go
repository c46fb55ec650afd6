package logging

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap/zapcore"
)

// Appender is an output for log entries. This is a subset of the `zapcore.Core` interface.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync is for signaling that any buffered logs to `Write` should be flushed. E.g: at shutdown.
	Sync() error
}

// ConsoleAppender writes human readable, tab separated log lines to a writer.
type ConsoleAppender struct {
	mu      sync.Mutex
	w       io.Writer
	encoder zapcore.Encoder
}

// NewStdoutAppender creates a new appender that outputs to stdout.
func NewStdoutAppender() Appender {
	return NewWriterAppender(os.Stdout)
}

// NewWriterAppender creates a new appender that outputs to the given writer.
func NewWriterAppender(w io.Writer) Appender {
	return &ConsoleAppender{
		w: w,
		encoder: zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.TimeEncoderOfLayout(DefaultTimeFormatStr),
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}),
	}
}

// Write outputs the log entry to the underlying writer.
func (app *ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	buf, err := app.encoder.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	app.mu.Lock()
	defer app.mu.Unlock()
	_, err = app.w.Write(buf.Bytes())
	return err
}

// Sync flushes the writer if it supports it.
func (app *ConsoleAppender) Sync() error {
	if syncer, ok := app.w.(interface{ Sync() error }); ok && app.w != os.Stdout {
		return syncer.Sync()
	}
	return nil
}
