package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a leveled logger taking alternating key/value pairs after the message
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Options configures a zerolog backed Logger
type Options struct {
	Level   string
	Writers []string // console, json, file
	File    string

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ZeroLogger is the zerolog implementation of Logger
type ZeroLogger struct {
	l       zerolog.Logger
	closers []io.Closer
}

// New builds a Logger writing to every writer named in opts
func New(opts Options) (*ZeroLogger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	writers := opts.Writers
	if len(writers) == 0 {
		writers = []string{"console"}
	}

	var (
		outs    []io.Writer
		closers []io.Closer
	)
	for _, w := range writers {
		switch strings.ToLower(strings.TrimSpace(w)) {
		case "console":
			outs = append(outs, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		case "json", "stderr":
			outs = append(outs, os.Stderr)
		case "file":
			if opts.File == "" {
				return nil, fmt.Errorf("file log writer requires a file path")
			}
			lj := &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    orDefault(opts.MaxSizeMB, 10),
				MaxBackups: orDefault(opts.MaxBackups, 3),
				MaxAge:     orDefault(opts.MaxAgeDays, 28),
			}
			outs = append(outs, lj)
			closers = append(closers, lj)
		default:
			return nil, fmt.Errorf("unknown log writer: %s", w)
		}
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(outs...)).Level(level).With().Timestamp().Logger()
	return &ZeroLogger{l: zl, closers: closers}, nil
}

// NewWithWriter returns a Logger emitting JSON lines to w, mostly for tests
func NewWithWriter(w io.Writer, level zerolog.Level) *ZeroLogger {
	return &ZeroLogger{l: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (z *ZeroLogger) Debug(msg string, keyvals ...any) {
	z.l.Debug().Fields(keyvals).Msg(msg)
}

func (z *ZeroLogger) Info(msg string, keyvals ...any) {
	z.l.Info().Fields(keyvals).Msg(msg)
}

func (z *ZeroLogger) Warn(msg string, keyvals ...any) {
	z.l.Warn().Fields(keyvals).Msg(msg)
}

func (z *ZeroLogger) Error(msg string, keyvals ...any) {
	z.l.Error().Fields(keyvals).Msg(msg)
}

// Close flushes and closes file writers
func (z *ZeroLogger) Close() error {
	var first error
	for _, c := range z.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type nop struct{}

// NewNop returns a Logger that discards everything
func NewNop() Logger {
	return nop{}
}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}
