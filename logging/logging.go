// Package logging builds the process logger for wavetool.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Config selects the level and encoder.
type Config struct {
	Level string
	// Format is "auto", "console" or "json".
	Format string
}

// New returns a logger writing to stderr. With format "auto" (or empty) the
// console encoder is used when stderr is a terminal and JSON otherwise.
func New(cfg Config) (*zap.Logger, error) {
	tty := term.IsTerminal(int(os.Stderr.Fd()))
	return build(cfg, zapcore.Lock(os.Stderr), tty)
}

func build(cfg Config, out zapcore.WriteSyncer, tty bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}

	core := zapcore.NewCore(encoder(cfg.Format, tty), out, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller()), nil
}

func encoder(format string, tty bool) zapcore.Encoder {
	switch strings.ToLower(format) {
	case "json":
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "console":
		return consoleEncoder(tty)
	}
	if tty {
		return consoleEncoder(true)
	}
	return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
}

func consoleEncoder(color bool) zapcore.Encoder {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	if color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}
