// Package config loads wavetool settings from YAML.
package config

import (
	"bytes"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	werrors "github.com/wippyai/waveform/errors"
)

// Config is the complete wavetool configuration.
type Config struct {
	Logging Logging `yaml:"logging"`
	Stream  Stream  `yaml:"stream"`
	Decode  Decode  `yaml:"decode"`
	Output  Output  `yaml:"output"`
	Metrics Metrics `yaml:"metrics"`
}

// Logging selects the log level and encoder.
type Logging struct {
	Level string `yaml:"level"`
	// Format is "auto", "console" or "json". Auto picks console on a terminal.
	Format string `yaml:"format"`
}

// Stream controls chunked reading.
type Stream struct {
	ChunkSize int      `yaml:"chunk_size"`
	Signals   []string `yaml:"signals"`
}

// Decode controls block decoding.
type Decode struct {
	// Workers bounds parallel block decoding. Zero uses GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// Output controls written files.
type Output struct {
	// Compress wraps interchange output in zstd.
	Compress bool `yaml:"compress"`
	// ParquetCodec is "snappy", "zstd" or "none".
	ParquetCodec string `yaml:"parquet_codec"`
}

// Metrics controls the Prometheus collectors.
type Metrics struct {
	Namespace string `yaml:"namespace"`
	// File receives a text exposition of all metrics on exit when set.
	File string `yaml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
		Stream: Stream{
			ChunkSize: 10000,
		},
		Output: Output{
			ParquetCodec: "snappy",
		},
		Metrics: Metrics{
			Namespace: "waveform",
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, werrors.New(werrors.PhaseConfig, werrors.KindNotFound).
				Cause(err).
				Detail("config file %q not found", path).
				Build()
		}
		return nil, werrors.IO(werrors.PhaseConfig, err, "read config file")
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, werrors.New(werrors.PhaseConfig, werrors.KindFormat).
			Cause(err).
			Detail("parse config").
			Build()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field for a usable value.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return invalid("logging.level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "auto", "console", "json":
	default:
		return invalid("logging.format", c.Logging.Format)
	}
	if c.Stream.ChunkSize < 1 {
		return werrors.InvalidInput(werrors.PhaseConfig, "stream.chunk_size must be positive")
	}
	if c.Decode.Workers < 0 {
		return werrors.InvalidInput(werrors.PhaseConfig, "decode.workers must not be negative")
	}
	switch c.Output.ParquetCodec {
	case "snappy", "zstd", "none":
	default:
		return invalid("output.parquet_codec", c.Output.ParquetCodec)
	}
	if c.Metrics.Namespace == "" {
		return werrors.InvalidInput(werrors.PhaseConfig, "metrics.namespace must not be empty")
	}
	return nil
}

func invalid(field, value string) error {
	return werrors.New(werrors.PhaseConfig, werrors.KindInvalidInput).
		Token(value).
		Detail("invalid %s", field).
		Build()
}
