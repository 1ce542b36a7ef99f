package tr0

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/wippyai/waveform/metrics"
)

// DefaultChunkSize is the row count Chunks requests when given zero.
const DefaultChunkSize = 10000

// Option configures a reader, cursor or conversion.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	metrics   *metrics.Metrics
	signals   []string
	workers   int
	chunkSize int
	compress  bool
}

func defaultOptions() options {
	return options{
		logger:    zap.NewNop(),
		workers:   runtime.GOMAXPROCS(0),
		chunkSize: DefaultChunkSize,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = zap.NewNop()
		}
		o.logger = l
	}
}

// WithMetrics records reader activity into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithWorkers bounds the goroutines Read uses to decode blocks. Values
// below 2 decode on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSignals restricts a cursor to the named variables. The scale variable
// is always included. Names match case-insensitively.
func WithSignals(names ...string) Option {
	return func(o *options) {
		o.signals = append([]string(nil), names...)
	}
}

// WithChunkSize sets the row count used by Chunks when called with zero.
func WithChunkSize(rows int) Option {
	return func(o *options) {
		if rows > 0 {
			o.chunkSize = rows
		}
	}
}

// WithCompression makes Convert write zstd-compressed output.
func WithCompression(enabled bool) Option {
	return func(o *options) {
		o.compress = enabled
	}
}
