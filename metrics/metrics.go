// Package metrics holds the Prometheus collectors updated by the readers.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	werrors "github.com/wippyai/waveform/errors"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "waveform"

// Metrics holds all Prometheus metrics for decoding and streaming.
type Metrics struct {
	BytesRead     prometheus.Counter
	BlocksFramed  prometheus.Counter
	RowsDecoded   *prometheus.CounterVec
	TablesRead    prometheus.Counter
	ChunksEmitted prometheus.Counter
	FilesWritten  *prometheus.CounterVec
	Errors        *prometheus.CounterVec
	DecodeSeconds prometheus.Histogram
}

// NewMetrics creates and registers all metrics with reg under namespace.
// An empty namespace uses DefaultNamespace.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{
		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Total bytes of waveform files consumed",
		}),
		BlocksFramed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_framed_total",
			Help:      "Total framed blocks read",
		}),
		RowsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_decoded_total",
			Help:      "Total rows assembled, by reader",
		}, []string{"reader"}),
		TablesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_read_total",
			Help:      "Total sweep tables completed",
		}),
		ChunksEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_emitted_total",
			Help:      "Total chunks returned by streaming cursors",
		}),
		FilesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_written_total",
			Help:      "Total output files written, by format",
		}, []string{"format"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total decode errors, by kind",
		}, []string{"kind"}),
		DecodeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_duration_seconds",
			Help:      "Time spent reading a whole file",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	reg.MustRegister(
		m.BytesRead,
		m.BlocksFramed,
		m.RowsDecoded,
		m.TablesRead,
		m.ChunksEmitted,
		m.FilesWritten,
		m.Errors,
		m.DecodeSeconds,
	)
	return m
}

// Block records one framed block of n payload bytes.
func (m *Metrics) Block(n int) {
	if m == nil {
		return
	}
	m.BlocksFramed.Inc()
	m.BytesRead.Add(float64(n))
}

// Rows records rows assembled by reader ("full" or "stream").
func (m *Metrics) Rows(reader string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsDecoded.WithLabelValues(reader).Add(float64(n))
}

// Table records a completed table.
func (m *Metrics) Table() {
	if m == nil {
		return
	}
	m.TablesRead.Inc()
}

// Chunk records an emitted chunk.
func (m *Metrics) Chunk() {
	if m == nil {
		return
	}
	m.ChunksEmitted.Inc()
}

// File records a written output file.
func (m *Metrics) File(format string) {
	if m == nil {
		return
	}
	m.FilesWritten.WithLabelValues(format).Inc()
}

// Error records err by its structured kind; unstructured errors count as
// "other". A nil err is ignored.
func (m *Metrics) Error(err error) {
	if m == nil || err == nil {
		return
	}
	kind := string(werrors.KindOf(err))
	if kind == "" {
		kind = "other"
	}
	m.Errors.WithLabelValues(kind).Inc()
}

// ObserveDecode records the duration of a full read in seconds.
func (m *Metrics) ObserveDecode(seconds float64) {
	if m == nil {
		return
	}
	m.DecodeSeconds.Observe(seconds)
}
