package tr0

import (
	"io"
	"iter"

	"go.uber.org/zap"

	"github.com/wippyai/waveform"
	werrors "github.com/wippyai/waveform/errors"
	"github.com/wippyai/waveform/internal/block"
	"github.com/wippyai/waveform/internal/mmap"
	"github.com/wippyai/waveform/numeric"
)

// Cursor reads a file in bounded chunks of rows. Memory held between calls
// is one block of decoded values plus less than one row of carry-over.
// A Cursor is not safe for concurrent use.
type Cursor struct {
	mapping *mmap.Mapping
	src     *source
	name    string
	opts    options

	framer *block.Framer
	asm    *assembler
	cols   *columnBuilder
	values []float64

	chunks   int
	finished bool
	closed   bool
	err      error
}

// OpenStream maps the file at path and parses its header. No data block is
// read until Advance.
func OpenStream(path string, opts ...Option) (*Cursor, error) {
	o := buildOptions(opts)

	m, err := mmap.Open(path)
	if err != nil {
		o.metrics.Error(err)
		return nil, err
	}
	c, err := newCursor(m.Bytes(), path, o)
	if err != nil {
		m.Close()
		return nil, err
	}
	c.mapping = m
	return c, nil
}

// NewStream streams a file held in memory.
func NewStream(data []byte, opts ...Option) (*Cursor, error) {
	return newCursor(data, "", buildOptions(opts))
}

func newCursor(data []byte, name string, o options) (*Cursor, error) {
	src, err := openSource(data, name, &o)
	if err != nil {
		o.metrics.Error(err)
		return nil, err
	}
	selected, err := selectSignals(src.meta, o.signals)
	if err != nil {
		o.metrics.Error(err)
		return nil, err
	}

	c := &Cursor{
		src:    src,
		name:   name,
		opts:   o,
		framer: src.framer(),
		asm:    newAssembler(src.meta, werrors.PhaseStream),
		cols:   newColumnBuilder(src.meta, selected),
	}
	o.logger.Debug("stream opened",
		zap.String("path", name),
		zap.Int("signals", len(selected)),
		zap.Int("data_offset", src.dataOffset),
	)
	return c, nil
}

// Metadata returns the parsed header.
func (c *Cursor) Metadata() *waveform.Metadata {
	return c.src.meta
}

// Columns returns the projected variables in chunk column order.
func (c *Cursor) Columns() []waveform.Variable {
	vars := make([]waveform.Variable, len(c.cols.selected))
	for i, idx := range c.cols.selected {
		vars[i] = c.src.meta.Variables[idx]
	}
	return vars
}

// IsComplex reports whether the projected variable at column i holds
// complex samples. It is false for a column out of range.
func (c *Cursor) IsComplex(i int) bool {
	if i < 0 || i >= len(c.cols.selected) {
		return false
	}
	return c.cols.layout.complex[c.cols.selected[i]]
}

// Advance returns the next chunk of at least minRows rows, or fewer when
// the current table or the file ends first. A chunk never spans tables.
// It returns io.EOF after the last row. Once Advance fails it keeps
// returning the same error; chunks already returned stay valid.
func (c *Cursor) Advance(minRows int) (*waveform.DataChunk, error) {
	if c.err != nil {
		return nil, c.err
	}
	if minRows < 1 {
		minRows = 1
	}

	for {
		if c.finished {
			return nil, io.EOF
		}

		table, sweep, err := c.fill(minRows)
		if err != nil {
			c.err = err
			c.opts.metrics.Error(err)
			c.opts.logger.Debug("stream failed", zap.String("path", c.name), zap.Error(err))
			return nil, err
		}
		if c.cols.rows == 0 {
			// an empty table yields no chunk
			continue
		}
		return c.emit(table, sweep), nil
	}
}

// fill frames blocks until minRows rows are buffered, the current table
// ends or the file ends.
func (c *Cursor) fill(minRows int) (table int, sweep *float64, err error) {
	table, sweep = c.asm.table, c.asm.sweep
	for c.cols.rows < minRows {
		if c.asm.complete() {
			if n := c.framer.Remaining(); n > 0 {
				c.opts.logger.Warn("ignoring data after the last table",
					zap.String("path", c.name),
					zap.Int("bytes", n),
				)
			}
			c.finished = true
			return table, sweep, nil
		}

		b, err := c.framer.Next()
		if err == io.EOF {
			last, err := c.asm.finish()
			if err != nil {
				return table, sweep, err
			}
			if last {
				c.opts.logger.Warn("last table has no end marker",
					zap.String("path", c.name),
					zap.Int("table", c.asm.table),
				)
			}
			c.finished = true
			return table, c.asm.sweep, nil
		}
		if err != nil {
			return table, sweep, err
		}
		c.opts.metrics.Block(len(b.Payload))

		c.values, err = numeric.DecodeInto(c.values[:0], b.Payload, c.src.width, c.src.order)
		if err != nil {
			if e, ok := err.(*werrors.Error); ok {
				e.Block = b.Index
				e.Offset = int64(b.Offset)
			}
			return table, sweep, err
		}

		seg := c.asm.consume(c.values)
		c.cols.append(seg.rows)
		table, sweep = seg.table, seg.sweep
		if seg.ended {
			if c.asm.complete() && c.framer.Remaining() == 0 {
				c.finished = true
			}
			return table, sweep, nil
		}
	}
	return table, sweep, nil
}

func (c *Cursor) emit(table int, sweep *float64) *waveform.DataChunk {
	chunk := waveform.NewDataChunk(c.chunks, table, len(c.cols.selected))
	chunk.SweepValue = sweep
	chunk.Start, chunk.End = c.cols.scale()
	rows := c.cols.rows
	c.cols.flush(chunk.Set)
	c.chunks++

	c.opts.metrics.Chunk()
	c.opts.metrics.Rows("stream", rows)
	return chunk
}

// Chunks iterates over the remaining chunks of at least minRows rows. Zero
// uses the configured chunk size. Iteration stops after the first error.
func (c *Cursor) Chunks(minRows int) iter.Seq2[*waveform.DataChunk, error] {
	if minRows <= 0 {
		minRows = c.opts.chunkSize
	}
	return func(yield func(*waveform.DataChunk, error) bool) {
		for {
			chunk, err := c.Advance(minRows)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// Reset rewinds to the first data block and clears any error. It has no
// effect on a closed cursor.
func (c *Cursor) Reset() {
	if c.closed {
		return
	}
	c.framer.Reset(c.src.dataOffset, c.src.dataIndex)
	c.asm.reset()
	c.cols.flush(func(string, waveform.VectorData) {})
	c.values = c.values[:0]
	c.chunks = 0
	c.finished = false
	c.err = nil
}

// Pending returns the number of carried-over values from a row split
// across blocks.
func (c *Cursor) Pending() int {
	return len(c.asm.pending)
}

// Close releases the file mapping. Chunks remain valid.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.err = werrors.InvalidInput(werrors.PhaseStream, "cursor closed")
	if c.mapping == nil {
		return nil
	}
	err := c.mapping.Close()
	c.mapping = nil
	return err
}
