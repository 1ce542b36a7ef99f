package tr0

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/waveform"
	werrors "github.com/wippyai/waveform/errors"
	"github.com/wippyai/waveform/header"
	"github.com/wippyai/waveform/internal/block"
	"github.com/wippyai/waveform/internal/mmap"
	"github.com/wippyai/waveform/numeric"
)

// source is a file whose header has been decoded.
type source struct {
	data  []byte
	order binary.ByteOrder
	meta  *waveform.Metadata
	width numeric.Width

	// dataOffset and dataIndex locate the first data block.
	dataOffset int
	dataIndex  int
}

func (s *source) framer() *block.Framer {
	return block.NewFramer(s.data, s.order, s.dataOffset, s.dataIndex)
}

// openSource checks the file kind, detects the byte order and parses the
// header, which may span several blocks. name is used only to refine the
// analysis kind from its extension.
func openSource(data []byte, name string, o *options) (*source, error) {
	if len(data) == 0 {
		return nil, werrors.Format(werrors.PhaseOpen, "empty file")
	}
	if data[0] >= 0x20 {
		return nil, werrors.New(werrors.PhaseOpen, werrors.KindFormat).
			Offset(0).
			Detail("ASCII format not supported").
			Build()
	}

	order, err := block.DetectOrder(data)
	if err != nil {
		return nil, err
	}

	f := block.NewFramer(data, order, 0, 0)
	var payload []byte
	owned := false
	for {
		b, err := f.Next()
		if err == io.EOF {
			return nil, werrors.New(werrors.PhaseHeader, werrors.KindFormat).
				Offset(len(data)).
				Block(f.Count()).
				Detail("header terminator %q not found before end of file", header.Terminator).
				Build()
		}
		if err != nil {
			return nil, err
		}
		o.metrics.Block(len(b.Payload))
		switch {
		case payload == nil:
			payload = b.Payload
		case !owned:
			// the first payload aliases data and must not be appended to
			payload = append(bytes.Clone(payload), b.Payload...)
			owned = true
		default:
			payload = append(payload, b.Payload...)
		}
		if bytes.Contains(payload, []byte(header.Terminator)) {
			break
		}
	}

	meta, err := header.Parse(payload)
	if err != nil {
		return nil, err
	}
	if meta.Analysis == waveform.Unknown && name != "" {
		meta.Analysis = waveform.AnalysisFromExtension(name)
	}

	o.logger.Debug("header parsed",
		zap.String("path", name),
		zap.Stringer("version", meta.Version),
		zap.Stringer("analysis", meta.Analysis),
		zap.String("order", order.String()),
		zap.Int("variables", meta.NumVariables),
		zap.Int("probes", meta.NumProbes),
		zap.Int("tables", meta.SweepCount),
		zap.Int("header_blocks", f.Count()),
	)

	return &source{
		data:       data,
		order:      order,
		meta:       meta,
		width:      numeric.WidthOf(meta.Version),
		dataOffset: f.Position(),
		dataIndex:  f.Count(),
	}, nil
}

// Read decodes the whole file at path.
func Read(path string, opts ...Option) (*waveform.Result, error) {
	o := buildOptions(opts)

	m, err := mmap.Open(path)
	if err != nil {
		o.metrics.Error(err)
		return nil, err
	}
	defer m.Close()

	return read(m.Bytes(), path, &o)
}

// ReadBytes decodes a whole file held in memory.
func ReadBytes(data []byte, opts ...Option) (*waveform.Result, error) {
	o := buildOptions(opts)
	return read(data, "", &o)
}

func read(data []byte, name string, o *options) (*waveform.Result, error) {
	start := time.Now()
	res, err := decodeAll(data, name, o)
	if err != nil {
		o.metrics.Error(err)
		o.logger.Debug("read failed", zap.String("path", name), zap.Error(err))
		return nil, err
	}
	o.metrics.ObserveDecode(time.Since(start).Seconds())
	return res, nil
}

func decodeAll(data []byte, name string, o *options) (*waveform.Result, error) {
	src, err := openSource(data, name, o)
	if err != nil {
		return nil, err
	}
	meta := src.meta

	// Framing is sequential; the payloads are then independent.
	f := src.framer()
	var payloads [][]byte
	for {
		b, err := f.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		o.metrics.Block(len(b.Payload))
		payloads = append(payloads, b.Payload)
	}

	blocks, err := numeric.DecodeBlocks(payloads, src.width, src.order, o.workers)
	if err != nil {
		var e *werrors.Error
		if errors.As(err, &e) && e.Block > 0 {
			e.Block += src.dataIndex
		}
		return nil, err
	}

	res := &waveform.Result{Metadata: *meta}
	asm := newAssembler(meta, werrors.PhaseRead)
	cols := newColumnBuilder(meta, selectAll(meta))
	rows := 0

	flush := func(sweep *float64) {
		t := waveform.NewDataTable(len(meta.Variables))
		t.SweepValue = sweep
		rows += cols.rows
		cols.flush(t.Set)
		res.Tables = append(res.Tables, t)
		o.metrics.Table()
	}

	for i, values := range blocks {
		if asm.complete() {
			o.logger.Warn("ignoring blocks after the last table",
				zap.String("path", name),
				zap.Int("blocks", len(blocks)-i),
			)
			break
		}
		seg := asm.consume(values)
		cols.append(seg.rows)
		if seg.ended {
			flush(seg.sweep)
		}
	}

	if !asm.complete() {
		last, err := asm.finish()
		if err != nil {
			return nil, err
		}
		if last {
			o.logger.Warn("last table has no end marker",
				zap.String("path", name),
				zap.Int("table", asm.table),
			)
			flush(asm.sweep)
		}
	}

	o.metrics.Rows("full", rows)
	o.logger.Debug("read complete",
		zap.String("path", name),
		zap.Int("bytes", len(data)),
		zap.Int("blocks", len(payloads)),
		zap.Int("tables", len(res.Tables)),
		zap.Int("rows", rows),
	)
	return res, nil
}
