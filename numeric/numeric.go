// Package numeric converts raw block payloads into float64 samples.
package numeric

import (
	"encoding/binary"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/waveform"
	werrors "github.com/wippyai/waveform/errors"
)

// Width is the stored size of one value in bytes.
type Width int

const (
	Float32 Width = 4
	Float64 Width = 8
)

// EndOfTable is the value written in the scale position after the last row
// of a table.
const EndOfTable = 1e30

// IsEndOfTable reports whether v, read at a row start, ends the table.
func IsEndOfTable(v float64) bool {
	return v > 9e29
}

// WidthOf resolves the value width for a format version.
func WidthOf(v waveform.FormatVersion) Width {
	return Width(v.ValueSize())
}

// Count returns how many whole values fit in n bytes.
func (w Width) Count(n int) int {
	return n / int(w)
}

// Decode converts data into float64 values. float32 values are widened
// exactly. It fails only when len(data) is not a multiple of w.
func Decode(data []byte, w Width, order binary.ByteOrder) ([]float64, error) {
	return DecodeInto(make([]float64, 0, w.Count(len(data))), data, w, order)
}

// DecodeInto appends the values of data to dst.
func DecodeInto(dst []float64, data []byte, w Width, order binary.ByteOrder) ([]float64, error) {
	if w != Float32 && w != Float64 {
		return dst, werrors.InvalidInput(werrors.PhaseDecode, "value width must be 4 or 8")
	}
	if len(data)%int(w) != 0 {
		return dst, werrors.New(werrors.PhaseDecode, werrors.KindFormat).
			Detail("payload of %d bytes is not a multiple of %d", len(data), w).
			Build()
	}

	n := w.Count(len(data))
	if cap(dst)-len(dst) < n {
		grown := make([]float64, len(dst), len(dst)+n)
		copy(grown, dst)
		dst = grown
	}

	if w == Float32 {
		for i := 0; i < len(data); i += 4 {
			dst = append(dst, float64(math.Float32frombits(order.Uint32(data[i:]))))
		}
		return dst, nil
	}
	for i := 0; i < len(data); i += 8 {
		dst = append(dst, math.Float64frombits(order.Uint64(data[i:])))
	}
	return dst, nil
}

// DecodeBlocks decodes independent payloads with up to workers goroutines.
// The result holds one slice per payload, in payload order. workers <= 1
// decodes inline.
func DecodeBlocks(payloads [][]byte, w Width, order binary.ByteOrder, workers int) ([][]float64, error) {
	slots := make([][]float64, len(payloads))

	if workers <= 1 || len(payloads) < 2 {
		for i, p := range payloads {
			values, err := Decode(p, w, order)
			if err != nil {
				return nil, blockError(err, i)
			}
			slots[i] = values
		}
		return slots, nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, p := range payloads {
		g.Go(func() error {
			values, err := Decode(p, w, order)
			if err != nil {
				return blockError(err, i)
			}
			slots[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}

// Flatten concatenates decoded blocks.
func Flatten(blocks [][]float64) []float64 {
	total := 0
	for _, b := range blocks {
		total += len(b)
	}
	out := make([]float64, 0, total)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}

func blockError(err error, i int) error {
	if e, ok := err.(*werrors.Error); ok && e.Block == 0 {
		e.Block = i + 1
	}
	return err
}
