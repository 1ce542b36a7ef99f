package tr0

import (
	"github.com/wippyai/waveform"
	werrors "github.com/wippyai/waveform/errors"
	"github.com/wippyai/waveform/numeric"
)

// segment is what one data block contributes to the current table.
type segment struct {
	rows  []float64 // whole rows only
	sweep *float64
	table int
	ended bool
}

// assembler turns per-block value runs into whole rows, tracking table
// boundaries. A partial row at the end of a block is carried into the next
// one; pending never holds a full row.
type assembler struct {
	meta    *waveform.Metadata
	phase   werrors.Phase
	width   int
	pending []float64
	sweep   *float64
	table   int
	started bool
}

func newAssembler(meta *waveform.Metadata, phase werrors.Phase) *assembler {
	return &assembler{
		meta:    meta,
		phase:   phase,
		width:   meta.RowWidth(),
		pending: make([]float64, 0, meta.RowWidth()),
	}
}

func (a *assembler) reset() {
	a.pending = a.pending[:0]
	a.sweep = nil
	a.table = 0
	a.started = false
}

// complete reports whether every declared table has ended.
func (a *assembler) complete() bool {
	return a.table >= a.meta.SweepCount
}

// consume appends the values of one block. Values after an end-of-table
// marker belong to no table and are dropped.
func (a *assembler) consume(values []float64) segment {
	if !a.started {
		if a.meta.Swept() {
			if len(values) == 0 {
				return segment{table: a.table}
			}
			v := values[0]
			a.sweep = &v
			values = values[1:]
		}
		a.started = true
	}
	seg := segment{table: a.table, sweep: a.sweep}

	if len(a.pending) > 0 {
		need := a.width - len(a.pending)
		if len(values) < need {
			a.pending = append(a.pending, values...)
			return seg
		}
		seg.rows = append(seg.rows, a.pending...)
		seg.rows = append(seg.rows, values[:need]...)
		a.pending = a.pending[:0]
		values = values[need:]
	}

	whole := 0
	for whole < len(values) {
		if numeric.IsEndOfTable(values[whole]) {
			seg.rows = appendRows(seg.rows, values[:whole])
			seg.ended = true
			a.endTable()
			return seg
		}
		if len(values)-whole < a.width {
			break
		}
		whole += a.width
	}
	seg.rows = appendRows(seg.rows, values[:whole])
	a.pending = append(a.pending, values[whole:]...)
	return seg
}

// appendRows aliases rows when there is nothing to join; segments are
// consumed before the block's values are reused.
func appendRows(dst, rows []float64) []float64 {
	if dst == nil {
		return rows
	}
	return append(dst, rows...)
}

func (a *assembler) endTable() {
	a.table++
	a.sweep = nil
	a.started = false
}

// finish checks the state at end of file. It returns lastTable when the
// final table ran to end of file without its marker, which is accepted.
func (a *assembler) finish() (lastTable bool, err error) {
	if len(a.pending) > 0 {
		return false, werrors.DataIntegrity(a.phase,
			"file ends inside a row: %d of %d values", len(a.pending), a.width)
	}
	if a.complete() {
		return false, nil
	}
	if a.started && a.table == a.meta.SweepCount-1 {
		return true, nil
	}
	return false, werrors.DataIntegrity(a.phase,
		"file ends after %d of %d tables", a.table, a.meta.SweepCount)
}

// layout maps variables to their value offset within a row.
type layout struct {
	offsets []int
	complex []bool
}

func newLayout(meta *waveform.Metadata) layout {
	l := layout{
		offsets: make([]int, len(meta.Variables)),
		complex: make([]bool, len(meta.Variables)),
	}
	off := 0
	for i := range meta.Variables {
		l.offsets[i] = off
		l.complex[i] = meta.IsComplexColumn(i)
		if l.complex[i] {
			off += 2
		} else {
			off++
		}
	}
	return l
}

// columnBuilder accumulates whole rows into per-variable vectors for a
// selected subset of variables. Selection index 0 is always the scale.
type columnBuilder struct {
	meta     *waveform.Metadata
	layout   layout
	width    int
	selected []int
	real     [][]float64
	cplx     [][]complex128
	rows     int
}

func newColumnBuilder(meta *waveform.Metadata, selected []int) *columnBuilder {
	b := &columnBuilder{
		meta:     meta,
		layout:   newLayout(meta),
		width:    meta.RowWidth(),
		selected: selected,
		real:     make([][]float64, len(selected)),
		cplx:     make([][]complex128, len(selected)),
	}
	return b
}

func (b *columnBuilder) append(rows []float64) {
	n := len(rows) / b.width
	if n == 0 {
		return
	}
	for s, v := range b.selected {
		off := b.layout.offsets[v]
		if b.layout.complex[v] {
			col := b.cplx[s]
			if col == nil {
				col = make([]complex128, 0, n)
			}
			for r := 0; r < n; r++ {
				base := r*b.width + off
				col = append(col, complex(rows[base], rows[base+1]))
			}
			b.cplx[s] = col
			continue
		}
		col := b.real[s]
		if col == nil {
			col = make([]float64, 0, n)
		}
		for r := 0; r < n; r++ {
			col = append(col, rows[r*b.width+off])
		}
		b.real[s] = col
	}
	b.rows += n
}

// scale returns the first and last scale values accumulated.
func (b *columnBuilder) scale() (first, last float64) {
	col := b.real[0]
	if len(col) == 0 {
		return 0, 0
	}
	return col[0], col[len(col)-1]
}

// flush hands the accumulated vectors to set and starts empty ones.
func (b *columnBuilder) flush(set func(name string, v waveform.VectorData)) {
	for s, v := range b.selected {
		name := b.meta.Variables[v].Name
		if b.layout.complex[v] {
			col := b.cplx[s]
			if col == nil {
				col = []complex128{}
			}
			set(name, waveform.ComplexVector(col))
		} else {
			col := b.real[s]
			if col == nil {
				col = []float64{}
			}
			set(name, waveform.RealVector(col))
		}
		b.real[s] = nil
		b.cplx[s] = nil
	}
	b.rows = 0
}

// selectAll returns every variable index in column order.
func selectAll(meta *waveform.Metadata) []int {
	idx := make([]int, len(meta.Variables))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// selectSignals resolves a projection. The scale comes first, then the
// named variables in column order without duplicates.
func selectSignals(meta *waveform.Metadata, names []string) ([]int, error) {
	if len(names) == 0 {
		return selectAll(meta), nil
	}
	want := make([]bool, len(meta.Variables))
	want[0] = true
	for _, name := range names {
		i := meta.Index(name)
		if i < 0 {
			return nil, werrors.NotFound(werrors.PhaseStream, "signal", name)
		}
		want[i] = true
	}
	var idx []int
	for i, ok := range want {
		if ok {
			idx = append(idx, i)
		}
	}
	return idx, nil
}
