// Package fixture builds synthetic waveform files.
package fixture

import (
	"encoding/binary"
	"math"
	"os"
	"strconv"

	"github.com/wippyai/waveform"
	"github.com/wippyai/waveform/header"
	"github.com/wippyai/waveform/internal/block"
	"github.com/wippyai/waveform/numeric"
)

// DefaultBlockValues is the number of values per data block when unset.
const DefaultBlockValues = 1024

// File describes a synthetic waveform file.
type File struct {
	Order binary.ByteOrder
	Meta  *waveform.Metadata

	// Tables holds the flat row values of each table, RowWidth values per
	// row. Sweeps holds one sweep value per table when Meta is swept.
	Tables [][]float64
	Sweeps []float64

	// BlockValues splits each table's value stream into blocks of this many
	// values.
	BlockValues int
	// HeaderBlocks splits the metadata payload over this many blocks.
	HeaderBlocks int
	// OmitLastSentinel drops the end-of-table marker of the final table.
	OmitLastSentinel bool
}

// Bytes encodes the file.
func (f *File) Bytes() []byte {
	order := f.Order
	if order == nil {
		order = binary.LittleEndian
	}
	w := block.NewWriter(order)

	hdr := header.Encode(f.Meta)
	parts := f.HeaderBlocks
	if parts < 1 {
		parts = 1
	}
	size := (len(hdr) + parts - 1) / parts
	for start := 0; start < len(hdr); start += size {
		end := min(start+size, len(hdr))
		w.WriteBlock(hdr[start:end])
	}

	per := f.BlockValues
	if per < 1 {
		per = DefaultBlockValues
	}
	wide := f.Meta.Version == waveform.Extended64
	for t, rows := range f.Tables {
		var values []float64
		if f.Meta.Swept() {
			values = append(values, f.Sweeps[t])
		}
		values = append(values, rows...)
		if !(f.OmitLastSentinel && t == len(f.Tables)-1) {
			values = append(values, numeric.EndOfTable)
		}
		for start := 0; start < len(values); start += per {
			end := min(start+per, len(values))
			if wide {
				w.WriteFloat64Block(values[start:end])
			} else {
				w.WriteFloat32Block(values[start:end])
			}
		}
	}
	return w.Bytes()
}

// WriteFile encodes the file to path.
func (f *File) WriteFile(path string) error {
	return os.WriteFile(path, f.Bytes(), 0o644)
}

// Transient builds a real-valued file with a TIME scale, the given number
// of voltage signals and one current probe.
func Transient(version waveform.FormatVersion, points, signals int) *File {
	vars := []waveform.Variable{{Name: "TIME"}}
	for s := 0; s < signals; s++ {
		vars = append(vars, waveform.Variable{Name: voltageName(s)})
	}
	vars = append(vars, waveform.Variable{Name: "i(vdd)"})
	meta := &waveform.Metadata{
		Title:        "synthetic transient",
		Date:         "01/01/2026 00:00:00",
		Version:      version,
		NumVariables: signals + 1,
		NumProbes:    1,
		Variables:    vars,
	}

	rows := make([]float64, 0, points*len(vars))
	for p := 0; p < points; p++ {
		rows = append(rows, Narrow(float64(p)*1e-9))
		for s := 0; s < signals; s++ {
			rows = append(rows, Narrow(math.Sin(float64(p)/16+float64(s))))
		}
		rows = append(rows, Narrow(-1e-3*float64(p%7)))
	}
	return &File{Meta: meta, Tables: [][]float64{rows}}
}

// AC builds a complex frequency-domain file with a HERTZ scale, the given
// number of complex voltage signals and one real probe.
func AC(version waveform.FormatVersion, points, signals int) *File {
	vars := []waveform.Variable{{Name: "HERTZ"}}
	for s := 0; s < signals; s++ {
		vars = append(vars, waveform.Variable{Name: voltageName(s)})
	}
	vars = append(vars, waveform.Variable{Name: "i(vin)"})
	meta := &waveform.Metadata{
		Title:        "synthetic ac",
		Date:         "01/01/2026 00:00:00",
		Version:      version,
		Complex:      true,
		NumVariables: signals + 1,
		NumProbes:    1,
		Variables:    vars,
	}

	width := meta.RowWidth()
	rows := make([]float64, 0, points*width)
	for p := 0; p < points; p++ {
		rows = append(rows, Narrow(math.Pow(10, float64(p)/10)))
		for s := 0; s < signals; s++ {
			rows = append(rows, Narrow(1/float64(p+s+1)), Narrow(-float64(s)/float64(p+1)))
		}
		rows = append(rows, Narrow(float64(p)*1e-6))
	}
	return &File{Meta: meta, Tables: [][]float64{rows}}
}

// Sweep turns f into a swept file with one table per sweep value. Every
// table carries f's rows with the signal values offset by the sweep value.
func Sweep(f *File, name string, values ...float64) *File {
	meta := *f.Meta
	meta.SweepName = name
	meta.SweepCount = len(values)

	base := f.Tables[0]
	width := meta.RowWidth()
	out := &File{Order: f.Order, Meta: &meta, BlockValues: f.BlockValues, Sweeps: values}
	for _, sv := range values {
		rows := make([]float64, len(base))
		for i, v := range base {
			if i%width == 0 {
				rows[i] = v
				continue
			}
			rows[i] = Narrow(v + sv)
		}
		out.Tables = append(out.Tables, rows)
	}
	return out
}

// Narrow rounds v through float32 so it survives 32-bit storage exactly.
func Narrow(v float64) float64 {
	return float64(float32(v))
}

// Column extracts the real column at value offset col from flat rows.
func Column(rows []float64, width, col int) []float64 {
	out := make([]float64, 0, len(rows)/width)
	for i := col; i < len(rows); i += width {
		out = append(out, rows[i])
	}
	return out
}

func voltageName(i int) string {
	names := []string{"v(in)", "v(out)", "v(n1)", "v(n2)", "v(n3)", "v(n4)"}
	if i < len(names) {
		return names[i]
	}
	return "v(x" + strconv.Itoa(i) + ")"
}
