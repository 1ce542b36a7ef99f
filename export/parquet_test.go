package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/waveform"
	werrors "github.com/wippyai/waveform/errors"
	"github.com/wippyai/waveform/internal/fixture"
	"github.com/wippyai/waveform/tr0"
)

func readTable(t *testing.T, data []byte) arrow.Table {
	t.Helper()
	pf, err := file.NewParquetReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { pf.Close() })

	r, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	require.NoError(t, err)
	tbl, err := r.ReadTable(context.Background())
	require.NoError(t, err)
	t.Cleanup(tbl.Release)
	return tbl
}

// readSchema returns the arrow schema a pqarrow reader reports for data.
// Tables read through ReadTable carry no schema metadata.
func readSchema(t *testing.T, data []byte) *arrow.Schema {
	t.Helper()
	pf, err := file.NewParquetReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer pf.Close()

	r, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	require.NoError(t, err)
	sc, err := r.Schema()
	require.NoError(t, err)
	return sc
}

func float64Column(t *testing.T, tbl arrow.Table, name string) []float64 {
	t.Helper()
	idx := tbl.Schema().FieldIndices(name)
	require.Len(t, idx, 1, "column %s", name)
	var out []float64
	for _, chunk := range tbl.Column(idx[0]).Data().Chunks() {
		out = append(out, chunk.(*array.Float64).Float64Values()...)
	}
	return out
}

func TestWrite_Transient(t *testing.T) {
	f := fixture.Transient(waveform.Extended64, 120, 2)
	f.BlockValues = 40
	c, err := tr0.NewStream(f.Bytes())
	require.NoError(t, err)

	var buf bytes.Buffer
	sum, err := Write(&buf, c, Options{ChunkRows: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 120, sum.Rows)
	assert.Equal(t, 3, sum.Chunks)

	tbl := readTable(t, buf.Bytes())
	assert.EqualValues(t, 120, tbl.NumRows())

	var names []string
	for _, fld := range tbl.Schema().Fields() {
		names = append(names, fld.Name)
	}
	assert.Equal(t, []string{"TIME", "v(in)", "v(out)", "i(vdd)"}, names)

	width := f.Meta.RowWidth()
	assert.Equal(t, fixture.Column(f.Tables[0], width, 0), float64Column(t, tbl, "TIME"))
	assert.Equal(t, fixture.Column(f.Tables[0], width, 2), float64Column(t, tbl, "v(out)"))
}

func TestWrite_ComplexSplitsColumns(t *testing.T) {
	f := fixture.AC(waveform.Extended64, 30, 1)
	c, err := tr0.NewStream(f.Bytes())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Write(&buf, c, Options{Codec: "zstd"})
	require.NoError(t, err)

	tbl := readTable(t, buf.Bytes())
	width := f.Meta.RowWidth()
	// HERTZ | v(in).re v(in).im | i(vin)
	assert.Equal(t, fixture.Column(f.Tables[0], width, 1), float64Column(t, tbl, "v(in).re"))
	assert.Equal(t, fixture.Column(f.Tables[0], width, 2), float64Column(t, tbl, "v(in).im"))
	assert.Equal(t, fixture.Column(f.Tables[0], width, 3), float64Column(t, tbl, "i(vin)"))
	assert.Empty(t, tbl.Schema().FieldIndices("v(in)"))
}

func TestWrite_SweptProjection(t *testing.T) {
	f := fixture.Sweep(fixture.Transient(waveform.Standard32, 10, 2), "temper", -40, 125)
	c, err := tr0.NewStream(f.Bytes(), tr0.WithSignals("v(out)"))
	require.NoError(t, err)

	var buf bytes.Buffer
	sum, err := Write(&buf, c, Options{Codec: "none"})
	require.NoError(t, err)
	assert.EqualValues(t, 20, sum.Rows)

	tbl := readTable(t, buf.Bytes())
	assert.Equal(t, 4, int(tbl.NumCols()))
	assert.Empty(t, tbl.Schema().FieldIndices("v(in)"))

	sweeps := float64Column(t, tbl, SweepColumn)
	require.Len(t, sweeps, 20)
	assert.Equal(t, -40.0, sweeps[0])
	assert.Equal(t, 125.0, sweeps[19])

	md := readSchema(t, buf.Bytes()).Metadata()
	v, ok := md.GetValue("sweep")
	require.True(t, ok)
	assert.Equal(t, "temper", v)
	v, ok = md.GetValue("version")
	require.True(t, ok)
	assert.Equal(t, "9601", v)

	pf, err := file.NewParquetReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer pf.Close()
	kv := pf.MetaData().KeyValueMetadata()
	require.NotNil(t, kv.FindValue("sweep"))
	assert.Equal(t, "temper", *kv.FindValue("sweep"))
	require.NotNil(t, kv.FindValue("title"))
}

func TestWrite_StopsOnCursorError(t *testing.T) {
	f := fixture.Transient(waveform.Standard32, 100, 1)
	f.OmitLastSentinel = true
	// the file ends inside the last row
	f.Tables[0] = f.Tables[0][:len(f.Tables[0])-1]

	c, err := tr0.NewStream(f.Bytes())
	require.NoError(t, err)
	_, err = Write(&bytes.Buffer{}, c, Options{})
	require.ErrorIs(t, err, werrors.ErrDataIntegrity)
}

func TestWrite_UnknownCodec(t *testing.T) {
	c, err := tr0.NewStream(fixture.Transient(waveform.Standard32, 5, 1).Bytes())
	require.NoError(t, err)
	_, err = Write(&bytes.Buffer{}, c, Options{Codec: "lzo"})
	require.ErrorIs(t, err, werrors.ErrInvalidInput)
}

func TestWriteFile(t *testing.T) {
	f := fixture.Transient(waveform.Standard32, 40, 1)
	path := filepath.Join(t.TempDir(), "in.tr0")
	require.NoError(t, f.WriteFile(path))

	c, err := tr0.OpenStream(path)
	require.NoError(t, err)
	defer c.Close()

	out := filepath.Join(t.TempDir(), "in.parquet")
	sum, err := WriteFile(out, c, Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 40, sum.Rows)

	// the file is closed and complete once WriteFile returns
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	tbl := readTable(t, data)
	assert.EqualValues(t, 40, tbl.NumRows())
}

func TestWriteFile_Errors(t *testing.T) {
	c, err := tr0.NewStream(fixture.Transient(waveform.Standard32, 5, 1).Bytes())
	require.NoError(t, err)

	_, err = WriteFile(filepath.Join(t.TempDir(), "missing", "out.parquet"), c, Options{})
	require.ErrorIs(t, err, werrors.ErrIO)

	var e *werrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, werrors.PhaseWrite, e.Phase)
}
