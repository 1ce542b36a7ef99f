// Package export writes streamed waveform rows to columnar files.
//
// Each chunk read from a tr0.Cursor becomes one Arrow record and one
// Parquet row group, so export memory stays bounded by the chunk size.
// Complex signals are split into "<name>.re" and "<name>.im" columns.
// Swept files gain a "sweep" column holding the table's sweep value and a
// "table" column holding its index.
package export

import (
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"go.uber.org/zap"

	"github.com/wippyai/waveform"
	werrors "github.com/wippyai/waveform/errors"
	"github.com/wippyai/waveform/metrics"
	"github.com/wippyai/waveform/tr0"
)

const (
	SweepColumn = "sweep"
	TableColumn = "table"
)

// Options configures Write.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// Codec is "snappy" (default), "zstd" or "none".
	Codec string
	// ChunkRows is the minimum rows per record; zero uses the cursor's
	// chunk size.
	ChunkRows int
}

// Summary counts what was written.
type Summary struct {
	Rows   int64
	Chunks int
}

// Schema returns the Arrow schema for the cursor's projected columns.
func Schema(c *tr0.Cursor) *arrow.Schema {
	meta := c.Metadata()
	vars := c.Columns()

	fields := make([]arrow.Field, 0, len(vars)+2)
	for i, v := range vars {
		if c.IsComplex(i) {
			fields = append(fields,
				arrow.Field{Name: v.Name + ".re", Type: arrow.PrimitiveTypes.Float64},
				arrow.Field{Name: v.Name + ".im", Type: arrow.PrimitiveTypes.Float64},
			)
			continue
		}
		fields = append(fields, arrow.Field{Name: v.Name, Type: arrow.PrimitiveTypes.Float64})
	}
	if meta.Swept() {
		fields = append(fields,
			arrow.Field{Name: SweepColumn, Type: arrow.PrimitiveTypes.Float64},
			arrow.Field{Name: TableColumn, Type: arrow.PrimitiveTypes.Int32},
		)
	}

	md := arrow.NewMetadata(
		[]string{"title", "analysis", "scale", "sweep", "version"},
		[]string{meta.Title, meta.Analysis.String(), meta.ScaleName, meta.SweepName, meta.Version.Token()},
	)
	return arrow.NewSchema(fields, &md)
}

// WriteFile exports every remaining chunk of c to a Parquet file at path.
func WriteFile(path string, c *tr0.Cursor, opts Options) (sum Summary, err error) {
	f, err := os.Create(path)
	if err != nil {
		return Summary{}, werrors.IO(werrors.PhaseWrite, err, "create parquet file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = werrors.IO(werrors.PhaseWrite, cerr, "close "+path)
		}
	}()

	sum, err = Write(f, c, opts)
	if err != nil {
		return sum, err
	}
	opts.Metrics.File("parquet")
	logger(opts).Debug("exported parquet",
		zap.String("path", path),
		zap.Int64("rows", sum.Rows),
		zap.Int("row_groups", sum.Chunks),
	)
	return sum, nil
}

// Write exports every remaining chunk of c as Parquet to w. A cursor error
// stops the export and is returned unchanged.
func Write(w io.Writer, c *tr0.Cursor, opts Options) (Summary, error) {
	var sum Summary

	codec, err := codecOf(opts.Codec)
	if err != nil {
		return sum, err
	}

	schema := Schema(c)
	props := parquet.NewWriterProperties(parquet.WithCompression(codec))
	// the stored arrow schema is what pqarrow readers return from Schema,
	// metadata included; the footer key/value pairs carry the same keys
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	fw, err := pqarrow.NewFileWriter(schema, w, props, arrowProps)
	if err != nil {
		return sum, werrors.IO(werrors.PhaseWrite, err, "create parquet writer")
	}

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	swept := c.Metadata().Swept()
	for chunk, err := range c.Chunks(opts.ChunkRows) {
		if err != nil {
			fw.Close()
			return sum, err
		}

		rec := record(b, chunk, swept)
		err = fw.Write(rec)
		rec.Release()
		if err != nil {
			fw.Close()
			return sum, werrors.IO(werrors.PhaseWrite, err, "write row group")
		}
		sum.Rows += int64(chunk.Len())
		sum.Chunks++
	}

	if err := fw.Close(); err != nil {
		return sum, werrors.IO(werrors.PhaseWrite, err, "close parquet writer")
	}
	return sum, nil
}

func record(b *array.RecordBuilder, chunk *waveform.DataChunk, swept bool) arrow.Record {
	n := chunk.Len()
	f := 0
	for i := range chunk.Names() {
		v, _ := chunk.Column(i)
		if v.IsComplex() {
			re := b.Field(f).(*array.Float64Builder)
			im := b.Field(f + 1).(*array.Float64Builder)
			re.Reserve(n)
			im.Reserve(n)
			for _, x := range v.Complex {
				re.UnsafeAppend(real(x))
				im.UnsafeAppend(imag(x))
			}
			f += 2
			continue
		}
		b.Field(f).(*array.Float64Builder).AppendValues(v.Real, nil)
		f++
	}

	if swept {
		sweep := b.Field(f).(*array.Float64Builder)
		table := b.Field(f + 1).(*array.Int32Builder)
		sweep.Reserve(n)
		table.Reserve(n)
		var value float64
		if chunk.SweepValue != nil {
			value = *chunk.SweepValue
		}
		for range n {
			sweep.UnsafeAppend(value)
			table.UnsafeAppend(int32(chunk.Table))
		}
	}
	return b.NewRecord()
}

func codecOf(name string) (compress.Compression, error) {
	switch name {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "none":
		return compress.Codecs.Uncompressed, nil
	}
	return compress.Codecs.Uncompressed, werrors.New(werrors.PhaseWrite, werrors.KindInvalidInput).
		Token(name).
		Detail("unknown parquet codec").
		Build()
}

func logger(o Options) *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
