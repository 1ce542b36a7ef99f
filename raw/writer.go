// Package raw reads and writes the SPICE3 "raw" interchange format: a text
// header followed by little-endian float64 values, point-major.
package raw

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/wippyai/waveform"
	werrors "github.com/wippyai/waveform/errors"
)

// compressionLevel is the zstd level used for compressed output.
const compressionLevel = 3

// Options configures WriteFile.
type Options struct {
	// Compress wraps the output in a zstd stream.
	Compress bool
}

// Write encodes table tableIndex of r. Complex files store every variable
// as a (real, imaginary) pair; real variables get a zero imaginary part.
func Write(w io.Writer, r *waveform.Result, tableIndex int) error {
	t := r.Table(tableIndex)
	if t == nil {
		return werrors.New(werrors.PhaseWrite, werrors.KindInvalidInput).
			Detail("table %d out of range, result has %d", tableIndex, len(r.Tables)).
			Build()
	}

	names := t.Names()
	vectors := make([]waveform.VectorData, len(names))
	for i, name := range names {
		vectors[i], _ = t.Get(name)
	}
	points := t.Len()
	cplx := r.Metadata.Complex
	for _, v := range vectors {
		if v.IsComplex() {
			cplx = true
		}
		if v.Len() != points {
			return werrors.DataIntegrity(werrors.PhaseWrite,
				"vector lengths differ: %d and %d", v.Len(), points)
		}
	}

	bw := bufio.NewWriter(w)
	flags := "real"
	if cplx {
		flags = "complex"
	}
	fmt.Fprintf(bw, "Title: %s\n", r.Title)
	fmt.Fprintf(bw, "Date: %s\n", r.Date)
	fmt.Fprintf(bw, "Plotname: %s\n", r.Analysis.PlotName())
	fmt.Fprintf(bw, "Flags: %s\n", flags)
	fmt.Fprintf(bw, "No. Variables: %d\n", len(names))
	fmt.Fprintf(bw, "No. Points: %d\n", points)
	fmt.Fprintf(bw, "Variables:\n")
	for i, name := range names {
		kind := waveform.KindUnknown
		if j := r.Index(name); j >= 0 {
			kind = r.Variables[j].Kind
		}
		fmt.Fprintf(bw, "\t%d\t%s\t%s\n", i, name, kind)
	}
	fmt.Fprintf(bw, "Binary:\n")

	var buf [8]byte
	put := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		bw.Write(buf[:])
	}
	for p := 0; p < points; p++ {
		for _, v := range vectors {
			if !cplx {
				put(v.Real[p])
				continue
			}
			c := v.At(p)
			put(real(c))
			put(imag(c))
		}
	}

	if err := bw.Flush(); err != nil {
		return werrors.IO(werrors.PhaseWrite, err, "write raw data")
	}
	return nil
}

// WriteFile writes table tableIndex of r to path.
func WriteFile(path string, r *waveform.Result, tableIndex int, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return werrors.IO(werrors.PhaseWrite, err, "create "+path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = werrors.IO(werrors.PhaseWrite, cerr, "close "+path)
		}
	}()

	if !opts.Compress {
		return Write(f, r, tableIndex)
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
	if err != nil {
		return werrors.IO(werrors.PhaseWrite, err, "create zstd encoder")
	}
	if err := Write(enc, r, tableIndex); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return werrors.IO(werrors.PhaseWrite, err, "finish zstd stream")
	}
	return nil
}
