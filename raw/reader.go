package raw

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/wippyai/waveform"
	werrors "github.com/wippyai/waveform/errors"
	"github.com/wippyai/waveform/numeric"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// initialValues caps the value capacity reserved from header counts.
const initialValues = 1 << 16

type rawHeader struct {
	title     string
	date      string
	plotname  string
	complex   bool
	numVars   int
	numPoints int
	names     []string
	kinds     []string
}

// ReadFile reads a raw file, transparently decompressing zstd input.
func ReadFile(path string) (*waveform.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, werrors.New(werrors.PhaseOpen, werrors.KindNotFound).
				Token(path).
				Detail("file not found").
				Cause(err).
				Build()
		}
		return nil, werrors.IO(werrors.PhaseOpen, err, "open "+path)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a binary or ASCII raw stream. zstd-compressed input is
// detected by its magic number.
//
// In a complex file every variable after the scale comes back as a complex
// vector, including real variables that Write stored with a zero imaginary
// part.
func Read(r io.Reader) (*waveform.Result, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(zstdMagic))
	if err == nil && bytes.Equal(magic, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, werrors.IO(werrors.PhaseRead, err, "open zstd stream")
		}
		defer dec.Close()
		br = bufio.NewReader(dec)
	}

	hdr, binaryData, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	var cols []waveform.VectorData
	if binaryData {
		cols, err = readBinary(br, hdr)
	} else {
		cols, err = readASCII(br, hdr)
	}
	if err != nil {
		return nil, err
	}
	return buildResult(hdr, cols), nil
}

func readHeader(br *bufio.Reader) (*rawHeader, bool, error) {
	hdr := &rawHeader{}
	inVariables := false
	for {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, false, werrors.Format(werrors.PhaseHeader, "no Binary: or Values: section")
			}
			return nil, false, werrors.IO(werrors.PhaseHeader, err, "read raw header")
		}
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "Binary:":
			return hdr, true, hdr.validate()
		case trimmed == "Values:":
			return hdr, false, hdr.validate()
		case strings.HasPrefix(trimmed, "Title:"):
			hdr.title = strings.TrimSpace(strings.TrimPrefix(trimmed, "Title:"))
			inVariables = false
		case strings.HasPrefix(trimmed, "Date:"):
			hdr.date = strings.TrimSpace(strings.TrimPrefix(trimmed, "Date:"))
			inVariables = false
		case strings.HasPrefix(trimmed, "Plotname:"):
			hdr.plotname = strings.TrimSpace(strings.TrimPrefix(trimmed, "Plotname:"))
			inVariables = false
		case strings.HasPrefix(trimmed, "Flags:"):
			for _, f := range strings.Fields(strings.TrimPrefix(trimmed, "Flags:")) {
				if f == "complex" {
					hdr.complex = true
				}
			}
			inVariables = false
		case strings.HasPrefix(trimmed, "No. Variables:"):
			if hdr.numVars, err = headerInt(trimmed, "No. Variables:"); err != nil {
				return nil, false, err
			}
			inVariables = false
		case strings.HasPrefix(trimmed, "No. Points:"):
			if hdr.numPoints, err = headerInt(trimmed, "No. Points:"); err != nil {
				return nil, false, err
			}
			inVariables = false
		case strings.HasPrefix(trimmed, "Variables:"):
			inVariables = true
		case inVariables && trimmed != "":
			parts := strings.Fields(trimmed)
			if len(parts) >= 3 {
				hdr.names = append(hdr.names, parts[1])
				hdr.kinds = append(hdr.kinds, parts[2])
			}
			if len(hdr.names) >= hdr.numVars {
				inVariables = false
			}
		}
	}
}

func headerInt(line, prefix string) (int, error) {
	s := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, werrors.New(werrors.PhaseHeader, werrors.KindFormat).
			Token(s).
			Detail("%s must be a non-negative number", strings.TrimSuffix(prefix, ":")).
			Cause(err).
			Build()
	}
	return n, nil
}

func (h *rawHeader) validate() error {
	if h.numVars < 1 {
		return werrors.Format(werrors.PhaseHeader, "raw file declares no variables")
	}
	if len(h.names) != h.numVars {
		return werrors.Format(werrors.PhaseHeader,
			"raw file lists %d variables, header declares %d", len(h.names), h.numVars)
	}
	if h.numPoints > math.MaxInt/(h.numVars*h.per()*8) {
		return werrors.New(werrors.PhaseHeader, werrors.KindFormat).
			Token(strconv.Itoa(h.numPoints)).
			Detail("%d points of %d variables overflow", h.numPoints, h.numVars).
			Build()
	}
	return nil
}

// per returns the stored values per variable and point.
func (h *rawHeader) per() int {
	if h.complex {
		return 2
	}
	return 1
}

// readBinary reads the section one point at a time, so a point count larger
// than the data ends in an integrity error rather than a large allocation.
func readBinary(br *bufio.Reader, h *rawHeader) ([]waveform.VectorData, error) {
	width := h.numVars * h.per()
	point := make([]byte, width*8)
	values := make([]float64, 0, min(h.numPoints*width, initialValues))

	var err error
	for p := range h.numPoints {
		if _, rerr := io.ReadFull(br, point); rerr != nil {
			if errors.Is(rerr, io.ErrUnexpectedEOF) || errors.Is(rerr, io.EOF) {
				return nil, werrors.DataIntegrity(werrors.PhaseRead,
					"binary section shorter than %d points of %d variables, ends in point %d",
					h.numPoints, h.numVars, p)
			}
			return nil, werrors.IO(werrors.PhaseRead, rerr, "read raw data")
		}
		values, err = numeric.DecodeInto(values, point, numeric.Float64, binary.LittleEndian)
		if err != nil {
			return nil, err
		}
	}
	return splitColumns(values, h), nil
}

func splitColumns(values []float64, h *rawHeader) []waveform.VectorData {
	cols := make([]waveform.VectorData, h.numVars)
	if !h.complex {
		for v := range cols {
			col := make([]float64, h.numPoints)
			for p := range col {
				col[p] = values[p*h.numVars+v]
			}
			cols[v] = waveform.RealVector(col)
		}
		return cols
	}

	stride := 2 * h.numVars
	for v := range cols {
		if v == 0 {
			// the scale is real even in complex files
			col := make([]float64, h.numPoints)
			for p := range col {
				col[p] = values[p*stride]
			}
			cols[v] = waveform.RealVector(col)
			continue
		}
		col := make([]complex128, h.numPoints)
		for p := range col {
			base := p*stride + 2*v
			col[p] = complex(values[base], values[base+1])
		}
		cols[v] = waveform.ComplexVector(col)
	}
	return cols
}

// readASCII reads a Values: section. Each point starts with its index
// followed by the first value; the remaining variables follow one per line.
// Complex values are written "re,im".
func readASCII(br *bufio.Reader, h *rawHeader) ([]waveform.VectorData, error) {
	values := make([]float64, 0, min(h.numPoints*h.numVars*h.per(), initialValues))
	want := h.numPoints * h.numVars

	count := 0
	for count < want {
		line, err := br.ReadString('\n')
		fields := strings.Fields(line)
		if len(fields) > 0 {
			if count%h.numVars == 0 {
				if len(fields) < 2 {
					return nil, werrors.New(werrors.PhaseRead, werrors.KindFormat).
						Token(strings.TrimSpace(line)).
						Detail("point %d has no index", count/h.numVars).
						Build()
				}
				fields = fields[1:]
			}
			re, im, perr := parseASCIIValue(fields[0])
			if perr != nil {
				return nil, perr
			}
			values = append(values, re)
			if h.complex {
				values = append(values, im)
			}
			count++
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, werrors.IO(werrors.PhaseRead, err, "read raw values")
		}
	}
	if count < want {
		return nil, werrors.DataIntegrity(werrors.PhaseRead,
			"values section has %d of %d values", count, want)
	}
	return splitColumns(values, h), nil
}

func parseASCIIValue(s string) (float64, float64, error) {
	s = strings.Trim(s, "()")
	reStr, imStr, isComplex := strings.Cut(s, ",")
	re, err := strconv.ParseFloat(reStr, 64)
	if err != nil {
		return 0, 0, werrors.New(werrors.PhaseRead, werrors.KindFormat).
			Token(s).
			Detail("not a number").
			Cause(err).
			Build()
	}
	if !isComplex {
		return re, 0, nil
	}
	im, err := strconv.ParseFloat(imStr, 64)
	if err != nil {
		return 0, 0, werrors.New(werrors.PhaseRead, werrors.KindFormat).
			Token(s).
			Detail("imaginary part is not a number").
			Cause(err).
			Build()
	}
	return re, im, nil
}

func buildResult(h *rawHeader, cols []waveform.VectorData) *waveform.Result {
	meta := waveform.Metadata{
		Title:        h.title,
		Date:         h.date,
		Analysis:     waveform.AnalysisFromPlotName(h.plotname),
		ScaleName:    h.names[0],
		SweepCount:   1,
		NumVariables: h.numVars,
		Complex:      h.complex,
	}
	table := waveform.NewDataTable(h.numVars)
	for i, name := range h.names {
		meta.Variables = append(meta.Variables, waveform.Variable{
			Name: name,
			Kind: waveform.ParseVarKind(h.kinds[i]),
		})
		table.Set(name, cols[i])
	}
	return &waveform.Result{Metadata: meta, Tables: []*waveform.DataTable{table}}
}
