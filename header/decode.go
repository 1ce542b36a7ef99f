package header

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/wippyai/waveform"
	werrors "github.com/wippyai/waveform/errors"
)

// Parse decodes the metadata payload of a waveform file. The payload may be
// the concatenation of several header blocks; everything from Terminator on
// is ignored.
func Parse(payload []byte) (*waveform.Metadata, error) {
	end := bytes.Index(payload, []byte(Terminator))
	if end < 0 {
		return nil, werrors.Format(werrors.PhaseHeader, "terminator %q not found", Terminator)
	}
	buf := payload[:end]

	version, err := parseVersion(buf)
	if err != nil {
		return nil, err
	}

	numVariables, err := intField(buf, "variable count", numVariablesStart, numProbesStart)
	if err != nil {
		return nil, err
	}
	numProbes, err := intField(buf, "probe count", numProbesStart, numSweepsStart)
	if err != nil {
		return nil, err
	}
	numSweeps, err := intField(buf, "sweep count", numSweepsStart, numSweepsEnd)
	if err != nil {
		return nil, err
	}
	if numVariables < 1 {
		return nil, werrors.New(werrors.PhaseHeader, werrors.KindFormat).
			Offset(numVariablesStart).
			Detail("variable count %d must include the scale variable", numVariables).
			Build()
	}
	if numProbes < 0 {
		return nil, werrors.Format(werrors.PhaseHeader, "negative probe count %d", numProbes)
	}
	if numSweeps != 0 && numSweeps != 1 {
		return nil, werrors.New(werrors.PhaseHeader, werrors.KindFormat).
			Offset(numSweepsStart).
			Detail("only one-dimensional sweeps are supported, header declares %d", numSweeps).
			Build()
	}

	if len(buf) < VariablesStart {
		return nil, werrors.Format(werrors.PhaseHeader,
			"metadata is %d bytes, variable list starts at %d", len(buf), VariablesStart)
	}

	numVectors := numVariables + numProbes
	tokens := strings.Fields(string(buf[VariablesStart:]))
	need := 2 * numVectors
	if numSweeps == 1 {
		need++
	}
	if len(tokens) < need {
		return nil, werrors.Format(werrors.PhaseHeader,
			"variable list has %d tokens, %d vectors need %d", len(tokens), numVectors, need)
	}

	typeFlag, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, werrors.New(werrors.PhaseHeader, werrors.KindFormat).
			Offset(VariablesStart).
			Token(tokens[0]).
			Detail("type flag is not a number").
			Cause(err).
			Build()
	}

	m := &waveform.Metadata{
		Title:        titleField(buf),
		Date:         field(buf, dateStart, dateEnd),
		Version:      version,
		ScaleName:    tokens[numVectors],
		NumVariables: numVariables,
		NumProbes:    numProbes,
		Complex:      typeFlag == TypeComplex,
		SweepCount:   1,
	}

	m.Variables = make([]waveform.Variable, 0, numVectors)
	m.Variables = append(m.Variables, waveform.Variable{
		Name: m.ScaleName,
		Kind: inferKind(m.ScaleName, m.ScaleName, m.Complex),
	})
	for _, name := range tokens[numVectors+1 : 2*numVectors] {
		m.Variables = append(m.Variables, waveform.Variable{
			Name: name,
			Kind: inferKind(name, m.ScaleName, m.Complex),
		})
	}

	if numSweeps == 1 {
		m.SweepName = tokens[2*numVectors]
		start := sweepSizeStart1
		if version == waveform.Extended64 {
			start = sweepSizeStart2
		}
		size, err := intField(buf, "sweep size", start, start+sweepSizeLen)
		if err != nil {
			return nil, err
		}
		if size > 1 {
			m.SweepCount = size
		}
	}

	m.Analysis = inferAnalysis(m.ScaleName, m.Complex, numSweeps)
	return m, nil
}

func parseVersion(buf []byte) (waveform.FormatVersion, error) {
	post1 := field(buf, versionStart1, versionStart1+versionLen)
	post2 := field(buf, versionStart2, versionStart2+versionLen)
	switch {
	case post2 == tokenExtended:
		return waveform.Extended64, nil
	case post1 == tokenLegacy:
		return waveform.Legacy32, nil
	case post1 == tokenStandard:
		return waveform.Standard32, nil
	}
	return 0, werrors.UnsupportedVersion(field(buf, versionStart1, versionStart2+versionLen))
}

// field returns buf[start:end] up to the first NUL, trimmed of padding.
// Out-of-range fields read as empty.
func field(buf []byte, start, end int) string {
	if start >= len(buf) || start >= end {
		return ""
	}
	if end > len(buf) {
		end = len(buf)
	}
	s := buf[start:end]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(string(s))
}

func intField(buf []byte, name string, start, end int) (int, error) {
	s := field(buf, start, end)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, werrors.New(werrors.PhaseHeader, werrors.KindFormat).
			Offset(start).
			Token(s).
			Detail("%s is not a number", name).
			Cause(err).
			Build()
	}
	return n, nil
}

func titleField(buf []byte) string {
	return field(buf, titleStart, dateStart)
}

func isTimeScale(name string) bool {
	return strings.EqualFold(name, "time")
}

func isFrequencyScale(name string) bool {
	switch strings.ToLower(name) {
	case "hertz", "freq", "frequency":
		return true
	}
	return false
}

func inferKind(name, scale string, complex bool) waveform.VarKind {
	if strings.EqualFold(name, scale) {
		switch {
		case isTimeScale(scale):
			return waveform.KindTime
		case isFrequencyScale(scale), complex:
			return waveform.KindFrequency
		}
	}
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "v("):
		return waveform.KindVoltage
	case strings.HasPrefix(lower, "i("):
		return waveform.KindCurrent
	}
	return waveform.KindUnknown
}

func inferAnalysis(scale string, complex bool, numSweeps int) waveform.AnalysisKind {
	switch {
	case complex, isFrequencyScale(scale):
		return waveform.AC
	case isTimeScale(scale):
		return waveform.Transient
	case numSweeps > 0:
		return waveform.DC
	}
	return waveform.Unknown
}
