package header

import (
	"bytes"
	"fmt"

	"github.com/wippyai/waveform"
)

// Encode builds a metadata payload for m, terminator included. Only the
// fields Parse reads are written; Analysis and variable kinds are inferred
// again on decode.
func Encode(m *waveform.Metadata) []byte {
	buf := bytes.Repeat([]byte{' '}, VariablesStart)

	numVectors := len(m.Variables)
	numProbes := m.NumProbes
	numVariables := numVectors - numProbes
	sweeps := 0
	if m.Swept() {
		sweeps = 1
	}

	putField(buf, numVariablesStart, 4, fmt.Sprintf("%04d", numVariables))
	putField(buf, numProbesStart, 4, fmt.Sprintf("%04d", numProbes))
	putField(buf, numSweepsStart, 4, fmt.Sprintf("%04d", sweeps))

	version := m.Version
	if version == 0 {
		version = Default
	}
	if version == waveform.Extended64 {
		putField(buf, versionStart2, versionLen, version.Token())
	} else {
		putField(buf, versionStart1, versionLen, version.Token())
	}

	putField(buf, titleStart, dateStart-titleStart, m.Title)
	putField(buf, dateStart, dateEnd-dateStart, m.Date)

	if sweeps == 1 {
		start := sweepSizeStart1
		if version == waveform.Extended64 {
			start = sweepSizeStart2
		}
		count := m.SweepCount
		if count < 1 {
			count = 1
		}
		putField(buf, start, sweepSizeLen, fmt.Sprintf("%d", count))
	}

	var tokens bytes.Buffer
	flag := TypeReal
	if m.Complex {
		flag = TypeComplex
	}
	fmt.Fprintf(&tokens, "%d", flag)
	for i := 1; i < numVectors; i++ {
		fmt.Fprintf(&tokens, " %d", TypeReal)
	}
	for _, v := range m.Variables {
		tokens.WriteByte(' ')
		tokens.WriteString(v.Name)
	}
	if sweeps == 1 {
		tokens.WriteByte(' ')
		tokens.WriteString(m.SweepName)
	}
	tokens.WriteString(" " + Terminator)

	return append(buf, tokens.Bytes()...)
}

// Default is the version Encode writes when none is set.
const Default = waveform.Standard32

func putField(buf []byte, start, n int, s string) {
	if len(s) > n {
		s = s[:n]
	}
	copy(buf[start:start+n], s)
}
