package header

import (
	"errors"
	"strings"
	"testing"

	"github.com/wippyai/waveform"
	werrors "github.com/wippyai/waveform/errors"
)

func transientMeta() *waveform.Metadata {
	return &waveform.Metadata{
		Title:        "inverter chain",
		Date:         "10/16/2026 12:00:00",
		Version:      waveform.Standard32,
		NumVariables: 3,
		Variables: []waveform.Variable{
			{Name: "TIME"}, {Name: "v(out)"}, {Name: "i(vdd)"},
		},
	}
}

func TestParseTransient(t *testing.T) {
	m, err := Parse(Encode(transientMeta()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Version != waveform.Standard32 {
		t.Errorf("version: got %s", m.Version)
	}
	if m.Title != "inverter chain" {
		t.Errorf("title: got %q", m.Title)
	}
	if m.Date != "10/16/2026 12:00:00" {
		t.Errorf("date: got %q", m.Date)
	}
	if m.ScaleName != "TIME" {
		t.Errorf("scale: got %q", m.ScaleName)
	}
	if m.Analysis != waveform.Transient {
		t.Errorf("analysis: got %s", m.Analysis)
	}
	if m.Complex || m.Swept() || m.SweepCount != 1 {
		t.Errorf("unexpected complex=%v swept=%v count=%d", m.Complex, m.Swept(), m.SweepCount)
	}

	want := []waveform.VarKind{waveform.KindTime, waveform.KindVoltage, waveform.KindCurrent}
	if len(m.Variables) != len(want) {
		t.Fatalf("variables: got %d, want %d", len(m.Variables), len(want))
	}
	for i, k := range want {
		if m.Variables[i].Kind != k {
			t.Errorf("variable %d (%s): kind %s, want %s", i, m.Variables[i].Name, m.Variables[i].Kind, k)
		}
	}
	if m.RowWidth() != 3 {
		t.Errorf("row width: got %d", m.RowWidth())
	}
}

func TestParseVersions(t *testing.T) {
	for _, v := range []waveform.FormatVersion{waveform.Legacy32, waveform.Standard32, waveform.Extended64} {
		meta := transientMeta()
		meta.Version = v
		m, err := Parse(Encode(meta))
		if err != nil {
			t.Fatalf("%s: Parse: %v", v, err)
		}
		if m.Version != v {
			t.Errorf("got %s, want %s", m.Version, v)
		}
		if m.Version.ValueSize() != v.ValueSize() {
			t.Errorf("%s: value size %d", v, m.Version.ValueSize())
		}
	}
}

func TestParseUnsupportedVersion(t *testing.T) {
	payload := Encode(transientMeta())
	copy(payload[versionStart1:], "1234")

	_, err := Parse(payload)
	if !errors.Is(err, werrors.ErrUnsupportedVersion) {
		t.Fatalf("expected unsupported version, got %v", err)
	}
	var e *werrors.Error
	if !errors.As(err, &e) || !strings.Contains(e.Token, "1234") {
		t.Errorf("token not reported: %v", err)
	}
}

func TestParseComplexAC(t *testing.T) {
	meta := &waveform.Metadata{
		Version:      waveform.Extended64,
		Complex:      true,
		NumVariables: 3,
		NumProbes:    1,
		Variables: []waveform.Variable{
			{Name: "HERTZ"}, {Name: "v(in)"}, {Name: "v(out)"}, {Name: "i(r1)"},
		},
	}
	m, err := Parse(Encode(meta))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !m.Complex || m.Analysis != waveform.AC {
		t.Errorf("complex=%v analysis=%s", m.Complex, m.Analysis)
	}
	if m.Variables[0].Kind != waveform.KindFrequency {
		t.Errorf("scale kind: got %s", m.Variables[0].Kind)
	}
	if m.NumProbes != 1 || m.NumVariables != 3 {
		t.Errorf("counts: vars=%d probes=%d", m.NumVariables, m.NumProbes)
	}
	// scale + 2 complex pairs + 1 probe
	if m.RowWidth() != 6 {
		t.Errorf("row width: got %d", m.RowWidth())
	}
	if m.IsComplexColumn(0) || !m.IsComplexColumn(2) || m.IsComplexColumn(3) {
		t.Error("complex column classification")
	}
}

func TestParseSweep(t *testing.T) {
	for _, v := range []waveform.FormatVersion{waveform.Standard32, waveform.Extended64} {
		meta := transientMeta()
		meta.Version = v
		meta.SweepName = "temper"
		meta.SweepCount = 5

		m, err := Parse(Encode(meta))
		if err != nil {
			t.Fatalf("%s: Parse: %v", v, err)
		}
		if m.SweepName != "temper" || m.SweepCount != 5 {
			t.Errorf("%s: sweep %q x%d", v, m.SweepName, m.SweepCount)
		}
		if m.Analysis != waveform.Transient {
			t.Errorf("%s: analysis %s", v, m.Analysis)
		}
	}
}

func TestParseDCSweep(t *testing.T) {
	meta := &waveform.Metadata{
		NumVariables: 2,
		Variables:    []waveform.Variable{{Name: "volt"}, {Name: "v(out)"}},
		SweepName:    "vdd",
		SweepCount:   3,
	}
	m, err := Parse(Encode(meta))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Analysis != waveform.DC {
		t.Errorf("analysis: got %s", m.Analysis)
	}
	if m.Variables[0].Kind != waveform.KindUnknown {
		t.Errorf("scale kind: got %s", m.Variables[0].Kind)
	}
}

func TestParseBlankSweepSize(t *testing.T) {
	meta := transientMeta()
	meta.SweepName = "temper"
	payload := Encode(meta)
	copy(payload[sweepSizeStart1:sweepSizeStart1+sweepSizeLen], strings.Repeat(" ", sweepSizeLen))

	m, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.SweepCount != 1 {
		t.Errorf("sweep count: got %d, want 1", m.SweepCount)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{
			name: "no terminator",
			mutate: func(b []byte) []byte {
				return b[:len(b)-len(Terminator)]
			},
		},
		{
			name: "non numeric count",
			mutate: func(b []byte) []byte {
				copy(b[numVariablesStart:], "00x3")
				return b
			},
		},
		{
			name: "two dimensional sweep",
			mutate: func(b []byte) []byte {
				copy(b[numSweepsStart:], "0002")
				return b
			},
		},
		{
			name: "missing names",
			mutate: func(b []byte) []byte {
				return append(b[:VariablesStart], []byte("1 1 1 TIME "+Terminator)...)
			},
		},
		{
			name: "short fixed area",
			mutate: func(b []byte) []byte {
				return append(b[:100:100], []byte(Terminator)...)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.mutate(Encode(transientMeta())))
			if !errors.Is(err, werrors.ErrFormat) {
				t.Fatalf("expected format error, got %v", err)
			}
		})
	}
}

func TestParseIgnoresTrailingBytes(t *testing.T) {
	payload := append(Encode(transientMeta()), []byte("garbage after terminator")...)
	m, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Variables) != 3 {
		t.Errorf("variables: got %d", len(m.Variables))
	}
}

func TestNamesPreserveCase(t *testing.T) {
	m, err := Parse(Encode(transientMeta()))
	if err != nil {
		t.Fatal(err)
	}
	if m.Index("time") != 0 || m.Index("V(OUT)") != 1 {
		t.Error("case-insensitive lookup failed")
	}
	if m.Names()[0] != "TIME" {
		t.Errorf("name changed: %q", m.Names()[0])
	}
}
