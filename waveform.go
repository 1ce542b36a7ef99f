package waveform

import (
	"strings"
)

// FormatVersion identifies the on-disk numeric layout of a waveform file.
type FormatVersion uint8

const (
	// Legacy32 is the "9007" layout with 32-bit values.
	Legacy32 FormatVersion = iota + 1
	// Standard32 is the "9601" layout with 32-bit values.
	Standard32
	// Extended64 is the "2001" layout with 64-bit values.
	Extended64
)

// ValueSize returns the width in bytes of one stored value.
func (v FormatVersion) ValueSize() int {
	if v == Extended64 {
		return 8
	}
	return 4
}

// Token returns the version string as it appears in the header.
func (v FormatVersion) Token() string {
	switch v {
	case Legacy32:
		return "9007"
	case Standard32:
		return "9601"
	case Extended64:
		return "2001"
	default:
		return ""
	}
}

func (v FormatVersion) String() string {
	switch v {
	case Legacy32:
		return "legacy32"
	case Standard32:
		return "standard32"
	case Extended64:
		return "extended64"
	default:
		return "unknown"
	}
}

// AnalysisKind is the simulation type that produced a file.
type AnalysisKind uint8

const (
	Unknown AnalysisKind = iota
	Transient
	AC
	DC
	Operating
	Noise
)

func (a AnalysisKind) String() string {
	switch a {
	case Transient:
		return "transient"
	case AC:
		return "ac"
	case DC:
		return "dc"
	case Operating:
		return "operating"
	case Noise:
		return "noise"
	default:
		return "unknown"
	}
}

// PlotName returns the interchange-format plot name for the analysis.
func (a AnalysisKind) PlotName() string {
	switch a {
	case Transient:
		return "Transient Analysis"
	case AC:
		return "AC Analysis"
	case DC:
		return "DC Analysis"
	case Operating:
		return "Operating Point"
	case Noise:
		return "Noise Analysis"
	default:
		return "Analysis"
	}
}

// AnalysisFromPlotName maps an interchange plot name back to an analysis kind.
func AnalysisFromPlotName(name string) AnalysisKind {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "transient"):
		return Transient
	case strings.Contains(n, "ac analysis"):
		return AC
	case strings.Contains(n, "dc"):
		return DC
	case strings.Contains(n, "operating"):
		return Operating
	case strings.Contains(n, "noise"):
		return Noise
	default:
		return Unknown
	}
}

// AnalysisFromExtension guesses the analysis kind from a file name such as
// "run.tr0", "run.ac1" or "run.sw0".
func AnalysisFromExtension(path string) AnalysisKind {
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 || dot == len(path)-1 {
		return Unknown
	}
	ext := strings.ToLower(path[dot+1:])
	switch {
	case strings.HasPrefix(ext, "tr"):
		return Transient
	case strings.HasPrefix(ext, "ac"):
		return AC
	case strings.HasPrefix(ext, "sw"):
		return DC
	default:
		return Unknown
	}
}

// VarKind classifies a variable by what it measures.
type VarKind uint8

const (
	KindUnknown VarKind = iota
	KindTime
	KindFrequency
	KindVoltage
	KindCurrent
)

func (k VarKind) String() string {
	switch k {
	case KindTime:
		return "time"
	case KindFrequency:
		return "frequency"
	case KindVoltage:
		return "voltage"
	case KindCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// ParseVarKind is the inverse of VarKind.String. Unrecognized names map to
// KindUnknown.
func ParseVarKind(s string) VarKind {
	switch strings.ToLower(s) {
	case "time":
		return KindTime
	case "frequency":
		return KindFrequency
	case "voltage":
		return KindVoltage
	case "current":
		return KindCurrent
	default:
		return KindUnknown
	}
}

// Variable is one named column of a waveform table.
type Variable struct {
	Name string
	Kind VarKind
}

// Metadata is the parsed header of a waveform file. It is not modified after
// parsing.
type Metadata struct {
	Title   string
	Date    string
	Version FormatVersion

	Analysis  AnalysisKind
	ScaleName string

	// Variables lists every column in on-disk order. Variables[0] is the
	// scale variable.
	Variables []Variable

	// SweepName is empty when the file is not swept.
	SweepName  string
	SweepCount int

	// NumVariables counts the scale plus the (possibly complex) node
	// variables; NumProbes counts trailing real-valued probe columns.
	NumVariables int
	NumProbes    int

	// Complex is set for frequency-domain files.
	Complex bool
}

// Swept reports whether each table is prefixed by a sweep value.
func (m *Metadata) Swept() bool {
	return m.SweepName != ""
}

// IsComplexColumn reports whether variable i occupies a (real, imaginary)
// pair on disk. The scale (i == 0) and probe columns are always real.
func (m *Metadata) IsComplexColumn(i int) bool {
	return m.Complex && i > 0 && i < m.NumVariables
}

// RowWidth returns the number of stored values per row.
func (m *Metadata) RowWidth() int {
	w := len(m.Variables)
	if m.Complex && m.NumVariables > 1 {
		w += m.NumVariables - 1
	}
	return w
}

// Index returns the position of the named variable, matching
// case-insensitively, or -1. A bare node name such as "out" also matches
// the voltage "v(out)" when no variable has that exact name.
func (m *Metadata) Index(name string) int {
	for i, v := range m.Variables {
		if strings.EqualFold(v.Name, name) {
			return i
		}
	}
	node := NodeName(name)
	for i, v := range m.Variables {
		if strings.EqualFold(NodeName(v.Name), node) {
			return i
		}
	}
	return -1
}

// NodeName strips a "v(...)" wrapper from a voltage name. Other names are
// returned unchanged.
func NodeName(name string) string {
	if len(name) > 3 && (name[0] == 'v' || name[0] == 'V') && name[1] == '(' && name[len(name)-1] == ')' {
		return name[2 : len(name)-1]
	}
	return name
}

// Names returns the variable names in column order.
func (m *Metadata) Names() []string {
	names := make([]string, len(m.Variables))
	for i, v := range m.Variables {
		names[i] = v.Name
	}
	return names
}
