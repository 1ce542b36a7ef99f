package waveform

import "strings"

// VectorKind selects the populated variant of a VectorData.
type VectorKind uint8

const (
	RealKind VectorKind = iota
	ComplexKind
)

// VectorData holds one column of samples. Exactly one of Real or Complex is
// populated, as selected by Kind.
type VectorData struct {
	Real    []float64
	Complex []complex128
	Kind    VectorKind
}

// RealVector wraps real samples.
func RealVector(v []float64) VectorData {
	return VectorData{Kind: RealKind, Real: v}
}

// ComplexVector wraps complex samples.
func ComplexVector(v []complex128) VectorData {
	return VectorData{Kind: ComplexKind, Complex: v}
}

// IsComplex reports whether the vector holds complex samples.
func (v VectorData) IsComplex() bool {
	return v.Kind == ComplexKind
}

// Len returns the number of samples.
func (v VectorData) Len() int {
	if v.Kind == ComplexKind {
		return len(v.Complex)
	}
	return len(v.Real)
}

// At returns sample i as a complex number; real samples have a zero
// imaginary part.
func (v VectorData) At(i int) complex128 {
	if v.Kind == ComplexKind {
		return v.Complex[i]
	}
	return complex(v.Real[i], 0)
}

// columns is an ordered name -> vector mapping shared by tables and chunks.
type columns struct {
	vectors map[string]VectorData
	order   []string
}

func newColumns(n int) columns {
	return columns{
		vectors: make(map[string]VectorData, n),
		order:   make([]string, 0, n),
	}
}

func (c *columns) set(name string, v VectorData) {
	if _, ok := c.vectors[name]; !ok {
		c.order = append(c.order, name)
	}
	c.vectors[name] = v
}

// Get returns the named vector. Names match case-insensitively, and a bare
// node name matches its "v(...)" voltage.
func (c *columns) Get(name string) (VectorData, bool) {
	if v, ok := c.vectors[name]; ok {
		return v, true
	}
	for _, n := range c.order {
		if strings.EqualFold(n, name) {
			return c.vectors[n], true
		}
	}
	node := NodeName(name)
	for _, n := range c.order {
		if strings.EqualFold(NodeName(n), node) {
			return c.vectors[n], true
		}
	}
	return VectorData{}, false
}

// Column returns the vector at column position i.
func (c *columns) Column(i int) (VectorData, bool) {
	if i < 0 || i >= len(c.order) {
		return VectorData{}, false
	}
	return c.vectors[c.order[i]], true
}

// Names returns the column names in order.
func (c *columns) Names() []string {
	return append([]string(nil), c.order...)
}

// Vectors returns the underlying name -> vector map. Callers must not modify it.
func (c *columns) Vectors() map[string]VectorData {
	return c.vectors
}

// Len returns the number of rows.
func (c *columns) Len() int {
	if len(c.order) == 0 {
		return 0
	}
	return c.vectors[c.order[0]].Len()
}

// DataTable holds every variable for one sweep point (or the whole file if
// unswept). All vectors have equal length.
type DataTable struct {
	SweepValue *float64
	columns
}

// NewDataTable creates an empty table with room for n columns.
func NewDataTable(n int) *DataTable {
	return &DataTable{columns: newColumns(n)}
}

// Set adds or replaces a column, keeping first-insertion order.
func (t *DataTable) Set(name string, v VectorData) {
	t.set(name, v)
}

// Result is a fully materialized waveform file.
type Result struct {
	Tables []*DataTable
	Metadata
}

// Table returns table i, or nil when out of range.
func (r *Result) Table(i int) *DataTable {
	if i < 0 || i >= len(r.Tables) {
		return nil
	}
	return r.Tables[i]
}

// Get returns the named vector from the first table.
func (r *Result) Get(name string) (VectorData, bool) {
	if len(r.Tables) == 0 {
		return VectorData{}, false
	}
	return r.Tables[0].Get(name)
}

// NumPoints returns the row count of the first table.
func (r *Result) NumPoints() int {
	if len(r.Tables) == 0 {
		return 0
	}
	return r.Tables[0].Len()
}

// IsComplex reports whether any vector of the first table is complex.
func (r *Result) IsComplex() bool {
	if len(r.Tables) == 0 {
		return r.Metadata.Complex
	}
	for _, v := range r.Tables[0].vectors {
		if v.IsComplex() {
			return true
		}
	}
	return false
}

// DataChunk is a bounded run of consecutive rows from one table, produced by
// the streaming reader. Only projected variables are present; the scale
// variable is always present.
type DataChunk struct {
	SweepValue *float64
	columns

	Index int
	Table int

	// Start and End are the scale values of the first and last row.
	Start float64
	End   float64
}

// NewDataChunk creates an empty chunk with room for n columns.
func NewDataChunk(index, table, n int) *DataChunk {
	return &DataChunk{Index: index, Table: table, columns: newColumns(n)}
}

// Set adds or replaces a column, keeping first-insertion order.
func (c *DataChunk) Set(name string, v VectorData) {
	c.set(name, v)
}
