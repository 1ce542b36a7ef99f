package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"v(out)", "out"},
		{"V(X1.N2)", "X1.N2"},
		{"out", "out"},
		{"i(vdd)", "i(vdd)"},
		{"v()", "v()"},
		{"TIME", "TIME"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NodeName(tt.in), tt.in)
	}
}

func TestMetadataIndex(t *testing.T) {
	m := &Metadata{Variables: []Variable{
		{Name: "TIME"},
		{Name: "v(out)"},
		{Name: "in"},
		{Name: "v(in)"},
		{Name: "i(vdd)"},
	}}

	assert.Equal(t, 0, m.Index("time"))
	assert.Equal(t, 1, m.Index("V(OUT)"))
	assert.Equal(t, 1, m.Index("out"))
	assert.Equal(t, 1, m.Index("OUT"))
	// an exact name wins over a node match
	assert.Equal(t, 2, m.Index("in"))
	assert.Equal(t, 3, m.Index("v(in)"))
	assert.Equal(t, 4, m.Index("i(vdd)"))
	assert.Equal(t, -1, m.Index("vdd"))
}

func TestDataTableGetByNodeName(t *testing.T) {
	tbl := NewDataTable(2)
	tbl.Set("TIME", RealVector([]float64{0, 1}))
	tbl.Set("v(out)", RealVector([]float64{0.5, 1.5}))

	v, ok := tbl.Get("out")
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, 1.5}, v.Real)

	_, ok = tbl.Get("v(in)")
	assert.False(t, ok)
}
