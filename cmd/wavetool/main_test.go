package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	werrors "github.com/wippyai/waveform/errors"
	"github.com/wippyai/waveform/raw"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp()
	a.stdout = &out
	err := a.execute(append([]string{"--log-level", "error"}, args...))
	return out.String(), err
}

func synth(t *testing.T, name string, args ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	_, err := run(t, append([]string{"synth"}, append(args, path)...)...)
	require.NoError(t, err)
	return path
}

func TestInfo(t *testing.T) {
	path := synth(t, "inv.tr0", "--points", "64", "--signals", "2")

	out, err := run(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Version:   9601 (standard32)")
	assert.Contains(t, out, "Analysis:  transient")
	assert.Contains(t, out, "Scale:     TIME")
	assert.Contains(t, out, "v(out)")
	assert.Contains(t, out, "Table 0: 64 rows")
}

func TestInfo_HeaderOnlySweep(t *testing.T) {
	path := synth(t, "amp.ac0", "--analysis", "ac", "--version", "2001",
		"--sweep-name", "vdd", "--sweep-values", "1.8,3.3")

	out, err := run(t, "info", "--header-only", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Analysis:  ac")
	assert.Contains(t, out, "Sweep:     vdd (2 tables)")
	assert.NotContains(t, out, "Table 0")
}

func TestConvertAndInfoRaw(t *testing.T) {
	in := synth(t, "inv.tr0", "--points", "10")
	out := filepath.Join(t.TempDir(), "inv.raw")

	stdout, err := run(t, "convert", in, out)
	require.NoError(t, err)
	assert.Equal(t, out+"\n", stdout)

	res, err := raw.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 10, res.NumPoints())

	info, err := run(t, "info", out)
	require.NoError(t, err)
	assert.Contains(t, info, "Version:   raw")
	assert.Contains(t, info, "Table 0: 10 rows")
}

func TestStream(t *testing.T) {
	path := synth(t, "big.tr0", "--points", "2500", "--big-endian", "--block-values", "97")

	out, err := run(t, "stream", "--chunk-size", "1000", "--signals", "v(in)", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "chunk 0 table 0 rows "))
	assert.Equal(t, "total rows 2500", lines[3])
}

func TestExport(t *testing.T) {
	in := synth(t, "amp.ac0", "--analysis", "ac", "--points", "50")
	out := filepath.Join(t.TempDir(), "amp.parquet")

	stdout, err := run(t, "export", "--codec", "none", in, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "50 rows")
	assert.FileExists(t, out)
}

func TestConfigAndMetricsFile(t *testing.T) {
	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "metrics.prom")
	cfgPath := filepath.Join(dir, "wavetool.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"metrics:\n  namespace: wt\n  file: "+metricsPath+"\nstream:\n  chunk_size: 10\n"), 0o600))

	in := synth(t, "inv.tr0", "--points", "35", "--block-values", "40")
	out, err := run(t, "--config", cfgPath, "stream", in)
	require.NoError(t, err)
	assert.Contains(t, out, "total rows 35")

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wt_chunks_emitted_total 4")
}

func TestErrors(t *testing.T) {
	_, err := run(t, "info", filepath.Join(t.TempDir(), "missing.tr0"))
	require.ErrorIs(t, err, werrors.ErrNotFound)

	_, err = run(t, "synth", "--version", "1234", filepath.Join(t.TempDir(), "x.tr0"))
	require.ErrorIs(t, err, werrors.ErrUnsupportedVersion)

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "info", "x.tr0")
	require.ErrorIs(t, err, werrors.ErrNotFound)
}

func TestInspectModel(t *testing.T) {
	path := synth(t, "inv.tr0", "--points", "30", "--signals", "2", "--block-values", "20")
	m := newInspectModel(path, nil, 25)
	defer m.close()

	step := func(msg tea.Msg) {
		t.Helper()
		_, cmd := m.Update(msg)
		for cmd != nil {
			next := cmd()
			if _, ok := next.(tea.BatchMsg); ok {
				return
			}
			_, cmd = m.Update(next)
		}
	}

	step(m.Init()())
	require.NotNil(t, m.chunk)
	assert.Equal(t, 25, m.chunk.Len())
	assert.Contains(t, m.View(), "v(out)")

	step(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.Equal(t, 5, m.chunk.Len())

	step(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.True(t, m.atEnd)
	assert.Contains(t, m.View(), "end of file")

	// projection: only the scale and v(in) remain
	step(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.Equal(t, stateEditSignals, m.state)
	m.input.SetValue("v(in)")
	step(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.chunk)
	assert.Equal(t, []string{"TIME", "v(in)"}, m.chunk.Names())
	assert.NotContains(t, m.View(), "v(out)")
}

func TestParseSignals(t *testing.T) {
	assert.Equal(t, []string{"v(a)", "i(b)"}, parseSignals(" v(a), ,i(b) "))
	assert.Nil(t, parseSignals(""))
}
