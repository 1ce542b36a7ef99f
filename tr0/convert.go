package tr0

import (
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/waveform/raw"
)

// Convert reads the waveform file at in and writes it to out in the raw
// interchange format. A file with several sweep tables is written as one
// file per table, named <stem>_sweep<i><ext> after out. It returns the
// paths written.
func Convert(in, out string, opts ...Option) ([]string, error) {
	o := buildOptions(opts)

	res, err := Read(in, opts...)
	if err != nil {
		return nil, err
	}

	paths := TablePaths(out, len(res.Tables))
	for i, path := range paths {
		if err := raw.WriteFile(path, res, i, raw.Options{Compress: o.compress}); err != nil {
			o.metrics.Error(err)
			return paths[:i], err
		}
		o.metrics.File("raw")
		o.logger.Debug("wrote table",
			zap.String("path", path),
			zap.Int("table", i),
			zap.Int("rows", res.Tables[i].Len()),
		)
	}
	return paths, nil
}

// TablePaths returns the output path of each of n tables. A single table
// is written to out itself.
func TablePaths(out string, n int) []string {
	if n <= 1 {
		return []string{out}
	}
	ext := filepath.Ext(out)
	if ext == ".zst" {
		ext = filepath.Ext(strings.TrimSuffix(out, ext)) + ext
	}
	stem := strings.TrimSuffix(out, ext)
	paths := make([]string, n)
	for i := range paths {
		paths[i] = stem + "_sweep" + strconv.Itoa(i) + ext
	}
	return paths
}
