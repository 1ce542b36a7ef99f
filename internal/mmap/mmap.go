// Package mmap exposes a read-only view of a whole file.
package mmap

import (
	"os"

	werrors "github.com/wippyai/waveform/errors"
)

// Mapping is a read-only view of a file's contents.
type Mapping struct {
	data   []byte
	mapped bool
}

// Open maps path read-only. Empty files yield an empty mapping.
func Open(path string) (*Mapping, error) {
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

	fi, err := f.Stat()
	if err != nil {
		return nil, werrors.IO(werrors.PhaseOpen, err, "stat "+path)
	}
	if fi.IsDir() {
		return nil, werrors.InvalidInput(werrors.PhaseOpen, path+" is a directory")
	}
	if fi.Size() == 0 {
		return &Mapping{}, nil
	}

	data, mapped, err := mapFile(f, fi.Size())
	if err != nil {
		return nil, werrors.IO(werrors.PhaseOpen, err, "map "+path)
	}
	return &Mapping{data: data, mapped: mapped}, nil
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (m *Mapping) Bytes() []byte {
	return m.data
}

// Len returns the file size.
func (m *Mapping) Len() int {
	return len(m.data)
}

// Close releases the mapping. It is safe to call more than once.
func (m *Mapping) Close() error {
	if m == nil || m.data == nil {
		return nil
	}
	data, mapped := m.data, m.mapped
	m.data, m.mapped = nil, false
	if !mapped {
		return nil
	}
	if err := unmap(data); err != nil {
		return werrors.IO(werrors.PhaseOpen, err, "unmap")
	}
	return nil
}
