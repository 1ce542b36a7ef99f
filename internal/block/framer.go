package block

import (
	"encoding/binary"
	"fmt"
	"io"

	werrors "github.com/wippyai/waveform/errors"
)

const (
	// HeaderSize is the framed block header: marker, pad, marker, length.
	HeaderSize = 16
	// TailSize is the trailing copy of the payload length.
	TailSize = 4
	// Overhead is the framing cost of one block.
	Overhead = HeaderSize + TailSize
	// Marker is the endianness marker value in native order.
	Marker uint32 = 0x00000004
)

// DetectOrder decides the byte order of a file from the markers of its first
// block. Both markers must encode Marker in the same byte order.
func DetectOrder(data []byte) (binary.ByteOrder, error) {
	if len(data) < HeaderSize {
		return nil, werrors.New(werrors.PhaseFrame, werrors.KindIO).
			Offset(0).
			Detail("file shorter than one block header (%d bytes)", len(data)).
			Cause(io.ErrUnexpectedEOF).
			Build()
	}
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		if order.Uint32(data[0:4]) == Marker && order.Uint32(data[8:12]) == Marker {
			return order, nil
		}
	}
	return nil, werrors.New(werrors.PhaseFrame, werrors.KindFormat).
		Offset(0).
		Block(1).
		Token(fmt.Sprintf("%x/%x", data[0:4], data[8:12])).
		Detail("endianness markers invalid or disagree").
		Build()
}

// ReadBlock frames the block starting at offset and returns its payload and
// the offset of the following block. The payload aliases data.
func ReadBlock(data []byte, offset int, order binary.ByteOrder) (payload []byte, next int, err error) {
	return readBlock(data, offset, order, 0)
}

func readBlock(data []byte, offset int, order binary.ByteOrder, index int) ([]byte, int, error) {
	if offset+HeaderSize > len(data) {
		return nil, offset, truncated(offset, index, "block header")
	}
	hdr := data[offset : offset+HeaderSize]
	if order.Uint32(hdr[0:4]) != Marker || order.Uint32(hdr[8:12]) != Marker {
		return nil, offset, werrors.New(werrors.PhaseFrame, werrors.KindFormat).
			Offset(offset).
			Block(index).
			Token(fmt.Sprintf("%x/%x", hdr[0:4], hdr[8:12])).
			Detail("endianness markers do not match %s file order", order).
			Build()
	}

	length := int(order.Uint32(hdr[12:16]))
	start := offset + HeaderSize
	if length < 0 || length > len(data)-start {
		return nil, offset, truncated(offset, index, fmt.Sprintf("payload of %d bytes", length))
	}
	end := start + length
	if end+TailSize > len(data) {
		return nil, offset, truncated(end, index, "block tail")
	}

	tail := int(order.Uint32(data[end : end+TailSize]))
	if tail != length {
		return nil, offset, werrors.New(werrors.PhaseFrame, werrors.KindFormat).
			Offset(end).
			Block(index).
			Detail("tail %d does not match declared length %d", tail, length).
			Build()
	}
	return data[start:end], end + TailSize, nil
}

func truncated(offset, index int, what string) error {
	return werrors.New(werrors.PhaseFrame, werrors.KindIO).
		Offset(offset).
		Block(index).
		Detail("truncated %s", what).
		Cause(io.ErrUnexpectedEOF).
		Build()
}

// Block is one framed unit of a file.
type Block struct {
	Payload []byte
	// Offset is where the block header starts.
	Offset int
	// Index is 1-based over the whole file.
	Index int
}

// Framer walks consecutive blocks of a byte slice. It holds a plain offset
// into data; returned payloads are re-sliced from data on every call.
type Framer struct {
	data  []byte
	order binary.ByteOrder
	pos   int
	count int
}

// NewFramer creates a Framer positioned at offset. index is the number of
// blocks that precede offset, used only for error reporting.
func NewFramer(data []byte, order binary.ByteOrder, offset, index int) *Framer {
	return &Framer{data: data, order: order, pos: offset, count: index}
}

// Next frames the next block. It returns io.EOF when the data is exhausted
// exactly at a block boundary.
func (f *Framer) Next() (Block, error) {
	if f.pos >= len(f.data) {
		return Block{}, io.EOF
	}
	payload, next, err := readBlock(f.data, f.pos, f.order, f.count+1)
	if err != nil {
		return Block{}, err
	}
	b := Block{Payload: payload, Offset: f.pos, Index: f.count + 1}
	f.pos = next
	f.count++
	return b, nil
}

// Position returns the offset of the next block header.
func (f *Framer) Position() int {
	return f.pos
}

// Count returns how many blocks have been framed, including those before the
// starting offset.
func (f *Framer) Count() int {
	return f.count
}

// Remaining returns the number of unread bytes.
func (f *Framer) Remaining() int {
	return len(f.data) - f.pos
}

// Order returns the byte order used for framing.
func (f *Framer) Order() binary.ByteOrder {
	return f.order
}

// Reset moves the framer to offset, which must be a block boundary.
func (f *Framer) Reset(offset, index int) {
	f.pos = offset
	f.count = index
}
