package block

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer builds framed blocks in a fixed byte order.
type Writer struct {
	buf   *bytes.Buffer
	order binary.ByteOrder
}

// NewWriter creates a Writer emitting blocks in order.
func NewWriter(order binary.ByteOrder) *Writer {
	return &Writer{buf: &bytes.Buffer{}, order: order}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteBlock frames payload: header, payload, tail.
func (w *Writer) WriteBlock(payload []byte) {
	var hdr [HeaderSize]byte
	w.order.PutUint32(hdr[0:4], Marker)
	w.order.PutUint32(hdr[8:12], Marker)
	w.order.PutUint32(hdr[12:16], uint32(len(payload)))
	w.buf.Write(hdr[:])
	w.buf.Write(payload)
	w.writeU32(uint32(len(payload)))
}

// WriteFloat32Block frames values narrowed to float32.
func (w *Writer) WriteFloat32Block(values []float64) {
	payload := make([]byte, 4*len(values))
	for i, v := range values {
		w.order.PutUint32(payload[4*i:], math.Float32bits(float32(v)))
	}
	w.WriteBlock(payload)
}

// WriteFloat64Block frames values as float64.
func (w *Writer) WriteFloat64Block(values []float64) {
	payload := make([]byte, 8*len(values))
	for i, v := range values {
		w.order.PutUint64(payload[8*i:], math.Float64bits(v))
	}
	w.WriteBlock(payload)
}

// WriteRaw appends bytes without framing, for building corrupt inputs.
func (w *Writer) WriteRaw(data []byte) {
	w.buf.Write(data)
}

func (w *Writer) writeU32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf.Write(b[:])
}
