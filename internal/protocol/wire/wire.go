// Package wire implements the payload encoding shared by every process.
// Fixed field order per message, little-endian integers, float32 coordinates,
// u16 length-prefixed UTF-8 strings, u16 count-prefixed repeated fields.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrTruncated is reported by Reader.Err when a read ran past the payload.
var ErrTruncated = errors.New("wire: truncated payload")

// Reader decodes wire fields from a packet payload.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first decode error, or nil.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail() {
	if r.err == nil {
		r.err = ErrTruncated
	}
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	if r.off+1 > len(r.data) {
		r.fail()
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	if r.off+2 > len(r.data) {
		r.fail()
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// ReadD reads 4 bytes as little-endian int32.
func (r *Reader) ReadD() int32 {
	if r.off+4 > len(r.data) {
		r.fail()
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadQ reads 8 bytes as little-endian uint64.
func (r *Reader) ReadQ() uint64 {
	if r.off+8 > len(r.data) {
		r.fail()
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

// ReadF reads 4 bytes as a little-endian IEEE-754 float32.
func (r *Reader) ReadF() float32 {
	if r.off+4 > len(r.data) {
		r.fail()
		return 0
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadBool reads 1 byte as a boolean (non-zero = true).
func (r *Reader) ReadBool() bool {
	return r.ReadC() != 0
}

// ReadS reads a u16 length-prefixed UTF-8 string.
func (r *Reader) ReadS() string {
	n := int(r.ReadH())
	if r.err != nil {
		return ""
	}
	if r.off+n > len(r.data) {
		r.fail()
		return ""
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s
}

// ReadStrings reads a u16 count-prefixed list of strings.
func (r *Reader) ReadStrings() []string {
	n := int(r.ReadH())
	if r.err != nil || n == 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.ReadS())
		if r.err != nil {
			return nil
		}
	}
	return out
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Writer builds a packet payload. All multi-byte writes are little-endian.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// WriteC writes 1 byte.
func (w *Writer) WriteC(v byte) {
	w.buf = append(w.buf, v)
}

// WriteH writes 2 bytes little-endian.
func (w *Writer) WriteH(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteD writes 4 bytes little-endian.
func (w *Writer) WriteD(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteQ writes 8 bytes little-endian.
func (w *Writer) WriteQ(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteF writes a float32 as 4 bytes little-endian.
func (w *Writer) WriteF(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteBool writes 1 byte (1 = true, 0 = false).
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteS writes a u16 length-prefixed UTF-8 string.
func (w *Writer) WriteS(s string) {
	w.WriteH(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteStrings writes a u16 count-prefixed list of strings.
func (w *Writer) WriteStrings(ss []string) {
	w.WriteH(uint16(len(ss)))
	for _, s := range ss {
		w.WriteS(s)
	}
}

// Bytes returns the encoded payload.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the current payload length.
func (w *Writer) Len() int {
	return len(w.buf)
}
