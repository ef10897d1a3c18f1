package net

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Wire framing: every message is [2B LE size][2B LE id][size-4 payload bytes],
// where size is the total frame length including the 4-byte header.
const (
	HeaderSize   = 4
	MaxFrameSize = 4096
)

// Frame is one decoded wire frame.
type Frame struct {
	ID      uint16
	Payload []byte
}

// ErrFrameBounds is returned when a header fails the size bounds. The caller
// drops the connection silently: a malformed header means the stream can no
// longer be trusted.
type ErrFrameBounds struct {
	Size uint16
}

func (e ErrFrameBounds) Error() string {
	return fmt.Sprintf("invalid frame size: %d", e.Size)
}

// ReadFrame reads one frame from r. Returns ErrFrameBounds when the declared
// size is under the header size or over MaxFrameSize.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, fmt.Errorf("read frame header: %w", err)
	}

	size := binary.LittleEndian.Uint16(header[0:2])
	id := binary.LittleEndian.Uint16(header[2:4])
	if size < HeaderSize || size > MaxFrameSize {
		return Frame{}, ErrFrameBounds{Size: size}
	}

	payloadLen := int(size) - HeaderSize
	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, fmt.Errorf("read frame payload (%d bytes): %w", payloadLen, err)
		}
	}
	return Frame{ID: id, Payload: payload}, nil
}

// WriteFrame writes one frame to w.
func WriteFrame(w io.Writer, id uint16, payload []byte) error {
	total := HeaderSize + len(payload)
	if total > MaxFrameSize {
		return fmt.Errorf("frame too large: %d", total)
	}

	buf := make([]byte, total)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(total))
	binary.LittleEndian.PutUint16(buf[2:4], id)
	copy(buf[HeaderSize:], payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// EncodeFrame returns the full on-wire bytes for a frame. Used by the
// session write queue so encoding happens once per send, off the socket lock.
func EncodeFrame(id uint16, payload []byte) []byte {
	total := HeaderSize + len(payload)
	buf := make([]byte, total)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(total))
	binary.LittleEndian.PutUint16(buf[2:4], id)
	copy(buf[HeaderSize:], payload)
	return buf
}
