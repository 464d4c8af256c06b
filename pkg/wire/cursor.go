// Package wire implements the NatNet wire protocol: the packet envelope,
// Ping/PingResponse, FrameOfData and ModelDef encode/decode across protocol
// versions 2.0 through 3.1, as specified in §4.1. Decoding is pure and
// side-effect-free: it never touches a socket.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MaxPayloadBytes is the largest payload the envelope format allows (§4.1).
const MaxPayloadBytes = 100000

// Cursor is a bounds-checked little-endian reader over a byte slice. It
// replaces manual per-field memcpy arithmetic: every read advances the
// cursor and returns a descriptive error on underrun instead of panicking
// or silently reading garbage (spec §9 Design Notes).
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for reading from offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

func (c *Cursor) need(n int) error {
	if c.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d at offset %d", ErrUnderrun, n, c.Remaining(), c.pos)
	}
	return nil
}

// Skip advances the cursor by n bytes without interpreting them.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// Bytes copies out the next n bytes and advances the cursor.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.buf[c.pos:c.pos+n])
	c.pos += n
	return out, nil
}

// U8 reads one unsigned byte.
func (c *Cursor) U8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

// U16 reads a little-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

// I16 reads a little-endian int16.
func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

// U32 reads a little-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

// I32 reads a little-endian int32.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// F32 reads a little-endian IEEE-754 single-precision float.
func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// F64 reads a little-endian IEEE-754 double-precision float.
func (c *Cursor) F64() (float64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return math.Float64frombits(v), nil
}

// Vec3 reads three consecutive little-endian float32s.
func (c *Cursor) Vec3() (x, y, z float32, err error) {
	if x, err = c.F32(); err != nil {
		return
	}
	if y, err = c.F32(); err != nil {
		return
	}
	z, err = c.F32()
	return
}

// CString reads a NUL-terminated string. The terminator is consumed but not
// included in the returned string.
func (c *Cursor) CString() (string, error) {
	start := c.pos
	for c.pos < len(c.buf) {
		if c.buf[c.pos] == 0 {
			s := string(c.buf[start:c.pos])
			c.pos++
			return s, nil
		}
		c.pos++
	}
	return "", fmt.Errorf("%w: unterminated string starting at offset %d", ErrUnderrun, start)
}

// Writer is the encode-side counterpart to Cursor: it appends
// little-endian fields to a growing byte slice. Used by the encoder half
// of the codec (test/round-trip support, §8).
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// PutU8 appends one byte.
func (w *Writer) PutU8(v uint8) { w.buf = append(w.buf, v) }

// PutU16 appends a little-endian uint16.
func (w *Writer) PutU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutI16 appends a little-endian int16.
func (w *Writer) PutI16(v int16) { w.PutU16(uint16(v)) }

// PutU32 appends a little-endian uint32.
func (w *Writer) PutU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutI32 appends a little-endian int32.
func (w *Writer) PutI32(v int32) { w.PutU32(uint32(v)) }

// PutF32 appends a little-endian float32.
func (w *Writer) PutF32(v float32) { w.PutU32(math.Float32bits(v)) }

// PutF64 appends a little-endian float64.
func (w *Writer) PutF64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf = append(w.buf, b[:]...)
}

// PutVec3 appends three consecutive little-endian float32s.
func (w *Writer) PutVec3(x, y, z float32) {
	w.PutF32(x)
	w.PutF32(y)
	w.PutF32(z)
}

// PutCString appends s followed by a NUL terminator.
func (w *Writer) PutCString(s string) {
	w.buf = append(w.buf, []byte(s)...)
	w.buf = append(w.buf, 0)
}

// PutBytes appends b verbatim.
func (w *Writer) PutBytes(b []byte) { w.buf = append(w.buf, b...) }
