package wire

import "testing"

func TestCursorPrimitives(t *testing.T) {
	w := NewWriter()
	w.PutU8(0xAB)
	w.PutU16(0x1234)
	w.PutI32(-7)
	w.PutF32(3.5)
	w.PutCString("hello")
	w.PutVec3(1, 2, 3)

	c := NewCursor(w.Bytes())

	u8, err := c.U8()
	if err != nil || u8 != 0xAB {
		t.Fatalf("U8 = %v, %v", u8, err)
	}
	u16, err := c.U16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("U16 = %v, %v", u16, err)
	}
	i32, err := c.I32()
	if err != nil || i32 != -7 {
		t.Fatalf("I32 = %v, %v", i32, err)
	}
	f32, err := c.F32()
	if err != nil || f32 != 3.5 {
		t.Fatalf("F32 = %v, %v", f32, err)
	}
	s, err := c.CString()
	if err != nil || s != "hello" {
		t.Fatalf("CString = %q, %v", s, err)
	}
	x, y, z, err := c.Vec3()
	if err != nil || x != 1 || y != 2 || z != 3 {
		t.Fatalf("Vec3 = %v,%v,%v, %v", x, y, z, err)
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", c.Remaining())
	}
}

func TestCursorUnderrun(t *testing.T) {
	c := NewCursor([]byte{1, 2})
	if _, err := c.U32(); err == nil {
		t.Fatal("expected underrun error reading u32 from 2 bytes")
	}
}

func TestCursorCStringRequiresTerminator(t *testing.T) {
	c := NewCursor([]byte{'a', 'b', 'c'})
	if _, err := c.CString(); err == nil {
		t.Fatal("expected error for unterminated string")
	}
}
