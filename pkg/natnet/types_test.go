package natnet

import "testing"

func TestDecodeTimecode(t *testing.T) {
	// hours=1, minutes=2, seconds=3, frames=4 packed one byte per field.
	tc := uint32(1)<<24 | uint32(2)<<16 | uint32(3)<<8 | uint32(4)
	got := DecodeTimecode(tc)
	want := SMPTETimecode{Hours: 1, Minutes: 2, Seconds: 3, Frames: 4}
	if got != want {
		t.Errorf("DecodeTimecode(%#x) = %+v, want %+v", tc, got, want)
	}
}
