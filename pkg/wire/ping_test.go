package wire

import "testing"

func TestPingResponseRoundTrip(t *testing.T) {
	s := Sender{
		Name:          "Motive",
		Version:       [4]uint8{3, 1, 0, 0},
		NatNetVersion: [4]uint8{3, 1, 0, 0},
	}

	decoded, err := DecodePingResponse(EncodePingResponse(s))
	if err != nil {
		t.Fatalf("DecodePingResponse: %v", err)
	}
	if decoded != s {
		t.Errorf("decoded = %+v, want %+v", decoded, s)
	}
}

func TestPingResponseLongNameTruncatesAtBuffer(t *testing.T) {
	longName := make([]byte, 300)
	for i := range longName {
		longName[i] = 'x'
	}
	s := Sender{Name: string(longName)}
	decoded, err := DecodePingResponse(EncodePingResponse(s))
	if err != nil {
		t.Fatalf("DecodePingResponse: %v", err)
	}
	if len(decoded.Name) != 256 {
		t.Errorf("len(Name) = %d, want 256 (no NUL terminator fit in the fixed field)", len(decoded.Name))
	}
}

func TestPingEmptyPayload(t *testing.T) {
	if len(EncodePing()) != 0 {
		t.Errorf("EncodePing() should be empty")
	}
}
