package wire

// Sender is the PingResponse payload: the server's identity and version
// information (§4.1). The name/version arrays are fixed-size on the wire
// (256 and 4 bytes respectively); Name is trimmed of its NUL padding.
type Sender struct {
	Name          string
	Version       [4]uint8
	NatNetVersion [4]uint8
}

// DecodePingResponse parses a PingResponse payload. Receipt of a
// PingResponse is what latches the peer's NatNet version (§4.1); callers
// are expected to feed the returned Sender.NatNetVersion into whatever
// Version they gate subsequent decoding on.
func DecodePingResponse(payload []byte) (Sender, error) {
	c := NewCursor(payload)
	nameBytes, err := c.Bytes(256)
	if err != nil {
		return Sender{}, NewMalformedPacket(MsgPingResponse, "short sender name", err)
	}
	var s Sender
	s.Name = trimNulString(nameBytes)
	for i := range s.Version {
		v, err := c.U8()
		if err != nil {
			return Sender{}, NewMalformedPacket(MsgPingResponse, "short version", err)
		}
		s.Version[i] = v
	}
	for i := range s.NatNetVersion {
		v, err := c.U8()
		if err != nil {
			return Sender{}, NewMalformedPacket(MsgPingResponse, "short natnet version", err)
		}
		s.NatNetVersion[i] = v
	}
	if err := checkConsumed(MsgPingResponse, c); err != nil {
		return Sender{}, err
	}
	return s, nil
}

// EncodePingResponse serializes a Sender back into its wire payload.
func EncodePingResponse(s Sender) []byte {
	w := NewWriter()
	name := make([]byte, 256)
	copy(name, s.Name)
	w.PutBytes(name)
	for _, v := range s.Version {
		w.PutU8(v)
	}
	for _, v := range s.NatNetVersion {
		w.PutU8(v)
	}
	return w.Bytes()
}

// EncodePing returns the (empty) Ping payload.
func EncodePing() []byte { return nil }

func trimNulString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
