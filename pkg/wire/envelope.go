package wire

import "fmt"

// Envelope is the common packet header shared by every NatNet message,
// §4.1: {u16 iMessage, u16 nDataBytes, payload[nDataBytes]}, little-endian,
// tightly packed.
type Envelope struct {
	MessageID  uint16
	DataBytes  []byte
}

// DecodeEnvelope strips the envelope off a raw datagram and returns the
// message id plus its payload slice. It does not interpret the payload.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	c := NewCursor(raw)
	msgID, err := c.U16()
	if err != nil {
		return Envelope{}, NewMalformedPacket(0, "short envelope header", err)
	}
	n, err := c.U16()
	if err != nil {
		return Envelope{}, NewMalformedPacket(msgID, "short envelope header", err)
	}
	if int(n) > MaxPayloadBytes {
		return Envelope{}, NewMalformedPacket(msgID, fmt.Sprintf("nDataBytes %d exceeds max %d", n, MaxPayloadBytes), nil)
	}
	payload, err := c.Bytes(int(n))
	if err != nil {
		return Envelope{}, NewMalformedPacket(msgID, "payload shorter than nDataBytes", err)
	}
	if c.Remaining() != 0 {
		return Envelope{}, NewMalformedPacket(msgID, fmt.Sprintf("trailing %d bytes beyond nDataBytes", c.Remaining()), nil)
	}
	return Envelope{MessageID: msgID, DataBytes: payload}, nil
}

// EncodeEnvelope wraps payload in the {iMessage, nDataBytes, payload} header.
func EncodeEnvelope(messageID uint16, payload []byte) []byte {
	w := NewWriter()
	w.PutU16(messageID)
	w.PutU16(uint16(len(payload)))
	w.PutBytes(payload)
	return w.Bytes()
}

// checkConsumed verifies the decoder's cursor-conservation invariant: the
// consumed byte count must equal nDataBytes exactly (§4.1, §8 "Cursor
// conservation").
func checkConsumed(messageID uint16, c *Cursor) error {
	if c.Remaining() != 0 {
		return NewMalformedPacket(messageID,
			fmt.Sprintf("consumed %d of %d bytes, %d left over", c.Pos(), c.Len(), c.Remaining()), nil)
	}
	return nil
}
