package engine

import "fmt"

// HandshakeTimeout is returned by Connect when no PingResponse arrived
// after three attempts (§4.3).
type HandshakeTimeout struct {
	Attempts int
}

func (e *HandshakeTimeout) Error() string {
	return fmt.Sprintf("no ping response after %d attempts", e.Attempts)
}

// ConnectError wraps any failure during Connect, distinguishing
// configuration problems from handshake timeouts for callers that want to
// branch on the cause (§4.5 connect -> Result<(), ConnectError>).
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string { return "connect: " + e.Err.Error() }

func (e *ConnectError) Unwrap() error { return e.Err }
