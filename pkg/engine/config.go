package engine

import "time"

// Default wire addressing, §9 GLOSSARY / §9 "Wire protocol".
const (
	DefaultCommandPort    = 1510
	DefaultDataPort       = 1511
	DefaultMulticastGroup = "239.255.42.99"
)

// Config describes the endpoints and timing the Network Engine connects
// with.
type Config struct {
	Interface      string // interface name or literal IPv4 address
	ServerIP       string
	MulticastGroup string
	DataPort       int
	CommandPort    int

	// ConnectTimeout bounds the handshake (§4.3, §5). Zero uses the
	// built-in 3-attempt/100ms-per-attempt policy without an overall cap.
	ConnectTimeout time.Duration

	// RequestModelDefOnConnect sends REQUEST_MODELDEF immediately after a
	// successful handshake (§4.3 step 3).
	RequestModelDefOnConnect bool

	// KeepaliveInterval is how often PING and REQUEST_MODELDEF are
	// re-sent once connected (§4.3 "Steady state").
	KeepaliveInterval time.Duration
}

// DefaultConfig returns a Config with the standard NatNet ports and
// multicast group, a 10 second keepalive, and model-def requested on
// connect.
func DefaultConfig(iface, serverIP string) Config {
	return Config{
		Interface:                iface,
		ServerIP:                 serverIP,
		MulticastGroup:           DefaultMulticastGroup,
		DataPort:                 DefaultDataPort,
		CommandPort:              DefaultCommandPort,
		RequestModelDefOnConnect: true,
		KeepaliveInterval:        10 * time.Second,
	}
}
