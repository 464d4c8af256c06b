// Package udp owns the two sockets the Network Engine speaks NatNet over:
// a multicast data socket and a connected unicast command socket (§4.3).
package udp

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
)

const recvSendBufferBytes = 1 << 20 // 1 MiB, best-effort (§4.3)

// ConfigurationError reports a failure to resolve the requested network
// interface (§4.3).
type ConfigurationError struct {
	Interface string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("resolve interface %q: %v", e.Interface, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// resolveInterface accepts either an interface name (e.g. "en0") or a
// literal IPv4 address and returns the matching net.Interface plus the
// local address to bind the command socket to.
func resolveInterface(iface string) (*net.Interface, net.IP, error) {
	if ifi, err := net.InterfaceByName(iface); err == nil {
		addrs, err := ifi.Addrs()
		if err != nil {
			return nil, nil, &ConfigurationError{Interface: iface, Err: err}
		}
		for _, a := range addrs {
			if ipNet, ok := a.(*net.IPNet); ok {
				if ip4 := ipNet.IP.To4(); ip4 != nil {
					return ifi, ip4, nil
				}
			}
		}
		return nil, nil, &ConfigurationError{Interface: iface, Err: fmt.Errorf("no IPv4 address on interface")}
	}

	ip := net.ParseIP(iface).To4()
	if ip == nil {
		return nil, nil, &ConfigurationError{Interface: iface, Err: fmt.Errorf("not an interface name or IPv4 address")}
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, nil, &ConfigurationError{Interface: iface, Err: err}
	}
	for i := range ifaces {
		addrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipNet, ok := a.(*net.IPNet); ok && ipNet.IP.Equal(ip) {
				return &ifaces[i], ip, nil
			}
		}
	}
	return nil, nil, &ConfigurationError{Interface: iface, Err: fmt.Errorf("no interface owns address %s", iface)}
}

// DataSocket is the multicast receive socket, bound to (wildcard, dataPort)
// and joined to multicastGroup on the selected interface.
type DataSocket struct {
	conn *net.UDPConn
	pc   *ipv4.PacketConn
}

// NewDataSocket opens and joins the multicast data socket.
func NewDataSocket(iface string, multicastGroup string, dataPort int) (*DataSocket, error) {
	ifi, _, err := resolveInterface(iface)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: dataPort})
	if err != nil {
		return nil, fmt.Errorf("listen data socket: %w", err)
	}
	_ = conn.SetReadBuffer(recvSendBufferBytes)
	_ = conn.SetWriteBuffer(recvSendBufferBytes)

	pc := ipv4.NewPacketConn(conn)
	group := &net.UDPAddr{IP: net.ParseIP(multicastGroup)}
	if err := pc.JoinGroup(ifi, group); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join multicast group %s on %s: %w", multicastGroup, ifi.Name, err)
	}

	return &DataSocket{conn: conn, pc: pc}, nil
}

// ReadFrom blocks (up to the socket's read deadline) for one datagram.
func (d *DataSocket) ReadFrom(buf []byte) (int, net.Addr, error) {
	return d.conn.ReadFrom(buf)
}

func (d *DataSocket) Close() error {
	_ = d.pc.Close()
	return d.conn.Close()
}

// CommandSocket is the unicast command socket: bound to (interfaceAddr, 0)
// with broadcast enabled, connected to (serverIP, commandPort).
type CommandSocket struct {
	conn *net.UDPConn
}

// NewCommandSocket opens the unicast command socket and connects it to the
// server's command port.
func NewCommandSocket(iface string, serverIP string, commandPort int) (*CommandSocket, error) {
	_, localIP, err := resolveInterface(iface)
	if err != nil {
		return nil, err
	}

	local := &net.UDPAddr{IP: localIP, Port: 0}
	remote := &net.UDPAddr{IP: net.ParseIP(serverIP), Port: commandPort}

	conn, err := net.DialUDP("udp4", local, remote)
	if err != nil {
		return nil, fmt.Errorf("dial command socket: %w", err)
	}
	_ = conn.SetReadBuffer(recvSendBufferBytes)
	_ = conn.SetWriteBuffer(recvSendBufferBytes)
	_ = enableBroadcast(conn) // best-effort, needed for older servers that reply via broadcast

	return &CommandSocket{conn: conn}, nil
}

// Send writes payload to the connected server.
func (c *CommandSocket) Send(payload []byte) error {
	_, err := c.conn.Write(payload)
	return err
}

// Read blocks (up to the socket's read deadline) for one datagram from the
// server.
func (c *CommandSocket) Read(buf []byte) (int, error) {
	return c.conn.Read(buf)
}

func (c *CommandSocket) Close() error {
	return c.conn.Close()
}

// LocalAddr returns the bound local address.
func (c *CommandSocket) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// Conn exposes the underlying *net.UDPConn for deadline management callers
// that need net.Conn's SetReadDeadline/SetDeadline directly.
func (d *DataSocket) Conn() *net.UDPConn    { return d.conn }
func (c *CommandSocket) Conn() *net.UDPConn { return c.conn }
