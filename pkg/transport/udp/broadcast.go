package udp

import (
	"net"
	"syscall"
)

// enableBroadcast sets SO_BROADCAST on conn so the command socket can reach
// servers that reply via the subnet broadcast address rather than unicast.
func enableBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
