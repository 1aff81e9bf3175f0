package tool

import (
	"errors"
	"fmt"
	"net"
)

// ErrPortUnavailable indicates the file server could not get a loopback port.
// Fatal to the current start attempt, not to the process.
var ErrPortUnavailable = errors.New("no loopback port available")

// PickFreePort asks the kernel for a free loopback TCP port. The port is
// released before returning, so a tiny race with other local processes
// remains; the file server reports bind failure if it loses it.
func PickFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPortUnavailable, err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port, nil
}
