package tunnel

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// The router control exchange is a line-oriented text protocol against the
// local anonymity router: a HELLO handshake, then SESSION CREATE forwarding
// the tunnel to a local port, answered by a SESSION STATUS line carrying the
// assigned destination. The session lives exactly as long as its control
// connection, so teardown is SESSION REMOVE plus closing the socket.

const (
	protoVersionMin = "3.1"
	protoVersionMax = "3.1"
)

var (
	// ErrRouterUnreachable: the router control service did not answer at all.
	// Fatal to the start attempt, not to the process; the user may retry.
	ErrRouterUnreachable = errors.New("router control service unreachable")
	// ErrTunnelProtocol: the router answered but the exchange went wrong.
	ErrTunnelProtocol = errors.New("tunnel protocol error")
)

// Control is a single control connection to the router. It is owned by the
// session event loop and must never be touched from another goroutine.
type Control struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
}

// DialControl connects to the router control endpoint.
func DialControl(addr string, timeout time.Duration) (*Control, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRouterUnreachable, err)
	}
	return &Control{
		conn:    conn,
		r:       bufio.NewReader(conn),
		timeout: timeout,
	}, nil
}

// Handshake performs the version negotiation. Must be the first exchange.
func (c *Control) Handshake() error {
	_, err := c.command("HELLO VERSION MIN=%s MAX=%s", protoVersionMin, protoVersionMax)
	return err
}

// CreateSession asks the router for a server tunnel forwarding inbound
// streams to 127.0.0.1:forwardPort, and returns the assigned destination
// (the externally reachable host name).
func (c *Control) CreateSession(id string, forwardPort, length int) (string, error) {
	reply, err := c.command(
		"SESSION CREATE STYLE=STREAM ID=%s FORWARD_HOST=127.0.0.1 FORWARD_PORT=%d INBOUND_LENGTH=%d OUTBOUND_LENGTH=%d",
		id, forwardPort, length, length)
	if err != nil {
		return "", err
	}
	dest := reply["DESTINATION"]
	if dest == "" {
		return "", fmt.Errorf("%w: SESSION STATUS carries no destination", ErrTunnelProtocol)
	}
	return dest, nil
}

// RemoveSession asks the router to tear the tunnel down.
func (c *Control) RemoveSession(id string) error {
	_, err := c.command("SESSION REMOVE ID=%s", id)
	return err
}

// Close drops the control connection, killing any session bound to it.
func (c *Control) Close() error {
	return c.conn.Close()
}

// command writes one request line and reads one reply line, holding the
// deadline for the whole round trip. Every reply carries RESULT=OK on
// success; anything else is a protocol failure with an optional MESSAGE.
func (c *Control) command(format string, args ...any) (map[string]string, error) {
	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTunnelProtocol, err)
	}
	if _, err := fmt.Fprintf(c.conn, format+"\n", args...); err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrTunnelProtocol, err)
	}
	line, err := c.r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrTunnelProtocol, err)
	}
	reply := parseReply(line)
	if reply["RESULT"] != "OK" {
		msg := reply["MESSAGE"]
		if msg == "" {
			msg = strings.TrimSpace(line)
		}
		return nil, fmt.Errorf("%w: %s", ErrTunnelProtocol, msg)
	}
	return reply, nil
}

// parseReply splits a reply line into KEY=VALUE pairs. Bare tokens (the verb
// words) are ignored; values never contain spaces in this exchange.
func parseReply(line string) map[string]string {
	out := make(map[string]string)
	for _, field := range strings.Fields(line) {
		if k, v, ok := strings.Cut(field, "="); ok {
			out[k] = v
		}
	}
	return out
}
