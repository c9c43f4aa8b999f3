// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"errors"
	"net"
)

func srvCliStr(isClient bool) string {
	if isClient {
		return "client"
	}
	return "server"
}

// splitBytes divides in into chunks of at most maxLen bytes. An empty
// input yields no chunks (the caller substitutes a single empty chunk
// where a zero-length message must still be framed).
func splitBytes(in []byte, maxLen int) [][]byte {
	if maxLen <= 0 {
		return [][]byte{in}
	}
	var out [][]byte
	for len(in) > 0 {
		n := maxLen
		if n > len(in) {
			n = len(in)
		}
		out = append(out, in[:n])
		in = in[n:]
	}
	return out
}

// netError translates a net.Error timeout into errDeadlineExceeded so
// callers can match with errors.Is regardless of the underlying
// net.PacketConn implementation.
func netError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errDeadlineExceeded
	}
	return err
}

// packetConnFromConn adapts an already-addressed net.Conn — such as the
// per-peer connection pion/transport/v3/udp's demultiplexing Listener
// hands out on Accept — to the net.PacketConn interface Conn is built
// around, so the same ReadFrom/WriteTo-based record-layer plumbing
// serves both a dialed point-to-point socket and one peer's share of a
// multiplexed server socket (spec.md Section 4.7, C7).
type packetConnFromConn struct {
	net.Conn
	remoteAddr net.Addr
}

func newPacketConnFromConn(conn net.Conn) *packetConnFromConn {
	return &packetConnFromConn{Conn: conn, remoteAddr: conn.RemoteAddr()}
}

func (p *packetConnFromConn) ReadFrom(b []byte) (int, net.Addr, error) {
	n, err := p.Conn.Read(b)
	return n, p.remoteAddr, err
}

func (p *packetConnFromConn) WriteTo(b []byte, _ net.Addr) (int, error) {
	return p.Conn.Write(b)
}
