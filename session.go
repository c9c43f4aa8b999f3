// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"net"
	"sync"
)

// Role distinguishes which side of the handshake a Session plays (spec.md
// Section 3, "Role: Client or Server").
type Role uint8

// Session roles.
const (
	RoleClient Role = iota
	RoleServer
)

// String implements fmt.Stringer.
func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}
	return "client"
}

// Session is the per-peer control block described in spec.md Section 3: it
// owns the captured remote/local binding, the negotiated keys and
// transcript (held inside the embedded Conn once a handshake has produced
// one), and this peer's slot in the process-wide registry (C8).
//
// A client application allocates a Session with NewSession and drives it
// with StartClient; a Server multiplexer (C7) allocates one per admitted
// peer out of its bounded pool and drives it with startServer. Either way,
// Send/Receive/ClientInfoGet/Reset/Delete behave identically afterward
// (spec.md Section 4.5).
type Session struct {
	mu sync.Mutex

	role   Role
	config *Config
	conn   *Conn

	remoteAddr net.Addr
	localPort  int

	// parent is the Server multiplexer that admitted this session; nil
	// for a client-initiated Session (spec.md Section 3, "Parent pointer
	// to the server multiplexer").
	parent *Server

	// everReceived becomes true once a datagram has actually been
	// attributed to this session (on a successful handshake completion,
	// since completing one requires hearing from the peer at least
	// once). ClientInfoGet fails with NotConnected until then (spec.md
	// Section 4.5, "client_info_get").
	everReceived bool

	// receiving guards spec.md Section 5's "at most one suspended reader
	// per session" invariant: a second caller observing it set returns
	// AlreadySuspended rather than racing the first on conn.Read's
	// decrypted-data channel.
	receiving bool

	inUse bool

	// Registry links (C8), guarded by globalRegistry.mu, not mu.
	regPrev, regNext *Session
}

// NewSession allocates a Session bound to config but not yet connected to
// any peer, and links it into the process-wide registry (spec.md Section
// 4.5, "create": "allocate metadata ... link into registry, mark
// in_use").
func NewSession(config *Config) *Session {
	if config == nil {
		config = &Config{}
	}
	s := &Session{config: config, inUse: true}
	globalRegistry.addSession(s)
	return s
}

// Role reports which side of the handshake this session plays. Only
// meaningful once Start{Client,Server} has been called.
func (s *Session) Role() Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// StartClient captures remoteAddr as this session's peer binding and runs
// the client handshake over conn (spec.md Section 4.5, "start_client").
func (s *Session) StartClient(ctx context.Context, conn net.PacketConn, remoteAddr net.Addr) error {
	s.mu.Lock()
	if !s.inUse {
		s.mu.Unlock()
		return errSessionUninitialized
	}
	s.role = RoleClient
	cfg := s.config
	s.mu.Unlock()

	c, err := ClientWithContext(ctx, conn, remoteAddr, cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = c
	s.remoteAddr = remoteAddr
	s.everReceived = true
	s.mu.Unlock()
	return nil
}

// startServer runs the server-role handshake over conn, which has already
// been demultiplexed to a single peer by the owning Server (C7), and
// installs the resulting Conn (spec.md Section 4.5, "start_server": "run
// the server handshake using packets already placed on the session
// receive queue by the multiplexer"). Unexported: the application never
// calls this directly.
func (s *Session) startServer(ctx context.Context, conn net.PacketConn, remoteAddr net.Addr) error {
	s.mu.Lock()
	if !s.inUse {
		s.mu.Unlock()
		return errSessionUninitialized
	}
	s.role = RoleServer
	cfg := s.config
	s.mu.Unlock()

	c, err := dialServerRoleWithContext(ctx, conn, remoteAddr, cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = c
	s.remoteAddr = remoteAddr
	s.everReceived = true
	s.mu.Unlock()
	return nil
}

// Send frames and emits an APPLICATION_DATA record, rejecting the send if
// remoteIP/remotePort disagree with the session's captured remote binding
// (spec.md Section 4.5, "send": SendAddressMismatch).
func (s *Session) Send(p []byte, remoteIP net.IP, remotePort int) (int, error) {
	s.mu.Lock()
	conn := s.conn
	bound := s.remoteAddr
	s.mu.Unlock()

	if conn == nil {
		return 0, errSessionUninitialized
	}
	if bound != nil && !addrMatches(bound, remoteIP, remotePort) {
		return 0, errSendAddressMismatch
	}
	return conn.Write(p)
}

// Receive delivers the next decrypted application datagram (spec.md
// Section 4.5, "receive"). Blocking behavior (deadline, cancellation) is
// inherited from the embedded Conn's Read, which already implements the
// "at most one suspended reader" discipline spec.md Section 5 describes
// via its own decrypted-data channel.
func (s *Session) Receive(p []byte) (int, error) {
	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return 0, errSessionUninitialized
	}
	if s.receiving {
		s.mu.Unlock()
		return 0, errAlreadySuspended
	}
	s.receiving = true
	s.mu.Unlock()

	n, err := conn.Read(p)

	s.mu.Lock()
	s.receiving = false
	s.mu.Unlock()

	return n, err
}

// ClientInfoGet returns the captured remote address, failing with
// NotConnected if no datagram has ever been attributed to this session
// (spec.md Section 4.5, "client_info_get").
func (s *Session) ClientInfoGet() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.everReceived {
		return nil, errNotConnected
	}
	return s.remoteAddr, nil
}

// ConnectionState exposes the negotiated handshake parameters, mirroring
// Conn.ConnectionState.
func (s *Session) ConnectionState() (State, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return State{}, errSessionUninitialized
	}
	return conn.ConnectionState(), nil
}

// Reset drops the session's keys and transcript but keeps the slot bound
// to the same peer for reuse (spec.md Section 4.5, "reset").
func (s *Session) Reset() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// Delete unlinks the session from the registry, flushes its queues, and
// releases its underlying connection (spec.md Section 4.5, "delete").
// Idempotent.
func (s *Session) Delete() error {
	s.mu.Lock()
	conn := s.conn
	parent := s.parent
	remoteAddr := s.remoteAddr
	s.conn = nil
	s.parent = nil
	s.inUse = false
	s.mu.Unlock()

	globalRegistry.removeSession(s)

	if parent != nil && remoteAddr != nil {
		parent.forget(remoteAddr.String())
	}

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// addrMatches reports whether addr (a net.Addr captured from an accepted
// connection) names the same IP and port as ip/port, the pair an
// application passes to Send (spec.md Section 4.5, "SendAddressMismatch").
func addrMatches(addr net.Addr, ip net.IP, port int) bool {
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return addr.String() == (&net.UDPAddr{IP: ip, Port: port}).String()
	}
	return udpAddr.IP.Equal(ip) && udpAddr.Port == port
}
