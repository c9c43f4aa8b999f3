// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"net"
	"sync"

	"github.com/pion/logging"
	"github.com/pion/transport/v3/udp"
)

// ConnectNotifyFunc is called once a peer's ClientHello has been admitted
// and a Session slot allocated for it, before that session's handshake
// completes (spec.md Section 4.7, C7, "Notifications").
type ConnectNotifyFunc func(session *Session, remoteAddr net.Addr)

// ReceiveNotifyFunc is called once a session this server owns has
// finished its handshake and is ready for Session.Receive.
type ReceiveNotifyFunc func(session *Session)

// DisconnectNotifyFunc is called once a session this server owns has been
// torn down, successfully or not.
type DisconnectNotifyFunc func(session *Session, cause error)

// ErrorNotifyFunc reports an error that is not attributable to any
// specific session, such as the listening socket itself failing.
type ErrorNotifyFunc func(err error)

// Server is the session multiplexer described in spec.md Section 4.7
// (C7): a single UDP socket, demultiplexed by (remote ip, remote port,
// local port) to a bounded pool of per-peer Sessions. The demux itself —
// routing a datagram from an already-known address to its existing
// Session versus minting a new one — is delegated to
// github.com/pion/transport/v3/udp's Listener, the same primitive
// pion/dtls's own Listen uses; Server layers the bounded pool, the
// notify callbacks, and registry linkage (C8) on top.
type Server struct {
	mu sync.Mutex

	config   *Config
	poolSize int
	log      logging.LeveledLogger

	listener net.Listener
	cancel   context.CancelFunc

	// sessions tracks every session this server currently owns, keyed by
	// the peer's net.Addr.String(), purely for bookkeeping (pool-size
	// accounting, Stop's teardown sweep, registry association) — the
	// udp.Listener already guarantees at most one Accept per address.
	sessions map[string]*Session

	connectNotify    ConnectNotifyFunc
	receiveNotify    ReceiveNotifyFunc
	disconnectNotify DisconnectNotifyFunc
	errorNotify      ErrorNotifyFunc

	// Registry links (C8), guarded by globalRegistry.mu, not mu.
	regPrev, regNext *Server
}

// NewServer allocates a Server multiplexer, linking it into the
// process-wide registry (spec.md Section 4.7 / 4.8). config.SessionPoolSize
// bounds how many peers may be mid-handshake or connected concurrently;
// a datagram from a new peer once the pool is full is dropped (spec.md
// Section 4.7, step 4).
func NewServer(config *Config) *Server {
	if config == nil {
		config = &Config{}
	}
	poolSize := config.SessionPoolSize
	if poolSize <= 0 {
		poolSize = defaultSessionPoolSize
	}

	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	srv := &Server{
		config:   config,
		poolSize: poolSize,
		log:      loggerFactory.NewLogger("dtls"),
		sessions: make(map[string]*Session),
	}
	globalRegistry.addServer(srv)
	return srv
}

// SetNotify installs the application's connect/receive/disconnect/error
// callbacks. disconnect and error are optional and may be set (or
// replaced) after Start, per spec.md Section 4.7's "settable after
// create."
func (srv *Server) SetNotify(connect ConnectNotifyFunc, receive ReceiveNotifyFunc, disconnect DisconnectNotifyFunc, errFn ErrorNotifyFunc) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.connectNotify = connect
	srv.receiveNotify = receive
	srv.disconnectNotify = disconnect
	srv.errorNotify = errFn
}

// Start binds the UDP socket at laddr and begins demultiplexing inbound
// datagrams to per-peer Sessions until ctx is canceled or Stop is called
// (spec.md Section 4.7).
func (srv *Server) Start(ctx context.Context, laddr *net.UDPAddr) error {
	srv.mu.Lock()
	if srv.listener != nil {
		srv.mu.Unlock()
		return errServerAlreadyStarted
	}

	ln, err := (&udp.ListenConfig{Backlog: srv.poolSize}).Listen("udp", laddr)
	if err != nil {
		srv.mu.Unlock()
		return err
	}
	srv.listener = ln

	acceptCtx, cancel := context.WithCancel(ctx)
	srv.cancel = cancel
	srv.mu.Unlock()

	go srv.acceptLoop(acceptCtx, ln)
	return nil
}

// acceptLoop pulls newly-demultiplexed per-peer connections off ln and
// admits each into the bounded pool (spec.md Section 4.7, steps 2-4).
func (srv *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			srv.notifyError(err)
			return
		}

		if err := srv.admit(conn); err != nil {
			srv.log.Tracef("dropping datagram from %s: %s", conn.RemoteAddr(), err)
			srv.notifyError(err)
			_ = conn.Close()
			continue
		}

		srv.log.Tracef("admitted new session for %s", conn.RemoteAddr())
		go srv.runSession(ctx, conn)
	}
}

// admit reserves a pool slot for conn's remote address, failing with
// errServerPoolExhausted (causing the caller to drop the datagram that
// opened conn) once the pool is full (spec.md Section 4.7, step 4).
func (srv *Server) admit(conn net.Conn) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if len(srv.sessions) >= srv.poolSize {
		return errServerPoolExhausted
	}

	key := conn.RemoteAddr().String()
	if _, exists := srv.sessions[key]; exists {
		// Already has a session (a retransmitted first flight racing the
		// accept loop); the existing session owns this peer.
		return errServerPoolExhausted
	}
	srv.sessions[key] = nil // reserve the slot before the handshake runs
	return nil
}

// runSession allocates the Session for a newly-admitted peer, fires
// connectNotify, drives its server-role handshake, and fires
// receiveNotify or disconnectNotify depending on the outcome.
func (srv *Server) runSession(ctx context.Context, conn net.Conn) {
	remoteAddr := conn.RemoteAddr()
	key := remoteAddr.String()

	session := NewSession(srv.config)
	session.parent = srv

	srv.mu.Lock()
	srv.sessions[key] = session
	notifyConnect := srv.connectNotify
	srv.mu.Unlock()

	if notifyConnect != nil {
		notifyConnect(session, remoteAddr)
	}

	err := session.startServer(ctx, newPacketConnFromConn(conn), remoteAddr)

	srv.mu.Lock()
	notifyReceive := srv.receiveNotify
	notifyDisconnect := srv.disconnectNotify
	srv.mu.Unlock()

	if err != nil {
		srv.forget(key)
		_ = session.Delete()
		if notifyDisconnect != nil {
			notifyDisconnect(session, err)
		}
		return
	}

	if notifyReceive != nil {
		notifyReceive(session)
	}
}

func (srv *Server) forget(key string) {
	srv.mu.Lock()
	delete(srv.sessions, key)
	srv.mu.Unlock()
}

func (srv *Server) notifyError(err error) {
	srv.mu.Lock()
	fn := srv.errorNotify
	srv.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// Stop closes the listening socket and every session this server
// currently owns, but leaves the Server itself linked in the registry so
// it may be inspected or Start again (spec.md Section 6, "server ...
// stop").
func (srv *Server) Stop() error {
	srv.mu.Lock()
	ln := srv.listener
	cancel := srv.cancel
	srv.listener = nil
	srv.cancel = nil
	sessions := make([]*Session, 0, len(srv.sessions))
	for _, s := range srv.sessions {
		if s != nil {
			sessions = append(sessions, s)
		}
	}
	srv.sessions = make(map[string]*Session)
	srv.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, s := range sessions {
		_ = s.Delete()
	}
	if ln != nil {
		return ln.Close()
	}
	return nil
}

// Delete stops the server (if running) and unlinks it from the
// process-wide registry (spec.md Section 6, "server ... delete").
func (srv *Server) Delete() error {
	err := srv.Stop()
	globalRegistry.removeServer(srv)
	return err
}

// SessionFor looks up the session bound to remoteAddr, the same
// (remote ip, remote port) half of the tuple spec.md Section 4.7 demuxes
// on (local port is implicit: one Server owns exactly one local port).
// Returns errUnknownSession if no session is currently admitted for that
// peer.
func (srv *Server) SessionFor(remoteAddr net.Addr) (*Session, error) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	s, ok := srv.sessions[remoteAddr.String()]
	if !ok || s == nil {
		return nil, errUnknownSession
	}
	return s, nil
}

// Addr returns the server's bound local address, or nil before Start.
func (srv *Server) Addr() net.Addr {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.listener == nil {
		return nil
	}
	return srv.listener.Addr()
}

// SessionCount reports how many sessions this server currently owns.
func (srv *Server) SessionCount() int {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	n := 0
	for _, s := range srv.sessions {
		if s != nil {
			n++
		}
	}
	return n
}
