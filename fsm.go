// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"net"
	"time"

	"github.com/fieldlink/dtls/pkg/protocol/alert"
)

// flightVal identifies one flight of the handshake exchange (spec.md
// Section 4.4, "Flight-based retransmission"), numbered to match RFC 6347's
// flight diagram: odd numbers are client-generated, even are
// server-generated, with flight0 standing in for the server's bootstrap
// wait-for-any-ClientHello state that precedes RFC 6347's flight 1.
type flightVal uint8

const (
	// flightNone is never a real flight; Parse returns it to mean "no
	// transition yet, keep retransmitting the current flight".
	flightNone flightVal = iota
	flight0
	flight1
	flight2
	flight3
	flight4
	flight5
	flight6

	// flightFinished is the client-side terminal state: flight5Parse
	// returns it once the server's ChangeCipherSpec+Finished have been
	// verified. It is distinct from flight6 (the server's terminal
	// generate-only flight) so a client reaching completion never
	// accidentally invokes flight6Generate.
	flightFinished
)

func (f flightVal) String() string {
	switch f {
	case flight0:
		return "Flight0"
	case flight1:
		return "Flight1"
	case flight2:
		return "Flight2"
	case flight3:
		return "Flight3"
	case flight4:
		return "Flight4"
	case flight5:
		return "Flight5"
	case flight6:
		return "Flight6"
	case flightFinished:
		return "FlightFinished"
	default:
		return "Unknown"
	}
}

// handshakeState is a coarse step within the FSM loop, cfg.onFlightState's
// second argument used by Conn.handshake to detect completion.
type handshakeState uint8

const (
	handshakePreparing handshakeState = iota
	handshakeSending
	handshakeWaiting
	handshakeFinished
	handshakeErrored
)

// flightConn is the subset of Conn the FSM and flight handlers need. *Conn
// satisfies this directly.
type flightConn interface {
	recvHandshake() <-chan chan struct{}
	notify(ctx context.Context, level alert.Level, desc alert.Description) error
	writePackets(ctx context.Context, pkts []*packet) error
	RemoteAddr() net.Addr
	sessionKey() []byte
}

// flightParseHandler inspects the handshake cache for the messages this
// flight's peer-side is expected to have sent. It returns flightNone with
// no error to mean "not enough data yet, keep waiting/retransmitting".
type flightParseHandler func(ctx context.Context, c flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig) (flightVal, *alert.Alert, error)

// flightGenerateHandler produces the packets this flight sends.
type flightGenerateHandler func(c flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig) ([]*packet, *alert.Alert, error)

var flightParseHandlers = map[flightVal]flightParseHandler{ //nolint:gochecknoglobals
	flight0: flight0Parse,
	flight1: flight1Parse,
	flight2: flight2Parse,
	flight3: flight3Parse,
	flight5: flight5Parse,
}

var flightGenerateHandlers = map[flightVal]flightGenerateHandler{ //nolint:gochecknoglobals
	flight0: flight0Generate,
	flight1: flight1Generate,
	flight2: flight2Generate,
	flight3: flight3Generate,
	flight5: flight5Generate,
	flight6: flight6Generate,
}

// handshakeFSM drives one side of the handshake through its flights,
// retransmitting the current flight on a timer until the peer's next
// flight is fully received (spec.md Section 4.4).
type handshakeFSM struct {
	currentFlight flightVal
	cfg           *handshakeConfig
	state         *State
	cache         *handshakeCache

	// queue is the C3 retransmit queue: the packets genHandler built for
	// queueFlight, paired with that flight's backoff schedule. A
	// retransmit must resend the exact bytes already counted into the
	// handshake transcript, never regenerate them (a fresh ServerHello
	// random or ephemeral key would desync Finished's verify_data).
	// queueFlight starts at flightNone, which never matches a real
	// currentFlight, so the first pass through a flight always generates.
	queue       retransmitQueue
	queueFlight flightVal

	done chan struct{}
}

func newHandshakeFSM(state *State, cache *handshakeCache, cfg *handshakeConfig, initialFlight flightVal) *handshakeFSM {
	return &handshakeFSM{
		state:         state,
		cache:         cache,
		cfg:           cfg,
		currentFlight: initialFlight,
		done:          make(chan struct{}),
	}
}

// Done is closed once the FSM reaches handshakeFinished.
func (s *handshakeFSM) Done() <-chan struct{} {
	return s.done
}

// Run drives the FSM loop until the handshake completes, the context is
// canceled, or an unrecoverable error occurs.
func (s *handshakeFSM) Run(ctx context.Context, c flightConn, initialState handshakeState) error { //nolint:gocognit
	state := initialState
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch state {
		case handshakePreparing:
			state = handshakeSending

		case handshakeSending:
			if s.queueFlight != s.currentFlight {
				s.queue.flush()

				var pkts []*packet
				genHandler, ok := flightGenerateHandlers[s.currentFlight]
				if ok {
					p, a, err := genHandler(c, s.state, s.cache, s.cfg)
					if a != nil {
						if notifyErr := c.notify(ctx, a.Level, a.Description); notifyErr != nil && err == nil {
							err = notifyErr
						}
					}
					if err != nil {
						return err
					}
					pkts = p
				}
				s.queue.set(pkts, s.cfg.retransmitInterval, s.cfg.maxRetransmitTimeout, s.cfg.retransmitShift, s.cfg.retransmitRetries)
				s.queueFlight = s.currentFlight
			}

			if !s.queue.empty() {
				if err := c.writePackets(ctx, s.queue.packets); err != nil {
					return err
				}
			}

			state = handshakeWaiting

		case handshakeWaiting:
			nextState, err := s.wait(ctx, c)
			if err != nil {
				return err
			}
			state = nextState

		case handshakeFinished:
			if s.cfg.onFlightState != nil {
				s.cfg.onFlightState(s.currentFlight, handshakeFinished)
			}
			select {
			case <-s.done:
			default:
				close(s.done)
			}
			return nil

		case handshakeErrored:
			return errHandshakeTimeout
		}
	}
}

func (s *handshakeFSM) wait(ctx context.Context, c flightConn) (handshakeState, error) {
	if s.currentFlight == flightFinished {
		return handshakeFinished, nil
	}

	parseHandler, ok := flightParseHandlers[s.currentFlight]
	if !ok {
		// A flight with no parse handler (flight6) has nothing left to wait
		// for: the handshake is complete once it is sent.
		return handshakeFinished, nil
	}

	timeout, ok := s.queue.next()
	if !ok {
		return handshakeErrored, errHandshakeTimeout
	}
	retransmitTimer := time.NewTimer(timeout)
	defer retransmitTimer.Stop()

	for {
		nextFlight, a, err := parseHandler(ctx, c, s.state, s.cache, s.cfg)
		if a != nil {
			if notifyErr := c.notify(ctx, a.Level, a.Description); notifyErr != nil && err == nil {
				err = notifyErr
			}
		}
		if err != nil {
			return handshakeErrored, err
		}
		if nextFlight != flightNone {
			s.currentFlight = nextFlight
			return handshakeSending, nil
		}

		select {
		case <-ctx.Done():
			return handshakeErrored, ctx.Err()
		case done := <-c.recvHandshake():
			close(done)
			continue
		case <-retransmitTimer.C:
			return handshakeSending, nil
		}
	}
}
