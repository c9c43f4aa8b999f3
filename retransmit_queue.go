// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import "time"

// retransmitTimeout tracks the exponential backoff schedule for one
// flight's retransmission timer (spec.md Section 4.4, "Flight-based
// retransmission"; testable property 5, monotonically non-decreasing
// timeout with a bounded retry count). Each call to wait's retransmit
// timer expiring advances the schedule by one step; a fresh flight resets
// it via newRetransmitTimeout.
type retransmitTimeout struct {
	initial time.Duration
	max     time.Duration
	shift   uint
	retries int

	attempt int
}

// newRetransmitTimeout builds the schedule for a newly entered flight.
// shift selects the backoff: 0 keeps every wait at initial, any other
// value doubles the wait on each retransmit (RFC 6347 Section 4.2.4's
// suggested algorithm) up to maxTimeout; retries is the number of
// retransmissions tolerated before the handshake is abandoned as timed
// out.
func newRetransmitTimeout(initial, maxTimeout time.Duration, shift uint, retries int) *retransmitTimeout {
	return &retransmitTimeout{initial: initial, max: maxTimeout, shift: shift, retries: retries}
}

// next returns the duration to wait before the next retransmit, and
// whether the retry budget is already exhausted (in which case the
// handshake must be abandoned instead of retransmitting again).
func (r *retransmitTimeout) next() (time.Duration, bool) {
	if r.attempt >= r.retries {
		return 0, false
	}
	r.attempt++

	d := r.initial
	if r.shift != 0 {
		for i := 1; i < r.attempt && d < r.max; i++ {
			d <<= 1
		}
	}
	if d > r.max || d <= 0 {
		d = r.max
	}
	return d, true
}

// retransmitQueue is the C3 component proper (spec.md Section 4.3 and
// Section 3, "Retransmit queue"): the FIFO of packets making up the
// flight currently awaiting a reply, paired with that flight's backoff
// timer. handshakeFSM owns exactly one retransmitQueue, replacing its
// contents via set whenever a new flight is generated and releasing them
// via flush once the peer's response flight arrives — matching spec.md
// Section 3's invariant that "the retransmit queue is non-empty only
// between sending a flight and receiving the response flight."
type retransmitQueue struct {
	packets []*packet
	timeout *retransmitTimeout
}

// set buffers pkts as the flight now awaiting a reply and starts a fresh
// backoff schedule for it (spec.md Section 4.3, "a fresh counter/timeout
// are initialized for the next outbound flight").
func (q *retransmitQueue) set(pkts []*packet, initial, maxTimeout time.Duration, shift uint, retries int) {
	q.packets = pkts
	q.timeout = newRetransmitTimeout(initial, maxTimeout, shift, retries)
}

// flush releases every packet the queue currently owns (spec.md Section
// 4.3, "the queue is flushed (all owned packets released)").
func (q *retransmitQueue) flush() {
	q.packets = nil
	q.timeout = nil
}

// empty reports whether the queue currently owns no flight.
func (q *retransmitQueue) empty() bool {
	return len(q.packets) == 0
}

// next advances the buffered flight's retransmit schedule by one step,
// returning how long to wait before replaying it and whether the retry
// budget still allows that (spec.md Section 4.3, "retry counter reaches
// the configured maximum" / testable property 5).
func (q *retransmitQueue) next() (time.Duration, bool) {
	if q.timeout == nil {
		return 0, false
	}
	return q.timeout.next()
}
