// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import "sync"

// epochState is a per-epoch RFC 6347 Section 4.1.2.6 sliding replay
// window: a 64-bit bitmap trailing the highest sequence number accepted
// so far. Unlike pion/transport/v3/replaydetector, Check never mutates
// window state itself; it returns a commit closure the caller invokes
// only once the record has been fully authenticated (MAC verified /
// AEAD opened), so a record that fails decryption leaves the window
// untouched rather than burning its replay slot (spec.md Section 9, Open
// Question 1: "always roll back on every failure path, including
// InvalidEpoch").
type epochState struct {
	mu         sync.Mutex
	upperLimit uint64
	highest    uint64
	window     uint64 // bit i set => highest-i was seen
	started    bool
}

func newEpochState(windowSize uint, upperLimit uint64) *epochState {
	// windowSize is accepted for API parity with the detector this type
	// replaces; the bitmap is always 64 wide, so any windowSize up to 64
	// behaves identically. A caller requesting a laxer window would need
	// a differently sized bitmap, which no cipher suite in this module
	// exercises.
	_ = windowSize
	return &epochState{upperLimit: upperLimit}
}

// Check reports whether seq falls inside the acceptance window and has
// not been seen before. ok is false for a duplicate, a too-old sequence
// number, or an out-of-range sequence number; the caller must silently
// discard the record in all of those cases (RFC 6347 Section 4.1.2.7).
//
// On success, Check returns a commit closure. The window is updated only
// when commit is invoked, letting the caller defer the update until
// after decryption succeeds; commit itself returns whether seq ended up
// being the new highest sequence number seen.
func (e *epochState) Check(seq uint64) (commit func() bool, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq > e.upperLimit {
		return nil, false
	}

	if !e.started {
		// First record in this epoch is always accepted; commit will
		// initialize the window.
		return e.commitFunc(seq), true
	}

	if seq > e.highest {
		// Ahead of the window: accept; the gap is filled in on commit.
		return e.commitFunc(seq), true
	}

	delta := e.highest - seq
	if delta >= 64 {
		return nil, false // too old, window has rolled past it
	}
	if e.window&(1<<delta) != 0 {
		return nil, false // duplicate
	}
	return e.commitFunc(seq), true
}

func (e *epochState) commitFunc(seq uint64) func() bool {
	return func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()

		if !e.started {
			e.started = true
			e.highest = seq
			e.window = 1
			return true
		}

		switch {
		case seq > e.highest:
			shift := seq - e.highest
			if shift >= 64 {
				e.window = 0
			} else {
				e.window <<= shift
			}
			e.window |= 1
			e.highest = seq
			return true
		case seq == e.highest:
			e.window |= 1
			return true
		default:
			delta := e.highest - seq
			if delta < 64 {
				e.window |= 1 << delta
			}
			return false
		}
	}
}

