// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import "github.com/fieldlink/dtls/pkg/protocol/handshake"

// nextHandshakeMessage wraps msg in a Handshake content, numbering it with
// the next message sequence number this side has not yet used. Every
// handshake message consumes one sequence number, independent of which
// flight it belongs to (RFC 6347 Section 4.2.2).
func nextHandshakeMessage(state *State, msg handshake.Message) *handshake.Handshake {
	h := &handshake.Handshake{
		Header:  handshake.Header{MessageSequence: uint16(state.handshakeSendSequence)},
		Message: msg,
	}
	state.handshakeSendSequence++
	return h
}
