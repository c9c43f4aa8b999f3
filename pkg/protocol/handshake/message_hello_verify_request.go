// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "github.com/fieldlink/dtls/pkg/protocol"

// MessageHelloVerifyRequest is sent by a DTLS server in reply to a
// ClientHello that carries no cookie, to verify the client can receive
// datagrams at its claimed source address before any session resources are
// allocated (spec.md Section 4.4, "Cookie round-trip").
//
// wire: version(2) | cookie_len(1) | cookie(cookie_len)
//
// https://tools.ietf.org/html/rfc6347#section-4.2.1
type MessageHelloVerifyRequest struct {
	Version protocol.Version
	Cookie  []byte
}

// Type returns the Handshake Type.
func (m MessageHelloVerifyRequest) Type() Type {
	return TypeHelloVerifyRequest
}

// Marshal encodes the Handshake. Bit-exact with spec.md Section 4.4:
// cookie length is bounded to 255 bytes (one length byte on the wire).
func (m *MessageHelloVerifyRequest) Marshal() ([]byte, error) {
	if len(m.Cookie) > 255 {
		return nil, errCookieTooLong
	}
	out := make([]byte, 3+len(m.Cookie))
	out[0] = m.Version.Major
	out[1] = m.Version.Minor
	out[2] = byte(len(m.Cookie))
	copy(out[3:], m.Cookie)
	return out, nil
}

// Unmarshal populates the message from encoded data. Bit-exact with
// spec.md Section 4.4: a declared cookie length over 255, or one that
// overruns the message, is IncorrectMessageLength.
func (m *MessageHelloVerifyRequest) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return errLengthMismatch
	}
	m.Version = protocol.Version{Major: data[0], Minor: data[1]}

	cookieLength := int(data[2])
	if cookieLength > 255 {
		return errLengthMismatch
	}
	if 3+cookieLength > len(data) {
		return errLengthMismatch
	}
	m.Cookie = append([]byte{}, data[3:3+cookieLength]...)
	return nil
}
