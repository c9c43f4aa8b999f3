// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "encoding/binary"

// MessageClientKeyExchange carries the client's half of the key exchange:
// an ECDHE public key or a PSK identity, depending on the negotiated
// cipher suite (spec.md Section 4.4, "ClientKeyExchange"). The two wire
// shapes are ambiguous without knowing the suite, so Marshal/Unmarshal
// handle the ECDHE public-key shape and UnmarshalPSK handles the PSK
// identity shape; the handshake driver picks the right one.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.7
type MessageClientKeyExchange struct {
	IdentityHint []byte
	PublicKey    []byte
}

// Type returns the Handshake Type.
func (m MessageClientKeyExchange) Type() Type {
	return TypeClientKeyExchange
}

// Marshal encodes the Handshake.
func (m *MessageClientKeyExchange) Marshal() ([]byte, error) {
	if m.IdentityHint != nil {
		out := make([]byte, 2+len(m.IdentityHint))
		binary.BigEndian.PutUint16(out, uint16(len(m.IdentityHint)))
		copy(out[2:], m.IdentityHint)
		return out, nil
	}
	if m.PublicKey == nil {
		return nil, errInvalidHandshakeType
	}
	return append([]byte{byte(len(m.PublicKey))}, m.PublicKey...), nil
}

// Unmarshal decodes the ECDHE public-key wire shape.
func (m *MessageClientKeyExchange) Unmarshal(data []byte) error {
	if len(data) == 0 {
		return errBufferTooSmall
	}
	n := int(data[0])
	if len(data) != 1+n {
		return errLengthMismatch
	}
	m.PublicKey = append([]byte{}, data[1:]...)
	return nil
}

// UnmarshalPSK decodes the PSK identity wire shape.
func (m *MessageClientKeyExchange) UnmarshalPSK(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	n := int(binary.BigEndian.Uint16(data))
	if len(data) != 2+n {
		return errLengthMismatch
	}
	m.IdentityHint = append([]byte{}, data[2:]...)
	return nil
}
