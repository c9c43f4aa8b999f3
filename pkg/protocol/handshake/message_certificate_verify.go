// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "encoding/binary"

// MessageCertificateVerify carries a signature over the running handshake
// transcript hash, proving possession of the private key matching the
// sender's certificate (spec.md Section 4.4, "CertificateVerify / ServerKeyExchange
// verification"; testable property 9, constant-time RSA padding check).
//
// https://tools.ietf.org/html/rfc5246#section-7.4.8
type MessageCertificateVerify struct {
	HashAlgorithm      HashAlgorithm
	SignatureAlgorithm SignatureAlgorithm
	Signature          []byte
}

// Type returns the Handshake Type.
func (m MessageCertificateVerify) Type() Type {
	return TypeCertificateVerify
}

// Marshal encodes the Handshake.
func (m *MessageCertificateVerify) Marshal() ([]byte, error) {
	out := []byte{byte(m.HashAlgorithm), byte(m.SignatureAlgorithm), 0, 0}
	binary.BigEndian.PutUint16(out[2:], uint16(len(m.Signature)))
	return append(out, m.Signature...), nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageCertificateVerify) Unmarshal(data []byte) error {
	if len(data) < 4 {
		return errBufferTooSmall
	}
	m.HashAlgorithm = HashAlgorithm(data[0])
	m.SignatureAlgorithm = SignatureAlgorithm(data[1])
	sigLen := int(binary.BigEndian.Uint16(data[2:]))
	if len(data) != 4+sigLen {
		return errLengthMismatch
	}
	m.Signature = append([]byte{}, data[4:]...)
	return nil
}
