// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/fieldlink/dtls/pkg/protocol/extension"
)

// EllipticCurveType identifies how a curve is described; this stack only
// ever sends/accepts named_curve.
type EllipticCurveType byte

// EllipticCurveTypeNamedCurve is the only EllipticCurveType negotiated.
const EllipticCurveTypeNamedCurve EllipticCurveType = 3

// HashAlgorithm and SignatureAlgorithm are the two halves of a
// SignatureAndHashAlgorithm (RFC 5246 Section 7.4.1.4.1), used by
// CertificateVerify and, for TLS 1.0-1.2 ECDHE, ServerKeyExchange.
type HashAlgorithm byte

// Hash algorithm IDs this stack understands (spec.md Section 4.4,
// "Signature-algorithm enumeration").
const (
	HashAlgorithmMD5    HashAlgorithm = 1
	HashAlgorithmSHA1   HashAlgorithm = 2
	HashAlgorithmSHA256 HashAlgorithm = 4
	HashAlgorithmSHA384 HashAlgorithm = 5
	HashAlgorithmSHA512 HashAlgorithm = 6
)

// SignatureAlgorithm identifies the public-key algorithm half of a
// SignatureAndHashAlgorithm.
type SignatureAlgorithm byte

// Signature algorithm IDs this stack understands.
const (
	SignatureAlgorithmRSA   SignatureAlgorithm = 1
	SignatureAlgorithmECDSA SignatureAlgorithm = 3
)

// MessageServerKeyExchange carries the server's ephemeral ECDHE public key
// (or, for PSK suites, an identity hint) plus, for certificate-bearing
// suites, a signature over the exchange binding it to the server's
// certificate (spec.md Section 4.4, "CertificateVerify / ServerKeyExchange
// verification").
//
// https://tools.ietf.org/html/rfc5246#section-7.4.3
type MessageServerKeyExchange struct {
	IdentityHint []byte

	EllipticCurveType  EllipticCurveType
	NamedCurve         extension.NamedCurve
	PublicKey          []byte
	HashAlgorithm      HashAlgorithm
	SignatureAlgorithm SignatureAlgorithm
	Signature          []byte
}

// Type returns the Handshake Type.
func (m MessageServerKeyExchange) Type() Type {
	return TypeServerKeyExchange
}

// Marshal encodes the Handshake.
func (m *MessageServerKeyExchange) Marshal() ([]byte, error) {
	if m.IdentityHint != nil {
		out := make([]byte, 2+len(m.IdentityHint))
		binary.BigEndian.PutUint16(out, uint16(len(m.IdentityHint)))
		copy(out[2:], m.IdentityHint)
		return out, nil
	}

	out := []byte{byte(m.EllipticCurveType), 0, 0}
	binary.BigEndian.PutUint16(out[1:], uint16(m.NamedCurve))
	out = append(out, byte(len(m.PublicKey)))
	out = append(out, m.PublicKey...)

	if len(m.Signature) == 0 {
		return out, nil
	}

	out = append(out, byte(m.HashAlgorithm), byte(m.SignatureAlgorithm))
	out = append(out, 0, 0)
	binary.BigEndian.PutUint16(out[len(out)-2:], uint16(len(m.Signature)))
	return append(out, m.Signature...), nil
}

// Unmarshal populates the message from encoded data. PSK-identity-hint and
// ECDHE-named-curve wire shapes share no common prefix, so the caller
// (the handshake driver, which knows the negotiated cipher suite) is
// responsible for calling UnmarshalPSK or the default named-curve path as
// appropriate; Unmarshal implements the named-curve path.
func (m *MessageServerKeyExchange) Unmarshal(data []byte) error {
	if len(data) < 4 {
		return errBufferTooSmall
	}
	m.EllipticCurveType = EllipticCurveType(data[0])
	if m.EllipticCurveType != EllipticCurveTypeNamedCurve {
		return errInvalidEllipticCurveType
	}
	m.NamedCurve = extension.NamedCurve(binary.BigEndian.Uint16(data[1:3]))

	pubKeyLen := int(data[3])
	offset := 4
	if len(data) < offset+pubKeyLen {
		return errBufferTooSmall
	}
	m.PublicKey = append([]byte{}, data[offset:offset+pubKeyLen]...)
	offset += pubKeyLen

	if len(data) == offset {
		return nil // unsigned (anonymous / PSK-ECDHE without cert)
	}
	if len(data) < offset+4 {
		return errBufferTooSmall
	}
	m.HashAlgorithm = HashAlgorithm(data[offset])
	m.SignatureAlgorithm = SignatureAlgorithm(data[offset+1])
	sigLen := int(binary.BigEndian.Uint16(data[offset+2:]))
	offset += 4
	if len(data) < offset+sigLen {
		return errBufferTooSmall
	}
	m.Signature = append([]byte{}, data[offset:offset+sigLen]...)
	return nil
}

// UnmarshalPSK decodes the PSK identity-hint wire shape.
func (m *MessageServerKeyExchange) UnmarshalPSK(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	n := int(binary.BigEndian.Uint16(data))
	if len(data) < 2+n {
		return errBufferTooSmall
	}
	m.IdentityHint = append([]byte{}, data[2:2+n]...)
	return nil
}
