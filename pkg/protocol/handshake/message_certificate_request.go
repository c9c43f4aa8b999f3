// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "encoding/binary"

// ClientCertificateType identifies the kind of certificate a server will
// accept from a client (RFC 5246 Section 7.4.4).
type ClientCertificateType byte

// Client certificate types this stack requests.
const (
	ClientCertificateTypeRSASign   ClientCertificateType = 1
	ClientCertificateTypeECDSASign ClientCertificateType = 64
)

// MessageCertificateRequest is sent by a server to request a client
// certificate, naming the certificate types and signature algorithms it
// will accept (spec.md Section 4.4).
//
// https://tools.ietf.org/html/rfc5246#section-7.4.4
type MessageCertificateRequest struct {
	CertificateTypes        []ClientCertificateType
	SignatureHashAlgorithms []struct {
		Hash      HashAlgorithm
		Signature SignatureAlgorithm
	}
}

// Type returns the Handshake Type.
func (m MessageCertificateRequest) Type() Type {
	return TypeCertificateRequest
}

// Marshal encodes the Handshake.
func (m *MessageCertificateRequest) Marshal() ([]byte, error) {
	out := []byte{byte(len(m.CertificateTypes))}
	for _, t := range m.CertificateTypes {
		out = append(out, byte(t))
	}

	out = append(out, 0, 0)
	binary.BigEndian.PutUint16(out[len(out)-2:], uint16(2*len(m.SignatureHashAlgorithms)))
	for _, a := range m.SignatureHashAlgorithms {
		out = append(out, byte(a.Hash), byte(a.Signature))
	}

	// no distinguished-names list: this stack does not scope client
	// certificate acceptance by issuer.
	return append(out, 0, 0), nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageCertificateRequest) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}
	typesLen := int(data[0])
	offset := 1
	if len(data) < offset+typesLen {
		return errBufferTooSmall
	}
	m.CertificateTypes = nil
	for i := 0; i < typesLen; i++ {
		m.CertificateTypes = append(m.CertificateTypes, ClientCertificateType(data[offset+i]))
	}
	offset += typesLen

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	algosLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if algosLen%2 != 0 || len(data) < offset+algosLen {
		return errBufferTooSmall
	}
	m.SignatureHashAlgorithms = nil
	for i := 0; i < algosLen; i += 2 {
		m.SignatureHashAlgorithms = append(m.SignatureHashAlgorithms, struct {
			Hash      HashAlgorithm
			Signature SignatureAlgorithm
		}{HashAlgorithm(data[offset+i]), SignatureAlgorithm(data[offset+i+1])})
	}
	offset += algosLen

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	// distinguished-names list is parsed for length only; not retained.
	return nil
}
