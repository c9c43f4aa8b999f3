// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

// MessageCertificate carries the sender's certificate chain, each entry
// DER-encoded X.509. X.509 parsing itself is out of scope for this package
// (spec.md Section 1, "out of scope" collaborators); the caller hands the
// raw DER of each certificate to its own X.509 parser.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.2
type MessageCertificate struct {
	Certificate [][]byte
}

// Type returns the Handshake Type.
func (m MessageCertificate) Type() Type {
	return TypeCertificate
}

// Marshal encodes the Handshake.
func (m *MessageCertificate) Marshal() ([]byte, error) {
	var out []byte
	for _, cert := range m.Certificate {
		out = append(out, byte(len(cert)>>16), byte(len(cert)>>8), byte(len(cert)))
		out = append(out, cert...)
	}

	totalLength := len(out)
	return append([]byte{byte(totalLength >> 16), byte(totalLength >> 8), byte(totalLength)}, out...), nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageCertificate) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return errBufferTooSmall
	}
	declared := uint24(data[0:3])
	data = data[3:]
	if len(data) < int(declared) {
		return errBufferTooSmall
	}
	data = data[:declared]

	m.Certificate = nil
	for len(data) != 0 {
		if len(data) < 3 {
			return errBufferTooSmall
		}
		certLen := uint24(data[0:3])
		data = data[3:]
		if len(data) < int(certLen) {
			return errBufferTooSmall
		}
		m.Certificate = append(m.Certificate, append([]byte{}, data[:certLen]...))
		data = data[certLen:]
	}
	return nil
}
