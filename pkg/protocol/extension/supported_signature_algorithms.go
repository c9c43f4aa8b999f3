// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "encoding/binary"

// SignatureHashAlgorithm is a single (hash, signature) pair as carried in
// the signature_algorithms extension (RFC 5246 Section 7.4.1.4.1). The
// concrete enumerations live in pkg/protocol/handshake to avoid a import
// cycle between extension and handshake; this extension carries their raw
// wire bytes.
type SignatureHashAlgorithm struct {
	Hash      uint8
	Signature uint8
}

// SupportedSignatureAlgorithms is the "signature_algorithms" extension
// (0x000D), required on every certificate-bearing ClientHello for TLS
// 1.2/DTLS 1.2 (spec.md Section 4.4, "Signature-algorithm enumeration").
type SupportedSignatureAlgorithms struct {
	SignatureHashAlgorithms []SignatureHashAlgorithm
}

// TypeValue implements Extension.
func (s SupportedSignatureAlgorithms) TypeValue() TypeValue {
	return SupportedSignatureAlgorithmsTypeValue
}

// Marshal encodes the extension body.
func (s *SupportedSignatureAlgorithms) Marshal() ([]byte, error) {
	out := make([]byte, 2+2*len(s.SignatureHashAlgorithms))
	binary.BigEndian.PutUint16(out, uint16(2*len(s.SignatureHashAlgorithms)))
	for i, a := range s.SignatureHashAlgorithms {
		out[2+2*i] = a.Hash
		out[2+2*i+1] = a.Signature
	}
	return out, nil
}

// Unmarshal populates the extension from wire data.
func (s *SupportedSignatureAlgorithms) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	listLen := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < listLen || listLen%2 != 0 {
		return errBufferTooSmall
	}
	s.SignatureHashAlgorithms = nil
	for i := 0; i < listLen; i += 2 {
		s.SignatureHashAlgorithms = append(s.SignatureHashAlgorithms, SignatureHashAlgorithm{
			Hash:      data[i],
			Signature: data[i+1],
		})
	}
	return nil
}
