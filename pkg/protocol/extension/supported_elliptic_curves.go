// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "encoding/binary"

// NamedCurve is the 16-bit named-curve/group ID from RFC 8422/IANA.
type NamedCurve uint16

// Named curves this stack advertises.
const (
	X25519  NamedCurve = 0x001d
	P256    NamedCurve = 0x0017
	P384    NamedCurve = 0x0018
	Secp256 NamedCurve = P256
)

// SupportedEllipticCurves is the "supported_groups" extension (0x000A),
// required on every ECDHE ClientHello per spec.md Section 4.4.
//
// wire: ext_len(2) | list_len(2) | (group_id x n)
type SupportedEllipticCurves struct {
	EllipticCurves []NamedCurve
}

// TypeValue implements Extension.
func (s SupportedEllipticCurves) TypeValue() TypeValue {
	return SupportedEllipticCurvesTypeValue
}

// Marshal encodes the extension body (without the outer ext_len header,
// which the generic extension.Marshal adds).
func (s *SupportedEllipticCurves) Marshal() ([]byte, error) {
	out := make([]byte, 2+2*len(s.EllipticCurves))
	binary.BigEndian.PutUint16(out, uint16(2*len(s.EllipticCurves)))
	for i, c := range s.EllipticCurves {
		binary.BigEndian.PutUint16(out[2+2*i:], uint16(c))
	}
	return out, nil
}

// Unmarshal populates the extension from wire data.
func (s *SupportedEllipticCurves) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	listLen := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < listLen || listLen%2 != 0 {
		return errBufferTooSmall
	}
	for i := 0; i < listLen; i += 2 {
		s.EllipticCurves = append(s.EllipticCurves, NamedCurve(binary.BigEndian.Uint16(data[i:])))
	}
	return nil
}
