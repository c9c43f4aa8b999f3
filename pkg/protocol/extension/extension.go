// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package extension implements the ClientHello/ServerHello extensions this
// stack emits and understands: EC named groups, EC point formats, SRTP
// protection profiles, ALPN, renegotiation info (always sent as the
// signalling cipher suite companion), the extended master secret flag, and
// Connection ID (RFC 9146).
package extension

import (
	"encoding/binary"
)

// TypeValue is the 16-bit extension type ID on the wire.
type TypeValue uint16

// Extension type IDs this stack knows about.
const (
	SupportedEllipticCurvesTypeValue TypeValue = 10
	SupportedPointFormatsTypeValue   TypeValue = 11
	SupportedSignatureAlgorithmsTypeValue TypeValue = 13
	UseSRTPTypeValue                 TypeValue = 14
	ALPNTypeValue                    TypeValue = 16
	UseExtendedMasterSecretTypeValue TypeValue = 23
	ConnectionIDTypeValue            TypeValue = 54
	RenegotiationInfoTypeValue       TypeValue = 65281
)

// Extension is a single ClientHello/ServerHello extension.
type Extension interface {
	TypeValue() TypeValue
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

const extensionHeaderSize = 4 // 2 bytes type + 2 bytes length

// Marshal encodes a list of extensions into the ClientHello/ServerHello
// extensions block, including its outer 2-byte total-length prefix (an
// empty list encodes as 0x00 0x00).
func Marshal(extensions []Extension) ([]byte, error) {
	var body []byte
	for _, e := range extensions {
		raw, err := e.Marshal()
		if err != nil {
			return nil, err
		}
		header := make([]byte, extensionHeaderSize)
		binary.BigEndian.PutUint16(header, uint16(e.TypeValue()))
		binary.BigEndian.PutUint16(header[2:], uint16(len(raw)))
		body = append(body, header...)
		body = append(body, raw...)
	}

	out := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(out, uint16(len(body)))
	copy(out[2:], body)
	return out, nil
}

// Unmarshal decodes the extensions block (including its outer 2-byte total
// length). Unknown extension types are skipped rather than rejected, per
// RFC 5246 Section 7.4.1.4.
func Unmarshal(data []byte) ([]Extension, error) {
	if len(data) < 2 {
		return nil, errBufferTooSmall
	}
	declaredLen := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < declaredLen {
		return nil, errBufferTooSmall
	}
	data = data[:declaredLen]

	extensions := []Extension{}
	for len(data) != 0 {
		if len(data) < extensionHeaderSize {
			return nil, errBufferTooSmall
		}
		typeValue := TypeValue(binary.BigEndian.Uint16(data))
		length := int(binary.BigEndian.Uint16(data[2:]))
		if len(data) < extensionHeaderSize+length {
			return nil, errBufferTooSmall
		}
		body := data[extensionHeaderSize : extensionHeaderSize+length]
		data = data[extensionHeaderSize+length:]

		var e Extension
		switch typeValue {
		case SupportedEllipticCurvesTypeValue:
			e = &SupportedEllipticCurves{}
		case SupportedPointFormatsTypeValue:
			e = &SupportedPointFormats{}
		case SupportedSignatureAlgorithmsTypeValue:
			e = &SupportedSignatureAlgorithms{}
		case UseSRTPTypeValue:
			e = &UseSRTP{}
		case ALPNTypeValue:
			e = &ALPN{}
		case UseExtendedMasterSecretTypeValue:
			e = &UseExtendedMasterSecret{}
		case RenegotiationInfoTypeValue:
			e = &RenegotiationInfo{}
		case ConnectionIDTypeValue:
			e = &ConnectionID{}
		default:
			continue
		}
		if err := e.Unmarshal(body); err != nil {
			return nil, err
		}
		extensions = append(extensions, e)
	}
	return extensions, nil
}
