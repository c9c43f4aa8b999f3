// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "encoding/binary"

// Type identifies which handshake message follows the 12-byte header.
type Type byte

// Handshake message types, RFC 5246 Section 7.4 plus DTLS's
// hello_verify_request (RFC 6347 Section 4.2.2).
const (
	TypeHelloRequest       Type = 0
	TypeClientHello        Type = 1
	TypeServerHello        Type = 2
	TypeHelloVerifyRequest Type = 3
	TypeCertificate        Type = 11
	TypeServerKeyExchange  Type = 12
	TypeCertificateRequest Type = 13
	TypeServerHelloDone    Type = 14
	TypeCertificateVerify  Type = 15
	TypeClientKeyExchange  Type = 16
	TypeFinished           Type = 20
)

func (t Type) String() string {
	switch t {
	case TypeHelloRequest:
		return "HelloRequest"
	case TypeClientHello:
		return "ClientHello"
	case TypeServerHello:
		return "ServerHello"
	case TypeHelloVerifyRequest:
		return "HelloVerifyRequest"
	case TypeCertificate:
		return "Certificate"
	case TypeServerKeyExchange:
		return "ServerKeyExchange"
	case TypeCertificateRequest:
		return "CertificateRequest"
	case TypeServerHelloDone:
		return "ServerHelloDone"
	case TypeCertificateVerify:
		return "CertificateVerify"
	case TypeClientKeyExchange:
		return "ClientKeyExchange"
	case TypeFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// HeaderLength is the size of the handshake fragment header (spec.md
// Section 6, "Wire, DTLS handshake message"):
//
//	type(1) | length(3) | msg_seq(2) | frag_off(3) | frag_len(3)
const HeaderLength = 12

// Header is the per-fragment handshake header. Length is the length of the
// complete (reassembled) message; FragmentLength is the length of just this
// fragment's payload.
type Header struct {
	Type            Type
	Length          uint32 // 24-bit
	MessageSequence uint16
	FragmentOffset  uint32 // 24-bit
	FragmentLength  uint32 // 24-bit
}

// Marshal encodes the header.
func (h *Header) Marshal() ([]byte, error) {
	out := make([]byte, HeaderLength)
	out[0] = byte(h.Type)
	putUint24(out[1:4], h.Length)
	binary.BigEndian.PutUint16(out[4:6], h.MessageSequence)
	putUint24(out[6:9], h.FragmentOffset)
	putUint24(out[9:12], h.FragmentLength)
	return out, nil
}

// Unmarshal decodes the header.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderLength {
		return errBufferTooSmall
	}
	h.Type = Type(data[0])
	h.Length = uint24(data[1:4])
	h.MessageSequence = binary.BigEndian.Uint16(data[4:6])
	h.FragmentOffset = uint24(data[6:9])
	h.FragmentLength = uint24(data[9:12])
	return nil
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func uint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}
