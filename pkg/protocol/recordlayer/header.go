// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package recordlayer implements the 13-byte DTLS record header (spec.md
// Section 4.1) and the record/plaintext framing built on top of it,
// including the RFC 9146 Connection ID variant.
package recordlayer

import (
	"encoding/binary"

	"github.com/fieldlink/dtls/pkg/protocol"
)

// FixedHeaderSize is the length of a DTLS record header carrying no
// Connection ID: type(1) | version(2) | epoch(2) | sequence(6) | length(2).
const FixedHeaderSize = 13

// MaxSequenceNumber is the largest 48-bit sequence number a record may carry
// before the session must rehandshake or be abandoned (RFC 6347 Section
// 4.1.0).
const MaxSequenceNumber = 0x0000FFFFFFFFFFFF

// ErrInvalidPacketLength is returned when fewer than FixedHeaderSize bytes
// are reachable from the offset, or the inner length overruns the packet.
var ErrInvalidPacketLength = errInvalidPacketLength

// Header is the 13-byte (or, with a Connection ID, variable-length) DTLS
// record header described in spec.md Section 4.1:
//
//	offset 0:  type(1)
//	offset 1:  version(2), big-endian
//	offset 3:  epoch(2), big-endian
//	offset 5:  sequence number(6), big-endian
//	offset 11: length(2)
type Header struct {
	ContentType    protocol.ContentType
	Version        protocol.Version
	Epoch          uint16
	SequenceNumber uint64 // 48-bit on the wire
	ContentLen     uint16

	// ConnectionID, if non-nil (even if zero-length), indicates this header
	// should be marshaled/unmarshaled in the tls12_cid shape (RFC 9146):
	// the CID is carried between the epoch/sequence fields and the length.
	ConnectionID []byte
}

// Size returns the marshaled size of this header, accounting for an
// optional Connection ID.
func (h *Header) Size() int {
	if h.ConnectionID != nil {
		return FixedHeaderSize + len(h.ConnectionID)
	}
	return FixedHeaderSize
}

// Marshal encodes the header.
func (h *Header) Marshal() ([]byte, error) {
	out := make([]byte, h.Size())
	out[0] = byte(h.ContentType)
	out[1] = h.Version.Major
	out[2] = h.Version.Minor
	binary.BigEndian.PutUint16(out[3:], h.Epoch)

	// 48-bit sequence number.
	putUint48(out[5:11], h.SequenceNumber)

	offset := 11
	if h.ConnectionID != nil {
		copy(out[offset:], h.ConnectionID)
		offset += len(h.ConnectionID)
	}
	binary.BigEndian.PutUint16(out[offset:], h.ContentLen)
	return out, nil
}

// Unmarshal decodes the header starting at the front of data. If
// h.ConnectionID is non-nil on entry, its length determines how many CID
// bytes are consumed (the caller must know the negotiated CID length ahead
// of time, since DTLS does not self-describe it per record).
func (h *Header) Unmarshal(data []byte) error {
	cidLen := len(h.ConnectionID)
	minLen := FixedHeaderSize + cidLen
	if len(data) < minLen {
		return errInvalidPacketLength
	}

	h.ContentType = protocol.ContentType(data[0])
	h.Version = protocol.Version{Major: data[1], Minor: data[2]}
	h.Epoch = binary.BigEndian.Uint16(data[3:])
	h.SequenceNumber = uint48(data[5:11])

	offset := 11
	if h.ContentType == protocol.ContentTypeConnectionID {
		h.ConnectionID = append([]byte{}, data[offset:offset+cidLen]...)
		offset += cidLen
	} else {
		h.ConnectionID = nil
	}
	h.ContentLen = binary.BigEndian.Uint16(data[offset:])

	if int(h.ContentLen)+offset+2 > len(data) {
		return errInvalidPacketLength
	}
	return nil
}

func putUint48(b []byte, v uint64) {
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

func uint48(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}
