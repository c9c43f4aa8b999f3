// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"encoding/binary"

	"github.com/fieldlink/dtls/pkg/protocol"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

// generateAEADAdditionalData builds the AEAD associated data for a
// standard (non-CID) DTLS 1.2 record: epoch+seqnum, content type, version,
// and payload length (RFC 6347 Section 4.1.2.1).
func generateAEADAdditionalData(h *recordlayer.Header, payloadLen int) []byte {
	var additionalData [13]byte
	binary.BigEndian.PutUint16(additionalData[0:], h.Epoch)
	putUint48(additionalData[2:8], h.SequenceNumber)
	additionalData[8] = byte(h.ContentType)
	additionalData[9] = h.Version.Major
	additionalData[10] = h.Version.Minor
	binary.BigEndian.PutUint16(additionalData[11:], uint16(payloadLen))
	return additionalData[:]
}

// generateAEADAdditionalDataCID builds the AEAD associated data for a
// connection-ID-bearing record (RFC 9146 Section 5.3): the CID and an
// extra length-of-CID byte are woven in between the sequence number and
// the real content type.
func generateAEADAdditionalDataCID(h *recordlayer.Header, payloadLen int) []byte {
	out := make([]byte, 0, 14+len(h.ConnectionID))
	var epochSeq [8]byte
	binary.BigEndian.PutUint16(epochSeq[0:], h.Epoch)
	putUint48(epochSeq[2:8], h.SequenceNumber)
	out = append(out, epochSeq[:]...)
	out = append(out, byte(protocol.ContentTypeConnectionID))
	out = append(out, byte(len(h.ConnectionID)))
	out = append(out, h.ConnectionID...)
	out = append(out, h.Version.Major, h.Version.Minor)
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(payloadLen))
	return append(out, length[:]...)
}

func putUint48(b []byte, v uint64) {
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}
