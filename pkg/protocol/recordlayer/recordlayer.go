// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"github.com/fieldlink/dtls/pkg/protocol"
	"github.com/fieldlink/dtls/pkg/protocol/alert"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
)

// RecordLayer is a header plus its typed Content, the unit C1 (the record
// codec) works with.
type RecordLayer struct {
	Header  Header
	Content protocol.Content
}

// Marshal encodes the record: header first (with ContentLen filled in from
// the marshaled content), content second.
func (r *RecordLayer) Marshal() ([]byte, error) {
	if r.Content == nil {
		return nil, errUnknownContentType
	}
	contentRaw, err := r.Content.Marshal()
	if err != nil {
		return nil, err
	}

	r.Header.ContentType = r.Content.ContentType()
	r.Header.ContentLen = uint16(len(contentRaw))

	headerRaw, err := r.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(headerRaw, contentRaw...), nil
}

// Unmarshal decodes a single record. The Header's ConnectionID field, if the
// caller pre-populated it with a zero-length non-nil slice, enables CID
// parsing per ContentAwareUnpackDatagram.
func (r *RecordLayer) Unmarshal(data []byte) error {
	if err := r.Header.Unmarshal(data); err != nil {
		return err
	}
	body := data[r.Header.Size() : r.Header.Size()+int(r.Header.ContentLen)]

	switch r.Header.ContentType {
	case protocol.ContentTypeChangeCipherSpec:
		r.Content = &protocol.ChangeCipherSpec{}
	case protocol.ContentTypeAlert:
		r.Content = &alert.Alert{}
	case protocol.ContentTypeHandshake:
		r.Content = &handshake.Handshake{}
	case protocol.ContentTypeApplicationData:
		r.Content = &protocol.ApplicationData{}
	default:
		return errUnknownContentType
	}
	return r.Content.Unmarshal(body)
}

// UnpackDatagram splits a single UDP datagram into the one or more DTLS
// records concatenated within it. No record may span more than one
// datagram (spec.md Section 4.1); any record whose declared length does not
// fit is a fatal framing error for that datagram, not just that record.
func UnpackDatagram(buf []byte) ([][]byte, error) {
	return ContentAwareUnpackDatagram(buf, 0)
}

// ContentAwareUnpackDatagram is UnpackDatagram aware of a negotiated
// Connection ID length, needed because tls12_cid records carry a
// variable-length CID between the epoch/sequence fields and the length
// field, which shifts where the length field (and therefore the next
// record) begins.
func ContentAwareUnpackDatagram(buf []byte, cidLength int) ([][]byte, error) {
	out := [][]byte{}

	for offset := 0; offset < len(buf); {
		h := &Header{}
		if protocol.ContentType(buf[offset]) == protocol.ContentTypeConnectionID && cidLength > 0 {
			h.ConnectionID = make([]byte, cidLength)
		}
		if err := h.Unmarshal(buf[offset:]); err != nil {
			return nil, err
		}

		size := h.Size() + int(h.ContentLen)
		if offset+size > len(buf) {
			return nil, errInvalidPacketLength
		}
		out = append(out, buf[offset:offset+size])
		offset += size
	}
	return out, nil
}
