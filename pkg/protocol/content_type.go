// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

// ContentType represents the record layer type, carried in the 13-byte DTLS
// record header.
//
// https://tools.ietf.org/html/rfc4346#section-6.2.1
type ContentType uint8

// ContentType values defined by RFC 4346/6347 and RFC 9146 (Connection ID).
const (
	ContentTypeChangeCipherSpec ContentType = 20
	ContentTypeAlert            ContentType = 21
	ContentTypeHandshake        ContentType = 22
	ContentTypeApplicationData  ContentType = 23
	ContentTypeConnectionID     ContentType = 25
)

// String implements fmt.Stringer.
func (c ContentType) String() string {
	switch c {
	case ContentTypeChangeCipherSpec:
		return "ChangeCipherSpec"
	case ContentTypeAlert:
		return "Alert"
	case ContentTypeHandshake:
		return "Handshake"
	case ContentTypeApplicationData:
		return "ApplicationData"
	case ContentTypeConnectionID:
		return "ConnectionID"
	default:
		return "Unknown"
	}
}
