// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

// Content is the payload of a DTLS record: a Handshake, ChangeCipherSpec,
// Alert, or ApplicationData. RecordLayer dispatches on ContentType to decide
// which concrete type to Unmarshal into.
type Content interface {
	ContentType() ContentType
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}
