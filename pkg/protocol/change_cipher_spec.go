// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

// ChangeCipherSpec signals an epoch transition: the next record on this
// connection (in the direction it was sent) is protected under the newly
// negotiated keys.
//
// https://tools.ietf.org/html/rfc5246#section-7.1
type ChangeCipherSpec struct{}

// ContentType implements Content.
func (c ChangeCipherSpec) ContentType() ContentType {
	return ContentTypeChangeCipherSpec
}

// Marshal encodes the ChangeCipherSpec.
func (c *ChangeCipherSpec) Marshal() ([]byte, error) {
	return []byte{0x01}, nil
}

// Unmarshal populates the ChangeCipherSpec from wire data.
func (c *ChangeCipherSpec) Unmarshal(data []byte) error {
	if len(data) != 1 || data[0] != 0x01 {
		return errInvalidCipherSpec
	}
	return nil
}
