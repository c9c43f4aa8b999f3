// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

// ConnectionID is the connection_id extension, RFC 9146. Carries the CID the
// sender wishes its peer to use when addressing records back to it.
type ConnectionID struct {
	CID []byte
}

// TypeValue implements Extension.
func (c ConnectionID) TypeValue() TypeValue {
	return ConnectionIDTypeValue
}

// Marshal encodes the extension body.
func (c *ConnectionID) Marshal() ([]byte, error) {
	return append([]byte{byte(len(c.CID))}, c.CID...), nil
}

// Unmarshal populates the extension from wire data.
func (c *ConnectionID) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	if len(data) < 1+n {
		return errBufferTooSmall
	}
	c.CID = append([]byte{}, data[1:1+n]...)
	return nil
}
