// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import "github.com/fieldlink/dtls/pkg/protocol"

// InnerPlaintext is the TLSInnerPlaintext structure used when a record is
// sent under the Connection ID content type (RFC 9146 Section 4): the real
// content type is hidden inside the ciphertext, followed by a run of zero
// padding bytes, so an on-path observer sees only ContentTypeConnectionID.
type InnerPlaintext struct {
	Content  []byte
	RealType protocol.ContentType
	Zeros    uint
}

// Marshal encodes the inner plaintext: content, real type, zero padding.
func (i *InnerPlaintext) Marshal() ([]byte, error) {
	out := make([]byte, len(i.Content)+1+int(i.Zeros))
	copy(out, i.Content)
	out[len(i.Content)] = byte(i.RealType)
	return out, nil
}

// Unmarshal strips trailing zero padding and recovers the real content type
// and content.
func (i *InnerPlaintext) Unmarshal(data []byte) error {
	end := len(data)
	for end > 0 && data[end-1] == 0 {
		end--
	}
	if end == 0 {
		return errBufferTooSmall
	}
	i.RealType = protocol.ContentType(data[end-1])
	i.Content = append([]byte{}, data[:end-1]...)
	i.Zeros = uint(len(data) - end)
	return nil
}
