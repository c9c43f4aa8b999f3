// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

// RenegotiationInfo signals secure-renegotiation support, RFC 5746. DTLS
// sessions in this stack always disable renegotiation (spec.md Non-goals),
// but the signalling cipher suite value TLS_EMPTY_RENEGOTIATION_INFO_SCSV is
// still advertised, and the server's empty RenegotiationInfo extension is
// parsed so the client's "secure negotiation" indicator can be set.
type RenegotiationInfo struct {
	RenegotiatedConnection []byte
}

// TypeValue implements Extension.
func (r RenegotiationInfo) TypeValue() TypeValue {
	return RenegotiationInfoTypeValue
}

// Marshal encodes the extension body.
func (r *RenegotiationInfo) Marshal() ([]byte, error) {
	return append([]byte{byte(len(r.RenegotiatedConnection))}, r.RenegotiatedConnection...), nil
}

// Unmarshal populates the extension from wire data.
func (r *RenegotiationInfo) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return errBufferTooSmall
	}
	n := int(data[0])
	if len(data) < 1+n {
		return errBufferTooSmall
	}
	r.RenegotiatedConnection = append([]byte{}, data[1:1+n]...)
	return nil
}
