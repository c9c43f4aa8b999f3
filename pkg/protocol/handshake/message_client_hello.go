// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"encoding/binary"

	"github.com/fieldlink/dtls/pkg/protocol"
	"github.com/fieldlink/dtls/pkg/protocol/extension"
	"github.com/zmap/zcrypto/tls"
)

// CipherSuiteID is the 16-bit cipher suite identifier as carried on the
// wire (IANA TLS Cipher Suite Registry).
type CipherSuiteID uint16

// TLSEmptyRenegotiationInfoSCSV is the signalling cipher suite value
// (spec.md Section 6) always appended to the offered cipher suite list, even
// though DTLS sessions in this stack never renegotiate.
const TLSEmptyRenegotiationInfoSCSV CipherSuiteID = 0x00ff

// MessageClientHello is the first message a DTLS client sends. The wire
// layout differs from TLS's ClientHello by the insertion of the Cookie
// field immediately after SessionID (spec.md Section 4.4): on a client's
// first attempt Cookie is empty; on the retry that echoes a
// HelloVerifyRequest cookie, the cipher-suite block that follows shifts by
// exactly len(Cookie) bytes.
//
// https://tools.ietf.org/html/rfc6347#section-4.2.2
type MessageClientHello struct {
	Version protocol.Version
	Random  Random

	SessionID []byte
	Cookie    []byte

	CipherSuiteIDs     []CipherSuiteID
	CompressionMethods []*protocol.CompressionMethod
	Extensions         []extension.Extension
}

// Type returns the Handshake Type.
func (m MessageClientHello) Type() Type {
	return TypeClientHello
}

// Marshal encodes the Handshake.
func (m *MessageClientHello) Marshal() ([]byte, error) {
	if len(m.Cookie) > 255 {
		return nil, errCookieTooLong
	}

	out := make([]byte, 2+RandomLength)
	out[0] = m.Version.Major
	out[1] = m.Version.Minor
	rnd := m.Random.MarshalFixed()
	copy(out[2:], rnd[:])

	out = append(out, byte(len(m.SessionID)))
	out = append(out, m.SessionID...)

	out = append(out, byte(len(m.Cookie)))
	out = append(out, m.Cookie...)

	cipherSuiteIDs := append([]CipherSuiteID{}, m.CipherSuiteIDs...)
	cipherSuiteIDs = append(cipherSuiteIDs, TLSEmptyRenegotiationInfoSCSV)

	out = append(out, make([]byte, 2)...)
	binary.BigEndian.PutUint16(out[len(out)-2:], uint16(2*len(cipherSuiteIDs)))
	for _, id := range cipherSuiteIDs {
		out = append(out, 0, 0)
		binary.BigEndian.PutUint16(out[len(out)-2:], uint16(id))
	}

	out = append(out, byte(len(m.CompressionMethods)))
	for _, c := range m.CompressionMethods {
		out = append(out, byte(c.ID))
	}

	extensions, err := extension.Marshal(m.Extensions)
	if err != nil {
		return nil, err
	}
	return append(out, extensions...), nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageClientHello) Unmarshal(data []byte) error { //nolint:gocognit
	if len(data) < 2+RandomLength {
		return errBufferTooSmall
	}
	m.Version = protocol.Version{Major: data[0], Minor: data[1]}

	var random [RandomLength]byte
	copy(random[:], data[2:])
	m.Random.UnmarshalFixed(random)

	offset := 2 + RandomLength

	if len(data) <= offset {
		return errBufferTooSmall
	}
	sessionIDLen := int(data[offset])
	offset++
	if len(data) < offset+sessionIDLen {
		return errBufferTooSmall
	}
	m.SessionID = append([]byte{}, data[offset:offset+sessionIDLen]...)
	offset += sessionIDLen

	if len(data) <= offset {
		return errBufferTooSmall
	}
	cookieLen := int(data[offset])
	offset++
	if len(data) < offset+cookieLen {
		return errBufferTooSmall
	}
	m.Cookie = append([]byte{}, data[offset:offset+cookieLen]...)
	offset += cookieLen

	if len(data) < offset+2 {
		return errBufferTooSmall
	}
	cipherSuitesLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if cipherSuitesLen%2 != 0 || len(data) < offset+cipherSuitesLen {
		return errBufferTooSmall
	}
	m.CipherSuiteIDs = nil
	for i := 0; i < cipherSuitesLen; i += 2 {
		m.CipherSuiteIDs = append(m.CipherSuiteIDs, CipherSuiteID(binary.BigEndian.Uint16(data[offset+i:])))
	}
	offset += cipherSuitesLen

	if len(data) <= offset {
		return errBufferTooSmall
	}
	compressionLen := int(data[offset])
	offset++
	if len(data) < offset+compressionLen {
		return errBufferTooSmall
	}
	m.CompressionMethods = nil
	methods := protocol.CompressionMethods()
	for i := 0; i < compressionLen; i++ {
		id := protocol.CompressionMethodID(data[offset+i])
		if cm, ok := methods[id]; ok {
			m.CompressionMethods = append(m.CompressionMethods, cm)
		} else {
			m.CompressionMethods = append(m.CompressionMethods, &protocol.CompressionMethod{ID: id})
		}
	}
	offset += compressionLen

	if len(data) <= offset {
		m.Extensions = []extension.Extension{}
		return nil
	}
	extensions, err := extension.Unmarshal(data[offset:])
	if err != nil {
		return err
	}
	m.Extensions = extensions
	return nil
}

// MakeLog produces a zcrypto/tls.ClientHello for the handshake-log surface
// (SPEC_FULL.md Section 3).
func (m *MessageClientHello) MakeLog() *tls.ClientHello {
	ret := &tls.ClientHello{}
	ret.Version = tls.TLSVersion((uint16(m.Version.Major) << 8) | uint16(m.Version.Minor))
	ret.Random = make([]byte, RandomLength)
	rnd := m.Random.MarshalFixed()
	copy(ret.Random, rnd[:])
	ret.SessionID = append([]byte{}, m.SessionID...)

	for _, id := range m.CipherSuiteIDs {
		ret.CipherSuites = append(ret.CipherSuites, tls.CipherSuiteID(id))
	}
	for _, c := range m.CompressionMethods {
		ret.CompressionMethods = append(ret.CompressionMethods, uint8(c.ID))
	}
	return ret
}
