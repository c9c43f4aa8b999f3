// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

import "encoding/binary"

// SRTPProtectionProfile is the 16-bit SRTP protection profile ID, RFC 5764.
type SRTPProtectionProfile uint16

// UseSRTP is the use_srtp extension (RFC 5764) used to negotiate SRTP keying
// material export for DTLS-SRTP.
type UseSRTP struct {
	ProtectionProfiles []SRTPProtectionProfile
	Mki                []byte
}

// TypeValue implements Extension.
func (u UseSRTP) TypeValue() TypeValue {
	return UseSRTPTypeValue
}

// Marshal encodes the extension body.
func (u *UseSRTP) Marshal() ([]byte, error) {
	out := make([]byte, 2+2*len(u.ProtectionProfiles)+1+len(u.Mki))
	binary.BigEndian.PutUint16(out, uint16(2*len(u.ProtectionProfiles)))
	for i, p := range u.ProtectionProfiles {
		binary.BigEndian.PutUint16(out[2+2*i:], uint16(p))
	}
	mkiOffset := 2 + 2*len(u.ProtectionProfiles)
	out[mkiOffset] = byte(len(u.Mki))
	copy(out[mkiOffset+1:], u.Mki)
	return out, nil
}

// Unmarshal populates the extension from wire data.
func (u *UseSRTP) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return errBufferTooSmall
	}
	profilesLen := int(binary.BigEndian.Uint16(data))
	if profilesLen%2 != 0 || len(data) < 2+profilesLen+1 {
		return errBufferTooSmall
	}
	for i := 0; i < profilesLen; i += 2 {
		u.ProtectionProfiles = append(u.ProtectionProfiles, SRTPProtectionProfile(binary.BigEndian.Uint16(data[2+i:])))
	}
	mkiOffset := 2 + profilesLen
	mkiLen := int(data[mkiOffset])
	if len(data) < mkiOffset+1+mkiLen {
		return errBufferTooSmall
	}
	u.Mki = append([]byte{}, data[mkiOffset+1:mkiOffset+1+mkiLen]...)
	return nil
}
