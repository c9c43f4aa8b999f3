// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// RandomLength is the wire size of the Random structure: a 4-byte
// gmt_unix_time followed by 28 random bytes (spec.md Section 4.4,
// "ClientHello construction").
const RandomLength = 32

// RandomBytesLength is the size of the purely-random tail of Random.
const RandomBytesLength = 28

// Random is the ClientHello/ServerHello random value.
type Random struct {
	GMTUnixTime time.Time
	RandomBytes [RandomBytesLength]byte
}

// Populate fills GMTUnixTime with the current time and RandomBytes with
// cryptographically random bytes, as every ClientHello/ServerHello must.
func (r *Random) Populate() error {
	r.GMTUnixTime = time.Now()
	_, err := rand.Read(r.RandomBytes[:])
	return err
}

// MarshalFixed encodes the Random into its fixed 32-byte wire form.
func (r *Random) MarshalFixed() [RandomLength]byte {
	var out [RandomLength]byte
	binary.BigEndian.PutUint32(out[0:4], uint32(r.GMTUnixTime.Unix()))
	copy(out[4:], r.RandomBytes[:])
	return out
}

// UnmarshalFixed decodes the Random from its fixed 32-byte wire form.
func (r *Random) UnmarshalFixed(data [RandomLength]byte) {
	r.GMTUnixTime = time.Unix(int64(binary.BigEndian.Uint32(data[0:4])), 0)
	copy(r.RandomBytes[:], data[4:])
}
