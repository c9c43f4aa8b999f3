// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package clonehash implements a transcript hash that can be snapshotted
// mid-handshake without disturbing the running hash: computing a
// CertificateVerify or Finished digest requires the transcript hash as of
// a particular message, but the handshake driver keeps accumulating
// further messages into the same running hash afterwards (spec.md Section
// 4.6, "Transcript hash clone-before-finalize").
package clonehash

import (
	"encoding"
	"hash"
)

// marshalableHash is the subset of crypto/sha256 and crypto/sha1's hash
// types this package relies on: both support binary marshaling of their
// running state for exactly this clone-before-finalize purpose.
type marshalableHash interface {
	hash.Hash
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Hash pairs a running hash with the constructor that built it, so Clone
// can produce an independent copy.
type Hash struct {
	marshalableHash
	newHash func() hash.Hash
}

// New wraps newHash (e.g. sha256.New) so the result supports Clone.
// newHash must return a hash.Hash that also implements
// encoding.BinaryMarshaler/BinaryUnmarshaler.
func New(newHash func() hash.Hash) *Hash {
	mh, ok := newHash().(marshalableHash)
	if !ok {
		panic("clonehash: hash does not support binary marshaling")
	}
	return &Hash{marshalableHash: mh, newHash: newHash}
}

// Clone returns a new Hash with an independent copy of h's current
// running state; writes to the clone do not affect h and vice versa.
func (h *Hash) Clone() (*Hash, error) {
	state, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}

	fresh, ok := h.newHash().(marshalableHash)
	if !ok {
		return nil, errCloneUnsupported
	}
	if err := fresh.UnmarshalBinary(state); err != nil {
		return nil, err
	}
	return &Hash{marshalableHash: fresh, newHash: h.newHash}, nil
}
