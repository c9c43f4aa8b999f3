// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/hmac"
	"hash"

	"golang.org/x/crypto/hkdf"
)

// pskBinder computes the TLS 1.3-style PSK binder HMAC (RFC 8446 Section
// 4.2.11.2) over transcript, keyed off the HKDF-derived binder_key for
// identity. This stack never runs a full TLS 1.3 flight state machine
// (spec.md Non-goals); the binder construction is exposed as a
// standalone helper (no TLS 1.3 Finished-hash helper is present) so PSK identities provisioned for 1.3 peers can still
// be verified without one (spec.md Section 4.6).
func pskBinder(h func() hash.Hash, psk, identity, transcript []byte) ([]byte, error) {
	binderKey, err := derivePSKBinderKey(h, psk, identity)
	if err != nil {
		return nil, err
	}

	transcriptHash := h()
	transcriptHash.Write(transcript) //nolint:errcheck

	mac := hmac.New(h, binderKey)
	mac.Write(transcriptHash.Sum(nil)) //nolint:errcheck
	return mac.Sum(nil), nil
}

// derivePSKBinderKey runs HKDF-Extract(salt=0, ikm=psk) followed by
// HKDF-Expand-Label("res binder", "", Hash.length) against identity as
// context, the RFC 8446 Section 7.1 key schedule's binder_key derivation.
func derivePSKBinderKey(h func() hash.Hash, psk, identity []byte) ([]byte, error) {
	earlySecret := hkdf.Extract(h, psk, nil)

	info := append([]byte("dtls 1.3 res binder"), identity...)
	reader := hkdf.Expand(h, earlySecret, info)

	out := make([]byte, h().Size())
	if _, err := reader.Read(out); err != nil {
		return nil, err
	}
	return out, nil
}

// verifyPSKBinder reports whether binder is the correct PSK binder for
// (psk, identity, transcript).
func verifyPSKBinder(h func() hash.Hash, psk, identity, transcript, binder []byte) (bool, error) {
	expected, err := pskBinder(h, psk, identity, transcript)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, binder), nil
}
