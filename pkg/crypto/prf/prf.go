// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package prf implements the TLS 1.0-1.2 pseudo-random function (RFC 5246
// Section 5) this stack uses to derive the master secret, the record-layer
// key block, and Finished verify_data (spec.md Section 4.6, "Key schedule").
package prf

import (
	"crypto/hmac"
	"hash"

	"github.com/fieldlink/dtls/pkg/crypto/elliptic"
)

const (
	masterSecretLabel         = "master secret"
	extendedMasterSecretLabel = "extended master secret"
	keyExpansionLabel         = "key expansion"
	verifyDataClientLabel     = "client finished"
	verifyDataServerLabel     = "server finished"

	masterSecretLength = 48
	verifyDataLength   = 12
)

// EncryptionKeys is the record-layer key material expanded from the master
// secret (spec.md Section 4.6).
type EncryptionKeys struct {
	MasterSecret   []byte
	ClientMACKey   []byte
	ServerMACKey   []byte
	ClientWriteKey []byte
	ServerWriteKey []byte
	ClientWriteIV  []byte
	ServerWriteIV  []byte
}

// PreMasterSecret computes the ECDHE shared secret given the peer's public
// key, the local private key, and the negotiated curve.
func PreMasterSecret(publicKey, privateKey []byte, curve elliptic.Curve) ([]byte, error) {
	return curve.X(privateKey, publicKey)
}

// PSKPreMasterSecret builds the RFC 4279 Section 2 premaster secret for a
// plain (non-ECDHE) PSK cipher suite: the "other secret" half is all
// zeros, as long as the PSK itself.
func PSKPreMasterSecret(psk []byte) []byte {
	pskLen := len(psk)

	out := make([]byte, 0, 2*pskLen+4)
	out = appendUint16(out, uint16(pskLen))
	out = append(out, make([]byte, pskLen)...)
	out = appendUint16(out, uint16(pskLen))
	return append(out, psk...)
}

// PSKECDHEPreMasterSecret builds the RFC 5489 premaster secret for an
// ECDHE_PSK cipher suite: the ECDHE shared secret as the "other secret"
// half, followed by the PSK.
func PSKECDHEPreMasterSecret(psk, publicKey, privateKey []byte, curve elliptic.Curve) ([]byte, error) {
	ecdhSecret, err := curve.X(privateKey, publicKey)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(ecdhSecret)+len(psk)+4)
	out = appendUint16(out, uint16(len(ecdhSecret)))
	out = append(out, ecdhSecret...)
	out = appendUint16(out, uint16(len(psk)))
	return append(out, psk...), nil
}

func appendUint16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

// PHash implements the P_hash data expansion function of RFC 5246 Section
// 5, producing requestedLength bytes from secret and seed.
func PHash(secret, seed []byte, requestedLength int, h func() hash.Hash) ([]byte, error) {
	hmacHash := hmac.New(h, secret)

	var out []byte
	lastRound := seed
	for len(out) < requestedLength {
		hmacHash.Reset()
		if _, err := hmacHash.Write(lastRound); err != nil {
			return nil, err
		}
		lastRound = hmacHash.Sum(nil)

		hmacHash.Reset()
		if _, err := hmacHash.Write(lastRound); err != nil {
			return nil, err
		}
		if _, err := hmacHash.Write(seed); err != nil {
			return nil, err
		}
		out = append(out, hmacHash.Sum(nil)...)
	}
	return out[:requestedLength], nil
}

// MasterSecret derives the 48-byte master secret from the premaster
// secret and the hello randoms (RFC 5246 Section 8.1).
func MasterSecret(preMasterSecret, clientRandom, serverRandom []byte, h func() hash.Hash) ([]byte, error) {
	seed := append(append([]byte{}, clientRandom...), serverRandom...)
	return PHash(preMasterSecret, append([]byte(masterSecretLabel), seed...), masterSecretLength, h)
}

// ExtendedMasterSecret derives the master secret per RFC 7627, binding it
// to the full handshake transcript hash instead of the hello randoms
// (spec.md Section 4.6; negotiated via extension.UseExtendedMasterSecret).
func ExtendedMasterSecret(preMasterSecret, sessionHash []byte, h func() hash.Hash) ([]byte, error) {
	seed := append([]byte(extendedMasterSecretLabel), sessionHash...)
	return PHash(preMasterSecret, seed, masterSecretLength, h)
}

// GenerateEncryptionKeys expands the master secret into the per-direction
// MAC keys, write keys, and write IVs (RFC 5246 Section 6.3). macLen is 0
// for AEAD cipher suites, which derive no separate MAC key.
func GenerateEncryptionKeys(masterSecret, clientRandom, serverRandom []byte, macLen, keyLen, ivLen int, h func() hash.Hash) (*EncryptionKeys, error) {
	seed := append(append([]byte{}, serverRandom...), clientRandom...)
	keyBlock, err := PHash(masterSecret, append([]byte(keyExpansionLabel), seed...), (2*macLen)+(2*keyLen)+(2*ivLen), h)
	if err != nil {
		return nil, err
	}

	offset := 0
	clientMACKey := keyBlock[offset : offset+macLen]
	offset += macLen
	serverMACKey := keyBlock[offset : offset+macLen]
	offset += macLen
	clientWriteKey := keyBlock[offset : offset+keyLen]
	offset += keyLen
	serverWriteKey := keyBlock[offset : offset+keyLen]
	offset += keyLen
	clientWriteIV := keyBlock[offset : offset+ivLen]
	offset += ivLen
	serverWriteIV := keyBlock[offset : offset+ivLen]

	return &EncryptionKeys{
		MasterSecret:   masterSecret,
		ClientMACKey:   clientMACKey,
		ServerMACKey:   serverMACKey,
		ClientWriteKey: clientWriteKey,
		ServerWriteKey: serverWriteKey,
		ClientWriteIV:  clientWriteIV,
		ServerWriteIV:  serverWriteIV,
	}, nil
}

// VerifyDataClient computes the client's Finished verify_data (RFC 5246
// Section 7.4.9).
func VerifyDataClient(masterSecret, handshakeBodies []byte, h func() hash.Hash) ([]byte, error) {
	return verifyData(masterSecret, handshakeBodies, verifyDataClientLabel, h)
}

// VerifyDataServer computes the server's Finished verify_data.
func VerifyDataServer(masterSecret, handshakeBodies []byte, h func() hash.Hash) ([]byte, error) {
	return verifyData(masterSecret, handshakeBodies, verifyDataServerLabel, h)
}

func verifyData(masterSecret, handshakeBodies []byte, label string, h func() hash.Hash) ([]byte, error) {
	hashOfMessages := h()
	if _, err := hashOfMessages.Write(handshakeBodies); err != nil {
		return nil, err
	}
	seed := append([]byte(label), hashOfMessages.Sum(nil)...)
	return PHash(masterSecret, seed, verifyDataLength, h)
}
