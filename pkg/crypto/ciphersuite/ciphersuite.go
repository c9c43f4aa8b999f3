// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package ciphersuite implements the record-layer bulk ciphers this stack
// negotiates (spec.md Section 4.6, "Cipher suite capability table"): AEAD
// (GCM) for TLS 1.2 and CBC+HMAC for TLS 1.0/1.1 fallback, each wrapped
// behind a common CipherSuite interface the record layer drives without
// knowing which mode is in play.
package ciphersuite

import (
	"hash"

	"github.com/fieldlink/dtls/pkg/protocol/handshake"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

// ID is the 16-bit cipher suite identifier from the IANA TLS Cipher Suite
// Registry.
type ID uint16

// Cipher suites in this stack's capability table (spec.md Section 4.6).
const (
	TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256       ID = 0xc02b
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256         ID = 0xc02f
	TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA          ID = 0xc00a
	TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA            ID = 0xc014
	TLS_PSK_WITH_AES_128_GCM_SHA256               ID = 0x00a8
	TLS_PSK_WITH_AES_128_CBC_SHA256               ID = 0x00ae
	TLS_ECDHE_PSK_WITH_AES_128_CBC_SHA256         ID = 0xc037
)

// KeyExchangeAlgorithm flags the key-agreement shape a suite requires,
// used to pick which handshake messages the flight driver must send.
type KeyExchangeAlgorithm byte

// Key exchange algorithm bits. A suite may require both (ECDHE_PSK).
const (
	KeyExchangeAlgorithmNone  KeyExchangeAlgorithm = 0
	KeyExchangeAlgorithmEcdhe KeyExchangeAlgorithm = 1 << 0
	KeyExchangeAlgorithmPsk   KeyExchangeAlgorithm = 1 << 1
)

// CipherSuite is the record-layer encrypt/decrypt surface plus the
// metadata the handshake driver needs to negotiate and key it (spec.md
// Section 4.6). Concrete suites compose a bulk cipher (GCM or CBC) with
// this metadata.
type CipherSuite interface {
	String() string
	ID() ID
	CertificateType() handshake.ClientCertificateType
	HashFunc() func() hash.Hash
	KeyExchangeAlgorithm() KeyExchangeAlgorithm
	ECC() bool

	// Init keys the suite from the derived master secret. isClient
	// selects which write/read direction maps to local/remote.
	Init(masterSecret, clientRandom, serverRandom []byte, isClient bool) error
	IsInitialized() bool

	Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error)
	Decrypt(h recordlayer.Header, raw []byte) ([]byte, error)
}

// AllCipherSuites returns a fresh (unkeyed) instance of every cipher suite
// this stack supports, in descending preference order.
func AllCipherSuites() []CipherSuite {
	return []CipherSuite{
		newCipherSuiteECDHEECDSAWithAES128GCMSHA256(),
		newCipherSuiteECDHERSAWithAES128GCMSHA256(),
		newCipherSuiteECDHEECDSAWithAES256CBCSHA(),
		newCipherSuiteECDHERSAWithAES256CBCSHA(),
		newCipherSuitePSKWithAES128GCMSHA256(),
		newCipherSuitePSKWithAES128CBCSHA256(),
		newCipherSuiteECDHEPSKWithAES128CBCSHA256(),
	}
}

// CipherSuiteForID returns a fresh (unkeyed) instance of the suite with
// the given ID, or nil if this stack does not support it.
func CipherSuiteForID(id ID) CipherSuite {
	for _, c := range AllCipherSuites() {
		if c.ID() == id {
			return c
		}
	}
	return nil
}
