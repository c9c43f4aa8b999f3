// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"github.com/fieldlink/dtls/pkg/crypto/ciphersuite"
)

// cryptoMethod identifies one crypto routine a negotiated cipher suite may
// or may not provide, mirroring the capability-record/opcode table a
// from-scratch embedded TLS stack uses to dispatch without a giant
// switch-on-suite-ID at every call site (spec.md Section 9, "capability
// record per crypto method").
type cryptoMethod uint8

const (
	cryptoMethodNone cryptoMethod = iota
	cryptoMethodKeyExchangeECDHE
	cryptoMethodKeyExchangePSK
	cryptoMethodSignatureRSA
	cryptoMethodSignatureECDSA
	cryptoMethodRecordGCM
	cryptoMethodRecordCBC
)

// cryptoCapabilities is the set of methods a single cipher suite exposes.
// Built from the suite at each point that queries it.
type cryptoCapabilities struct {
	suite   ciphersuite.CipherSuite
	methods map[cryptoMethod]bool
}

// newCryptoCapabilities builds the capability set for suite, the crypto
// adapter's single point of truth for "can this suite do X" queries used
// by the flight handlers (the record layer does not consult it).
func newCryptoCapabilities(suite ciphersuite.CipherSuite) *cryptoCapabilities {
	methods := map[cryptoMethod]bool{}

	alg := suite.KeyExchangeAlgorithm()
	if alg&ciphersuite.KeyExchangeAlgorithmEcdhe != 0 {
		methods[cryptoMethodKeyExchangeECDHE] = true
	}
	if alg&ciphersuite.KeyExchangeAlgorithmPsk != 0 {
		methods[cryptoMethodKeyExchangePSK] = true
	}
	if suite.ECC() {
		methods[cryptoMethodSignatureECDSA] = true
	} else {
		methods[cryptoMethodSignatureRSA] = true
	}

	return &cryptoCapabilities{suite: suite, methods: methods}
}

// require returns errMissingCryptoRoutine if the suite does not expose
// method, letting a caller fail fast with a named routine instead of a
// nil-pointer panic deep in a handler.
func (c *cryptoCapabilities) require(method cryptoMethod) error {
	if !c.methods[method] {
		return errMissingCryptoRoutine
	}
	return nil
}
