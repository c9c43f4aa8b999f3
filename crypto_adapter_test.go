// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"testing"

	"github.com/fieldlink/dtls/pkg/crypto/ciphersuite"
)

func TestCryptoCapabilitiesECDHEECDSA(t *testing.T) {
	suite := ciphersuite.CipherSuiteForID(ciphersuite.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256)
	if suite == nil {
		t.Fatal("expected TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256 to be a known suite")
	}

	caps := newCryptoCapabilities(suite)
	if err := caps.require(cryptoMethodKeyExchangeECDHE); err != nil {
		t.Fatalf("expected ECDHE capability: %v", err)
	}
	if err := caps.require(cryptoMethodSignatureECDSA); err != nil {
		t.Fatalf("expected ECDSA signature capability: %v", err)
	}
	if err := caps.require(cryptoMethodKeyExchangePSK); err == nil {
		t.Fatal("expected missing PSK capability to be reported, got nil")
	} else if err != errMissingCryptoRoutine {
		t.Fatalf("expected errMissingCryptoRoutine, got %v", err)
	}
	if err := caps.require(cryptoMethodSignatureRSA); err == nil {
		t.Fatal("expected an ECC suite not to expose RSA signing")
	}
}

func TestCryptoCapabilitiesPSK(t *testing.T) {
	suite := ciphersuite.CipherSuiteForID(ciphersuite.TLS_PSK_WITH_AES_128_GCM_SHA256)
	if suite == nil {
		t.Fatal("expected TLS_PSK_WITH_AES_128_GCM_SHA256 to be a known suite")
	}

	caps := newCryptoCapabilities(suite)
	if err := caps.require(cryptoMethodKeyExchangePSK); err != nil {
		t.Fatalf("expected PSK capability: %v", err)
	}
	if err := caps.require(cryptoMethodKeyExchangeECDHE); err == nil {
		t.Fatal("expected a pure-PSK suite not to expose ECDHE")
	}
}
