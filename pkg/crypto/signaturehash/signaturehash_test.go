// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package signaturehash

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	"github.com/fieldlink/dtls/pkg/protocol/handshake"
)

func TestSignVerifyRoundTripRSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	algo := Algorithm{Hash: handshake.HashAlgorithmSHA256, Signature: handshake.SignatureAlgorithmRSA}
	message := []byte("client random || server random || server params")

	signature, err := Sign(key, algo, message)
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(&key.PublicKey, algo, message, signature); err != nil {
		t.Fatalf("expected a valid RSA signature to verify, got %s", err)
	}
}

// TestVerifyRSAPaddingCheckFailed checks testable property 9 / scenario S6:
// an RSA signature that fails VerifyPKCS1v15's padding check must be
// reported as ErrPaddingCheckFailed, not the generic key-mismatch error
// ECDSA failures use.
func TestVerifyRSAPaddingCheckFailed(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	algo := Algorithm{Hash: handshake.HashAlgorithmSHA256, Signature: handshake.SignatureAlgorithmRSA}
	message := []byte("client random || server random || server params")

	signature, err := Sign(key, algo, message)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a byte in the middle of the signature so the decrypted PKCS#1
	// block no longer begins with the expected 0x00 0x01 padding prefix.
	corrupted := append([]byte{}, signature...)
	corrupted[len(corrupted)/2] ^= 0xff

	err = Verify(&key.PublicKey, algo, message, corrupted)
	if err == nil {
		t.Fatal("expected a corrupted RSA signature to fail verification")
	}
	if !errors.Is(err, ErrPaddingCheckFailed) {
		t.Fatalf("got %v, want ErrPaddingCheckFailed", err)
	}
	if errors.Is(err, errKeySignatureMismatch) {
		t.Fatal("RSA padding failure must not be reported as errKeySignatureMismatch")
	}
}

func TestVerifyECDSAKeySignatureMismatch(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	algo := Algorithm{Hash: handshake.HashAlgorithmSHA256, Signature: handshake.SignatureAlgorithmECDSA}
	message := []byte("client random || server random || server params")

	signature, err := Sign(key, algo, message)
	if err != nil {
		t.Fatal(err)
	}
	corrupted := append([]byte{}, signature...)
	corrupted[len(corrupted)/2] ^= 0xff

	err = Verify(&key.PublicKey, algo, message, corrupted)
	if err == nil {
		t.Fatal("expected a corrupted ECDSA signature to fail verification")
	}
	if !errors.Is(err, errKeySignatureMismatch) {
		t.Fatalf("got %v, want errKeySignatureMismatch", err)
	}
	if errors.Is(err, ErrPaddingCheckFailed) {
		t.Fatal("ECDSA mismatch must not be reported as ErrPaddingCheckFailed")
	}
}
