// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package signaturehash implements the signature/hash scheme negotiation
// and the ServerKeyExchange/CertificateVerify signature generation and
// verification this stack performs during the handshake (spec.md Section
// 4.4, "CertificateVerify / ServerKeyExchange verification"; testable
// property 9, constant-time RSA PKCS#1 v1.5 padding check).
package signaturehash

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"fmt"

	"github.com/fieldlink/dtls/pkg/protocol/handshake"
)

// Algorithm is a (hash, signature) pair as negotiated via the
// signature_algorithms extension.
type Algorithm struct {
	Hash      handshake.HashAlgorithm
	Signature handshake.SignatureAlgorithm
}

func (a Algorithm) String() string {
	return fmt.Sprintf("%s+%s", hashName(a.Hash), signatureName(a.Signature))
}

// CryptoHash returns the stdlib crypto.Hash identifier for a.Hash, or 0 if
// unknown.
func (a Algorithm) CryptoHash() crypto.Hash {
	switch a.Hash {
	case handshake.HashAlgorithmMD5:
		return crypto.MD5
	case handshake.HashAlgorithmSHA1:
		return crypto.SHA1
	case handshake.HashAlgorithmSHA256:
		return crypto.SHA256
	case handshake.HashAlgorithmSHA384:
		return crypto.SHA384
	case handshake.HashAlgorithmSHA512:
		return crypto.SHA512
	default:
		return 0
	}
}

func hashName(h handshake.HashAlgorithm) string {
	switch h {
	case handshake.HashAlgorithmMD5:
		return "md5"
	case handshake.HashAlgorithmSHA1:
		return "sha1"
	case handshake.HashAlgorithmSHA256:
		return "sha256"
	case handshake.HashAlgorithmSHA384:
		return "sha384"
	case handshake.HashAlgorithmSHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

func signatureName(s handshake.SignatureAlgorithm) string {
	switch s {
	case handshake.SignatureAlgorithmRSA:
		return "rsa"
	case handshake.SignatureAlgorithmECDSA:
		return "ecdsa"
	default:
		return "unknown"
	}
}

// defaultAlgorithms is this stack's preference order when the caller does
// not configure one explicitly (spec.md Section 4.4). SHA-1 pairs are
// included last for interoperability with legacy peers and excluded when
// insecureHashes is false.
var defaultAlgorithms = []Algorithm{
	{handshake.HashAlgorithmSHA256, handshake.SignatureAlgorithmECDSA},
	{handshake.HashAlgorithmSHA384, handshake.SignatureAlgorithmECDSA},
	{handshake.HashAlgorithmSHA256, handshake.SignatureAlgorithmRSA},
	{handshake.HashAlgorithmSHA384, handshake.SignatureAlgorithmRSA},
	{handshake.HashAlgorithmSHA512, handshake.SignatureAlgorithmRSA},
	{handshake.HashAlgorithmSHA1, handshake.SignatureAlgorithmRSA},
	{handshake.HashAlgorithmSHA1, handshake.SignatureAlgorithmECDSA},
}

func schemeToAlgorithm(s tls.SignatureScheme) (Algorithm, bool) {
	switch s {
	case tls.PKCS1WithSHA256:
		return Algorithm{handshake.HashAlgorithmSHA256, handshake.SignatureAlgorithmRSA}, true
	case tls.PKCS1WithSHA384:
		return Algorithm{handshake.HashAlgorithmSHA384, handshake.SignatureAlgorithmRSA}, true
	case tls.PKCS1WithSHA512:
		return Algorithm{handshake.HashAlgorithmSHA512, handshake.SignatureAlgorithmRSA}, true
	case tls.PKCS1WithSHA1:
		return Algorithm{handshake.HashAlgorithmSHA1, handshake.SignatureAlgorithmRSA}, true
	case tls.ECDSAWithP256AndSHA256:
		return Algorithm{handshake.HashAlgorithmSHA256, handshake.SignatureAlgorithmECDSA}, true
	case tls.ECDSAWithP384AndSHA384:
		return Algorithm{handshake.HashAlgorithmSHA384, handshake.SignatureAlgorithmECDSA}, true
	case tls.ECDSAWithSHA1:
		return Algorithm{handshake.HashAlgorithmSHA1, handshake.SignatureAlgorithmECDSA}, true
	default:
		return Algorithm{}, false
	}
}

// ParseSignatureSchemes converts caller-configured stdlib
// tls.SignatureScheme values into the Algorithm list this stack will
// offer and accept, falling back to defaultAlgorithms when none were
// configured. SHA-1 pairs are dropped unless insecureHashes is set.
func ParseSignatureSchemes(sigs []tls.SignatureScheme, insecureHashes bool) ([]Algorithm, error) {
	if len(sigs) == 0 {
		return filterInsecure(defaultAlgorithms, insecureHashes), nil
	}

	var out []Algorithm
	for _, s := range sigs {
		algo, ok := schemeToAlgorithm(s)
		if !ok {
			return nil, &errInvalidSignatureAlgorithm{scheme: s}
		}
		if algo.Hash == handshake.HashAlgorithmSHA1 && !insecureHashes {
			continue
		}
		out = append(out, algo)
	}
	if len(out) == 0 {
		return nil, errNoAvailableSignatureSchemes
	}
	return out, nil
}

func filterInsecure(algos []Algorithm, insecureHashes bool) []Algorithm {
	if insecureHashes {
		return algos
	}
	out := make([]Algorithm, 0, len(algos))
	for _, a := range algos {
		if a.Hash == handshake.HashAlgorithmSHA1 {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SelectSignatureScheme picks the first mutually supported Algorithm whose
// signature kind matches privateKey's type.
func SelectSignatureScheme(algos []Algorithm, privateKey crypto.PrivateKey) (Algorithm, error) {
	var want handshake.SignatureAlgorithm
	switch privateKey.(type) {
	case *rsa.PrivateKey:
		want = handshake.SignatureAlgorithmRSA
	case *ecdsa.PrivateKey:
		want = handshake.SignatureAlgorithmECDSA
	default:
		return Algorithm{}, errInvalidPrivateKeyType
	}

	for _, a := range algos {
		if a.Signature == want {
			return a, nil
		}
	}
	return Algorithm{}, errNoAvailableSignatureSchemes
}

// KeySignatureMessage builds the message ServerKeyExchange/ClientKeyExchange
// signatures are computed over: the two hello randoms followed by the
// curve/public-key bytes (RFC 5246 Section 7.4.3).
func KeySignatureMessage(clientRandom, serverRandom, curveParams []byte) []byte {
	out := make([]byte, 0, len(clientRandom)+len(serverRandom)+len(curveParams))
	out = append(out, clientRandom...)
	out = append(out, serverRandom...)
	return append(out, curveParams...)
}

// Sign computes a key-exchange signature over message, using algo's hash
// and the concrete type of privateKey. RSA signatures use PKCS#1 v1.5
// (RFC 8017 Section 8.2); rsa.SignPKCS1v15 already runs in constant time
// with respect to the message.
func Sign(privateKey crypto.PrivateKey, algo Algorithm, message []byte) ([]byte, error) {
	h := algo.CryptoHash().New()
	h.Write(message) //nolint:errcheck
	digest := h.Sum(nil)

	switch key := privateKey.(type) {
	case *rsa.PrivateKey:
		return rsa.SignPKCS1v15(rand.Reader, key, algo.CryptoHash(), digest)
	case *ecdsa.PrivateKey:
		return ecdsa.SignASN1(rand.Reader, key, digest)
	default:
		return nil, errInvalidPrivateKeyType
	}
}

// Verify checks a key-exchange signature against the public key carried in
// the peer's leaf certificate. The RSA path always runs
// rsa.VerifyPKCS1v15's constant-time padding check to completion before
// returning, regardless of which byte of the signature was wrong (spec.md
// testable property 9), and reports its failure as ErrPaddingCheckFailed
// rather than the ECDSA path's errKeySignatureMismatch, since
// rsa.VerifyPKCS1v15 failing *is* the PKCS#1 v1.5 padding check failing.
func Verify(publicKey crypto.PublicKey, algo Algorithm, message, signature []byte) error {
	h := algo.CryptoHash().New()
	h.Write(message) //nolint:errcheck
	digest := h.Sum(nil)

	switch key := publicKey.(type) {
	case *rsa.PublicKey:
		if err := rsa.VerifyPKCS1v15(key, algo.CryptoHash(), digest, signature); err != nil {
			return ErrPaddingCheckFailed
		}
		return nil
	case *ecdsa.PublicKey:
		if !ecdsa.VerifyASN1(key, digest, signature) {
			return errKeySignatureMismatch
		}
		return nil
	default:
		return errInvalidPublicKeyType
	}
}
