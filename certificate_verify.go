// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/x509"
	"errors"

	"github.com/fieldlink/dtls/pkg/crypto/signaturehash"
	"github.com/fieldlink/dtls/pkg/protocol/alert"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
)

// parseLeafCertificate parses the first (leaf) DER certificate in chain.
func parseLeafCertificate(chain [][]byte) (*x509.Certificate, error) {
	if len(chain) == 0 {
		return nil, errCertificateVerifyNoCertificate
	}
	return x509.ParseCertificate(chain[0])
}

// verifyServerCertificate chains the server's certificate up to cfg.rootCAs
// (or accepts it unconditionally if cfg.verifyPeerCertificate handles trust
// itself), then runs any caller-supplied verification hooks (spec.md
// Section 4.4, "CertificateVerify / ServerKeyExchange verification").
func verifyServerCertificate(cfg *handshakeConfig, rawCerts [][]byte) (*alert.Alert, error) {
	if cfg.verifyPeerCertificate != nil {
		if err := cfg.verifyPeerCertificate(rawCerts, nil); err != nil {
			return &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
		}
		return nil, nil
	}

	leaf, err := parseLeafCertificate(rawCerts)
	if err != nil {
		return &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
	}

	intermediates := x509.NewCertPool()
	for _, raw := range rawCerts[1:] {
		if c, err := x509.ParseCertificate(raw); err == nil {
			intermediates.AddCert(c)
		}
	}

	if cfg.rootCAs != nil {
		if _, err := leaf.Verify(x509.VerifyOptions{Roots: cfg.rootCAs, Intermediates: intermediates}); err != nil {
			return &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
		}
	}
	return nil, nil
}

// verifyClientCertificate mirrors verifyServerCertificate for a server
// validating a client's certificate against cfg.clientCAs.
func verifyClientCertificate(cfg *handshakeConfig, rawCerts [][]byte) (*alert.Alert, error) {
	if cfg.verifyPeerCertificate != nil {
		if err := cfg.verifyPeerCertificate(rawCerts, nil); err != nil {
			return &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
		}
		return nil, nil
	}

	leaf, err := parseLeafCertificate(rawCerts)
	if err != nil {
		return &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
	}

	intermediates := x509.NewCertPool()
	for _, raw := range rawCerts[1:] {
		if c, err := x509.ParseCertificate(raw); err == nil {
			intermediates.AddCert(c)
		}
	}

	if cfg.clientCAs != nil {
		if _, err := leaf.Verify(x509.VerifyOptions{
			Roots:         cfg.clientCAs,
			Intermediates: intermediates,
			KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		}); err != nil {
			return &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
		}
	}
	return nil, nil
}

// verifyServerKeyExchangeSignature checks a ServerKeyExchange's signature
// against the server's leaf certificate public key.
func verifyServerKeyExchangeSignature(state *State, cfg *handshakeConfig, ske *handshake.MessageServerKeyExchange) (*alert.Alert, error) {
	if state.cipherSuite != nil {
		capabilities := newCryptoCapabilities(state.cipherSuite)
		method := cryptoMethodSignatureRSA
		if state.cipherSuite.ECC() {
			method = cryptoMethodSignatureECDSA
		}
		if err := capabilities.require(method); err != nil {
			return &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}
	}

	leaf, err := parseLeafCertificate(state.peerCertificates)
	if err != nil {
		return &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
	}

	algo := signaturehash.Algorithm{Hash: ske.HashAlgorithm, Signature: ske.SignatureAlgorithm}
	curveParams := append([]byte{byte(ske.EllipticCurveType), 0, 0}, byte(len(ske.PublicKey)))
	curveParams[1] = byte(uint16(ske.NamedCurve) >> 8)
	curveParams[2] = byte(uint16(ske.NamedCurve))
	curveParams = append(curveParams, ske.PublicKey...)

	clientRandom := state.localRandom.MarshalFixed()
	serverRandom := state.remoteRandom.MarshalFixed()
	message := signaturehash.KeySignatureMessage(clientRandom[:], serverRandom[:], curveParams)

	if err := signaturehash.Verify(leaf.PublicKey, algo, message, ske.Signature); err != nil {
		if errors.Is(err, signaturehash.ErrPaddingCheckFailed) {
			return &alert.Alert{Level: alert.Fatal, Description: alert.DecryptError}, errPaddingCheckFailed
		}
		return &alert.Alert{Level: alert.Fatal, Description: alert.DecryptError}, errKeySignatureMismatch
	}
	return nil, nil
}
