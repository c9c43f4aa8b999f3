// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/ecdsa"
	"crypto/tls"

	"github.com/fieldlink/dtls/pkg/crypto/ciphersuite"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
)

// defaultCipherSuites is the negotiation order used when Config.CipherSuites
// is empty.
func defaultCipherSuites() []ciphersuite.CipherSuite {
	return ciphersuite.AllCipherSuites()
}

// parseCipherSuites resolves the configured list of cipher suite IDs (or
// the default table) into concrete CipherSuite instances, filtering out
// suites that do not fit the certificate/PSK configuration actually in
// play (spec.md Section 4.6, "Cipher suite capability table").
func parseCipherSuites(
	cipherSuiteIDs []ciphersuite.ID,
	customCipherSuites func() []ciphersuite.CipherSuite,
	includeCertificateSuites, isPSK bool,
) ([]ciphersuite.CipherSuite, error) {
	var suites []ciphersuite.CipherSuite
	if customCipherSuites != nil {
		suites = customCipherSuites()
	} else if len(cipherSuiteIDs) == 0 {
		suites = defaultCipherSuites()
	} else {
		for _, id := range cipherSuiteIDs {
			if s := ciphersuite.CipherSuiteForID(id); s != nil {
				suites = append(suites, s)
			}
		}
	}

	var filtered []ciphersuite.CipherSuite
	for _, s := range suites {
		isPSKSuite := s.KeyExchangeAlgorithm()&ciphersuite.KeyExchangeAlgorithmPsk != 0
		switch {
		case isPSK && !isPSKSuite:
			continue
		case !isPSK && isPSKSuite:
			continue
		case !isPSK && !includeCertificateSuites:
			continue
		}
		filtered = append(filtered, s)
	}

	if len(filtered) == 0 {
		return nil, errNoAvailableCipherSuites
	}
	return filtered, nil
}

// filterCipherSuitesForCertificate drops any cipher suite whose required
// certificate type (RSA vs ECDSA signing) does not match cert's key type,
// so a server never advertises a suite it cannot actually use with its
// configured certificate (RFC 5246 Section 7.4.3).
func filterCipherSuitesForCertificate(cert *tls.Certificate, suites []ciphersuite.CipherSuite) []ciphersuite.CipherSuite {
	if cert == nil {
		var out []ciphersuite.CipherSuite
		for _, s := range suites {
			if s.KeyExchangeAlgorithm()&ciphersuite.KeyExchangeAlgorithmPsk != 0 {
				out = append(out, s)
			}
		}
		return out
	}

	var out []ciphersuite.CipherSuite
	for _, s := range suites {
		if s.KeyExchangeAlgorithm()&ciphersuite.KeyExchangeAlgorithmPsk != 0 {
			out = append(out, s)
			continue
		}
		if certificateMatchesType(cert, s.CertificateType()) {
			out = append(out, s)
		}
	}
	return out
}

// cipherSuiteIDs extracts the wire IDs from a resolved suite list, the
// order a ClientHello advertises them in.
func cipherSuiteIDs(suites []ciphersuite.CipherSuite) []handshake.CipherSuiteID {
	ids := make([]handshake.CipherSuiteID, len(suites))
	for i, s := range suites {
		ids[i] = handshake.CipherSuiteID(s.ID())
	}
	return ids
}

// findMatchingCipherSuite returns the first suite in serverSuites whose ID
// also appears in clientIDs, the server's cipher suite preference order
// taking priority over the client's (RFC 5246 Section 7.4.1.3).
func findMatchingCipherSuite(clientIDs []handshake.CipherSuiteID, serverSuites []ciphersuite.CipherSuite) (ciphersuite.CipherSuite, error) {
	for _, s := range serverSuites {
		for _, id := range clientIDs {
			if s.ID() == ciphersuite.ID(id) {
				return s, nil
			}
		}
	}
	return nil, errCipherSuiteNoIntersection
}

func certificateMatchesType(cert *tls.Certificate, typ handshake.ClientCertificateType) bool {
	if len(cert.Certificate) == 0 {
		return true
	}
	leaf := cert.Leaf
	if leaf == nil {
		return true // leaf not parsed; don't over-filter
	}
	switch typ {
	case handshake.ClientCertificateTypeRSASign:
		_, ok := leaf.PublicKey.(interface{ Size() int })
		return ok
	case handshake.ClientCertificateTypeECDSASign:
		_, ok := leaf.PublicKey.(*ecdsa.PublicKey)
		return ok
	default:
		return true
	}
}
