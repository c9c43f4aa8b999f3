// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"github.com/fieldlink/dtls/pkg/crypto/elliptic"
	"github.com/fieldlink/dtls/pkg/crypto/signaturehash"
	"github.com/fieldlink/dtls/pkg/protocol/extension"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
)

// These convert between this package's negotiation types (resolved once by
// handshakeConfig) and the extension package's wire types, kept distinct
// so pkg/protocol/extension never needs to import the top-level package.

func signatureHashAlgorithmsToExtension(algos []signaturehash.Algorithm) []extension.SignatureHashAlgorithm {
	out := make([]extension.SignatureHashAlgorithm, len(algos))
	for i, a := range algos {
		out[i] = extension.SignatureHashAlgorithm{Hash: uint8(a.Hash), Signature: uint8(a.Signature)}
	}
	return out
}

func namedCurvesToExtension(curves []elliptic.Curve) []extension.NamedCurve {
	out := make([]extension.NamedCurve, len(curves))
	for i, c := range curves {
		out[i] = extension.NamedCurve(c)
	}
	return out
}

func srtpProtectionProfilesToExtension(profiles []SRTPProtectionProfile) []extension.SRTPProtectionProfile {
	out := make([]extension.SRTPProtectionProfile, len(profiles))
	for i, p := range profiles {
		out[i] = extension.SRTPProtectionProfile(p)
	}
	return out
}

func srtpProtectionProfilesFromExtension(profiles []extension.SRTPProtectionProfile) []SRTPProtectionProfile {
	out := make([]SRTPProtectionProfile, len(profiles))
	for i, p := range profiles {
		out[i] = SRTPProtectionProfile(p)
	}
	return out
}

// selectSRTPProtectionProfile returns the first locally configured profile
// also offered by the peer, local preference order taking priority.
func selectSRTPProtectionProfile(local, offered []SRTPProtectionProfile) (SRTPProtectionProfile, bool) {
	for _, l := range local {
		for _, o := range offered {
			if l == o {
				return l, true
			}
		}
	}
	return 0, false
}

// selectALPNProtocol returns the first locally supported protocol also
// present in offered, local preference order taking priority.
func selectALPNProtocol(local, offered []string) (string, bool) {
	for _, l := range local {
		for _, o := range offered {
			if l == o {
				return l, true
			}
		}
	}
	return "", false
}

// signatureHashAlgorithmPairs converts this package's negotiated signature
// schemes into the anonymous (Hash, Signature) pairs
// MessageCertificateRequest carries on the wire.
func signatureHashAlgorithmPairs(algos []signaturehash.Algorithm) []struct {
	Hash      handshake.HashAlgorithm
	Signature handshake.SignatureAlgorithm
} {
	out := make([]struct {
		Hash      handshake.HashAlgorithm
		Signature handshake.SignatureAlgorithm
	}, len(algos))
	for i, a := range algos {
		out[i].Hash = a.Hash
		out[i].Signature = a.Signature
	}
	return out
}
