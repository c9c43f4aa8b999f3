// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"

	"github.com/fieldlink/dtls/pkg/crypto/ciphersuite"
	"github.com/fieldlink/dtls/pkg/crypto/elliptic"
	"github.com/fieldlink/dtls/pkg/protocol"
	"github.com/fieldlink/dtls/pkg/protocol/alert"
	"github.com/fieldlink/dtls/pkg/protocol/extension"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

// flight3Generate sends the client's second ClientHello, now carrying the
// cookie the server issued in flight1 (spec.md Section 4.4, "Cookie
// round-trip"). Everything else about the message is unchanged: the
// random and session ID negotiated in flight1 must survive into this
// retry, since both sides hash this ClientHello into the handshake
// transcript.
func flight3Generate(c flightConn, state *State, _ *handshakeCache, cfg *handshakeConfig) ([]*packet, *alert.Alert, error) {
	clientHello := buildClientHello(c, state, cfg)

	return []*packet{
		{
			record: &recordlayer.RecordLayer{
				Header:  recordlayer.Header{Version: protocol.Version1_2},
				Content: nextHandshakeMessage(state, clientHello),
			},
		},
	}, nil, nil
}

// flight3Parse waits for the server's hello flight: ServerHello, its
// certificate chain and key exchange material if the suite requires them,
// an optional CertificateRequest, and ServerHelloDone.
func flight3Parse(_ context.Context, _ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig) (flightVal, *alert.Alert, error) {
	seq, msgs, ok := cache.fullPullMap(state.handshakeRecvSequence, state.cipherSuite,
		handshakeCachePullRule{handshake.TypeServerHello, cfg.initialEpoch, false, true},
		handshakeCachePullRule{handshake.TypeCertificate, cfg.initialEpoch, false, true},
		handshakeCachePullRule{handshake.TypeServerKeyExchange, cfg.initialEpoch, false, true},
		handshakeCachePullRule{handshake.TypeCertificateRequest, cfg.initialEpoch, false, true},
		handshakeCachePullRule{handshake.TypeServerHelloDone, cfg.initialEpoch, false, true},
	)
	if !ok {
		return flightNone, nil, nil
	}

	serverHello, ok := msgs[handshake.TypeServerHello].(*handshake.MessageServerHello)
	if !ok {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, nil
	}

	if serverHello.CipherSuiteID == nil {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errCipherSuiteUnset
	}
	suite := ciphersuite.CipherSuiteForID(ciphersuite.ID(*serverHello.CipherSuiteID))
	if suite == nil {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errClientSentUnsupportedCipherSuite
	}
	var offered bool
	for _, s := range cfg.localCipherSuites {
		if s.ID() == suite.ID() {
			offered = true
			break
		}
	}
	if !offered {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errCipherSuiteNoIntersection
	}
	state.cipherSuite = suite
	state.remoteRandom = serverHello.Random
	if len(serverHello.SessionID) > 0 {
		state.SessionID = append([]byte{}, serverHello.SessionID...)
	}

	for _, e := range serverHello.Extensions {
		switch ext := e.(type) {
		case *extension.UseExtendedMasterSecret:
			state.extendedMasterSecret = ext.Supported
		case *extension.UseSRTP:
			if len(ext.ProtectionProfiles) > 0 {
				state.srtpProtectionProfile = SRTPProtectionProfile(ext.ProtectionProfiles[0])
			}
		case *extension.ConnectionID:
			state.remoteConnectionID = append([]byte{}, ext.CID...)
		}
	}

	if _, ok := msgs[handshake.TypeCertificateRequest]; ok {
		state.remoteCertificateRequested = true
	}

	if cert, ok := msgs[handshake.TypeCertificate].(*handshake.MessageCertificate); ok {
		if !cfg.insecureSkipVerify {
			if a, err := verifyServerCertificate(cfg, cert.Certificate); err != nil {
				return flightNone, a, err
			}
		}
		state.peerCertificates = cert.Certificate
	} else if suite.KeyExchangeAlgorithm()&ciphersuite.KeyExchangeAlgorithmPsk == 0 {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errInvalidCertificate
	}

	if ske, ok := msgs[handshake.TypeServerKeyExchange].(*handshake.MessageServerKeyExchange); ok {
		if suite.KeyExchangeAlgorithm()&ciphersuite.KeyExchangeAlgorithmEcdhe != 0 {
			state.namedCurve = elliptic.Curve(ske.NamedCurve)
			state.remoteKeyExchangePublicKey = append([]byte{}, ske.PublicKey...)
		}
		if len(ske.Signature) > 0 && len(state.peerCertificates) > 0 {
			if a, err := verifyServerKeyExchangeSignature(state, cfg, ske); err != nil {
				return flightNone, a, err
			}
		}
	}

	state.handshakeRecvSequence = seq
	return flight5, nil, nil
}
