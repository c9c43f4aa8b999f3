// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"crypto/subtle"
	"crypto/tls"
	"errors"

	"github.com/fieldlink/dtls/pkg/crypto/ciphersuite"
	"github.com/fieldlink/dtls/pkg/crypto/elliptic"
	"github.com/fieldlink/dtls/pkg/crypto/prf"
	"github.com/fieldlink/dtls/pkg/crypto/signaturehash"
	"github.com/fieldlink/dtls/pkg/protocol"
	"github.com/fieldlink/dtls/pkg/protocol/alert"
	"github.com/fieldlink/dtls/pkg/protocol/extension"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

// flight2Generate sends the server's hello flight: ServerHello, the
// server's certificate chain and key exchange material if the negotiated
// suite requires them, an optional CertificateRequest, and
// ServerHelloDone.
func flight2Generate(_ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig) ([]*packet, *alert.Alert, error) {
	clientHelloMsg, _, ok := cache.latest(handshake.TypeClientHello, true)
	if !ok {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, nil
	}
	clientHello, ok := clientHelloMsg.(*handshake.MessageClientHello)
	if !ok {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, nil
	}

	clientIDs := make([]ciphersuite.ID, len(clientHello.CipherSuiteIDs))
	for i, id := range clientHello.CipherSuiteIDs {
		clientIDs[i] = ciphersuite.ID(id)
	}

	suite, err := findMatchingCipherSuite(clientHello.CipherSuiteIDs, cfg.localCipherSuites)
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InsufficientSecurity}, err
	}
	state.cipherSuite = suite

	if err := state.localRandom.Populate(); err != nil {
		return nil, nil, err
	}

	var cert *tls.Certificate
	if suite.KeyExchangeAlgorithm()&ciphersuite.KeyExchangeAlgorithmPsk == 0 {
		cert, err = cfg.getCertificate(&ClientHelloInfo{ServerName: cfg.serverName, CipherSuites: clientIDs})
		if err != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, err
		}
	}

	extensions := []extension.Extension{
		&extension.RenegotiationInfo{RenegotiatedConnection: nil},
	}
	for _, e := range clientHello.Extensions {
		switch ext := e.(type) {
		case *extension.UseExtendedMasterSecret:
			if cfg.extendedMasterSecret != DisableExtendedMasterSecret {
				state.extendedMasterSecret = true
				extensions = append(extensions, &extension.UseExtendedMasterSecret{Supported: true})
			}
		case *extension.UseSRTP:
			if profile, ok := selectSRTPProtectionProfile(cfg.localSRTPProtectionProfiles, srtpProtectionProfilesFromExtension(ext.ProtectionProfiles)); ok {
				state.srtpProtectionProfile = profile
				extensions = append(extensions, &extension.UseSRTP{ProtectionProfiles: []extension.SRTPProtectionProfile{extension.SRTPProtectionProfile(profile)}})
			}
		case *extension.ALPN:
			if proto, ok := selectALPNProtocol(cfg.supportedProtocols, ext.ProtocolNameList); ok {
				extensions = append(extensions, &extension.ALPN{ProtocolNameList: []string{proto}})
			}
		case *extension.ConnectionID:
			if cfg.connectionIDGenerator != nil {
				state.remoteConnectionID = append([]byte{}, ext.CID...)
				state.localConnectionID = cfg.connectionIDGenerator()
				if state.localConnectionID == nil {
					state.localConnectionID = []byte{}
				}
				extensions = append(extensions, &extension.ConnectionID{CID: state.localConnectionID})
			}
		}
	}

	if cfg.extendedMasterSecret == RequireExtendedMasterSecret && !state.extendedMasterSecret {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InsufficientSecurity}, errClientNoExtendedMasterSecret
	}

	cipherSuiteID := uint16(suite.ID())
	serverHello := nextHandshakeMessage(state, &handshake.MessageServerHello{
		Version:           protocol.Version1_2,
		Random:            state.localRandom,
		SessionID:         state.SessionID,
		CipherSuiteID:     &cipherSuiteID,
		CompressionMethod: defaultCompressionMethods()[0],
		Extensions:        extensions,
	})

	pkts := []*packet{
		{record: &recordlayer.RecordLayer{Header: recordlayer.Header{Version: protocol.Version1_2}, Content: serverHello}},
	}

	if cert == nil {
		pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
			Header:  recordlayer.Header{Version: protocol.Version1_2},
			Content: nextHandshakeMessage(state, &handshake.MessageServerHelloDone{}),
		}})
		return pkts, nil, nil
	}

	pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
		Header:  recordlayer.Header{Version: protocol.Version1_2},
		Content: nextHandshakeMessage(state, &handshake.MessageCertificate{Certificate: append([][]byte{}, cert.Certificate...)}),
	}})

	if suite.KeyExchangeAlgorithm()&ciphersuite.KeyExchangeAlgorithmEcdhe != 0 {
		capabilities := newCryptoCapabilities(suite)
		if err := capabilities.require(cryptoMethodKeyExchangeECDHE); err != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}

		keypair, err := elliptic.GenerateKeypair(state.namedCurve)
		if err != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}
		state.localKeypair = keypair

		curveParams := []byte{byte(handshake.EllipticCurveTypeNamedCurve), byte(uint16(keypair.Curve) >> 8), byte(uint16(keypair.Curve)), byte(len(keypair.PublicKey))}
		curveParams = append(curveParams, keypair.PublicKey...)

		algo, err := signaturehash.SelectSignatureScheme(cfg.localSignatureSchemes, cert.PrivateKey)
		if err != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InsufficientSecurity}, err
		}

		clientRandom := clientHello.Random.MarshalFixed()
		serverRandom := state.localRandom.MarshalFixed()
		message := signaturehash.KeySignatureMessage(clientRandom[:], serverRandom[:], curveParams)
		signature, err := signaturehash.Sign(cert.PrivateKey, algo, message)
		if err != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}

		pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
			Header: recordlayer.Header{Version: protocol.Version1_2},
			Content: nextHandshakeMessage(state, &handshake.MessageServerKeyExchange{
				EllipticCurveType:  handshake.EllipticCurveTypeNamedCurve,
				NamedCurve:         extension.NamedCurve(keypair.Curve),
				PublicKey:          keypair.PublicKey,
				HashAlgorithm:      algo.Hash,
				SignatureAlgorithm: algo.Signature,
				Signature:          signature,
			}),
		}})
	}

	if cfg.clientAuth >= RequestClientCert {
		pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
			Header: recordlayer.Header{Version: protocol.Version1_2},
			Content: nextHandshakeMessage(state, &handshake.MessageCertificateRequest{
				CertificateTypes: []handshake.ClientCertificateType{
					handshake.ClientCertificateTypeRSASign,
					handshake.ClientCertificateTypeECDSASign,
				},
				SignatureHashAlgorithms: signatureHashAlgorithmPairs(cfg.localSignatureSchemes),
			}),
		}})
	}

	pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
		Header:  recordlayer.Header{Version: protocol.Version1_2},
		Content: nextHandshakeMessage(state, &handshake.MessageServerHelloDone{}),
	}})

	return pkts, nil, nil
}

// flight2Parse waits for the client's final flight: its certificate chain
// and CertificateVerify if this server requested one, its
// ClientKeyExchange, and finally a Finished sent under the newly
// negotiated epoch. Key derivation happens as soon as ClientKeyExchange is
// available, since the server must have the record-layer keys ready
// before the client's ChangeCipherSpec can be accepted (spec.md Section
// 4.6, "Key schedule").
func flight2Parse(_ context.Context, _ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig) (flightVal, *alert.Alert, error) {
	if !state.cipherSuite.IsInitialized() {
		seq, msgs, ok := cache.fullPullMap(state.handshakeRecvSequence, state.cipherSuite,
			handshakeCachePullRule{handshake.TypeCertificate, cfg.initialEpoch, true, true},
			handshakeCachePullRule{handshake.TypeClientKeyExchange, cfg.initialEpoch, true, false},
			handshakeCachePullRule{handshake.TypeCertificateVerify, cfg.initialEpoch, true, true},
		)
		if !ok {
			return flightNone, nil, nil
		}

		if cert, ok := msgs[handshake.TypeCertificate].(*handshake.MessageCertificate); ok && len(cert.Certificate) > 0 {
			if cfg.clientAuth >= VerifyClientCertIfGiven {
				if a, err := verifyClientCertificate(cfg, cert.Certificate); err != nil {
					return flightNone, a, err
				}
			}
			state.peerCertificates = cert.Certificate
		} else if cfg.clientAuth >= RequireAnyClientCert {
			return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, errInvalidCertificate
		}

		cke, ok := msgs[handshake.TypeClientKeyExchange].(*handshake.MessageClientKeyExchange)
		if !ok {
			return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, nil
		}

		preMasterSecret, err := serverPreMasterSecret(state, cfg, cke)
		if err != nil {
			return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}, err
		}

		if cv, ok := msgs[handshake.TypeCertificateVerify].(*handshake.MessageCertificateVerify); ok && len(state.peerCertificates) > 0 {
			leaf, err := parseLeafCertificate(state.peerCertificates)
			if err != nil {
				return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.BadCertificate}, err
			}
			algo := signaturehash.Algorithm{Hash: cv.HashAlgorithm, Signature: cv.SignatureAlgorithm}
			transcript := cache.transcript(cfg.initialEpoch, seq-2)
			if err := signaturehash.Verify(leaf.PublicKey, algo, transcript, cv.Signature); err != nil {
				if errors.Is(err, signaturehash.ErrPaddingCheckFailed) {
					return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.DecryptError}, errPaddingCheckFailed
				}
				return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.DecryptError}, errKeySignatureMismatch
			}
		}

		clientRandom := state.remoteRandom.MarshalFixed()
		serverRandom := state.localRandom.MarshalFixed()
		var masterSecret []byte
		if state.extendedMasterSecret {
			var sessionHash []byte
			sessionHash, err = cache.transcriptHash(cfg.initialEpoch, seq-1, state.cipherSuite.HashFunc())
			if err == nil {
				masterSecret, err = prf.ExtendedMasterSecret(preMasterSecret, sessionHash, state.cipherSuite.HashFunc())
			}
		} else {
			masterSecret, err = prf.MasterSecret(preMasterSecret, clientRandom[:], serverRandom[:], state.cipherSuite.HashFunc())
		}
		if err != nil {
			return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}
		state.masterSecret = masterSecret

		if err := state.cipherSuite.Init(masterSecret, clientRandom[:], serverRandom[:], false); err != nil {
			return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
		}

		state.handshakeRecvSequence = seq
		return flightNone, nil, nil
	}

	seq, msgs, ok := cache.fullPullMap(state.handshakeRecvSequence, state.cipherSuite,
		handshakeCachePullRule{handshake.TypeFinished, cfg.initialEpoch + 1, true, false},
	)
	if !ok {
		return flightNone, nil, nil
	}

	finished, ok := msgs[handshake.TypeFinished].(*handshake.MessageFinished)
	if !ok {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, nil
	}

	expected, err := prf.VerifyDataClient(state.masterSecret, cache.transcript(cfg.initialEpoch, state.handshakeRecvSequence-1), state.cipherSuite.HashFunc())
	if err != nil {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}
	if subtle.ConstantTimeCompare(expected, finished.VerifyData) != 1 {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.DecryptError}, errVerifyDataMismatch
	}

	state.handshakeRecvSequence = seq
	return flight6, nil, nil
}

// serverPreMasterSecret derives the premaster secret from the client's
// ClientKeyExchange, dispatching on the negotiated suite's key exchange
// shape (spec.md Section 4.6, "Key schedule").
func serverPreMasterSecret(state *State, cfg *handshakeConfig, cke *handshake.MessageClientKeyExchange) ([]byte, error) {
	alg := state.cipherSuite.KeyExchangeAlgorithm()
	switch {
	case alg&ciphersuite.KeyExchangeAlgorithmPsk != 0 && alg&ciphersuite.KeyExchangeAlgorithmEcdhe != 0:
		psk, err := cfg.localPSKCallback(cke.IdentityHint)
		if err != nil {
			return nil, err
		}
		if state.localKeypair == nil {
			return nil, errNoKeypairForKeyExchange
		}
		return prf.PSKECDHEPreMasterSecret(psk, cke.PublicKey, state.localKeypair.PrivateKey, state.namedCurve)
	case alg&ciphersuite.KeyExchangeAlgorithmPsk != 0:
		psk, err := cfg.localPSKCallback(cke.IdentityHint)
		if err != nil {
			return nil, err
		}
		return prf.PSKPreMasterSecret(psk), nil
	case alg&ciphersuite.KeyExchangeAlgorithmEcdhe != 0:
		if state.localKeypair == nil {
			return nil, errNoKeypairForKeyExchange
		}
		return prf.PreMasterSecret(cke.PublicKey, state.localKeypair.PrivateKey, state.namedCurve)
	default:
		return nil, errCipherSuiteNoIntersection
	}
}
