// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"crypto/subtle"
	"crypto/tls"

	"github.com/fieldlink/dtls/pkg/crypto/ciphersuite"
	"github.com/fieldlink/dtls/pkg/crypto/elliptic"
	"github.com/fieldlink/dtls/pkg/crypto/prf"
	"github.com/fieldlink/dtls/pkg/crypto/signaturehash"
	"github.com/fieldlink/dtls/pkg/protocol"
	"github.com/fieldlink/dtls/pkg/protocol/alert"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

// flight5Generate sends the client's final flight: its certificate chain
// and CertificateVerify if the server requested one, ClientKeyExchange,
// then ChangeCipherSpec and Finished under the newly negotiated epoch
// (spec.md Section 4.6, "Key schedule").
func flight5Generate(_ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig) ([]*packet, *alert.Alert, error) {
	suite := state.cipherSuite
	var pkts []*packet

	// emit wraps msg as the next handshake message, records it in the
	// transcript cache immediately (the real send-side push in conn.go
	// happens only once writePackets runs, which is too late for the
	// CertificateVerify signature and Finished verify_data computed
	// below), and returns the packet to send.
	emit := func(msg handshake.Message, epoch uint16) *packet {
		h := nextHandshakeMessage(state, msg)
		raw, _ := h.Marshal()
		cache.push(raw, epoch, h.Header.MessageSequence, h.Header.Type, true)
		return &packet{record: &recordlayer.RecordLayer{
			Header:  recordlayer.Header{Version: protocol.Version1_2, Epoch: epoch},
			Content: h,
		}}
	}

	var cert *tls.Certificate
	if state.remoteCertificateRequested {
		c, err := cfg.getClientCertificate(&CertificateRequestInfo{})
		if err == nil {
			cert = c
		}
		chain := [][]byte{}
		if cert != nil {
			chain = cert.Certificate
		}
		pkts = append(pkts, emit(&handshake.MessageCertificate{Certificate: chain}, cfg.initialEpoch))
	}

	var cke *handshake.MessageClientKeyExchange
	var preMasterSecret []byte
	var err error
	switch {
	case suite.KeyExchangeAlgorithm()&ciphersuite.KeyExchangeAlgorithmEcdhe != 0:
		keypair, kerr := elliptic.GenerateKeypair(state.namedCurve)
		if kerr != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, kerr
		}
		state.localKeypair = keypair
		cke = &handshake.MessageClientKeyExchange{PublicKey: keypair.PublicKey}

		if suite.KeyExchangeAlgorithm()&ciphersuite.KeyExchangeAlgorithmPsk != 0 {
			psk, perr := cfg.localPSKCallback(cfg.localPSKIdentityHint)
			if perr != nil {
				return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, perr
			}
			preMasterSecret, err = prf.PSKECDHEPreMasterSecret(psk, state.remoteKeyExchangePublicKey, keypair.PrivateKey, state.namedCurve)
			cke.IdentityHint = cfg.localPSKIdentityHint
		} else {
			preMasterSecret, err = prf.PreMasterSecret(state.remoteKeyExchangePublicKey, keypair.PrivateKey, state.namedCurve)
		}
	default:
		psk, perr := cfg.localPSKCallback(cfg.localPSKIdentityHint)
		if perr != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, perr
		}
		preMasterSecret = prf.PSKPreMasterSecret(psk)
		cke = &handshake.MessageClientKeyExchange{IdentityHint: cfg.localPSKIdentityHint}
	}
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}

	pkts = append(pkts, emit(cke, cfg.initialEpoch))

	if cert != nil && cert.PrivateKey != nil {
		algo, aerr := signaturehash.SelectSignatureScheme(cfg.localSignatureSchemes, cert.PrivateKey)
		if aerr != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InsufficientSecurity}, aerr
		}
		transcript := cache.transcript(cfg.initialEpoch, state.handshakeSendSequence-1)
		signature, serr := signaturehash.Sign(cert.PrivateKey, algo, transcript)
		if serr != nil {
			return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, serr
		}
		pkts = append(pkts, emit(&handshake.MessageCertificateVerify{
			HashAlgorithm:      algo.Hash,
			SignatureAlgorithm: algo.Signature,
			Signature:          signature,
		}, cfg.initialEpoch))
	}

	clientRandom := state.localRandom.MarshalFixed()
	serverRandom := state.remoteRandom.MarshalFixed()
	var masterSecret []byte
	if state.extendedMasterSecret {
		var sessionHash []byte
		sessionHash, err = cache.transcriptHash(cfg.initialEpoch, state.handshakeSendSequence-1, suite.HashFunc())
		if err == nil {
			masterSecret, err = prf.ExtendedMasterSecret(preMasterSecret, sessionHash, suite.HashFunc())
		}
	} else {
		masterSecret, err = prf.MasterSecret(preMasterSecret, clientRandom[:], serverRandom[:], suite.HashFunc())
	}
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}
	state.masterSecret = masterSecret

	if err := suite.Init(masterSecret, clientRandom[:], serverRandom[:], true); err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}

	verifyData, err := prf.VerifyDataClient(masterSecret, cache.transcript(cfg.initialEpoch, state.handshakeSendSequence-1), suite.HashFunc())
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}

	state.localEpoch.Store(1)

	pkts = append(pkts, &packet{record: &recordlayer.RecordLayer{
		Header:  recordlayer.Header{Version: protocol.Version1_2, Epoch: cfg.initialEpoch},
		Content: &protocol.ChangeCipherSpec{},
	}})
	finished := emit(&handshake.MessageFinished{VerifyData: verifyData}, cfg.initialEpoch+1)
	finished.shouldEncrypt = true
	finished.resetLocalSequenceNumber = true
	pkts = append(pkts, finished)

	return pkts, nil, nil
}

// flight5Parse waits for the server's ChangeCipherSpec and Finished,
// verifying the server's verify_data before declaring the handshake done.
func flight5Parse(_ context.Context, _ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig) (flightVal, *alert.Alert, error) {
	seq, msgs, ok := cache.fullPullMap(state.handshakeRecvSequence, state.cipherSuite,
		handshakeCachePullRule{handshake.TypeFinished, cfg.initialEpoch + 1, false, false},
	)
	if !ok {
		return flightNone, nil, nil
	}

	finished, ok := msgs[handshake.TypeFinished].(*handshake.MessageFinished)
	if !ok {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, nil
	}

	expected, err := prf.VerifyDataServer(state.masterSecret, cache.transcript(cfg.initialEpoch, state.handshakeRecvSequence-1), state.cipherSuite.HashFunc())
	if err != nil {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}
	if subtle.ConstantTimeCompare(expected, finished.VerifyData) != 1 {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.DecryptError}, errVerifyDataMismatch
	}

	state.handshakeRecvSequence = seq
	return flightFinished, nil, nil
}
