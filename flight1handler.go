// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"

	"github.com/fieldlink/dtls/pkg/protocol"
	"github.com/fieldlink/dtls/pkg/protocol/alert"
	"github.com/fieldlink/dtls/pkg/protocol/extension"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

// flight1Parse waits for the server's response to the client's first,
// cookie-less ClientHello: a HelloVerifyRequest carrying the cookie to
// echo back, or (a server that skips the round trip) a ServerHello
// straight away.
func flight1Parse(ctx context.Context, c flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig) (flightVal, *alert.Alert, error) {
	seq, msgs, ok := cache.fullPullMap(state.handshakeRecvSequence, state.cipherSuite,
		handshakeCachePullRule{handshake.TypeHelloVerifyRequest, cfg.initialEpoch, false, true},
		handshakeCachePullRule{handshake.TypeServerHello, cfg.initialEpoch, false, true},
	)
	if !ok {
		return flightNone, nil, nil
	}

	if _, ok := msgs[handshake.TypeServerHello]; ok {
		// The server skipped HelloVerifyRequest; parse this flight as if
		// it were flight3's response.
		return flight3Parse(ctx, c, state, cache, cfg)
	}

	h, ok := msgs[handshake.TypeHelloVerifyRequest].(*handshake.MessageHelloVerifyRequest)
	if !ok {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, nil
	}

	// RFC 6347 Section 4.2.1: a client must not assume the server will
	// use the protocol version named in HelloVerifyRequest.
	if !h.Version.Equal(protocol.Version1_0) && !h.Version.Equal(protocol.Version1_2) {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.ProtocolVersion}, errUnsupportedProtocolVersion
	}
	state.cookie = append([]byte{}, h.Cookie...)
	state.handshakeRecvSequence = seq
	return flight3, nil, nil
}

// buildClientHelloExtensions assembles the extension list offered on both
// the cookie-less and the cookie-bearing ClientHello.
func buildClientHelloExtensions(cfg *handshakeConfig) []extension.Extension {
	extensions := []extension.Extension{
		&extension.SupportedSignatureAlgorithms{
			SignatureHashAlgorithms: signatureHashAlgorithmsToExtension(cfg.localSignatureSchemes),
		},
		&extension.RenegotiationInfo{
			RenegotiatedConnection: nil,
		},
	}

	var needsECCExtensions bool
	for _, s := range cfg.localCipherSuites {
		if s.ECC() {
			needsECCExtensions = true
			break
		}
	}
	if needsECCExtensions {
		extensions = append(extensions,
			&extension.SupportedEllipticCurves{EllipticCurves: namedCurvesToExtension(cfg.ellipticCurves)},
			&extension.SupportedPointFormats{PointFormats: []extension.PointFormat{extension.PointFormatUncompressed}},
		)
	}

	if len(cfg.localSRTPProtectionProfiles) > 0 {
		extensions = append(extensions, &extension.UseSRTP{ProtectionProfiles: srtpProtectionProfilesToExtension(cfg.localSRTPProtectionProfiles)})
	}

	if cfg.extendedMasterSecret == RequestExtendedMasterSecret || cfg.extendedMasterSecret == RequireExtendedMasterSecret {
		extensions = append(extensions, &extension.UseExtendedMasterSecret{Supported: true})
	}

	if len(cfg.supportedProtocols) > 0 {
		extensions = append(extensions, &extension.ALPN{ProtocolNameList: cfg.supportedProtocols})
	}

	return extensions
}

// buildClientHello constructs the ClientHello wire message from state and
// cfg, applying the configured connection ID generator and message hook.
// Called both for the cookie-less first attempt and the cookie-bearing
// retry; the caller is responsible for state.cookie's value.
func buildClientHello(c flightConn, state *State, cfg *handshakeConfig) *handshake.MessageClientHello {
	extensions := buildClientHelloExtensions(cfg)

	if cfg.connectionIDGenerator != nil {
		state.localConnectionID = cfg.connectionIDGenerator()
		if state.localConnectionID == nil {
			state.localConnectionID = []byte{}
		}
		extensions = append(extensions, &extension.ConnectionID{CID: state.localConnectionID})
	}

	clientHello := &handshake.MessageClientHello{
		Version:            protocol.Version1_2,
		SessionID:          state.SessionID,
		Cookie:             state.cookie,
		Random:             state.localRandom,
		CipherSuiteIDs:     cipherSuiteIDs(cfg.localCipherSuites),
		CompressionMethods: defaultCompressionMethods(),
		Extensions:         extensions,
	}

	if cfg.clientHelloMessageHook != nil {
		if hooked, ok := cfg.clientHelloMessageHook(clientHello).(*handshake.MessageClientHello); ok {
			return hooked
		}
	}
	return clientHello
}

// flight1Generate sends the client's first ClientHello: no cookie, since
// one has not yet been issued (spec.md Section 4.4, "Cookie round-trip").
func flight1Generate(c flightConn, state *State, _ *handshakeCache, cfg *handshakeConfig) ([]*packet, *alert.Alert, error) {
	state.localEpoch.Store(0)
	state.remoteEpoch.Store(0)
	state.namedCurve = defaultNamedCurve
	state.cookie = nil

	if err := state.localRandom.Populate(); err != nil {
		return nil, nil, err
	}

	if cfg.sessionStore != nil {
		if s, ok := cfg.sessionStore.Get(c.sessionKey()); ok {
			state.SessionID = s.ID
			state.masterSecret = s.Secret
		}
	}

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
