// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"

	"github.com/fieldlink/dtls/pkg/protocol"
	"github.com/fieldlink/dtls/pkg/protocol/alert"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

// flight0Parse is the server's bootstrap wait: accept the client's first
// ClientHello once it carries a cookie this server issued (or
// unconditionally, if InsecureSkipVerifyHello is set).
func flight0Parse(_ context.Context, c flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig) (flightVal, *alert.Alert, error) {
	msg, raw, ok := cache.latest(handshake.TypeClientHello, true)
	if !ok {
		return flightNone, nil, nil
	}
	clientHello, ok := msg.(*handshake.MessageClientHello)
	if !ok {
		return flightNone, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, nil
	}

	if cfg.insecureSkipHelloVerify {
		return acceptClientHello(state, cache, clientHello, raw)
	}
	if len(clientHello.Cookie) == 0 || cfg.cookieSecret == nil || !cfg.cookieSecret.verify(c.RemoteAddr(), clientHello.Cookie) {
		return flightNone, nil, nil
	}
	return acceptClientHello(state, cache, clientHello, raw)
}

func acceptClientHello(state *State, cache *handshakeCache, clientHello *handshake.MessageClientHello, raw []byte) (flightVal, *alert.Alert, error) {
	state.remoteRandom = clientHello.Random
	if len(clientHello.SessionID) > 0 {
		state.SessionID = append([]byte{}, clientHello.SessionID...)
	}
	state.appendTranscript(raw)
	state.handshakeRecvSequence++
	_ = cache
	return flight2, nil, nil
}

// flight0Generate sends a HelloVerifyRequest once a (cookie-less or
// stale-cookie) ClientHello has been observed; it sends nothing before
// that, since the server must not speak first (spec.md Section 4.4,
// "Cookie round-trip").
func flight0Generate(c flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig) ([]*packet, *alert.Alert, error) {
	if cfg.insecureSkipHelloVerify {
		return nil, nil, nil
	}
	if _, _, ok := cache.latest(handshake.TypeClientHello, true); !ok {
		return nil, nil, nil
	}

	cookie, err := cfg.cookieSecret.generate(c.RemoteAddr())
	if err != nil {
		return nil, nil, err
	}
	state.cookie = cookie

	return []*packet{
		{
			record: &recordlayer.RecordLayer{
				Header: recordlayer.Header{
					Version: protocol.Version1_2,
					Epoch:   0,
				},
				Content: nextHandshakeMessage(state, &handshake.MessageHelloVerifyRequest{
					Version: protocol.Version1_2,
					Cookie:  cookie,
				}),
			},
		},
	}, nil, nil
}
