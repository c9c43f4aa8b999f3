// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"github.com/fieldlink/dtls/pkg/crypto/prf"
	"github.com/fieldlink/dtls/pkg/protocol"
	"github.com/fieldlink/dtls/pkg/protocol/alert"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

// flight6Generate sends the server's ChangeCipherSpec and Finished, the
// terminal flight of the handshake. There is no flight6Parse: once this
// flight is written the handshake is complete from the server's
// perspective (spec.md Section 4.4, "Handshake completion").
func flight6Generate(_ flightConn, state *State, cache *handshakeCache, cfg *handshakeConfig) ([]*packet, *alert.Alert, error) {
	verifyData, err := prf.VerifyDataServer(state.masterSecret, cache.transcript(cfg.initialEpoch, state.handshakeRecvSequence-1), state.cipherSuite.HashFunc())
	if err != nil {
		return nil, &alert.Alert{Level: alert.Fatal, Description: alert.InternalError}, err
	}

	state.localEpoch.Store(1)

	finishedMsg := nextHandshakeMessage(state, &handshake.MessageFinished{VerifyData: verifyData})
	if raw, merr := finishedMsg.Marshal(); merr == nil {
		cache.push(raw, cfg.initialEpoch+1, finishedMsg.Header.MessageSequence, finishedMsg.Header.Type, false)
	}

	return []*packet{
		{record: &recordlayer.RecordLayer{
			Header:  recordlayer.Header{Version: protocol.Version1_2, Epoch: cfg.initialEpoch},
			Content: &protocol.ChangeCipherSpec{},
		}},
		{
			record: &recordlayer.RecordLayer{
				Header:  recordlayer.Header{Version: protocol.Version1_2, Epoch: cfg.initialEpoch + 1},
				Content: finishedMsg,
			},
			shouldEncrypt:            true,
			resetLocalSequenceNumber: true,
		},
	}, nil, nil
}
