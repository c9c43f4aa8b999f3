// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"sync/atomic"

	"github.com/fieldlink/dtls/pkg/crypto/ciphersuite"
	"github.com/fieldlink/dtls/pkg/crypto/elliptic"
	"github.com/fieldlink/dtls/pkg/crypto/prf"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
)

// State holds the negotiated parameters of a DTLS connection, readable
// via Conn.ConnectionState once the handshake has completed (spec.md
// Section 3, "Data Model").
type State struct {
	localEpoch, remoteEpoch   atomic.Uint32
	localSequenceNumber       []uint64 // uint48, per epoch
	localRandom, remoteRandom handshake.Random
	masterSecret              []byte
	preMasterSecret           []byte
	cipherSuite               ciphersuite.CipherSuite

	srtpProtectionProfile SRTPProtectionProfile

	peerCertificatesVerified bool
	peerCertificates         [][]byte
	identityHint             []byte

	isClient bool

	SessionID []byte

	namedCurve elliptic.Curve

	// replayDetector holds one sliding-window replay state per epoch,
	// grown lazily as new epochs are entered (spec.md Section 4.2,
	// "Per-epoch replay detection window").
	replayDetector []*epochState

	localConnectionID, remoteConnectionID []byte

	// cookie is the server's HelloVerifyRequest cookie for this exchange,
	// echoed back by the client on its second ClientHello (spec.md Section
	// 4.4, "Cookie round-trip").
	cookie []byte

	// handshakeRecvSequence/handshakeSendSequence track the next expected
	// handshake message sequence number in each direction, advanced as
	// flight handlers consume/produce messages.
	handshakeRecvSequence int
	handshakeSendSequence int

	localKeypair *elliptic.Keypair

	// remoteKeyExchangePublicKey is the peer's ECDHE public key, taken from
	// ServerKeyExchange (client side) or ClientKeyExchange (server side).
	remoteKeyExchangePublicKey []byte

	extendedMasterSecret bool

	// remoteCertificateRequested records whether the peer's hello flight
	// carried a CertificateRequest, so the following flight knows whether
	// to present a client certificate and CertificateVerify.
	remoteCertificateRequested bool

	// handshakeMessagesTranscript accumulates the exact bytes (handshake
	// header + body) of every message counted toward Finished's
	// verify_data hash, in protocol order. HelloVerifyRequest and the
	// cookie-less first ClientHello are never appended here (RFC 6347
	// Section 4.2.1).
	handshakeMessagesTranscript []byte
}

func (s *State) appendTranscript(raw []byte) {
	s.handshakeMessagesTranscript = append(s.handshakeMessagesTranscript, raw...)
}

func (s *State) getSRTPProtectionProfile() SRTPProtectionProfile {
	return s.srtpProtectionProfile
}

func (s *State) getLocalEpoch() uint16 {
	return uint16(s.localEpoch.Load())
}

func (s *State) getRemoteEpoch() uint16 {
	return uint16(s.remoteEpoch.Load())
}

// clone returns a deep-enough copy of s suitable for ConnectionState's
// value-returning snapshot: slices are copied so a caller cannot mutate
// the live connection state through the returned State.
func (s *State) clone() *State {
	out := &State{
		localRandom:              s.localRandom,
		remoteRandom:             s.remoteRandom,
		masterSecret:             append([]byte{}, s.masterSecret...),
		preMasterSecret:          append([]byte{}, s.preMasterSecret...),
		cipherSuite:              s.cipherSuite,
		srtpProtectionProfile:    s.srtpProtectionProfile,
		peerCertificatesVerified: s.peerCertificatesVerified,
		peerCertificates:         append([][]byte{}, s.peerCertificates...),
		identityHint:             append([]byte{}, s.identityHint...),
		isClient:                 s.isClient,
		SessionID:                append([]byte{}, s.SessionID...),
		namedCurve:               s.namedCurve,
		localConnectionID:        append([]byte{}, s.localConnectionID...),
		remoteConnectionID:       append([]byte{}, s.remoteConnectionID...),
	}
	out.localEpoch.Store(s.localEpoch.Load())
	out.remoteEpoch.Store(s.remoteEpoch.Load())
	return out
}

// IsClient reports whether this side of the connection initiated the
// handshake.
func (s *State) IsClient() bool { return s.isClient }

// PeerCertificates returns the verified certificate chain the remote
// peer presented, DER-encoded.
func (s *State) PeerCertificates() [][]byte { return s.peerCertificates }

// ExportKeyingMaterial implements RFC 5705 key material export. label
// must not collide with an internal PRF label (spec.md Section 4.6).
func (s *State) ExportKeyingMaterial(label string, context []byte, length int) ([]byte, error) {
	if s.localEpoch.Load() == 0 {
		return nil, errHandshakeInProgress
	}
	if invalidKeyingLabels()[label] {
		return nil, errReservedExportKeyingMaterial
	}

	localRandom := s.localRandom.MarshalFixed()
	remoteRandom := s.remoteRandom.MarshalFixed()
	seed := append(append([]byte{}, localRandom[:]...), remoteRandom[:]...)
	if !s.isClient {
		seed = append(append([]byte{}, remoteRandom[:]...), localRandom[:]...)
	}
	if context != nil {
		seed = append(seed, byte(len(context)>>8), byte(len(context)))
		seed = append(seed, context...)
	}

	return prf.PHash(s.masterSecret, append([]byte(label), seed...), length, s.cipherSuite.HashFunc())
}
