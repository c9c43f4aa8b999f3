// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import "errors"

// Typed errors surfaced to callers of Dial/Client/Server/Read/Write
// (spec.md Section 8, "Error Handling Design").
var (
	errConnClosed          = errors.New("dtls: conn is closed")
	errDeadlineExceeded    = errors.New("dtls: read/write timeout")
	errNilNextConn         = errors.New("dtls: nextConn must not be nil")
	errNoConfigProvided    = errors.New("dtls: no config provided")
	errNoCertificates      = errors.New("dtls: no certificates configured")
	errCookieMismatch      = errors.New("dtls: client cookie does not match expected value")
	errCookieExpired       = errors.New("dtls: client cookie has expired")
	errServerMustHaveCertificate = errors.New("dtls: Certificate is mandatory for server")
	errPSKAndCertificate   = errors.New("dtls: PSK and Certificate must not be both set")
	errPSKAndIdentityMustBeSetForClient = errors.New("dtls: PSK and PSKIdentityHint must both be set for client")
	errNoAvailableCipherSuites          = errors.New("dtls: no available cipher suites")
	errNotAcceptedClientCertificate     = errors.New("dtls: client sent certificate but server did not configure client auth")
	errClientCertificateRequired        = errors.New("dtls: server requires client certificate, none received")
	errClientCertificateNotVerified     = errors.New("dtls: client sent certificate, no verification method configured")
	errIdentityNoPSK                    = errors.New("dtls: no PSK identity hint configured")
	errNotInjectedConnectionID          = errors.New("dtls: connection ID not negotiated")
	errHandshakeInProgress              = errors.New("dtls: handshake is in progress")
	errHandshakeTimeout                 = errors.New("dtls: handshake timed out")
	errApplicationDataEpochZero         = errors.New("dtls: ApplicationData with epoch 0 (EncryptionStage is not Finalized)")
	errUnhandledContextType             = errors.New("dtls: unhandled context type")
	errSequenceNumberOverflow           = errors.New("dtls: sequence number overflow")
	errFailedToAccessPoolReadBuffer     = errors.New("dtls: failed to access pool read buffer")
	errReservedExportKeyingMaterial     = errors.New("dtls: reserved export keying material label")
	errNoSessionStore                   = errors.New("dtls: session store not configured")
	errServerPoolExhausted              = errors.New("dtls: server accept pool at capacity")
	errUnknownSession                   = errors.New("dtls: session not found in registry")
	errBufferTooSmall                   = errors.New("dtls: buffer too small to decode datagram")
	errFragmentOffsetOverflow           = errors.New("dtls: fragment offset+length overruns declared message length")
	errUnsupportedProtocolVersion       = errors.New("dtls: unsupported protocol version")
	errClientSentUnsupportedCipherSuite = errors.New("dtls: client sent cipher suite the server does not support")
	errCipherSuiteNoIntersection        = errors.New("dtls: client/server cipher suites have no intersection")
	errInvalidCertificate               = errors.New("dtls: invalid certificate")
	errKeySignatureMismatch             = errors.New("dtls: expected and actual key signature do not match")
	errPaddingCheckFailed               = errors.New("dtls: PKCS#1 v1.5 padding check failed")
	errCertificateVerifyNoCertificate   = errors.New("dtls: no certificate provided to verify")
	errNotEnoughRandomBytes             = errors.New("dtls: not enough random bytes read")
	errCipherSuiteUnset                 = errors.New("dtls: server hello did not set a cipher suite")
	errInvalidPrivateKeyType            = errors.New("dtls: certificate's private key does not support signing")
	errVerifyDataMismatch                = errors.New("dtls: finished verify_data does not match")
	errClientNoExtendedMasterSecret     = errors.New("dtls: extended master secret required but client did not offer it")
	errNoKeypairForKeyExchange          = errors.New("dtls: no local ephemeral keypair for ECDHE key exchange")
	errMissingCryptoRoutine             = errors.New("dtls: cipher suite does not provide the requested crypto routine")
	errPSKRequired                       = errors.New("dtls: PSK callback required for this cipher suite but none configured")
	errCertificateNotFound              = errors.New("dtls: certificate not found")
	errSessionUninitialized             = errors.New("dtls: session is not in use")
	errNotConnected                     = errors.New("dtls: session has never received a datagram from its peer")
	errSendAddressMismatch              = errors.New("dtls: send address does not match session's captured remote binding")
	errAlreadySuspended                 = errors.New("dtls: another caller is already suspended on this session's receive")
	errServerAlreadyStarted             = errors.New("dtls: server is already started")
)

// ErrConnClosed is returned by Read/Write/Close once the connection has
// already been closed.
var ErrConnClosed = errConnClosed
