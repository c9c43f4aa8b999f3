// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"time"

	"github.com/pion/logging"

	"github.com/fieldlink/dtls/pkg/crypto/ciphersuite"
	"github.com/fieldlink/dtls/pkg/crypto/elliptic"
	"github.com/fieldlink/dtls/pkg/protocol"
	zcryptotls "github.com/zmap/zcrypto/tls"
)

// ClientAuthType declares the policy a DTLS server uses for client
// certificate authentication (mirrors crypto/tls.ClientAuthType).
type ClientAuthType int

// Client authentication policies (spec.md Section 4.4, "CertificateVerify
// / ServerKeyExchange verification").
const (
	NoClientCert ClientAuthType = iota
	RequestClientCert
	RequireAnyClientCert
	VerifyClientCertIfGiven
	RequireAndVerifyClientCert
)

// ClientHelloInfo is passed to Config.GetCertificate so a server can
// select a certificate based on what the client offered.
type ClientHelloInfo struct {
	ServerName     string
	CipherSuites   []ciphersuite.ID
	CertificateTypes []uint8
}

// CertificateRequestInfo is passed to Config.GetClientCertificate.
type CertificateRequestInfo struct {
	AcceptableCAs [][]byte
}

// SRTPProtectionProfile is the negotiated DTLS-SRTP profile (RFC 5764).
type SRTPProtectionProfile uint16

// ConnectionIDGenerator produces a connection ID for a new epoch (RFC
// 9146). Returning nil/empty disables Connection ID for that epoch.
type ConnectionIDGenerator func() []byte

// SessionStore persists DTLS sessions across connections for resumption
// (spec.md Section 4.6, "Session resumption / new-session admission").
type SessionStore interface {
	Get(key []byte) (ResumptionState, bool)
	Put(key []byte, s ResumptionState) error
	Delete(key []byte) error
}

// ResumptionState is the resumable state of a completed handshake: the
// session ID and master secret a future ClientHello can offer to skip a
// full handshake. Distinct from Session (C6), which is the live per-peer
// control block the server multiplexer hands out.
type ResumptionState struct {
	ID     []byte
	Secret []byte
}

// Config configures a Client, Server, or Dial call (spec.md Section 7,
// "External Interfaces").
type Config struct {
	Certificates              []tls.Certificate
	CipherSuites              []ciphersuite.ID
	CustomCipherSuites        func() []ciphersuite.CipherSuite
	SignatureSchemes          []zcryptotls.SignatureScheme
	InsecureHashes            bool
	SRTPProtectionProfiles    []SRTPProtectionProfile
	ClientAuth                ClientAuthType
	ExtendedMasterSecret      ExtendedMasterSecretType
	FlightInterval            time.Duration
	PSK                       PSKCallback
	PSKIdentityHint           []byte
	InsecureSkipVerify        bool
	InsecureSkipVerifyHello   bool
	VerifyPeerCertificate     func(rawCertificates [][]byte, verifiedChains [][]*x509.Certificate) error
	VerifyConnection          func(*State) error
	RootCAs                   *x509.CertPool
	ClientCAs                 *x509.CertPool
	ServerName                string
	LoggerFactory             logging.LoggerFactory
	ConnectContextMaker       func() (context.Context, func())
	MTU                       int
	ReplayProtectionWindow    int
	EllipticCurves            []elliptic.Curve
	KeyLogWriter              io.Writer
	SessionStore              SessionStore
	PaddingLengthGenerator    func(uint) uint
	GetCertificate            func(*ClientHelloInfo) (*tls.Certificate, error)
	GetClientCertificate      func(*CertificateRequestInfo) (*tls.Certificate, error)
	ConnectionIDGenerator     ConnectionIDGenerator
	HelloRandomBytesGenerator func([]byte)
	SupportedProtocols        []string
	ClientHelloMessageHook        func(clientHello any) any
	ServerHelloMessageHook        func(serverHello any) any
	CertificateRequestMessageHook func(certificateRequest any) any

	// InitialRetransmitTimeout is the first flight retransmit timer
	// duration; with a non-zero RetransmitShift it doubles on each
	// retransmit up to MaximumRetransmitTimeout, for at most
	// RetransmitRetries retransmissions before the handshake times out
	// (spec.md Section 4.4, "Flight-based retransmission"). A zero
	// RetransmitShift is replaced by the default, which doubles.
	InitialRetransmitTimeout time.Duration
	MaximumRetransmitTimeout time.Duration
	RetransmitShift          uint
	RetransmitRetries        int

	// CookieLength is not read by the handshake: HelloVerifyRequest
	// cookies are always 40 bytes (an 8-byte timestamp followed by a
	// 32-byte HMAC-SHA256 tag), whatever this field holds.
	CookieLength int

	// SessionPoolSize bounds how many concurrently-handshaking sessions
	// a Server multiplexer admits (spec.md Section 4.5, C7).
	SessionPoolSize int

	// ProtocolVersionOverride is not read anywhere in the package: it has
	// no effect on the version carried in ClientHello, ServerHello or
	// record headers.
	ProtocolVersionOverride protocol.Version
}

// ExtendedMasterSecretType controls whether RFC 7627's extended master
// secret is required, requested, or disabled (spec.md Section 4.6).
type ExtendedMasterSecretType int

// Extended master secret negotiation policy.
const (
	RequireExtendedMasterSecret ExtendedMasterSecretType = iota
	RequestExtendedMasterSecret
	DisableExtendedMasterSecret
)

// PSKCallback looks up the shared key for a PSK identity hint.
type PSKCallback func(hint []byte) ([]byte, error)

func (c *Config) includeCertificateSuites() bool {
	return c.PSK == nil || len(c.Certificates) > 0 || c.GetCertificate != nil
}

func (c *Config) connectContextMaker() (context.Context, func()) {
	if c.ConnectContextMaker != nil {
		return c.ConnectContextMaker()
	}
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func validateConfig(config *Config) error {
	if config == nil {
		return errNoConfigProvided
	}
	if config.PSK != nil && config.PSKIdentityHint == nil {
		// server side is allowed to omit the identity hint; client side
		// (checked by the caller via isClient) must set it.
		return nil
	}
	if config.PSK != nil && len(config.Certificates) > 0 {
		return errPSKAndCertificate
	}
	return nil
}

var defaultCurves = []elliptic.Curve{elliptic.X25519, elliptic.P256, elliptic.P384}

const defaultMTU = 1200

// Retransmit backoff defaults (spec.md Section 4.4): start at 1s, double
// each retransmit (the shift is non-zero), cap the per-wait timeout at
// 60s, give up after 8 retransmissions.
const (
	defaultInitialRetransmitTimeout = time.Second
	defaultMaxRetransmitTimeout     = 60 * time.Second
	defaultRetransmitShift          = 6
	defaultRetransmitRetries        = 8
	defaultCookieLength             = 20
	defaultSessionPoolSize          = 128
)
