// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/tls"
	"crypto/x509"
	"io"
	"time"

	"github.com/pion/logging"

	"github.com/fieldlink/dtls/pkg/crypto/ciphersuite"
	"github.com/fieldlink/dtls/pkg/crypto/elliptic"
	"github.com/fieldlink/dtls/pkg/crypto/signaturehash"
)

// handshakeConfig is the immutable, already-resolved set of parameters the
// flight handlers consult; it is derived once from Config by
// handshakeConn so flight code never has to re-run negotiation defaults.
type handshakeConfig struct {
	localPSKCallback              PSKCallback
	localPSKIdentityHint          []byte
	localCipherSuites             []ciphersuite.CipherSuite
	localSignatureSchemes         []signaturehash.Algorithm
	extendedMasterSecret          ExtendedMasterSecretType
	localSRTPProtectionProfiles   []SRTPProtectionProfile
	serverName                    string
	supportedProtocols            []string
	clientAuth                    ClientAuthType
	localCertificates             []tls.Certificate
	insecureSkipVerify            bool
	verifyPeerCertificate         func(rawCertificates [][]byte, verifiedChains [][]*x509.Certificate) error
	verifyConnection              func(*State) error
	rootCAs                       *x509.CertPool
	clientCAs                     *x509.CertPool
	customCipherSuites            func() []ciphersuite.CipherSuite
	retransmitInterval            time.Duration
	maxRetransmitTimeout          time.Duration
	retransmitShift               uint
	retransmitRetries             int
	log                           logging.LeveledLogger
	initialEpoch                  uint16
	keyLogWriter                  io.Writer
	sessionStore                  SessionStore
	ellipticCurves                []elliptic.Curve
	localGetCertificate           func(*ClientHelloInfo) (*tls.Certificate, error)
	localGetClientCertificate     func(*CertificateRequestInfo) (*tls.Certificate, error)
	insecureSkipHelloVerify       bool
	connectionIDGenerator         ConnectionIDGenerator
	helloRandomBytesGenerator     func([]byte)
	clientHelloMessageHook        func(clientHello any) any
	serverHelloMessageHook        func(serverHello any) any
	certificateRequestMessageHook func(certificateRequest any) any

	onFlightState func(flightVal, handshakeState)

	cookieSecret *cookieSecret
}

// getCertificate resolves the local certificate to present, preferring an
// explicit GetCertificate callback over a static Certificates list (mirrors
// crypto/tls.Config.GetCertificate).
func (c *handshakeConfig) getCertificate(info *ClientHelloInfo) (*tls.Certificate, error) {
	if c.localGetCertificate != nil {
		return c.localGetCertificate(info)
	}
	if len(c.localCertificates) == 0 {
		return nil, errNoCertificates
	}
	return &c.localCertificates[0], nil
}

// getClientCertificate resolves the certificate a client presents in
// response to a server's CertificateRequest.
func (c *handshakeConfig) getClientCertificate(info *CertificateRequestInfo) (*tls.Certificate, error) {
	if c.localGetClientCertificate != nil {
		return c.localGetClientCertificate(info)
	}
	if len(c.localCertificates) == 0 {
		return nil, errNoCertificates
	}
	return &c.localCertificates[0], nil
}
