// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/tls"
	"crypto/x509"
)

// AddLocalCertificate appends cert to the set of certificates this side of
// the connection may present during a future renegotiated/resumed
// handshake, mirroring the fixed-size certificate_list array the embedded
// NetX Secure DTLS API exposes as "local certificate add" (spec.md
// Section 6).
func (c *Conn) AddLocalCertificate(cert tls.Certificate) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.cfg == nil {
		return errNoConfigProvided
	}
	c.cfg.localCertificates = append(c.cfg.localCertificates, cert)
	return nil
}

// RemoveLocalCertificate removes the first configured certificate whose
// leaf matches leaf, the counterpart to AddLocalCertificate.
func (c *Conn) RemoveLocalCertificate(leaf *x509.Certificate) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.cfg == nil {
		return errNoConfigProvided
	}
	for i, cert := range c.cfg.localCertificates {
		if len(cert.Certificate) == 0 {
			continue
		}
		parsed, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			continue
		}
		if parsed.Equal(leaf) {
			c.cfg.localCertificates = append(c.cfg.localCertificates[:i], c.cfg.localCertificates[i+1:]...)
			return nil
		}
	}
	return errCertificateNotFound
}

// AddTrustedCertificate adds cert to the pool of CAs this side trusts when
// verifying the peer's chain (RootCAs for a client, ClientCAs for a
// server), the counterpart of "trusted certificate add" (spec.md Section
// 6, grounded on nx_secure_dtls_server_trusted_certificate_add.c).
func (c *Conn) AddTrustedCertificate(cert *x509.Certificate) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.cfg == nil {
		return errNoConfigProvided
	}
	pool := c.trustedPoolLocked()
	pool.AddCert(cert)
	return nil
}

// RemoveTrustedCertificate rebuilds the trusted pool without cert. x509's
// CertPool has no single-certificate removal, so the pool is recreated
// from a pre-tracked certificate list.
func (c *Conn) RemoveTrustedCertificate(cert *x509.Certificate) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.cfg == nil {
		return errNoConfigProvided
	}

	remaining := x509.NewCertPool()
	pool := c.trustedPoolLocked()
	for _, raw := range pool.Subjects() { //nolint:staticcheck
		parsed, err := x509.ParseCertificate(raw)
		if err != nil || parsed.Equal(cert) {
			continue
		}
		remaining.AddCert(parsed)
	}
	c.setTrustedPoolLocked(remaining)
	return nil
}

func (c *Conn) trustedPoolLocked() *x509.CertPool {
	if c.state.isClient {
		if c.cfg.rootCAs == nil {
			c.cfg.rootCAs = x509.NewCertPool()
		}
		return c.cfg.rootCAs
	}
	if c.cfg.clientCAs == nil {
		c.cfg.clientCAs = x509.NewCertPool()
	}
	return c.cfg.clientCAs
}

func (c *Conn) setTrustedPoolLocked(pool *x509.CertPool) {
	if c.state.isClient {
		c.cfg.rootCAs = pool
		return
	}
	c.cfg.clientCAs = pool
}
