// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"net"
	"testing"
	"time"
)

func TestCookieSecretRoundTrip(t *testing.T) {
	s, err := newCookieSecret()
	if err != nil {
		t.Fatal(err)
	}

	addr := &net.UDPAddr{IP: net.ParseIP("203.0.113.7"), Port: 5684}
	cookie, err := s.generate(addr)
	if err != nil {
		t.Fatal(err)
	}
	if len(cookie) == 0 || len(cookie) > 255 {
		t.Fatalf("cookie length %d out of the 0..255 range spec.md Section 4.4 requires", len(cookie))
	}
	if !s.verify(addr, cookie) {
		t.Fatal("expected a freshly generated cookie to verify for the address it was issued to")
	}
}

func TestCookieSecretRejectsWrongAddress(t *testing.T) {
	s, err := newCookieSecret()
	if err != nil {
		t.Fatal(err)
	}

	issued := &net.UDPAddr{IP: net.ParseIP("203.0.113.7"), Port: 5684}
	other := &net.UDPAddr{IP: net.ParseIP("203.0.113.8"), Port: 5684}

	cookie, err := s.generate(issued)
	if err != nil {
		t.Fatal(err)
	}
	if s.verify(other, cookie) {
		t.Fatal("expected a cookie issued to one address not to verify for another")
	}
}

func TestCookieSecretRejectsStaleCookie(t *testing.T) {
	s, err := newCookieSecret()
	if err != nil {
		t.Fatal(err)
	}

	addr := &net.UDPAddr{IP: net.ParseIP("203.0.113.7"), Port: 5684}
	stale := time.Now().Add(-cookieValidity - time.Second).Unix()
	cookie, err := s.generateAt(addr, stale)
	if err != nil {
		t.Fatal(err)
	}
	if s.verify(addr, cookie) {
		t.Fatal("expected a cookie older than cookieValidity to be rejected")
	}
}

func TestCookieSecretRejectsTruncatedCookie(t *testing.T) {
	s, err := newCookieSecret()
	if err != nil {
		t.Fatal(err)
	}
	addr := &net.UDPAddr{IP: net.ParseIP("203.0.113.7"), Port: 5684}
	if s.verify(addr, []byte{0x01, 0x02, 0x03}) {
		t.Fatal("expected a cookie shorter than the timestamp prefix to be rejected")
	}
}
