// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"net"
	"time"
)

// cookieValidity bounds how long a server-issued HelloVerifyRequest cookie
// remains acceptable, limiting the window in which a captured cookie can
// be replayed from a different source address (spec.md Section 4.4,
// "Cookie round-trip").
const cookieValidity = 30 * time.Second

// cookieSecret is generated once per server-side listener rather than per
// connection, so the server need not keep per-client state between the
// ClientHello that triggers a HelloVerifyRequest and the ClientHello that
// echoes it back: the cookie itself is an HMAC over the client's address
// and a timestamp, verifiable statelessly (RFC 6347 Section 4.2.1 leaves
// the cookie's construction to the implementation).
type cookieSecret struct {
	key []byte
}

func newCookieSecret() (*cookieSecret, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return &cookieSecret{key: key}, nil
}

// generate produces a cookie binding addr and the current time, bound to
// at most 255 bytes total (MessageHelloVerifyRequest.Marshal enforces the
// wire limit).
func (s *cookieSecret) generate(addr net.Addr) ([]byte, error) {
	now := time.Now().Unix()
	return s.generateAt(addr, now)
}

func (s *cookieSecret) generateAt(addr net.Addr, unixTime int64) ([]byte, error) {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(addr.String()))
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(unixTime))
	mac.Write(tsBuf[:])
	sum := mac.Sum(nil)

	out := make([]byte, 8+len(sum))
	copy(out, tsBuf[:])
	copy(out[8:], sum)
	return out, nil
}

// verify reports whether cookie is a value this secret would have issued
// for addr within cookieValidity of now.
func (s *cookieSecret) verify(addr net.Addr, cookie []byte) bool {
	if len(cookie) < 8 {
		return false
	}
	issuedAt := int64(binary.BigEndian.Uint64(cookie[:8])) //nolint:gosec
	if time.Since(time.Unix(issuedAt, 0)) > cookieValidity {
		return false
	}
	want, err := s.generateAt(addr, issuedAt)
	if err != nil {
		return false
	}
	return hmac.Equal(want, cookie)
}
