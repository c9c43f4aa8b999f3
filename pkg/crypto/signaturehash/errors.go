// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package signaturehash

import (
	"crypto/tls"
	"errors"
	"fmt"
)

var (
	errNoAvailableSignatureSchemes = errors.New("signaturehash: no available signature schemes")
	errInvalidPrivateKeyType       = errors.New("signaturehash: invalid private key type")
	errInvalidPublicKeyType        = errors.New("signaturehash: invalid public key type")
	errKeySignatureMismatch        = errors.New("signaturehash: key signature mismatch")

	// ErrPaddingCheckFailed is returned by Verify for an RSA signature that
	// fails rsa.VerifyPKCS1v15's constant-time PKCS#1 v1.5 padding check
	// (RFC 8017 Section 8.2.2), kept distinct from errKeySignatureMismatch
	// so a caller can surface the spec.md Section 7 PaddingCheckFailed error
	// kind rather than the generic signature-mismatch one.
	ErrPaddingCheckFailed = errors.New("signaturehash: PKCS#1 v1.5 padding check failed")
)

type errInvalidSignatureAlgorithm struct {
	scheme tls.SignatureScheme
}

func (e *errInvalidSignatureAlgorithm) Error() string {
	return fmt.Sprintf("signaturehash: invalid signature algorithm 0x%04x", uint16(e.scheme))
}
