// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshake

import "errors"

var (
	errBufferTooSmall           = errors.New("handshake: buffer too small to unmarshal")
	errCipherSuiteUnset         = errors.New("handshake: cipher suite not set")
	errCompressionMethodUnset   = errors.New("handshake: compression method not set")
	errInvalidCompressionMethod = errors.New("handshake: invalid or unknown compression method")
	errHandshakeMessageUnset    = errors.New("handshake: message not set")
	errInvalidHandshakeType     = errors.New("handshake: invalid or unsupported message type")
	errCookieTooLong            = errors.New("handshake: cookie exceeds 255 bytes")
	errInvalidCipherSuite       = errors.New("handshake: invalid cipher suite")
	errInvalidEllipticCurveType = errors.New("handshake: invalid elliptic curve type")
	errInvalidNamedCurve        = errors.New("handshake: invalid named curve")
	errInvalidSignatureAlgorithm = errors.New("handshake: invalid signature algorithm")
	errInvalidHashAlgorithm      = errors.New("handshake: invalid hash algorithm")
	errInvalidCertificateType    = errors.New("handshake: invalid certificate type")
	errLengthMismatch            = errors.New("handshake: data length and declared length do not match")
)
