// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import "errors"

var (
	errInvalidPacketLength  = errors.New("recordlayer: invalid packet length")
	errUnknownContentType   = errors.New("recordlayer: unknown content type")
	errBufferTooSmall       = errors.New("recordlayer: buffer too small to unmarshal")
	errSequenceNumberOutOfBounds = errors.New("recordlayer: sequence number out of 48-bit range")
)
