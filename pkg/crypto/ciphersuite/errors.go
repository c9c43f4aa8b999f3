// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import "errors"

var (
	errNotEnoughRoomForNonce = errors.New("ciphersuite: not enough room for nonce")
	errDecryptPacket         = errors.New("ciphersuite: decrypt packet failed")
	errInvalidMAC            = errors.New("ciphersuite: invalid mac")
	errNotInitialized        = errors.New("ciphersuite: suite used before init")
)
