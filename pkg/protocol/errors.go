// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package protocol

import "errors"

var errInvalidCipherSpec = errors.New("protocol: invalid change cipher spec")
