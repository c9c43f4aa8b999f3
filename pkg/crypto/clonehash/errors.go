// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package clonehash

import "errors"

var errCloneUnsupported = errors.New("clonehash: underlying hash does not support cloning")
