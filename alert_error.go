// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"fmt"

	"github.com/fieldlink/dtls/pkg/protocol/alert"
)

// alertError wraps an alert received from the peer so callers can
// distinguish "the peer told us to stop" from a local protocol error, and
// so the read/handshake loops can agree on whether it must tear down the
// connection.
type alertError struct {
	*alert.Alert
}

// Error implements the error interface.
func (e *alertError) Error() string {
	return fmt.Sprintf("alert: %s", e.Alert.String())
}

// IsFatalOrCloseNotify reports whether the wrapped alert must terminate
// the connection: every Fatal alert does, and so does a CloseNotify
// (which is Warning level but still ends the session per RFC 5246 Section
// 7.2.1).
func (e *alertError) IsFatalOrCloseNotify() bool {
	return e.Alert.Level == alert.Fatal || e.Alert.Description == alert.CloseNotify
}
