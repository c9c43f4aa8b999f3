// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package closer provides a one-shot, idempotent close signal shareable
// across goroutines, used to stop the read and handshake loops together
// when either side calls Conn.Close.
package closer

import "sync"

// Closer is a closed-once broadcast signal.
type Closer struct {
	once sync.Once
	done chan struct{}
}

// NewCloser returns a ready-to-use Closer.
func NewCloser() *Closer {
	return &Closer{done: make(chan struct{})}
}

// Close marks the Closer as closed. Safe to call more than once or
// concurrently; only the first call has effect.
func (c *Closer) Close() {
	c.once.Do(func() { close(c.done) })
}

// Done returns a channel closed once Close has been called.
func (c *Closer) Done() <-chan struct{} {
	return c.done
}
