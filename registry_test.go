// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import "testing"

func TestRegistrySessionLifecycle(t *testing.T) {
	r := &registry{}

	a := &Session{}
	b := &Session{}
	c := &Session{}

	r.addSession(a)
	r.addSession(b)
	r.addSession(c)

	if got := r.liveSessionCount(); got != 3 {
		t.Fatalf("liveSessionCount = %d, want 3", got)
	}

	// addSession must be idempotent against a Session already linked.
	r.addSession(b)
	if got := r.liveSessionCount(); got != 3 {
		t.Fatalf("liveSessionCount after duplicate add = %d, want 3", got)
	}

	r.removeSession(b)
	if got := r.liveSessionCount(); got != 2 {
		t.Fatalf("liveSessionCount after remove = %d, want 2", got)
	}

	// removeSession must be idempotent against a Session not linked.
	r.removeSession(b)
	if got := r.liveSessionCount(); got != 2 {
		t.Fatalf("liveSessionCount after duplicate remove = %d, want 2", got)
	}

	r.removeSession(a)
	r.removeSession(c)
	if got := r.liveSessionCount(); got != 0 {
		t.Fatalf("liveSessionCount after draining = %d, want 0", got)
	}
	if r.sessions != nil {
		t.Fatal("expected the session ring to be nil once empty")
	}
}

func TestRegistryServerLifecycle(t *testing.T) {
	r := &registry{}

	a := &Server{}
	b := &Server{}

	r.addServer(a)
	r.addServer(b)
	if got := r.liveServerCount(); got != 2 {
		t.Fatalf("liveServerCount = %d, want 2", got)
	}

	r.removeServer(a)
	if got := r.liveServerCount(); got != 1 {
		t.Fatalf("liveServerCount after remove = %d, want 1", got)
	}
	if r.servers != b {
		t.Fatal("expected the remaining server to stay linked as the ring head")
	}

	r.removeServer(b)
	if got := r.liveServerCount(); got != 0 {
		t.Fatalf("liveServerCount after draining = %d, want 0", got)
	}
}
