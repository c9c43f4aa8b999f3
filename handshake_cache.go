// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"hash"
	"sort"
	"sync"

	"github.com/fieldlink/dtls/pkg/crypto/ciphersuite"
	"github.com/fieldlink/dtls/pkg/crypto/clonehash"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
)

// handshakeCacheItem is one reassembled (but not yet consumed) handshake
// message, kept so flight handlers can re-derive the running handshake
// transcript hash and re-parse a flight that must be retransmitted.
type handshakeCacheItem struct {
	typ             handshake.Type
	isClient        bool
	epoch           uint16
	messageSequence uint16
	data            []byte // handshake.Header + message body, as sent/received
}

// handshakeCache stores every handshake message sent or received on this
// connection, keyed by message sequence number and sender (spec.md Section
// 4.4, "verify_data / Finished hashing" requires the exact bytes of every
// prior flight in order).
type handshakeCache struct {
	mu    sync.Mutex
	cache []*handshakeCacheItem
}

func newHandshakeCache() *handshakeCache {
	return &handshakeCache{}
}

// push records a handshake message. A duplicate (same message sequence
// number and sender) is ignored, which makes retransmitted flights
// idempotent against the cache.
func (h *handshakeCache) push(data []byte, epoch, messageSequence uint16, typ handshake.Type, isClient bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, item := range h.cache {
		if item.messageSequence == messageSequence && item.isClient == isClient {
			return
		}
	}

	h.cache = append(h.cache, &handshakeCacheItem{
		typ:             typ,
		isClient:        isClient,
		epoch:           epoch,
		messageSequence: messageSequence,
		data:            append([]byte{}, data...),
	})
}

// handshakeCachePullRule describes one handshake message a caller expects
// to find at the next sequence number: its type, the epoch it must have
// been sent/received under, which side must have sent it, and whether its
// absence is tolerated (optional).
type handshakeCachePullRule struct {
	typ      handshake.Type
	epoch    uint16
	isClient bool
	optional bool
}

// fullPullMap walks the cache starting at startSeq, matching one message
// per rule in order. cipherSuite is accepted for parity with callers that
// gate on handshake completion, but fullPullMap itself only needs the
// cached plaintext bytes: every cached item was already the defragmented
// handshake content, recorded before/after encryption is applied one
// layer up in Conn.writePackets/handleIncomingPacket.
//
// It returns the next unconsumed sequence number, the matched messages
// keyed by type, and whether every non-optional rule was satisfied.
func (h *handshakeCache) fullPullMap(
	startSeq int, cipherSuite ciphersuite.CipherSuite, rules ...handshakeCachePullRule,
) (int, map[handshake.Type]handshake.Message, bool) {
	_ = cipherSuite
	h.mu.Lock()
	defer h.mu.Unlock()

	byTyp := map[handshake.Type]*handshakeCacheItem{}
	for _, item := range h.cache {
		byTyp[item.typ] = item
	}

	out := map[handshake.Type]handshake.Message{}
	seq := startSeq
	for _, rule := range rules {
		item, ok := byTyp[rule.typ]
		if !ok || item.isClient != rule.isClient || int(item.messageSequence) != seq {
			if rule.optional {
				continue
			}
			return startSeq, nil, false
		}

		var hs handshake.Handshake
		if err := hs.Unmarshal(item.data); err != nil {
			if rule.optional {
				continue
			}
			return startSeq, nil, false
		}
		out[rule.typ] = hs.Message
		seq++
	}

	return seq, out, true
}

// latest returns the most recently pushed message of type typ from the
// given sender, decoded, along with its raw cache bytes. Used for the
// ClientHello/HelloVerifyRequest cookie round trip, where the message
// sequence number the client assigns its retried ClientHello is not
// known ahead of time by the server.
func (h *handshakeCache) latest(typ handshake.Type, isClient bool) (handshake.Message, []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var best *handshakeCacheItem
	for _, item := range h.cache {
		if item.typ != typ || item.isClient != isClient {
			continue
		}
		if best == nil || item.messageSequence > best.messageSequence {
			best = item
		}
	}
	if best == nil {
		return nil, nil, false
	}

	var hs handshake.Handshake
	if err := hs.Unmarshal(best.data); err != nil {
		return nil, nil, false
	}
	return hs.Message, best.data, true
}

// pullAndMerge returns the raw cache bytes for every message at or after
// fromSeq sent by isClient, in ascending sequence order, concatenated: the
// shape Finished's verify_data hash needs (spec.md Section 4.4, "Finished
// verify_data").
func (h *handshakeCache) pullAndMerge(fromSeq int, isClient bool) []byte {
	h.mu.Lock()
	items := append([]*handshakeCacheItem{}, h.cache...)
	h.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].messageSequence < items[j].messageSequence
	})

	var out []byte
	for _, item := range items {
		if item.isClient != isClient || int(item.messageSequence) < fromSeq {
			continue
		}
		out = append(out, item.data...)
	}
	return out
}

// transcript concatenates every handshake message exchanged under epoch,
// from both sides, in the order they were sent/received, up to and
// including upToSeq. This is the input RFC 7627's extended master secret
// hashes in place of clientRandom||serverRandom.
func (h *handshakeCache) transcript(epoch uint16, upToSeq int) []byte {
	h.mu.Lock()
	items := append([]*handshakeCacheItem{}, h.cache...)
	h.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].messageSequence != items[j].messageSequence {
			return items[i].messageSequence < items[j].messageSequence
		}
		return items[i].isClient && !items[j].isClient
	})

	var out []byte
	for _, item := range items {
		if item.epoch != epoch || int(item.messageSequence) > upToSeq {
			continue
		}
		out = append(out, item.data...)
	}
	return out
}

// transcriptHash computes the digest of transcript(epoch, upToSeq) under
// newHash without disturbing any hash state a caller might still be
// accumulating elsewhere: the transcript is written into a clonehash.Hash
// and only a clone of it is finalized, per spec.md Section 4.6's
// "Clone-before-finalize" contract (the extended-master-secret session
// hash and the Finished verify_data hash are both "as of this message"
// snapshots taken while the overall transcript keeps growing).
func (h *handshakeCache) transcriptHash(epoch uint16, upToSeq int, newHash func() hash.Hash) ([]byte, error) {
	running := clonehash.New(newHash)
	if _, err := running.Write(h.transcript(epoch, upToSeq)); err != nil {
		return nil, err
	}

	scratch, err := running.Clone()
	if err != nil {
		return nil, err
	}
	sum := scratch.Sum(nil)
	scratch.Reset()
	return sum, nil
}
