// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"github.com/fieldlink/dtls/pkg/protocol"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

// fragmentBuffer reassembles a handshake message delivered across one or
// more DTLS records, each carrying a handshake.Header describing the
// message's fragment offset/length (spec.md Section 4.4, "Fragmentation
// and reassembly"). Fragments may arrive out of order or duplicated; a
// message is only surfaced once every byte of it has been seen.
type fragmentBuffer struct {
	cache map[uint16]*fragmentedHandshake
}

type fragmentedHandshake struct {
	header handshake.Header
	data   []byte
	got    []bool // per-byte coverage
	epoch  uint16
}

func newFragmentBuffer() *fragmentBuffer {
	return &fragmentBuffer{cache: map[uint16]*fragmentedHandshake{}}
}

// push ingests a single still-framed plaintext record (recordlayer header
// plus content) and reports whether it was a handshake record. Non-
// handshake records are left untouched for the caller to unmarshal
// normally. A record that is a handshake record but fails to parse as one
// is not a defragmentation error: the caller is responsible for
// discarding it silently per RFC 6347 Section 4.1.2.7.
func (f *fragmentBuffer) push(buf []byte) (bool, error) {
	var recordHeader recordlayer.Header
	if err := recordHeader.Unmarshal(buf); err != nil {
		return false, nil //nolint:nilerr
	}
	if recordHeader.ContentType != protocol.ContentTypeHandshake {
		return false, nil
	}

	body := buf[recordHeader.Size():]

	var header handshake.Header
	if err := header.Unmarshal(body); err != nil {
		return true, nil //nolint:nilerr
	}
	if int(header.FragmentOffset+header.FragmentLength) > int(header.Length) {
		return true, errFragmentOffsetOverflow
	}

	fh, ok := f.cache[header.MessageSequence]
	if !ok {
		fh = &fragmentedHandshake{
			header: header,
			data:   make([]byte, header.Length),
			got:    make([]bool, header.Length),
			epoch:  recordHeader.Epoch,
		}
		f.cache[header.MessageSequence] = fh
	}

	fragment := body[handshake.HeaderLength:]
	if len(fragment) < int(header.FragmentLength) {
		return true, errFragmentOffsetOverflow
	}
	copy(fh.data[header.FragmentOffset:], fragment[:header.FragmentLength])
	for i := uint32(0); i < header.FragmentLength; i++ {
		fh.got[header.FragmentOffset+i] = true
	}

	return true, nil
}

// pop returns the next fully-reassembled handshake message (header plus
// body, ready for handshake.Handshake.Unmarshal) along with the epoch it
// was received under, or (nil, 0) if none is complete yet. The caller must
// keep calling pop until it returns nil to drain every message that
// became complete from the most recent push.
func (f *fragmentBuffer) pop() ([]byte, uint16) {
	for seq, fh := range f.cache {
		if !fragmentComplete(fh.got) {
			continue
		}
		delete(f.cache, seq)

		hdr := fh.header
		hdr.FragmentOffset = 0
		hdr.FragmentLength = hdr.Length
		headerRaw, err := hdr.Marshal()
		if err != nil {
			continue
		}
		out := append(headerRaw, fh.data...)
		return out, fh.epoch
	}
	return nil, 0
}

func fragmentComplete(got []bool) bool {
	for _, b := range got {
		if !b {
			return false
		}
	}
	return true
}
