// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"hash"

	"github.com/fieldlink/dtls/pkg/protocol"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

// CBC provides TLS 1.0-1.2 CBC-mode Encrypt/Decrypt, kept for the
// certificates-but-no-AEAD fallback suites this stack still advertises
// for interoperability with older peers (spec.md Section 4.6).
type CBC struct {
	localKey, remoteKey       []byte
	localMAC, remoteMAC       []byte
	localWriteIV, remoteWriteIV []byte
	h                         func() hash.Hash
}

// NewCBC creates a DTLS CBC cipher.
func NewCBC(localKey, localWriteIV, localMAC, remoteKey, remoteWriteIV, remoteMAC []byte, h func() hash.Hash) *CBC {
	return &CBC{
		localKey: localKey, localWriteIV: localWriteIV, localMAC: localMAC,
		remoteKey: remoteKey, remoteWriteIV: remoteWriteIV, remoteMAC: remoteMAC,
		h: h,
	}
}

func (c *CBC) macHeader(h *recordlayer.Header, payloadLen int) []byte {
	out := make([]byte, 0, 13)
	var epochSeq [8]byte
	epochSeq[0] = byte(h.Epoch >> 8)
	epochSeq[1] = byte(h.Epoch)
	putUint48(epochSeq[2:8], h.SequenceNumber)
	out = append(out, epochSeq[:]...)
	out = append(out, byte(h.ContentType), h.Version.Major, h.Version.Minor)
	var length [2]byte
	length[0] = byte(payloadLen >> 8)
	length[1] = byte(payloadLen)
	return append(out, length[:]...)
}

// Encrypt encrypts a DTLS RecordLayer message in CBC mode: MAC-then-pad-
// then-encrypt, with an explicit per-record IV prepended (spec.md Section
// 4.6, matching the GCM path's explicit-nonce convention).
func (c *CBC) Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error) {
	payload := raw[pkt.Header.Size():]
	rawHeader := raw[:pkt.Header.Size()]

	block, err := aes.NewCipher(c.localKey)
	if err != nil {
		return nil, err
	}
	blockSize := block.BlockSize()

	h := hmac.New(c.h, c.localMAC)
	h.Write(c.macHeader(&pkt.Header, len(payload))) //nolint:errcheck
	h.Write(payload)                                //nolint:errcheck
	mac := h.Sum(nil)

	plaintext := append(append([]byte{}, payload...), mac...)
	padLen := blockSize - (len(plaintext)+1)%blockSize
	plaintext = append(plaintext, make([]byte, padLen+1)...)
	for i := len(plaintext) - padLen - 1; i < len(plaintext); i++ {
		plaintext[i] = byte(padLen)
	}

	iv := make([]byte, blockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	out := make([]byte, len(rawHeader)+len(iv)+len(ciphertext))
	offset := copy(out, rawHeader)
	offset += copy(out[offset:], iv)
	copy(out[offset:], ciphertext)

	recordlayerPutLength(out, pkt.Header.Size(), len(iv)+len(ciphertext))
	return out, nil
}

// Decrypt decrypts a DTLS RecordLayer message encrypted with Encrypt.
// The padding and MAC checks run to completion regardless of where they
// fail, so that the error path leaks no timing signal about which byte
// was wrong (spec.md Section 4.6 / testable property 9).
func (c *CBC) Decrypt(h recordlayer.Header, in []byte) ([]byte, error) {
	if err := h.Unmarshal(in); err != nil {
		return nil, err
	}
	if h.ContentType == protocol.ContentTypeChangeCipherSpec {
		return in, nil
	}

	block, err := aes.NewCipher(c.remoteKey)
	if err != nil {
		return nil, err
	}
	blockSize := block.BlockSize()
	body := in[h.Size():]
	if len(body) < blockSize || len(body)%blockSize != 0 {
		return nil, errDecryptPacket
	}

	iv := body[:blockSize]
	ciphertext := body[blockSize:]
	if len(ciphertext) < blockSize {
		return nil, errDecryptPacket
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	padLen := int(plaintext[len(plaintext)-1])
	macSize := hmac.New(c.h, c.remoteMAC).Size()
	if macSize+1 > len(plaintext) {
		return nil, errDecryptPacket
	}
	// An overlong padding length is recorded as a failure and treated as
	// zero padding, so the MAC below is still computed.
	lengthOK := 1
	if padLen+1+macSize > len(plaintext) {
		lengthOK = 0
		padLen = 0
	}

	paddingOK := 1
	for i := len(plaintext) - padLen - 1; i < len(plaintext); i++ {
		paddingOK &= subtle.ConstantTimeByteEq(plaintext[i], byte(padLen))
	}

	payload := plaintext[:len(plaintext)-padLen-1-macSize]
	gotMAC := plaintext[len(plaintext)-padLen-1-macSize : len(plaintext)-padLen-1]

	mh := hmac.New(c.h, c.remoteMAC)
	mh.Write(c.macHeader(&h, len(payload))) //nolint:errcheck
	mh.Write(payload)                       //nolint:errcheck
	wantMAC := mh.Sum(nil)

	macOK := subtle.ConstantTimeCompare(gotMAC, wantMAC)
	if paddingOK&macOK&lengthOK != 1 {
		return nil, fmt.Errorf("%w: mac or padding mismatch", errDecryptPacket)
	}
	return append(in[:h.Size()], payload...), nil
}

func recordlayerPutLength(out []byte, headerSize, bodyLen int) {
	out[headerSize-2] = byte(bodyLen >> 8)
	out[headerSize-1] = byte(bodyLen)
}
