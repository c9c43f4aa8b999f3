// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"hash"

	"github.com/fieldlink/dtls/pkg/crypto/prf"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

type cbcSuite struct {
	id       ID
	name     string
	certType handshake.ClientCertificateType
	kx       KeyExchangeAlgorithm
	ecc      bool
	keyLen   int
	hashFunc func() hash.Hash
	cbc      *CBC
}

func (s *cbcSuite) String() string                                  { return s.name }
func (s *cbcSuite) ID() ID                                           { return s.id }
func (s *cbcSuite) CertificateType() handshake.ClientCertificateType { return s.certType }
func (s *cbcSuite) HashFunc() func() hash.Hash                       { return s.hashFunc }
func (s *cbcSuite) KeyExchangeAlgorithm() KeyExchangeAlgorithm       { return s.kx }
func (s *cbcSuite) ECC() bool                                        { return s.ecc }
func (s *cbcSuite) IsInitialized() bool                              { return s.cbc != nil }

func (s *cbcSuite) Init(masterSecret, clientRandom, serverRandom []byte, isClient bool) error {
	macLen := s.hashFunc().Size()
	keys, err := prf.GenerateEncryptionKeys(masterSecret, clientRandom, serverRandom, macLen, s.keyLen, 0, sha256.New)
	if err != nil {
		return err
	}

	var localKey, localMAC, remoteKey, remoteMAC []byte
	if isClient {
		localKey, localMAC = keys.ClientWriteKey, keys.ClientMACKey
		remoteKey, remoteMAC = keys.ServerWriteKey, keys.ServerMACKey
	} else {
		localKey, localMAC = keys.ServerWriteKey, keys.ServerMACKey
		remoteKey, remoteMAC = keys.ClientWriteKey, keys.ClientMACKey
	}

	s.cbc = NewCBC(localKey, keys.ClientWriteIV, localMAC, remoteKey, keys.ServerWriteIV, remoteMAC, s.hashFunc)
	return nil
}

func (s *cbcSuite) Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error) {
	if !s.IsInitialized() {
		return nil, errNotInitialized
	}
	return s.cbc.Encrypt(pkt, raw)
}

func (s *cbcSuite) Decrypt(h recordlayer.Header, raw []byte) ([]byte, error) {
	if !s.IsInitialized() {
		return nil, errNotInitialized
	}
	return s.cbc.Decrypt(h, raw)
}

func newCipherSuiteECDHEECDSAWithAES256CBCSHA() CipherSuite {
	return &cbcSuite{
		id: TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA, name: "TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA",
		certType: handshake.ClientCertificateTypeECDSASign, kx: KeyExchangeAlgorithmEcdhe, ecc: true,
		keyLen: 32, hashFunc: sha1.New,
	}
}

func newCipherSuiteECDHERSAWithAES256CBCSHA() CipherSuite {
	return &cbcSuite{
		id: TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA, name: "TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA",
		certType: handshake.ClientCertificateTypeRSASign, kx: KeyExchangeAlgorithmEcdhe, ecc: true,
		keyLen: 32, hashFunc: sha1.New,
	}
}

func newCipherSuitePSKWithAES128CBCSHA256() CipherSuite {
	return &cbcSuite{
		id: TLS_PSK_WITH_AES_128_CBC_SHA256, name: "TLS_PSK_WITH_AES_128_CBC_SHA256",
		kx: KeyExchangeAlgorithmPsk, keyLen: 16, hashFunc: sha256.New,
	}
}

func newCipherSuiteECDHEPSKWithAES128CBCSHA256() CipherSuite {
	return &cbcSuite{
		id: TLS_ECDHE_PSK_WITH_AES_128_CBC_SHA256, name: "TLS_ECDHE_PSK_WITH_AES_128_CBC_SHA256",
		kx: KeyExchangeAlgorithmEcdhe | KeyExchangeAlgorithmPsk, ecc: true, keyLen: 16, hashFunc: sha256.New,
	}
}
