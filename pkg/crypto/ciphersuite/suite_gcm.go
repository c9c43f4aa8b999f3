// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/sha256"
	"hash"

	"github.com/fieldlink/dtls/pkg/crypto/prf"
	"github.com/fieldlink/dtls/pkg/protocol/handshake"
	"github.com/fieldlink/dtls/pkg/protocol/recordlayer"
)

type gcmSuite struct {
	id       ID
	name     string
	certType handshake.ClientCertificateType
	kx       KeyExchangeAlgorithm
	ecc      bool
	gcm      *GCM
}

func (s *gcmSuite) String() string                                     { return s.name }
func (s *gcmSuite) ID() ID                                              { return s.id }
func (s *gcmSuite) CertificateType() handshake.ClientCertificateType    { return s.certType }
func (s *gcmSuite) HashFunc() func() hash.Hash                          { return sha256.New }
func (s *gcmSuite) KeyExchangeAlgorithm() KeyExchangeAlgorithm          { return s.kx }
func (s *gcmSuite) ECC() bool                                           { return s.ecc }
func (s *gcmSuite) IsInitialized() bool                                 { return s.gcm != nil }

func (s *gcmSuite) Init(masterSecret, clientRandom, serverRandom []byte, isClient bool) error {
	const keyLen, ivLen = 16, 4
	keys, err := prf.GenerateEncryptionKeys(masterSecret, clientRandom, serverRandom, 0, keyLen, ivLen, s.HashFunc())
	if err != nil {
		return err
	}

	var localKey, localWriteIV, remoteKey, remoteWriteIV []byte
	if isClient {
		localKey, localWriteIV = keys.ClientWriteKey, keys.ClientWriteIV
		remoteKey, remoteWriteIV = keys.ServerWriteKey, keys.ServerWriteIV
	} else {
		localKey, localWriteIV = keys.ServerWriteKey, keys.ServerWriteIV
		remoteKey, remoteWriteIV = keys.ClientWriteKey, keys.ClientWriteIV
	}

	gcm, err := NewGCM(localKey, localWriteIV, remoteKey, remoteWriteIV)
	if err != nil {
		return err
	}
	s.gcm = gcm
	return nil
}

func (s *gcmSuite) Encrypt(pkt *recordlayer.RecordLayer, raw []byte) ([]byte, error) {
	if !s.IsInitialized() {
		return nil, errNotInitialized
	}
	return s.gcm.Encrypt(pkt, raw)
}

func (s *gcmSuite) Decrypt(h recordlayer.Header, raw []byte) ([]byte, error) {
	if !s.IsInitialized() {
		return nil, errNotInitialized
	}
	return s.gcm.Decrypt(h, raw)
}

func newCipherSuiteECDHEECDSAWithAES128GCMSHA256() CipherSuite {
	return &gcmSuite{
		id: TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256, name: "TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256",
		certType: handshake.ClientCertificateTypeECDSASign, kx: KeyExchangeAlgorithmEcdhe, ecc: true,
	}
}

func newCipherSuiteECDHERSAWithAES128GCMSHA256() CipherSuite {
	return &gcmSuite{
		id: TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256, name: "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256",
		certType: handshake.ClientCertificateTypeRSASign, kx: KeyExchangeAlgorithmEcdhe, ecc: true,
	}
}

func newCipherSuitePSKWithAES128GCMSHA256() CipherSuite {
	return &gcmSuite{
		id: TLS_PSK_WITH_AES_128_GCM_SHA256, name: "TLS_PSK_WITH_AES_128_GCM_SHA256",
		kx: KeyExchangeAlgorithmPsk,
	}
}
