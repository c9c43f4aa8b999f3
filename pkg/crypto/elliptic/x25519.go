// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package elliptic

import "golang.org/x/crypto/curve25519"

type curveX25519 struct{}

func (c *curveX25519) generateKeypair() (*Keypair, error) {
	privateKey := make([]byte, curve25519.ScalarSize)
	if _, err := rng.Read(privateKey); err != nil {
		return nil, err
	}

	publicKey, err := curve25519.X25519(privateKey, curve25519.Basepoint)
	if err != nil {
		return nil, err
	}

	return &Keypair{PublicKey: publicKey, PrivateKey: privateKey}, nil
}

func (c *curveX25519) x(privateKey, publicKey []byte) ([]byte, error) {
	return curve25519.X25519(privateKey, publicKey)
}
