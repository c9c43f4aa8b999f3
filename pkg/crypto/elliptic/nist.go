// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package elliptic

import "crypto/ecdh"

func curveP256() ecdh.Curve { return ecdh.P256() }
func curveP384() ecdh.Curve { return ecdh.P384() }

type curveNIST struct {
	curve func() ecdh.Curve
}

func (c *curveNIST) generateKeypair() (*Keypair, error) {
	priv, err := c.curve().GenerateKey(rng)
	if err != nil {
		return nil, err
	}
	return &Keypair{PublicKey: priv.PublicKey().Bytes(), PrivateKey: priv.Bytes()}, nil
}

func (c *curveNIST) x(privateKey, publicKey []byte) ([]byte, error) {
	curve := c.curve()
	priv, err := curve.NewPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	pub, err := curve.NewPublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	return priv.ECDH(pub)
}
