// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package extension

// UseExtendedMasterSecret is the extended_master_secret extension, RFC 7627.
type UseExtendedMasterSecret struct {
	Supported bool
}

// TypeValue implements Extension.
func (u UseExtendedMasterSecret) TypeValue() TypeValue {
	return UseExtendedMasterSecretTypeValue
}

// Marshal encodes the extension body (always empty on the wire; presence is
// the signal).
func (u *UseExtendedMasterSecret) Marshal() ([]byte, error) {
	return []byte{}, nil
}

// Unmarshal populates the extension from wire data.
func (u *UseExtendedMasterSecret) Unmarshal([]byte) error {
	u.Supported = true
	return nil
}
