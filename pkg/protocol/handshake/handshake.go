// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package handshake implements the DTLS handshake message framing (spec.md
// Section 4.4/Section 6) shared by the client and server handshake drivers:
// the 12-byte fragment header and the per-type handshake message bodies.
package handshake

import "github.com/fieldlink/dtls/pkg/protocol"

// Message is a single (reassembled) handshake message body.
type Message interface {
	Type() Type
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// Handshake is a complete handshake record payload: the fragment header
// plus the reassembled message it describes. A Handshake is always
// marshaled/unmarshaled as a whole message from the caller's perspective;
// per-datagram fragmentation is applied one layer up, in the connection's
// fragmentHandshake (spec.md Section 4.4, "Handshake record framing").
type Handshake struct {
	Header  Header
	Message Message
}

// ContentType implements protocol.Content.
func (h Handshake) ContentType() protocol.ContentType {
	return protocol.ContentTypeHandshake
}

// Marshal encodes the handshake header followed by the whole message body.
func (h *Handshake) Marshal() ([]byte, error) {
	if h.Message == nil {
		return nil, errHandshakeMessageUnset
	}
	body, err := h.Message.Marshal()
	if err != nil {
		return nil, err
	}

	h.Header.Type = h.Message.Type()
	h.Header.Length = uint32(len(body))
	h.Header.FragmentOffset = 0
	h.Header.FragmentLength = uint32(len(body))

	headerRaw, err := h.Header.Marshal()
	if err != nil {
		return nil, err
	}
	return append(headerRaw, body...), nil
}

// Unmarshal decodes a whole (already-reassembled) handshake message: the
// 12-byte header followed by exactly Header.Length bytes of message body.
func (h *Handshake) Unmarshal(data []byte) error {
	if err := h.Header.Unmarshal(data); err != nil {
		return err
	}
	if len(data) < HeaderLength+int(h.Header.Length) {
		return errBufferTooSmall
	}
	body := data[HeaderLength : HeaderLength+int(h.Header.Length)]

	msg, err := newMessage(h.Header.Type)
	if err != nil {
		return err
	}
	if err := msg.Unmarshal(body); err != nil {
		return err
	}
	h.Message = msg
	return nil
}

func newMessage(t Type) (Message, error) {
	switch t {
	case TypeHelloVerifyRequest:
		return &MessageHelloVerifyRequest{}, nil
	case TypeClientHello:
		return &MessageClientHello{}, nil
	case TypeServerHello:
		return &MessageServerHello{}, nil
	case TypeCertificate:
		return &MessageCertificate{}, nil
	case TypeServerKeyExchange:
		return &MessageServerKeyExchange{}, nil
	case TypeCertificateRequest:
		return &MessageCertificateRequest{}, nil
	case TypeServerHelloDone:
		return &MessageServerHelloDone{}, nil
	case TypeCertificateVerify:
		return &MessageCertificateVerify{}, nil
	case TypeClientKeyExchange:
		return &MessageClientKeyExchange{}, nil
	case TypeFinished:
		return &MessageFinished{}, nil
	default:
		return nil, errInvalidHandshakeType
	}
}
