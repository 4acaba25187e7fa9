// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Message is one framed protocol message: command or reply text plus an
// optional binary payload.
type Message struct {
	Text    string
	Payload []byte
}

// Frame layout: 4-byte big-endian text length, 4-byte big-endian
// payload length (as transmitted), 1 codec byte, then text and payload
// bytes. Compression is transparent to everything above the framing.
const (
	frameHeaderSize = 9

	maxTextLen    = 1 << 20
	maxPayloadLen = 256 << 20

	// compressThreshold is the payload size in bytes above which
	// writers apply zstd.
	compressThreshold = 4096
)

const (
	codecRaw  byte = 0
	codecZstd byte = 1
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPayloadLen))
)

// WriteMessage frames and writes one message. Payloads above the
// compression threshold are zstd-compressed when that actually shrinks
// them.
func WriteMessage(w io.Writer, msg *Message) error {
	text := []byte(msg.Text)
	if len(text) > maxTextLen {
		return fmt.Errorf("message text %d bytes exceeds limit %d", len(text), maxTextLen)
	}
	if len(msg.Payload) > maxPayloadLen {
		return fmt.Errorf("message payload %d bytes exceeds limit %d", len(msg.Payload), maxPayloadLen)
	}

	payload := msg.Payload
	codec := codecRaw
	if len(payload) > compressThreshold {
		if compressed := zstdEncoder.EncodeAll(payload, nil); len(compressed) < len(payload) {
			payload = compressed
			codec = codecZstd
		}
	}

	var header [frameHeaderSize]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(len(text)))
	binary.BigEndian.PutUint32(header[4:8], uint32(len(payload)))
	header[8] = codec

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(text); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// ReadMessage reads one framed message. A clean close before the first
// header byte returns io.EOF.
func ReadMessage(r io.Reader) (*Message, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading frame header: %w", err)
	}

	textLen := binary.BigEndian.Uint32(header[0:4])
	payloadLen := binary.BigEndian.Uint32(header[4:8])
	codec := header[8]
	if textLen > maxTextLen {
		return nil, fmt.Errorf("frame text %d bytes exceeds limit %d", textLen, maxTextLen)
	}
	if payloadLen > maxPayloadLen {
		return nil, fmt.Errorf("frame payload %d bytes exceeds limit %d", payloadLen, maxPayloadLen)
	}

	text := make([]byte, textLen)
	if _, err := io.ReadFull(r, text); err != nil {
		return nil, fmt.Errorf("reading frame text: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("reading frame payload: %w", err)
		}
		if codec == codecZstd {
			decompressed, err := zstdDecoder.DecodeAll(payload, nil)
			if err != nil {
				return nil, fmt.Errorf("decompressing frame payload: %w", err)
			}
			payload = decompressed
		}
	}
	return &Message{Text: string(text), Payload: payload}, nil
}
