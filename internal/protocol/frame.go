// Package protocol implements the ESPHome native API plaintext framing and
// the subset of api.proto messages spoken by a voice satellite.
package protocol

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	preamble = 0x00

	// MaxPayloadSize bounds a single frame. Audio chunks are a few KiB.
	MaxPayloadSize = 1 << 20
)

var (
	ErrBadPreamble   = errors.New("protocol: bad frame preamble")
	ErrFrameTooLarge = errors.New("protocol: frame too large")
	ErrUnknownType   = errors.New("protocol: unknown message type")
)

// Marshal encodes msg as a complete frame:
// [0x00][varint payload length][varint type][payload].
func Marshal(msg Message) []byte {
	payload := msg.appendTo(nil)
	b := make([]byte, 0, 1+2*binary.MaxVarintLen32+len(payload))
	b = append(b, preamble)
	b = protowire.AppendVarint(b, uint64(len(payload)))
	b = protowire.AppendVarint(b, uint64(msg.Type()))
	return append(b, payload...)
}

// WriteFrame writes msg to w as a single frame.
func WriteFrame(w io.Writer, msg Message) error {
	_, err := w.Write(Marshal(msg))
	return err
}

// ReadFrame reads and decodes the next frame. io.EOF is returned unwrapped
// when the stream ends cleanly between frames.
func ReadFrame(r *bufio.Reader) (Message, error) {
	p, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if p != preamble {
		return nil, fmt.Errorf("%w: 0x%02x", ErrBadPreamble, p)
	}

	size, err := readUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("read frame length: %w", err)
	}
	if size > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	typ, err := readUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("read frame type: %w", err)
	}
	if typ > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, typ)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read frame payload: %w", err)
	}

	return Decode(MessageType(typ), payload)
}

// Decode decodes a payload of the given type.
func Decode(t MessageType, payload []byte) (Message, error) {
	decode, ok := decoders[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint32(t))
	}
	msg, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return msg, nil
}

func readUvarint(r io.ByteReader) (uint64, error) {
	v, err := binary.ReadUvarint(r)
	if errors.Is(err, io.EOF) {
		// a frame was started, so running out of bytes is never clean
		return 0, io.ErrUnexpectedEOF
	}
	return v, err
}
