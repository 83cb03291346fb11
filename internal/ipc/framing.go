package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxMessageSize bounds a single control-plane message, guarding against a
// malformed or hostile length prefix forcing an unbounded allocation.
const MaxMessageSize = 1 << 20 // 1 MiB

// writeFramed encodes v as JSON and writes it as
// [4-byte little-endian length][payload].
func writeFramed(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if len(payload) > MaxMessageSize {
		return fmt.Errorf("message of %d bytes exceeds max %d", len(payload), MaxMessageSize)
	}

	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// readFramed reads one [4-byte little-endian length][payload] message and
// decodes it into v.
func readFramed(r io.Reader, v any) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return fmt.Errorf("read length prefix: %w", err)
	}

	size := binary.LittleEndian.Uint32(header[:])
	if size > MaxMessageSize {
		return fmt.Errorf("message of %d bytes exceeds max %d", size, MaxMessageSize)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
