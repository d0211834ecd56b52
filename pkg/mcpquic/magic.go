package mcpquic

import (
	"fmt"
	"io"
)

// The preface is MagicBytesMCP: a three-byte tag followed by one
// protocol version digit. A peer with the right tag but another version
// gets ErrProtocolVersion.
const magicTagLen = len(MagicBytesMCP) - 1

// ValidateMagicBytes reads the stream preface from r and checks it.
func ValidateMagicBytes(r io.Reader) error {
	got := make([]byte, len(MagicBytesMCP))
	if _, err := io.ReadFull(r, got); err != nil {
		return fmt.Errorf("read magic bytes: %w", err)
	}
	switch {
	case string(got) == MagicBytesMCP:
		return nil
	case string(got[:magicTagLen]) == MagicBytesMCP[:magicTagLen]:
		return fmt.Errorf("%w: peer speaks %q, want %q", ErrProtocolVersion, got[magicTagLen:], MagicBytesMCP[magicTagLen:])
	}
	return fmt.Errorf("%w: got %q", ErrInvalidMagicBytes, got)
}

// SendMagicBytes writes the stream preface. Clients send it first on the
// stream they open.
func SendMagicBytes(w io.Writer) error {
	if _, err := io.WriteString(w, MagicBytesMCP); err != nil {
		return fmt.Errorf("write magic bytes: %w", err)
	}
	return nil
}
