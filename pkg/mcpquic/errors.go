package mcpquic

import (
	"errors"
	"fmt"

	"github.com/quic-go/quic-go"
)

// Stream error codes, sent with CancelRead/CancelWrite.
const (
	StreamErrorNoError           quic.StreamErrorCode = 0x00
	StreamErrorProtocolConfusion quic.StreamErrorCode = 0x02
	StreamErrorMessageTooLarge   quic.StreamErrorCode = 0x03
)

// Connection error codes, sent with CloseWithError.
const (
	ConnErrorNoError           quic.ApplicationErrorCode = 0x00
	ConnErrorUnsupportedALPN   quic.ApplicationErrorCode = 0x01
	ConnErrorProtocolViolation quic.ApplicationErrorCode = 0x03
	ConnErrorMessageTooLarge   quic.ApplicationErrorCode = 0x04
)

var (
	ErrInvalidMagicBytes = errors.New("invalid magic bytes: expected " + MagicBytesMCP)
	ErrProtocolVersion   = errors.New("unsupported protocol version")
	ErrUnsupportedALPN   = errors.New("ALPN negotiation failed: " + ALPNProtocolMCP + " not selected")
	ErrMessageTooLarge   = errors.New("message exceeds maximum size")
	ErrNotConnected      = errors.New("client not connected")
)

// ConnectionError is a failure tied to one QUIC connection and the
// application code it was closed with.
type ConnectionError struct {
	RemoteAddr string
	Code       quic.ApplicationErrorCode
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s error code 0x%02x: %v", e.RemoteAddr, e.Code, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// closeWith closes conn with code and returns the matching ConnectionError.
func closeWith(conn *quic.Conn, code quic.ApplicationErrorCode, err error) *ConnectionError {
	conn.CloseWithError(code, err.Error())
	return &ConnectionError{RemoteAddr: conn.RemoteAddr().String(), Code: code, Err: err}
}
