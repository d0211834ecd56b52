package chassis

import (
	"crypto/tls"
	"fmt"

	"github.com/hazyhaar/companygraph/pkg/mcpquic"
)

// ALPNHTTP3 is the protocol negotiated for HTTP/3 on the QUIC socket.
const ALPNHTTP3 = "h3"

// quicProtos are the ALPN values demuxed on the UDP listener.
var quicProtos = []string{ALPNHTTP3, mcpquic.ALPNProtocolMCP}

// DevelopmentTLSConfig generates a self-signed TLS config advertising both
// HTTP/3 and MCP over QUIC. Not for production.
func DevelopmentTLSConfig() (*tls.Config, error) {
	cert, err := mcpquic.SelfSignedCert()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS13,
		Certificates: []tls.Certificate{cert},
		NextProtos:   append([]string(nil), quicProtos...),
	}, nil
}

// ProductionTLSConfig loads cert/key from files with the same ALPN list.
func ProductionTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load key pair: %w", err)
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS13,
		Certificates: []tls.Certificate{cert},
		NextProtos:   append([]string(nil), quicProtos...),
	}, nil
}
