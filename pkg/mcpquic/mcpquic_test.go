package mcpquic

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/companygraph/pkg/kit"
)

func TestMagicBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := SendMagicBytes(&buf); err != nil {
		t.Fatalf("SendMagicBytes: %v", err)
	}
	if buf.String() != MagicBytesMCP {
		t.Fatalf("wrote %q", buf.String())
	}
	if err := ValidateMagicBytes(&buf); err != nil {
		t.Fatalf("ValidateMagicBytes: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"wrong", "MCP1", ErrInvalidMagicBytes},
		{"version", "CGM2", ErrProtocolVersion},
		{"short", "CG", nil},
	}
	for _, tt := range tests {
		err := ValidateMagicBytes(strings.NewReader(tt.input))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestSelfSignedTLSConfig(t *testing.T) {
	cfg, err := SelfSignedTLSConfig()
	if err != nil {
		t.Fatalf("SelfSignedTLSConfig: %v", err)
	}
	if len(cfg.NextProtos) != 1 || cfg.NextProtos[0] != ALPNProtocolMCP {
		t.Errorf("NextProtos = %v", cfg.NextProtos)
	}
	leaf := cfg.Certificates[0].Leaf
	if leaf == nil || leaf.Subject.Organization[0] != CertOrganization {
		t.Errorf("leaf = %+v", leaf)
	}
	if err := leaf.VerifyHostname("localhost"); err != nil {
		t.Errorf("VerifyHostname: %v", err)
	}
}

func TestConnectionError_Unwrap(t *testing.T) {
	err := &ConnectionError{RemoteAddr: "127.0.0.1:9", Code: ConnErrorMessageTooLarge, Err: ErrMessageTooLarge}
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Error("ConnectionError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "0x04") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestClient_NotConnected(t *testing.T) {
	c := NewClient("127.0.0.1:1", nil, "")
	if _, err := c.ListTools(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ListTools err = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on unconnected client: %v", err)
	}
}

func TestListener_RoundTrip(t *testing.T) {
	srv := server.NewMCPServer("test", "0.0.1", server.WithToolCapabilities(false))
	srv.AddTool(mcp.NewTool("transport"), func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(kit.GetTransport(ctx)), nil
	})

	tlsCfg, err := SelfSignedTLSConfig()
	if err != nil {
		t.Fatal(err)
	}
	l, err := NewListener("127.0.0.1:0", tlsCfg, srv, nil)
	if err != nil {
		t.Fatalf("NewListener: %v", err)
	}
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go l.Serve(ctx)

	c := NewClient(l.Addr().String(), nil, "test")
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	tools, err := c.ListTools(ctx)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools.Tools) != 1 || tools.Tools[0].Name != "transport" {
		t.Errorf("tools = %+v", tools.Tools)
	}

	got, err := c.CallText(ctx, "transport", nil)
	if err != nil {
		t.Fatalf("CallText: %v", err)
	}
	if got != Transport {
		t.Errorf("transport = %q, want %q", got, Transport)
	}
	if n := l.Sessions(); n != 1 {
		t.Errorf("Sessions = %d while connected, want 1", n)
	}
}
