package mcpquic

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/quic-go/quic-go"
)

// ClientName is reported to the server during initialization.
const ClientName = "companygraph-call"

// Client connects to a companygraph MCP server over QUIC.
type Client struct {
	addr      string
	tlsCfg    *tls.Config
	version   string
	conn      *quic.Conn
	stream    *quic.Stream
	mcpClient *client.Client
}

// NewClient returns an unconnected client. A nil tlsCfg skips certificate
// verification, which suits the self-signed development certificate.
func NewClient(addr string, tlsCfg *tls.Config, version string) *Client {
	if tlsCfg == nil {
		tlsCfg = ClientTLSConfig(true)
	}
	if version == "" {
		version = "dev"
	}
	return &Client{addr: addr, tlsCfg: tlsCfg, version: version}
}

// Connect dials addr, opens the session stream and performs the MCP
// initialize handshake.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := quic.DialAddr(ctx, c.addr, c.tlsCfg, ProductionQUICConfig())
	if err != nil {
		return fmt.Errorf("quic dial %s: %w", c.addr, err)
	}

	if alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn != ALPNProtocolMCP {
		return closeWith(conn, ConnErrorUnsupportedALPN, fmt.Errorf("%w: got %q", ErrUnsupportedALPN, alpn))
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return closeWith(conn, ConnErrorProtocolViolation, fmt.Errorf("open stream: %w", err))
	}
	if err := SendMagicBytes(stream); err != nil {
		stream.Close()
		return closeWith(conn, ConnErrorProtocolViolation, err)
	}
	c.conn, c.stream = conn, stream

	mcpClient := client.NewClient(transport.NewIO(stream, &writeCloser{stream}, nopReadCloser{}))
	if err := mcpClient.Start(ctx); err != nil {
		c.closeTransport()
		return fmt.Errorf("mcp start: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: ClientName, Version: c.version}

	initCtx, cancel := context.WithTimeout(ctx, DefaultHandshakeTimeout)
	defer cancel()
	if _, err := mcpClient.Initialize(initCtx, initReq); err != nil {
		c.closeTransport()
		return fmt.Errorf("mcp initialize: %w", err)
	}

	c.mcpClient = mcpClient
	return nil
}

func (c *Client) ListTools(ctx context.Context) (*mcp.ListToolsResult, error) {
	if c.mcpClient == nil {
		return nil, ErrNotConnected
	}
	return c.mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
}

func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	if c.mcpClient == nil {
		return nil, ErrNotConnected
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return c.mcpClient.CallTool(ctx, req)
}

// CallText calls a tool and returns its text content. A tool-level error
// is returned as an error.
func (c *Client) CallText(ctx context.Context, name string, args map[string]any) (string, error) {
	res, err := c.CallTool(ctx, name, args)
	if err != nil {
		return "", err
	}
	var text string
	for _, content := range res.Content {
		if tc, ok := mcp.AsTextContent(content); ok {
			text += tc.Text
		}
	}
	if res.IsError {
		return "", fmt.Errorf("%s: %s", name, text)
	}
	return text, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.mcpClient == nil {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.mcpClient.Ping(ctx)
}

func (c *Client) Close() error {
	if c.mcpClient != nil {
		c.mcpClient.Close()
	}
	return c.closeTransport()
}

func (c *Client) closeTransport() error {
	if c.stream != nil {
		c.stream.Close()
	}
	if c.conn != nil {
		return c.conn.CloseWithError(ConnErrorNoError, "client closing")
	}
	return nil
}

type writeCloser struct{ stream *quic.Stream }

func (w *writeCloser) Write(p []byte) (int, error) { return w.stream.Write(p) }
func (w *writeCloser) Close() error                { return w.stream.Close() }

type nopReadCloser struct{}

func (nopReadCloser) Read([]byte) (int, error) { return 0, io.EOF }
func (nopReadCloser) Close() error             { return nil }
