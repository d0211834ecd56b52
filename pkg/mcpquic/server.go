// CLAUDE:SUMMARY MCP JSON-RPC over a single QUIC stream: per-connection handler (used by the chassis) and a standalone listener.
package mcpquic

import (
	"bufio"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"

	"github.com/hazyhaar/companygraph/pkg/kit"
)

// Transport is the kit transport tag set on tool contexts served here.
const Transport = "mcp_quic"

// Handler serves MCP sessions on accepted QUIC connections without owning a
// listener, so the chassis can demux by ALPN on a shared UDP socket.
type Handler struct {
	mcpServer *server.MCPServer
	logger    *slog.Logger
	sessions  atomic.Int64
}

// NewHandler creates an MCP connection handler.
func NewHandler(mcpSrv *server.MCPServer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mcpServer: mcpSrv, logger: logger}
}

// Sessions returns the number of sessions currently open.
func (h *Handler) Sessions() int64 { return h.sessions.Load() }

func sessionID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return "cg_" + hex.EncodeToString(b)
}

// ServeConn runs one MCP session on conn: the client opens a stream, sends
// the magic bytes, then exchanges newline-delimited JSON-RPC messages.
func (h *Handler) ServeConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		h.logger.Warn("mcp: accept stream", "error", closeWith(conn, ConnErrorProtocolViolation, err))
		return
	}

	if err := ValidateMagicBytes(stream); err != nil {
		stream.CancelWrite(StreamErrorProtocolConfusion)
		stream.CancelRead(StreamErrorProtocolConfusion)
		h.logger.Warn("mcp: rejected connection", "error", closeWith(conn, ConnErrorProtocolViolation, err))
		return
	}

	id := sessionID()
	sess := newSession(id, stream)
	if err := h.mcpServer.RegisterSession(ctx, sess); err != nil {
		h.logger.Error("mcp: register session", "session", id, "error", err)
		stream.Close()
		return
	}
	defer h.mcpServer.UnregisterSession(ctx, id)

	h.sessions.Add(1)
	defer h.sessions.Add(-1)
	h.logger.Info("mcp session started", "session", id, "remote", remote)

	ctx, cancel := context.WithCancel(kit.WithTransport(ctx, Transport))
	defer cancel()
	ctx = h.mcpServer.WithContext(ctx, sess)
	go sess.writeNotifications(ctx)

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		response := h.mcpServer.HandleMessage(ctx, json.RawMessage(line))
		if response == nil {
			continue
		}
		if err := sess.send(response); err != nil {
			h.logger.Warn("mcp: write", "session", id, "error", err)
			break
		}
	}

	switch err := scanner.Err(); {
	case errors.Is(err, bufio.ErrTooLong):
		stream.CancelRead(StreamErrorMessageTooLarge)
		h.logger.Warn("mcp: session aborted", "session", id,
			"error", closeWith(conn, ConnErrorMessageTooLarge, ErrMessageTooLarge))
	case err != nil && ctx.Err() == nil:
		h.logger.Warn("mcp: read", "session", id, "error", err)
	}
	h.logger.Info("mcp session ended", "session", id, "remote", remote)
}

// Listener accepts MCP-over-QUIC connections on its own UDP socket, for
// deployments that serve plain HTTP without the chassis.
type Listener struct {
	listener *quic.Listener
	handler  *Handler
	logger   *slog.Logger
}

func NewListener(addr string, tlsCfg *tls.Config, mcpSrv *server.MCPServer, logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l, err := quic.ListenAddr(addr, tlsCfg, ProductionQUICConfig())
	if err != nil {
		return nil, fmt.Errorf("quic listen %s: %w", addr, err)
	}
	logger.Info("MCP QUIC listener ready", "addr", l.Addr().String())
	return &Listener{
		listener: l,
		handler:  NewHandler(mcpSrv, logger),
		logger:   logger,
	}, nil
}

// Addr returns the bound UDP address.
func (l *Listener) Addr() net.Addr { return l.listener.Addr() }

// Serve accepts connections until ctx is cancelled.
func (l *Listener) Serve(ctx context.Context) error {
	for {
		conn, err := l.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, quic.ErrServerClosed) {
				return nil
			}
			l.logger.Error("QUIC accept error", "error", err)
			continue
		}

		if alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn != ALPNProtocolMCP {
			closeWith(conn, ConnErrorUnsupportedALPN, fmt.Errorf("%w: got %q", ErrUnsupportedALPN, alpn))
			continue
		}
		go l.handler.ServeConn(ctx, conn)
	}
}

// Sessions returns the number of MCP sessions currently open.
func (l *Listener) Sessions() int64 { return l.handler.Sessions() }

func (l *Listener) Close() error {
	l.logger.Info("MCP QUIC listener closing", "sessions", l.handler.Sessions())
	return l.listener.Close()
}

// session implements server.ClientSession for a single QUIC stream. Responses
// and notifications share the stream, so writes are serialized.
type session struct {
	id            string
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool
	writer        io.Writer
	mu            sync.Mutex
}

func newSession(id string, writer io.Writer) *session {
	return &session{
		id:            id,
		notifications: make(chan mcp.JSONRPCNotification, 100),
		writer:        writer,
	}
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

func (s *session) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.writer.Write(data)
	return err
}

func (s *session) writeNotifications(ctx context.Context) {
	for {
		select {
		case notif := <-s.notifications:
			_ = s.send(notif)
		case <-ctx.Done():
			return
		}
	}
}
