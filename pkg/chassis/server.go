// Package chassis runs the companygraph API on one port with two
// transports:
//   - TCP: HTTP/1.1 and HTTP/2 over TLS, for curl and browsers
//   - UDP: QUIC, demuxed by ALPN between HTTP/3 ("h3") and MCP JSON-RPC
//     ("companygraph-mcp-v1")
//
// HTTP responses advertise HTTP/3 through Alt-Svc. Without cert files a
// self-signed development certificate is generated.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/companygraph/pkg/mcpquic"
)

// Server is the dual-transport chassis.
type Server struct {
	addr       string
	logger     *slog.Logger
	tlsCfg     *tls.Config
	handler    http.Handler
	mcpHandler *mcpquic.Handler
	h3Server   *http3.Server
	tcpServer  *http.Server
	quicLn     *quic.Listener
	mu         sync.Mutex
}

// Config holds configuration for the chassis server.
type Config struct {
	Addr      string      // TCP and UDP listen address (e.g. ":8443")
	TLS       *tls.Config // nil = load CertFile/KeyFile or generate
	CertFile  string
	KeyFile   string
	Handler   http.Handler      // API router
	MCPServer *server.MCPServer // nil = MCP disabled
	Logger    *slog.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Handler == nil {
		return nil, errors.New("chassis: nil handler")
	}

	tlsCfg := cfg.TLS
	if tlsCfg == nil {
		var err error
		if cfg.CertFile != "" && cfg.KeyFile != "" {
			if tlsCfg, err = ProductionTLSConfig(cfg.CertFile, cfg.KeyFile); err != nil {
				return nil, fmt.Errorf("load TLS cert: %w", err)
			}
			cfg.Logger.Info("TLS: certificate loaded", "cert", cfg.CertFile)
		} else {
			if tlsCfg, err = DevelopmentTLSConfig(); err != nil {
				return nil, fmt.Errorf("generate dev TLS: %w", err)
			}
			cfg.Logger.Warn("TLS: self-signed development certificate")
		}
	}

	s := &Server{
		addr:    cfg.Addr,
		logger:  cfg.Logger,
		tlsCfg:  tlsCfg,
		handler: securityHeaders(altSvc(cfg.Addr, cfg.Handler)),
	}
	if cfg.MCPServer != nil {
		s.mcpHandler = mcpquic.NewHandler(cfg.MCPServer, cfg.Logger)
	}
	return s, nil
}

// securityHeaders adds standard security headers. The API serves JSON only.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// altSvc advertises HTTP/3 on the same port.
func altSvc(addr string, next http.Handler) http.Handler {
	_, port, _ := net.SplitHostPort(addr)
	if port == "" {
		port = "8443"
	}
	value := fmt.Sprintf(`h3=":%s"; ma=86400`, port)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", value)
		next.ServeHTTP(w, r)
	})
}

// Start serves until ctx is cancelled or a listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	tcpTLS := s.tlsCfg.Clone()
	tcpTLS.NextProtos = []string{"h2", "http/1.1"}
	s.tcpServer = &http.Server{Addr: s.addr, Handler: s.handler, TLSConfig: tcpTLS}

	ln, err := quic.ListenAddr(s.addr, s.tlsCfg, mcpquic.ProductionQUICConfig())
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("QUIC listen: %w", err)
	}
	s.quicLn = ln
	s.h3Server = &http3.Server{Handler: s.handler}
	tcpSrv, h3 := s.tcpServer, s.h3Server
	s.mu.Unlock()

	tcpLn, err := tls.Listen("tcp", s.addr, tcpTLS)
	if err != nil {
		ln.Close()
		return fmt.Errorf("TCP listen: %w", err)
	}

	s.logger.Info("chassis started", "addr", s.addr, "mcp", s.mcpHandler != nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := tcpSrv.Serve(tcpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("TCP: %w", err)
		}
		return nil
	})
	g.Go(func() error { return s.acceptQUIC(gctx, ln, h3) })
	g.Go(func() error {
		<-gctx.Done()
		return s.Stop(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// acceptQUIC demuxes QUIC connections by negotiated ALPN.
func (s *Server) acceptQUIC(ctx context.Context, ln *quic.Listener, h3 *http3.Server) error {
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, quic.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("QUIC accept: %w", err)
		}

		switch alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn {
		case ALPNHTTP3:
			go func() {
				if err := h3.ServeQUICConn(conn); err != nil {
					s.logger.Debug("HTTP/3 conn done", "remote", conn.RemoteAddr(), "error", err)
				}
			}()
		case mcpquic.ALPNProtocolMCP:
			if s.mcpHandler == nil {
				conn.CloseWithError(mcpquic.ConnErrorUnsupportedALPN, "MCP not enabled")
				continue
			}
			go s.mcpHandler.ServeConn(ctx, conn)
		default:
			s.logger.Warn("unknown ALPN, closing", "alpn", alpn, "remote", conn.RemoteAddr())
			conn.CloseWithError(mcpquic.ConnErrorUnsupportedALPN, "unsupported ALPN: "+alpn)
		}
	}
}

// Stop shuts down both listeners. It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.tcpServer != nil {
		errs = append(errs, s.tcpServer.Shutdown(ctx))
		s.tcpServer = nil
	}
	if s.h3Server != nil {
		errs = append(errs, s.h3Server.Close())
		s.h3Server = nil
	}
	if s.quicLn != nil {
		errs = append(errs, s.quicLn.Close())
		s.quicLn = nil
	}
	attrs := []any{}
	if s.mcpHandler != nil {
		attrs = append(attrs, "mcp_sessions", s.mcpHandler.Sessions())
	}
	s.logger.Info("chassis stopped", attrs...)
	return errors.Join(errs...)
}
