package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/companygraph/pkg/api"
	"github.com/hazyhaar/companygraph/pkg/chassis"
	"github.com/hazyhaar/companygraph/pkg/ingest"
	"github.com/hazyhaar/companygraph/pkg/mcpquic"
	"github.com/hazyhaar/companygraph/pkg/resolve"
	"github.com/hazyhaar/companygraph/pkg/store"
)

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg, logger := mustSetup(*cfgPath)

	opts, err := cfg.pipelineOptions()
	if err != nil {
		logger.Error("invalid dedup options", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DB)
	if err != nil {
		logger.Error("open store", "path", cfg.DB, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.Seed(ingest.Describers()); err != nil {
		logger.Error("seed sources", "error", err)
		os.Exit(1)
	}

	deps := api.Deps{
		Pipeline: resolve.NewPipeline(opts, logger),
		Lexicon:  opts.Lexicon,
		Store:    st,
	}
	router := api.NewRouter(deps, logger)

	mcpSrv := server.NewMCPServer("companygraph", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(mcpSrv, deps, logger)

	// SIGINT/SIGTERM: graceful shutdown.
	// SIGHUP: check source availability now.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checker := ingest.NewChecker(ingest.Env{Store: st, Logger: logger, Lexicon: opts.Lexicon}, cfg.CheckInterval)
	if cfg.CheckInterval > 0 {
		go checker.Start(ctx)
	}
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, checking sources")
			checker.CheckAll(ctx)
		}
	}()

	if cfg.TLS.Enabled {
		serveChassis(ctx, cfg, router, mcpSrv, logger)
		return
	}
	serveHTTP(ctx, cfg, router, mcpSrv, logger)
}

// serveChassis runs HTTPS, HTTP/3 and MCP over QUIC on one port.
func serveChassis(ctx context.Context, cfg config, router http.Handler, mcpSrv *server.MCPServer, logger *slog.Logger) {
	srv, err := chassis.New(chassis.Config{
		Addr:      cfg.Addr,
		CertFile:  cfg.TLS.Cert,
		KeyFile:   cfg.TLS.Key,
		Handler:   router,
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("chassis", "error", err)
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// serveHTTP runs plain HTTP, plus a standalone MCP listener when mcp_addr
// is set.
func serveHTTP(ctx context.Context, cfg config, router http.Handler, mcpSrv *server.MCPServer, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.MCPAddr != "" {
		tlsCfg, err := mcpTLS(cfg)
		if err != nil {
			logger.Error("MCP TLS", "error", err)
			os.Exit(1)
		}
		ln, err := mcpquic.NewListener(cfg.MCPAddr, tlsCfg, mcpSrv, logger)
		if err != nil {
			logger.Error("MCP listener", "error", err)
			os.Exit(1)
		}
		defer ln.Close()
		go func() {
			if err := ln.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("MCP listener stopped", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("companygraph listening", "addr", cfg.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func mcpTLS(cfg config) (*tls.Config, error) {
	if cfg.TLS.Cert != "" && cfg.TLS.Key != "" {
		return mcpquic.ServerTLSConfig(cfg.TLS.Cert, cfg.TLS.Key)
	}
	return mcpquic.SelfSignedTLSConfig()
}
