package api

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/companygraph/pkg/mcpquic"
)

func TestMCPTools_OverQUIC(t *testing.T) {
	srv := server.NewMCPServer("companygraph", "test", server.WithToolCapabilities(false))
	RegisterMCPTools(srv, testDeps(t, false), nil)

	tlsCfg, err := mcpquic.SelfSignedTLSConfig()
	if err != nil {
		t.Fatal(err)
	}
	l, err := mcpquic.NewListener("127.0.0.1:0", tlsCfg, srv, nil)
	if err != nil {
		t.Fatalf("NewListener: %v", err)
	}
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	go l.Serve(ctx)

	c := mcpquic.NewClient(l.Addr().String(), nil, "test")
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	tools, err := c.ListTools(ctx)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	have := make(map[string]bool)
	for _, tool := range tools.Tools {
		have[tool.Name] = true
	}
	for _, name := range []string{"match_names", "classify_name", "identity_of", "resolve_company", "get_company"} {
		if !have[name] {
			t.Errorf("tool %s not registered", name)
		}
	}

	text, err := c.CallText(ctx, "match_names", map[string]any{"a": "J. Smith", "b": "John Smith"})
	if err != nil {
		t.Fatalf("match_names: %v", err)
	}
	var m matchResponse
	if err := json.Unmarshal([]byte(text), &m); err != nil || !m.Match {
		t.Errorf("match_names = %s (%v)", text, err)
	}

	in, _ := json.Marshal(sampleInput())
	text, err = c.CallText(ctx, "resolve_company", map[string]any{"input": string(in)})
	if err != nil {
		t.Fatalf("resolve_company: %v", err)
	}
	var res resolveResponse
	if err := json.Unmarshal([]byte(text), &res); err != nil || len(res.Entities) != 2 {
		t.Errorf("resolve_company = %s (%v)", text, err)
	}

	if _, err := c.CallText(ctx, "resolve_company", map[string]any{"input": "{"}); err == nil {
		t.Error("expected tool error for invalid input")
	}
	if _, err := c.CallText(ctx, "get_company", map[string]any{"uuid": "c-1"}); err == nil {
		t.Error("expected tool error without a store")
	}
}
