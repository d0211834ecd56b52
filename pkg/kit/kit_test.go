package kit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestChain_Order(t *testing.T) {
	var trace []string
	mw := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				trace = append(trace, name)
				return next(ctx, req)
			}
		}
	}
	ep := Chain(mw("a"), mw("b"), mw("c"))(func(context.Context, any) (any, error) {
		trace = append(trace, "endpoint")
		return nil, nil
	})
	if _, err := ep(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(trace, ","); got != "a,b,c,endpoint" {
		t.Errorf("order = %s", got)
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if GetTransport(ctx) != DefaultTransport {
		t.Errorf("default transport = %q", GetTransport(ctx))
	}
	if GetRequestID(ctx) != "" {
		t.Error("unexpected request id")
	}
	ctx = WithRequestID(WithTransport(ctx, "mcp_quic"), "req-1")
	if GetTransport(ctx) != "mcp_quic" || GetRequestID(ctx) != "req-1" {
		t.Errorf("transport = %q, request id = %q", GetTransport(ctx), GetRequestID(ctx))
	}
}

func TestJSONArgs(t *testing.T) {
	type req struct {
		Name  string `json:"name"`
		Limit int    `json:"limit"`
	}
	call := func(args map[string]any) mcp.CallToolRequest {
		var r mcp.CallToolRequest
		r.Params.Name = "test"
		r.Params.Arguments = args
		return r
	}

	decode := JSONArgs(func(r *req) error {
		if r.Name == "" {
			return errors.New("name is required")
		}
		return nil
	})

	res, err := decode(call(map[string]any{"name": "Acme", "limit": 3}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := res.Request.(*req)
	if !ok || got.Name != "Acme" || got.Limit != 3 {
		t.Errorf("request = %#v", res.Request)
	}

	if _, err := decode(call(map[string]any{"limit": 3})); err == nil {
		t.Error("expected validation error")
	}
	if _, err := decode(call(map[string]any{"name": "Acme", "limit": "three"})); err == nil {
		t.Error("expected type error")
	}
}
