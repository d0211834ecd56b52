package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/companygraph/pkg/kit"
	"github.com/hazyhaar/companygraph/pkg/resolve"
)

// RegisterMCPTools registers the companygraph MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, d Deps, logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mw := kit.Chain(transport("mcp"), logged(logger))

	registerMatchNames(srv, mw)
	registerClassifyName(srv, d, mw)
	registerIdentity(srv, d, mw)
	registerResolveCompany(srv, d, mw)
	registerGetCompany(srv, d, mw)
}

func registerMatchNames(srv *server.MCPServer, mw kit.Middleware) {
	tool := mcp.NewTool("match_names",
		mcp.WithDescription("Decide whether two person or company names denote the same entity (initials, titles and word order tolerated)."),
		mcp.WithString("a", mcp.Required(), mcp.Description("First name")),
		mcp.WithString("b", mcp.Required(), mcp.Description("Second name")),
		mcp.WithNumber("threshold", mcp.Description("Similarity threshold 0-100 (default 80)")),
	)

	ep := matchEndpoint(Deps{})
	kit.RegisterMCPTool(srv, tool, mw(func(ctx context.Context, request any) (any, error) {
		return ep(ctx, request)
	}), kit.JSONArgs(func(r *matchReq) error {
		if r.Threshold < 0 || r.Threshold > 100 {
			return fmt.Errorf("threshold out of range: %d", r.Threshold)
		}
		return nil
	}))
}

func registerClassifyName(srv *server.MCPServer, d Deps, mw kit.Middleware) {
	tool := mcp.NewTool("classify_name",
		mcp.WithDescription("Classify a name as person or organization and return its canonical and profile forms."),
		mcp.WithString("name", mcp.Required(), mcp.Description("The name to classify")),
	)

	ep := classifyEndpoint(d)
	kit.RegisterMCPTool(srv, tool, mw(func(ctx context.Context, request any) (any, error) {
		return ep(ctx, request)
	}), kit.JSONArgs(func(r *classifyReq) error {
		if r.Name == "" {
			return fmt.Errorf("name is required")
		}
		return nil
	}))
}

func registerIdentity(srv *server.MCPServer, d Deps, mw kit.Middleware) {
	tool := mcp.NewTool("identity_of",
		mcp.WithDescription("Compute the stable identity of a person or organization within one company."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Printed name")),
		mcp.WithString("company", mcp.Required(), mcp.Description("Company UUID scoping the identity")),
	)

	ep := identityEndpoint(d)
	kit.RegisterMCPTool(srv, tool, mw(func(ctx context.Context, request any) (any, error) {
		return ep(ctx, request)
	}), kit.JSONArgs[identityReq](nil))
}

func registerResolveCompany(srv *server.MCPServer, d Deps, mw kit.Middleware) {
	tool := mcp.NewTool("resolve_company",
		mcp.WithDescription("Resolve the officers, shareholders and founders of one company into deduplicated entities."),
		mcp.WithString("input", mcp.Required(), mcp.Description(`JSON object {"company": {...}, "documents": [...]}`)),
		mcp.WithBoolean("flatten", mcp.Description("Also return long-format rows")),
	)

	ep := resolveEndpoint(d)
	kit.RegisterMCPTool(srv, tool, mw(func(ctx context.Context, request any) (any, error) {
		return ep(ctx, request)
	}), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		raw, _ := args["input"].(string)
		var in resolve.Input
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
		flatten, _ := args["flatten"].(bool)
		return &kit.MCPDecodeResult{Request: &resolveReq{Input: in, Flatten: flatten}}, nil
	})
}

func registerGetCompany(srv *server.MCPServer, d Deps, mw kit.Middleware) {
	tool := mcp.NewTool("get_company",
		mcp.WithDescription("Return a company resolved by the batch runner."),
		mcp.WithString("uuid", mcp.Required(), mcp.Description("Company UUID")),
	)

	ep := companyEndpoint(d)
	kit.RegisterMCPTool(srv, tool, mw(func(ctx context.Context, request any) (any, error) {
		return ep(ctx, request)
	}), kit.JSONArgs[companyReq](nil))
}

func logged(logger *slog.Logger) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, request)
			if err != nil {
				logger.Warn("tool failed", "transport", kit.GetTransport(ctx), "request", fmt.Sprintf("%T", request), "error", err)
			} else {
				logger.Debug("tool call", "transport", kit.GetTransport(ctx), "request", fmt.Sprintf("%T", request), "duration", time.Since(start))
			}
			return resp, err
		}
	}
}

// transport tags the context unless an outer layer already did.
func transport(name string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			if ctx.Value(kit.TransportKey) == nil {
				ctx = kit.WithTransport(ctx, name)
			}
			return next(ctx, request)
		}
	}
}
