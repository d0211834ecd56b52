package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/pkg/kit"

	"github.com/hazyhaar/companygraph/pkg/identity"
	"github.com/hazyhaar/companygraph/pkg/names"
	"github.com/hazyhaar/companygraph/pkg/resolve"
	"github.com/hazyhaar/companygraph/pkg/store"
)

// Deps are the components the endpoints dispatch to. Store may be nil, in
// which case the company routes report the store as unavailable.
type Deps struct {
	Pipeline *resolve.Pipeline
	Lexicon  *names.Lexicon
	Store    *store.Store
}

func (d Deps) lexicon() *names.Lexicon {
	if d.Lexicon == nil {
		return names.Default()
	}
	return d.Lexicon
}

var errNoStore = errors.New("store not configured")

// Shared request/response types used by both HTTP and MCP transports.

type resolveReq struct {
	Input   resolve.Input `json:"input"`
	Flatten bool          `json:"flatten,omitempty"`
}

type resolveResponse struct {
	*resolve.Result
	Rows []resolve.Row `json:"rows,omitempty"`
}

type matchReq struct {
	A         string `json:"a"`
	B         string `json:"b"`
	Threshold int    `json:"threshold,omitempty"`
}

type matchResponse struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Threshold  int     `json:"threshold"`
	Match      bool    `json:"match"`
	Aligned    bool    `json:"aligned"`
	TokenSet   int     `json:"token_set_ratio"`
	TokenSort  int     `json:"token_sort_ratio"`
	Similarity float64 `json:"similarity"`
}

type classifyReq struct {
	Name string `json:"name"`
}

type classifyResponse struct {
	Name           string `json:"name"`
	Canonical      string `json:"canonical"`
	ProfileName    string `json:"profile_name"`
	IsOrganization bool   `json:"is_organization"`
}

type identityReq struct {
	Name    string `json:"name"`
	Company string `json:"company"`
}

type identityResponse struct {
	Name       string `json:"name"`
	Company    string `json:"company"`
	IdentityID string `json:"identity_id"`
}

type companyReq struct {
	UUID string `json:"uuid"`
}

type companiesResponse struct {
	Companies []store.CompanySummary `json:"companies"`
}

const maxDocuments = 200

func resolveEndpoint(d Deps) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*resolveReq)
		if strings.TrimSpace(req.Input.Company.UUID) == "" {
			return nil, fmt.Errorf("company uuid is required")
		}
		if len(req.Input.Documents) > maxDocuments {
			return nil, fmt.Errorf("too many documents (max %d, got %d)", maxDocuments, len(req.Input.Documents))
		}
		res, err := d.Pipeline.Resolve(req.Input)
		if err != nil {
			return nil, err
		}
		resp := resolveResponse{Result: res}
		if req.Flatten {
			if resp.Rows, err = resolve.Flatten(res); err != nil {
				return nil, err
			}
		}
		return resp, nil
	}
}

func matchEndpoint(_ Deps) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*matchReq)
		if req.A == "" || req.B == "" {
			return nil, fmt.Errorf("both names are required")
		}
		m := names.NewMatcher(req.Threshold)
		return matchResponse{
			A:          req.A,
			B:          req.B,
			Threshold:  m.Threshold,
			Match:      m.Match(strings.ToLower(req.A), strings.ToLower(req.B)),
			Aligned:    names.MatchAligned(req.A, req.B, m.Threshold),
			TokenSet:   names.TokenSetRatio(strings.ToLower(req.A), strings.ToLower(req.B)),
			TokenSort:  names.TokenSortRatio(strings.ToLower(req.A), strings.ToLower(req.B)),
			Similarity: names.Similarity(req.A, req.B),
		}, nil
	}
}

func classifyEndpoint(d Deps) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*classifyReq)
		lex := d.lexicon()
		canonical := lex.Canonical(req.Name)
		return classifyResponse{
			Name:           req.Name,
			Canonical:      canonical,
			ProfileName:    names.ProfileName(canonical),
			IsOrganization: lex.IsOrganization(req.Name),
		}, nil
	}
}

func identityEndpoint(d Deps) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*identityReq)
		if req.Name == "" || req.Company == "" {
			return nil, fmt.Errorf("name and company are required")
		}
		canonical := d.lexicon().Canonical(req.Name)
		return identityResponse{
			Name:       canonical,
			Company:    req.Company,
			IdentityID: identity.String(canonical, req.Company),
		}, nil
	}
}

func companyEndpoint(d Deps) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		if d.Store == nil {
			return nil, errNoStore
		}
		req := request.(*companyReq)
		var res resolve.Result
		if err := d.Store.LoadCompany(req.UUID, &res); err != nil {
			return nil, err
		}
		return &res, nil
	}
}

func listCompaniesEndpoint(d Deps) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		if d.Store == nil {
			return nil, errNoStore
		}
		cs, err := d.Store.ListCompanies()
		if err != nil {
			return nil, err
		}
		return companiesResponse{Companies: cs}, nil
	}
}
