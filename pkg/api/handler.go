package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hazyhaar/pkg/kit"

	ctxkit "github.com/hazyhaar/companygraph/pkg/kit"
	"github.com/hazyhaar/companygraph/pkg/store"
)

// NewRouter returns an http.Handler with all companygraph API routes.
func NewRouter(d Deps, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mux := http.NewServeMux()
	h := &handler{
		resolve:       resolveEndpoint(d),
		match:         matchEndpoint(d),
		classify:      classifyEndpoint(d),
		identity:      identityEndpoint(d),
		company:       companyEndpoint(d),
		listCompanies: listCompaniesEndpoint(d),
		store:         d.Store,
	}

	mux.HandleFunc("GET /v1/resolve", methodNotAllowed) // resolve takes a body
	mux.HandleFunc("POST /v1/resolve", h.handleResolve)
	mux.HandleFunc("GET /v1/match", h.handleMatch)
	mux.HandleFunc("GET /v1/classify/{name}", h.handleClassify)
	mux.HandleFunc("GET /v1/identity", h.handleIdentity)
	mux.HandleFunc("GET /v1/companies", h.handleListCompanies)
	mux.HandleFunc("GET /v1/companies/{uuid}", h.handleCompany)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(withRequest(logger, mux))
}

type handler struct {
	resolve       kit.Endpoint
	match         kit.Endpoint
	classify      kit.Endpoint
	identity      kit.Endpoint
	company       kit.Endpoint
	listCompanies kit.Endpoint
	store         *store.Store
}

// --- resolve ---

func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 8<<20) // 8 MiB max, OCR pages included
	var req resolveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if v := r.URL.Query().Get("flatten"); v != "" {
		req.Flatten, _ = strconv.ParseBool(v)
	}

	resp, err := h.resolve(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- match ---

func (h *handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	threshold := 0
	if v := q.Get("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "threshold must be an integer in [0, 100]")
			return
		}
		threshold = n
	}

	resp, err := h.match(r.Context(), &matchReq{A: q.Get("a"), B: q.Get("b"), Threshold: threshold})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- classify ---

func (h *handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}
	resp, err := h.classify(r.Context(), &classifyReq{Name: name})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- identity ---

func (h *handler) handleIdentity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.identity(r.Context(), &identityReq{Name: q.Get("name"), Company: q.Get("company")})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- companies ---

func (h *handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listCompanies(r.Context(), nil)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleCompany(w http.ResponseWriter, r *http.Request) {
	resp, err := h.company(r.Context(), &companyReq{UUID: r.PathValue("uuid")})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status    string `json:"status"`
	Store     bool   `json:"store"`
	Companies int    `json:"companies"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.store != nil {
		resp.Store = true
		if cs, err := h.store.ListCompanies(); err == nil {
			resp.Companies = len(cs)
		} else {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- helpers ---

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errNoStore):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// withRequest tags each request with an ID and logs it once served.
func withRequest(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := ctxkit.WithTransport(ctxkit.WithRequestID(r.Context(), id), "http")

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "request_id", id, "duration", time.Since(start))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
