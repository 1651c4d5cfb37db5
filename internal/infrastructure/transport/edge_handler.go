package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"edge/app/usecase"
	"edge/internal/domain/entity"
)

const maxGenerateBody = 1 << 20

type EdgeHandler struct {
	generateService usecase.GenerateUsecase
	siteService     usecase.SiteUsecase
	assetPrefix     string
	logger          *slog.Logger
}

func NewEdgeHandler(
	generateService usecase.GenerateUsecase,
	siteService usecase.SiteUsecase,
	assetPrefix string,
	logger *slog.Logger,
) *EdgeHandler {
	return &EdgeHandler{
		generateService: generateService,
		siteService:     siteService,
		assetPrefix:     assetPrefix,
		logger:          logger,
	}
}

func (h *EdgeHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(handlers.CompressHandler)

	api.HandleFunc("/health", h.withMetrics(h.handleHealth)).Methods(http.MethodGet)
	api.HandleFunc("/generate", h.withMetrics(h.handleGenerate)).Methods(http.MethodPost)
	// known paths with any other method
	api.HandleFunc("/health", h.withMetrics(methodNotAllowed(http.MethodGet)))
	api.HandleFunc("/generate", h.withMetrics(methodNotAllowed(http.MethodPost)))
	api.PathPrefix("/").HandlerFunc(h.withMetrics(h.handleAPINotFound))

	// Static site
	r.PathPrefix(h.assetPrefix).HandlerFunc(h.withMetrics(h.handleAsset)).Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix("/").HandlerFunc(h.withMetrics(h.handlePage)).Methods(http.MethodGet, http.MethodHead)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
}

// Routes builds the full handler chain served by the edge listener.
func (h *EdgeHandler) Routes() http.Handler {
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(withRequestID(r))

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: h.logger}),
	)(corsHandler)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

// GET /api/health
func (h *EdgeHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /api/generate
func (h *EdgeHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req entity.GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGenerateBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("bad request body: %s", err))
		return
	}

	resp, err := h.generateService.Generate(r.Context(), req)
	if err != nil {
		h.writeGenerateError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Body)
}

func (h *EdgeHandler) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := RequestIDFromContext(r.Context())

	var statusErr *entity.UpstreamStatusError
	var unavailableErr *entity.UpstreamUnavailableError

	switch {
	case errors.Is(err, entity.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &statusErr):
		h.logger.Warn("query service error", "status", statusErr.StatusCode, "truncated", statusErr.Truncated, "request_id", requestID)
		msg := "Query service error: " + statusErr.Body
		if statusErr.Truncated {
			msg += " [truncated]"
		}
		writeError(w, statusErr.StatusCode, msg)
	case errors.As(err, &unavailableErr):
		if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
			h.logger.Info("client went away before query service answered", "request_id", requestID)
			return
		}
		h.logger.Warn("query service unavailable", "err", unavailableErr.Err, "request_id", requestID)
		writeError(w, http.StatusInternalServerError, "Error communicating with query service: "+unavailableErr.Err.Error())
	case errors.Is(err, entity.ErrUpstreamBodyTooLarge):
		h.logger.Warn("query service response too large", "err", err, "request_id", requestID)
		writeError(w, http.StatusBadGateway, "Query service response too large")
	case errors.Is(err, entity.ErrUpstream):
		h.logger.Warn("query service returned invalid response", "err", err, "request_id", requestID)
		writeError(w, http.StatusBadGateway, "Query service returned an invalid response")
	default:
		h.logger.Error("generate failed", "err", err, "request_id", requestID)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func methodNotAllowed(allowed ...string) http.HandlerFunc {
	allow := strings.Join(allowed, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

// /api/*
func (h *EdgeHandler) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}

// GET <asset prefix>*
func (h *EdgeHandler) handleAsset(w http.ResponseWriter, r *http.Request) {
	file, err := h.siteService.ResolveAsset(r.Context(), r.URL.Path)
	if err != nil {
		h.writeStaticError(w, r, err)
		return
	}
	h.serveFile(w, r, file)
}

// GET /*
func (h *EdgeHandler) handlePage(w http.ResponseWriter, r *http.Request) {
	file, err := h.siteService.ResolvePage(r.Context(), r.URL.Path)
	if err != nil {
		h.writeStaticError(w, r, err)
		return
	}
	h.serveFile(w, r, file)
}

func (h *EdgeHandler) writeStaticError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, entity.ErrNotFound) {
		writeError(w, http.StatusNotFound, "File not found and index.html not available")
		return
	}
	h.logger.Error("static resolve failed", "path", r.URL.Path, "err", err, "request_id", RequestIDFromContext(r.Context()))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (h *EdgeHandler) serveFile(w http.ResponseWriter, r *http.Request, file entity.ResolvedFile) {
	f, err := os.Open(file.Path)
	if err != nil {
		// removed between resolution and open
		h.logger.Warn("open resolved file", "path", file.Path, "err", err)
		writeError(w, http.StatusNotFound, "File not found and index.html not available")
		return
	}
	defer func() {
		_ = f.Close()
	}()

	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, filepath.Base(file.Path), file.ModTime, f)
}
