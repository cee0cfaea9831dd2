package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/logsentinel/internal/application/ingest"
	"github.com/bryanwahyu/logsentinel/internal/application/session"
	"github.com/bryanwahyu/logsentinel/internal/config"
	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
	"github.com/bryanwahyu/logsentinel/internal/domain/history"
	"github.com/bryanwahyu/logsentinel/internal/infra/ai/prompt"
	"github.com/bryanwahyu/logsentinel/internal/infra/ws"
	"github.com/bryanwahyu/logsentinel/internal/middleware"
	"github.com/bryanwahyu/logsentinel/internal/report"
)

type Router struct {
	sessionSvc *session.Service
	histRepo   history.Repository
	hub        *ws.Hub
	log        *zap.Logger
}

func NewRouter(sessionSvc *session.Service, histRepo history.Repository, hub *ws.Hub, checkers map[string]middleware.HealthChecker, cfg *config.Config, log *zap.Logger) http.Handler {
	r := &Router{sessionSvc: sessionSvc, histRepo: histRepo, hub: hub, log: log}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
	}))
	mux.Use(middleware.LoggingMiddleware(log))
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
		rt.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))

		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/analyze/sample", r.wrap(r.handleAnalyzeSample))
		rt.Get("/state", r.wrap(r.handleState))
		rt.Post("/view", r.wrap(r.handleSetView))
		rt.Post("/errors/dismiss", r.wrap(r.handleDismissError))
		rt.Get("/report.csv", r.wrap(r.handleReportCSV))
		rt.Get("/analyses", r.wrap(r.handleAnalysesList))
	})

	if hub != nil {
		mux.Get("/ws", hub.ServeWS)
	}

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			r.writeError(w, err)
		}
	}
}

func (r *Router) writeError(w http.ResponseWriter, err error) {
	var inputErr *analysis.InputError
	var transportErr *analysis.TransportError
	var schemaErr *analysis.SchemaError

	switch {
	case errors.As(err, &inputErr):
		http.Error(w, inputErr.Error(), http.StatusBadRequest)
	case errors.Is(err, analysis.ErrInFlight):
		http.Error(w, "an analysis is already in progress", http.StatusConflict)
	case errors.Is(err, sql.ErrNoRows):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.As(err, &transportErr):
		http.Error(w, transportErr.Error(), http.StatusBadGateway)
	case errors.Is(err, analysis.ErrEmptyResponse):
		http.Error(w, "analysis backend returned an empty response", http.StatusBadGateway)
	case errors.As(err, &schemaErr):
		http.Error(w, "analysis backend returned a malformed result: "+schemaErr.Error(), http.StatusBadGateway)
	default:
		r.log.Error("handler error", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/analyze
// Multipart form: log_text (field) and/or log (file), plus zero or more images.
// Returns 202 with the session snapshot; the analysis itself runs in background.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(middleware.MaxUploadBytes); err != nil {
		return &analysis.InputError{Reason: "invalid multipart body: " + err.Error()}
	}

	logText := req.FormValue("log_text")

	var logFile io.Reader
	if f, _, err := req.FormFile("log"); err == nil {
		defer f.Close()
		logFile = f
	}

	var images []ingest.ImageFile
	if req.MultipartForm != nil {
		for _, fh := range req.MultipartForm.File["images"] {
			f, err := fh.Open()
			if err != nil {
				return &analysis.InputError{Reason: "cannot open uploaded image: " + err.Error()}
			}
			defer f.Close()
			images = append(images, ingest.ImageFile{
				Reader:      f,
				ContentType: fh.Header.Get("Content-Type"),
			})
		}
	}

	areq, err := ingest.Assemble(logText, logFile, images)
	if err != nil {
		return err
	}
	if err := r.sessionSvc.Submit(areq); err != nil {
		return err
	}
	middleware.IncrementAnalyses()

	return writeJSON(w, http.StatusAccepted, r.sessionSvc.Snapshot())
}

// POST /v1/analyze/sample runs the built-in demo log corpus.
func (r *Router) handleAnalyzeSample(w http.ResponseWriter, req *http.Request) error {
	if err := r.sessionSvc.Submit(analysis.Request{LogText: prompt.SampleLogs}); err != nil {
		return err
	}
	middleware.IncrementAnalyses()

	return writeJSON(w, http.StatusAccepted, r.sessionSvc.Snapshot())
}

// GET /v1/state
func (r *Router) handleState(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.sessionSvc.Snapshot())
}

// POST /v1/view
// Body: {"view": "upload|dashboard|actions|reports"}
func (r *Router) handleSetView(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		View string `json:"view"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &analysis.InputError{Reason: "invalid request body: " + err.Error()}
	}

	v := session.View(middleware.SanitizeString(body.View))
	if err := r.sessionSvc.SetView(v); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, r.sessionSvc.Snapshot())
}

// POST /v1/errors/dismiss
func (r *Router) handleDismissError(w http.ResponseWriter, req *http.Request) error {
	r.sessionSvc.DismissError()
	return writeJSON(w, http.StatusOK, r.sessionSvc.Snapshot())
}

// GET /v1/report.csv exports the anomalies of the current result.
func (r *Router) handleReportCSV(w http.ResponseWriter, req *http.Request) error {
	st := r.sessionSvc.Snapshot()
	data, err := report.AnomaliesCSV(st.CurrentResult)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="cyber_report_%d.csv"`, time.Now().Unix()))
	_, err = w.Write(data)
	return err
}

// GET /v1/analyses?page=&page_size=
func (r *Router) handleAnalysesList(w http.ResponseWriter, req *http.Request) error {
	if r.histRepo == nil {
		http.Error(w, "analysis history is not configured", http.StatusNotFound)
		return nil
	}

	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	page = middleware.ValidatePage(page)
	size = middleware.ValidatePageSize(size)

	list, err := r.histRepo.Paginate(req.Context(), page, size)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*history.Record{}
	}
	return writeJSON(w, http.StatusOK, list)
}
