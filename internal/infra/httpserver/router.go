package httpserver

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appanalyses "github.com/fieldproof/tradecheck/internal/application/analyses"
	appinsights "github.com/fieldproof/tradecheck/internal/application/insights"
	applibrary "github.com/fieldproof/tradecheck/internal/application/library"
	"github.com/fieldproof/tradecheck/internal/domain/compliance"
	"github.com/fieldproof/tradecheck/internal/domain/inference"
	"github.com/fieldproof/tradecheck/internal/domain/profile"
	"github.com/fieldproof/tradecheck/internal/middleware"
)

type Router struct {
	analyses *appanalyses.Service
	insights *appinsights.Service
	library  *applibrary.Service
	profiles profile.Repository
	logger   *zap.Logger
}

func NewRouter(
	analyses *appanalyses.Service,
	insights *appinsights.Service,
	library *applibrary.Service,
	profiles profile.Repository,
	logger *zap.Logger,
) http.Handler {
	r := &Router{
		analyses: analyses,
		insights: insights,
		library:  library,
		profiles: profiles,
		logger:   logger,
	}
	mux := chi.NewRouter()

	mux.Route("/v1/{user}", func(rt chi.Router) {
		rt.Post("/analyses", r.wrap(r.handleCreateAnalysis))
		rt.Get("/analyses", r.wrap(r.handleLatest))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Post("/analyses/{id}/recheck", r.wrap(r.handleAnalysisRecheck))
		rt.Post("/recheck", r.wrap(r.handleRecheck))
		rt.Get("/dashboard", r.wrap(r.handleDashboard))
		rt.Get("/credential", r.wrap(r.handleCredential))
		rt.Get("/library", r.wrap(r.handleLibrary))
		rt.Get("/profile", r.wrap(r.handleGetProfile))
		rt.Put("/profile", r.wrap(r.handlePutProfile))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap translates engine errors into HTTP statuses. The engine never logs;
// this boundary does.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, compliance.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, compliance.ErrNotFound), errors.Is(err, sql.ErrNoRows):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, inference.ErrParse):
			middleware.IncrementInferenceFailures()
			r.logger.Warn("inference parse failure", zap.Error(err))
			http.Error(w, "inference response could not be parsed, try again", http.StatusBadGateway)
		case errors.Is(err, inference.ErrQuotaExceeded):
			middleware.IncrementInferenceFailures()
			http.Error(w, "inference quota exceeded", http.StatusTooManyRequests)
		case errors.Is(err, compliance.ErrReconciliationMismatch):
			r.logger.Error("reconciliation mismatch", zap.Error(err))
			http.Error(w, "reconciliation mismatch", http.StatusInternalServerError)
		default:
			r.logger.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{user}/analyses
// Body: {"image": "<base64 | data URL>", "beforeImage": ..., "afterImage": ...,
//        "workType": "...", "userDescription": "...", "jurisdiction": "..."}
func (r *Router) handleCreateAnalysis(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")

	var body struct {
		Image           string `json:"image"`
		BeforeImage     string `json:"beforeImage"`
		AfterImage      string `json:"afterImage"`
		WorkType        string `json:"workType"`
		UserDescription string `json:"userDescription"`
		Jurisdiction    string `json:"jurisdiction"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid request body: %w", compliance.ErrValidation)
	}
	if err := middleware.ValidateWorkType(body.WorkType); err != nil {
		return fmt.Errorf("%v: %w", err, compliance.ErrValidation)
	}

	cmd := appanalyses.CreateCommand{
		UserID:          user,
		WorkType:        middleware.SanitizeString(body.WorkType),
		UserDescription: middleware.SanitizeString(body.UserDescription),
		Jurisdiction:    middleware.SanitizeString(body.Jurisdiction),
	}
	var err error
	if body.Image != "" {
		if cmd.Image, cmd.ContentType, err = decodeImage(body.Image); err != nil {
			return err
		}
	}
	if body.BeforeImage != "" {
		if cmd.BeforeImage, cmd.ContentType, err = decodeImage(body.BeforeImage); err != nil {
			return err
		}
	}
	if body.AfterImage != "" {
		if cmd.AfterImage, _, err = decodeImage(body.AfterImage); err != nil {
			return err
		}
	}

	a, err := r.analyses.Create(req.Context(), cmd)
	if err != nil {
		return err
	}
	middleware.IncrementAnalyses()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// POST /v1/{user}/recheck
// Standalone reconciliation: the original violations come in the body.
func (r *Router) handleRecheck(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")

	var body struct {
		OriginalImage      string                 `json:"originalImage"`
		FixedImage         string                 `json:"fixedImage"`
		OriginalViolations []compliance.Violation `json:"originalViolations"`
		Jurisdiction       string                 `json:"jurisdiction"`
		UserDescription    string                 `json:"userDescription"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid request body: %w", compliance.ErrValidation)
	}
	if len(body.OriginalViolations) == 0 {
		return fmt.Errorf("originalViolations must be a non-empty array: %w", compliance.ErrValidation)
	}

	cmd := appanalyses.RecheckCommand{
		UserID:             user,
		OriginalViolations: body.OriginalViolations,
		Jurisdiction:       middleware.SanitizeString(body.Jurisdiction),
		UserDescription:    middleware.SanitizeString(body.UserDescription),
	}
	var err error
	if body.OriginalImage != "" {
		if cmd.OriginalImage, cmd.ContentType, err = decodeImage(body.OriginalImage); err != nil {
			return err
		}
	}
	if cmd.FixedImage, _, err = decodeImage(body.FixedImage); err != nil {
		return err
	}

	return r.respondRecheck(w, req, cmd)
}

// POST /v1/{user}/analyses/{id}/recheck
// The stored analysis supplies the original violations and before photo;
// the outcome is merged back into it.
func (r *Router) handleAnalysisRecheck(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")
	id := chi.URLParam(req, "id")

	var body struct {
		FixedImage      string `json:"fixedImage"`
		Jurisdiction    string `json:"jurisdiction"`
		UserDescription string `json:"userDescription"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid request body: %w", compliance.ErrValidation)
	}

	cmd := appanalyses.RecheckCommand{
		UserID:          user,
		AnalysisID:      compliance.AnalysisID(id),
		Jurisdiction:    middleware.SanitizeString(body.Jurisdiction),
		UserDescription: middleware.SanitizeString(body.UserDescription),
	}
	var err error
	if cmd.FixedImage, cmd.ContentType, err = decodeImage(body.FixedImage); err != nil {
		return err
	}

	return r.respondRecheck(w, req, cmd)
}

func (r *Router) respondRecheck(w http.ResponseWriter, req *http.Request, cmd appanalyses.RecheckCommand) error {
	out, err := r.analyses.Recheck(req.Context(), cmd)
	if err != nil {
		return err
	}
	for _, warning := range out.Warnings {
		r.logger.Warn("recheck reconciliation", zap.String("user", cmd.UserID), zap.String("detail", warning))
	}
	middleware.IncrementRechecks()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(out)
}

// GET /v1/{user}/analyses?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.analyses.Latest(req.Context(), user, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{user}/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")
	id := chi.URLParam(req, "id")

	a, err := r.analyses.Get(req.Context(), user, compliance.AnalysisID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// GET /v1/{user}/dashboard
func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")

	d, err := r.insights.Dashboard(req.Context(), user)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(d)
}

// GET /v1/{user}/credential
func (r *Router) handleCredential(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")

	c, err := r.insights.Credential(req.Context(), user)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(c)
}

// GET /v1/{user}/library?taskType=&analysisId=
func (r *Router) handleLibrary(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")
	taskType := req.URL.Query().Get("taskType")
	analysisID := req.URL.Query().Get("analysisId")

	var clips interface{}
	var err error
	if analysisID != "" {
		clips, err = r.library.ForAnalysis(req.Context(), user, compliance.AnalysisID(analysisID))
	} else {
		clips, err = r.library.Browse(req.Context(), taskType)
	}
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(clips)
}

// GET /v1/{user}/profile
func (r *Router) handleGetProfile(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")

	p, err := r.profiles.Get(req.Context(), user)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(p)
}

// PUT /v1/{user}/profile
func (r *Router) handlePutProfile(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")

	var p profile.Profile
	if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
		return fmt.Errorf("invalid request body: %w", compliance.ErrValidation)
	}
	p.UserID = user
	if err := r.profiles.Save(req.Context(), &p); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(p)
}

// decodeImage accepts raw base64 or a data URL and returns the image bytes
// plus content type.
func decodeImage(s string) ([]byte, string, error) {
	contentType := "image/jpeg"
	if strings.HasPrefix(s, "data:") {
		semi := strings.Index(s, ";base64,")
		if semi < 0 {
			return nil, "", fmt.Errorf("image must be base64 or a base64 data URL: %w", compliance.ErrValidation)
		}
		contentType = strings.TrimPrefix(s[:semi], "data:")
		s = s[semi+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image payload: %w", compliance.ErrValidation)
	}
	if err := middleware.ValidateImageSize(len(data)); err != nil {
		return nil, "", fmt.Errorf("%v: %w", err, compliance.ErrValidation)
	}
	return data, contentType, nil
}
