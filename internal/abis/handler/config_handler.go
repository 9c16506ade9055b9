package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mockabis/internal/abis/models"
	dErrors "mockabis/pkg/domain-errors"
	"mockabis/pkg/platform/httputil"
	"mockabis/pkg/platform/sentinel"
	"mockabis/pkg/requestcontext"
)

// ExpectationStore persists scripted answers.
type ExpectationStore interface {
	Save(ctx context.Context, exp models.Expectation) error
	Get(ctx context.Context, id string) (*models.Expectation, error)
	List(ctx context.Context) ([]models.Expectation, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// SettingsStore exposes the runtime engine switches.
type SettingsStore interface {
	Settings() models.Settings
	UpdateSettings(s models.Settings)
}

type messageResponse struct {
	Message string `json:"message"`
}

// ConfigHandler serves the mock's test-control endpoints.
type ConfigHandler struct {
	expectations ExpectationStore
	settings     SettingsStore
	logger       *slog.Logger
}

func NewConfigHandler(expectations ExpectationStore, settings SettingsStore, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{
		expectations: expectations,
		settings:     settings,
		logger:       logger,
	}
}

// Register mounts the configuration endpoints on the router.
func (h *ConfigHandler) Register(r chi.Router) {
	r.Route("/config", func(r chi.Router) {
		r.Post("/expectation", h.HandleSetExpectation)
		r.Get("/expectation", h.HandleListExpectations)
		r.Delete("/expectation", h.HandleDeleteExpectations)
		r.Get("/expectation/{id}", h.HandleGetExpectation)
		r.Delete("/expectation/{id}", h.HandleDeleteExpectation)
		r.Get("/configure", h.HandleGetSettings)
		r.Post("/configure", h.HandleUpdateSettings)
	})
}

func (h *ConfigHandler) HandleSetExpectation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	exp, ok := httputil.Decode[models.Expectation](w, r, h.logger, requestID)
	if !ok {
		return
	}
	if err := exp.Validate(); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, err.Error()))
		return
	}
	if err := h.expectations.Save(ctx, *exp); err != nil {
		h.internalError(w, r, "save expectation", err)
		return
	}
	h.logger.InfoContext(ctx, "expectation saved",
		"request_id", requestID,
		"expectation_id", exp.ID,
		"action", exp.ActionToInterfere,
	)
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Successfully inserted expectation %s", exp.ID)})
}

func (h *ConfigHandler) HandleListExpectations(w http.ResponseWriter, r *http.Request) {
	all, err := h.expectations.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list expectations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, all)
}

func (h *ConfigHandler) HandleGetExpectation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	exp, err := h.expectations.Get(r.Context(), id)
	if errors.Is(err, sentinel.ErrNotFound) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no expectation for %s", id)))
		return
	}
	if err != nil {
		h.internalError(w, r, "get expectation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, exp)
}

func (h *ConfigHandler) HandleDeleteExpectation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.expectations.Delete(r.Context(), id); err != nil {
		h.internalError(w, r, "delete expectation", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Successfully deleted expectation %s", id)})
}

func (h *ConfigHandler) HandleDeleteExpectations(w http.ResponseWriter, r *http.Request) {
	if err := h.expectations.DeleteAll(r.Context()); err != nil {
		h.internalError(w, r, "delete expectations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Successfully deleted expectations"})
}

func (h *ConfigHandler) HandleGetSettings(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.settings.Settings())
}

func (h *ConfigHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	requestID := requestcontext.RequestID(r.Context())
	s, ok := httputil.Decode[models.Settings](w, r, h.logger, requestID)
	if !ok {
		return
	}
	h.settings.UpdateSettings(*s)
	h.logger.InfoContext(r.Context(), "engine settings updated",
		"request_id", requestID,
		"find_duplicate", s.FindDuplicate,
	)
	httputil.WriteJSON(w, http.StatusOK, h.settings.Settings())
}

func (h *ConfigHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), op+" failed",
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, op+" failed"))
}
