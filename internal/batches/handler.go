package batches

import (
	"log/slog"
	"net/http"

	"github.com/docuglot/docuglot/pkg/handlers"
	"github.com/docuglot/docuglot/pkg/pagination"
	"github.com/docuglot/docuglot/pkg/routes"
	"github.com/google/uuid"
)

// Handler provides HTTP endpoints for batch operations.
type Handler struct {
	orchestrator *Orchestrator
	store        Store
	logger       *slog.Logger
	pagination   pagination.Config
}

// NewHandler creates a batch handler.
func NewHandler(orchestrator *Orchestrator, store Store, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		store:        store,
		logger:       logger.With("handler", "batches"),
		pagination:   pagination,
	}
}

// Routes returns the batch endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/batches",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[SubmitRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.orchestrator.Submit(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, result)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.store.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	detail, err := h.store.FindDetail(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, detail)
}
