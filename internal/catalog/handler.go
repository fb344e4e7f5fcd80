package catalog

import (
	"context"
	"net/http"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type catalogLister interface {
	List(ctx context.Context) ([]MuscleGroup, error)
}

type Handler struct {
	catalog catalogLister
}

func NewHandler(catalog catalogLister) *Handler {
	return &Handler{
		catalog: catalog,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/exercises/predefined", h.handleList).Methods("GET", "OPTIONS").Name("predefined-exercises")
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.list")
	defer span.End()

	groups, err := h.catalog.List(ctx)
	if err != nil {
		log.Errorf("list predefined exercises: %s", err)
		pkg.WriteJSONError(w, "failed to fetch predefined exercises", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, groups)
}
