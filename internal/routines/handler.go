package routines

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type routinesRepo interface {
	List(ctx context.Context, userID uuid.UUID) ([]Routine, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Routine, error)
	Create(ctx context.Context, userID uuid.UUID, name string, displayOrder *int) (*Routine, error)
	Update(ctx context.Context, userID, id uuid.UUID, update RoutineUpdate) (*Routine, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type createRoutineRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	DisplayOrder *int   `json:"displayOrder" validate:"omitempty,gte=0,max=2147483647"`
}

type updateRoutineRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=100"`
	DisplayOrder *int    `json:"displayOrder" validate:"omitempty,gte=0,max=2147483647"`
}

type Handler struct {
	repo routinesRepo
}

func NewHandler(repo routinesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/routines", h.handleList).Methods("GET", "OPTIONS").Name("list-routines")
	router.HandleFunc("/api/routines", h.handleCreate).Methods("POST", "OPTIONS").Name("new-routine")
	router.HandleFunc("/api/routines/{id}", h.handleGet).Methods("GET", "OPTIONS").Name("get-routine")
	router.HandleFunc("/api/routines/{id}", h.handleUpdate).Methods("PUT", "OPTIONS").Name("update-routine")
	router.HandleFunc("/api/routines/{id}", h.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-routine")
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.list")
	defer span.End()

	routines, err := h.repo.List(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		log.Errorf("list routines: %s", err)
		pkg.WriteJSONError(w, "failed to fetch routines", http.StatusInternalServerError)
		return
	}
	if routines == nil {
		routines = []Routine{}
	}

	pkg.WriteJSONOK(w, routines)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.get")
	defer span.End()

	id, ok := pkg.PathUUID(r, "id")
	if !ok {
		pkg.WriteJSONError(w, ErrRoutineNotFound.Error(), http.StatusNotFound)
		return
	}

	routine, err := h.repo.Get(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		h.writeRepoError(w, "get routine", err)
		return
	}

	pkg.WriteJSONOK(w, routine)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.create")
	defer span.End()

	var req createRoutineRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := pkg.ValidateStruct(&req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}

	routine, err := h.repo.Create(ctx, auth.UserIDFromContext(ctx), req.Name, req.DisplayOrder)
	if err != nil {
		h.writeRepoError(w, "create routine", err)
		return
	}

	log.Tracef("routine %s [%s] created", routine.ID, routine.Name)
	pkg.WriteJSON(w, routine, http.StatusCreated)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.update")
	defer span.End()

	id, ok := pkg.PathUUID(r, "id")
	if !ok {
		pkg.WriteJSONError(w, ErrRoutineNotFound.Error(), http.StatusNotFound)
		return
	}

	var req updateRoutineRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			pkg.WriteJSONError(w, "name cannot be empty", http.StatusBadRequest)
			return
		}
		req.Name = &trimmed
	}
	if err := pkg.ValidateStruct(&req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}

	update := RoutineUpdate{Name: req.Name, DisplayOrder: req.DisplayOrder}
	if update.IsEmpty() {
		pkg.WriteJSONError(w, "no fields to update", http.StatusBadRequest)
		return
	}

	routine, err := h.repo.Update(ctx, auth.UserIDFromContext(ctx), id, update)
	if err != nil {
		h.writeRepoError(w, "update routine", err)
		return
	}

	pkg.WriteJSONOK(w, routine)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.delete")
	defer span.End()

	id, ok := pkg.PathUUID(r, "id")
	if !ok {
		pkg.WriteJSONError(w, ErrRoutineNotFound.Error(), http.StatusNotFound)
		return
	}

	if err := h.repo.Delete(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		h.writeRepoError(w, "delete routine", err)
		return
	}

	log.Tracef("routine %s deleted", id)
	pkg.WriteSuccess(w)
}

func (h *Handler) writeRepoError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrRoutineNotFound):
		pkg.WriteJSONError(w, ErrRoutineNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicateRoutineName):
		pkg.WriteJSONError(w, ErrDuplicateRoutineName.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s: %s", op, err)
		pkg.WriteJSONError(w, "internal error", http.StatusInternalServerError)
	}
}
