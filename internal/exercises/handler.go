package exercises

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=exercises

type exercisesRepo interface {
	List(ctx context.Context, userID uuid.UUID, routineID *uuid.UUID) ([]Exercise, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Exercise, error)
	Create(ctx context.Context, userID uuid.UUID, ex NewExercise) (*Exercise, error)
	Update(ctx context.Context, userID, id uuid.UUID, update ExerciseUpdate) (*Exercise, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type createExerciseRequest struct {
	RoutineID            string  `json:"routineId" validate:"required,uuid"`
	PredefinedExerciseID *int    `json:"predefinedExerciseId" validate:"omitempty,min=1,max=2147483647"`
	CustomName           *string `json:"customName" validate:"omitempty,min=1,max=100"`
	DisplayOrder         *int    `json:"displayOrder" validate:"omitempty,gte=0,max=2147483647"`
}

type updateExerciseRequest struct {
	RoutineID            *string `json:"routineId" validate:"omitempty,uuid"`
	PredefinedExerciseID *int    `json:"predefinedExerciseId" validate:"omitempty,min=1,max=2147483647"`
	CustomName           *string `json:"customName" validate:"omitempty,min=1,max=100"`
	DisplayOrder         *int    `json:"displayOrder" validate:"omitempty,gte=0,max=2147483647"`
}

type Handler struct {
	repo exercisesRepo
}

func NewHandler(repo exercisesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

// SetupRoutes must run after the catalog routes, since /api/exercises/{id}
// would otherwise shadow /api/exercises/predefined.
func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/exercises", h.handleList).Methods("GET", "OPTIONS").Name("list-exercises")
	router.HandleFunc("/api/exercises", h.handleCreate).Methods("POST", "OPTIONS").Name("new-exercise")
	router.HandleFunc("/api/exercises/{id}", h.handleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	router.HandleFunc("/api/exercises/{id}", h.handleUpdate).Methods("PUT", "OPTIONS").Name("update-exercise")
	router.HandleFunc("/api/exercises/{id}", h.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	var routineID *uuid.UUID
	if raw := r.URL.Query().Get("routineId"); raw != "" {
		id, ok := pkg.ParseUUID(raw)
		if !ok {
			pkg.WriteJSONError(w, "invalid routineId", http.StatusBadRequest)
			return
		}
		routineID = &id
	}

	exercises, err := h.repo.List(ctx, auth.UserIDFromContext(ctx), routineID)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		pkg.WriteJSONError(w, "failed to fetch exercises", http.StatusInternalServerError)
		return
	}
	if exercises == nil {
		exercises = []Exercise{}
	}

	pkg.WriteJSONOK(w, exercises)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	id, ok := pkg.PathUUID(r, "id")
	if !ok {
		pkg.WriteJSONError(w, ErrExerciseNotFound.Error(), http.StatusNotFound)
		return
	}

	exercise, err := h.repo.Get(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		writeRepoError(w, "get exercise", err)
		return
	}

	pkg.WriteJSONOK(w, exercise)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.create")
	defer span.End()

	var req createExerciseRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}
	req.CustomName = pkg.TrimToNil(req.CustomName)
	if err := pkg.ValidateStruct(&req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}
	if (req.PredefinedExerciseID == nil) == (req.CustomName == nil) {
		pkg.WriteJSONError(w, ErrInvalidIdentity.Error(), http.StatusBadRequest)
		return
	}

	routineID, _ := pkg.ParseUUID(req.RoutineID)
	exercise, err := h.repo.Create(ctx, auth.UserIDFromContext(ctx), NewExercise{
		RoutineID:            routineID,
		PredefinedExerciseID: req.PredefinedExerciseID,
		CustomName:           req.CustomName,
		DisplayOrder:         req.DisplayOrder,
	})
	if err != nil {
		writeRepoError(w, "create exercise", err)
		return
	}

	log.Tracef("exercise %s [%s] added to routine %s", exercise.ID, exercise.Name, routineID)
	pkg.WriteJSON(w, exercise, http.StatusCreated)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	id, ok := pkg.PathUUID(r, "id")
	if !ok {
		pkg.WriteJSONError(w, ErrExerciseNotFound.Error(), http.StatusNotFound)
		return
	}

	var req updateExerciseRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}
	if req.CustomName != nil {
		req.CustomName = pkg.TrimToNil(req.CustomName)
		if req.CustomName == nil {
			pkg.WriteJSONError(w, "customName cannot be empty", http.StatusBadRequest)
			return
		}
	}
	if err := pkg.ValidateStruct(&req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}
	if req.PredefinedExerciseID != nil && req.CustomName != nil {
		pkg.WriteJSONError(w, ErrInvalidIdentity.Error(), http.StatusBadRequest)
		return
	}

	update := ExerciseUpdate{
		PredefinedExerciseID: req.PredefinedExerciseID,
		CustomName:           req.CustomName,
		DisplayOrder:         req.DisplayOrder,
	}
	if req.RoutineID != nil {
		routineID, _ := pkg.ParseUUID(*req.RoutineID)
		update.RoutineID = &routineID
	}
	if update.IsEmpty() {
		pkg.WriteJSONError(w, "no fields to update", http.StatusBadRequest)
		return
	}

	exercise, err := h.repo.Update(ctx, auth.UserIDFromContext(ctx), id, update)
	if err != nil {
		writeRepoError(w, "update exercise", err)
		return
	}

	pkg.WriteJSONOK(w, exercise)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	id, ok := pkg.PathUUID(r, "id")
	if !ok {
		pkg.WriteJSONError(w, ErrExerciseNotFound.Error(), http.StatusNotFound)
		return
	}

	if err := h.repo.Delete(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		writeRepoError(w, "delete exercise", err)
		return
	}

	log.Tracef("exercise %s deleted", id)
	pkg.WriteSuccess(w)
}

func writeRepoError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrExerciseNotFound):
		pkg.WriteJSONError(w, ErrExerciseNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, ErrRoutineNotFound):
		pkg.WriteJSONError(w, ErrRoutineNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, ErrPredefinedExerciseNotFound),
		errors.Is(err, ErrDuplicateExercise),
		errors.Is(err, ErrInvalidIdentity):
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s: %s", op, err)
		pkg.WriteJSONError(w, "internal error", http.StatusInternalServerError)
	}
}
