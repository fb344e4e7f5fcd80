package sets

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=sets

type setsRepo interface {
	List(ctx context.Context, userID uuid.UUID, filter Filter) ([]Set, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Set, error)
	Create(ctx context.Context, userID uuid.UUID, newSet NewSet) (*Set, error)
	Update(ctx context.Context, userID, id uuid.UUID, update SetUpdate) (*Set, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Last(ctx context.Context, userID, exerciseID uuid.UUID) (*LastSet, error)
}

type createSetRequest struct {
	ExerciseID string  `json:"exerciseId" validate:"required,uuid"`
	Reps       *int    `json:"reps" validate:"required,gte=0,max=10000"`
	Note       *string `json:"note" validate:"omitempty,max=500"`
	LoggedAt   *string `json:"loggedAt"`
}

type updateSetRequest struct {
	Reps     *int               `json:"reps" validate:"omitempty,gte=0,max=10000"`
	Note     pkg.NullableString `json:"note"`
	LoggedAt *string            `json:"loggedAt"`
}

type Handler struct {
	repo           setsRepo
	metricsManager *metrics.Manager
	location       *time.Location
	now            func() time.Time
}

func NewHandler(repo setsRepo, location *time.Location, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
		location:       location,
		now:            time.Now,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/sets", h.handleList).Methods("GET", "OPTIONS").Name("list-sets")
	router.HandleFunc("/api/sets", h.handleCreate).Methods("POST", "OPTIONS").Name("new-set")
	router.HandleFunc("/api/sets/last", h.handleLast).Methods("GET", "OPTIONS").Name("last-set")
	router.HandleFunc("/api/sets/{id}", h.handleGet).Methods("GET", "OPTIONS").Name("get-set")
	router.HandleFunc("/api/sets/{id}", h.handleUpdate).Methods("PUT", "OPTIONS").Name("update-set")
	router.HandleFunc("/api/sets/{id}", h.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-set")
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sets.list")
	defer span.End()

	filter, err := h.parseFilter(r)
	if err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}

	sets, err := h.repo.List(ctx, auth.UserIDFromContext(ctx), filter)
	if err != nil {
		log.Errorf("list sets: %s", err)
		pkg.WriteJSONError(w, "failed to fetch sets", http.StatusInternalServerError)
		return
	}
	if sets == nil {
		sets = []Set{}
	}

	pkg.WriteJSONOK(w, sets)
}

// parseFilter reads exerciseId plus either a single local day (date) or an
// open or closed range (from, to). A plain date for "to" includes that whole day.
func (h *Handler) parseFilter(r *http.Request) (Filter, error) {
	var filter Filter
	query := r.URL.Query()

	if raw := query.Get("exerciseId"); raw != "" {
		id, ok := pkg.ParseUUID(raw)
		if !ok {
			return filter, pkg.NewBadRequestError("invalid exerciseId")
		}
		filter.ExerciseID = &id
	}

	if raw := query.Get("date"); raw != "" {
		day, ok := pkg.ParseDate(raw, h.location)
		if !ok {
			return filter, pkg.NewBadRequestError("invalid date, expected YYYY-MM-DD")
		}
		next := day.AddDate(0, 0, 1)
		filter.From, filter.To = &day, &next
		return filter, nil
	}

	if raw := query.Get("from"); raw != "" {
		from, ok := pkg.ParseTimestamp(raw, h.location)
		if !ok {
			return filter, pkg.NewBadRequestError("invalid from")
		}
		filter.From = &from
	}
	if raw := query.Get("to"); raw != "" {
		var to time.Time
		if day, ok := pkg.ParseDate(raw, h.location); ok {
			to = day.AddDate(0, 0, 1)
		} else if ts, ok := pkg.ParseTimestamp(raw, h.location); ok {
			to = ts.Add(time.Microsecond)
		} else {
			return filter, pkg.NewBadRequestError("invalid to")
		}
		filter.To = &to
	}

	return filter, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sets.get")
	defer span.End()

	id, ok := pkg.PathUUID(r, "id")
	if !ok {
		pkg.WriteJSONError(w, ErrSetNotFound.Error(), http.StatusNotFound)
		return
	}

	set, err := h.repo.Get(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		writeRepoError(w, "get set", err)
		return
	}

	pkg.WriteJSONOK(w, set)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sets.create")
	defer span.End()

	var req createSetRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}
	req.Note = pkg.TrimToNil(req.Note)
	if err := pkg.ValidateStruct(&req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}

	loggedAt := h.now()
	if req.LoggedAt != nil {
		parsed, err := h.parseLoggedAt(*req.LoggedAt)
		if err != nil {
			pkg.WriteBadRequest(w, err)
			return
		}
		loggedAt = parsed
	}

	exerciseID, _ := pkg.ParseUUID(req.ExerciseID)
	set, err := h.repo.Create(ctx, auth.UserIDFromContext(ctx), NewSet{
		ExerciseID: exerciseID,
		Reps:       *req.Reps,
		Note:       req.Note,
		LoggedAt:   loggedAt,
	})
	if err != nil {
		writeRepoError(w, "create set", err)
		return
	}

	if h.metricsManager != nil {
		h.metricsManager.CounterSetsLogged.Inc()
	}

	log.Tracef("set %s logged: %d reps of %s", set.ID, set.Reps, exerciseID)
	pkg.WriteJSON(w, set, http.StatusCreated)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sets.update")
	defer span.End()

	id, ok := pkg.PathUUID(r, "id")
	if !ok {
		pkg.WriteJSONError(w, ErrSetNotFound.Error(), http.StatusNotFound)
		return
	}

	var req updateSetRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}
	if err := pkg.ValidateStruct(&req); err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}

	update := SetUpdate{
		Reps:    req.Reps,
		NoteSet: req.Note.Present,
		Note:    pkg.TrimToNil(req.Note.Value),
	}
	if update.Note != nil && utf8.RuneCountInString(*update.Note) > 500 {
		pkg.WriteJSONError(w, "note must not exceed 500 characters", http.StatusBadRequest)
		return
	}
	if req.LoggedAt != nil {
		parsed, err := h.parseLoggedAt(*req.LoggedAt)
		if err != nil {
			pkg.WriteBadRequest(w, err)
			return
		}
		update.LoggedAt = &parsed
	}
	if update.IsEmpty() {
		pkg.WriteJSONError(w, "no fields to update", http.StatusBadRequest)
		return
	}

	set, err := h.repo.Update(ctx, auth.UserIDFromContext(ctx), id, update)
	if err != nil {
		writeRepoError(w, "update set", err)
		return
	}

	pkg.WriteJSONOK(w, set)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sets.delete")
	defer span.End()

	id, ok := pkg.PathUUID(r, "id")
	if !ok {
		pkg.WriteJSONError(w, ErrSetNotFound.Error(), http.StatusNotFound)
		return
	}

	if err := h.repo.Delete(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		writeRepoError(w, "delete set", err)
		return
	}

	log.Tracef("set %s deleted", id)
	pkg.WriteSuccess(w)
}

func (h *Handler) handleLast(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sets.last")
	defer span.End()

	raw := r.URL.Query().Get("exerciseId")
	if raw == "" {
		pkg.WriteJSONError(w, "exerciseId is required", http.StatusBadRequest)
		return
	}
	exerciseID, ok := pkg.ParseUUID(raw)
	if !ok {
		pkg.WriteJSONError(w, ErrExerciseNotFound.Error(), http.StatusNotFound)
		return
	}

	last, err := h.repo.Last(ctx, auth.UserIDFromContext(ctx), exerciseID)
	if err != nil {
		writeRepoError(w, "last set", err)
		return
	}

	pkg.WriteJSONOK(w, last)
}

func (h *Handler) parseLoggedAt(raw string) (time.Time, error) {
	loggedAt, ok := pkg.ParseTimestamp(raw, h.location)
	if !ok {
		return time.Time{}, pkg.NewBadRequestError("invalid loggedAt")
	}
	if loggedAt.After(h.now()) {
		return time.Time{}, pkg.NewBadRequestError("loggedAt cannot be in the future")
	}
	return loggedAt, nil
}

func writeRepoError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrSetNotFound):
		pkg.WriteJSONError(w, ErrSetNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, ErrExerciseNotFound):
		pkg.WriteJSONError(w, ErrExerciseNotFound.Error(), http.StatusNotFound)
	default:
		log.Errorf("%s: %s", op, err)
		pkg.WriteJSONError(w, "internal error", http.StatusInternalServerError)
	}
}
