package stats

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type statsService interface {
	General(ctx context.Context, userID uuid.UUID, date *time.Time) (*GeneralStats, error)
	Calendar(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*CalendarStats, error)
	Trends(ctx context.Context, userID uuid.UUID, query TrendsQuery) (*TrendStats, error)
	Location() *time.Location
	Now() time.Time
}

type Handler struct {
	service statsService
}

func NewHandler(service statsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/stats", h.handleByType).Methods("GET", "OPTIONS").Name("stats")
	router.HandleFunc("/api/stats/general", h.handleGeneral).Methods("GET", "OPTIONS").Name("stats-general")
	router.HandleFunc("/api/stats/calendar", h.handleCalendar).Methods("GET", "OPTIONS").Name("stats-calendar")
	router.HandleFunc("/api/stats/trends", h.handleTrends).Methods("GET", "OPTIONS").Name("stats-trends")
}

func (h *Handler) handleByType(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("type") {
	case "", "general":
		h.handleGeneral(w, r)
	case "calendar":
		h.handleCalendar(w, r)
	case "trends":
		h.handleTrends(w, r)
	default:
		pkg.WriteJSONError(w, "type must be one of: general, calendar, trends", http.StatusBadRequest)
	}
}

// handleGeneral breaks the day down per exercise id, so two exercises sharing
// a name in different routines stay separate entries.
func (h *Handler) handleGeneral(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.general")
	defer span.End()

	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, ok := pkg.ParseDate(raw, h.service.Location())
		if !ok {
			pkg.WriteJSONError(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = &parsed
	}

	general, err := h.service.General(ctx, auth.UserIDFromContext(ctx), date)
	if err != nil {
		log.Errorf("general stats: %s", err)
		pkg.WriteJSONError(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, general)
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.calendar")
	defer span.End()

	year, month, err := ParseYearMonth(r.URL.Query().Get("year"), r.URL.Query().Get("month"), h.service.Now())
	if err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}

	calendar, err := h.service.Calendar(ctx, auth.UserIDFromContext(ctx), year, month)
	if err != nil {
		log.Errorf("calendar stats: %s", err)
		pkg.WriteJSONError(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, calendar)
}

func (h *Handler) handleTrends(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.trends")
	defer span.End()

	query := r.URL.Query()
	trendsQuery, err := ParseTrendsQuery(
		query.Get("granularity"), query.Get("days"), query.Get("exerciseIds"), query.Get("routineId"),
	)
	if err != nil {
		pkg.WriteBadRequest(w, err)
		return
	}

	trends, err := h.service.Trends(ctx, auth.UserIDFromContext(ctx), trendsQuery)
	if err != nil {
		log.Errorf("trends stats: %s", err)
		pkg.WriteJSONError(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONOK(w, trends)
}

// ParseYearMonth reads calendar coordinates, defaulting to now's month.
func ParseYearMonth(rawYear, rawMonth string, now time.Time) (int, time.Month, error) {
	year, month := now.Year(), now.Month()

	if rawYear = strings.TrimSpace(rawYear); rawYear != "" {
		y, err := strconv.Atoi(rawYear)
		if err != nil || y < 1 || y > 9999 {
			return 0, 0, pkg.NewBadRequestError("invalid year")
		}
		year = y
	}
	if rawMonth = strings.TrimSpace(rawMonth); rawMonth != "" {
		m, err := strconv.Atoi(rawMonth)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, pkg.NewBadRequestError("month must be between 1 and 12")
		}
		month = time.Month(m)
	}

	return year, month, nil
}

// ParseTrendsQuery validates raw trends parameters. Empty strings mean unset.
func ParseTrendsQuery(rawGranularity, rawDays, rawExerciseIDs, rawRoutineID string) (TrendsQuery, error) {
	var q TrendsQuery

	g, err := ParseGranularity(rawGranularity)
	if err != nil {
		return q, pkg.NewBadRequestError("granularity must be one of: day, week, month")
	}
	q.Granularity = g

	if rawDays = strings.TrimSpace(rawDays); rawDays != "" {
		days, err := strconv.Atoi(rawDays)
		if err != nil || days < 1 || days > MaxTrendDays {
			return q, pkg.NewBadRequestError("days must be a positive integer up to %d", MaxTrendDays)
		}
		q.Days = days
	}

	ids, ok := pkg.QueryUUIDs(rawExerciseIDs)
	if !ok {
		return q, pkg.NewBadRequestError("invalid exerciseIds")
	}
	q.ExerciseIDs = ids

	if rawRoutineID = strings.TrimSpace(rawRoutineID); rawRoutineID != "" {
		id, ok := pkg.ParseUUID(rawRoutineID)
		if !ok {
			return q, pkg.NewBadRequestError("invalid routineId")
		}
		q.RoutineID = &id
	}

	return q, nil
}
