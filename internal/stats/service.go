package stats

import (
	"context"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type statsRepo interface {
	Records(ctx context.Context, userID uuid.UUID, from, to time.Time, filter RecordFilter) ([]SetRecord, error)
	Totals(ctx context.Context, userID uuid.UUID, from, to time.Time) (Totals, error)
}

// TrendsQuery is a validated trends request. Days of 0 means the
// granularity default.
type TrendsQuery struct {
	Granularity Granularity
	Days        int
	ExerciseIDs []uuid.UUID
	RoutineID   *uuid.UUID
}

// Service computes stats in one configured time zone.
type Service struct {
	repo           statsRepo
	location       *time.Location
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(repo statsRepo, location *time.Location, metricsManager *metrics.Manager) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		repo:           repo,
		location:       location,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (s *Service) Location() *time.Location {
	return s.location
}

func (s *Service) Now() time.Time {
	return s.now().In(s.location)
}

// General summarizes the day holding date (today when nil).
func (s *Service) General(ctx context.Context, userID uuid.UUID, date *time.Time) (_ *GeneralStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.general")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("general", time.Now())

	day := s.Now()
	if date != nil {
		day = *date
	}
	start := StartOfDay(day, s.location)
	end := start.AddDate(0, 0, 1)
	span.SetAttributes(attribute.String("date", start.Format(dateLayout)))

	records, err := s.repo.Records(ctx, userID, start, end, RecordFilter{})
	if err != nil {
		return nil, err
	}
	yesterday, err := s.repo.Totals(ctx, userID, start.AddDate(0, 0, -1), start)
	if err != nil {
		return nil, err
	}
	week, err := s.repo.Totals(ctx, userID, start.AddDate(0, 0, -7), start)
	if err != nil {
		return nil, err
	}

	general := BuildGeneral(start, records, yesterday, week)
	return &general, nil
}

// Calendar buckets the given month. Callers validate year and month.
func (s *Service) Calendar(ctx context.Context, userID uuid.UUID, year int, month time.Month) (_ *CalendarStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.calendar")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("calendar", time.Now())
	span.SetAttributes(attribute.Int("year", year), attribute.Int("month", int(month)))

	from, to := MonthRange(year, month, s.location)
	records, err := s.repo.Records(ctx, userID, from, to, RecordFilter{})
	if err != nil {
		return nil, err
	}

	calendar := BuildCalendar(year, month, records, s.location)
	return &calendar, nil
}

func (s *Service) Trends(ctx context.Context, userID uuid.UUID, query TrendsQuery) (_ *TrendStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.trends")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("trends", time.Now())
	span.SetAttributes(
		attribute.String("granularity", string(query.Granularity)),
		attribute.Int("days", query.Days),
	)

	now := s.Now()
	start := WindowStart(now, query.Granularity, query.Days, s.location)
	records, err := s.repo.Records(ctx, userID, start, now, RecordFilter{
		ExerciseIDs: query.ExerciseIDs,
		RoutineID:   query.RoutineID,
	})
	if err != nil {
		return nil, err
	}

	trends := BuildTrends(query.Granularity, start, now, records, s.location)
	return &trends, nil
}

func (s *Service) observe(statsType string, begin time.Time) {
	if s.metricsManager == nil {
		return
	}
	s.metricsManager.HistogramStatsDuration.WithLabelValues(statsType).Observe(time.Since(begin).Seconds())
}
