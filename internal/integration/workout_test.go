//go:build integration_test

package integration

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/catalog"
	"github.com/2beens/fittrack/internal/exercises"
	"github.com/2beens/fittrack/internal/routines"
	"github.com/2beens/fittrack/internal/sets"
	"github.com/2beens/fittrack/internal/stats"
	"github.com/2beens/fittrack/internal/users"
)

func (s *IntegrationTestSuite) TestWorkoutFlow() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()
	dev := s.devSession()

	var groups []catalog.MuscleGroup
	s.do(ctx, session{}, http.MethodGet, "/api/exercises/predefined", nil, http.StatusOK, &groups)
	require.Len(t, groups, 7)
	require.NotEmpty(t, groups[0].Exercises)
	predefined := groups[0].Exercises[0]

	var routine routines.Routine
	s.do(ctx, dev, http.MethodPost, "/api/routines", map[string]any{"name": "  Evening  "}, http.StatusCreated, &routine)
	assert.Equal(t, "Evening", routine.Name)
	assert.Empty(t, routine.Exercises)

	// names are unique per user
	s.do(ctx, dev, http.MethodPost, "/api/routines", map[string]any{"name": "Evening"}, http.StatusBadRequest, nil)

	var fromCatalog exercises.Exercise
	s.do(ctx, dev, http.MethodPost, "/api/exercises", map[string]any{
		"routineId":            routine.ID,
		"predefinedExerciseId": predefined.ID,
	}, http.StatusCreated, &fromCatalog)
	assert.Equal(t, predefined.Name, fromCatalog.Name)
	assert.Equal(t, groups[0].Name, fromCatalog.MuscleGroup)
	assert.Equal(t, 0, fromCatalog.DisplayOrder)

	var custom exercises.Exercise
	s.do(ctx, dev, http.MethodPost, "/api/exercises", map[string]any{
		"routineId":  routine.ID,
		"customName": "Wall Sit",
	}, http.StatusCreated, &custom)
	assert.Equal(t, "Wall Sit", custom.Name)
	assert.Equal(t, exercises.CustomMuscleGroup, custom.MuscleGroup)
	assert.Equal(t, 1, custom.DisplayOrder)

	s.do(ctx, dev, http.MethodPost, "/api/exercises", map[string]any{
		"routineId":            routine.ID,
		"predefinedExerciseId": predefined.ID,
		"customName":           "both",
	}, http.StatusBadRequest, nil)

	s.do(ctx, dev, http.MethodGet, "/api/routines/"+routine.ID.String(), nil, http.StatusOK, &routine)
	require.Len(t, routine.Exercises, 2)
	assert.Equal(t, fromCatalog.ID, routine.Exercises[0].ID)

	var last sets.LastSet
	s.do(ctx, dev, http.MethodGet, "/api/sets/last?exerciseId="+custom.ID.String(), nil, http.StatusOK, &last)
	assert.Nil(t, last.Reps)

	for _, reps := range []int{10, 12} {
		s.do(ctx, dev, http.MethodPost, "/api/sets", map[string]any{
			"exerciseId": fromCatalog.ID,
			"reps":       reps,
		}, http.StatusCreated, nil)
	}
	var customSet sets.Set
	s.do(ctx, dev, http.MethodPost, "/api/sets", map[string]any{
		"exerciseId": custom.ID,
		"reps":       30,
		"note":       "shaky",
	}, http.StatusCreated, &customSet)
	assert.Equal(t, "Evening", customSet.Exercise.RoutineName)

	s.do(ctx, dev, http.MethodPost, "/api/sets", map[string]any{
		"exerciseId": custom.ID,
		"reps":       5,
		"loggedAt":   time.Now().Add(time.Hour).Format(time.RFC3339),
	}, http.StatusBadRequest, nil)

	s.do(ctx, dev, http.MethodGet, "/api/sets/last?exerciseId="+custom.ID.String(), nil, http.StatusOK, &last)
	require.NotNil(t, last.Reps)
	assert.Equal(t, 30, *last.Reps)
	require.NotNil(t, last.Note)
	assert.Equal(t, "shaky", *last.Note)

	var list []sets.Set
	s.do(ctx, dev, http.MethodGet, "/api/sets?exerciseId="+fromCatalog.ID.String(), nil, http.StatusOK, &list)
	require.Len(t, list, 2)
	assert.Equal(t, 12, list[0].Reps)

	var general stats.GeneralStats
	s.do(ctx, dev, http.MethodGet, "/api/stats?type=general", nil, http.StatusOK, &general)
	assert.Equal(t, 3, general.Today.TotalSets)
	assert.Equal(t, 52, general.Today.TotalReps)
	sum := 0
	for _, ex := range general.Today.Exercises {
		sum += ex.Reps
	}
	assert.Equal(t, general.Today.TotalReps, sum)
	require.Len(t, general.Today.Routines, 1)
	assert.Equal(t, routine.ID, general.Today.Routines[0].ID)

	now := time.Now().UTC()
	var calendar stats.CalendarStats
	s.do(ctx, dev, http.MethodGet,
		fmt.Sprintf("/api/stats/calendar?year=%d&month=%d", now.Year(), int(now.Month())),
		nil, http.StatusOK, &calendar)
	assert.Len(t, calendar.Days, time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day())
	today := calendar.Days[now.Day()-1]
	assert.Equal(t, 52, today.Reps)
	assert.Equal(t, 4, today.Intensity)
	assert.Equal(t, 1, calendar.Summary.ActiveDays)

	var trends stats.TrendStats
	s.do(ctx, dev, http.MethodGet, "/api/stats/trends?granularity=week&days=14", nil, http.StatusOK, &trends)
	require.Len(t, trends.Timeline, 1)
	assert.Equal(t, 52, trends.Timeline[0].TotalReps)
	assert.Len(t, trends.Exercises, 2)

	// deleting the routine takes exercises and sets with it
	s.do(ctx, dev, http.MethodDelete, "/api/routines/"+routine.ID.String(), nil, http.StatusOK, nil)
	s.do(ctx, dev, http.MethodGet, "/api/exercises/"+custom.ID.String(), nil, http.StatusNotFound, nil)
	s.do(ctx, dev, http.MethodGet, "/api/sets/"+customSet.ID.String(), nil, http.StatusNotFound, nil)
}

func (s *IntegrationTestSuite) TestOwnershipIsolation() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()

	other, err := users.NewRepo(s.dbPool).FindOrCreate(ctx, users.ExternalProfile{
		Provider:   users.ProviderGoogle,
		ProviderID: uuid.NewString(),
		Email:      "other-lifter@example.com",
		Name:       "Other Lifter",
	})
	require.NoError(t, err)
	otherSession := s.sessionFor(other)
	dev := s.devSession()

	var routine routines.Routine
	s.do(ctx, dev, http.MethodPost, "/api/routines", map[string]any{"name": "Private"}, http.StatusCreated, &routine)
	defer s.do(ctx, dev, http.MethodDelete, "/api/routines/"+routine.ID.String(), nil, http.StatusOK, nil)

	var ex exercises.Exercise
	s.do(ctx, dev, http.MethodPost, "/api/exercises", map[string]any{
		"routineId":  routine.ID,
		"customName": "Hidden",
	}, http.StatusCreated, &ex)

	// same name is fine for another user
	var otherRoutine routines.Routine
	s.do(ctx, otherSession, http.MethodPost, "/api/routines", map[string]any{"name": "Private"}, http.StatusCreated, &otherRoutine)

	s.do(ctx, otherSession, http.MethodGet, "/api/routines/"+routine.ID.String(), nil, http.StatusNotFound, nil)
	s.do(ctx, otherSession, http.MethodPut, "/api/routines/"+routine.ID.String(), map[string]any{"name": "Mine"}, http.StatusNotFound, nil)
	s.do(ctx, otherSession, http.MethodGet, "/api/exercises/"+ex.ID.String(), nil, http.StatusNotFound, nil)
	s.do(ctx, otherSession, http.MethodPost, "/api/exercises", map[string]any{
		"routineId":  routine.ID,
		"customName": "Intruder",
	}, http.StatusNotFound, nil)
	s.do(ctx, otherSession, http.MethodPost, "/api/sets", map[string]any{
		"exerciseId": ex.ID,
		"reps":       1,
	}, http.StatusNotFound, nil)
	s.do(ctx, otherSession, http.MethodGet, "/api/sets/last?exerciseId="+ex.ID.String(), nil, http.StatusNotFound, nil)

	var otherRoutines []routines.Routine
	s.do(ctx, otherSession, http.MethodGet, "/api/routines", nil, http.StatusOK, &otherRoutines)
	require.Len(t, otherRoutines, 1)
	assert.Equal(t, otherRoutine.ID, otherRoutines[0].ID)
}

func (s *IntegrationTestSuite) TestDevLoginAndLogout() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverEndpoint+"/api/auth/dev", nil)
	require.NoError(t, err)
	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)
	sess := session{token: token}

	var me users.User
	s.do(ctx, sess, http.MethodGet, "/api/user/me", nil, http.StatusOK, &me)
	assert.Equal(t, users.DevUserEmail, me.Email)
	assert.Equal(t, s.devUser.ID, me.ID)

	s.do(ctx, sess, http.MethodPost, "/api/auth/logout", nil, http.StatusOK, nil)
	s.do(ctx, sess, http.MethodGet, "/api/user/me", nil, http.StatusUnauthorized, nil)
}
