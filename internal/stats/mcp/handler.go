package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/stats"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type statsService interface {
	General(ctx context.Context, userID uuid.UUID, date *time.Time) (*stats.GeneralStats, error)
	Calendar(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*stats.CalendarStats, error)
	Trends(ctx context.Context, userID uuid.UUID, query stats.TrendsQuery) (*stats.TrendStats, error)
	Location() *time.Location
	Now() time.Time
}

// Handler turns MCP tool calls into stats queries for a fixed user.
type Handler struct {
	service statsService
	userID  uuid.UUID
}

func NewHandler(service statsService, userID uuid.UUID) *Handler {
	return &Handler{
		service: service,
		userID:  userID,
	}
}

type GeneralStatsInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day to summarize (YYYY-MM-DD), default today"`
}

func (h *Handler) GetGeneralStatsTool() func(context.Context, *mcp.CallToolRequest, GeneralStatsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in GeneralStatsInput) (*mcp.CallToolResult, any, error) {
		var date *time.Time
		if in.Date != "" {
			parsed, ok := pkg.ParseDate(in.Date, h.service.Location())
			if !ok {
				return errorResult("Invalid date: use YYYY-MM-DD"), nil, nil
			}
			date = &parsed
		}

		general, err := h.service.General(ctx, h.userID, date)
		if err != nil {
			return errorResult("Error computing general stats: " + err.Error()), nil, nil
		}
		return jsonResult(general), nil, nil
	}
}

type CalendarStatsInput struct {
	Year  int `json:"year,omitempty" jsonschema:"Calendar year, default current"`
	Month int `json:"month,omitempty" jsonschema:"Month 1-12, default current"`
}

func (h *Handler) GetCalendarStatsTool() func(context.Context, *mcp.CallToolRequest, CalendarStatsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in CalendarStatsInput) (*mcp.CallToolResult, any, error) {
		year, month, err := stats.ParseYearMonth(optionalInt(in.Year), optionalInt(in.Month), h.service.Now())
		if err != nil {
			return errorResult("Invalid input: " + err.Error()), nil, nil
		}

		calendar, err := h.service.Calendar(ctx, h.userID, year, month)
		if err != nil {
			return errorResult("Error computing calendar stats: " + err.Error()), nil, nil
		}
		return jsonResult(calendar), nil, nil
	}
}

type TrendsInput struct {
	Granularity string `json:"granularity,omitempty" jsonschema:"day, week or month (default day)"`
	Days        int    `json:"days,omitempty" jsonschema:"Window length in days, default depends on granularity"`
	ExerciseIDs string `json:"exercise_ids,omitempty" jsonschema:"Comma separated exercise ids"`
	RoutineID   string `json:"routine_id,omitempty" jsonschema:"Only sets of this routine"`
}

func (h *Handler) GetTrendsTool() func(context.Context, *mcp.CallToolRequest, TrendsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in TrendsInput) (*mcp.CallToolResult, any, error) {
		query, err := stats.ParseTrendsQuery(in.Granularity, optionalInt(in.Days), in.ExerciseIDs, in.RoutineID)
		if err != nil {
			return errorResult("Invalid input: " + err.Error()), nil, nil
		}

		trends, err := h.service.Trends(ctx, h.userID, query)
		if err != nil {
			return errorResult("Error computing trends: " + err.Error()), nil, nil
		}
		return jsonResult(trends), nil, nil
	}
}

// optionalInt maps the zero value to "unset".
func optionalInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
