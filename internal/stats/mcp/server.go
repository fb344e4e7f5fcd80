package mcp

import (
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds a read-only MCP server over one user's workout stats.
func NewServer(service statsService, userID uuid.UUID) *mcp.Server {
	h := NewHandler(service, userID)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "fittrack-stats",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_general_stats",
		Description: "Returns the daily summary for a date: total sets and reps, per-exercise and per-routine breakdown, yesterday's totals and the trailing 7-day daily average. Arg: date (YYYY-MM-DD, optional, default today).",
	}, h.GetGeneralStatsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_calendar_stats",
		Description: "Returns one entry per day of a month with sets, reps and a 0-4 intensity level, plus a month summary. Args: year, month (optional, default current month).",
	}, h.GetCalendarStatsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_trends",
		Description: "Returns reps over time grouped by day, ISO week or month, in total and per exercise. Args: granularity (day|week|month), optional days, exercise_ids (comma separated), routine_id.",
	}, h.GetTrendsTool())

	return s
}
