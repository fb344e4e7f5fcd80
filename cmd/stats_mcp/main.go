// Package main runs the workout stats MCP server over stdio for local use.
// The same tools are mounted on the main backend at /api/mcp for the session user.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/stats"
	statsmcp "github.com/2beens/fittrack/internal/stats/mcp"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/users"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	userEmail := flag.String("user-email", users.DevUserEmail, "email of the user whose stats are served")
	flag.Parse()

	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("location: %v", err)
	}

	ctx := context.Background()
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     os.Getenv("FITTRACK_DB_PASS"),
		TracingEnabled: false,
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	user, err := users.NewRepo(dbPool).GetByEmail(ctx, *userEmail)
	if err != nil {
		log.Fatalf("load user %s: %v", *userEmail, err)
	}

	metricsManager := metrics.NewManager("fittrack", "stats_mcp", prometheus.NewRegistry())
	statsService := stats.NewService(stats.NewRepo(dbPool), loc, metricsManager)
	server := statsmcp.NewServer(statsService, user.ID)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
