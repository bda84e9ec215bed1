// Package server wires the store and all tool handlers into an MCP
// server instance. This is the composition root: it creates concrete
// implementations and injects them into the tools that use them. No
// business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jvbaena/cradle/internal/config"
	"github.com/jvbaena/cradle/internal/store"
	"github.com/jvbaena/cradle/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// toolSet is a domain handler: a set of tool definitions dispatched to
// one Handle func by tool name.
type toolSet interface {
	Definitions() []mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New creates and configures the MCP server with every tracking tool
// registered. The returned cleanup function closes the database and
// must be called on shutdown (typically via defer). It is always
// non-nil and safe to call.
func New(cfg *config.Config, logger *slog.Logger) (*server.MCPServer, func(), error) {
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, func() {}, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Warn("store close", "error", err)
		}
	}

	s := server.NewMCPServer(
		"cradle",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)

	for _, set := range []toolSet{
		tools.NewChildTools(st),
		tools.NewSleepTools(st),
		tools.NewFeedingTools(st),
		tools.NewPumpingTools(st),
		tools.NewActivityTools(st),
		tools.NewDiaperTools(st),
		tools.NewGrowthTools(st),
		tools.NewTemperatureTools(st),
		tools.NewMedicineTools(st),
		tools.NewSummaryTools(st),
	} {
		for _, def := range set.Definitions() {
			s.AddTool(def, set.Handle)
		}
	}

	logger.Info("server configured", "dataDir", cfg.DataDir, "version", Version)
	return s, cleanup, nil
}

const serverInstructions = `Cradle tracks a baby's daily care: sleep, feedings, pumping,
activities, diapers, growth, temperature and medicines.

Start by creating a child profile with create-child; every other tool
takes that child's id. Interval events (sleep, breastfeeding, pumping,
activities) can be tracked live with start-*/end-* or recorded after
the fact with log-*. Instant events (diapers, growth, temperature,
medicine doses) only have log-*.

query-*-records tools accept startDate/endDate (default: the last
7 days), limit/offset pagination and includeSummary for page-scoped
aggregates. get-daily-summary merges one day's events across all
domains into a single timeline.`
