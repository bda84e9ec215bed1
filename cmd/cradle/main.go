// Cradle: baby activity tracking MCP server.
//
// Tracks sleep, feedings, pumping, activities, diapers, growth,
// temperature and medicines for one or more children, backed by a
// local SQLite database and exposed as MCP tools over stdio.
//
// Usage:
//
//	cradle serve     # Start MCP server (stdio transport)
//	cradle version   # Print version
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jvbaena/cradle/internal/config"
	"github.com/jvbaena/cradle/internal/logging"
	"github.com/jvbaena/cradle/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("cradle v%s\n", server.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, logCleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logCleanup()

	s, cleanup, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	return mcpserver.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Cradle v%s — baby activity tracking MCP server

Usage:
  cradle serve     Start the MCP server (stdio transport)
  cradle version   Print version

Configuration (environment, .env supported):
  CRADLE_DATA_DIR  Directory for the SQLite database (default ~/.cradle)
  LOG_LEVEL        debug | info | warn | error (default info)
  LOG_FILE         Optional log file, in addition to stderr

MCP client config:

  {
    "mcpServers": {
      "cradle": {
        "command": "cradle",
        "args": ["serve"]
      }
    }
  }
`, server.Version)
}
