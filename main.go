package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tgui-docs/mcp-server/internal/config"
	"github.com/tgui-docs/mcp-server/tools"
)

const (
	version     = "0.3.0"
	serverName  = "tguidoc-mcp-server"
	description = "MCP server for TGUI API documentation lookup"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("%s version %s\n", serverName, version)
		os.Exit(0)
	}

	// MCP uses stdout for protocol
	log.SetOutput(os.Stderr)
	log.Printf("%s v%s starting (%s)...", serverName, version, description)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	tools.Configure(cfg)
	log.Printf("Documentation root: %s (%d shard(s) configured)", cfg.Docs.BaseURL, len(cfg.Docs.Shards))

	ctx := context.Background()
	server := createMCPServer()
	registerTools(ctx, server)

	log.Printf("✓ Server ready and waiting for connections")

	defer func() {
		if err := tools.CloseDocSearch(); err != nil {
			log.Printf("Error closing doc search: %v", err)
		}
	}()

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func createMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		nil, // Default options
	)

	log.Printf("Server initialized: %s v%s", serverName, version)
	return server
}

// registerTools registers all MCP tools
func registerTools(ctx context.Context, server *mcp.Server) {
	toolCount := 0

	tools.RegisterValidationTools(server)
	toolCount++

	tools.RegisterLookupTools(server)
	toolCount += 2

	if err := tools.RegisterDocSearchTools(ctx, server); err != nil {
		log.Printf("Warning: Failed to register doc search tools: %v", err)
		log.Printf("Full-text search will be unavailable")
	} else {
		toolCount += 2
	}

	log.Printf("✓ All tools registered: %d tools (validation + lookup + doc search)", toolCount)
}
