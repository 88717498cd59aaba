// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server implements an MCP server that exposes the access layer
// as tools for AI assistants.
package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tombee/rory/internal/audit"
	"github.com/tombee/rory/internal/gateway"
	"github.com/tombee/rory/internal/log"
)

// Server wraps the MCP server and provides the rory tools.
type Server struct {
	mcpServer   *server.MCPServer
	gateway     *gateway.Gateway
	auditLog    *audit.Log
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server name (default: "rory")
	Name string

	// Version is the build version
	Version string

	// LogLevel controls logging verbosity (debug, info, warn, error)
	LogLevel string
}

// createLogger creates a logger with the specified log level.
// Writes to stderr to avoid interfering with MCP stdio protocol.
func createLogger(levelStr string) (*slog.Logger, error) {
	var level slog.Level

	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", levelStr)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	return log.WithComponent(slog.New(handler), "mcp"), nil
}

// NewServer creates a new MCP server instance over the gateway.
func NewServer(config Config, gw *gateway.Gateway, auditLog *audit.Log) (*Server, error) {
	if config.Name == "" {
		config.Name = "rory"
	}
	if config.Version == "" {
		config.Version = "dev"
	}

	logger, err := createLogger(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	mcpServer := server.NewMCPServer(config.Name, config.Version)

	// 10 mutations/min, 100 calls/min
	rateLimiter := NewRateLimiter(10, 100)

	s := &Server{
		mcpServer:   mcpServer,
		gateway:     gw,
		auditLog:    auditLog,
		rateLimiter: rateLimiter,
		logger:      logger,
	}

	s.registerTools()
	return s, nil
}

// registerTools registers the rory tools with the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "rory_validate",
		Description: "Validate input for an operation without touching the network. Returns the normalized request or structured validation errors.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"operation": map[string]interface{}{
					"type":        "string",
					"description": "Operation kind (people_search, person_enrich, company_search, company_enrich, profile_lookup, tech_lookup, scrape, crawl, campaign_create, campaign_update)",
				},
				"input": map[string]interface{}{
					"type":        "object",
					"description": "Raw operation input to validate",
				},
			},
			Required: []string{"operation", "input"},
		},
	}, s.handleValidate)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "rory_call",
		Description: "Execute an operation through the full pipeline: validation, safety gate, credential resolution, retried HTTP dispatch, and audit. Spend-bearing mutations require confirm=true and always land in a non-spending campaign status.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"operation": map[string]interface{}{
					"type":        "string",
					"description": "Operation kind to execute",
				},
				"input": map[string]interface{}{
					"type":        "object",
					"description": "Raw operation input",
				},
				"confirm": map[string]interface{}{
					"type":        "boolean",
					"description": "Explicit confirmation for spend-bearing mutations (default false)",
				},
			},
			Required: []string{"operation", "input"},
		},
	}, s.handleCall)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "rory_audit_tail",
		Description: "Read the most recent audit entries for mutating calls, optionally filtered by platform or restricted to errors.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"n": map[string]interface{}{
					"type":        "number",
					"description": "Number of entries to return (default 20)",
				},
				"platform": map[string]interface{}{
					"type":        "string",
					"description": "Filter to one platform (e.g. google_ads)",
				},
				"errors_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only rejected and failed entries",
				},
			},
		},
	}, s.handleAuditTail)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "rory_doctor",
		Description: "Check which provider credentials are configured and whether the safety limits file loads cleanly. Never reveals credential values.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleDoctor)
}

// Start runs the server in stdio mode until the client disconnects.
func (s *Server) Start() error {
	s.logger.Info("starting MCP server", "mode", "stdio")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	s.logger.Info("MCP server stopped")
	return nil
}

// textResponse creates a successful text response.
func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// errorResponse creates an error response.
func errorResponse(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: message},
		},
		IsError: true,
	}
}
