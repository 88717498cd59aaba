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

package mcpserver

import (
	"github.com/spf13/cobra"

	"github.com/tombee/rory/internal/commands/shared"
	"github.com/tombee/rory/internal/mcp/server"
)

// NewCommand creates the mcp-server command
func NewCommand() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Mcp-server exposes the access layer as MCP tools (rory_validate,
rory_call, rory_audit_tail, rory_doctor) for AI assistants. The server
speaks the protocol on stdout, so all logging goes to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(logLevel)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runServer(logLevel string) error {
	gw, auditLog, err := shared.NewGateway()
	if err != nil {
		return err
	}

	version, _, _ := shared.GetVersion()
	srv, err := server.NewServer(server.Config{
		Version:  version,
		LogLevel: logLevel,
	}, gw, auditLog)
	if err != nil {
		return shared.NewCallError("creating MCP server", err)
	}

	return srv.Start()
}
