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

package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/rory/internal/commands/auditlog"
	"github.com/tombee/rory/internal/commands/call"
	"github.com/tombee/rory/internal/commands/creds"
	"github.com/tombee/rory/internal/commands/mcpserver"
	"github.com/tombee/rory/internal/commands/shared"
	"github.com/tombee/rory/internal/commands/validate"
	"github.com/tombee/rory/internal/commands/version"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for rory
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rory",
		Short: "rory - safe access layer for marketing APIs",
		Long: `Rory is a command-line gateway to prospecting and advertising APIs
(Apollo, Firecrawl, Google Ads, LinkedIn Ads, and others). Every
request is validated, checked against budget ceilings, retried with
backoff, and, for campaign mutations, written to an audit trail.

Run 'rory creds check' to see which providers are configured.
Run 'rory mcp-server' to expose the same pipeline as MCP tools.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	// Get flag pointers from shared package
	verbose, json, config := shared.RegisterFlagPointers()

	// Add global flags
	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to safety limits file (default: ~/.config/rory/limits.yaml)")

	// Accept underscores in flag names (--errors_only == --errors-only)
	cmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	cmd.AddCommand(validate.NewCommand())
	cmd.AddCommand(call.NewCommand())
	cmd.AddCommand(auditlog.NewCommand())
	cmd.AddCommand(creds.NewCommand())
	cmd.AddCommand(mcpserver.NewCommand())
	cmd.AddCommand(version.NewCommand())

	return cmd
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
