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

package auditlog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/rory/internal/audit"
	"github.com/tombee/rory/internal/commands/shared"
)

// NewCommand creates the audit command
func NewCommand() *cobra.Command {
	var (
		tail       int
		platform   string
		operation  string
		errorsOnly bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent entries from the mutation audit trail",
		Long: `Audit prints the most recent campaign mutation records. Every
entry is redacted before it reaches disk, so output never contains
credential values.`,
		Example: `  rory audit --tail 50
  rory audit --platform google_ads --errors-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(tail, audit.Filter{
				Platform:   platform,
				Operation:  operation,
				ErrorsOnly: errorsOnly,
			})
		},
	}

	cmd.Flags().IntVarP(&tail, "tail", "n", 20, "number of entries to show")
	cmd.Flags().StringVar(&platform, "platform", "", "only entries for this platform")
	cmd.Flags().StringVar(&operation, "operation", "", "only entries for this operation")
	cmd.Flags().BoolVar(&errorsOnly, "errors-only", false, "only rejected and failed entries")

	return cmd
}

func runAudit(tail int, filter audit.Filter) error {
	if tail < 1 {
		return shared.NewInvalidInputError("--tail must be at least 1", nil)
	}

	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	auditLog, err := shared.OpenAuditLog(cfg)
	if err != nil {
		return err
	}

	entries, err := auditLog.Tail(tail, filter)
	if err != nil {
		return shared.NewCallError("reading audit log", err)
	}

	if shared.GetJSON() {
		return shared.PrintJSON(map[string]any{
			"entries": entries,
			"count":   len(entries),
		})
	}

	if len(entries) == 0 {
		fmt.Println("No audit entries found.")
		return nil
	}

	for _, entry := range entries {
		fmt.Println(renderEntry(entry))
	}
	return nil
}

func renderEntry(entry audit.Entry) string {
	ts := entry.Timestamp.Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("%s  %-12s %-15s %s",
		shared.RenderLabel(ts), entry.Platform, entry.Operation, outcomeMarker(entry))
	if entry.Error != "" {
		line += "\n    " + shared.Muted.Render(entry.Error)
	}
	return line
}

func outcomeMarker(entry audit.Entry) string {
	switch entry.Severity {
	case audit.SeverityError:
		return shared.RenderError(string(entry.Outcome))
	case audit.SeverityWarning:
		return shared.RenderWarn(string(entry.Outcome))
	default:
		return shared.RenderOK(string(entry.Outcome))
	}
}
