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

package call

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/rory/internal/commands/shared"
	"github.com/tombee/rory/internal/errorcat"
	"github.com/tombee/rory/internal/gateway"
	"github.com/tombee/rory/internal/jq"
	"github.com/tombee/rory/internal/request"
)

// NewCommand creates the call command
func NewCommand() *cobra.Command {
	var (
		input   string
		confirm bool
		jqExpr  string
	)

	cmd := &cobra.Command{
		Use:   "call <operation>",
		Short: "Validate, authorize, and execute a provider request",
		Long: `Call runs a request through the full pipeline: validation, the
safety gate, credential resolution, and the retrying HTTP transport.
Campaign mutations are written to the audit log.

Spending mutations (budget increases, campaign activation) are
rejected unless --confirm is given.`,
		Example: `  rory call people_search --input '{"titles":["VP Marketing"],"company_domain":"acme.com"}'
  rory call campaign_create --input @campaign.json --confirm
  rory call person_enrich --input - < person.json --jq '.person.email'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, args[0], input, confirm, jqExpr)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "request JSON, @file, or - for stdin")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "approve spending mutations")
	cmd.Flags().StringVar(&jqExpr, "jq", "", "jq expression applied to the response data")

	return cmd
}

func runCall(cmd *cobra.Command, operation, input string, confirm bool, jqExpr string) error {
	kind, err := request.ParseKind(operation)
	if err != nil {
		return shared.NewInvalidInputError(err.Error(), nil)
	}

	raw, err := shared.ReadInput(input)
	if err != nil {
		return err
	}

	executor := jq.NewExecutor(0, 0)
	if err := executor.Validate(jqExpr); err != nil {
		return shared.NewInvalidInputError(err.Error(), nil)
	}

	gw, _, err := shared.NewGateway()
	if err != nil {
		return err
	}

	result, err := gw.Call(cmd.Context(), kind, raw, confirm)
	if err != nil {
		return shared.NewCallError("call failed", err)
	}

	switch result.Status {
	case gateway.StatusOK:
		return printSuccess(cmd, result, executor, jqExpr)
	case gateway.StatusRejected:
		printDescriptor(result)
		return shared.NewRejectedError("request rejected")
	default:
		printDescriptor(result)
		return shared.NewCallError("call failed", nil)
	}
}

func printSuccess(cmd *cobra.Command, result *gateway.Result, executor *jq.Executor, jqExpr string) error {
	data, err := executor.Apply(cmd.Context(), jqExpr, result.Data)
	if err != nil {
		return shared.NewCallError("applying jq expression", err)
	}

	if shared.GetJSON() {
		return shared.PrintJSON(map[string]any{
			"status":   result.Status,
			"attempts": result.Attempts,
			"data":     data,
		})
	}
	return shared.PrintJSON(data)
}

func printDescriptor(result *gateway.Result) {
	if result.Error == nil {
		fmt.Fprintln(os.Stderr, "request did not succeed")
		return
	}
	if shared.GetJSON() {
		shared.PrintJSON(result)
		return
	}
	fmt.Fprint(os.Stderr, errorcat.Render(*result.Error))
}
