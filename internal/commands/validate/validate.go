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

package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/rory/internal/commands/shared"
	"github.com/tombee/rory/internal/request"
)

// NewCommand creates the validate command
func NewCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "validate <operation>",
		Short: "Validate and normalize a request without sending it",
		Long: `Validate checks a request against the rules for an operation and
prints the normalized form that would be sent. No credentials are
needed and no network call is made.

Operations: ` + strings.Join(kindNames(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], input)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "request JSON, @file, or - for stdin")

	return cmd
}

func runValidate(operation, input string) error {
	kind, err := request.ParseKind(operation)
	if err != nil {
		return shared.NewInvalidInputError(err.Error(), nil)
	}

	raw, err := shared.ReadInput(input)
	if err != nil {
		return err
	}

	normalized, err := request.NewValidator().Validate(kind, raw)
	if err != nil {
		var verr *request.ValidationError
		if errors.As(err, &verr) {
			if shared.GetJSON() {
				shared.PrintJSON(map[string]any{
					"valid":  false,
					"issues": verr.Issues,
				})
			} else {
				fmt.Printf("Invalid %s request:\n", kind)
				for _, issue := range verr.Issues {
					fmt.Printf("  %s: %s\n", issue.Field, issue.Message)
				}
			}
			return shared.NewInvalidInputError("validation failed", nil)
		}
		return shared.NewInvalidInputError("validating request", err)
	}

	if shared.GetJSON() {
		return shared.PrintJSON(map[string]any{
			"valid":      true,
			"operation":  kind,
			"normalized": normalized,
		})
	}

	fmt.Printf("Valid %s request:\n", kind)
	return shared.PrintJSON(normalized)
}

func kindNames() []string {
	kinds := request.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
