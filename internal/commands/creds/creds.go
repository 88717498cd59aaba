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

package creds

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tombee/rory/internal/commands/shared"
	"github.com/tombee/rory/internal/credentials"
	"github.com/tombee/rory/internal/log"
	"github.com/tombee/rory/internal/provider"
)

// NewCommand creates the creds command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage provider credentials",
		Long: `Creds inspects and manages API credentials for the configured
providers. Values resolve from environment variables first, then a
.env file, then the OS keychain. Credential values are never printed.`,
	}

	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newUnsetCommand())

	return cmd
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [provider...]",
		Short: "Show which providers have credentials configured",
		Long: `Check resolves each provider's credential chain and reports the
variable that matched, where it came from (env, .env file, or keychain),
and the value masked down to its last four characters.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}
}

// credStatus is one provider's resolution outcome. Value is always
// masked before it lands here; the full secret never leaves the broker.
type credStatus struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
	Key        string `json:"key,omitempty"`
	Source     string `json:"source,omitempty"`
	Value      string `json:"value,omitempty"`
	Hint       string `json:"hint,omitempty"`
}

// checkStatuses resolves every named provider through the broker.
func checkStatuses(ctx context.Context, broker *credentials.Broker, names []string) []credStatus {
	var statuses []credStatus
	for _, name := range names {
		s := credStatus{Provider: name}
		cred, err := broker.Resolve(ctx, name)
		if err == nil {
			s.Configured = true
			s.Key = cred.Key
			s.Source = string(cred.Source)
			s.Value = log.SanitizeAPIKey(cred.Value)
		} else {
			s.Hint = "set " + credentials.FallbackChain(name)[0]
		}
		statuses = append(statuses, s)
	}
	return statuses
}

func runCheck(cmd *cobra.Command, args []string) error {
	names := provider.Names()
	if len(args) > 0 {
		names = args
		for _, name := range names {
			if _, err := provider.Lookup(name); err != nil {
				return shared.NewInvalidInputError(err.Error(), nil)
			}
		}
	}

	statuses := checkStatuses(cmd.Context(), shared.NewBroker(), names)

	if shared.GetJSON() {
		return shared.PrintJSON(statuses)
	}

	for _, s := range statuses {
		if s.Configured {
			detail := fmt.Sprintf("%s=%s (%s)", s.Key, s.Value, s.Source)
			fmt.Printf("%s %s\n", shared.RenderOK(s.Provider), shared.RenderLabel(detail))
		} else {
			fmt.Printf("%s %s\n", shared.RenderError(s.Provider), shared.RenderLabel(s.Hint))
		}
	}
	return nil
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <provider>",
		Short: "Store a credential in the OS keychain",
		Long: `Set prompts for a credential value with echo disabled and stores
it in the OS keychain under the provider's primary variable name.
Environment variables and .env entries still take precedence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(args[0])
		},
	}
}

func runSet(service string) error {
	if _, err := provider.Lookup(service); err != nil {
		return shared.NewInvalidInputError(err.Error(), nil)
	}

	keychain, err := credentials.NewKeychain()
	if err != nil {
		return shared.NewCallError("opening keychain", err)
	}

	key := credentials.FallbackChain(service)[0]
	fmt.Printf("Enter value for %s (input hidden): ", key)
	value, err := readSecret()
	fmt.Println()
	if err != nil {
		return shared.NewCallError("reading input", err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return shared.NewInvalidInputError("empty credential value", nil)
	}

	if err := keychain.Set(key, value); err != nil {
		return shared.NewCallError("storing credential", err)
	}

	fmt.Println(shared.RenderOK(fmt.Sprintf("stored %s in keychain", key)))
	return nil
}

func newUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <provider>",
		Short: "Remove a credential from the OS keychain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnset(args[0])
		},
	}
}

func runUnset(service string) error {
	if _, err := provider.Lookup(service); err != nil {
		return shared.NewInvalidInputError(err.Error(), nil)
	}

	keychain, err := credentials.NewKeychain()
	if err != nil {
		return shared.NewCallError("opening keychain", err)
	}

	key := credentials.FallbackChain(service)[0]
	if err := keychain.Delete(key); err != nil {
		return shared.NewCallError("removing credential", err)
	}

	fmt.Println(shared.RenderOK(fmt.Sprintf("removed %s from keychain", key)))
	return nil
}

// readSecret reads a line with echo disabled when stdin is a terminal,
// falling back to a plain read for piped input.
func readSecret() (string, error) {
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		value, err := term.ReadPassword(fd)
		return string(value), err
	}

	var value string
	_, err := fmt.Fscanln(os.Stdin, &value)
	return value, err
}
