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

package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tombee/rory/internal/audit"
	"github.com/tombee/rory/internal/config"
	"github.com/tombee/rory/internal/credentials"
	"github.com/tombee/rory/internal/gateway"
	"github.com/tombee/rory/internal/log"
)

// LoadConfig loads the safety limits file, honoring the --config flag.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewMissingConfigError("loading config", err)
	}
	return cfg, nil
}

// OpenAuditLog opens the audit trail, preferring the path from config
// over the default state directory.
func OpenAuditLog(cfg *config.Config) (*audit.Log, error) {
	path := cfg.Audit.Path
	if path == "" {
		var err error
		path, err = config.AuditLogPath()
		if err != nil {
			return nil, NewMissingConfigError("resolving audit log path", err)
		}
	}
	auditLog, err := audit.Open(path)
	if err != nil {
		return nil, NewMissingConfigError("opening audit log", err)
	}
	return auditLog, nil
}

// NewGateway builds a fully wired gateway for CLI commands, returning
// the audit log handle alongside for commands that read it directly.
func NewGateway() (*gateway.Gateway, *audit.Log, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	auditLog, err := OpenAuditLog(cfg)
	if err != nil {
		return nil, nil, err
	}
	gw := gateway.New(cfg, auditLog,
		gateway.WithBroker(NewBroker()),
		gateway.WithLogger(NewLogger()))
	return gw, auditLog, nil
}

// NewBroker builds the credential broker used by every surface. The OS
// keychain is included when the platform has one, so values stored with
// "creds set" resolve in calls exactly as they do in "creds check".
func NewBroker() *credentials.Broker {
	keychain, err := credentials.NewKeychain()
	if err != nil {
		return credentials.NewBroker()
	}
	return credentials.NewBroker(credentials.WithKeychain(keychain))
}

// NewLogger builds the CLI logger. Verbose mode lowers the level to
// debug; logs always go to stderr so stdout stays parseable.
func NewLogger() *slog.Logger {
	logCfg := log.FromEnv()
	logCfg.Output = os.Stderr
	if GetVerbose() {
		logCfg.Level = "debug"
	}
	return log.WithComponent(log.New(logCfg), "cli")
}

// ReadInput resolves the --input flag value into raw JSON. The value
// is either a JSON literal, "@path" to read a file, or "-" for stdin.
func ReadInput(input string) (json.RawMessage, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, NewInvalidInputError("no input provided (use --input with JSON, @file, or - for stdin)", nil)
	}

	var data []byte
	switch {
	case input == "-":
		var err error
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, NewInvalidInputError("reading stdin", err)
		}
	case strings.HasPrefix(input, "@"):
		var err error
		data, err = os.ReadFile(input[1:])
		if err != nil {
			return nil, NewInvalidInputError("reading input file", err)
		}
	default:
		data = []byte(input)
	}

	if !json.Valid(data) {
		return nil, NewInvalidInputError("input is not valid JSON", nil)
	}
	return json.RawMessage(data), nil
}

// PrintJSON writes v to stdout as indented JSON.
func PrintJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
