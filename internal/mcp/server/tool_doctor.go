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

package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/rory/internal/config"
	"github.com/tombee/rory/internal/credentials"
	"github.com/tombee/rory/internal/provider"
)

// CredentialStatus reports one provider's credential state without
// exposing any value.
type CredentialStatus struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
	Hint       string `json:"hint,omitempty"`
}

// DoctorResult is the rory_doctor tool output.
type DoctorResult struct {
	Credentials  []CredentialStatus `json:"credentials"`
	ConfigPath   string             `json:"config_path"`
	ConfigOK     bool               `json:"config_ok"`
	ConfigError  string             `json:"config_error,omitempty"`
	AuditLogPath string             `json:"audit_log_path"`
}

// handleDoctor implements the rory_doctor tool.
func (s *Server) handleDoctor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	result := DoctorResult{
		AuditLogPath: s.auditLog.Path(),
	}

	broker := s.gateway.Broker()
	for _, name := range provider.Names() {
		status := CredentialStatus{Provider: name}
		if broker.Has(ctx, name) {
			status.Configured = true
		} else {
			status.Hint = "set " + credentials.FallbackChain(name)[0]
		}
		result.Credentials = append(result.Credentials, status)
	}

	configPath, err := config.ConfigPath()
	if err == nil {
		result.ConfigPath = configPath
		if _, err := config.Load(configPath); err != nil {
			result.ConfigError = err.Error()
		} else {
			result.ConfigOK = true
		}
	} else {
		result.ConfigError = err.Error()
	}

	return jsonResponse(result)
}
