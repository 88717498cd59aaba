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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/rory/internal/request"
)

// ValidationResult is the rory_validate tool output.
type ValidationResult struct {
	Valid      bool            `json:"valid"`
	Operation  string          `json:"operation"`
	Normalized any             `json:"normalized,omitempty"`
	Issues     []request.Issue `json:"issues,omitempty"`
}

// handleValidate implements the rory_validate tool.
func (s *Server) handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	opName, err := req.RequireString("operation")
	if err != nil {
		return errorResponse("Missing or invalid 'operation' argument"), nil
	}

	kind, err := request.ParseKind(opName)
	if err != nil {
		return errorResponse(err.Error()), nil
	}

	rawInput, err := inputArgument(req)
	if err != nil {
		return errorResponse(err.Error()), nil
	}

	result := ValidationResult{Operation: string(kind)}

	normalized, err := s.gateway.Validate(kind, rawInput)
	if err != nil {
		var verr *request.ValidationError
		if errors.As(err, &verr) {
			result.Issues = verr.Issues
		} else {
			result.Issues = []request.Issue{{Message: err.Error()}}
		}
	} else {
		result.Valid = true
		result.Normalized = normalized
	}

	return jsonResponse(result)
}

// inputArgument extracts the raw 'input' object as JSON.
func inputArgument(req mcp.CallToolRequest) (json.RawMessage, error) {
	args := req.GetArguments()
	input, ok := args["input"]
	if !ok {
		return nil, fmt.Errorf("missing 'input' argument")
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("invalid 'input' argument: %w", err)
	}
	return raw, nil
}

func jsonResponse(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return textResponse(string(data)), nil
}
