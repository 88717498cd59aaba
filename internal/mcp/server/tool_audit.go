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
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/rory/internal/audit"
)

// handleAuditTail implements the rory_audit_tail tool.
func (s *Server) handleAuditTail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	n := req.GetInt("n", 20)
	if n < 1 || n > 1000 {
		return errorResponse("'n' must be between 1 and 1000"), nil
	}

	filter := audit.Filter{
		Platform:   req.GetString("platform", ""),
		ErrorsOnly: req.GetBool("errors_only", false),
	}

	entries, err := s.auditLog.Tail(n, filter)
	if err != nil {
		return errorResponse(fmt.Sprintf("Failed to read audit log: %v", err)), nil
	}

	return jsonResponse(map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
