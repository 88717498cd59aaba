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

	"github.com/tombee/rory/internal/request"
)

// handleCall implements the rory_call tool.
func (s *Server) handleCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	confirm := req.GetBool("confirm", false)

	// Mutations get their own tighter bucket on top of the call bucket.
	if kind == request.KindCampaignCreate || kind == request.KindCampaignUpdate {
		if !s.rateLimiter.AllowMutation() {
			return errorResponse("Mutation rate limit exceeded. Please try again later."), nil
		}
	}

	s.logger.Info("tool call",
		"tool", "rory_call",
		"operation", string(kind),
		"confirm", confirm)

	result, err := s.gateway.Call(ctx, kind, rawInput, confirm)
	if err != nil {
		return errorResponse(err.Error()), nil
	}

	return jsonResponse(result)
}
