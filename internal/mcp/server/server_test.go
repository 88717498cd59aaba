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
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/rory/internal/audit"
	"github.com/tombee/rory/internal/config"
	"github.com/tombee/rory/internal/gateway"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	auditLog, err := audit.Open(filepath.Join(t.TempDir(), "audit.log"))
	if err != nil {
		t.Fatalf("opening audit log: %v", err)
	}

	gw := gateway.New(config.Default(), auditLog)

	s, err := NewServer(Config{LogLevel: "error"}, gw, auditLog)
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	return s
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return text.Text
}

func TestHandleValidate_ValidInput(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleValidate(context.Background(), toolRequest(map[string]any{
		"operation": "people_search",
		"input": map[string]any{
			"titles":         []any{"VP Marketing"},
			"company_domain": "Acme.COM",
		},
	}))
	if err != nil {
		t.Fatalf("handleValidate: %v", err)
	}
	if res.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, res))
	}

	var result ValidationResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if !result.Valid {
		t.Errorf("expected valid result, got issues: %+v", result.Issues)
	}
	if result.Operation != "people_search" {
		t.Errorf("unexpected operation %q", result.Operation)
	}
}

func TestHandleValidate_InvalidInput(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleValidate(context.Background(), toolRequest(map[string]any{
		"operation": "campaign_create",
		"input": map[string]any{
			"platform": "google_ads",
			"name":     "Q3 Launch",
			"budget":   -5,
		},
	}))
	if err != nil {
		t.Fatalf("handleValidate: %v", err)
	}

	var result ValidationResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if result.Valid {
		t.Error("expected invalid result for negative budget")
	}
	if len(result.Issues) == 0 {
		t.Error("expected validation issues")
	}
}

func TestHandleValidate_UnknownOperation(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleValidate(context.Background(), toolRequest(map[string]any{
		"operation": "delete_everything",
		"input":     map[string]any{},
	}))
	if err != nil {
		t.Fatalf("handleValidate: %v", err)
	}
	if !res.IsError {
		t.Error("expected error result for unknown operation")
	}
}

func TestHandleValidate_MissingInput(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleValidate(context.Background(), toolRequest(map[string]any{
		"operation": "people_search",
	}))
	if err != nil {
		t.Fatalf("handleValidate: %v", err)
	}
	if !res.IsError {
		t.Error("expected error result for missing input")
	}
}

func TestHandleAuditTail_Empty(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleAuditTail(context.Background(), toolRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handleAuditTail: %v", err)
	}
	if res.IsError {
		t.Fatalf("expected success, got: %s", resultText(t, res))
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &payload); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if payload.Count != 0 {
		t.Errorf("expected 0 entries, got %d", payload.Count)
	}
}

func TestHandleAuditTail_RejectsBadRange(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleAuditTail(context.Background(), toolRequest(map[string]any{
		"n": 5000,
	}))
	if err != nil {
		t.Fatalf("handleAuditTail: %v", err)
	}
	if !res.IsError {
		t.Error("expected error for out-of-range n")
	}
}

func TestHandleCall_RequiresConfirmationForSpend(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleCall(context.Background(), toolRequest(map[string]any{
		"operation": "campaign_update",
		"input": map[string]any{
			"platform":    "google_ads",
			"campaign_id": "123",
			"status":      "ENABLED",
		},
	}))
	if err != nil {
		t.Fatalf("handleCall: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool-level error: %s", resultText(t, res))
	}

	var result struct {
		Status string `json:"status"`
		Error  *struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if result.Status != "rejected" {
		t.Errorf("expected rejected status, got %q", result.Status)
	}
	if result.Error == nil || result.Error.Kind != "confirmation_required" {
		t.Errorf("expected confirmation_required error, got %+v", result.Error)
	}
}

func TestHandleCall_MutationRateLimit(t *testing.T) {
	s := newTestServer(t)
	s.rateLimiter = NewRateLimiter(1, 100)

	args := map[string]any{
		"operation": "campaign_update",
		"input": map[string]any{
			"platform":    "google_ads",
			"campaign_id": "123",
			"status":      "PAUSED",
		},
	}

	if _, err := s.handleCall(context.Background(), toolRequest(args)); err != nil {
		t.Fatalf("first call: %v", err)
	}

	res, err := s.handleCall(context.Background(), toolRequest(args))
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !res.IsError {
		t.Error("expected mutation rate limit error")
	}
}
