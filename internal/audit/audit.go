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

// Package audit persists a redacted, append-only trail of every mutating
// provider call. One JSON record per line; secrets never reach disk.
package audit

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal state of a mutating call.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// Severity grades an entry for the viewer.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Entry is one audit record. Payload is redacted before persisting.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Platform  string         `json:"platform"`
	Operation string         `json:"operation"`
	Outcome   Outcome        `json:"outcome"`
	Severity  Severity       `json:"severity"`
	Payload   map[string]any `json:"payload,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// NewEntry stamps a record with an id, timestamp, and the severity
// implied by its outcome.
func NewEntry(platform, operation string, outcome Outcome) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Platform:  platform,
		Operation: operation,
		Outcome:   outcome,
		Severity:  severityFor(outcome),
	}
}

func severityFor(outcome Outcome) Severity {
	switch outcome {
	case OutcomeRejected:
		return SeverityWarning
	case OutcomeFailed:
		return SeverityError
	default:
		return SeverityInfo
	}
}

// RedactionMarker replaces any value whose key names a secret.
const RedactionMarker = "[REDACTED]"

var sensitiveKey = regexp.MustCompile(`(?i)(key|token|secret|password|authorization)`)

// Redact returns a deep copy of payload with every value under a
// secret-bearing key replaced by the redaction marker. Matching is by
// key name, case-insensitive, at any nesting depth.
func Redact(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if sensitiveKey.MatchString(k) {
			out[k] = RedactionMarker
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return Redact(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}
