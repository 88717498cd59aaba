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

package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := Open(filepath.Join(t.TempDir(), "state", "audit.log"))
	require.NoError(t, err)
	return log
}

func TestRedact_KeyPatterns(t *testing.T) {
	payload := map[string]any{
		"api_key":       "sk-123",
		"Authorization": "Bearer sk-123",
		"ACCESS_TOKEN":  "tok",
		"clientSecret":  "shh",
		"password":      "hunter2",
		"budget":        100.0,
		"name":          "Q3 Launch",
	}

	redacted := Redact(payload)
	assert.Equal(t, RedactionMarker, redacted["api_key"])
	assert.Equal(t, RedactionMarker, redacted["Authorization"])
	assert.Equal(t, RedactionMarker, redacted["ACCESS_TOKEN"])
	assert.Equal(t, RedactionMarker, redacted["clientSecret"])
	assert.Equal(t, RedactionMarker, redacted["password"])
	assert.Equal(t, 100.0, redacted["budget"])
	assert.Equal(t, "Q3 Launch", redacted["name"])

	// Original payload untouched.
	assert.Equal(t, "sk-123", payload["api_key"])
}

func TestRedact_Nested(t *testing.T) {
	payload := map[string]any{
		"headers": map[string]any{
			"Authorization": "Bearer sk-123",
			"Content-Type":  "application/json",
		},
		"targets": []any{
			map[string]any{"refresh_token": "rt-1", "domain": "acme.com"},
		},
	}

	redacted := Redact(payload)
	headers := redacted["headers"].(map[string]any)
	assert.Equal(t, RedactionMarker, headers["Authorization"])
	assert.Equal(t, "application/json", headers["Content-Type"])

	target := redacted["targets"].([]any)[0].(map[string]any)
	assert.Equal(t, RedactionMarker, target["refresh_token"])
	assert.Equal(t, "acme.com", target["domain"])
}

func TestRecord_NoCredentialSubstringOnDisk(t *testing.T) {
	log := newTestLog(t)

	entry := NewEntry("google_ads", "campaign_create", OutcomeSucceeded)
	entry.Payload = map[string]any{
		"name":          "Launch",
		"developer_key": "sk-123",
		"headers":       map[string]any{"Authorization": "Bearer sk-123"},
	}
	require.NoError(t, log.Record(entry))

	raw, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-123")
	assert.Contains(t, string(raw), RedactionMarker)
	assert.Contains(t, string(raw), "Launch")
}

func TestNewEntry_SeverityTracksOutcome(t *testing.T) {
	assert.Equal(t, SeverityInfo, NewEntry("p", "op", OutcomeSucceeded).Severity)
	assert.Equal(t, SeverityWarning, NewEntry("p", "op", OutcomeRejected).Severity)
	assert.Equal(t, SeverityError, NewEntry("p", "op", OutcomeFailed).Severity)
	assert.NotEmpty(t, NewEntry("p", "op", OutcomeFailed).ID)
}

func TestTail_OrderAndLimit(t *testing.T) {
	log := newTestLog(t)
	for i := 0; i < 5; i++ {
		e := NewEntry("google_ads", "campaign_create", OutcomeSucceeded)
		e.Payload = map[string]any{"seq": i}
		require.NoError(t, log.Record(e))
	}

	entries, err := log.Tail(3, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Chronological order, most recent last.
	assert.Equal(t, float64(2), entries[0].Payload["seq"])
	assert.Equal(t, float64(4), entries[2].Payload["seq"])
}

func TestTail_Filters(t *testing.T) {
	log := newTestLog(t)
	require.NoError(t, log.Record(NewEntry("google_ads", "campaign_create", OutcomeSucceeded)))
	require.NoError(t, log.Record(NewEntry("linkedin_ads", "campaign_update", OutcomeRejected)))
	require.NoError(t, log.Record(NewEntry("google_ads", "campaign_update", OutcomeFailed)))

	byPlatform, err := log.Tail(0, Filter{Platform: "linkedin_ads"})
	require.NoError(t, err)
	require.Len(t, byPlatform, 1)
	assert.Equal(t, OutcomeRejected, byPlatform[0].Outcome)

	byOperation, err := log.Tail(0, Filter{Operation: "campaign_update"})
	require.NoError(t, err)
	assert.Len(t, byOperation, 2)

	errorsOnly, err := log.Tail(0, Filter{ErrorsOnly: true})
	require.NoError(t, err)
	assert.Len(t, errorsOnly, 2)
}

func TestTail_MissingFile(t *testing.T) {
	log, err := Open(filepath.Join(t.TempDir(), "audit.log"))
	require.NoError(t, err)

	entries, err := log.Tail(10, Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTail_SkipsCorruptLines(t *testing.T) {
	log := newTestLog(t)
	require.NoError(t, log.Record(NewEntry("google_ads", "campaign_create", OutcomeSucceeded)))

	f, err := os.OpenFile(log.Path(), os.O_WRONLY|os.O_APPEND, 0o600)
	require.NoError(t, err)
	fmt.Fprintln(f, "{not json")
	require.NoError(t, f.Close())

	require.NoError(t, log.Record(NewEntry("google_ads", "campaign_update", OutcomeSucceeded)))

	entries, err := log.Tail(0, Filter{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecord_ConcurrentWritersDoNotInterleave(t *testing.T) {
	log := newTestLog(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := NewEntry("google_ads", "campaign_create", OutcomeSucceeded)
			e.Payload = map[string]any{"padding": strings.Repeat("x", 2048), "seq": i}
			assert.NoError(t, log.Record(e))
		}(i)
	}
	wg.Wait()

	entries, err := log.Tail(0, Filter{})
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}
