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
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/rory/internal/credentials"
)

func TestCheckStatuses_ReportsMatchedKeyAndMaskedValue(t *testing.T) {
	t.Setenv("APOLLO_API_KEY", "")
	t.Setenv("APOLLO_KEY", "sk-apollo-12345")
	t.Setenv("APOLLO_TOKEN", "")
	t.Setenv("CLEARBIT_API_KEY", "")
	t.Setenv("CLEARBIT_KEY", "")
	t.Setenv("CLEARBIT_TOKEN", "")

	broker := credentials.NewBroker(
		credentials.WithEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	statuses := checkStatuses(context.Background(), broker, []string{"apollo", "clearbit"})
	require.Len(t, statuses, 2)

	apollo := statuses[0]
	assert.True(t, apollo.Configured)
	assert.Equal(t, "APOLLO_KEY", apollo.Key)
	assert.Equal(t, "env", apollo.Source)
	assert.Equal(t, "...2345", apollo.Value)

	clearbit := statuses[1]
	assert.False(t, clearbit.Configured)
	assert.Equal(t, "set CLEARBIT_API_KEY", clearbit.Hint)
	assert.Empty(t, clearbit.Value)
}

func TestCheckStatuses_NeverExposesFullValue(t *testing.T) {
	t.Setenv("FIRECRAWL_API_KEY", "fc-super-secret-value")

	broker := credentials.NewBroker(
		credentials.WithEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	statuses := checkStatuses(context.Background(), broker, []string{"firecrawl"})
	require.Len(t, statuses, 1)

	encoded, err := json.Marshal(statuses)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "fc-super-secret-value")
	assert.Equal(t, "...alue", statuses[0].Value)
}

func TestCheckStatuses_ShortValueFullyRedacted(t *testing.T) {
	t.Setenv("BUILTWITH_API_KEY", "abcd")

	broker := credentials.NewBroker(
		credentials.WithEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	statuses := checkStatuses(context.Background(), broker, []string{"builtwith"})
	require.Len(t, statuses, 1)
	assert.Equal(t, "[REDACTED]", statuses[0].Value)
}
