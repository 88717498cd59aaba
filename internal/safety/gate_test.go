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

package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/rory/internal/config"
	"github.com/tombee/rory/internal/request"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Budgets["google_ads"] = config.PlatformLimits{
		MaxDailyBudget: 50,
		MaxTotalBudget: 500,
		MaxCPCBid:      2,
	}
	cfg.Budgets["linkedin_ads"] = config.PlatformLimits{
		MaxDailyBudget: 100,
		MaxTotalBudget: 1000,
		MaxCPCBid:      5,
	}
	return cfg
}

func floatPtr(f float64) *float64 { return &f }

func TestAuthorize_BudgetExceededBeforeConfirmation(t *testing.T) {
	gate := NewGate(testConfig())

	// Over the ceiling AND unconfirmed: the ceiling rejection wins.
	d := gate.Authorize(request.CampaignCreate{
		Platform: "google_ads",
		Name:     "Launch",
		Budget:   100,
	}, Context{Confirmed: false})

	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonBudgetExceeded, d.Reason)
	assert.Nil(t, d.Request)
	assert.Contains(t, d.Message, "$100.00")
	assert.Contains(t, d.Message, "$50.00")
}

func TestAuthorize_ConfirmationRequired(t *testing.T) {
	gate := NewGate(testConfig())

	d := gate.Authorize(request.CampaignCreate{
		Platform: "google_ads",
		Name:     "Launch",
		Budget:   30,
	}, Context{Confirmed: false})

	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonConfirmationRequired, d.Reason)
	assert.Contains(t, d.Message, "--confirm")
}

func TestAuthorize_CreateForcesPausedStatus(t *testing.T) {
	gate := NewGate(testConfig())

	// Status omitted.
	d := gate.Authorize(request.CampaignCreate{
		Platform: "google_ads",
		Name:     "Launch",
		Budget:   30,
	}, Context{Confirmed: true})
	require.True(t, d.Allowed)
	assert.Equal(t, "PAUSED", d.Request.(request.CampaignCreate).Status)
	assert.True(t, d.StatusRewritten)

	// Caller explicitly asked for ENABLED; still forced down.
	d = gate.Authorize(request.CampaignCreate{
		Platform: "google_ads",
		Name:     "Launch",
		Budget:   30,
		Status:   "ENABLED",
	}, Context{Confirmed: true})
	require.True(t, d.Allowed)
	assert.Equal(t, "PAUSED", d.Request.(request.CampaignCreate).Status)
	assert.True(t, d.StatusRewritten)
}

func TestAuthorize_PausedStatusIsPerPlatform(t *testing.T) {
	gate := NewGate(testConfig())

	d := gate.Authorize(request.CampaignCreate{
		Platform: "linkedin_ads",
		Name:     "Launch",
	}, Context{})
	require.True(t, d.Allowed)
	assert.Equal(t, "DRAFT", d.Request.(request.CampaignCreate).Status)
}

func TestAuthorize_ZeroBudgetCreateAllowedWithoutConfirmation(t *testing.T) {
	gate := NewGate(testConfig())

	d := gate.Authorize(request.CampaignCreate{
		Platform: "google_ads",
		Name:     "Draft shell",
	}, Context{Confirmed: false})
	assert.True(t, d.Allowed)
}

func TestAuthorize_TotalBudgetCeiling(t *testing.T) {
	gate := NewGate(testConfig())

	d := gate.Authorize(request.CampaignCreate{
		Platform:    "google_ads",
		Name:        "Launch",
		TotalBudget: 9000,
	}, Context{Confirmed: true})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonBudgetExceeded, d.Reason)
}

func TestAuthorize_CPCBidClamped(t *testing.T) {
	gate := NewGate(testConfig())

	d := gate.Authorize(request.CampaignCreate{
		Platform: "google_ads",
		Name:     "Launch",
		CPCBid:   10,
	}, Context{})
	require.True(t, d.Allowed)
	assert.True(t, d.CPCClamped)
	assert.Equal(t, 2.0, d.Request.(request.CampaignCreate).CPCBid)
}

func TestAuthorize_UpdateBudgetDecreaseAllowed(t *testing.T) {
	gate := NewGate(testConfig())

	d := gate.Authorize(request.CampaignUpdate{
		Platform:   "google_ads",
		CampaignID: "c-1",
		Budget:     floatPtr(10),
	}, Context{Confirmed: false, CurrentBudget: floatPtr(40)})
	assert.True(t, d.Allowed)
}

func TestAuthorize_UpdateBudgetIncreaseNeedsConfirmation(t *testing.T) {
	gate := NewGate(testConfig())

	d := gate.Authorize(request.CampaignUpdate{
		Platform:   "google_ads",
		CampaignID: "c-1",
		Budget:     floatPtr(45),
	}, Context{Confirmed: false, CurrentBudget: floatPtr(10)})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonConfirmationRequired, d.Reason)

	d = gate.Authorize(request.CampaignUpdate{
		Platform:   "google_ads",
		CampaignID: "c-1",
		Budget:     floatPtr(45),
	}, Context{Confirmed: true, CurrentBudget: floatPtr(10)})
	assert.True(t, d.Allowed)
}

func TestAuthorize_UpdateUnknownCurrentBudgetIsConservative(t *testing.T) {
	gate := NewGate(testConfig())

	d := gate.Authorize(request.CampaignUpdate{
		Platform:   "google_ads",
		CampaignID: "c-1",
		Budget:     floatPtr(20),
	}, Context{Confirmed: false})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonConfirmationRequired, d.Reason)
}

func TestAuthorize_UpdateActivationNeedsConfirmation(t *testing.T) {
	gate := NewGate(testConfig())

	d := gate.Authorize(request.CampaignUpdate{
		Platform:   "google_ads",
		CampaignID: "c-1",
		Status:     "ENABLED",
	}, Context{Confirmed: false})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonConfirmationRequired, d.Reason)
	assert.Contains(t, d.Message, "activation")

	d = gate.Authorize(request.CampaignUpdate{
		Platform:   "google_ads",
		CampaignID: "c-1",
		Status:     "ENABLED",
	}, Context{Confirmed: true})
	assert.True(t, d.Allowed)
}

func TestAuthorize_UpdatePauseAllowedWithoutConfirmation(t *testing.T) {
	gate := NewGate(testConfig())

	// Pausing reduces risk; never needs confirmation.
	d := gate.Authorize(request.CampaignUpdate{
		Platform:   "google_ads",
		CampaignID: "c-1",
		Status:     "PAUSED",
	}, Context{Confirmed: false})
	assert.True(t, d.Allowed)
}

func TestAuthorize_UpdateBudgetOverCeilingRejected(t *testing.T) {
	gate := NewGate(testConfig())

	d := gate.Authorize(request.CampaignUpdate{
		Platform:   "google_ads",
		CampaignID: "c-1",
		Budget:     floatPtr(500),
	}, Context{Confirmed: true})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonBudgetExceeded, d.Reason)
}

func TestAuthorize_DefaultConfigIsMaximallySafe(t *testing.T) {
	// Zero-budget ceilings out of the box: any spend is rejected.
	gate := NewGate(config.Default())

	d := gate.Authorize(request.CampaignCreate{
		Platform: "google_ads",
		Name:     "Launch",
		Budget:   1,
	}, Context{Confirmed: true})
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonBudgetExceeded, d.Reason)
}

func TestAuthorize_NonMutatingPassesThrough(t *testing.T) {
	gate := NewGate(config.Default())

	req := request.Scrape{URL: "https://example.com"}
	d := gate.Authorize(req, Context{})
	assert.True(t, d.Allowed)
	assert.Equal(t, req, d.Request)
}

func TestPausedStatus(t *testing.T) {
	assert.Equal(t, "PAUSED", PausedStatus("google_ads"))
	assert.Equal(t, "DRAFT", PausedStatus("linkedin_ads"))
	assert.Equal(t, "PAUSED", PausedStatus("unknown"))
}
