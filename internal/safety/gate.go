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

// Package safety enforces spend invariants on advertising mutations.
// Every campaign creation or update passes through the gate before any
// provider call; the gate knows nothing about HTTP.
package safety

import (
	"fmt"

	"github.com/tombee/rory/internal/config"
	"github.com/tombee/rory/internal/request"
)

// Reason classifies why a request was rejected.
type Reason string

const (
	ReasonBudgetExceeded       Reason = "budget_exceeded"
	ReasonConfirmationRequired Reason = "confirmation_required"
)

// Decision is the gate's verdict on one mutation request.
type Decision struct {
	// Allowed reports whether the request may proceed
	Allowed bool

	// Reason is set when the request was rejected
	Reason Reason

	// Message is a user-facing explanation with a recovery step
	Message string

	// Request is the (possibly rewritten) request to forward.
	// Nil when rejected.
	Request request.Normalized

	// StatusRewritten is true when the campaign status was forced to
	// the platform's non-spending value
	StatusRewritten bool

	// CPCClamped is true when the bid was lowered to the configured ceiling
	CPCClamped bool
}

// pausedStatus is the authoritative non-spending campaign status per
// platform. Google Ads has no DRAFT campaign status; LinkedIn campaigns
// start in DRAFT and PAUSED only applies after activation.
var pausedStatus = map[string]string{
	"google_ads":   "PAUSED",
	"linkedin_ads": "DRAFT",
}

// PausedStatus returns the non-spending status value for a platform.
func PausedStatus(platform string) string {
	if s, ok := pausedStatus[platform]; ok {
		return s
	}
	return "PAUSED"
}

// activatingStatuses are the status values that would let a campaign spend.
var activatingStatuses = map[string]bool{
	"ENABLED": true,
	"ACTIVE":  true,
}

// Gate evaluates mutation requests against the configured safety limits.
type Gate struct {
	cfg *config.Config
}

// NewGate builds a gate over the given configuration.
func NewGate(cfg *config.Config) *Gate {
	return &Gate{cfg: cfg}
}

// Context carries per-call facts the gate cannot derive from the request.
type Context struct {
	// Confirmed is true when the caller explicitly confirmed spend
	Confirmed bool

	// CurrentBudget is the campaign's existing daily budget, when known.
	// Used to distinguish budget decreases from increases on updates.
	CurrentBudget *float64
}

// Authorize applies the decision table to a mutation request.
// Ceiling violations reject before the confirmation check so the caller
// learns about the hard limit first. Non-mutating requests pass through
// untouched.
func (g *Gate) Authorize(req request.Normalized, callCtx Context) Decision {
	if !req.Mutating() {
		return Decision{Allowed: true, Request: req}
	}

	switch r := req.(type) {
	case request.CampaignCreate:
		return g.authorizeCreate(r, callCtx)
	case request.CampaignUpdate:
		return g.authorizeUpdate(r, callCtx)
	default:
		return Decision{Allowed: true, Request: req}
	}
}

func (g *Gate) authorizeCreate(req request.CampaignCreate, callCtx Context) Decision {
	limits := g.cfg.Limits(req.Platform)

	if req.Budget > limits.MaxDailyBudget {
		return rejectBudget("daily", req.Budget, limits.MaxDailyBudget, req.Platform)
	}
	if req.TotalBudget > limits.MaxTotalBudget {
		return rejectBudget("total", req.TotalBudget, limits.MaxTotalBudget, req.Platform)
	}

	if g.cfg.Safety.RequireConfirmation && req.Budget > 0 && !callCtx.Confirmed {
		return Decision{
			Reason: ReasonConfirmationRequired,
			Message: fmt.Sprintf(
				"campaign with budget $%.2f/day requires explicit confirmation; re-run with --confirm",
				req.Budget),
		}
	}

	out := Decision{Allowed: true}

	if limits.MaxCPCBid > 0 && req.CPCBid > limits.MaxCPCBid {
		req.CPCBid = limits.MaxCPCBid
		out.CPCClamped = true
	}

	// Creations never go live. Regardless of the requested status, the
	// campaign lands in the platform's non-spending state and a human
	// activates it in the provider UI.
	paused := PausedStatus(req.Platform)
	if g.cfg.Safety.ForceDraftMode || req.Status == "" || activatingStatuses[req.Status] {
		if req.Status != paused {
			out.StatusRewritten = true
		}
		req.Status = paused
	}

	out.Request = req
	return out
}

func (g *Gate) authorizeUpdate(req request.CampaignUpdate, callCtx Context) Decision {
	limits := g.cfg.Limits(req.Platform)

	if req.Budget != nil && *req.Budget > limits.MaxDailyBudget {
		return rejectBudget("daily", *req.Budget, limits.MaxDailyBudget, req.Platform)
	}

	activating := activatingStatuses[req.Status]
	budgetIncrease := false
	if req.Budget != nil {
		if callCtx.CurrentBudget != nil {
			budgetIncrease = *req.Budget > *callCtx.CurrentBudget
		} else {
			// Unknown current budget: treat any nonzero request as an
			// increase so confirmation is still required.
			budgetIncrease = *req.Budget > 0
		}
	}

	if g.cfg.Safety.RequireConfirmation && (activating || budgetIncrease) && !callCtx.Confirmed {
		what := "budget increase"
		if activating {
			what = "campaign activation"
		}
		return Decision{
			Reason:  ReasonConfirmationRequired,
			Message: fmt.Sprintf("%s requires explicit confirmation; re-run with --confirm", what),
		}
	}

	return Decision{Allowed: true, Request: req}
}

func rejectBudget(which string, requested, ceiling float64, platform string) Decision {
	return Decision{
		Reason: ReasonBudgetExceeded,
		Message: fmt.Sprintf(
			"%s budget $%.2f exceeds the configured %s ceiling $%.2f; raise max_%s_budget in the safety config",
			which, requested, platform, ceiling, which),
	}
}
