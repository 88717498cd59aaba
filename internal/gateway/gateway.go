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

// Package gateway runs the full call pipeline: validate, authorize,
// resolve credentials, dispatch with retries, and audit every mutating
// attempt regardless of where it terminates.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/tombee/rory/internal/audit"
	"github.com/tombee/rory/internal/config"
	"github.com/tombee/rory/internal/credentials"
	"github.com/tombee/rory/internal/errorcat"
	"github.com/tombee/rory/internal/log"
	"github.com/tombee/rory/internal/provider"
	"github.com/tombee/rory/internal/request"
	"github.com/tombee/rory/internal/safety"
	"github.com/tombee/rory/internal/transport"
)

// Status discriminates a call result.
type Status string

const (
	StatusOK       Status = "ok"
	StatusRejected Status = "rejected"
	StatusError    Status = "error"
)

// Result is the discriminated outcome of one call.
type Result struct {
	Status Status `json:"status"`

	// Data is the provider response body on success
	Data json.RawMessage `json:"data,omitempty"`

	// Attempts is how many HTTP attempts were made
	Attempts int `json:"attempts,omitempty"`

	// Error describes a rejection or failure with recovery guidance
	Error *errorcat.Descriptor `json:"error,omitempty"`
}

// Gateway wires the access-layer components into one pipeline.
type Gateway struct {
	cfg       *config.Config
	validator *request.Validator
	gate      *safety.Gate
	broker    *credentials.Broker
	client    *transport.Client
	auditLog  *audit.Log
	pacer     *Pacer
	accounts  provider.Accounts
	logger    *slog.Logger

	// baseURLs overrides provider base URLs, used by tests and for
	// API-compatible proxies
	baseURLs map[string]string
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTransport substitutes the HTTP client.
func WithTransport(client *transport.Client) Option {
	return func(g *Gateway) { g.client = client }
}

// WithBroker substitutes the credential broker.
func WithBroker(broker *credentials.Broker) Option {
	return func(g *Gateway) { g.broker = broker }
}

// WithAccounts overrides the ad account identifiers.
func WithAccounts(accounts provider.Accounts) Option {
	return func(g *Gateway) { g.accounts = accounts }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithBaseURL overrides a provider's base URL.
func WithBaseURL(providerName, baseURL string) Option {
	return func(g *Gateway) { g.baseURLs[providerName] = baseURL }
}

// New builds a gateway over the given config and audit log.
func New(cfg *config.Config, auditLog *audit.Log, opts ...Option) *Gateway {
	g := &Gateway{
		cfg:       cfg,
		validator: request.NewValidator(),
		gate:      safety.NewGate(cfg),
		broker:    credentials.NewBroker(),
		client:    transport.NewClient(),
		auditLog:  auditLog,
		pacer:     NewPacer(),
		accounts:  provider.AccountsFromEnv(),
		logger:    slog.Default(),
		baseURLs:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Validate exposes pure validation for the CLI and MCP surfaces.
func (g *Gateway) Validate(kind request.Kind, raw json.RawMessage) (request.Normalized, error) {
	return g.validator.Validate(kind, raw)
}

// Authorize exposes the safety decision without dispatching.
func (g *Gateway) Authorize(req request.Normalized, confirmed bool) safety.Decision {
	return g.gate.Authorize(req, safety.Context{Confirmed: confirmed})
}

// Broker returns the credential broker for diagnostic commands.
func (g *Gateway) Broker() *credentials.Broker {
	return g.broker
}

// Call runs the whole pipeline for one operation. Mutating operations
// produce exactly one audit entry at their terminal state; rejections
// and failures come back as a Result, not an error. The returned error
// is reserved for audit-write failures and context cancellation.
func (g *Gateway) Call(ctx context.Context, kind request.Kind, raw json.RawMessage, confirmed bool) (*Result, error) {
	start := time.Now()

	req, err := g.validator.Validate(kind, raw)
	if err != nil {
		var verr *request.ValidationError
		if errors.As(err, &verr) {
			if mutatingKind(kind) {
				if aerr := g.recordRejection(kind, platformHint(raw), raw, verr.Error()); aerr != nil {
					return nil, aerr
				}
			}
			return &Result{Status: StatusRejected, Error: validationDescriptor(verr)}, nil
		}
		return nil, err
	}

	platform := platformOf(req)

	if req.Mutating() {
		decision := g.gate.Authorize(req, safety.Context{Confirmed: confirmed})
		if !decision.Allowed {
			if aerr := g.recordRejection(kind, platform, raw, decision.Message); aerr != nil {
				return nil, aerr
			}
			return &Result{Status: StatusRejected, Error: rejectionDescriptor(platform, decision)}, nil
		}
		req = decision.Request
		if decision.StatusRewritten {
			g.logger.Info("campaign status forced to non-spending state",
				slog.String(log.PlatformKey, platform),
				slog.String("status", safety.PausedStatus(platform)))
		}
	}

	route, err := provider.Build(req, g.accounts)
	if err != nil {
		return g.finishFailure(kind, req, nil, &errorcat.Descriptor{
			Provider: platform,
			Kind:     errorcat.KindValidationError,
			Summary:  err.Error(),
		})
	}

	desc, err := provider.Lookup(route.Provider)
	if err != nil {
		return nil, err
	}

	headers, err := desc.AuthHeaders(ctx, g.broker)
	if err != nil {
		var missing *credentials.MissingError
		if errors.As(err, &missing) || errors.Is(err, credentials.ErrCredentialMissing) {
			d := errorcat.MissingCredential(route.Provider)
			return g.finishFailure(kind, req, &route, &d)
		}
		d := errorcat.Describe(route.Provider, "401")
		d.Summary = fmt.Sprintf("credential resolution failed: %v", err)
		return g.finishFailure(kind, req, &route, &d)
	}

	if err := g.pacer.Wait(ctx, route.Provider); err != nil {
		return nil, err
	}

	var body []byte
	if route.Body != nil {
		body, err = json.Marshal(route.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	baseURL := desc.BaseURL
	if override, ok := g.baseURLs[route.Provider]; ok {
		baseURL = override
	}

	resp, err := g.client.Do(ctx, &transport.Request{
		Method:  route.Method,
		URL:     baseURL + route.Path,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) {
			d := describeTransport(route.Provider, terr)
			result, aerr := g.finishFailure(kind, req, &route, &d)
			if result != nil {
				result.Attempts = terr.Attempts
			}
			return result, aerr
		}
		return nil, err
	}

	if req.Mutating() {
		entry := audit.NewEntry(route.Provider, string(kind), audit.OutcomeSucceeded)
		entry.Payload = route.Body
		if err := g.auditLog.Record(entry); err != nil {
			return nil, err
		}
	}

	log.WithService(g.logger, route.Provider).Debug("call succeeded",
		slog.String(log.OperationKey, string(kind)),
		slog.Int(log.AttemptKey, resp.Attempts),
		slog.Int64(log.DurationKey, time.Since(start).Milliseconds()))

	return &Result{Status: StatusOK, Data: resp.Body, Attempts: resp.Attempts}, nil
}

// finishFailure audits a terminal failure for mutating operations and
// wraps the descriptor in an error result.
func (g *Gateway) finishFailure(kind request.Kind, req request.Normalized, route *provider.Route, d *errorcat.Descriptor) (*Result, error) {
	if req.Mutating() {
		platform := platformOf(req)
		if route != nil {
			platform = route.Provider
		}
		entry := audit.NewEntry(platform, string(kind), audit.OutcomeFailed)
		if route != nil {
			entry.Payload = route.Body
		}
		entry.Error = d.Summary
		if err := g.auditLog.Record(entry); err != nil {
			return nil, err
		}
	}
	return &Result{Status: StatusError, Error: d}, nil
}

func (g *Gateway) recordRejection(kind request.Kind, platform string, raw json.RawMessage, reason string) error {
	entry := audit.NewEntry(platform, string(kind), audit.OutcomeRejected)
	entry.Error = reason
	var payload map[string]any
	if json.Unmarshal(raw, &payload) == nil {
		entry.Payload = payload
	}
	return g.auditLog.Record(entry)
}

// describeTransport maps a transport failure onto catalog guidance.
func describeTransport(providerName string, terr *transport.Error) errorcat.Descriptor {
	switch terr.Type {
	case transport.ErrorTypeConnection, transport.ErrorTypeTimeout:
		return errorcat.Descriptor{
			Provider: providerName,
			Code:     string(terr.Type),
			Kind:     errorcat.KindNetworkError,
			Summary:  fmt.Sprintf("%s is unreachable: %s", providerName, terr.Message),
			Steps: []string{
				"Check your network connection",
				"Check the provider's status page",
				"Retry in a few minutes",
			},
		}
	case transport.ErrorTypeCancelled:
		return errorcat.Descriptor{
			Provider: providerName,
			Code:     string(terr.Type),
			Kind:     errorcat.KindNetworkError,
			Summary:  "call cancelled before completion",
		}
	default:
		return errorcat.Describe(providerName, strconv.Itoa(terr.StatusCode))
	}
}

// validationDescriptor adapts a validation error into the catalog shape.
func validationDescriptor(verr *request.ValidationError) *errorcat.Descriptor {
	steps := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		if issue.Field != "" {
			steps = append(steps, fmt.Sprintf("Fix %s: %s", issue.Field, issue.Message))
		} else {
			steps = append(steps, issue.Message)
		}
	}
	return &errorcat.Descriptor{
		Code:    "VALIDATION_ERROR",
		Kind:    errorcat.KindValidationError,
		Summary: fmt.Sprintf("invalid %s request", verr.Op),
		Steps:   steps,
	}
}

func rejectionDescriptor(platform string, decision safety.Decision) *errorcat.Descriptor {
	if decision.Reason == safety.ReasonConfirmationRequired {
		return &errorcat.Descriptor{
			Provider: platform,
			Code:     "CONFIRMATION_REQUIRED",
			Kind:     errorcat.KindConfirmationRequired,
			Summary:  decision.Message,
			Steps: []string{
				"Review the request details",
				"Re-run with --confirm to proceed",
			},
		}
	}

	d := errorcat.Describe(platform, "BUDGET_EXCEEDED")
	d.Kind = errorcat.KindBudgetExceeded
	d.Summary = decision.Message
	return &d
}

// platformOf extracts the ad platform from campaign requests; other
// operations report their provider at route time.
func platformOf(req request.Normalized) string {
	switch r := req.(type) {
	case request.CampaignCreate:
		return r.Platform
	case request.CampaignUpdate:
		return r.Platform
	default:
		return ""
	}
}

// platformHint pulls a platform field out of raw input that failed
// validation, so the audit entry still names the target when possible.
func platformHint(raw json.RawMessage) string {
	var probe struct {
		Platform string `json:"platform"`
	}
	if json.Unmarshal(raw, &probe) == nil {
		return probe.Platform
	}
	return ""
}

func mutatingKind(kind request.Kind) bool {
	return kind == request.KindCampaignCreate || kind == request.KindCampaignUpdate
}
