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

// Package errorcat maps provider failure codes to a closed error
// taxonomy and concrete recovery steps. Pure lookup tables; nothing
// here touches the network.
package errorcat

import (
	"fmt"
	"strings"
)

// Kind is the closed error taxonomy for the whole access layer.
type Kind string

const (
	KindCredentialMissing    Kind = "credential_missing"
	KindAuthInvalid          Kind = "auth_invalid"
	KindRateLimited          Kind = "rate_limited"
	KindServerError          Kind = "server_error"
	KindNetworkError         Kind = "network_error"
	KindValidationError      Kind = "validation_error"
	KindBudgetExceeded       Kind = "budget_exceeded"
	KindConfirmationRequired Kind = "confirmation_required"
	KindProviderError        Kind = "provider_error"
)

// Retryable reports whether a kind is worth re-attempting unchanged.
func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimited, KindServerError, KindNetworkError:
		return true
	default:
		return false
	}
}

// Descriptor is the user-facing description of one failure.
type Descriptor struct {
	// Provider is the service the failure came from
	Provider string `json:"provider"`

	// Code is the raw provider code or HTTP status, preserved for display
	Code string `json:"code"`

	// Kind is the taxonomy classification
	Kind Kind `json:"kind"`

	// Summary is a one-line cause
	Summary string `json:"summary"`

	// Steps are concrete recovery actions in order
	Steps []string `json:"steps,omitempty"`

	// DocsURL points at the provider's relevant documentation
	DocsURL string `json:"docs_url,omitempty"`

	// RetryAfterSeconds suggests how long to wait before retrying
	RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
}

// Describe looks up recovery guidance for a provider failure code.
// Unknown codes fall back to generic guidance by status, and finally to
// a provider_error descriptor that preserves the raw code.
func Describe(provider, code string) Descriptor {
	code = strings.TrimSpace(code)

	if guides, ok := recoveryGuides[provider]; ok {
		if d, ok := guides[code]; ok {
			d.Provider = provider
			d.Code = code
			d.Kind = categorize(code)
			return d
		}
	}

	if d, ok := genericGuides[code]; ok {
		d.Provider = provider
		d.Code = code
		d.Kind = categorize(code)
		return d
	}

	return Descriptor{
		Provider: provider,
		Code:     code,
		Kind:     KindProviderError,
		Summary:  fmt.Sprintf("%s returned an unrecognized error (code %s)", provider, code),
		Steps: []string{
			"Check the provider's status page",
			"Retry the call; if the code persists, consult the provider documentation",
		},
	}
}

// MissingCredential returns the configuration guidance for a provider
// whose credential could not be resolved.
func MissingCredential(provider string) Descriptor {
	d := Describe(provider, "missing_credential")
	d.Kind = KindCredentialMissing
	if d.Summary == "" || strings.Contains(d.Summary, "unrecognized") {
		d.Summary = fmt.Sprintf("%s credentials not configured", provider)
		d.Steps = []string{
			fmt.Sprintf("Set %s_API_KEY in your environment or .env file", strings.ToUpper(provider)),
			"Restart the agent",
		}
	}
	return d
}

// categorize maps a raw code to its taxonomy kind.
func categorize(code string) Kind {
	switch code {
	case "401", "AUTHENTICATION_ERROR", "403", "AUTHORIZATION_ERROR":
		return KindAuthInvalid
	case "429", "RATE_LIMIT":
		return KindRateLimited
	case "400", "VALIDATION_ERROR":
		return KindValidationError
	case "402", "QUOTA_ERROR", "QUOTA_EXCEEDED":
		return KindProviderError
	case "500", "502", "503", "504":
		return KindServerError
	case "BUDGET_EXCEEDED":
		return KindBudgetExceeded
	case "missing_credential":
		return KindCredentialMissing
	default:
		return KindProviderError
	}
}

// Render formats a descriptor for terminal display.
func Render(d Descriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n", d.Summary)
	if len(d.Steps) > 0 {
		b.WriteString("\nHow to fix:\n")
		for i, step := range d.Steps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
		}
	}
	if d.DocsURL != "" {
		fmt.Fprintf(&b, "\nDocumentation: %s\n", d.DocsURL)
	}
	if d.RetryAfterSeconds > 0 {
		fmt.Fprintf(&b, "\nRetry after: %d seconds\n", d.RetryAfterSeconds)
	}
	return b.String()
}
