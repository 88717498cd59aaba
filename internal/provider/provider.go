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

// Package provider holds the static descriptors for each external
// service: base URL, credential service name, and how its auth headers
// are built. Providers are data; only Google Ads needs code for its
// OAuth refresh flow.
package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/tombee/rory/internal/credentials"
)

// Descriptor describes one external service.
type Descriptor struct {
	// Name is the provider identifier used in audit entries and the
	// error catalog
	Name string

	// BaseURL is the API root; routes append paths to it
	BaseURL string

	// auth builds the request headers for an authenticated call
	auth func(ctx context.Context, broker *credentials.Broker) (map[string]string, error)
}

// AuthHeaders resolves credentials and returns the headers for a call.
func (d Descriptor) AuthHeaders(ctx context.Context, broker *credentials.Broker) (map[string]string, error) {
	return d.auth(ctx, broker)
}

var registry = map[string]Descriptor{
	"apollo": {
		Name:    "apollo",
		BaseURL: "https://api.apollo.io/v1",
		auth:    headerAuth("apollo", "X-Api-Key", ""),
	},
	"firecrawl": {
		Name:    "firecrawl",
		BaseURL: "https://api.firecrawl.dev/v1",
		auth:    headerAuth("firecrawl", "Authorization", "Bearer "),
	},
	"clearbit": {
		Name:    "clearbit",
		BaseURL: "https://company.clearbit.com/v2",
		auth:    headerAuth("clearbit", "Authorization", "Bearer "),
	},
	"proxycurl": {
		Name:    "proxycurl",
		BaseURL: "https://nubela.co/proxycurl/api",
		auth:    headerAuth("proxycurl", "Authorization", "Bearer "),
	},
	"builtwith": {
		Name:    "builtwith",
		BaseURL: "https://api.builtwith.com",
		auth:    headerAuth("builtwith", "X-Api-Key", ""),
	},
	"linkedin_ads": {
		Name:    "linkedin_ads",
		BaseURL: "https://api.linkedin.com/rest",
		auth:    linkedInAuth,
	},
	"google_ads": {
		Name:    "google_ads",
		BaseURL: "https://googleads.googleapis.com/v17",
		auth:    googleAdsAuth,
	},
}

// Lookup returns the descriptor for a provider name.
func Lookup(name string) (Descriptor, error) {
	d, ok := registry[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown provider %q", name)
	}
	return d, nil
}

// Names lists all registered providers in a stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// headerAuth resolves the provider's credential and places it in a
// single header, with an optional value prefix such as "Bearer ".
func headerAuth(service, header, prefix string) func(context.Context, *credentials.Broker) (map[string]string, error) {
	return func(ctx context.Context, broker *credentials.Broker) (map[string]string, error) {
		cred, err := broker.Resolve(ctx, service)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			header:         prefix + cred.Value,
			"Content-Type": "application/json",
		}, nil
	}
}

// linkedInVersion is the Marketing API version header value.
const linkedInVersion = "202401"

func linkedInAuth(ctx context.Context, broker *credentials.Broker) (map[string]string, error) {
	cred, err := broker.Resolve(ctx, "linkedin_ads")
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"Authorization":              "Bearer " + cred.Value,
		"Content-Type":               "application/json",
		"X-Restli-Protocol-Version": "2.0.0",
		"LinkedIn-Version":           linkedInVersion,
	}, nil
}
