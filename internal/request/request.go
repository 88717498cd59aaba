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

// Package request validates untrusted operation input and produces
// normalized, strongly-typed request values. Validation is pure: no I/O,
// no network, no credential access.
package request

import (
	"fmt"
	"strings"
)

// Kind identifies an operation.
type Kind string

const (
	KindPeopleSearch   Kind = "people_search"
	KindPersonEnrich   Kind = "person_enrich"
	KindCompanySearch  Kind = "company_search"
	KindCompanyEnrich  Kind = "company_enrich"
	KindProfileLookup  Kind = "profile_lookup"
	KindTechLookup     Kind = "tech_lookup"
	KindScrape         Kind = "scrape"
	KindCrawl          Kind = "crawl"
	KindCampaignCreate Kind = "campaign_create"
	KindCampaignUpdate Kind = "campaign_update"
)

// Kinds returns all known operation kinds in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindPeopleSearch,
		KindPersonEnrich,
		KindCompanySearch,
		KindCompanyEnrich,
		KindProfileLookup,
		KindTechLookup,
		KindScrape,
		KindCrawl,
		KindCampaignCreate,
		KindCampaignUpdate,
	}
}

// ParseKind resolves an operation name to a Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", name)
}

// Normalized is a validated, typed request value. Only the Validator
// produces these; the sealed marker keeps other packages from
// implementing the interface.
type Normalized interface {
	// Kind returns the operation this request is for
	Kind() Kind

	// Mutating reports whether the operation changes remote state
	Mutating() bool

	sealed()
}

// normalized is embedded by every variant to seal the interface.
type normalized struct{}

func (normalized) sealed() {}

// PeopleSearch is a validated contact search request.
type PeopleSearch struct {
	normalized

	Titles         []string `json:"titles,omitempty"`
	Company        string   `json:"company,omitempty"`
	CompanyDomains []string `json:"company_domains,omitempty" validate:"dive,domain"`
	CompanySizes   []string `json:"company_sizes,omitempty" validate:"dive,oneof=1-10 11-50 51-200 201-500 501-1000 1001-5000 5001+"`
	Industries     []string `json:"industries,omitempty"`
	Locations      []string `json:"locations,omitempty"`
	Seniority      []string `json:"seniority,omitempty" validate:"dive,oneof=c_suite vp director manager senior entry"`
	Keywords       string   `json:"keywords,omitempty"`
	Page           int      `json:"page" validate:"gte=1"`
	Limit          int      `json:"limit" validate:"gte=1,lte=100"`
}

func (PeopleSearch) Kind() Kind     { return KindPeopleSearch }
func (PeopleSearch) Mutating() bool { return false }

// PersonEnrich is a validated contact enrichment request. At least one
// lookup handle must be present: email, linkedin_url, or the full
// first_name + last_name + company_domain combination.
type PersonEnrich struct {
	normalized

	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	LinkedinURL   string `json:"linkedin_url,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	CompanyDomain string `json:"company_domain,omitempty" validate:"omitempty,domain"`
}

func (PersonEnrich) Kind() Kind     { return KindPersonEnrich }
func (PersonEnrich) Mutating() bool { return false }

// CompanySearch is a validated company search request.
type CompanySearch struct {
	normalized

	Name         string   `json:"name,omitempty"`
	Domain       string   `json:"domain,omitempty" validate:"omitempty,domain"`
	CompanySizes []string `json:"company_sizes,omitempty" validate:"dive,oneof=1-10 11-50 51-200 201-500 501-1000 1001-5000 5001+"`
	Industries   []string `json:"industries,omitempty"`
	Locations    []string `json:"locations,omitempty"`
	Keywords     string   `json:"keywords,omitempty"`
	Page         int      `json:"page" validate:"gte=1"`
	Limit        int      `json:"limit" validate:"gte=1,lte=100"`
}

func (CompanySearch) Kind() Kind     { return KindCompanySearch }
func (CompanySearch) Mutating() bool { return false }

// CompanyEnrich is a validated company enrichment request keyed by domain.
type CompanyEnrich struct {
	normalized

	Domain string `json:"domain" validate:"required,domain"`
}

func (CompanyEnrich) Kind() Kind     { return KindCompanyEnrich }
func (CompanyEnrich) Mutating() bool { return false }

// ProfileLookup is a validated LinkedIn profile lookup request.
type ProfileLookup struct {
	normalized

	LinkedinURL string `json:"linkedin_url" validate:"required"`
}

func (ProfileLookup) Kind() Kind     { return KindProfileLookup }
func (ProfileLookup) Mutating() bool { return false }

// TechLookup is a validated technology-stack lookup request.
type TechLookup struct {
	normalized

	Domain string `json:"domain" validate:"required,domain"`
}

func (TechLookup) Kind() Kind     { return KindTechLookup }
func (TechLookup) Mutating() bool { return false }

// Scrape is a validated single-page scrape request.
type Scrape struct {
	normalized

	URL             string   `json:"url" validate:"required"`
	Formats         []string `json:"formats" validate:"min=1,dive,oneof=markdown html text links screenshot"`
	OnlyMainContent bool     `json:"only_main_content"`
	WaitFor         int      `json:"wait_for" validate:"gte=0,lte=30000"`
	Timeout         int      `json:"timeout" validate:"gte=1000,lte=120000"`
}

func (Scrape) Kind() Kind     { return KindScrape }
func (Scrape) Mutating() bool { return false }

// Crawl is a validated multi-page crawl request.
type Crawl struct {
	normalized

	URL             string   `json:"url" validate:"required"`
	MaxPages        int      `json:"max_pages" validate:"gte=1,lte=100"`
	IncludePatterns []string `json:"include_patterns,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
	Formats         []string `json:"formats" validate:"min=1,dive,oneof=markdown html text links screenshot"`
}

func (Crawl) Kind() Kind     { return KindCrawl }
func (Crawl) Mutating() bool { return false }

// CampaignCreate is a validated advertising campaign creation request.
// Spend-bearing: always passes through the safety gate before any
// provider call.
type CampaignCreate struct {
	normalized

	Platform     string  `json:"platform" validate:"required,oneof=google_ads linkedin_ads"`
	Name         string  `json:"name" validate:"required,max=255,excludesall=<>"`
	Budget       float64 `json:"budget" validate:"gte=0"`
	TotalBudget  float64 `json:"total_budget" validate:"gte=0"`
	CPCBid       float64 `json:"cpc_bid" validate:"gte=0"`
	CampaignType string  `json:"campaign_type" validate:"oneof=SEARCH DISPLAY SHOPPING VIDEO PERFORMANCE_MAX SPONSORED_UPDATES SPONSORED_INMAILS TEXT_ADS"`
	Objective    string  `json:"objective"`
	Status       string  `json:"status" validate:"omitempty,oneof=ENABLED PAUSED ACTIVE DRAFT ARCHIVED REMOVED"`
}

func (CampaignCreate) Kind() Kind     { return KindCampaignCreate }
func (CampaignCreate) Mutating() bool { return true }

// CampaignUpdate is a validated advertising campaign update request.
// At least one of status, budget, or name must be set.
type CampaignUpdate struct {
	normalized

	Platform   string   `json:"platform" validate:"required,oneof=google_ads linkedin_ads"`
	CampaignID string   `json:"campaign_id" validate:"required"`
	Status     string   `json:"status,omitempty" validate:"omitempty,oneof=ENABLED PAUSED ACTIVE DRAFT ARCHIVED REMOVED"`
	Budget     *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Name       string   `json:"name,omitempty" validate:"omitempty,max=255,excludesall=<>"`
}

func (CampaignUpdate) Kind() Kind     { return KindCampaignUpdate }
func (CampaignUpdate) Mutating() bool { return true }
