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

package provider

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/tombee/rory/internal/request"
)

// Route is a concrete provider call derived from a normalized request.
type Route struct {
	// Provider is the registry name of the target service
	Provider string

	// Method and Path describe the endpoint; Path is relative to the
	// provider's base URL
	Method string
	Path   string

	// Body is the JSON request body, already redactable as a plain map
	Body map[string]any
}

// Accounts carries the ad-account identifiers campaign routes need.
// Read from the environment because they are account configuration,
// not credentials.
type Accounts struct {
	GoogleCustomerID   string
	LinkedInAdAccount  string
}

// AccountsFromEnv reads the configured ad account identifiers.
func AccountsFromEnv() Accounts {
	return Accounts{
		GoogleCustomerID:  os.Getenv("GOOGLE_ADS_CUSTOMER_ID"),
		LinkedInAdAccount: os.Getenv("LINKEDIN_AD_ACCOUNT_ID"),
	}
}

// Build maps a normalized request onto its provider endpoint and body.
func Build(req request.Normalized, accounts Accounts) (Route, error) {
	switch r := req.(type) {
	case request.PeopleSearch:
		return buildPeopleSearch(r), nil
	case request.PersonEnrich:
		return buildPersonEnrich(r), nil
	case request.CompanySearch:
		return buildCompanySearch(r), nil
	case request.CompanyEnrich:
		return buildCompanyEnrich(r), nil
	case request.ProfileLookup:
		return buildProfileLookup(r), nil
	case request.TechLookup:
		return buildTechLookup(r), nil
	case request.Scrape:
		return buildScrape(r), nil
	case request.Crawl:
		return buildCrawl(r), nil
	case request.CampaignCreate:
		return buildCampaignCreate(r, accounts)
	case request.CampaignUpdate:
		return buildCampaignUpdate(r, accounts)
	default:
		return Route{}, fmt.Errorf("no route for operation %q", req.Kind())
	}
}

func buildPeopleSearch(r request.PeopleSearch) Route {
	body := map[string]any{
		"page":     r.Page,
		"per_page": r.Limit,
	}
	if len(r.Titles) > 0 {
		body["person_titles"] = r.Titles
	}
	if r.Company != "" {
		body["q_organization_name"] = r.Company
	}
	if len(r.CompanyDomains) > 0 {
		body["organization_domains"] = r.CompanyDomains
	}
	if len(r.CompanySizes) > 0 {
		body["organization_num_employees_ranges"] = r.CompanySizes
	}
	if len(r.Industries) > 0 {
		body["organization_industry_tag_ids"] = r.Industries
	}
	if len(r.Locations) > 0 {
		body["person_locations"] = r.Locations
	}
	if len(r.Seniority) > 0 {
		body["person_seniorities"] = r.Seniority
	}
	if r.Keywords != "" {
		body["q_keywords"] = r.Keywords
	}
	return Route{Provider: "apollo", Method: http.MethodPost, Path: "/mixed_people/search", Body: body}
}

func buildPersonEnrich(r request.PersonEnrich) Route {
	body := map[string]any{}
	switch {
	case r.Email != "":
		body["email"] = r.Email
	case r.LinkedinURL != "":
		body["linkedin_url"] = r.LinkedinURL
	default:
		body["first_name"] = r.FirstName
		body["last_name"] = r.LastName
		body["domain"] = r.CompanyDomain
	}
	return Route{Provider: "apollo", Method: http.MethodPost, Path: "/people/match", Body: body}
}

func buildCompanySearch(r request.CompanySearch) Route {
	body := map[string]any{
		"page":     r.Page,
		"per_page": r.Limit,
	}
	if r.Domain != "" {
		body["organization_domains"] = []string{r.Domain}
	}
	if r.Name != "" {
		body["q_organization_name"] = r.Name
	}
	if len(r.CompanySizes) > 0 {
		body["organization_num_employees_ranges"] = r.CompanySizes
	}
	if len(r.Industries) > 0 {
		body["organization_industry_tag_ids"] = r.Industries
	}
	if len(r.Locations) > 0 {
		body["organization_locations"] = r.Locations
	}
	if r.Keywords != "" {
		body["q_keywords"] = r.Keywords
	}
	return Route{Provider: "apollo", Method: http.MethodPost, Path: "/mixed_companies/search", Body: body}
}

func buildCompanyEnrich(r request.CompanyEnrich) Route {
	return Route{
		Provider: "clearbit",
		Method:   http.MethodGet,
		Path:     "/companies/find?domain=" + url.QueryEscape(r.Domain),
	}
}

func buildProfileLookup(r request.ProfileLookup) Route {
	return Route{
		Provider: "proxycurl",
		Method:   http.MethodGet,
		Path:     "/v2/linkedin?url=" + url.QueryEscape(r.LinkedinURL),
	}
}

func buildTechLookup(r request.TechLookup) Route {
	return Route{
		Provider: "builtwith",
		Method:   http.MethodGet,
		Path:     "/v21/api.json?LOOKUP=" + url.QueryEscape(r.Domain),
	}
}

func buildScrape(r request.Scrape) Route {
	body := map[string]any{
		"url":             r.URL,
		"formats":         r.Formats,
		"onlyMainContent": r.OnlyMainContent,
		"timeout":         r.Timeout,
	}
	if r.WaitFor > 0 {
		body["waitFor"] = r.WaitFor
	}
	return Route{Provider: "firecrawl", Method: http.MethodPost, Path: "/scrape", Body: body}
}

func buildCrawl(r request.Crawl) Route {
	body := map[string]any{
		"url":   r.URL,
		"limit": r.MaxPages,
		"scrapeOptions": map[string]any{
			"formats": r.Formats,
		},
	}
	if len(r.IncludePatterns) > 0 {
		body["includePaths"] = r.IncludePatterns
	}
	if len(r.ExcludePatterns) > 0 {
		body["excludePaths"] = r.ExcludePatterns
	}
	return Route{Provider: "firecrawl", Method: http.MethodPost, Path: "/crawl", Body: body}
}

func buildCampaignCreate(r request.CampaignCreate, accounts Accounts) (Route, error) {
	switch r.Platform {
	case "google_ads":
		if accounts.GoogleCustomerID == "" {
			return Route{}, fmt.Errorf("GOOGLE_ADS_CUSTOMER_ID is not set")
		}
		body := map[string]any{
			"name":                    r.Name,
			"status":                  r.Status,
			"advertisingChannelType":  r.CampaignType,
		}
		if r.Budget > 0 {
			// Google Ads budgets are micros.
			body["dailyBudgetMicros"] = strconv.FormatInt(int64(r.Budget*1e6), 10)
		}
		if r.CPCBid > 0 {
			body["cpcBidCeilingMicros"] = strconv.FormatInt(int64(r.CPCBid*1e6), 10)
		}
		return Route{
			Provider: "google_ads",
			Method:   http.MethodPost,
			Path:     fmt.Sprintf("/customers/%s/campaigns", accounts.GoogleCustomerID),
			Body:     body,
		}, nil

	case "linkedin_ads":
		if accounts.LinkedInAdAccount == "" {
			return Route{}, fmt.Errorf("LINKEDIN_AD_ACCOUNT_ID is not set")
		}
		body := map[string]any{
			"account":       "urn:li:sponsoredAccount:" + accounts.LinkedInAdAccount,
			"name":          r.Name,
			"status":        r.Status,
			"type":          r.CampaignType,
			"objectiveType": r.Objective,
			"costType":      "CPC",
			"locale":        map[string]any{"country": "US", "language": "en"},
		}
		if r.Budget > 0 {
			body["dailyBudget"] = usdAmount(r.Budget)
		}
		if r.TotalBudget > 0 {
			body["totalBudget"] = usdAmount(r.TotalBudget)
		}
		return Route{
			Provider: "linkedin_ads",
			Method:   http.MethodPost,
			Path:     "/adCampaigns",
			Body:     body,
		}, nil

	default:
		return Route{}, fmt.Errorf("unknown ad platform %q", r.Platform)
	}
}

func buildCampaignUpdate(r request.CampaignUpdate, accounts Accounts) (Route, error) {
	switch r.Platform {
	case "google_ads":
		if accounts.GoogleCustomerID == "" {
			return Route{}, fmt.Errorf("GOOGLE_ADS_CUSTOMER_ID is not set")
		}
		body := map[string]any{}
		if r.Status != "" {
			body["status"] = r.Status
		}
		if r.Name != "" {
			body["name"] = r.Name
		}
		if r.Budget != nil {
			body["dailyBudgetMicros"] = strconv.FormatInt(int64(*r.Budget*1e6), 10)
		}
		return Route{
			Provider: "google_ads",
			Method:   http.MethodPatch,
			Path:     fmt.Sprintf("/customers/%s/campaigns/%s", accounts.GoogleCustomerID, r.CampaignID),
			Body:     body,
		}, nil

	case "linkedin_ads":
		set := map[string]any{}
		if r.Status != "" {
			set["status"] = r.Status
		}
		if r.Name != "" {
			set["name"] = r.Name
		}
		if r.Budget != nil {
			set["dailyBudget"] = usdAmount(*r.Budget)
		}
		return Route{
			Provider: "linkedin_ads",
			Method:   http.MethodPatch,
			Path:     "/adCampaigns/" + r.CampaignID,
			Body:     map[string]any{"patch": map[string]any{"$set": set}},
		}, nil

	default:
		return Route{}, fmt.Errorf("unknown ad platform %q", r.Platform)
	}
}

func usdAmount(amount float64) map[string]any {
	return map[string]any{
		"currencyCode": "USD",
		"amount":       strconv.FormatFloat(amount, 'f', 2, 64),
	}
}
