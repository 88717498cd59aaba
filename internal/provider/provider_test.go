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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tombee/rory/internal/credentials"
	"github.com/tombee/rory/internal/request"
)

func TestLookup(t *testing.T) {
	d, err := Lookup("apollo")
	require.NoError(t, err)
	assert.Equal(t, "https://api.apollo.io/v1", d.BaseURL)

	_, err = Lookup("carrier_pigeon")
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "apollo")
	assert.Contains(t, names, "google_ads")
	assert.Contains(t, names, "linkedin_ads")
}

func TestAuthHeaders_ApolloUsesAPIKeyHeader(t *testing.T) {
	t.Setenv("APOLLO_API_KEY", "sk-apollo")

	d, err := Lookup("apollo")
	require.NoError(t, err)
	headers, err := d.AuthHeaders(context.Background(), credentials.NewBroker())
	require.NoError(t, err)
	assert.Equal(t, "sk-apollo", headers["X-Api-Key"])
	assert.Equal(t, "application/json", headers["Content-Type"])
}

func TestAuthHeaders_FirecrawlUsesBearer(t *testing.T) {
	t.Setenv("FIRECRAWL_API_KEY", "fc-123")

	d, err := Lookup("firecrawl")
	require.NoError(t, err)
	headers, err := d.AuthHeaders(context.Background(), credentials.NewBroker())
	require.NoError(t, err)
	assert.Equal(t, "Bearer fc-123", headers["Authorization"])
}

func TestAuthHeaders_LinkedInVersionHeaders(t *testing.T) {
	t.Setenv("LINKEDIN_ADS_API_KEY", "")
	t.Setenv("LINKEDIN_ADS_KEY", "")
	t.Setenv("LINKEDIN_ADS_TOKEN", "")
	t.Setenv("LINKEDIN_ACCESS_TOKEN", "li-tok")

	d, err := Lookup("linkedin_ads")
	require.NoError(t, err)
	headers, err := d.AuthHeaders(context.Background(), credentials.NewBroker())
	require.NoError(t, err)
	assert.Equal(t, "Bearer li-tok", headers["Authorization"])
	assert.Equal(t, "2.0.0", headers["X-Restli-Protocol-Version"])
	assert.NotEmpty(t, headers["LinkedIn-Version"])
}

func TestAuthHeaders_GoogleAdsRefreshFlow(t *testing.T) {
	t.Setenv(envGoogleAdsClientID, "cid")
	t.Setenv(envGoogleAdsClientSecret, "secret")
	t.Setenv(envGoogleAdsRefreshToken, "rt")
	t.Setenv(envGoogleAdsDevToken, "dev-tok")
	t.Setenv(envGoogleAdsLoginID, "123-456")

	orig := googleTokenSource
	defer func() { googleTokenSource = orig }()
	googleTokenSource = func(ctx context.Context, cfg *oauth2.Config, refreshToken string) oauth2.TokenSource {
		assert.Equal(t, "cid", cfg.ClientID)
		assert.Equal(t, "rt", refreshToken)
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "at-789"})
	}

	d, err := Lookup("google_ads")
	require.NoError(t, err)
	headers, err := d.AuthHeaders(context.Background(), credentials.NewBroker())
	require.NoError(t, err)
	assert.Equal(t, "Bearer at-789", headers["Authorization"])
	assert.Equal(t, "dev-tok", headers["developer-token"])
	assert.Equal(t, "123-456", headers["login-customer-id"])
}

func TestAuthHeaders_GoogleAdsMissingCredentials(t *testing.T) {
	t.Setenv(envGoogleAdsClientID, "")
	t.Setenv(envGoogleAdsClientSecret, "")
	t.Setenv(envGoogleAdsRefreshToken, "")
	t.Setenv(envGoogleAdsDevToken, "")

	d, err := Lookup("google_ads")
	require.NoError(t, err)
	_, err = d.AuthHeaders(context.Background(), credentials.NewBroker())
	require.Error(t, err)

	var missing *credentials.MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{
		envGoogleAdsClientID,
		envGoogleAdsClientSecret,
		envGoogleAdsRefreshToken,
		envGoogleAdsDevToken,
	}, missing.Checked)
	assert.Contains(t, missing.Error(), "set "+envGoogleAdsClientID)
}

func TestBuild_PeopleSearch(t *testing.T) {
	route, err := Build(request.PeopleSearch{
		Titles:    []string{"CMO"},
		Seniority: []string{"c_suite"},
		Page:      2,
		Limit:     50,
	}, Accounts{})
	require.NoError(t, err)

	assert.Equal(t, "apollo", route.Provider)
	assert.Equal(t, "POST", route.Method)
	assert.Equal(t, "/mixed_people/search", route.Path)
	assert.Equal(t, []string{"CMO"}, route.Body["person_titles"])
	assert.Equal(t, []string{"c_suite"}, route.Body["person_seniorities"])
	assert.Equal(t, 2, route.Body["page"])
	assert.Equal(t, 50, route.Body["per_page"])
	assert.NotContains(t, route.Body, "q_keywords")
}

func TestBuild_PersonEnrichPrefersEmail(t *testing.T) {
	route, err := Build(request.PersonEnrich{
		Email:       "ada@example.com",
		LinkedinURL: "https://linkedin.com/in/ada",
	}, Accounts{})
	require.NoError(t, err)

	assert.Equal(t, "/people/match", route.Path)
	assert.Equal(t, "ada@example.com", route.Body["email"])
	assert.NotContains(t, route.Body, "linkedin_url")
}

func TestBuild_Scrape(t *testing.T) {
	route, err := Build(request.Scrape{
		URL:             "https://example.com",
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
		Timeout:         30000,
	}, Accounts{})
	require.NoError(t, err)

	assert.Equal(t, "firecrawl", route.Provider)
	assert.Equal(t, "/scrape", route.Path)
	assert.Equal(t, true, route.Body["onlyMainContent"])
	assert.NotContains(t, route.Body, "waitFor")
}

func TestBuild_CampaignCreateGoogle(t *testing.T) {
	route, err := Build(request.CampaignCreate{
		Platform:     "google_ads",
		Name:         "Launch",
		Budget:       25,
		Status:       "PAUSED",
		CampaignType: "SEARCH",
	}, Accounts{GoogleCustomerID: "111"})
	require.NoError(t, err)

	assert.Equal(t, "google_ads", route.Provider)
	assert.Equal(t, "/customers/111/campaigns", route.Path)
	assert.Equal(t, "PAUSED", route.Body["status"])
	assert.Equal(t, "25000000", route.Body["dailyBudgetMicros"])
}

func TestBuild_CampaignCreateLinkedIn(t *testing.T) {
	route, err := Build(request.CampaignCreate{
		Platform:     "linkedin_ads",
		Name:         "Launch",
		Budget:       10,
		Status:       "DRAFT",
		CampaignType: "SPONSORED_UPDATES",
		Objective:    "WEBSITE_VISITS",
	}, Accounts{LinkedInAdAccount: "789"})
	require.NoError(t, err)

	assert.Equal(t, "/adCampaigns", route.Path)
	assert.Equal(t, "urn:li:sponsoredAccount:789", route.Body["account"])
	assert.Equal(t, "DRAFT", route.Body["status"])
	budget := route.Body["dailyBudget"].(map[string]any)
	assert.Equal(t, "10.00", budget["amount"])
}

func TestBuild_CampaignCreateMissingAccount(t *testing.T) {
	_, err := Build(request.CampaignCreate{Platform: "google_ads", Name: "x"}, Accounts{})
	assert.Error(t, err)

	_, err = Build(request.CampaignCreate{Platform: "linkedin_ads", Name: "x"}, Accounts{})
	assert.Error(t, err)
}

func TestBuild_CampaignUpdateLinkedInPatchShape(t *testing.T) {
	budget := 15.0
	route, err := Build(request.CampaignUpdate{
		Platform:   "linkedin_ads",
		CampaignID: "c-9",
		Status:     "PAUSED",
		Budget:     &budget,
	}, Accounts{})
	require.NoError(t, err)

	assert.Equal(t, "PATCH", route.Method)
	assert.Equal(t, "/adCampaigns/c-9", route.Path)
	set := route.Body["patch"].(map[string]any)["$set"].(map[string]any)
	assert.Equal(t, "PAUSED", set["status"])
}

func TestBuild_CampaignUpdateGoogle(t *testing.T) {
	route, err := Build(request.CampaignUpdate{
		Platform:   "google_ads",
		CampaignID: "c-3",
		Status:     "PAUSED",
	}, Accounts{GoogleCustomerID: "111"})
	require.NoError(t, err)

	assert.Equal(t, "/customers/111/campaigns/c-3", route.Path)
	assert.Equal(t, "PAUSED", route.Body["status"])
}

func TestBuild_CompanySearch(t *testing.T) {
	route, err := Build(request.CompanySearch{
		Domain:   "acme.com",
		Keywords: "fintech",
		Page:     2,
		Limit:    50,
	}, Accounts{})
	require.NoError(t, err)

	assert.Equal(t, "apollo", route.Provider)
	assert.Equal(t, "POST", route.Method)
	assert.Equal(t, "/mixed_companies/search", route.Path)
	assert.Equal(t, []string{"acme.com"}, route.Body["organization_domains"])
	assert.Equal(t, "fintech", route.Body["q_keywords"])
	assert.Equal(t, 2, route.Body["page"])
}

func TestBuild_CompanyEnrich(t *testing.T) {
	route, err := Build(request.CompanyEnrich{Domain: "acme.com"}, Accounts{})
	require.NoError(t, err)

	assert.Equal(t, "clearbit", route.Provider)
	assert.Equal(t, "GET", route.Method)
	assert.Equal(t, "/companies/find?domain=acme.com", route.Path)
	assert.Nil(t, route.Body)
}

func TestBuild_ProfileLookupEscapesURL(t *testing.T) {
	route, err := Build(request.ProfileLookup{
		LinkedinURL: "https://linkedin.com/in/satya",
	}, Accounts{})
	require.NoError(t, err)

	assert.Equal(t, "proxycurl", route.Provider)
	assert.Equal(t, "/v2/linkedin?url=https%3A%2F%2Flinkedin.com%2Fin%2Fsatya", route.Path)
}

func TestBuild_TechLookup(t *testing.T) {
	route, err := Build(request.TechLookup{Domain: "shopify.com"}, Accounts{})
	require.NoError(t, err)

	assert.Equal(t, "builtwith", route.Provider)
	assert.Equal(t, "/v21/api.json?LOOKUP=shopify.com", route.Path)
}
