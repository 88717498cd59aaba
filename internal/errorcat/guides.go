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

package errorcat

// recoveryGuides is the per-provider recovery database. Codes are HTTP
// statuses for REST providers and symbolic codes for Google Ads, which
// reports errors by name rather than status.
var recoveryGuides = map[string]map[string]Descriptor{
	"apollo": {
		"401": {
			Summary: "Apollo API key is invalid or expired",
			Steps: []string{
				"Log into Apollo: https://app.apollo.io/#/settings/integrations/api",
				"Generate a new API key",
				"Update APOLLO_API_KEY in your .env file",
				"Restart the agent",
			},
			DocsURL: "https://apolloio.github.io/apollo-api-docs/#authentication",
		},
		"403": {
			Summary: "Apollo API access denied, check your plan limits",
			Steps: []string{
				"Check your Apollo plan: https://app.apollo.io/#/settings/plans",
				"Verify the endpoint is included in your plan",
				"Check if you've exceeded monthly credits",
			},
			DocsURL: "https://apollo.io/pricing",
		},
		"429": {
			Summary: "Apollo rate limit exceeded",
			Steps: []string{
				"Wait 60 seconds before retrying",
				"Reduce request frequency",
				"Consider upgrading your Apollo plan for higher limits",
			},
			RetryAfterSeconds: 60,
		},
		"missing_credential": {
			Summary: "Apollo API key not configured",
			Steps: []string{
				"Get your API key: https://app.apollo.io/#/settings/integrations/api",
				"Add to .env file: APOLLO_API_KEY=your_key_here",
				"Restart the agent",
			},
		},
	},

	"firecrawl": {
		"401": {
			Summary: "Firecrawl API key is invalid",
			Steps: []string{
				"Log into Firecrawl: https://firecrawl.dev/dashboard",
				"Copy your API key",
				"Update FIRECRAWL_API_KEY in your .env file",
			},
			DocsURL: "https://docs.firecrawl.dev/authentication",
		},
		"402": {
			Summary: "Firecrawl credits exhausted",
			Steps: []string{
				"Check your usage: https://firecrawl.dev/dashboard",
				"Wait for monthly reset or upgrade your plan",
				"Free tier: 500 credits/month",
			},
			DocsURL: "https://firecrawl.dev/pricing",
		},
		"429": {
			Summary: "Firecrawl rate limit exceeded",
			Steps: []string{
				"Wait 30 seconds before retrying",
				"Reduce concurrent requests",
			},
			RetryAfterSeconds: 30,
		},
		"missing_credential": {
			Summary: "Firecrawl API key not configured",
			Steps: []string{
				"Sign up at: https://firecrawl.dev",
				"Get API key from dashboard",
				"Add to .env file: FIRECRAWL_API_KEY=your_key_here",
			},
		},
	},

	"clearbit": {
		"401": {
			Summary: "Clearbit API key is invalid",
			Steps: []string{
				"Log into Clearbit: https://dashboard.clearbit.com/api",
				"Generate a new API key",
				"Update CLEARBIT_API_KEY in your .env file",
			},
		},
		"402": {
			Summary: "Clearbit requires a paid plan",
			Steps: []string{
				"Clearbit has no free tier",
				"Sign up for a plan: https://clearbit.com/pricing",
				"Alternative: use Apollo for company data (has free tier)",
			},
		},
		"missing_credential": {
			Summary: "Clearbit API key not configured",
			Steps: []string{
				"Clearbit requires a paid subscription",
				"Sign up: https://clearbit.com",
				"Add to .env: CLEARBIT_API_KEY=your_key_here",
				"Alternative: use Apollo's company enrichment (free tier available)",
			},
		},
	},

	"google_ads": {
		"AUTHENTICATION_ERROR": {
			Summary: "Google Ads authentication failed",
			Steps: []string{
				"Check your OAuth credentials in .env",
				"Regenerate refresh token using the OAuth flow",
				"Verify developer token is approved",
			},
			DocsURL: "https://developers.google.com/google-ads/api/docs/oauth/overview",
		},
		"AUTHORIZATION_ERROR": {
			Summary: "Not authorized to access this Google Ads account",
			Steps: []string{
				"Verify GOOGLE_ADS_LOGIN_CUSTOMER_ID is correct",
				"Check account access in the Google Ads UI",
				"Ensure API access is enabled for the account",
			},
		},
		"QUOTA_ERROR": {
			Summary: "Google Ads API quota exceeded",
			Steps: []string{
				"Wait until quota resets (usually daily)",
				"Check quota usage in Google Cloud Console",
				"Request a quota increase if needed",
			},
			DocsURL: "https://developers.google.com/google-ads/api/docs/best-practices/quotas",
		},
		"BUDGET_EXCEEDED": {
			Summary: "Campaign budget exceeds configured limit",
			Steps: []string{
				"Check max_daily_budget in the safety limits file",
				"Reduce the budget amount or raise the limit",
				"The limit exists for safety, modify carefully",
			},
		},
		"missing_credential": {
			Summary: "Google Ads credentials not configured",
			Steps: []string{
				"Create a Google Cloud project with the Ads API enabled",
				"Create OAuth 2.0 credentials",
				"Get a developer token from the Google Ads API Center",
				"Set all GOOGLE_ADS_* variables in .env",
			},
			DocsURL: "https://developers.google.com/google-ads/api/docs/first-call/overview",
		},
	},

	"linkedin_ads": {
		"401": {
			Summary: "LinkedIn access token is invalid or expired",
			Steps: []string{
				"LinkedIn tokens expire after 60 days",
				"Regenerate the token using the OAuth flow",
				"Update LINKEDIN_ACCESS_TOKEN in .env",
			},
			DocsURL: "https://learn.microsoft.com/en-us/linkedin/shared/authentication/authorization-code-flow",
		},
		"403": {
			Summary: "LinkedIn API access denied",
			Steps: []string{
				"Verify your app has Marketing Developer Platform access",
				"Check required scopes: r_ads, r_ads_reporting, w_organization_social",
				"Verify LINKEDIN_AD_ACCOUNT_ID is correct",
			},
		},
		"429": {
			Summary: "LinkedIn rate limit exceeded",
			Steps: []string{
				"Wait 60 seconds before retrying",
				"LinkedIn allows 100 requests/minute",
				"Reduce request frequency",
			},
			RetryAfterSeconds: 60,
		},
		"BUDGET_EXCEEDED": {
			Summary: "Campaign budget exceeds configured limit",
			Steps: []string{
				"Check max_daily_budget in the safety limits file",
				"Reduce the budget or raise the configured limit",
				"The default limit is $0 (testing mode)",
			},
		},
		"missing_credential": {
			Summary: "LinkedIn Ads credentials not configured",
			Steps: []string{
				"Create a LinkedIn Developer App: https://www.linkedin.com/developers/apps",
				"Request Marketing Developer Platform access",
				"Generate an OAuth 2.0 access token",
				"Set LINKEDIN_* variables in .env",
			},
		},
	},

	"proxycurl": {
		"401": {
			Summary: "Proxycurl API key is invalid",
			Steps: []string{
				"Log into Proxycurl: https://nubela.co/proxycurl/",
				"Get your API key from the dashboard",
				"Update PROXYCURL_API_KEY in .env",
			},
		},
		"403": {
			Summary: "Proxycurl credits exhausted",
			Steps: []string{
				"Check your credit balance: https://nubela.co/proxycurl/",
				"Free tier: 10 credits/month",
				"Purchase more credits or wait for the reset",
			},
		},
		"missing_credential": {
			Summary: "Proxycurl API key not configured",
			Steps: []string{
				"Sign up: https://nubela.co/proxycurl/",
				"Get API key from dashboard",
				"Add to .env: PROXYCURL_API_KEY=your_key_here",
			},
		},
	},

	"builtwith": {
		"missing_credential": {
			Summary: "BuiltWith API key not configured",
			Steps: []string{
				"Sign up: https://builtwith.com/api",
				"Add to .env: BUILTWITH_API_KEY=your_key_here",
			},
		},
	},
}

// genericGuides covers common HTTP statuses for providers without a
// specific entry.
var genericGuides = map[string]Descriptor{
	"401": {
		Summary: "Authentication failed",
		Steps: []string{
			"Check your API key or token in .env",
			"Verify the key hasn't expired",
			"Regenerate credentials if needed",
		},
	},
	"403": {
		Summary: "Access denied",
		Steps: []string{
			"Check your account permissions",
			"Verify you have access to this resource",
			"Check if your plan includes this feature",
		},
	},
	"429": {
		Summary: "Rate limit exceeded",
		Steps: []string{
			"Wait before retrying (usually 30-60 seconds)",
			"Reduce request frequency",
			"Consider upgrading your plan",
		},
		RetryAfterSeconds: 60,
	},
	"500": {
		Summary: "Server error",
		Steps: []string{
			"Wait a moment and retry",
			"Check the service status page",
			"If persistent, contact support",
		},
		RetryAfterSeconds: 30,
	},
}
