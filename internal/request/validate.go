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

package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Issue is a single validation failure.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports all issues found in one raw input.
type ValidationError struct {
	Op     Kind    `json:"operation"`
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		if issue.Field != "" {
			parts[i] = fmt.Sprintf("%s: %s", issue.Field, issue.Message)
		} else {
			parts[i] = issue.Message
		}
	}
	return fmt.Sprintf("invalid %s request: %s", e.Op, strings.Join(parts, "; "))
}

func invalid(op Kind, field, message string) *ValidationError {
	return &ValidationError{Op: op, Issues: []Issue{{Field: field, Message: message}}}
}

// Validator turns untrusted JSON input into Normalized request values.
// Safe for concurrent use.
type Validator struct {
	check *validator.Validate
}

// NewValidator builds a validator with the domain rule registered.
// Field names in failures use the json tag so messages match the wire
// names callers sent.
func NewValidator() *Validator {
	check := validator.New(validator.WithRequiredStructEnabled())
	check.RegisterValidation("domain", func(fl validator.FieldLevel) bool {
		return domainPattern.MatchString(fl.Field().String())
	})
	check.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{check: check}
}

// Validate parses, normalizes, and validates raw input for the given
// operation. The same raw input always yields a structurally identical
// result.
func (v *Validator) Validate(kind Kind, raw json.RawMessage) (Normalized, error) {
	switch kind {
	case KindPeopleSearch:
		return v.validatePeopleSearch(raw)
	case KindPersonEnrich:
		return v.validatePersonEnrich(raw)
	case KindCompanySearch:
		return v.validateCompanySearch(raw)
	case KindCompanyEnrich:
		return v.validateCompanyEnrich(raw)
	case KindProfileLookup:
		return v.validateProfileLookup(raw)
	case KindTechLookup:
		return v.validateTechLookup(raw)
	case KindScrape:
		return v.validateScrape(raw)
	case KindCrawl:
		return v.validateCrawl(raw)
	case KindCampaignCreate:
		return v.validateCampaignCreate(raw)
	case KindCampaignUpdate:
		return v.validateCampaignUpdate(raw)
	default:
		return nil, fmt.Errorf("unknown operation %q", kind)
	}
}

func (v *Validator) validatePeopleSearch(raw json.RawMessage) (Normalized, error) {
	req := PeopleSearch{Page: 1, Limit: 25}
	if err := decodeStrict(raw, &req); err != nil {
		return nil, invalid(KindPeopleSearch, "", err.Error())
	}

	req.Company = strings.TrimSpace(req.Company)
	req.Keywords = strings.TrimSpace(req.Keywords)
	req.Titles = trimEach(req.Titles)
	req.Industries = trimEach(req.Industries)
	req.Locations = trimEach(req.Locations)
	req.Seniority = lowerEach(req.Seniority)

	for i, d := range req.CompanyDomains {
		normalized, err := NormalizeDomain(d)
		if err != nil {
			return nil, invalid(KindPeopleSearch, "company_domains", err.Error())
		}
		req.CompanyDomains[i] = normalized
	}

	if err := v.structIssues(KindPeopleSearch, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (v *Validator) validatePersonEnrich(raw json.RawMessage) (Normalized, error) {
	var req PersonEnrich
	if err := decodeStrict(raw, &req); err != nil {
		return nil, invalid(KindPersonEnrich, "", err.Error())
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if req.LinkedinURL != "" {
		if !strings.Contains(strings.ToLower(req.LinkedinURL), "linkedin.com") {
			return nil, invalid(KindPersonEnrich, "linkedin_url", "must be a LinkedIn URL")
		}
		normalized, err := NormalizeURL(req.LinkedinURL)
		if err != nil {
			return nil, invalid(KindPersonEnrich, "linkedin_url", err.Error())
		}
		req.LinkedinURL = normalized
	}

	if req.CompanyDomain != "" {
		normalized, err := NormalizeDomain(req.CompanyDomain)
		if err != nil {
			return nil, invalid(KindPersonEnrich, "company_domain", err.Error())
		}
		req.CompanyDomain = normalized
	}

	hasNameCombo := req.FirstName != "" && req.LastName != "" && req.CompanyDomain != ""
	if req.Email == "" && req.LinkedinURL == "" && !hasNameCombo {
		return nil, invalid(KindPersonEnrich, "",
			"provide one of: email, linkedin_url, or first_name + last_name + company_domain")
	}

	if err := v.structIssues(KindPersonEnrich, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (v *Validator) validateCompanySearch(raw json.RawMessage) (Normalized, error) {
	req := CompanySearch{Page: 1, Limit: 25}
	if err := decodeStrict(raw, &req); err != nil {
		return nil, invalid(KindCompanySearch, "", err.Error())
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Keywords = strings.TrimSpace(req.Keywords)
	req.Industries = trimEach(req.Industries)
	req.Locations = trimEach(req.Locations)

	if req.Domain != "" {
		normalized, err := NormalizeDomain(req.Domain)
		if err != nil {
			return nil, invalid(KindCompanySearch, "domain", err.Error())
		}
		req.Domain = normalized
	}

	if err := v.structIssues(KindCompanySearch, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (v *Validator) validateCompanyEnrich(raw json.RawMessage) (Normalized, error) {
	var req CompanyEnrich
	if err := decodeStrict(raw, &req); err != nil {
		return nil, invalid(KindCompanyEnrich, "", err.Error())
	}

	if req.Domain != "" {
		normalized, err := NormalizeDomain(req.Domain)
		if err != nil {
			return nil, invalid(KindCompanyEnrich, "domain", err.Error())
		}
		req.Domain = normalized
	}

	if err := v.structIssues(KindCompanyEnrich, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (v *Validator) validateProfileLookup(raw json.RawMessage) (Normalized, error) {
	var req ProfileLookup
	if err := decodeStrict(raw, &req); err != nil {
		return nil, invalid(KindProfileLookup, "", err.Error())
	}

	if req.LinkedinURL != "" {
		if !strings.Contains(strings.ToLower(req.LinkedinURL), "linkedin.com") {
			return nil, invalid(KindProfileLookup, "linkedin_url", "must be a LinkedIn URL")
		}
		normalized, err := NormalizeURL(req.LinkedinURL)
		if err != nil {
			return nil, invalid(KindProfileLookup, "linkedin_url", err.Error())
		}
		req.LinkedinURL = normalized
	}

	if err := v.structIssues(KindProfileLookup, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (v *Validator) validateTechLookup(raw json.RawMessage) (Normalized, error) {
	var req TechLookup
	if err := decodeStrict(raw, &req); err != nil {
		return nil, invalid(KindTechLookup, "", err.Error())
	}

	if req.Domain != "" {
		normalized, err := NormalizeDomain(req.Domain)
		if err != nil {
			return nil, invalid(KindTechLookup, "domain", err.Error())
		}
		req.Domain = normalized
	}

	if err := v.structIssues(KindTechLookup, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (v *Validator) validateScrape(raw json.RawMessage) (Normalized, error) {
	req := Scrape{
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
		Timeout:         30000,
	}
	if err := decodeStrict(raw, &req); err != nil {
		return nil, invalid(KindScrape, "", err.Error())
	}

	normalized, err := NormalizeURL(req.URL)
	if err != nil {
		return nil, invalid(KindScrape, "url", err.Error())
	}
	req.URL = normalized
	req.Formats = lowerEach(req.Formats)

	if err := v.structIssues(KindScrape, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (v *Validator) validateCrawl(raw json.RawMessage) (Normalized, error) {
	req := Crawl{
		MaxPages: 10,
		Formats:  []string{"markdown"},
	}
	if err := decodeStrict(raw, &req); err != nil {
		return nil, invalid(KindCrawl, "", err.Error())
	}

	normalized, err := NormalizeURL(req.URL)
	if err != nil {
		return nil, invalid(KindCrawl, "url", err.Error())
	}
	req.URL = normalized
	req.Formats = lowerEach(req.Formats)

	if err := v.structIssues(KindCrawl, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (v *Validator) validateCampaignCreate(raw json.RawMessage) (Normalized, error) {
	req := CampaignCreate{
		CampaignType: "SEARCH",
		Objective:    "WEBSITE_VISITS",
	}
	if err := decodeStrict(raw, &req); err != nil {
		return nil, invalid(KindCampaignCreate, "", err.Error())
	}

	req.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
	req.Name = strings.TrimSpace(req.Name)
	req.CampaignType = strings.ToUpper(strings.TrimSpace(req.CampaignType))
	req.Objective = strings.ToUpper(strings.TrimSpace(req.Objective))
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))

	if err := v.structIssues(KindCampaignCreate, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (v *Validator) validateCampaignUpdate(raw json.RawMessage) (Normalized, error) {
	var req CampaignUpdate
	if err := decodeStrict(raw, &req); err != nil {
		return nil, invalid(KindCampaignUpdate, "", err.Error())
	}

	req.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
	req.CampaignID = strings.TrimSpace(req.CampaignID)
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	req.Name = strings.TrimSpace(req.Name)

	if req.Status == "" && req.Budget == nil && req.Name == "" {
		return nil, invalid(KindCampaignUpdate, "", "at least one of status, budget, or name must be provided")
	}

	if err := v.structIssues(KindCampaignUpdate, req); err != nil {
		return nil, err
	}
	return req, nil
}

// structIssues runs tag validation and converts failures into a
// ValidationError with one issue per failing field.
func (v *Validator) structIssues(op Kind, req any) error {
	err := v.check.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return invalid(op, "", err.Error())
	}

	out := &ValidationError{Op: op}
	for _, fe := range verrs {
		out.Issues = append(out.Issues, Issue{
			Field:   fieldName(fe),
			Message: issueMessage(fe),
		})
	}
	return out
}

// fieldName reports the wire-level field name for a validation failure.
// Dive failures carry an index suffix ("seniority[0]"); strip it so the
// issue names the field the caller sent.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return fmt.Sprintf("invalid email format: %v", fe.Value())
	case "domain":
		return fmt.Sprintf("invalid domain format: %v", fe.Value())
	case "oneof":
		return fmt.Sprintf("invalid value %q, valid options: %s", fe.Value(), fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "excludesall":
		return "cannot contain < or >"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func decodeStrict(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed input: %w", err)
	}
	return nil
}

func trimEach(values []string) []string {
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	return values
}

func lowerEach(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return values
}
