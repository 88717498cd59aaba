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

// Package credentials resolves provider API credentials from a deterministic
// fallback chain of environment-style keys.
//
// For a service "apollo" the chain is:
//
//	APOLLO_API_KEY -> APOLLO_KEY -> APOLLO_TOKEN
//
// Each key is checked against the process environment first, then a local
// .env file, then (optionally) the OS keychain. The first non-empty value
// wins. Outcomes, including "missing", are cached for the process lifetime.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Source identifies where a credential value was found.
type Source string

const (
	// SourceEnv means the value came from a process environment variable.
	SourceEnv Source = "env"
	// SourceEnvFile means the value came from a local .env file.
	SourceEnvFile Source = "envfile"
	// SourceKeychain means the value came from the OS keychain.
	SourceKeychain Source = "keychain"
)

// Credential is a resolved secret bound to a logical service name.
type Credential struct {
	// Service is the logical service name, e.g. "apollo".
	Service string
	// Key is the fallback-chain entry that matched, e.g. "APOLLO_KEY".
	Key string
	// Value is the secret itself. Never log this directly.
	Value string
	// Source identifies which backend supplied the value.
	Source Source
}

// ErrCredentialMissing is the sentinel for an exhausted fallback chain.
// It is distinct from transport failures so callers can produce setup
// guidance instead of retrying.
var ErrCredentialMissing = errors.New("credential missing")

// MissingError reports an exhausted fallback chain together with the keys
// that were checked, so the user knows exactly which variable to set.
type MissingError struct {
	Service string
	Checked []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf(
		"no credential found for %s (checked %s); set %s in your environment or .env file",
		e.Service, strings.Join(e.Checked, ", "), e.Checked[0])
}

func (e *MissingError) Unwrap() error { return ErrCredentialMissing }

// extraAliases appends service-specific variable names to the standard
// chain. The chain is data, not branching code: changing resolution order
// means editing this table.
var extraAliases = map[string][]string{
	"linkedin_ads":              {"LINKEDIN_ACCESS_TOKEN"},
	"google_ads":                {"GOOGLE_ADS_DEVELOPER_TOKEN"},
	"google_ads_client_id":      {"GOOGLE_ADS_CLIENT_ID"},
	"google_ads_client_secret":  {"GOOGLE_ADS_CLIENT_SECRET"},
	"google_ads_login_customer": {"GOOGLE_ADS_LOGIN_CUSTOMER_ID"},
}

// FallbackChain returns the ordered environment variable names checked for
// a service. The order is fixed: {SERVICE}_API_KEY, {SERVICE}_KEY,
// {SERVICE}_TOKEN, then any service-specific aliases.
func FallbackChain(service string) []string {
	base := normalizeService(service)
	keys := []string{
		base + "_API_KEY",
		base + "_KEY",
		base + "_TOKEN",
	}
	keys = append(keys, extraAliases[service]...)
	return keys
}

// normalizeService converts a service name to its environment variable stem:
// uppercase, with any non-alphanumeric run collapsed to a single underscore.
func normalizeService(service string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToUpper(strings.TrimSpace(service)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// cacheEntry records a resolution outcome, success or failure, so repeat
// lookups never touch the backends again.
type cacheEntry struct {
	cred Credential
	err  error
}

// Broker resolves and caches credentials. It is safe for concurrent use;
// the cache guarantees a single resolution per service name.
type Broker struct {
	mu    sync.Mutex
	cache map[string]cacheEntry

	envFile     envFile
	envFilePath string
	keychain    keychainBackend
}

// Option configures a Broker.
type Option func(*Broker)

// WithEnvFile sets an explicit .env file path instead of the default
// search (./.env, ../.env, ../../.env).
func WithEnvFile(path string) Option {
	return func(b *Broker) { b.envFilePath = path }
}

// WithKeychain enables the OS keychain as the lowest-priority backend.
func WithKeychain(kc keychainBackend) Option {
	return func(b *Broker) { b.keychain = kc }
}

// NewBroker creates a credential broker. The .env file, if any, is read
// once at construction time.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		cache: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.envFile = loadEnvFile(b.envFilePath)
	return b
}

// Resolve returns the credential for a service, walking the fallback chain.
// The outcome is cached, including a miss: after one exhausted chain the
// broker will not re-read the environment until Invalidate is called.
func (b *Broker) Resolve(ctx context.Context, service string) (Credential, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry, ok := b.cache[service]; ok {
		return entry.cred, entry.err
	}

	cred, err := b.resolveLocked(ctx, service)
	b.cache[service] = cacheEntry{cred: cred, err: err}
	return cred, err
}

func (b *Broker) resolveLocked(ctx context.Context, service string) (Credential, error) {
	chain := FallbackChain(service)

	for _, key := range chain {
		if err := ctx.Err(); err != nil {
			return Credential{}, err
		}

		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return Credential{Service: service, Key: key, Value: value, Source: SourceEnv}, nil
		}

		if value := strings.TrimSpace(b.envFile[key]); value != "" {
			return Credential{Service: service, Key: key, Value: value, Source: SourceEnvFile}, nil
		}

		if b.keychain != nil {
			if value, err := b.keychain.Get(key); err == nil && strings.TrimSpace(value) != "" {
				return Credential{Service: service, Key: key, Value: strings.TrimSpace(value), Source: SourceKeychain}, nil
			}
		}
	}

	return Credential{}, &MissingError{Service: service, Checked: chain}
}

// Invalidate clears the cached outcome for a service so the next Resolve
// re-reads the backends.
func (b *Broker) Invalidate(service string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.cache, service)
}

// Has reports whether a credential can be resolved, without surfacing the
// value or the error.
func (b *Broker) Has(ctx context.Context, service string) bool {
	_, err := b.Resolve(ctx, service)
	return err == nil
}
