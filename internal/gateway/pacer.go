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

package gateway

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// providerRates paces outbound calls below each provider's documented
// limit. LinkedIn allows 100/min; the others are conservative defaults.
var providerRates = map[string]rate.Limit{
	"apollo":       rate.Limit(2),
	"firecrawl":    rate.Limit(2),
	"clearbit":     rate.Limit(5),
	"proxycurl":    rate.Limit(1),
	"builtwith":    rate.Limit(2),
	"google_ads":   rate.Limit(5),
	"linkedin_ads": rate.Limit(100.0 / 60.0),
}

const defaultRate = rate.Limit(2)

// Pacer applies a per-provider token bucket to outbound calls so a
// burst of tool invocations cannot trip provider rate limits on its own.
type Pacer struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewPacer builds a pacer with the default per-provider rates.
func NewPacer() *Pacer {
	return &Pacer{limiters: make(map[string]*rate.Limiter)}
}

// Wait blocks until the provider's bucket has a token or the context
// is cancelled.
func (p *Pacer) Wait(ctx context.Context, providerName string) error {
	return p.limiter(providerName).Wait(ctx)
}

func (p *Pacer) limiter(providerName string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.limiters[providerName]; ok {
		return l
	}

	limit, ok := providerRates[providerName]
	if !ok {
		limit = defaultRate
	}
	l := rate.NewLimiter(limit, burstFor(limit))
	p.limiters[providerName] = l
	return l
}

// burstFor sizes the bucket to roughly one second of capacity, minimum 1.
func burstFor(limit rate.Limit) int {
	if limit < 1 {
		return 1
	}
	return int(limit)
}
