// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package data

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-analytics/common"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
)

// CachedProvider memoizes price histories of another PriceProvider. Entries are keyed by
// ticker and date range so a cached history is only reused for an identical request.
type CachedProvider struct {
	Provider PriceProvider
	cache    *common.Cache
}

func NewCachedProvider(provider PriceProvider, cache *common.Cache) *CachedProvider {
	return &CachedProvider{
		Provider: provider,
		cache:    cache,
	}
}

// FetchPrices implements PriceProvider
func (cp *CachedProvider) FetchPrices(ctx context.Context, tickers []string, begin, end time.Time) (map[string]*PriceSeries, error) {
	res := make(map[string]*PriceSeries, len(tickers))
	missing := make([]string, 0, len(tickers))

	for _, ticker := range tickers {
		if series, ok := cp.load(ctx, ticker, begin, end); ok {
			res[ticker] = series
			continue
		}
		missing = append(missing, ticker)
	}

	log.Debug().Int("Hits", len(res)).Int("Misses", len(missing)).Msg("price cache lookup")

	if len(missing) == 0 {
		return res, nil
	}

	fetched, err := cp.Provider.FetchPrices(ctx, missing, begin, end)
	if err != nil {
		return nil, err
	}

	for ticker, series := range fetched {
		res[ticker] = series
		cp.store(ctx, ticker, begin, end, series)
	}

	return res, nil
}

func (cp *CachedProvider) load(ctx context.Context, ticker string, begin, end time.Time) (*PriceSeries, bool) {
	raw, err := cp.cache.Get(ctx, cacheKey(ticker, begin, end))
	if err != nil {
		return nil, false
	}

	series := &PriceSeries{}
	if err := json.Unmarshal(raw, series); err != nil {
		log.Warn().Err(err).Str("Ticker", ticker).Msg("discarding corrupt cache entry")
		return nil, false
	}

	return series, true
}

func (cp *CachedProvider) store(ctx context.Context, ticker string, begin, end time.Time, series *PriceSeries) {
	raw, err := json.Marshal(series)
	if err != nil {
		log.Warn().Err(err).Str("Ticker", ticker).Msg("could not serialize price series for cache")
		return
	}

	if err := cp.cache.Set(ctx, cacheKey(ticker, begin, end), raw); err != nil {
		log.Warn().Err(err).Str("Ticker", ticker).Msg("could not write price series to cache")
	}
}

func cacheKey(ticker string, begin, end time.Time) string {
	sum := blake3.Sum256([]byte(fmt.Sprintf("%s:%s:%s", ticker, begin.Format(common.DateFormat), end.Format(common.DateFormat))))
	return "prices:" + hex.EncodeToString(sum[:])
}
