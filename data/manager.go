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
	"sync"
	"time"

	"github.com/penny-vault/pv-analytics/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Manager fans requests for several tickers out to the underlying providers, one request per
// ticker, and waits for every one of them. A failure for one ticker never cancels the others.
type Manager struct {
	Prices PriceProvider
	Quotes QuoteProvider
}

func NewManager(prices PriceProvider, quotes QuoteProvider) *Manager {
	return &Manager{
		Prices: prices,
		Quotes: quotes,
	}
}

// FetchPrices implements PriceProvider. Tickers that failed are logged and left out; use
// FetchAll when the caller needs to know why a ticker is missing.
func (m *Manager) FetchPrices(ctx context.Context, tickers []string, begin, end time.Time) (map[string]*PriceSeries, error) {
	res, errs, err := m.FetchAll(ctx, tickers, begin, end)
	if err != nil {
		return nil, err
	}

	for ticker, err := range errs {
		log.Warn().Stack().Err(err).Str("Ticker", ticker).Msg("cannot download ticker prices")
	}

	return res, nil
}

// FetchAll downloads every ticker and returns the series that loaded along with the error of
// each ticker that did not. A ticker the provider silently omitted appears in neither map.
func (m *Manager) FetchAll(ctx context.Context, tickers []string, begin, end time.Time) (map[string]*PriceSeries, map[string]error, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "manager.FetchAll")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("Tickers", tickers))

	if end.Before(begin) {
		return nil, nil, ErrInvalidTimeRange
	}

	res := make(map[string]*PriceSeries, len(tickers))
	errs := make(map[string]error)
	if len(tickers) == 0 {
		return res, errs, nil
	}

	var lock sync.Mutex
	var g errgroup.Group
	g.SetLimit(len(tickers))

	for _, ticker := range unique(tickers) {
		ticker := ticker
		g.Go(func() error {
			series, err := m.Prices.FetchPrices(ctx, []string{ticker}, begin, end)

			lock.Lock()
			defer lock.Unlock()

			if err != nil {
				errs[ticker] = err
				return nil
			}
			if s, ok := series[ticker]; ok && s != nil {
				res[ticker] = s
			}
			return nil
		})
	}

	// workers never return an error
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	return res, errs, nil
}

// FetchQuotes returns a quote for every ticker that could be retrieved
func (m *Manager) FetchQuotes(ctx context.Context, tickers []string) map[string]*Quote {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "manager.FetchQuotes")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("Tickers", tickers))

	res := make(map[string]*Quote, len(tickers))
	if len(tickers) == 0 || m.Quotes == nil {
		return res
	}

	var lock sync.Mutex
	var g errgroup.Group
	g.SetLimit(len(tickers))

	for _, ticker := range unique(tickers) {
		ticker := ticker
		g.Go(func() error {
			quote, err := m.Quotes.FetchQuote(ctx, ticker)
			if err != nil {
				log.Warn().Err(err).Str("Ticker", ticker).Msg("cannot fetch live quote")
				return nil
			}
			if quote == nil {
				return nil
			}

			lock.Lock()
			res[ticker] = quote
			lock.Unlock()
			return nil
		})
	}

	// workers never return an error
	_ = g.Wait()

	return res
}

func unique(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	res := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		if !seen[ticker] {
			seen[ticker] = true
			res = append(res, ticker)
		}
	}
	return res
}
