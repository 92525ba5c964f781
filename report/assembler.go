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

package report

import (
	"context"
	"fmt"
	"time"

	"github.com/penny-vault/pv-analytics/common"
	"github.com/penny-vault/pv-analytics/data"
	"github.com/penny-vault/pv-analytics/observability/opentelemetry"
	"github.com/penny-vault/pv-analytics/portfolio"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	WorstDrawDownCount = 10
)

// Assembler runs a complete analysis: it fetches market data, computes the portfolio series
// and fills in every report section
type Assembler struct {
	Prices data.PriceProvider
	Quotes data.QuoteProvider

	// Now is the clock used for computed_on; time.Now when nil
	Now func() time.Time
}

func NewAssembler(prices data.PriceProvider, quotes data.QuoteProvider) *Assembler {
	return &Assembler{
		Prices: prices,
		Quotes: quotes,
	}
}

// analysis holds the intermediate series shared by the report sections
type analysis struct {
	holdings  []*portfolio.Holding
	returns   *portfolio.ReturnSeries
	benchmark *portfolio.ReturnSeries
	// portfolio returns restricted to the dates of benchmark
	aligned *portfolio.ReturnSeries
	metrics *portfolio.RiskMetrics
}

// Build produces the report for settings. Missing or unusable data for any holding aborts the
// analysis; every other failure only empties the affected section.
func (a *Assembler) Build(ctx context.Context, settings *Settings) (*Report, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "report.Build")
	defer span.End()

	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}

	rep := newReport(settings, now)
	subLog := log.With().Str("ReportID", rep.ReportID.String()).Strs("Tickers", settings.Stocks).Str("Benchmark", settings.Benchmark).Logger()
	span.SetAttributes(
		attribute.String("ReportID", rep.ReportID.String()),
		attribute.StringSlice("Tickers", settings.Stocks),
	)

	prices, fetchErrs, quotes, err := a.fetch(ctx, settings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}
	rep.LiveMarketData = quotes

	state, err := prepare(subLog, settings, prices, fetchErrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "portfolio returns unavailable")
		subLog.Error().Stack().Err(err).Msg("cannot compute portfolio returns")
		return nil, err
	}

	state.metrics = portfolio.ComputeMetrics(state.returns, state.benchmark)
	subLog.Debug().EmbedObject(state.metrics).Msg("computed risk metrics")

	overview(subLog, rep, state)
	returnsAnalysis(subLog, rep, state)
	riskMetrics(subLog, rep, state)
	drawDownAnalysis(subLog, rep, state)
	advancedAnalytics(subLog, rep, state)

	subLog.Info().Int("NumPeriods", state.returns.Len()).Bool("Benchmark", state.benchmark != nil).Msg("portfolio analysis complete")

	return rep, nil
}

// fetch retrieves price histories and live quotes concurrently. Per-ticker download errors are
// returned separately so callers can tell a missing ticker from a broken one.
func (a *Assembler) fetch(ctx context.Context, settings *Settings) (map[string]*data.PriceSeries, map[string]error, map[string]*data.Quote, error) {
	manager := data.NewManager(a.Prices, a.Quotes)

	tickers := make([]string, 0, len(settings.Stocks)+1)
	tickers = append(tickers, settings.Stocks...)
	tickers = append(tickers, settings.Benchmark)

	var prices map[string]*data.PriceSeries
	var errs map[string]error
	var quotes map[string]*data.Quote

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prices, errs, err = manager.FetchAll(gctx, tickers, settings.Start, settings.End)
		return err
	})
	g.Go(func() error {
		quotes = manager.FetchQuotes(gctx, settings.Stocks)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	return prices, errs, quotes, nil
}

func prepare(subLog zerolog.Logger, settings *Settings, prices map[string]*data.PriceSeries, errs map[string]error) (*analysis, error) {
	state := &analysis{
		holdings: make([]*portfolio.Holding, len(settings.Stocks)),
	}

	for idx, ticker := range settings.Stocks {
		if err, ok := errs[ticker]; ok {
			return nil, errors.Wrapf(err, "cannot load prices for %s", ticker)
		}

		series, ok := prices[ticker]
		if !ok || series.Len() == 0 {
			return nil, errors.Wrapf(data.ErrNoData, "no price data for %s between %s and %s", ticker, formatDate(settings.Start), formatDate(settings.End))
		}

		rs, err := portfolio.ComputeReturns(series)
		if err != nil {
			return nil, err
		}

		state.holdings[idx] = &portfolio.Holding{
			Returns: rs,
			Weight:  settings.Weights[idx],
		}
	}

	returns, err := portfolio.Aggregate(state.holdings)
	if err != nil {
		return nil, err
	}
	state.returns = returns

	state.aligned, state.benchmark = benchmarkReturns(subLog, settings.Benchmark, returns, prices[settings.Benchmark], errs[settings.Benchmark])
	return state, nil
}

// benchmarkReturns aligns the benchmark with the portfolio. fetchErr is the error the provider
// returned for the benchmark, if any. Any problem with the benchmark results in nil series;
// malformed data is logged as an error, everything else as a warning.
func benchmarkReturns(subLog zerolog.Logger, ticker string, returns *portfolio.ReturnSeries, prices *data.PriceSeries, fetchErr error) (*portfolio.ReturnSeries, *portfolio.ReturnSeries) {
	if errors.Is(fetchErr, data.ErrMalformedSeries) {
		subLog.Error().Stack().Err(fetchErr).Msg("benchmark data is malformed; benchmark sections omitted")
		return nil, nil
	}
	if fetchErr != nil {
		subLog.Warn().Err(fetchErr).Msg("cannot download benchmark; benchmark sections omitted")
		return nil, nil
	}

	if prices == nil || prices.Len() == 0 {
		subLog.Warn().Err(data.ErrNoData).Msg("benchmark has no data; benchmark sections omitted")
		return nil, nil
	}

	rs, err := portfolio.ComputeReturns(prices)
	if errors.Is(err, data.ErrMalformedSeries) {
		subLog.Error().Stack().Err(err).Msg("benchmark data is malformed; benchmark sections omitted")
		return nil, nil
	}
	if err != nil {
		subLog.Warn().Err(err).Msg("benchmark returns unavailable; benchmark sections omitted")
		return nil, nil
	}

	aligned, benchmark, err := portfolio.AlignBenchmark(returns, rs)
	if err != nil {
		subLog.Warn().Err(err).Msg("benchmark does not overlap portfolio; benchmark sections omitted")
		return nil, nil
	}

	return aligned, benchmark
}

// section runs fn inside a failure boundary. Errors and panics are logged and reported as
// ok == false so the caller can leave the section empty.
func section[T any](subLog zerolog.Logger, name string, fn func() (T, error)) (result T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			subLog.Error().Str("Section", name).Str("Panic", fmt.Sprint(r)).Msg("report section failed")
			var empty T
			result = empty
			ok = false
		}
	}()

	val, err := fn()
	if err != nil {
		subLog.Warn().Stack().Err(err).Str("Section", name).Msg("report section unavailable")
		return result, false
	}

	return val, true
}

func formatDate(t time.Time) string {
	return t.Format(common.DateFormat)
}

func formatDates(dates []time.Time) []string {
	res := make([]string, len(dates))
	for idx, dt := range dates {
		res[idx] = formatDate(dt)
	}
	return res
}
