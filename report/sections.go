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
	"time"

	"github.com/penny-vault/pv-analytics/portfolio"
	"github.com/rs/zerolog"
)

func overview(subLog zerolog.Logger, rep *Report, state *analysis) {
	if cumulative, ok := section(subLog, "cumulative_returns", func() (*CumulativeReturns, error) {
		return cumulativeReturns(state)
	}); ok {
		rep.PortfolioOverview.CumulativeReturns = cumulative
	}

	metrics := state.metrics
	rep.PortfolioOverview.KeyMetrics = &KeyMetrics{
		SharpeRatio:      metrics.SharpeRatio,
		SortinoRatio:     metrics.SortinoRatio,
		MaxDrawDown:      metrics.MaxDrawDown,
		CAGR:             metrics.CAGR,
		Volatility:       metrics.Volatility,
		WinRate:          metrics.WinRate,
		ProfitRatio:      metrics.ProfitRatio,
		ValueAtRisk:      metrics.ValueAtRisk,
		Beta:             metrics.Beta,
		Alpha:            metrics.Alpha,
		InformationRatio: metrics.InformationRatio,
	}
}

func cumulativeReturns(state *analysis) (*CumulativeReturns, error) {
	res := &CumulativeReturns{
		Dates:     formatDates(state.returns.Dates),
		Portfolio: state.returns.Cumulative(),
		Stocks:    make(map[string][]float64, len(state.holdings)),
	}

	df, err := portfolio.AlignedReturns(state.holdings)
	if err != nil {
		return nil, err
	}
	df = df.CumProd()
	for _, holding := range state.holdings {
		ticker := holding.Returns.Ticker
		col, err := df.Column(ticker)
		if err != nil {
			return nil, err
		}
		res.Stocks[ticker] = col
	}

	if state.benchmark != nil {
		res.Benchmark = &BenchmarkValues{
			Ticker: state.benchmark.Ticker,
			Dates:  formatDates(state.benchmark.Dates),
			Values: state.benchmark.Cumulative(),
		}
	}

	return res, nil
}

func returnsAnalysis(subLog zerolog.Logger, rep *Report, state *analysis) {
	returns := state.returns

	if heatmap, ok := section(subLog, "monthly_returns_heatmap", func() ([]MonthlyPoint, error) {
		monthly := portfolio.MonthlyReturns(returns)
		res := make([]MonthlyPoint, len(monthly))
		for idx, mm := range monthly {
			res[idx] = MonthlyPoint{
				Year:   mm.Year,
				Month:  int(mm.Month),
				Return: mm.Return,
			}
		}
		return res, nil
	}); ok {
		rep.ReturnsAnalysis.MonthlyReturnsHeatmap = heatmap
	}

	if dist, ok := section(subLog, "returns_distribution", func() ([]ReturnPoint, error) {
		res := make([]ReturnPoint, returns.Len())
		for idx, dt := range returns.Dates {
			res[idx] = ReturnPoint{
				Date:   formatDate(dt),
				Return: returns.Returns[idx],
			}
		}
		return res, nil
	}); ok {
		rep.ReturnsAnalysis.ReturnsDistribution = dist
	}

	if sharpe, ok := section(subLog, "rolling_sharpe", func() ([]SharpePoint, error) {
		points, err := portfolio.Rolling(returns, portfolio.SharpeWindow, portfolio.RollingSharpe, nil)
		if err != nil {
			return nil, err
		}
		res := make([]SharpePoint, len(points))
		for idx, pt := range points {
			res[idx] = SharpePoint{Date: formatDate(pt.Date), Sharpe: pt.Value}
		}
		return res, nil
	}); ok {
		rep.ReturnsAnalysis.RollingSharpe = sharpe
	}

	if sortino, ok := section(subLog, "rolling_sortino", func() ([]SortinoPoint, error) {
		points, err := portfolio.Rolling(returns, portfolio.SortinoWindow, portfolio.RollingSortino, nil)
		if err != nil {
			return nil, err
		}
		res := make([]SortinoPoint, len(points))
		for idx, pt := range points {
			res[idx] = SortinoPoint{Date: formatDate(pt.Date), Sortino: pt.Value}
		}
		return res, nil
	}); ok {
		rep.ReturnsAnalysis.RollingSortino = sortino
	}
}

func riskMetrics(subLog zerolog.Logger, rep *Report, state *analysis) {
	metrics := state.metrics

	rep.RiskMetrics.Ratios = &Ratios{
		SharpeRatio:      metrics.SharpeRatio,
		SortinoRatio:     metrics.SortinoRatio,
		InformationRatio: metrics.InformationRatio,
	}
	rep.RiskMetrics.Measures = &Measures{
		Volatility:  metrics.Volatility,
		ValueAtRisk: metrics.ValueAtRisk,
		MaxDrawDown: metrics.MaxDrawDown,
	}

	if vol, ok := section(subLog, "rolling_volatility", func() ([]VolatilityPoint, error) {
		points, err := portfolio.Rolling(state.returns, portfolio.VolatilityWindow, portfolio.RollingVolatility, nil)
		if err != nil {
			return nil, err
		}
		res := make([]VolatilityPoint, len(points))
		for idx, pt := range points {
			res[idx] = VolatilityPoint{Date: formatDate(pt.Date), Volatility: pt.Value}
		}
		return res, nil
	}); ok {
		rep.RiskMetrics.RollingVolatility = vol
	}
}

func drawDownAnalysis(subLog zerolog.Logger, rep *Report, state *analysis) {
	returns := state.returns
	dda := &rep.DrawDownAnalysis
	dda.MaxDrawDown = state.metrics.MaxDrawDown

	if series, ok := section(subLog, "drawdown_series", func() ([]DrawDownPoint, error) {
		dd := portfolio.DrawDownSeries(returns)
		res := make([]DrawDownPoint, len(dd))
		for idx, val := range dd {
			res[idx] = DrawDownPoint{Date: formatDate(returns.Dates[idx]), DrawDown: val}
		}
		return res, nil
	}); ok {
		dda.DrawDownSeries = series
	}

	if worst, ok := section(subLog, "worst_drawdowns", func() ([]WorstDrawDown, error) {
		top := portfolio.TopDrawDowns(returns, WorstDrawDownCount)
		res := make([]WorstDrawDown, len(top))
		for idx, dd := range top {
			subLog.Debug().EmbedObject(dd).Msg("draw down")
			res[idx] = WorstDrawDown{
				Start:      formatDate(dd.Begin),
				Recovery:   formatOptionalDate(dd.Recovery),
				DrawDown:   dd.LossPercent,
				Underwater: dd.UnderwaterDays,
			}
		}
		return res, nil
	}); ok {
		dda.WorstDrawDowns = worst
	}

	all, ok := section(subLog, "drawdown_distribution", func() ([]*portfolio.DrawDown, error) {
		return portfolio.AllDrawDowns(returns), nil
	})
	if !ok || len(all) == 0 {
		return
	}

	avgLength := portfolio.AverageDrawDownLength(all)
	dda.AvgDrawDownLength = &avgLength

	dda.DrawDownDistribution = make([]float64, len(all))
	for idx, dd := range all {
		dda.DrawDownDistribution[idx] = dd.LossPercent
	}
}

func advancedAnalytics(subLog zerolog.Logger, rep *Report, state *analysis) {
	advanced := &rep.AdvancedAnalytics

	if state.benchmark != nil {
		if beta, ok := section(subLog, "rolling_beta", func() ([]BetaPoint, error) {
			short, err := portfolio.Rolling(state.aligned, portfolio.BetaShortWindow, portfolio.RollingBeta, state.benchmark)
			if err != nil {
				return nil, err
			}
			long, err := portfolio.Rolling(state.aligned, portfolio.BetaLongWindow, portfolio.RollingBeta, state.benchmark)
			if err != nil {
				return nil, err
			}
			res := make([]BetaPoint, len(short))
			for idx, pt := range short {
				res[idx] = BetaPoint{
					Date:    formatDate(pt.Date),
					Beta30d: pt.Value,
					Beta90d: long[idx].Value,
				}
			}
			return res, nil
		}); ok {
			advanced.RollingBeta = beta
		}

		if corr, ok := section(subLog, "rolling_correlation", func() ([]CorrelationPoint, error) {
			points, err := portfolio.Rolling(state.aligned, portfolio.CorrelationWindow, portfolio.RollingCorrelation, state.benchmark)
			if err != nil {
				return nil, err
			}
			res := make([]CorrelationPoint, len(points))
			for idx, pt := range points {
				res[idx] = CorrelationPoint{Date: formatDate(pt.Date), Correlation: pt.Value}
			}
			return res, nil
		}); ok {
			advanced.RollingCorrelation = corr
		}

		advanced.OverallCorrelation = state.metrics.OverallCorrelation
	}

	if matrix, ok := section(subLog, "correlation_matrix", func() (map[string]map[string]float64, error) {
		series := make([]*portfolio.ReturnSeries, len(state.holdings))
		for idx, holding := range state.holdings {
			series[idx] = holding.Returns
		}
		return portfolio.CorrelationMatrix(series)
	}); ok {
		advanced.CorrelationMatrix = matrix
	}
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}
