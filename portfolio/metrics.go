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

package portfolio

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// VaRConfidence is the lower tail probability used for Value-at-Risk
	VaRConfidence = 0.05
)

// ComputeMetrics calculates the risk and performance snapshot of returns. When benchmark is not
// nil it is aligned with returns on their common dates and the benchmark relative statistics
// are filled in; if the two share no dates those statistics are left nil. Any statistic that
// is undefined for the data is left nil without affecting the others.
func ComputeMetrics(returns, benchmark *ReturnSeries) *RiskMetrics {
	metrics := &RiskMetrics{}
	r := returns.Returns

	metrics.SharpeRatio = optional(sharpeRatio(r))
	metrics.SortinoRatio = optional(sortinoRatio(r))
	metrics.MaxDrawDown = optional(maxDrawDown(r))
	metrics.CAGR = optional(cagr(returns))
	metrics.Volatility = optional(volatility(r))
	metrics.WinRate = optional(winRate(r))
	metrics.ProfitRatio = optional(profitRatio(r))
	metrics.ValueAtRisk = optional(valueAtRisk(r))

	if benchmark == nil {
		return metrics
	}

	p, b, err := AlignBenchmark(returns, benchmark)
	if err != nil {
		log.Warn().Err(err).Str("Benchmark", benchmark.Ticker).Msg("benchmark relative metrics unavailable")
		return metrics
	}

	metrics.Beta = optional(beta(p.Returns, b.Returns))
	metrics.Alpha = optional(alpha(p.Returns, b.Returns))
	metrics.InformationRatio = optional(informationRatio(p.Returns, b.Returns))
	metrics.OverallCorrelation = optional(correlation(p.Returns, b.Returns))

	return metrics
}

func optional(val float64, err error) *float64 {
	if err == nil && (math.IsNaN(val) || math.IsInf(val, 0)) {
		err = ErrComputation
	}
	if err != nil {
		log.Debug().Err(err).Msg("statistic omitted")
		return nil
	}
	return &val
}

func checked(val float64) (float64, error) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return math.NaN(), ErrComputation
	}
	return val, nil
}

// sharpeRatio is the annualized mean return over its standard deviation; the risk free rate is 0
func sharpeRatio(r []float64) (float64, error) {
	if len(r) < 2 {
		return math.NaN(), errors.Wrap(ErrComputation, "sharpe needs at least 2 periods")
	}
	mean, std := stat.MeanStdDev(r, nil)
	if std == 0 {
		return math.NaN(), errors.Wrap(ErrComputation, "returns have zero variance")
	}
	return checked(mean / std * math.Sqrt(TradingDaysPerYear))
}

// sortinoRatio is like the sharpe ratio but penalizes only returns below zero
func sortinoRatio(r []float64) (float64, error) {
	if len(r) < 2 {
		return math.NaN(), errors.Wrap(ErrComputation, "sortino needs at least 2 periods")
	}
	dd := downsideDeviation(r)
	if dd == 0 {
		return math.NaN(), errors.Wrap(ErrComputation, "no negative returns")
	}
	return checked(stat.Mean(r, nil) / dd * math.Sqrt(TradingDaysPerYear))
}

func downsideDeviation(r []float64) float64 {
	downside := 0.0
	for _, xx := range r {
		if xx < 0 {
			downside += xx * xx
		}
	}
	return math.Sqrt(downside / float64(len(r)))
}

func volatility(r []float64) (float64, error) {
	if len(r) < 2 {
		return math.NaN(), errors.Wrap(ErrComputation, "volatility needs at least 2 periods")
	}
	return checked(stat.StdDev(r, nil) * math.Sqrt(TradingDaysPerYear))
}

func maxDrawDown(r []float64) (float64, error) {
	if len(r) == 0 {
		return math.NaN(), errors.Wrap(ErrComputation, "empty series")
	}
	return floats.Min(drawDowns(r)), nil
}

// cagr annualizes the total return over the calendar span of the series
func cagr(returns *ReturnSeries) (float64, error) {
	if returns.Len() == 0 {
		return math.NaN(), errors.Wrap(ErrComputation, "empty series")
	}

	total := 1.0
	for _, xx := range returns.Returns {
		total *= 1.0 + xx
	}

	years := returns.End().Sub(returns.Start()).Hours() / 24 / 365
	if years <= 0 {
		return total - 1.0, nil
	}

	return checked(math.Pow(total, 1.0/years) - 1.0)
}

func winRate(r []float64) (float64, error) {
	if len(r) == 0 {
		return math.NaN(), errors.Wrap(ErrComputation, "empty series")
	}
	wins := 0
	for _, xx := range r {
		if xx > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(r)), nil
}

// profitRatio is the average gain of winning periods over the average loss of losing periods
func profitRatio(r []float64) (float64, error) {
	gain, nGain := 0.0, 0
	loss, nLoss := 0.0, 0
	for _, xx := range r {
		switch {
		case xx > 0:
			gain += xx
			nGain++
		case xx < 0:
			loss += xx
			nLoss++
		}
	}

	if nLoss == 0 {
		return math.NaN(), errors.Wrap(ErrComputation, "no losing periods")
	}
	if nGain == 0 {
		return 0, nil
	}

	return (gain / float64(nGain)) / math.Abs(loss/float64(nLoss)), nil
}

// valueAtRisk is the empirical lower tail quantile of the return distribution
func valueAtRisk(r []float64) (float64, error) {
	if len(r) == 0 {
		return math.NaN(), errors.Wrap(ErrComputation, "empty series")
	}
	sorted := make([]float64, len(r))
	copy(sorted, r)
	sort.Float64s(sorted)
	return stat.Quantile(VaRConfidence, stat.Empirical, sorted, nil), nil
}

func beta(p, b []float64) (float64, error) {
	if len(p) < 2 || len(p) != len(b) {
		return math.NaN(), errors.Wrap(ErrComputation, "beta needs at least 2 aligned periods")
	}
	variance := stat.Variance(b, nil)
	if variance == 0 {
		return math.NaN(), errors.Wrap(ErrComputation, "benchmark has zero variance")
	}
	return checked(stat.Covariance(p, b, nil) / variance)
}

// alpha is the annualized return not explained by exposure to the benchmark
func alpha(p, b []float64) (float64, error) {
	bb, err := beta(p, b)
	if err != nil {
		return math.NaN(), err
	}
	return checked((stat.Mean(p, nil) - bb*stat.Mean(b, nil)) * TradingDaysPerYear)
}

func informationRatio(p, b []float64) (float64, error) {
	if len(p) < 2 || len(p) != len(b) {
		return math.NaN(), errors.Wrap(ErrComputation, "information ratio needs at least 2 aligned periods")
	}
	active := make([]float64, len(p))
	floats.SubTo(active, p, b)
	mean, std := stat.MeanStdDev(active, nil)
	if std == 0 {
		return math.NaN(), errors.Wrap(ErrComputation, "tracking error is zero")
	}
	return checked(mean / std * math.Sqrt(TradingDaysPerYear))
}

func correlation(p, b []float64) (float64, error) {
	if len(p) < 2 || len(p) != len(b) {
		return math.NaN(), errors.Wrap(ErrComputation, "correlation needs at least 2 aligned periods")
	}
	if stat.Variance(p, nil) == 0 || stat.Variance(b, nil) == 0 {
		return math.NaN(), errors.Wrap(ErrComputation, "series has zero variance")
	}
	return checked(stat.Correlation(p, b, nil))
}
