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
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Statistic selects the quantity computed by Rolling
type Statistic int

const (
	RollingSharpe Statistic = iota
	RollingSortino
	RollingVolatility
	RollingBeta
	RollingCorrelation
)

// Standard window lengths in trading days
const (
	SharpeWindow      = 126
	SortinoWindow     = 126
	VolatilityWindow  = 30
	BetaShortWindow   = 30
	BetaLongWindow    = 90
	CorrelationWindow = 30
)

func (s Statistic) String() string {
	switch s {
	case RollingSharpe:
		return "sharpe"
	case RollingSortino:
		return "sortino"
	case RollingVolatility:
		return "volatility"
	case RollingBeta:
		return "beta"
	case RollingCorrelation:
		return "correlation"
	default:
		return fmt.Sprintf("Statistic(%d)", int(s))
	}
}

// Rolling computes statistic over the trailing window ending on each date of returns. The
// result has one point per date; points without a full window of history, or where the
// statistic is undefined, have a nil value. Beta and correlation need a benchmark defined on
// exactly the same dates as returns.
func Rolling(returns *ReturnSeries, window int, statistic Statistic, benchmark *ReturnSeries) ([]RollingPoint, error) {
	if window < 1 {
		return nil, errors.Wrapf(ErrInsufficientData, "window must be positive, got %d", window)
	}

	df := returns.DataFrame()

	var lambda func(cols [][]float64) float64
	switch statistic {
	case RollingSharpe:
		lambda = func(cols [][]float64) float64 { return value(sharpeRatio(cols[0])) }
	case RollingSortino:
		lambda = func(cols [][]float64) float64 { return value(sortinoRatio(cols[0])) }
	case RollingVolatility:
		lambda = func(cols [][]float64) float64 { return value(volatility(cols[0])) }
	case RollingBeta, RollingCorrelation:
		if err := sameDates(returns, benchmark); err != nil {
			return nil, err
		}
		if err := df.Insert(benchmark.Ticker, benchmark.Returns); err != nil {
			return nil, err
		}
		if statistic == RollingBeta {
			lambda = func(cols [][]float64) float64 { return value(beta(cols[0], cols[1])) }
		} else {
			lambda = func(cols [][]float64) float64 { return value(correlation(cols[0], cols[1])) }
		}
	default:
		return nil, errors.Errorf("unknown rolling statistic %d", int(statistic))
	}

	rolled := df.Rolling(window, statistic.String(), lambda)

	res := make([]RollingPoint, rolled.Len())
	for idx, dt := range rolled.Dates {
		res[idx].Date = dt
		if v := rolled.Vals[0][idx]; !math.IsNaN(v) && !math.IsInf(v, 0) {
			v := v
			res[idx].Value = &v
		}
	}

	return res, nil
}

func value(val float64, err error) float64 {
	if err != nil {
		return math.NaN()
	}
	return val
}

func sameDates(returns, benchmark *ReturnSeries) error {
	if benchmark == nil {
		return errors.Wrap(ErrNoOverlap, "benchmark required")
	}
	if len(returns.Dates) != len(benchmark.Dates) || len(benchmark.Dates) != len(benchmark.Returns) {
		return errors.Wrapf(ErrNoOverlap, "benchmark %s is not aligned", benchmark.Ticker)
	}
	for idx := range returns.Dates {
		if !returns.Dates[idx].Equal(benchmark.Dates[idx]) {
			return errors.Wrapf(ErrNoOverlap, "benchmark %s is not aligned", benchmark.Ticker)
		}
	}
	return nil
}
