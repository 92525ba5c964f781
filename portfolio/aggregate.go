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

	"github.com/penny-vault/pv-analytics/dataframe"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Aggregate combines the holdings into a single portfolio return series. The result is defined
// on the dates every holding has a return for and its value on each date is the weighted sum
// of the holdings' returns.
func Aggregate(holdings []*Holding) (*ReturnSeries, error) {
	if err := validateWeights(holdings); err != nil {
		return nil, err
	}

	df, err := AlignedReturns(holdings)
	if err != nil {
		return nil, err
	}

	res := &ReturnSeries{
		Ticker:  PortfolioName,
		Dates:   df.Dates,
		Returns: make([]float64, df.Len()),
	}

	for colIdx, holding := range holdings {
		col := df.Vals[colIdx]
		for rowIdx := range res.Returns {
			res.Returns[rowIdx] += holding.Weight * col[rowIdx]
		}
	}

	log.Debug().Int("NumHoldings", len(holdings)).Int("NumPeriods", res.Len()).Time("Start", res.Start()).Time("End", res.End()).Msg("aggregated portfolio returns")

	return res, nil
}

// AlignedReturns returns a dataframe with one column per holding, in holding order, restricted
// to the dates shared by every holding and sorted ascending
func AlignedReturns(holdings []*Holding) (*dataframe.DataFrame, error) {
	if len(holdings) == 0 {
		return nil, errors.Wrap(ErrInvalidWeights, "portfolio has no holdings")
	}

	frames := make([]*dataframe.DataFrame, len(holdings))
	for idx, holding := range holdings {
		frames[idx] = holding.Returns.DataFrame()
	}

	df, err := dataframe.Intersect(frames...)
	if errors.Is(err, dataframe.ErrNoCommonDates) {
		return nil, errors.Wrap(ErrNoOverlap, "holdings")
	}
	if err != nil {
		return nil, err
	}

	return df, nil
}

// AlignBenchmark restricts the portfolio and benchmark to their common dates in ascending order
func AlignBenchmark(portfolio, benchmark *ReturnSeries) (*ReturnSeries, *ReturnSeries, error) {
	df, err := dataframe.Intersect(portfolio.DataFrame(), benchmark.DataFrame())
	if errors.Is(err, dataframe.ErrNoCommonDates) {
		return nil, nil, errors.Wrapf(ErrNoOverlap, "benchmark %s", benchmark.Ticker)
	}
	if err != nil {
		return nil, nil, err
	}

	return fromDataFrame(portfolio.Ticker, df, 0), fromDataFrame(benchmark.Ticker, df, 1), nil
}

func validateWeights(holdings []*Holding) error {
	if len(holdings) == 0 {
		return errors.Wrap(ErrInvalidWeights, "portfolio has no holdings")
	}

	seen := make(map[string]bool, len(holdings))
	sum := 0.0
	for _, holding := range holdings {
		if holding == nil || holding.Returns == nil {
			return errors.Wrap(ErrInvalidWeights, "holding without returns")
		}
		if seen[holding.Returns.Ticker] {
			return errors.Wrapf(ErrInvalidWeights, "duplicate holding %s", holding.Returns.Ticker)
		}
		seen[holding.Returns.Ticker] = true

		if holding.Weight < 0 || math.IsNaN(holding.Weight) || math.IsInf(holding.Weight, 0) {
			return errors.Wrapf(ErrInvalidWeights, "weight of %s is %f", holding.Returns.Ticker, holding.Weight)
		}
		sum += holding.Weight
	}

	if math.Abs(sum-1.0) > WeightTolerance {
		return errors.Wrapf(ErrInvalidWeights, "weights sum to %f", sum)
	}

	return nil
}
