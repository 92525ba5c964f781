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
	"time"

	"github.com/penny-vault/pv-analytics/data"
	"github.com/penny-vault/pv-analytics/dataframe"
	"github.com/pkg/errors"
)

// ComputeReturns converts a price history into simple returns, price[t]/price[t-1] - 1. Prices
// that are not finite or not positive are dropped before differencing. The first date has no
// prior price and so is not part of the result.
func ComputeReturns(prices *data.PriceSeries) (*ReturnSeries, error) {
	if err := prices.Validate(); err != nil {
		return nil, err
	}

	df := dataframe.New(prices.Ticker, prices.Dates, prices.Prices).Drop(math.NaN())

	dates := make([]time.Time, 0, df.Len())
	vals := make([]float64, 0, df.Len())
	for idx, price := range df.Vals[0] {
		if price <= 0 {
			continue
		}
		dates = append(dates, df.Dates[idx])
		vals = append(vals, price)
	}

	if len(vals) < 2 {
		return nil, errors.Wrapf(ErrInsufficientData, "%s has %d usable prices, need at least 2", prices.Ticker, len(vals))
	}

	rs := &ReturnSeries{
		Ticker:  prices.Ticker,
		Dates:   dates[1:],
		Returns: make([]float64, len(vals)-1),
	}

	for idx := 1; idx < len(vals); idx++ {
		rs.Returns[idx-1] = vals[idx]/vals[idx-1] - 1.0
	}

	return rs, nil
}

// CumulativeReturns computes the running product of (1+r). Element 0 equals 1+returns[0].
func CumulativeReturns(returns []float64) []float64 {
	cum := make([]float64, len(returns))
	acc := 1.0
	for idx, r := range returns {
		acc *= 1.0 + r
		cum[idx] = acc
	}
	return cum
}
