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
	"time"

	"github.com/penny-vault/pv-analytics/common"
	"github.com/pkg/errors"
)

// PriceSeries is the daily closing price history of one instrument. Dates are strictly
// increasing and gaps for non-trading days are allowed.
type PriceSeries struct {
	Ticker string      `json:"ticker"`
	Dates  []time.Time `json:"dates"`
	Prices []float64   `json:"prices"`
}

// Validate reports unsorted dates, duplicate dates or mismatched lengths as ErrMalformedSeries
func (ps *PriceSeries) Validate() error {
	if len(ps.Dates) != len(ps.Prices) {
		return errors.Wrapf(ErrMalformedSeries, "%s has %d dates and %d prices", ps.Ticker, len(ps.Dates), len(ps.Prices))
	}

	for idx := 1; idx < len(ps.Dates); idx++ {
		if !ps.Dates[idx].After(ps.Dates[idx-1]) {
			return errors.Wrapf(ErrMalformedSeries, "%s dates not strictly increasing at %s", ps.Ticker, ps.Dates[idx].Format(common.DateFormat))
		}
	}

	return nil
}

// Len returns the number of observations in the series
func (ps *PriceSeries) Len() int {
	return len(ps.Dates)
}

// Quote is a live market snapshot. Every field is optional; absent values are nil.
type Quote struct {
	Ticker        string   `json:"ticker"`
	Price         *float64 `json:"price,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	Volume        *int64   `json:"volume,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	ForwardPE     *float64 `json:"forward_pe,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
}
