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
	"time"

	"github.com/penny-vault/pv-analytics/dataframe"
)

const (
	// PortfolioName is the ticker assigned to an aggregated portfolio return series
	PortfolioName = "PORTFOLIO"

	TradingDaysPerYear = 252
	WeightTolerance    = 1e-4
)

// ReturnSeries holds simple periodic returns in ascending date order
type ReturnSeries struct {
	Ticker  string
	Dates   []time.Time
	Returns []float64
}

// Holding is one instrument of a portfolio and its fixed weight
type Holding struct {
	Returns *ReturnSeries
	Weight  float64
}

// DrawDown is a single underwater period of a wealth curve. Begin is the first date the curve
// is below its running peak and Recovery the first later date it is back at the peak; a nil
// Recovery means the period had not recovered by the end of the series.
type DrawDown struct {
	Begin          time.Time
	Trough         time.Time
	Recovery       *time.Time
	LossPercent    float64
	UnderwaterDays int
}

// RiskMetrics is a snapshot of scalar performance statistics. A nil field was undefined for
// the data it was computed from.
type RiskMetrics struct {
	SharpeRatio        *float64
	SortinoRatio       *float64
	MaxDrawDown        *float64
	CAGR               *float64
	Volatility         *float64
	WinRate            *float64
	ProfitRatio        *float64
	ValueAtRisk        *float64
	Beta               *float64
	Alpha              *float64
	InformationRatio   *float64
	OverallCorrelation *float64
}

// RollingPoint is one observation of a rolling statistic; Value is nil until a full window of
// history exists or when the statistic is undefined on that window
type RollingPoint struct {
	Date  time.Time
	Value *float64
}

// MonthlyReturn is the compounded return of one calendar month
type MonthlyReturn struct {
	Year   int
	Month  time.Month
	Return float64
}

// Len returns the number of periods in the series
func (rs *ReturnSeries) Len() int {
	return len(rs.Returns)
}

// Cumulative returns the running product of (1+r) over the series
func (rs *ReturnSeries) Cumulative() []float64 {
	return CumulativeReturns(rs.Returns)
}

// DataFrame converts the series into a single column dataframe named after its ticker
func (rs *ReturnSeries) DataFrame() *dataframe.DataFrame {
	return dataframe.New(rs.Ticker, rs.Dates, rs.Returns)
}

// Start returns the first date in the series
func (rs *ReturnSeries) Start() time.Time {
	if len(rs.Dates) == 0 {
		return time.Time{}
	}
	return rs.Dates[0]
}

// End returns the last date in the series
func (rs *ReturnSeries) End() time.Time {
	if len(rs.Dates) == 0 {
		return time.Time{}
	}
	return rs.Dates[len(rs.Dates)-1]
}

func fromDataFrame(ticker string, df *dataframe.DataFrame, col int) *ReturnSeries {
	rs := &ReturnSeries{
		Ticker:  ticker,
		Dates:   make([]time.Time, df.Len()),
		Returns: make([]float64, df.Len()),
	}
	copy(rs.Dates, df.Dates)
	copy(rs.Returns, df.Vals[col])
	return rs
}
