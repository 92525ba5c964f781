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
	"github.com/penny-vault/pv-analytics/common"
	"github.com/rs/zerolog"
)

func (o *DrawDown) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Begin", o.Begin).Time("Trough", o.Trough).Float64("LossPercent", o.LossPercent).Int("UnderwaterDays", o.UnderwaterDays)
	if o.Recovery != nil {
		e.Str("Recovery", o.Recovery.Format(common.DateFormat))
	} else {
		e.Str("Recovery", "ongoing")
	}
}

func (metrics *RiskMetrics) MarshalZerologObject(e *zerolog.Event) {
	float := func(key string, val *float64) {
		if val != nil {
			e.Float64(key, *val)
		}
	}

	float("SharpeRatio", metrics.SharpeRatio)
	float("SortinoRatio", metrics.SortinoRatio)
	float("MaxDrawDown", metrics.MaxDrawDown)
	float("CAGR", metrics.CAGR)
	float("Volatility", metrics.Volatility)
	float("WinRate", metrics.WinRate)
	float("ProfitRatio", metrics.ProfitRatio)
	float("ValueAtRisk", metrics.ValueAtRisk)
	float("Beta", metrics.Beta)
	float("Alpha", metrics.Alpha)
	float("InformationRatio", metrics.InformationRatio)
	float("OverallCorrelation", metrics.OverallCorrelation)
}

func (rs *ReturnSeries) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", rs.Ticker).Int("NumPeriods", rs.Len()).Time("Start", rs.Start()).Time("End", rs.End())
}
