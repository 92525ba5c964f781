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

	"github.com/google/uuid"
	"github.com/penny-vault/pv-analytics/data"
)

// Report is the complete result of one portfolio analysis
type Report struct {
	ReportID          uuid.UUID              `json:"report_id"`
	ComputedOn        time.Time              `json:"computed_on"`
	PortfolioSettings PortfolioSettings      `json:"portfolio_settings"`
	LiveMarketData    map[string]*data.Quote `json:"live_market_data"`
	PortfolioOverview PortfolioOverview      `json:"portfolio_overview"`
	ReturnsAnalysis   ReturnsAnalysis        `json:"returns_analysis"`
	RiskMetrics       RiskMetrics            `json:"risk_metrics"`
	DrawDownAnalysis  DrawDownAnalysis       `json:"drawdown_analysis"`
	AdvancedAnalytics AdvancedAnalytics      `json:"advanced_analytics"`
}

type PortfolioSettings struct {
	Stocks    []StockWeight `json:"stocks"`
	DateRange DateRange     `json:"date_range"`
	Benchmark string        `json:"benchmark"`
}

type StockWeight struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type PortfolioOverview struct {
	CumulativeReturns *CumulativeReturns `json:"cumulative_returns,omitempty"`
	KeyMetrics        *KeyMetrics        `json:"key_metrics,omitempty"`
}

type CumulativeReturns struct {
	Dates     []string             `json:"dates"`
	Portfolio []float64            `json:"portfolio"`
	Stocks    map[string][]float64 `json:"stocks"`
	Benchmark *BenchmarkValues     `json:"benchmark,omitempty"`
}

// BenchmarkValues carries its own dates as the benchmark is only defined where it overlaps
// the portfolio
type BenchmarkValues struct {
	Ticker string    `json:"ticker"`
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

type KeyMetrics struct {
	SharpeRatio      *float64 `json:"Sharpe_Ratio,omitempty"`
	SortinoRatio     *float64 `json:"Sortino_Ratio,omitempty"`
	MaxDrawDown      *float64 `json:"Max_Drawdown,omitempty"`
	CAGR             *float64 `json:"CAGR,omitempty"`
	Volatility       *float64 `json:"Volatility,omitempty"`
	WinRate          *float64 `json:"Win_Rate,omitempty"`
	ProfitRatio      *float64 `json:"Profit_Ratio,omitempty"`
	ValueAtRisk      *float64 `json:"Value_at_Risk,omitempty"`
	Beta             *float64 `json:"Beta,omitempty"`
	Alpha            *float64 `json:"Alpha,omitempty"`
	InformationRatio *float64 `json:"Information_Ratio,omitempty"`
}

type ReturnsAnalysis struct {
	MonthlyReturnsHeatmap []MonthlyPoint `json:"monthly_returns_heatmap"`
	ReturnsDistribution   []ReturnPoint  `json:"returns_distribution"`
	RollingSharpe         []SharpePoint  `json:"rolling_sharpe"`
	RollingSortino        []SortinoPoint `json:"rolling_sortino"`
}

type MonthlyPoint struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Return float64 `json:"return"`
}

type ReturnPoint struct {
	Date   string  `json:"date"`
	Return float64 `json:"return"`
}

type SharpePoint struct {
	Date   string   `json:"date"`
	Sharpe *float64 `json:"sharpe"`
}

type SortinoPoint struct {
	Date    string   `json:"date"`
	Sortino *float64 `json:"sortino"`
}

type RiskMetrics struct {
	Ratios            *Ratios           `json:"ratios,omitempty"`
	Measures          *Measures         `json:"measures,omitempty"`
	RollingVolatility []VolatilityPoint `json:"rolling_volatility"`
}

type Ratios struct {
	SharpeRatio      *float64 `json:"sharpe_ratio"`
	SortinoRatio     *float64 `json:"sortino_ratio"`
	InformationRatio *float64 `json:"information_ratio"`
}

type Measures struct {
	Volatility  *float64 `json:"volatility"`
	ValueAtRisk *float64 `json:"value_at_risk"`
	MaxDrawDown *float64 `json:"max_drawdown"`
}

type VolatilityPoint struct {
	Date       string   `json:"date"`
	Volatility *float64 `json:"volatility"`
}

type DrawDownAnalysis struct {
	DrawDownSeries       []DrawDownPoint `json:"drawdown_series"`
	WorstDrawDowns       []WorstDrawDown `json:"worst_drawdowns"`
	MaxDrawDown          *float64        `json:"max_drawdown"`
	AvgDrawDownLength    *int            `json:"avg_drawdown_length,omitempty"`
	DrawDownDistribution []float64       `json:"drawdown_distribution"`
}

type DrawDownPoint struct {
	Date     string  `json:"date"`
	DrawDown float64 `json:"drawdown"`
}

// WorstDrawDown is one row of the worst draw downs table; Recovery is null while ongoing
type WorstDrawDown struct {
	Start      string  `json:"start"`
	Recovery   *string `json:"recovery"`
	DrawDown   float64 `json:"drawdown"`
	Underwater int     `json:"underwater"`
}

type AdvancedAnalytics struct {
	RollingBeta        []BetaPoint                   `json:"rolling_beta,omitempty"`
	RollingCorrelation []CorrelationPoint            `json:"rolling_correlation,omitempty"`
	OverallCorrelation *float64                      `json:"overall_correlation,omitempty"`
	CorrelationMatrix  map[string]map[string]float64 `json:"correlation_matrix"`
}

type BetaPoint struct {
	Date    string   `json:"date"`
	Beta30d *float64 `json:"beta_30d"`
	Beta90d *float64 `json:"beta_90d"`
}

type CorrelationPoint struct {
	Date        string   `json:"date"`
	Correlation *float64 `json:"correlation"`
}

// newReport creates a report whose list valued sections are empty rather than null
func newReport(settings *Settings, now time.Time) *Report {
	rep := &Report{
		ReportID:   uuid.New(),
		ComputedOn: now,
		PortfolioSettings: PortfolioSettings{
			Stocks: make([]StockWeight, len(settings.Stocks)),
			DateRange: DateRange{
				Start: formatDate(settings.Start),
				End:   formatDate(settings.End),
			},
			Benchmark: settings.Benchmark,
		},
		LiveMarketData: map[string]*data.Quote{},
		ReturnsAnalysis: ReturnsAnalysis{
			MonthlyReturnsHeatmap: []MonthlyPoint{},
			ReturnsDistribution:   []ReturnPoint{},
			RollingSharpe:         []SharpePoint{},
			RollingSortino:        []SortinoPoint{},
		},
		RiskMetrics: RiskMetrics{
			RollingVolatility: []VolatilityPoint{},
		},
		DrawDownAnalysis: DrawDownAnalysis{
			DrawDownSeries:       []DrawDownPoint{},
			WorstDrawDowns:       []WorstDrawDown{},
			DrawDownDistribution: []float64{},
		},
		AdvancedAnalytics: AdvancedAnalytics{
			CorrelationMatrix: map[string]map[string]float64{},
		},
	}

	for idx, ticker := range settings.Stocks {
		rep.PortfolioSettings.Stocks[idx] = StockWeight{
			Ticker: ticker,
			Weight: settings.Weights[idx],
		}
	}

	return rep
}
