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

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pv-analytics/common"
	"github.com/penny-vault/pv-analytics/dataframe"
	"github.com/penny-vault/pv-analytics/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	requestFile string
	outputJSON  bool
	showSeries  bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&requestFile, "request", "r", "portfolio.toml", "TOML file describing the portfolio to analyze")
	analyzeCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the full report as JSON")
	analyzeCmd.Flags().BoolVar(&showSeries, "series", false, "Also print the cumulative return series")

	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single portfolio",
	Long: `Analyze the portfolio described by a TOML request file, e.g.:

start_date = "2020-01-02"
end_date = "2022-12-30"
stocks = ["AAPL", "MSFT"]
weights = [0.5, 0.5]
benchmark = "SPY"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := os.ReadFile(requestFile)
		if err != nil {
			return err
		}

		var req report.Request
		if err := toml.Unmarshal(doc, &req); err != nil {
			log.Error().Err(err).Str("File", requestFile).Msg("failed to parse toml file")
			return err
		}

		settings, err := req.Validate(time.Now())
		if err != nil {
			return err
		}

		assembler, err := newAssembler()
		if err != nil {
			return err
		}

		rep, err := assembler.Build(context.Background(), settings)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if outputJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}

		printReport(out, rep)
		if showSeries {
			df, err := cumulativeFrame(rep)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, df.Table())
		}
		return nil
	},
}

func printReport(out io.Writer, rep *report.Report) {
	settings := rep.PortfolioSettings
	holdings := make([]string, len(settings.Stocks))
	for idx, stock := range settings.Stocks {
		holdings[idx] = fmt.Sprintf("%s %.2f%%", stock.Ticker, stock.Weight*100)
	}
	fmt.Fprintf(out, "Portfolio: %s\n", strings.Join(holdings, ", "))
	fmt.Fprintf(out, "Period:    %s to %s (benchmark %s)\n\n", settings.DateRange.Start, settings.DateRange.End, settings.Benchmark)

	if metrics := rep.PortfolioOverview.KeyMetrics; metrics != nil {
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Metric", "Value"})
		table.SetBorder(false)
		table.SetAlignment(tablewriter.ALIGN_RIGHT)
		rows := []struct {
			name string
			val  *float64
			pct  bool
		}{
			{"CAGR", metrics.CAGR, true},
			{"Volatility", metrics.Volatility, true},
			{"Sharpe Ratio", metrics.SharpeRatio, false},
			{"Sortino Ratio", metrics.SortinoRatio, false},
			{"Max Drawdown", metrics.MaxDrawDown, true},
			{"Win Rate", metrics.WinRate, true},
			{"Profit Ratio", metrics.ProfitRatio, false},
			{"Value at Risk", metrics.ValueAtRisk, true},
			{"Beta", metrics.Beta, false},
			{"Alpha", metrics.Alpha, true},
			{"Information Ratio", metrics.InformationRatio, false},
		}
		for _, row := range rows {
			table.Append([]string{row.name, formatValue(row.val, row.pct)})
		}
		table.Render()
		fmt.Fprintln(out)
	}

	if worst := rep.DrawDownAnalysis.WorstDrawDowns; len(worst) > 0 {
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Start", "Recovery", "Drawdown", "Underwater Days"})
		table.SetBorder(false)
		for _, dd := range worst {
			recovery := "ongoing"
			if dd.Recovery != nil {
				recovery = *dd.Recovery
			}
			table.Append([]string{dd.Start, recovery, fmt.Sprintf("%.2f%%", dd.DrawDown*100), fmt.Sprintf("%d", dd.Underwater)})
		}
		table.Render()
		fmt.Fprintln(out)
	}

	if monthly := rep.ReturnsAnalysis.MonthlyReturnsHeatmap; len(monthly) > 0 {
		byYear := make(map[int][]string)
		for _, mm := range monthly {
			row, ok := byYear[mm.Year]
			if !ok {
				row = make([]string, 13)
				row[0] = fmt.Sprintf("%d", mm.Year)
				byYear[mm.Year] = row
			}
			row[mm.Month] = fmt.Sprintf("%.2f%%", mm.Return*100)
		}

		years := make([]int, 0, len(byYear))
		for year := range byYear {
			years = append(years, year)
		}
		sort.Ints(years)

		header := []string{"Year"}
		for month := time.January; month <= time.December; month++ {
			header = append(header, month.String()[:3])
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader(header)
		table.SetBorder(false)
		for _, year := range years {
			table.Append(byYear[year])
		}
		table.Render()
	}
}

func formatValue(val *float64, pct bool) string {
	switch {
	case val == nil:
		return "-"
	case pct:
		return fmt.Sprintf("%.2f%%", *val*100)
	default:
		return fmt.Sprintf("%.3f", *val)
	}
}

// cumulativeFrame converts the cumulative return section of rep into a dataframe with one
// column for the portfolio and one per holding
func cumulativeFrame(rep *report.Report) (*dataframe.DataFrame, error) {
	cumulative := rep.PortfolioOverview.CumulativeReturns
	if cumulative == nil {
		return &dataframe.DataFrame{}, nil
	}

	dates := make([]time.Time, len(cumulative.Dates))
	for idx, dt := range cumulative.Dates {
		var err error
		if dates[idx], err = common.ParseDate(dt); err != nil {
			return nil, err
		}
	}

	df := dataframe.New("Portfolio", dates, cumulative.Portfolio)
	for _, stock := range rep.PortfolioSettings.Stocks {
		if vals, ok := cumulative.Stocks[stock.Ticker]; ok {
			if err := df.Insert(stock.Ticker, vals); err != nil {
				return nil, err
			}
		}
	}

	return df, nil
}
