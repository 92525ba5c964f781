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
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/penny-vault/pv-analytics/common"
	"github.com/penny-vault/pv-analytics/portfolio"
	"github.com/spf13/viper"
)

const (
	DefaultBenchmark = "SPY"
)

var (
	ErrValidation = errors.New("invalid request")
)

// Request is the analysis input as submitted by a client
type Request struct {
	StartDate string    `json:"start_date" toml:"start_date"`
	EndDate   string    `json:"end_date" toml:"end_date"`
	Stocks    []string  `json:"stocks" toml:"stocks"`
	Weights   []float64 `json:"weights" toml:"weights"`
	Benchmark string    `json:"benchmark" toml:"benchmark"`
}

// Settings is a validated Request
type Settings struct {
	Stocks    []string
	Weights   []float64
	Start     time.Time
	End       time.Time
	Benchmark string
}

// ValidationError describes why a request was rejected
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Validate checks the request and converts it into Settings. An end date after now is moved
// back to the day of now. Weights are kept exactly as submitted.
func (r *Request) Validate(now time.Time) (*Settings, error) {
	start, err := common.ParseDate(strings.TrimSpace(r.StartDate))
	if err != nil {
		return nil, invalid("start_date %q is not formatted as YYYY-MM-DD", r.StartDate)
	}

	end, err := common.ParseDate(strings.TrimSpace(r.EndDate))
	if err != nil {
		return nil, invalid("end_date %q is not formatted as YYYY-MM-DD", r.EndDate)
	}

	if !start.Before(end) {
		return nil, invalid("end_date must be after start_date")
	}

	today := common.DateOf(now)
	if end.After(today) {
		end = today
		if !start.Before(end) {
			return nil, invalid("start_date must be before today")
		}
	}

	if len(r.Stocks) != len(r.Weights) {
		return nil, invalid("number of stocks (%d) must match number of weights (%d)", len(r.Stocks), len(r.Weights))
	}

	if len(r.Stocks) == 0 {
		return nil, invalid("at least one stock ticker is required")
	}

	stocks := make([]string, len(r.Stocks))
	copy(stocks, r.Stocks)
	common.ArrToUpper(stocks)

	seen := make(map[string]bool, len(stocks))
	for _, ticker := range stocks {
		if ticker == "" {
			return nil, invalid("stock tickers must not be blank")
		}
		if seen[ticker] {
			return nil, invalid("stock %s is listed more than once", ticker)
		}
		seen[ticker] = true
	}

	sum := 0.0
	for idx, weight := range r.Weights {
		if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
			return nil, invalid("weight of %s must be a non-negative number", stocks[idx])
		}
		sum += weight
	}

	if math.Abs(sum-1.0) > portfolio.WeightTolerance {
		return nil, invalid("weights must sum to 1.0, got %g", sum)
	}

	benchmark := strings.ToUpper(strings.TrimSpace(r.Benchmark))
	if benchmark == "" {
		benchmark = strings.ToUpper(viper.GetString("analysis.benchmark"))
	}
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}

	weights := make([]float64, len(r.Weights))
	copy(weights, r.Weights)

	return &Settings{
		Stocks:    stocks,
		Weights:   weights,
		Start:     start,
		End:       end,
		Benchmark: benchmark,
	}, nil
}
