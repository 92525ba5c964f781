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
	"sort"
)

// DrawDownSeries computes the distance of the wealth curve from its running peak on each date.
// Wealth is the running product of (1+r) and every value is <= 0. The running peak starts at
// the wealth after the first period, not at the initial 1.0, so a loss on the first date is not
// counted as a draw down.
func DrawDownSeries(returns *ReturnSeries) []float64 {
	return drawDowns(returns.Returns)
}

func drawDowns(r []float64) []float64 {
	dd := make([]float64, len(r))
	wealth := 1.0
	peak := 1.0
	for idx, xx := range r {
		wealth *= 1.0 + xx
		if idx == 0 || wealth > peak {
			peak = wealth
		}
		dd[idx] = wealth/peak - 1.0
	}
	return dd
}

// AllDrawDowns segments the return series into underwater periods sorted from the most severe
// loss to the least. A period starts on the first date the wealth curve is below its running
// peak and ends on the first later date the curve is back at its peak.
func AllDrawDowns(returns *ReturnSeries) []*DrawDown {
	allDrawDowns := []*DrawDown{}

	var drawDown *DrawDown
	for idx, dd := range DrawDownSeries(returns) {
		dt := returns.Dates[idx]
		if dd < 0 {
			if drawDown == nil {
				drawDown = &DrawDown{
					Begin:       dt,
					Trough:      dt,
					LossPercent: dd,
				}
			}

			drawDown.UnderwaterDays++
			if dd < drawDown.LossPercent {
				drawDown.Trough = dt
				drawDown.LossPercent = dd
			}
		} else if drawDown != nil {
			recovery := dt
			drawDown.Recovery = &recovery
			allDrawDowns = append(allDrawDowns, drawDown)
			drawDown = nil
		}
	}

	// still underwater at the end of the series
	if drawDown != nil {
		allDrawDowns = append(allDrawDowns, drawDown)
	}

	sort.SliceStable(allDrawDowns, func(i, j int) bool {
		return allDrawDowns[i].LossPercent < allDrawDowns[j].LossPercent
	})

	return allDrawDowns
}

// TopDrawDowns returns the n most severe draw downs
func TopDrawDowns(returns *ReturnSeries, n int) []*DrawDown {
	all := AllDrawDowns(returns)
	if n < 0 {
		n = 0
	}
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// AverageDrawDownLength is the mean number of underwater days, truncated to a whole day
func AverageDrawDownLength(drawDowns []*DrawDown) int {
	if len(drawDowns) == 0 {
		return 0
	}
	total := 0
	for _, dd := range drawDowns {
		total += dd.UnderwaterDays
	}
	return total / len(drawDowns)
}
