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
	"time"
)

// MonthlyReturns compounds the returns that fall in each calendar month, Π(1+r) - 1. Months are
// returned in chronological order and months without any return are absent.
func MonthlyReturns(returns *ReturnSeries) []MonthlyReturn {
	type month struct {
		year  int
		month time.Month
	}

	growth := make(map[month]float64)
	for idx, dt := range returns.Dates {
		key := month{year: dt.Year(), month: dt.Month()}
		if _, ok := growth[key]; !ok {
			growth[key] = 1.0
		}
		growth[key] *= 1.0 + returns.Returns[idx]
	}

	res := make([]MonthlyReturn, 0, len(growth))
	for key, val := range growth {
		res = append(res, MonthlyReturn{
			Year:   key.year,
			Month:  key.month,
			Return: val - 1.0,
		})
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Year != res[j].Year {
			return res[i].Year < res[j].Year
		}
		return res[i].Month < res[j].Month
	})

	return res
}
