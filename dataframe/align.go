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

package dataframe

import (
	"time"
)

// Intersect merges the dataframes into a single dataframe whose date index is the set of
// dates present in every input, sorted ascending. Unsorted inputs are handled. Columns keep
// the order in which they were passed. If the inputs
// share no date ErrNoCommonDates is returned along with an empty dataframe.
func Intersect(dfs ...*DataFrame) (*DataFrame, error) {
	res := &DataFrame{
		Dates:    []time.Time{},
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	if len(dfs) == 0 {
		return res, ErrNoCommonDates
	}

	// count how many frames each date appears in
	counts := make(map[int64]int, dfs[0].Len())
	rowIdx := make([]map[int64]int, len(dfs))
	for dfIdx, df := range dfs {
		rowIdx[dfIdx] = make(map[int64]int, df.Len())
		for idx, dt := range df.Dates {
			key := dt.UnixNano()
			if _, seen := rowIdx[dfIdx][key]; seen {
				continue
			}
			rowIdx[dfIdx][key] = idx
			counts[key]++
		}
	}

	common := make([]time.Time, 0, len(counts))
	for _, dt := range dfs[0].Dates {
		key := dt.UnixNano()
		if counts[key] == len(dfs) {
			common = append(common, dt)
			counts[key] = 0 // guard against duplicate dates in the first frame
		}
	}

	res.Dates = common

	for dfIdx, df := range dfs {
		for colIdx, colName := range df.ColNames {
			col := make([]float64, len(common))
			for ii, dt := range common {
				col[ii] = df.Vals[colIdx][rowIdx[dfIdx][dt.UnixNano()]]
			}
			res.ColNames = append(res.ColNames, colName)
			res.Vals = append(res.Vals, col)
		}
	}

	if len(common) == 0 {
		return res, ErrNoCommonDates
	}

	return res.Sort(), nil
}
