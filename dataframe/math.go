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
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// CumProd computes the running product of (1 + x) for every column and returns a new dataframe.
// The first row of the result is 1 + x[0].
func (df *DataFrame) CumProd() *DataFrame {
	df = df.Copy()
	for colIdx := range df.Vals {
		acc := 1.0
		for rowIdx, val := range df.Vals[colIdx] {
			acc *= 1.0 + val
			df.Vals[colIdx][rowIdx] = acc
		}
	}
	return df
}

// Corr computes the pairwise pearson correlation between all columns. The result is indexed
// in the same order as ColNames; pairs where the correlation is undefined are NaN.
func (df *DataFrame) Corr() [][]float64 {
	n := df.ColCount()
	res := make([][]float64, n)
	for ii := range res {
		res[ii] = make([]float64, n)
	}

	for ii := 0; ii < n; ii++ {
		for jj := ii; jj < n; jj++ {
			corr := math.NaN()
			if df.Len() > 1 {
				corr = stat.Correlation(df.Vals[ii], df.Vals[jj], nil)
			}
			res[ii][jj] = corr
			res[jj][ii] = corr
		}
	}

	return res
}

// Rolling applies lambda to each trailing window of `window` rows and stores the result in a
// single column named `name`. The result has the same length as the input with NaNs during the
// warm-up period. Invalid windows result in a dataframe of all NaN.
// NOTE: window is in terms of date periods, lambda receives one slice per column and must not retain it.
func (df *DataFrame) Rolling(window int, name string, lambda func(cols [][]float64) float64) *DataFrame {
	res := &DataFrame{
		Dates:    df.Dates,
		ColNames: []string{name},
		Vals:     [][]float64{make([]float64, df.Len())},
	}

	out := res.Vals[0]
	if window > df.Len() || window <= 0 {
		log.Debug().Int("Window", window).Int("NRows", df.Len()).Msg("window must be: 0 < window <= NRows")
		for idx := range out {
			out[idx] = math.NaN()
		}
		return res
	}

	cols := make([][]float64, df.ColCount())
	for rowIdx := range df.Dates {
		// NOTE: row is 0 based, window is 1 based; hence the test applied below
		if rowIdx < window-1 {
			out[rowIdx] = math.NaN()
			continue
		}

		begin := rowIdx - window + 1
		for colIdx := range df.Vals {
			cols[colIdx] = df.Vals[colIdx][begin : rowIdx+1]
		}
		out[rowIdx] = lambda(cols)
	}

	return res
}
