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
	"math"

	"github.com/penny-vault/pv-analytics/dataframe"
	"github.com/pkg/errors"
)

// CorrelationMatrix computes the pairwise Pearson correlation of the series on the dates they
// all share. Pairs whose correlation is undefined are absent from the result.
func CorrelationMatrix(series []*ReturnSeries) (map[string]map[string]float64, error) {
	if len(series) == 0 {
		return nil, errors.Wrap(ErrInsufficientData, "correlation matrix needs at least one series")
	}

	frames := make([]*dataframe.DataFrame, len(series))
	for idx, rs := range series {
		frames[idx] = rs.DataFrame()
	}

	df, err := dataframe.Intersect(frames...)
	if errors.Is(err, dataframe.ErrNoCommonDates) {
		return nil, errors.Wrap(ErrNoOverlap, "correlation matrix")
	}
	if err != nil {
		return nil, err
	}

	return correlationMap(df), nil
}

func correlationMap(df *dataframe.DataFrame) map[string]map[string]float64 {
	corr := df.Corr()
	res := make(map[string]map[string]float64, df.ColCount())
	for ii, rowName := range df.ColNames {
		res[rowName] = make(map[string]float64, df.ColCount())
		for jj, colName := range df.ColNames {
			if math.IsNaN(corr[ii][jj]) || math.IsInf(corr[ii][jj], 0) {
				continue
			}
			res[rowName][colName] = corr[ii][jj]
		}
	}
	return res
}
