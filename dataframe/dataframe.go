// Copyright 2021-2023
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
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
)

// New creates a single column dataframe. The dates and values slices are copied.
func New(name string, dates []time.Time, vals []float64) *DataFrame {
	df := &DataFrame{
		Dates:    make([]time.Time, len(dates)),
		ColNames: []string{name},
		Vals:     [][]float64{make([]float64, len(vals))},
	}
	copy(df.Dates, dates)
	copy(df.Vals[0], vals)
	return df
}

// Column returns the values of the named column
func (df *DataFrame) Column(colName string) ([]float64, error) {
	idx := df.ColIndex(colName)
	if idx == -1 {
		return nil, errors.Wrap(ErrColumnNotFound, colName)
	}
	return df.Vals[idx], nil
}

// Get index of specified column; returns -1 if column doesn't exist
func (df *DataFrame) ColIndex(colName string) int {
	for idx, val := range df.ColNames {
		if colName == val {
			return idx
		}
	}

	return -1
}

// ColCount returns the number of columns in the dataframe
func (df *DataFrame) ColCount() int {
	return len(df.ColNames)
}

// Copy creates a copy of the dataframe
func (df *DataFrame) Copy() *DataFrame {
	df2 := &DataFrame{
		ColNames: make([]string, len(df.ColNames)),
		Dates:    make([]time.Time, len(df.Dates)),
		Vals:     make([][]float64, len(df.Vals)),
	}

	copy(df2.ColNames, df.ColNames)
	copy(df2.Dates, df.Dates)

	for idx := range df2.Vals {
		df2.Vals[idx] = make([]float64, len(df.Vals[idx]))
		copy(df2.Vals[idx], df.Vals[idx])
	}

	return df2
}

// Drop removes rows that contain the value `val` from the dataframe. If val is NaN then
// rows containing NaN or +/-Inf are removed.
func (df *DataFrame) Drop(val float64) *DataFrame {
	isNA := math.IsNaN(val)
	newVals := make([][]float64, len(df.Vals))
	newDates := make([]time.Time, 0, len(df.Dates))

	for idx, rowDate := range df.Dates {
		keep := true
		for _, col := range df.Vals {
			rowVal := col[idx]
			keep = keep && !(rowVal == val || (isNA && (math.IsNaN(rowVal) || math.IsInf(rowVal, 0))))
			if !keep {
				break
			}
		}

		if keep {
			newDates = append(newDates, rowDate)
			for colIdx, col := range df.Vals {
				newVals[colIdx] = append(newVals[colIdx], col[idx])
			}
		}
	}

	for colIdx := range newVals {
		if newVals[colIdx] == nil {
			newVals[colIdx] = []float64{}
		}
	}

	df.Vals = newVals
	df.Dates = newDates
	return df
}

// Insert adds a new column to the dataframe; the column must be the same length as the date index
func (df *DataFrame) Insert(name string, col []float64) error {
	if len(col) != len(df.Dates) {
		return ErrDateIndexNotAligned
	}
	df.ColNames = append(df.ColNames, name)
	df.Vals = append(df.Vals, col)
	return nil
}

// Len returns the number of rows in the dataframe
func (df *DataFrame) Len() int {
	return len(df.Dates)
}

// Sort orders the rows of the dataframe by date ascending, in place
func (df *DataFrame) Sort() *DataFrame {
	if sort.SliceIsSorted(df.Dates, func(i, j int) bool { return df.Dates[i].Before(df.Dates[j]) }) {
		return df
	}

	order := make([]int, len(df.Dates))
	for ii := range order {
		order[ii] = ii
	}
	sort.SliceStable(order, func(i, j int) bool {
		return df.Dates[order[i]].Before(df.Dates[order[j]])
	})

	dates := make([]time.Time, len(df.Dates))
	for ii, src := range order {
		dates[ii] = df.Dates[src]
	}
	df.Dates = dates

	for colIdx, col := range df.Vals {
		sorted := make([]float64, len(col))
		for ii, src := range order {
			sorted[ii] = col[src]
		}
		df.Vals[colIdx] = sorted
	}

	return df
}

// Table prints an ASCII formatted table to stdout
func (df *DataFrame) Table() string {
	if len(df.Dates) == 0 {
		return "<NO DATA>" // nothing to do as there is no data available in the dataframe
	}

	// construct table header
	tableCols := append([]string{"Date"}, df.ColNames...)

	// initialize table
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	if len(footer) > 1 {
		footer[1] = fmt.Sprintf("%d", df.Len())
	}
	table.SetFooter(footer)
	table.SetBorder(false) // Set Border to false

	for idx, rowDate := range df.Dates {
		row := make([]string, 0, len(df.Vals)+1)
		row = append(row, rowDate.Format("2006-01-02"))

		for _, col := range df.Vals {
			if math.IsNaN(col[idx]) {
				row = append(row, "-")
			} else {
				row = append(row, fmt.Sprintf("%.4f", col[idx]))
			}
		}

		table.Append(row)
	}

	table.Render()
	return s.String()
}
