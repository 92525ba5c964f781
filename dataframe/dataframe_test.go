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

package dataframe_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-analytics/dataframe"
)

var _ = Describe("DataFrame", func() {
	Context("with no values", func() {
		var (
			df *dataframe.DataFrame
		)

		BeforeEach(func() {
			df = &dataframe.DataFrame{}
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("does not error on drop", func() {
			df = df.Drop(math.NaN())
			Expect(df.Len()).To(Equal(0))
		})

		It("renders an empty table", func() {
			Expect(df.Table()).To(Equal("<NO DATA>"))
		})
	})

	Context("with unsorted dates and two columns", func() {
		var (
			df *dataframe.DataFrame
		)

		BeforeEach(func() {
			df = &dataframe.DataFrame{
				Dates: []time.Time{
					time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2021, time.February, 1, 0, 0, 0, 0, time.UTC),
				},
				ColNames: []string{"VFINX", "PRIDX"},
				Vals:     [][]float64{{3, 1, 2}, {6, 4, 5}},
			}
		})

		It("sorts rows by date", func() {
			df.Sort()
			Expect(df.Dates).To(Equal([]time.Time{
				time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2021, time.February, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC),
			}))
			Expect(df.Vals[0]).To(Equal([]float64{1, 2, 3}))
			Expect(df.Vals[1]).To(Equal([]float64{4, 5, 6}))
		})

		It("looks up columns by name", func() {
			col, err := df.Column("PRIDX")
			Expect(err).To(BeNil())
			Expect(col).To(Equal([]float64{6, 4, 5}))

			_, err = df.Column("MISSING")
			Expect(err).To(MatchError(dataframe.ErrColumnNotFound))
		})

		It("copies without sharing memory", func() {
			df2 := df.Copy()
			df2.Vals[0][0] = 100
			Expect(df.Vals[0][0]).To(Equal(3.0))
		})

		It("refuses to insert a column of the wrong length", func() {
			Expect(df.Insert("BAD", []float64{1})).To(MatchError(dataframe.ErrDateIndexNotAligned))
			Expect(df.Insert("GOOD", []float64{1, 2, 3})).To(Succeed())
			Expect(df.ColCount()).To(Equal(3))
		})

		It("renders a table containing each column", func() {
			table := df.Table()
			Expect(table).To(ContainSubstring("VFINX"))
			Expect(table).To(ContainSubstring("PRIDX"))
			Expect(table).To(ContainSubstring("2021-03-01"))
		})
	})

	Context("with NaN and Inf values", func() {
		It("drops any row containing a non-finite value", func() {
			df := &dataframe.DataFrame{
				Dates: []time.Time{
					time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2021, time.January, 2, 0, 0, 0, 0, time.UTC),
					time.Date(2021, time.January, 3, 0, 0, 0, 0, time.UTC),
					time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC),
				},
				ColNames: []string{"a", "b"},
				Vals:     [][]float64{{1, math.NaN(), 3, 4}, {5, 6, math.Inf(1), 8}},
			}

			df.Drop(math.NaN())
			Expect(df.Len()).To(Equal(2))
			Expect(df.Vals[0]).To(Equal([]float64{1, 4}))
			Expect(df.Vals[1]).To(Equal([]float64{5, 8}))
		})
	})
})

var _ = Describe("Intersect", func() {
	var (
		d1, d2, d3, d4 time.Time
	)

	BeforeEach(func() {
		d1 = time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC)
		d2 = time.Date(2021, time.January, 5, 0, 0, 0, 0, time.UTC)
		d3 = time.Date(2021, time.January, 6, 0, 0, 0, 0, time.UTC)
		d4 = time.Date(2021, time.January, 7, 0, 0, 0, 0, time.UTC)
	})

	It("keeps only dates present in every frame", func() {
		a := dataframe.New("a", []time.Time{d1, d2, d3}, []float64{1, 2, 3})
		b := dataframe.New("b", []time.Time{d2, d3, d4}, []float64{20, 30, 40})

		df, err := dataframe.Intersect(a, b)
		Expect(err).To(BeNil())
		Expect(df.Dates).To(Equal([]time.Time{d2, d3}))
		Expect(df.ColNames).To(Equal([]string{"a", "b"}))
		Expect(df.Vals[0]).To(Equal([]float64{2, 3}))
		Expect(df.Vals[1]).To(Equal([]float64{20, 30}))
	})

	It("sorts unsorted inputs before aligning", func() {
		a := dataframe.New("a", []time.Time{d3, d1, d2}, []float64{3, 1, 2})
		b := dataframe.New("b", []time.Time{d2, d3, d1}, []float64{20, 30, 10})

		df, err := dataframe.Intersect(a, b)
		Expect(err).To(BeNil())
		Expect(df.Dates).To(Equal([]time.Time{d1, d2, d3}))
		Expect(df.Vals[0]).To(Equal([]float64{1, 2, 3}))
		Expect(df.Vals[1]).To(Equal([]float64{10, 20, 30}))
	})

	It("reports when no date is shared", func() {
		a := dataframe.New("a", []time.Time{d1, d2}, []float64{1, 2})
		b := dataframe.New("b", []time.Time{d3, d4}, []float64{3, 4})

		df, err := dataframe.Intersect(a, b)
		Expect(err).To(MatchError(dataframe.ErrNoCommonDates))
		Expect(df.Len()).To(Equal(0))
	})

	It("returns an error when called with nothing", func() {
		_, err := dataframe.Intersect()
		Expect(err).To(MatchError(dataframe.ErrNoCommonDates))
	})
})
