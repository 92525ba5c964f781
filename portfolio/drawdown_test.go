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

package portfolio_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-analytics/portfolio"
)

var _ = Describe("DrawDowns", func() {
	It("segments a single underwater period", func() {
		rs := returnSeries(portfolio.PortfolioName, 0.05, -0.1, -0.05, 0.2)

		series := portfolio.DrawDownSeries(rs)
		Expect(series).To(HaveLen(4))
		Expect(series[0]).To(Equal(0.0))
		Expect(series[1]).To(BeNumerically("~", -0.1, 1e-12))
		Expect(series[2]).To(BeNumerically("~", -0.145, 1e-12))
		Expect(series[3]).To(Equal(0.0))

		dds := portfolio.AllDrawDowns(rs)
		Expect(dds).To(HaveLen(1))
		Expect(dds[0].Begin).To(Equal(rs.Dates[1]))
		Expect(dds[0].Trough).To(Equal(rs.Dates[2]))
		Expect(dds[0].Recovery).ToNot(BeNil())
		Expect(*dds[0].Recovery).To(Equal(rs.Dates[3]))
		Expect(dds[0].LossPercent).To(BeNumerically("~", -0.1452, 1e-3))
		Expect(dds[0].UnderwaterDays).To(Equal(2))
	})

	It("measures the first period against its own wealth rather than the initial investment", func() {
		rs := returnSeries(portfolio.PortfolioName, -0.05, 0.01, 0.02)
		Expect(portfolio.DrawDownSeries(rs)).To(Equal([]float64{0, 0, 0}))
		Expect(portfolio.AllDrawDowns(rs)).To(BeEmpty())
	})

	It("is never positive", func() {
		rs := returnSeries(portfolio.PortfolioName, 0.03, -0.02, 0.01, 0.04, -0.06, 0.02, -0.01, 0.05)
		for _, dd := range portfolio.DrawDownSeries(rs) {
			Expect(dd).To(BeNumerically("<=", 0))
		}
	})

	It("counts the length of a contiguous negative run as underwater days", func() {
		rs := returnSeries(portfolio.PortfolioName, 0.01, 0, -0.01, -0.02, -0.01, 0.1, 0.02)
		dds := portfolio.AllDrawDowns(rs)
		Expect(dds).To(HaveLen(1))
		Expect(dds[0].UnderwaterDays).To(Equal(3))
		Expect(dds[0].Begin).To(Equal(rs.Dates[2]))
	})

	It("reaches zero once the wealth curve returns to its peak", func() {
		rs := returnSeries(portfolio.PortfolioName, 0.1, -0.5, 1.0, 0.01)
		series := portfolio.DrawDownSeries(rs)
		Expect(series[2]).To(Equal(0.0))
		Expect(series[3]).To(Equal(0.0))
	})

	It("marks a period that has not recovered as ongoing", func() {
		rs := returnSeries(portfolio.PortfolioName, 0.02, -0.03, 0.01)
		dds := portfolio.AllDrawDowns(rs)
		Expect(dds).To(HaveLen(1))
		Expect(dds[0].Recovery).To(BeNil())
		Expect(dds[0].UnderwaterDays).To(Equal(2))
	})

	It("orders periods from most to least severe", func() {
		rs := returnSeries(portfolio.PortfolioName, 0.01, -0.01, 0.05, -0.1, 0.2, -0.03, 0.1)
		dds := portfolio.AllDrawDowns(rs)
		Expect(dds).To(HaveLen(3))
		Expect(dds[0].LossPercent).To(BeNumerically("~", -0.1, 1e-12))
		Expect(dds[1].LossPercent).To(BeNumerically("~", -0.03, 1e-12))
		Expect(dds[2].LossPercent).To(BeNumerically("~", -0.01, 1e-12))

		top := portfolio.TopDrawDowns(rs, 2)
		Expect(top).To(HaveLen(2))
		Expect(top[0]).To(Equal(dds[0]))

		Expect(portfolio.TopDrawDowns(rs, 10)).To(HaveLen(3))
	})

	DescribeTable("returns no periods",
		func(returns []float64) {
			Expect(portfolio.AllDrawDowns(returnSeries(portfolio.PortfolioName, returns...))).To(BeEmpty())
		},
		Entry("for an empty series", []float64{}),
		Entry("for non-negative returns", []float64{0.01, 0, 0.02}),
		Entry("when only the first return is negative", []float64{-0.05, 0.01, 0.02}),
	)

	It("averages the underwater days of all periods", func() {
		rs := returnSeries(portfolio.PortfolioName, 0.01, -0.01, 0.05, -0.1, -0.01, 0.2, -0.03, -0.01, -0.01, 0.1)
		dds := portfolio.AllDrawDowns(rs)
		Expect(dds).To(HaveLen(3))
		// 1 + 2 + 3 days
		Expect(portfolio.AverageDrawDownLength(dds)).To(Equal(2))
		Expect(portfolio.AverageDrawDownLength(nil)).To(Equal(0))
	})
})
