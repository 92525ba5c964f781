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

package data_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-analytics/common"
	"github.com/penny-vault/pv-analytics/data"
)

var _ = Describe("CachedProvider", func() {
	var (
		ctx    context.Context
		prices *fakePriceProvider
		cache  *common.Cache
		cached *data.CachedProvider
		begin  time.Time
		end    time.Time
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		prices = &fakePriceProvider{
			series: map[string]*data.PriceSeries{
				"VFINX": priceSeries("VFINX", 100, 101, 102),
				"PRIDX": priceSeries("PRIDX", 50, 49, 51),
			},
		}
		cache, err = common.NewCache(16, "", time.Hour)
		Expect(err).To(BeNil())
		cached = data.NewCachedProvider(prices, cache)
		begin = time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC)
		end = time.Date(2021, time.January, 6, 0, 0, 0, 0, time.UTC)
	})

	It("serves a repeated request from the cache", func() {
		first, err := cached.FetchPrices(ctx, []string{"VFINX"}, begin, end)
		Expect(err).To(BeNil())
		Expect(cache.Len()).To(Equal(1))

		second, err := cached.FetchPrices(ctx, []string{"VFINX"}, begin, end)
		Expect(err).To(BeNil())
		Expect(prices.Calls()).To(Equal([]string{"VFINX"}))

		Expect(second["VFINX"].Prices).To(Equal(first["VFINX"].Prices))
		Expect(second["VFINX"].Dates).To(HaveLen(3))
		for idx := range first["VFINX"].Dates {
			Expect(second["VFINX"].Dates[idx].Equal(first["VFINX"].Dates[idx])).To(BeTrue())
		}
	})

	It("only fetches the tickers that missed", func() {
		_, err := cached.FetchPrices(ctx, []string{"VFINX"}, begin, end)
		Expect(err).To(BeNil())

		res, err := cached.FetchPrices(ctx, []string{"VFINX", "PRIDX"}, begin, end)
		Expect(err).To(BeNil())
		Expect(res).To(HaveLen(2))
		Expect(prices.Calls()).To(Equal([]string{"VFINX", "PRIDX"}))
	})

	It("treats a different date range as a miss", func() {
		_, err := cached.FetchPrices(ctx, []string{"VFINX"}, begin, end)
		Expect(err).To(BeNil())

		_, err = cached.FetchPrices(ctx, []string{"VFINX"}, begin, end.AddDate(0, 0, 1))
		Expect(err).To(BeNil())
		Expect(prices.Calls()).To(Equal([]string{"VFINX", "VFINX"}))
	})

	It("does not cache tickers without data", func() {
		res, err := cached.FetchPrices(ctx, []string{"UNKNOWN"}, begin, end)
		Expect(err).To(BeNil())
		Expect(res).To(BeEmpty())
		Expect(cache.Len()).To(Equal(0))
	})
})
