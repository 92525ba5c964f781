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
	"github.com/penny-vault/pv-analytics/data"
	"github.com/pkg/errors"
)

var _ = Describe("Manager", func() {
	var (
		ctx     context.Context
		prices  *fakePriceProvider
		quotes  *fakeQuoteProvider
		manager *data.Manager
		begin   time.Time
		end     time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		prices = &fakePriceProvider{
			series: map[string]*data.PriceSeries{
				"VFINX": priceSeries("VFINX", 100, 101, 102),
				"PRIDX": priceSeries("PRIDX", 50, 49, 51),
			},
			errs: map[string]error{
				"BROKEN": errors.New("connection reset"),
			},
		}
		quotes = &fakeQuoteProvider{
			quotes: map[string]*data.Quote{
				"VFINX": {Ticker: "VFINX"},
				"EMPTY": nil,
			},
		}
		manager = data.NewManager(prices, quotes)
		begin = time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC)
		end = time.Date(2021, time.January, 6, 0, 0, 0, 0, time.UTC)
	})

	Context("when fetching prices", func() {
		It("issues one request per ticker", func() {
			res, err := manager.FetchPrices(ctx, []string{"VFINX", "PRIDX"}, begin, end)
			Expect(err).To(BeNil())
			Expect(res).To(HaveLen(2))
			Expect(res["PRIDX"].Prices).To(Equal([]float64{50, 49, 51}))
			Expect(prices.Calls()).To(ConsistOf("VFINX", "PRIDX"))
		})

		It("requests duplicate tickers once", func() {
			_, err := manager.FetchPrices(ctx, []string{"VFINX", "VFINX"}, begin, end)
			Expect(err).To(BeNil())
			Expect(prices.Calls()).To(Equal([]string{"VFINX"}))
		})

		It("keeps successful tickers when another fails", func() {
			res, err := manager.FetchPrices(ctx, []string{"VFINX", "BROKEN", "UNKNOWN"}, begin, end)
			Expect(err).To(BeNil())
			Expect(res).To(HaveLen(1))
			Expect(res).To(HaveKey("VFINX"))
		})

		It("reports why each failed ticker is missing", func() {
			prices.errs["BAD"] = errors.Wrap(data.ErrMalformedSeries, "BAD dates not strictly increasing")
			res, errs, err := manager.FetchAll(ctx, []string{"VFINX", "BROKEN", "BAD", "UNKNOWN"}, begin, end)
			Expect(err).To(BeNil())
			Expect(res).To(HaveLen(1))
			Expect(res).To(HaveKey("VFINX"))
			Expect(errs).To(HaveLen(2))
			Expect(errs["BROKEN"]).To(MatchError("connection reset"))
			Expect(errs["BAD"]).To(MatchError(data.ErrMalformedSeries))
			Expect(errs).ToNot(HaveKey("UNKNOWN"))
		})

		It("does nothing for an empty ticker list", func() {
			res, err := manager.FetchPrices(ctx, []string{}, begin, end)
			Expect(err).To(BeNil())
			Expect(res).To(BeEmpty())
			Expect(prices.Calls()).To(BeEmpty())
		})

		It("rejects an inverted range", func() {
			_, err := manager.FetchPrices(ctx, []string{"VFINX"}, end, begin)
			Expect(err).To(MatchError(data.ErrInvalidTimeRange))
			Expect(prices.Calls()).To(BeEmpty())
		})

		It("returns the context error when cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := manager.FetchPrices(cctx, []string{"VFINX"}, begin, end)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Context("when fetching quotes", func() {
		It("omits tickers whose quote failed", func() {
			res := manager.FetchQuotes(ctx, []string{"VFINX", "PRIDX"})
			Expect(res).To(HaveLen(1))
			Expect(res).To(HaveKey("VFINX"))
		})

		It("omits tickers whose provider returned no quote", func() {
			res := manager.FetchQuotes(ctx, []string{"VFINX", "EMPTY"})
			Expect(res).To(HaveLen(1))
			Expect(res).ToNot(HaveKey("EMPTY"))
		})

		It("returns an empty map without a quote provider", func() {
			manager.Quotes = nil
			Expect(manager.FetchQuotes(ctx, []string{"VFINX"})).To(BeEmpty())
		})
	})
})
