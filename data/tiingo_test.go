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
	"net/http"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-analytics/common"
	"github.com/penny-vault/pv-analytics/data"
)

const tiingoVFINX = `[
 {"date":"2021-01-04T00:00:00.000Z","close":340.0,"high":345.1,"low":335.2,"open":344.5,"volume":0,"adjClose":331.23,"adjHigh":336.2,"adjLow":326.5,"adjOpen":335.6,"adjVolume":0,"divCash":0.0,"splitFactor":1.0},
 {"date":"2021-01-05T00:00:00.000Z","close":342.4,"high":343.0,"low":339.5,"open":340.5,"volume":0,"adjClose":333.57,"adjHigh":334.2,"adjLow":330.7,"adjOpen":331.7,"adjVolume":0,"divCash":0.0,"splitFactor":1.0},
 {"date":"2021-01-06T00:00:00.000Z","close":344.3,"high":346.4,"low":341.2,"open":341.4,"volume":0,"adjClose":335.42,"adjHigh":337.4,"adjLow":332.4,"adjOpen":332.6,"adjVolume":0,"divCash":0.0,"splitFactor":1.0}
]`

var _ = Describe("Tiingo", func() {
	var (
		ctx    context.Context
		tiingo *data.Tiingo
		begin  time.Time
		end    time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		tiingo = data.NewTiingo("TEST", "", 5*time.Second)
		httpmock.ActivateNonDefault(tiingo.Client)

		begin = time.Date(2021, time.January, 4, 0, 0, 0, 0, common.GetTimezone())
		end = time.Date(2021, time.January, 6, 0, 0, 0, 0, common.GetTimezone())

		httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/VFINX/prices?startDate=2021-01-04&endDate=2021-01-06&token=TEST",
			httpmock.NewStringResponder(200, tiingoVFINX))
		httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/UNKNOWN/prices?startDate=2021-01-04&endDate=2021-01-06&token=TEST",
			httpmock.NewStringResponder(404, `{"detail":"Error: Ticker 'UNKNOWN' not found"}`))
		httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/BROKEN/prices?startDate=2021-01-04&endDate=2021-01-06&token=TEST",
			httpmock.NewStringResponder(200, `{"oops":`))
		httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/DOWN/prices?startDate=2021-01-04&endDate=2021-01-06&token=TEST",
			httpmock.NewStringResponder(http.StatusInternalServerError, ``))
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	It("loads adjusted close prices", func() {
		res, err := tiingo.FetchPrices(ctx, []string{"VFINX"}, begin, end)
		Expect(err).To(BeNil())
		Expect(res).To(HaveKey("VFINX"))

		series := res["VFINX"]
		Expect(series.Ticker).To(Equal("VFINX"))
		Expect(series.Prices).To(Equal([]float64{331.23, 333.57, 335.42}))
		Expect(series.Dates).To(HaveLen(3))
		Expect(series.Dates[0].Equal(begin)).To(BeTrue())
		Expect(series.Dates[2].Equal(end)).To(BeTrue())
		Expect(series.Validate()).To(Succeed())
	})

	It("leaves unknown tickers out of the result", func() {
		res, err := tiingo.FetchPrices(ctx, []string{"VFINX", "UNKNOWN"}, begin, end)
		Expect(err).To(BeNil())
		Expect(res).To(HaveLen(1))
		Expect(res).ToNot(HaveKey("UNKNOWN"))
	})

	It("reports undecodable payloads as malformed", func() {
		_, err := tiingo.FetchPrices(ctx, []string{"BROKEN"}, begin, end)
		Expect(err).To(MatchError(data.ErrMalformedSeries))
	})

	It("fails on server errors", func() {
		_, err := tiingo.FetchPrices(ctx, []string{"DOWN"}, begin, end)
		Expect(err).To(MatchError(data.ErrProviderStatus))
	})

	It("rejects an inverted date range without calling the API", func() {
		_, err := tiingo.FetchPrices(ctx, []string{"VFINX"}, end, begin)
		Expect(err).To(MatchError(data.ErrInvalidTimeRange))
		Expect(httpmock.GetTotalCallCount()).To(Equal(0))
	})
})
