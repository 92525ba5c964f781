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

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-analytics/data"
)

var _ = Describe("Yahoo", func() {
	var (
		ctx   context.Context
		yahoo *data.Yahoo
	)

	BeforeEach(func() {
		ctx = context.Background()
		yahoo = data.NewYahoo("", 5*time.Second)
		httpmock.ActivateNonDefault(yahoo.Client)

		httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v7/finance/quote?symbols=AAPL",
			httpmock.NewStringResponder(200, `{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":150.25,"regularMarketChangePercent":-1.5,"regularMarketVolume":81234567,"marketCap":2450000000000,"forwardPE":25.1,"trailingAnnualDividendYield":0.0058}],"error":null}}`))
		httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v7/finance/quote?symbols=VFINX",
			httpmock.NewStringResponder(200, `{"quoteResponse":{"result":[{"symbol":"VFINX","regularMarketPrice":400.5}],"error":null}}`))
		httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v7/finance/quote?symbols=NOPE",
			httpmock.NewStringResponder(200, `{"quoteResponse":{"result":[],"error":null}}`))
		httpmock.RegisterResponder("GET", "https://query1.finance.yahoo.com/v7/finance/quote?symbols=LIMIT",
			httpmock.NewStringResponder(429, `Too Many Requests`))
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	It("parses a full quote", func() {
		quote, err := yahoo.FetchQuote(ctx, "AAPL")
		Expect(err).To(BeNil())
		Expect(quote.Ticker).To(Equal("AAPL"))
		Expect(*quote.Price).To(Equal(150.25))
		Expect(*quote.ChangePercent).To(Equal(-1.5))
		Expect(*quote.Volume).To(Equal(int64(81234567)))
		Expect(*quote.MarketCap).To(Equal(2450000000000.0))
		Expect(*quote.ForwardPE).To(Equal(25.1))
		Expect(*quote.DividendYield).To(Equal(0.0058))
	})

	It("leaves missing fields nil", func() {
		quote, err := yahoo.FetchQuote(ctx, "VFINX")
		Expect(err).To(BeNil())
		Expect(*quote.Price).To(Equal(400.5))
		Expect(quote.Volume).To(BeNil())
		Expect(quote.ForwardPE).To(BeNil())
		Expect(quote.DividendYield).To(BeNil())
	})

	It("reports unknown tickers as not found", func() {
		_, err := yahoo.FetchQuote(ctx, "NOPE")
		Expect(err).To(MatchError(data.ErrNotFound))
	})

	It("fails on error status codes", func() {
		_, err := yahoo.FetchQuote(ctx, "LIMIT")
		Expect(err).To(MatchError(data.ErrProviderStatus))
	})
})
