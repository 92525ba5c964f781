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

package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-analytics/data"
	"github.com/penny-vault/pv-analytics/handler"
	"github.com/penny-vault/pv-analytics/report"
	"github.com/pkg/errors"
)

var _ = Describe("Handler", func() {
	var (
		app    *fiber.App
		prices *fakePrices
	)

	post := func(body string) (int, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/v1/analyze_portfolio", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		buf, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())

		res := map[string]any{}
		Expect(json.Unmarshal(buf, &res)).To(Succeed())
		return resp.StatusCode, res
	}

	BeforeEach(func() {
		start := time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC)
		prices = &fakePrices{
			series: map[string]*data.PriceSeries{
				"AAA": pricePath("AAA", start, 60, 0.01, -0.02, 0.015),
				"BBB": pricePath("BBB", start, 60, -0.01, 0.005, 0.02, -0.004),
				"SPY": pricePath("SPY", start, 60, 0.003, -0.002, 0.001),
				"OLD": pricePath("OLD", start.AddDate(-3, 0, 0), 60, 0.01, -0.01),
			},
		}

		analyzer := handler.NewAnalyzer(report.NewAssembler(prices, &fakeQuotes{}))
		analyzer.Now = func() time.Time { return time.Date(2021, time.June, 1, 12, 0, 0, 0, time.UTC) }

		app = fiber.New(fiber.Config{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		})
		app.Get("/v1/ping", handler.Ping)
		app.Post("/v1/analyze_portfolio", analyzer.AnalyzePortfolio)
	})

	It("responds to ping", func() {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/ping", nil), -1)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
	})

	It("returns the report for a valid request", func() {
		status, body := post(`{"start_date":"2021-01-04","end_date":"2021-03-01","stocks":["aaa","bbb"],"weights":[0.5,0.5]}`)
		Expect(status).To(Equal(fiber.StatusOK))
		Expect(body).To(HaveKey("report_id"))
		Expect(body).To(HaveKeyWithValue("portfolio_settings", HaveKeyWithValue("benchmark", "SPY")))
		Expect(body).To(HaveKeyWithValue("live_market_data", HaveKey("AAA")))
		Expect(body).To(HaveKeyWithValue("portfolio_overview", HaveKey("key_metrics")))
	})

	DescribeTable("rejects bad requests without fetching data",
		func(body string, message string) {
			status, res := post(body)
			Expect(status).To(Equal(fiber.StatusBadRequest))
			Expect(res).To(HaveKeyWithValue("status", "error"))
			Expect(res).To(HaveKeyWithValue("message", ContainSubstring(message)))
			Expect(prices.Calls()).To(Equal(0))
		},
		Entry("malformed json", `{"start_date":`, "not valid JSON"),
		Entry("weights not summing to one", `{"start_date":"2021-01-04","end_date":"2021-03-01","stocks":["AAA","BBB"],"weights":[0.5,0.6]}`, "sum to 1.0"),
		Entry("mismatched lengths", `{"start_date":"2021-01-04","end_date":"2021-03-01","stocks":["AAA"],"weights":[0.5,0.5]}`, "must match"),
		Entry("bad date", `{"start_date":"yesterday","end_date":"2021-03-01","stocks":["AAA"],"weights":[1.0]}`, "start_date"),
	)

	It("returns 404 when a holding has no data", func() {
		status, res := post(`{"start_date":"2021-01-04","end_date":"2021-03-01","stocks":["AAA","ZZZ"],"weights":[0.5,0.5]}`)
		Expect(status).To(Equal(fiber.StatusNotFound))
		Expect(res).To(HaveKeyWithValue("message", ContainSubstring("ZZZ")))
	})

	DescribeTable("returns 500 when a holding download fails",
		func(err error) {
			prices.errs = map[string]error{"BBB": err}
			status, res := post(`{"start_date":"2021-01-04","end_date":"2021-03-01","stocks":["AAA","BBB"],"weights":[0.5,0.5]}`)
			Expect(status).To(Equal(fiber.StatusInternalServerError))
			Expect(res).To(HaveKeyWithValue("status", "error"))
		},
		Entry("malformed series", errors.Wrap(data.ErrMalformedSeries, "BBB dates not strictly increasing")),
		Entry("provider status", errors.Wrapf(data.ErrProviderStatus, "status code %d", 503)),
	)

	It("returns 422 when the holdings do not overlap", func() {
		status, res := post(`{"start_date":"2018-01-04","end_date":"2021-03-01","stocks":["AAA","OLD"],"weights":[0.5,0.5]}`)
		Expect(status).To(Equal(fiber.StatusUnprocessableEntity))
		Expect(res).To(HaveKeyWithValue("status", "error"))
	})
})
