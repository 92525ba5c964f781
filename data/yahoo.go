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

package data

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-analytics/observability/opentelemetry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultYahooURL = "https://query1.finance.yahoo.com"
)

// Yahoo fetches live quote snapshots from the Yahoo Finance quote endpoint
type Yahoo struct {
	Client  *http.Client
	baseURL string
}

type yahooQuoteResp struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                      string   `json:"symbol"`
			RegularMarketPrice          *float64 `json:"regularMarketPrice"`
			RegularMarketChangePercent  *float64 `json:"regularMarketChangePercent"`
			RegularMarketVolume         *int64   `json:"regularMarketVolume"`
			MarketCap                   *float64 `json:"marketCap"`
			ForwardPE                   *float64 `json:"forwardPE"`
			DividendYield               *float64 `json:"dividendYield"`
			TrailingAnnualDividendYield *float64 `json:"trailingAnnualDividendYield"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"quoteResponse"`
}

func NewYahoo(baseURL string, timeout time.Duration) *Yahoo {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &Yahoo{
		Client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchQuote returns the current market snapshot of ticker; fields Yahoo does not report are nil
func (y *Yahoo) FetchQuote(ctx context.Context, ticker string) (*Quote, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "yahoo.FetchQuote")
	defer span.End()

	subLog := log.With().Str("Ticker", ticker).Logger()

	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", y.baseURL, url.QueryEscape(ticker))
	span.SetAttributes(attribute.String("Url", u), attribute.String("Ticker", ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build yahoo request")
	}
	req.Header.Set("User-Agent", "curl/8")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s", ticker))

	resp, err := y.Client.Do(req)
	if err != nil {
		span.RecordError(err)
		msg := "yahoo http request failed"
		span.SetStatus(codes.Error, msg)
		subLog.Warn().Err(err).Msg(msg)
		return nil, errors.Wrap(err, msg)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		span.SetAttributes(attribute.Int("StatusCode", resp.StatusCode))
		msg := "yahoo returned invalid response code"
		span.SetStatus(codes.Error, msg)
		subLog.Warn().Int("HTTPResponseStatusCode", resp.StatusCode).Msg(msg)
		return nil, errors.Wrapf(ErrProviderStatus, "yahoo %d", resp.StatusCode)
	}

	var yq yahooQuoteResp
	if err := json.NewDecoder(resp.Body).Decode(&yq); err != nil {
		span.RecordError(err)
		msg := "could not decode yahoo quote"
		span.SetStatus(codes.Error, msg)
		subLog.Warn().Err(err).Msg(msg)
		return nil, errors.Wrap(err, msg)
	}

	if len(yq.QuoteResponse.Result) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "yahoo quote %s", ticker)
	}

	r := yq.QuoteResponse.Result[0]
	quote := &Quote{
		Ticker:        ticker,
		Price:         r.RegularMarketPrice,
		ChangePercent: r.RegularMarketChangePercent,
		Volume:        r.RegularMarketVolume,
		MarketCap:     r.MarketCap,
		ForwardPE:     r.ForwardPE,
		DividendYield: r.DividendYield,
	}
	if quote.DividendYield == nil {
		quote.DividendYield = r.TrailingAnnualDividendYield
	}

	return quote, nil
}
