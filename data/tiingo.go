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
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-analytics/common"
	"github.com/penny-vault/pv-analytics/observability/opentelemetry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultTiingoURL = "https://api.tiingo.com"
)

// Tiingo loads split and dividend adjusted end-of-day prices from the Tiingo REST API
type Tiingo struct {
	Client  *http.Client
	apikey  string
	baseURL string
}

type tiingoJSONResponse struct {
	Date        string  `json:"date"`
	Close       float64 `json:"close"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Open        float64 `json:"open"`
	Volume      int64   `json:"volume"`
	AdjClose    float64 `json:"adjClose"`
	AdjHigh     float64 `json:"adjHigh"`
	AdjLow      float64 `json:"adjLow"`
	AdjOpen     float64 `json:"adjOpen"`
	AdjVolume   int64   `json:"adjVolume"`
	DivCash     float64 `json:"divCash"`
	SplitFactor float64 `json:"splitFactor"`
}

// NewTiingo Create a new Tiingo data provider
func NewTiingo(key, baseURL string, timeout time.Duration) *Tiingo {
	if baseURL == "" {
		baseURL = DefaultTiingoURL
	}
	return &Tiingo{
		Client:  &http.Client{Timeout: timeout},
		apikey:  key,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchPrices downloads the adjusted close of each ticker between begin and end inclusive.
// Tickers unknown to Tiingo are left out of the result.
func (t *Tiingo) FetchPrices(ctx context.Context, tickers []string, begin, end time.Time) (map[string]*PriceSeries, error) {
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	res := make(map[string]*PriceSeries, len(tickers))
	for _, ticker := range tickers {
		series, err := t.loadPrices(ctx, ticker, begin, end)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res[ticker] = series
	}

	return res, nil
}

func (t *Tiingo) loadPrices(ctx context.Context, ticker string, begin, end time.Time) (*PriceSeries, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "tiingo.loadPrices")
	defer span.End()

	subLog := log.With().Str("Ticker", ticker).Time("Begin", begin).Time("End", end).Logger()

	path := fmt.Sprintf("%s/tiingo/daily/%s/prices?startDate=%s&endDate=%s", t.baseURL, ticker, begin.Format(common.DateFormat), end.Format(common.DateFormat))
	span.SetAttributes(
		attribute.String("Url", path),
		attribute.String("Ticker", ticker),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s&token=%s", path, t.apikey), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build tiingo request")
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		span.RecordError(err)
		msg := "tiingo http request failed"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return nil, errors.Wrap(err, msg)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		msg := "could not read tiingo body"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return nil, errors.Wrap(err, msg)
	}

	if resp.StatusCode == http.StatusNotFound {
		subLog.Warn().Msg("ticker not found by tiingo")
		return nil, ErrNotFound
	}

	if resp.StatusCode >= 400 {
		span.SetAttributes(attribute.Int("StatusCode", resp.StatusCode))
		msg := "tiingo returned invalid response code"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Int("HTTPResponseStatusCode", resp.StatusCode).Bytes("Body", body).Msg(msg)
		return nil, errors.Wrapf(ErrProviderStatus, "tiingo %d", resp.StatusCode)
	}

	rows := []tiingoJSONResponse{}
	if err := json.Unmarshal(body, &rows); err != nil {
		span.RecordError(err)
		msg := "could not unmarshal json"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Bytes("Body", body).Msg(msg)
		return nil, errors.Wrapf(ErrMalformedSeries, "%s: %s", ticker, err.Error())
	}

	series := &PriceSeries{
		Ticker: ticker,
		Dates:  make([]time.Time, 0, len(rows)),
		Prices: make([]float64, 0, len(rows)),
	}

	for _, row := range rows {
		dtParts := strings.Split(row.Date, "T")
		dt, err := common.ParseDate(dtParts[0])
		if err != nil {
			span.RecordError(err)
			msg := "cannot parse date string"
			span.SetStatus(codes.Error, msg)
			subLog.Error().Err(err).Str("DateStr", row.Date).Msg(msg)
			return nil, errors.Wrapf(ErrMalformedSeries, "%s: invalid date %q", ticker, row.Date)
		}
		series.Dates = append(series.Dates, dt)
		series.Prices = append(series.Prices, row.AdjClose)
	}

	subLog.Debug().Int("NumPrices", series.Len()).Msg("loaded prices from tiingo")
	return series, nil
}
