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
	"time"
)

// PriceProvider retrieves daily closing prices. Tickers the provider has no data for are
// absent from the returned map; the error is reserved for failures of the whole request.
type PriceProvider interface {
	FetchPrices(ctx context.Context, tickers []string, begin, end time.Time) (map[string]*PriceSeries, error)
}

// QuoteProvider retrieves a live market snapshot for a single ticker
type QuoteProvider interface {
	FetchQuote(ctx context.Context, ticker string) (*Quote, error)
}
