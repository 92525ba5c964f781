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

package cmd

import (
	"time"

	"github.com/penny-vault/pv-analytics/common"
	"github.com/penny-vault/pv-analytics/data"
	"github.com/penny-vault/pv-analytics/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// newAssembler wires the market data providers described by the configuration into a report
// assembler
func newAssembler() (*report.Assembler, error) {
	timeout := time.Duration(viper.GetInt("http.timeout")) * time.Second

	token := viper.GetString("tiingo.token")
	if token == "" {
		log.Warn().Msg("tiingo.token is not set; price requests will be rejected by tiingo")
	}

	var prices data.PriceProvider = data.NewTiingo(token, viper.GetString("tiingo.url"), timeout)
	if viper.GetBool("cache.enabled") {
		cache, err := common.NewCacheFromConfig()
		if err != nil {
			log.Error().Stack().Err(err).Msg("could not create price cache")
			return nil, err
		}
		log.Info().Int("LocalSize", viper.GetInt("cache.local_size")).Bool("Redis", viper.GetBool("cache.redis")).Msg("price cache enabled")
		prices = data.NewCachedProvider(prices, cache)
	}

	quotes := data.NewYahoo(viper.GetString("yahoo.url"), timeout)

	return report.NewAssembler(prices, quotes), nil
}
