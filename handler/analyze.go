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

package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/pv-analytics/data"
	"github.com/penny-vault/pv-analytics/observability/opentelemetry"
	"github.com/penny-vault/pv-analytics/portfolio"
	"github.com/penny-vault/pv-analytics/report"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// Analyzer serves portfolio analysis requests
type Analyzer struct {
	Assembler *report.Assembler

	// Now is used to clamp end dates; time.Now when nil
	Now func() time.Time
}

func NewAnalyzer(assembler *report.Assembler) *Analyzer {
	return &Analyzer{
		Assembler: assembler,
	}
}

// AnalyzePortfolio validates the posted request and responds with the complete report
func (a *Analyzer) AnalyzePortfolio(c *fiber.Ctx) (resp error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(c.UserContext(), "AnalyzePortfolio")
	defer span.End()
	span.SetAttributes(opentelemetry.SpanAttributesFromFiber(c)...)

	subLog := log.With().Str("Endpoint", "AnalyzePortfolio").Logger()

	defer func() {
		if r := recover(); r != nil {
			subLog.Error().Str("Panic", fmt.Sprint(r)).Msg("caught panic while analyzing portfolio")
			span.SetStatus(codes.Error, "panic")
			resp = sendError(c, fiber.StatusInternalServerError, "internal error while analyzing portfolio")
		}
	}()

	req := report.Request{}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		subLog.Warn().Err(err).Msg("could not decode request body")
		span.SetStatus(codes.Error, "invalid body")
		return sendError(c, fiber.StatusBadRequest, fmt.Sprintf("request body is not valid JSON: %s", err.Error()))
	}

	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}

	settings, err := req.Validate(now)
	if err != nil {
		subLog.Warn().Err(err).Strs("Stocks", req.Stocks).Msg("rejected analysis request")
		span.SetStatus(codes.Error, "validation failed")
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	rep, err := a.Assembler.Build(ctx, settings)
	if err != nil {
		status := statusCode(err)
		if status >= fiber.StatusInternalServerError {
			subLog.Error().Stack().Err(err).Strs("Stocks", settings.Stocks).Msg("portfolio analysis failed")
		} else {
			subLog.Warn().Err(err).Strs("Stocks", settings.Stocks).Msg("portfolio cannot be analyzed")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		return sendError(c, status, err.Error())
	}

	return c.JSON(rep)
}

func statusCode(err error) int {
	var validationErr *report.ValidationError
	switch {
	case errors.As(err, &validationErr), errors.Is(err, portfolio.ErrInvalidWeights):
		return fiber.StatusBadRequest
	case errors.Is(err, data.ErrNoData), errors.Is(err, data.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, portfolio.ErrNoOverlap), errors.Is(err, portfolio.ErrInsufficientData):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
