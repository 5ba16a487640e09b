// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package services holds the capability boundaries of the pipeline. This file
// implements the Summarizer against a Gemini model.
//
// Logic Flow:
//  1. The prompt is built from a Go template configured in the TOML file. The
//     template vocabulary carries the document text, the scene count, the
//     per-scene and total durations, and a few-shot JSON example produced from
//     model.GetExamplePlan().
//  2. The request goes through the quota-aware model wrapper, which enforces
//     the configured rate limit, and the shared generation helper, which
//     retries once and records token counters.
//  3. The response is expected to be a bare JSON object. Models occasionally
//     wrap the object in prose anyway, so ExtractJSONObject scans for the
//     outermost brace pair as a fallback before the caller attempts parsing.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/anayrshukla/manim-video-generation/internal/cloud"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
)

// GeminiScenePlanner is the production Summarizer. It is safe for concurrent
// use; all state is read-only after construction.
type GeminiScenePlanner struct {
	generativeAIModel  *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client.
	promptTemplate     *template.Template                 // The Go template for building the planner prompt.
	inputTokenCounter  metric.Int64Counter                // OTel counter for prompt tokens.
	outputTokenCounter metric.Int64Counter                // OTel counter for response tokens.
	retryCounter       metric.Int64Counter                // OTel counter for retries.
}

// NewGeminiScenePlanner is the constructor for the GeminiScenePlanner.
//
// Inputs:
//   - generativeAIModel: The rate-limited wrapper for the generative model client.
//   - promptTemplate: A parsed Go template for the planner prompt.
//
// Outputs:
//   - *GeminiScenePlanner: A pointer to the newly instantiated planner with
//     initialized telemetry counters.
func NewGeminiScenePlanner(generativeAIModel *cloud.QuotaAwareGenerativeAIModel, promptTemplate *template.Template) *GeminiScenePlanner {
	meter := otel.Meter("github.com/anayrshukla/manim-video-generation")
	out := &GeminiScenePlanner{
		generativeAIModel: generativeAIModel,
		promptTemplate:    promptTemplate,
	}
	out.inputTokenCounter, _ = meter.Int64Counter("scene_planner.gemini.token.input")
	out.outputTokenCounter, _ = meter.Int64Counter("scene_planner.gemini.token.output")
	out.retryCounter, _ = meter.Int64Counter("scene_planner.gemini.retry")
	return out
}

// Summarize builds the planner prompt and submits it to the model.
func (p *GeminiScenePlanner) Summarize(ctx context.Context, documentText string, sceneCount int, targetDurationSeconds float64) (string, error) {
	exampleJson, _ := json.Marshal(model.GetExamplePlan())

	vocabulary := make(map[string]interface{})
	vocabulary["DOCUMENT_TEXT"] = documentText
	vocabulary["SCENE_COUNT"] = sceneCount
	vocabulary["TARGET_DURATION"] = fmt.Sprintf("%.0f", targetDurationSeconds)
	vocabulary["SCENE_DURATION"] = fmt.Sprintf("%.0f", targetDurationSeconds/float64(sceneCount))
	vocabulary["EXAMPLE_JSON"] = string(exampleJson)

	var doc bytes.Buffer
	if err := p.promptTemplate.Execute(&doc, vocabulary); err != nil {
		return "", fmt.Errorf("failed to execute planner prompt template: %w", err)
	}

	out, err := cloud.GenerateTextResponse(ctx, p.inputTokenCounter, p.outputTokenCounter, p.retryCounter, 0, p.generativeAIModel, cloud.NewTextContent(doc.String()))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return out, nil
}

// ExtractJSONObject returns the outermost JSON object embedded in a model
// response. The planner prompt demands a bare object, but models sometimes
// preface it with prose; scanning for the first opening brace and its matching
// close recovers the payload in that case. Returns the input unchanged when it
// already starts with a brace, and an error when no balanced object exists.
func ExtractJSONObject(in string) (string, error) {
	trimmed := strings.TrimSpace(in)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed, nil
	}
	start := strings.Index(trimmed, "{")
	if start < 0 {
		return "", fmt.Errorf("response contains no JSON object")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(trimmed); i++ {
		c := trimmed[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return trimmed[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("response contains an unterminated JSON object")
}
