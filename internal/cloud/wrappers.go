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

// Package cloud provides components for interacting with external AI services.
// This file implements decorators around the Generative AI client that add
// rate limiting to the planner (LLM) and narrator (TTS) models without
// altering the client code itself.
//
// Why this is important:
//   - Rate Limiting: Gemini enforces per-minute request quotas. These wrappers
//     keep the pipeline under those limits even when several scenes are being
//     processed concurrently.
//   - One place to decorate: the pipeline commands only ever see the wrapper,
//     so retry and quota policy stay out of the business logic.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: wraps text generation with a rate limiter.
//   - QuotaAwareSpeechModel: wraps speech synthesis with a rate limiter.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// QuotaAwareGenerativeAIModel is a decorator struct that pairs a Gemini model
// handle with a rate limiter. Calls block until the limiter grants a token,
// so concurrent workers queue instead of tripping the service quota.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // Generation parameters built from the model config.
	ModelName               string                       // The Gemini model identifier.
	ModelHandle             *genai.Models                // The underlying genai models handle.
	RateLimit               *rate.Limiter                // Limits request frequency against the service quota.
}

// NewQuotaAwareModel is a constructor function that creates a new
// QuotaAwareGenerativeAIModel from a generation config, a model name, the
// genai models handle, and a request-per-second budget.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, modelHandle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             modelHandle,
		RateLimit:               rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
	}
}

// GenerateContent forwards to the underlying model once the rate limiter
// grants a slot. Waiting respects context cancellation, so a user abort does
// not leave a request queued.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait canceled: %w", err)
	}
	return q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
}

// QuotaAwareSpeechModel is the TTS counterpart of QuotaAwareGenerativeAIModel.
// Gemini speech models use the same GenerateContent surface but must be asked
// for an audio response modality and a voice.
type QuotaAwareSpeechModel struct {
	ModelName   string        // The Gemini TTS model identifier.
	Voice       string        // The prebuilt voice used for narration.
	SampleRate  int           // PCM sample rate of returned audio, in Hz.
	ModelHandle *genai.Models // The underlying genai models handle.
	RateLimit   *rate.Limiter // Limits request frequency against the service quota.
}

// NewQuotaAwareSpeechModel is the constructor for QuotaAwareSpeechModel.
func NewQuotaAwareSpeechModel(name string, voice string, sampleRate int, modelHandle *genai.Models, requestsPerSecond int) *QuotaAwareSpeechModel {
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	if sampleRate <= 0 {
		// Gemini TTS models return 24 kHz 16-bit mono PCM.
		sampleRate = 24000
	}
	return &QuotaAwareSpeechModel{
		ModelName:   name,
		Voice:       voice,
		SampleRate:  sampleRate,
		ModelHandle: modelHandle,
		RateLimit:   rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
	}
}

// GenerateSpeech synthesizes the given text and returns the raw PCM payload.
//
// Inputs:
//   - ctx: The context for the request.
//   - text: The narration text to synthesize.
//
// Outputs:
//   - []byte: Signed 16-bit little-endian mono PCM at the configured sample rate.
//   - error: An error if the call fails or the response carries no audio.
func (q *QuotaAwareSpeechModel) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait canceled: %w", err)
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: q.Voice},
			},
		},
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: text}}},
	}

	resp, err := q.ModelHandle.GenerateContent(ctx, q.ModelName, contents, config)
	if err != nil {
		return nil, err
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, errors.New("speech response contained no audio data")
}
