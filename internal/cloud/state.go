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
// This file is responsible for initializing and holding the client objects the
// pipeline needs. It acts as a dependency injection container, creating a
// single shared `ServiceClients` struct that is passed through the application.
//
// Logic Flow:
//  1. `NewServiceClients` is called at application startup with the loaded Config.
//  2. It creates one genai client per credential (planner and narrator can use
//     different API keys).
//  3. It reads the configuration to build the rate-limited model wrappers,
//     storing them in maps keyed by the logical names used in the TOML file.
//  4. The struct is then used by the workflow to construct the pipeline commands.
package cloud

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// ServiceClients is a container for every external service handle the pipeline
// uses. It is built once at startup and shared across the run.
type ServiceClients struct {
	GenAIClient  *genai.Client                         // Client for the Gemini API (planner credential).
	TTSClient    *genai.Client                         // Client for the Gemini API (narration credential; may share the planner key).
	AgentModels  map[string]*QuotaAwareGenerativeAIModel // Configured LLM models, keyed by logical name.
	SpeechModels map[string]*QuotaAwareSpeechModel       // Configured TTS models, keyed by logical name.
}

// NewServiceClients is a factory function that initializes the Gemini clients
// and model wrappers declared in the configuration.
//
// Inputs:
//   - ctx: The root context.Context for the application.
//   - config: A pointer to the loaded application configuration.
//
// Outputs:
//   - *ServiceClients: A pointer to the fully initialized ServiceClients struct.
//   - error: An error if any of the clients fail to initialize.
func NewServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	apiKey := GeminiAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("missing credential: set %s", EnvGeminiAPIKey)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	// The narrator may be credentialed separately. Reuse the planner client
	// when the keys match to avoid a second connection pool.
	ttsClient := gc
	if ttsKey := GeminiTTSAPIKey(); ttsKey != apiKey {
		ttsClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  ttsKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create genai TTS client: %w", err)
		}
	}

	out := &ServiceClients{
		GenAIClient:  gc,
		TTSClient:    ttsClient,
		AgentModels:  make(map[string]*QuotaAwareGenerativeAIModel),
		SpeechModels: make(map[string]*QuotaAwareSpeechModel),
	}

	for name, m := range config.AgentModels {
		generateConfig := &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(m.Temperature),
			TopP:            genai.Ptr(m.TopP),
			TopK:            genai.Ptr(m.TopK),
			MaxOutputTokens: m.MaxTokens,
			SafetySettings:  DefaultSafetySettings,
		}
		if m.SystemInstructions != "" {
			generateConfig.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: m.SystemInstructions}},
			}
		}
		out.AgentModels[name] = NewQuotaAwareModel(generateConfig, m.Model, gc.Models, m.RateLimit)
	}

	for name, m := range config.SpeechModels {
		out.SpeechModels[name] = NewQuotaAwareSpeechModel(m.Model, m.Voice, m.SampleRate, ttsClient.Models, m.RateLimit)
	}

	return out, nil
}
