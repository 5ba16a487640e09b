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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, along with the clients for the external AI
// services the pipeline depends on.
//
// This file centralizes all configuration-related structs, making it easy
// to understand and manage the pipeline's configurable parameters.
//
// Structs:
//   - PromptTemplates: Holds the text templates for prompts sent to GenAI models.
//   - GeminiLLMModel: Configuration for a Gemini large language model.
//   - GeminiSpeechModel: Configuration for a Gemini text-to-speech model.
//   - Pipeline: Tunables for the summary-video run itself.
//   - Tools: Paths and output parameters for the local rendering toolchain.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for GenAI
// models. The input is a research paper the user supplied themselves, so the
// thresholds are non-restrictive.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// PromptTemplates holds the templates for prompts sent to the planner model.
type PromptTemplates struct {
	ScenePlanPrompt string `toml:"scene_plan"` // The template for generating the scene plan from document text.
}

// GeminiLLMModel represents the configuration for a Gemini large language model (LLM).
type GeminiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Gemini model.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	RateLimit          int     `toml:"rate_limit"`          // The rate limit for the LLM in requests per second.
}

// GeminiSpeechModel represents the configuration for a Gemini text-to-speech model.
type GeminiSpeechModel struct {
	Model      string `toml:"model"`       // The name of the TTS model.
	Voice      string `toml:"voice"`       // The prebuilt voice name used for narration.
	SampleRate int    `toml:"sample_rate"` // PCM sample rate of the returned audio, in Hz.
	RateLimit  int    `toml:"rate_limit"`  // The rate limit for the TTS model in requests per second.
}

// Pipeline holds the tunables that shape a single summary-video run.
type Pipeline struct {
	SceneCount               int     `toml:"scene_count"`                // Number of scenes (clips) in the final video.
	TargetDurationSeconds    float64 `toml:"target_duration_seconds"`    // Target length of the final video in seconds.
	DurationToleranceSeconds float64 `toml:"duration_tolerance_seconds"` // Acceptable deviation between a rendered clip and its target.
	TruncationLimit          int     `toml:"truncation_limit"`           // Maximum number of runes of document text sent to the planner.
	FetchTimeoutSeconds      int     `toml:"fetch_timeout_seconds"`      // Bound on the PDF download.
	RenderTimeoutSeconds     int     `toml:"render_timeout_seconds"`     // Bound on a single manim render.
	SynthesisTimeoutSeconds  int     `toml:"synthesis_timeout_seconds"`  // Bound on a single TTS call.
	AbortOnSceneFailure      bool    `toml:"abort_on_scene_failure"`     // When true, any per-scene failure aborts the run instead of degrading.
	OutroEnabled             bool    `toml:"outro_enabled"`              // When true, a short locally rendered outro card is appended.
	OutroDurationSeconds     float64 `toml:"outro_duration_seconds"`     // Length of the outro card.
	MaxNarrationLength       int     `toml:"max_narration_length"`       // Maximum narration characters accepted by the TTS backend.
}

// Tools holds paths and output parameters for the local rendering toolchain.
type Tools struct {
	FFMpegPath  string `toml:"ffmpeg_path"`  // Path to the ffmpeg executable.
	FFProbePath string `toml:"ffprobe_path"` // Path to the ffprobe executable.
	ManimPath   string `toml:"manim_path"`   // Path to the manim executable.
	VideoWidth  int    `toml:"video_width"`  // Output frame width in pixels.
	VideoHeight int    `toml:"video_height"` // Output frame height in pixels.
	FrameRate   int    `toml:"frame_rate"`   // Output frame rate.
}

// Config represents the overall configuration for the application, loaded from
// TOML files. It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name           string `toml:"name"`             // The name of the application.
		WorkspaceDir   string `toml:"workspace_dir"`    // Directory under which per-run scratch workspaces are created.
		OutputPath     string `toml:"output_path"`      // Path of the final summary video.
		ThreadPoolSize int    `toml:"thread_pool_size"` // The size of the worker pool for per-scene tasks.
		KeepWorkspace  bool   `toml:"keep_workspace"`   // When true, run scratch files are kept for debugging.
		OtelEnabled    bool   `toml:"otel_enabled"`     // When true, traces and metrics are exported to a local file.
	} `toml:"application"`
	Pipeline        Pipeline                     `toml:"pipeline"`         // Run tunables.
	Tools           Tools                        `toml:"tools"`            // Local toolchain configuration.
	PromptTemplates PromptTemplates              `toml:"prompt_templates"` // Prompt templates configuration.
	AgentModels     map[string]GeminiLLMModel    `toml:"agent_models"`     // Gemini LLM models, keyed by a logical name (e.g., "scene-planner").
	SpeechModels    map[string]GeminiSpeechModel `toml:"speech_models"`    // Gemini TTS models, keyed by a logical name (e.g., "narrator").
}

// NewConfig is a constructor function that creates a new, initialized Config
// instance. The maps must be initialized up front so the TOML decoder can
// populate them without nil-map panics.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		AgentModels:  make(map[string]GeminiLLMModel),
		SpeechModels: make(map[string]GeminiSpeechModel),
	}
}
