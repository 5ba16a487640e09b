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

// Package cloud_test contains unit tests for the configuration loader and
// the credential helpers.
package cloud_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anayrshukla/manim-video-generation/internal/cloud"
	"github.com/stretchr/testify/assert"
)

const baseTOML = `
[application]
name = "manim-video-generation"
workspace_dir = "/tmp/pipeline"
output_path = "summary.mp4"
thread_pool_size = 4

[pipeline]
scene_count = 4
target_duration_seconds = 60.0
outro_enabled = true

[tools]
ffmpeg_path = "ffmpeg"

[agent_models]
[agent_models.scene-planner]
model = "gemini-2.0-flash"
temperature = 0.7
rate_limit = 1

[speech_models]
[speech_models.narrator]
model = "gemini-2.5-flash-preview-tts"
voice = "Kore"
sample_rate = 24000
`

const testOverrideTOML = `
[application]
thread_pool_size = 2

[pipeline]
outro_enabled = false
`

// writeConfigDir lays out a config directory with a base file and a test
// override, and points the loader's environment variables at it.
func writeConfigDir(t *testing.T, runtime string) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseTOML), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test.toml"), []byte(testOverrideTOML), 0o644))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, runtime)
}

func TestLoadConfigAppliesEnvironmentOverrides(t *testing.T) {
	writeConfigDir(t, "test")

	config := cloud.NewConfig()
	cloud.LoadConfig(&config)

	// Values from the base file survive when the override file is silent.
	assert.Equal(t, "manim-video-generation", config.Application.Name)
	assert.Equal(t, 4, config.Pipeline.SceneCount)
	assert.Equal(t, 60.0, config.Pipeline.TargetDurationSeconds)
	assert.Equal(t, "ffmpeg", config.Tools.FFMpegPath)

	// Values named in the override file win.
	assert.Equal(t, 2, config.Application.ThreadPoolSize)
	assert.False(t, config.Pipeline.OutroEnabled)

	// Model maps are keyed by their logical names.
	planner, ok := config.AgentModels["scene-planner"]
	assert.True(t, ok)
	assert.Equal(t, "gemini-2.0-flash", planner.Model)
	narrator, ok := config.SpeechModels["narrator"]
	assert.True(t, ok)
	assert.Equal(t, "Kore", narrator.Voice)
	assert.Equal(t, 24000, narrator.SampleRate)
}

// A runtime with no matching override file loads the base file alone.
func TestLoadConfigMissingOverrideIsSkipped(t *testing.T) {
	writeConfigDir(t, "staging")

	config := cloud.NewConfig()
	cloud.LoadConfig(&config)

	assert.Equal(t, 4, config.Application.ThreadPoolSize)
	assert.True(t, config.Pipeline.OutroEnabled)
}

func TestNewConfigInitializesModelMaps(t *testing.T) {
	config := cloud.NewConfig()
	assert.NotNil(t, config.AgentModels)
	assert.NotNil(t, config.SpeechModels)
}

func TestGeminiTTSAPIKeyFallsBackToPlannerKey(t *testing.T) {
	t.Setenv(cloud.EnvGeminiAPIKey, "planner-key")
	t.Setenv(cloud.EnvGeminiTTSAPIKey, "")
	assert.Equal(t, "planner-key", cloud.GeminiTTSAPIKey())

	t.Setenv(cloud.EnvGeminiTTSAPIKey, "tts-key")
	assert.Equal(t, "tts-key", cloud.GeminiTTSAPIKey())
}
