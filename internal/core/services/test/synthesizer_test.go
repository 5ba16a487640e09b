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

// Package services_test contains unit tests for the pipeline's service layer.
// This file tests the narration length policy and the silent fallback.
package services_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/anayrshukla/manim-video-generation/internal/core/services"
	"github.com/stretchr/testify/assert"
)

func TestTruncateNarrationLeavesShortTextAlone(t *testing.T) {
	assert.Equal(t, "short narration", services.TruncateNarration("short narration", 100))
}

func TestTruncateNarrationCutsAtWordBoundary(t *testing.T) {
	in := "the quick brown fox jumps over the lazy dog"
	out := services.TruncateNarration(in, 20)

	assert.LessOrEqual(t, len(out), 20)
	assert.False(t, strings.HasSuffix(out, " "))
	// Never a partial word at the cut; the longest complete-word prefix wins.
	assert.True(t, strings.HasPrefix(in, out))
	assert.Equal(t, "the quick brown fox", out)
}

func TestTruncateNarrationCutsInsideWord(t *testing.T) {
	// The limit lands mid-word: the partial word is dropped entirely.
	assert.Equal(t, "the quick", services.TruncateNarration("the quick brown fox", 14))
}

func TestTruncateNarrationZeroLimitDisables(t *testing.T) {
	long := strings.Repeat("word ", 1000)
	assert.Equal(t, long, services.TruncateNarration(long, 0))
}

// The silent fallback must produce a real WAV file whose duration matches the
// scene's target, because the assembler pads against it arithmetically.
func TestSynthesizeSilenceWritesPlaceholderWAV(t *testing.T) {
	workspace := t.TempDir()
	synth := services.NewGeminiSynthesizer(nil, 0)
	scene := &model.Scene{SequenceNumber: 2, Narration: "n", TargetDurationSeconds: 1.5}

	audio, err := synth.SynthesizeSilence(context.Background(), scene, workspace)
	assert.NoError(t, err)
	assert.True(t, audio.Placeholder)
	assert.Equal(t, 2, audio.SequenceNumber)
	assert.InDelta(t, 1.5, audio.DurationSeconds, 0.01)

	data, err := os.ReadFile(audio.Path)
	assert.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	// 1.5s of 16-bit mono PCM at 24kHz plus the 44-byte header.
	assert.Equal(t, 44+int(1.5*24000*2), len(data))
}
