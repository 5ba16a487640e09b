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
// implements the Synthesizer against a Gemini speech model.
//
// Logic Flow:
//  1. Narration that exceeds the backend's character limit is truncated at a
//     word boundary before the call. The backend would reject it with an
//     opaque error otherwise; truncating here keeps the failure mode visible
//     and deterministic.
//  2. The speech model returns raw 16-bit mono PCM. The synthesizer wraps it
//     in a WAV container so ffmpeg can consume it during assembly, and derives
//     the segment duration arithmetically from the sample count, which avoids
//     a probe round-trip and is exact.
//  3. SynthesizeSilence covers the degrade policy: a silent WAV of the
//     scene's target duration, generated locally with no backend involved.
package services

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anayrshukla/manim-video-generation/internal/cloud"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
)

// GeminiSynthesizer is the production Synthesizer.
type GeminiSynthesizer struct {
	speechModel        *cloud.QuotaAwareSpeechModel // The rate-limited TTS client.
	maxNarrationLength int                          // Backend character limit, enforced before the call.
}

// NewGeminiSynthesizer is the constructor for GeminiSynthesizer.
func NewGeminiSynthesizer(speechModel *cloud.QuotaAwareSpeechModel, maxNarrationLength int) *GeminiSynthesizer {
	return &GeminiSynthesizer{speechModel: speechModel, maxNarrationLength: maxNarrationLength}
}

// Synthesize produces the narration audio for one scene.
func (s *GeminiSynthesizer) Synthesize(ctx context.Context, scene *model.Scene, workspace string) (*model.AudioSegment, error) {
	narration := TruncateNarration(scene.Narration, s.maxNarrationLength)
	if strings.TrimSpace(narration) == "" {
		return nil, fmt.Errorf("narration is empty after applying length constraint")
	}

	pcm, err := s.speechModel.GenerateSpeech(ctx, narration)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	out := filepath.Join(workspace, fmt.Sprintf("narration_%d.wav", scene.SequenceNumber))
	if err := writeWAV(out, pcm, s.speechModel.SampleRate); err != nil {
		return nil, err
	}

	// 16-bit mono samples: two bytes per sample frame.
	duration := float64(len(pcm)) / float64(s.speechModel.SampleRate*2)
	return &model.AudioSegment{
		SequenceNumber:  scene.SequenceNumber,
		Path:            out,
		DurationSeconds: duration,
	}, nil
}

// SynthesizeSilence produces the degraded silence substitute for a scene.
// It touches no backend, so it also works without a configured speech model.
func (s *GeminiSynthesizer) SynthesizeSilence(_ context.Context, scene *model.Scene, workspace string) (*model.AudioSegment, error) {
	sampleRate := 24000
	if s.speechModel != nil && s.speechModel.SampleRate > 0 {
		sampleRate = s.speechModel.SampleRate
	}
	frames := int(scene.TargetDurationSeconds * float64(sampleRate))
	pcm := make([]byte, frames*2)

	out := filepath.Join(workspace, fmt.Sprintf("silence_%d.wav", scene.SequenceNumber))
	if err := writeWAV(out, pcm, sampleRate); err != nil {
		return nil, err
	}
	return &model.AudioSegment{
		SequenceNumber:  scene.SequenceNumber,
		Path:            out,
		DurationSeconds: scene.TargetDurationSeconds,
		Placeholder:     true,
	}, nil
}

// TruncateNarration enforces the backend length constraint before the call.
// Text over the limit is cut at the last word boundary that fits; a limit of
// zero or less disables the constraint.
func TruncateNarration(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}

// writeWAV wraps 16-bit little-endian mono PCM in a minimal RIFF/WAVE
// container. The assembler only needs ffmpeg to read the result, so the
// canonical 44-byte header is sufficient.
func writeWAV(path string, pcm []byte, sampleRate int) error {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(header); err != nil {
		return fmt.Errorf("failed to write audio header: %w", err)
	}
	if _, err := f.Write(pcm); err != nil {
		return fmt.Errorf("failed to write audio payload: %w", err)
	}
	return nil
}
