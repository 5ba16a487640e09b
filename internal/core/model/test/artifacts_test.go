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

// Package model_test contains unit tests for the data models. This file tests
// the per-run artifact table and the typed pipeline errors.
package model_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestPairReturnsBothSides(t *testing.T) {
	artifacts := model.NewSceneArtifacts()
	artifacts.Clips[0] = &model.RenderedClip{SequenceNumber: 0, Path: "clip.mp4", DurationSeconds: 14.2}
	artifacts.Audio[0] = &model.AudioSegment{SequenceNumber: 0, Path: "narr.wav", DurationSeconds: 15.0}

	clip, audio, err := artifacts.Pair(0)
	assert.NoError(t, err)
	assert.Equal(t, "clip.mp4", clip.Path)
	assert.Equal(t, "narr.wav", audio.Path)
}

func TestPairReportsMissingClip(t *testing.T) {
	artifacts := model.NewSceneArtifacts()
	artifacts.Audio[2] = &model.AudioSegment{SequenceNumber: 2}

	_, _, err := artifacts.Pair(2)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no rendered clip")
}

func TestPairReportsMissingAudio(t *testing.T) {
	artifacts := model.NewSceneArtifacts()
	artifacts.Clips[1] = &model.RenderedClip{SequenceNumber: 1}

	_, _, err := artifacts.Pair(1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no audio segment")
}

func TestDegradedScenesListsPlaceholders(t *testing.T) {
	artifacts := model.NewSceneArtifacts()
	for i := 0; i < 4; i++ {
		artifacts.Clips[i] = &model.RenderedClip{SequenceNumber: i}
		artifacts.Audio[i] = &model.AudioSegment{SequenceNumber: i}
	}
	artifacts.Clips[1].Placeholder = true
	artifacts.Audio[3].Placeholder = true

	assert.Equal(t, []int{1, 3}, artifacts.DegradedScenes(4))
}

func TestDegradedScenesEmptyForCleanRun(t *testing.T) {
	artifacts := model.NewSceneArtifacts()
	for i := 0; i < 2; i++ {
		artifacts.Clips[i] = &model.RenderedClip{SequenceNumber: i}
		artifacts.Audio[i] = &model.AudioSegment{SequenceNumber: i}
	}
	assert.Empty(t, artifacts.DegradedScenes(2))
}

// The typed errors must unwrap to their cause so callers can classify a run
// failure with errors.As and still reach the root error with errors.Is.
func TestPipelineErrorsUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")

	cases := []error{
		&model.FetchError{Source: "http://example.com/paper.pdf", Err: cause},
		&model.SummarizationError{Err: cause},
		&model.RenderError{SequenceNumber: 2, Err: cause},
		&model.SynthesisError{SequenceNumber: 1, Err: cause},
		&model.AssemblyError{Err: cause},
	}
	for _, err := range cases {
		assert.True(t, errors.Is(err, cause), "expected %T to unwrap to its cause", err)
		assert.NotEmpty(t, err.Error())
	}
}

func TestRenderErrorNamesScene(t *testing.T) {
	err := &model.RenderError{SequenceNumber: 3, Err: fmt.Errorf("manim exited 1")}
	assert.Contains(t, err.Error(), "3")

	var renderErr *model.RenderError
	assert.True(t, errors.As(err, &renderErr))
	assert.Equal(t, 3, renderErr.SequenceNumber)
}
