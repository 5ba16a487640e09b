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

// Package commands_test contains unit tests for the pipeline's commands.
// This file provides the deterministic fakes the tests run the commands
// against: an in-memory renderer, synthesizer, and process executor.
package commands_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
)

// newCommandContext builds a chain context with a workspace, the way the
// setup command would have left it.
func newCommandContext(workspace string) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add("__workspace__", workspace)
	ctx.Add("__run_id__", "test-run")
	return ctx
}

// fakeRenderer writes an empty clip file per scene. Scenes listed in failSeqs
// fail every render attempt.
type fakeRenderer struct {
	mu       sync.Mutex
	failSeqs map[int]bool
	calls    int
	duration float64 // Reported clip duration; scene target when zero.
}

func (r *fakeRenderer) RenderClip(_ context.Context, scene *model.Scene, workspace string) (*model.RenderedClip, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.failSeqs[scene.SequenceNumber] {
		return nil, fmt.Errorf("render exploded for scene %d", scene.SequenceNumber)
	}
	path := filepath.Join(workspace, fmt.Sprintf("clip_%d.mp4", scene.SequenceNumber))
	if err := os.WriteFile(path, []byte("clip"), 0o644); err != nil {
		return nil, err
	}
	duration := r.duration
	if duration == 0 {
		duration = scene.TargetDurationSeconds
	}
	return &model.RenderedClip{SequenceNumber: scene.SequenceNumber, Path: path, DurationSeconds: duration}, nil
}

func (r *fakeRenderer) RenderPlaceholder(_ context.Context, scene *model.Scene, workspace string) (*model.RenderedClip, error) {
	path := filepath.Join(workspace, fmt.Sprintf("placeholder_%d.mp4", scene.SequenceNumber))
	if err := os.WriteFile(path, []byte("black"), 0o644); err != nil {
		return nil, err
	}
	return &model.RenderedClip{
		SequenceNumber:  scene.SequenceNumber,
		Path:            path,
		DurationSeconds: scene.TargetDurationSeconds,
		Placeholder:     true,
	}, nil
}

// fakeSynthesizer mirrors fakeRenderer for the audio side.
type fakeSynthesizer struct {
	mu       sync.Mutex
	failSeqs map[int]bool
	calls    int
	duration float64
}

func (s *fakeSynthesizer) Synthesize(_ context.Context, scene *model.Scene, workspace string) (*model.AudioSegment, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.failSeqs[scene.SequenceNumber] {
		return nil, fmt.Errorf("synthesis exploded for scene %d", scene.SequenceNumber)
	}
	path := filepath.Join(workspace, fmt.Sprintf("narration_%d.wav", scene.SequenceNumber))
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return nil, err
	}
	duration := s.duration
	if duration == 0 {
		duration = scene.TargetDurationSeconds
	}
	return &model.AudioSegment{SequenceNumber: scene.SequenceNumber, Path: path, DurationSeconds: duration}, nil
}

func (s *fakeSynthesizer) SynthesizeSilence(_ context.Context, scene *model.Scene, workspace string) (*model.AudioSegment, error) {
	path := filepath.Join(workspace, fmt.Sprintf("silence_%d.wav", scene.SequenceNumber))
	if err := os.WriteFile(path, []byte("silence"), 0o644); err != nil {
		return nil, err
	}
	return &model.AudioSegment{
		SequenceNumber:  scene.SequenceNumber,
		Path:            path,
		DurationSeconds: scene.TargetDurationSeconds,
		Placeholder:     true,
	}, nil
}

// fakeExecutor records every invocation. For ffmpeg-style calls whose final
// argument is an output path, it creates the file so downstream moves and
// probes behave like the real toolchain succeeded.
type fakeExecutor struct {
	mu    sync.Mutex
	calls [][]string
	fail  bool
}

func (e *fakeExecutor) Execute(_ context.Context, name string, args ...string) (string, error) {
	e.mu.Lock()
	e.calls = append(e.calls, append([]string{name}, args...))
	e.mu.Unlock()
	if e.fail {
		return "", fmt.Errorf("command '%s' failed", name)
	}
	if len(args) > 0 {
		if out := args[len(args)-1]; strings.HasSuffix(out, ".mp4") {
			if err := os.WriteFile(out, []byte("video"), 0o644); err != nil {
				return "", err
			}
		}
	}
	return "", nil
}

func (e *fakeExecutor) ExecuteInDir(ctx context.Context, _ string, name string, args ...string) (string, error) {
	return e.Execute(ctx, name, args...)
}

// lastCall returns the most recent recorded invocation, or nil.
func (e *fakeExecutor) lastCall() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return nil
	}
	return e.calls[len(e.calls)-1]
}

// newTestPlan builds a validated, normalized plan with count scenes summing
// to target seconds.
func newTestPlan(count int, target float64) *model.ScenePlan {
	plan := &model.ScenePlan{RunID: "test-run", TargetDurationSeconds: target}
	for i := 0; i < count; i++ {
		plan.Scenes = append(plan.Scenes, &model.Scene{
			SequenceNumber:        i,
			Narration:             fmt.Sprintf("narration %d", i),
			Directive:             model.Directive{Title: fmt.Sprintf("scene %d", i), ManimCode: "class S(Scene): pass"},
			TargetDurationSeconds: target / float64(count),
		})
	}
	return plan
}
