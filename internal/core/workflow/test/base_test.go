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

// Package workflow_test contains integration tests for the summary-video
// workflow. This file, `base_test.go`, provides the foundational setup logic
// for all tests within this package using the special `TestMain` function,
// along with the deterministic service fakes and the in-code test
// configuration the workflow runs against. No network or local toolchain is
// touched: the planner, renderer, synthesizer, and process executor are all
// replaced with fakes.
package workflow_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/anayrshukla/manim-video-generation/internal/cloud"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/anayrshukla/manim-video-generation/internal/telemetry"
	test "github.com/anayrshukla/manim-video-generation/internal/testutil"
)

// The root context for all tests in the suite.
var ctx context.Context

// TestMain is the entry point for the test suite. It initializes the shared
// context and structured logging before any test runs.
//
// Inputs:
//   - m: A pointer to testing.M, which provides access to the test suite and
//     allows running the tests via m.Run().
func TestMain(m *testing.M) {
	var cancel context.CancelFunc
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	telemetry.SetupLogging()

	os.Exit(m.Run())
}

// newTestConfig builds the pipeline configuration in code. The TOML files are
// exercised by the cloud package's own tests; here the interesting surface is
// the workflow, so the configuration stays explicit and local to the test.
func newTestConfig(t *testing.T, outputPath string) *cloud.Config {
	config := cloud.NewConfig()
	config.Application.Name = "manim-video-generation-test"
	config.Application.WorkspaceDir = t.TempDir()
	config.Application.OutputPath = outputPath
	config.Application.ThreadPoolSize = 2
	config.Pipeline.SceneCount = 4
	config.Pipeline.TargetDurationSeconds = 60
	config.Pipeline.DurationToleranceSeconds = 0.5
	config.Pipeline.TruncationLimit = 60000
	config.Pipeline.FetchTimeoutSeconds = 5
	config.Pipeline.RenderTimeoutSeconds = 5
	config.Pipeline.SynthesisTimeoutSeconds = 5
	config.Pipeline.MaxNarrationLength = 900
	config.Tools.FFMpegPath = "ffmpeg"
	config.Tools.FFProbePath = "ffprobe"
	config.Tools.ManimPath = "manim"
	return config
}

// writeTestPDF writes a structurally valid single-page PDF for the extractor.
func writeTestPDF(t *testing.T, path string, text string) {
	test.WriteTestPDF(t, path, text)
}

// fakePlanner returns a canned planner response, or a canned error.
type fakePlanner struct {
	response string
	err      error
}

func (p *fakePlanner) Summarize(_ context.Context, _ string, _ int, _ float64) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

// fakeRenderer writes an empty clip file per scene. Scenes listed in failSeqs
// fail every render attempt and fall through to the placeholder.
type fakeRenderer struct {
	mu       sync.Mutex
	failSeqs map[int]bool
}

func (r *fakeRenderer) RenderClip(_ context.Context, scene *model.Scene, workspace string) (*model.RenderedClip, error) {
	r.mu.Lock()
	failed := r.failSeqs[scene.SequenceNumber]
	r.mu.Unlock()
	if failed {
		return nil, fmt.Errorf("render exploded for scene %d", scene.SequenceNumber)
	}
	path := filepath.Join(workspace, fmt.Sprintf("clip_%d.mp4", scene.SequenceNumber))
	if err := os.WriteFile(path, []byte("clip"), 0o644); err != nil {
		return nil, err
	}
	return &model.RenderedClip{
		SequenceNumber:  scene.SequenceNumber,
		Path:            path,
		DurationSeconds: scene.TargetDurationSeconds,
	}, nil
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

// fakeSynthesizer mirrors fakeRenderer for the narration side.
type fakeSynthesizer struct{}

func (s *fakeSynthesizer) Synthesize(_ context.Context, scene *model.Scene, workspace string) (*model.AudioSegment, error) {
	path := filepath.Join(workspace, fmt.Sprintf("narration_%d.wav", scene.SequenceNumber))
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return nil, err
	}
	return &model.AudioSegment{
		SequenceNumber:  scene.SequenceNumber,
		Path:            path,
		DurationSeconds: scene.TargetDurationSeconds,
	}, nil
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

// fakeExecutor pretends every toolchain invocation succeeded, creating any
// ffmpeg-style output file named by the final argument.
type fakeExecutor struct{}

func (e *fakeExecutor) Execute(_ context.Context, _ string, args ...string) (string, error) {
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
