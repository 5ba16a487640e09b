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
// This file tests the assembly stages: per-scene duration reconciliation and
// the final concatenation.
package commands_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anayrshukla/manim-video-generation/internal/core/commands"
	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// fillArtifacts populates a complete artifact table for the plan, with the
// given per-scene clip and audio durations.
func fillArtifacts(plan *model.ScenePlan, clipDur []float64, audioDur []float64) *model.SceneArtifacts {
	artifacts := model.NewSceneArtifacts()
	for i := range plan.Scenes {
		artifacts.Clips[i] = &model.RenderedClip{SequenceNumber: i, Path: "clip.mp4", DurationSeconds: clipDur[i]}
		artifacts.Audio[i] = &model.AudioSegment{SequenceNumber: i, Path: "narr.wav", DurationSeconds: audioDur[i]}
	}
	return artifacts
}

func TestSegmentResolverUsesMaxDuration(t *testing.T) {
	exec := &fakeExecutor{}
	cmd := commands.NewSegmentResolver("resolve-segments", exec, "ffmpeg")

	plan := newTestPlan(2, 30)
	artifacts := fillArtifacts(plan, []float64{14.0, 16.5}, []float64{15.5, 15.0})

	ctx := newCommandContext(t.TempDir())
	ctx.Add(commands.GetPlanParamName(), plan)
	ctx.Add(cor.CtxIn, artifacts)
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())

	segments := ctx.Get(cor.CtxOut).([]*model.ResolvedSegment)
	assert.Equal(t, 2, len(segments))
	// Segment duration is max(clip, audio): narration is never truncated.
	assert.InDelta(t, 15.5, segments[0].DurationSeconds, 1e-9)
	assert.InDelta(t, 16.5, segments[1].DurationSeconds, 1e-9)
	assert.Equal(t, 0, segments[0].SequenceNumber)
	assert.Equal(t, 1, segments[1].SequenceNumber)
}

func TestSegmentResolverPadsShorterSide(t *testing.T) {
	exec := &fakeExecutor{}
	cmd := commands.NewSegmentResolver("resolve-segments", exec, "ffmpeg")

	plan := newTestPlan(1, 15)
	artifacts := fillArtifacts(plan, []float64{12.0}, []float64{15.0})

	ctx := newCommandContext(t.TempDir())
	ctx.Add(commands.GetPlanParamName(), plan)
	ctx.Add(cor.CtxIn, artifacts)
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())

	call := strings.Join(exec.lastCall(), " ")
	// The short clip gets freeze-frame padding; the audio is full length and
	// needs none.
	assert.Contains(t, call, "tpad=stop_mode=clone:stop_duration=3.000")
	assert.NotContains(t, call, "apad")
}

func TestSegmentResolverMissingPairIsAssemblyError(t *testing.T) {
	exec := &fakeExecutor{}
	cmd := commands.NewSegmentResolver("resolve-segments", exec, "ffmpeg")

	plan := newTestPlan(2, 30)
	artifacts := fillArtifacts(plan, []float64{15, 15}, []float64{15, 15})
	delete(artifacts.Audio, 1)

	ctx := newCommandContext(t.TempDir())
	ctx.Add(commands.GetPlanParamName(), plan)
	ctx.Add(cor.CtxIn, artifacts)
	cmd.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	var assemblyErr *model.AssemblyError
	assert.True(t, errors.As(ctx.GetErrors()["resolve-segments"], &assemblyErr))
}

func TestVideoConcatDeliversFinalVideo(t *testing.T) {
	workspace := t.TempDir()
	output := filepath.Join(t.TempDir(), "out", "summary.mp4")
	exec := &fakeExecutor{}
	cmd := commands.NewVideoConcat("concat-and-deliver", exec, "ffmpeg", output)

	plan := newTestPlan(2, 30)
	segments := []*model.ResolvedSegment{
		{SequenceNumber: 0, Path: filepath.Join(workspace, "segment_000.mp4"), DurationSeconds: 15.5},
		{SequenceNumber: 1, Path: filepath.Join(workspace, "segment_001.mp4"), DurationSeconds: 16.5},
	}

	ctx := newCommandContext(workspace)
	ctx.Add(commands.GetPlanParamName(), plan)
	ctx.Add(cor.CtxIn, segments)
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())

	video := ctx.Get(cor.CtxOut).(*model.FinalVideo)
	assert.Equal(t, output, video.Path)
	// Final duration is exactly the sum of the resolved segments.
	assert.InDelta(t, 32.0, video.DurationSeconds, 1e-9)
	assert.Equal(t, 2, video.SceneCount)

	// The report is also published under the stable key: the chain recycles
	// CtxOut into CtxIn after every command, so the workflow reads it here.
	assert.Equal(t, video, ctx.Get(commands.GetFinalVideoParamName()))

	// The staged encode was moved to the output path.
	_, err := os.Stat(output)
	assert.NoError(t, err)

	// The concat list names the segments in playback order.
	list, err := os.ReadFile(filepath.Join(workspace, "concat.txt"))
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(list)), "\n")
	assert.Equal(t, 2, len(lines))
	assert.Contains(t, lines[0], "segment_000.mp4")
	assert.Contains(t, lines[1], "segment_001.mp4")
}

// A failed encode must leave nothing at the output path.
func TestVideoConcatFailureLeavesNoPartialOutput(t *testing.T) {
	workspace := t.TempDir()
	output := filepath.Join(t.TempDir(), "summary.mp4")
	exec := &fakeExecutor{fail: true}
	cmd := commands.NewVideoConcat("concat-and-deliver", exec, "ffmpeg", output)

	plan := newTestPlan(1, 15)
	segments := []*model.ResolvedSegment{
		{SequenceNumber: 0, Path: filepath.Join(workspace, "segment_000.mp4"), DurationSeconds: 15},
	}

	ctx := newCommandContext(workspace)
	ctx.Add(commands.GetPlanParamName(), plan)
	ctx.Add(cor.CtxIn, segments)
	cmd.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}

func TestVideoConcatRejectsEmptySegmentList(t *testing.T) {
	exec := &fakeExecutor{}
	cmd := commands.NewVideoConcat("concat-and-deliver", exec, "ffmpeg", filepath.Join(t.TempDir(), "summary.mp4"))

	ctx := newCommandContext(t.TempDir())
	ctx.Add(commands.GetPlanParamName(), newTestPlan(2, 30))
	ctx.Add(cor.CtxIn, []*model.ResolvedSegment{})
	cmd.Execute(ctx)

	assert.True(t, ctx.HasErrors())
}
