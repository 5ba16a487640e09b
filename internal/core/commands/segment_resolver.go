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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that reconciles each scene's clip and narration into one segment.
//
// Logic Flow:
// A scene's rendered clip and its narration audio almost never come out the
// same length. This command resolves each pair to a single duration and muxes
// them into one uniformly encoded segment, ready for lossless concatenation.
//
//  1. Receives the `model.SceneArtifacts` from the fan-out.
//  2. Walks the plan's scenes in sequence order. A scene missing either half
//     of its pair is an assembly failure: the fan-out guarantees a (possibly
//     degraded) artifact per operation, so a hole means the run is broken.
//  3. Resolves the segment duration to max(clip, narration). Narration is
//     never cut short mid-sentence; the shorter side is padded instead. A
//     short clip gets freeze-frame padding (tpad clones the last frame) and
//     short audio gets silence (apad).
//  4. Re-encodes each pair to H.264/AAC with identical stream parameters, so
//     the final concatenation can use ffmpeg's concat demuxer in stream-copy
//     mode without re-encoding the whole video.
//  5. Emits the ordered `[]*model.ResolvedSegment` for the concat command.
package commands

import (
	"fmt"
	"path/filepath"

	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/anayrshukla/manim-video-generation/pkg/executor"
)

// Pad amounts below this are noise from duration probing, not real drift.
const padEpsilonSeconds = 0.01

// SegmentResolver is a command that muxes each scene's clip and narration into
// a single duration-reconciled segment.
type SegmentResolver struct {
	cor.BaseCommand
	exec       executor.Executor // Runs the ffmpeg processes.
	ffmpegPath string            // Path to the ffmpeg executable.
}

// NewSegmentResolver is the constructor for the SegmentResolver command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - exec: The process executor used to invoke ffmpeg.
//   - ffmpegPath: The ffmpeg executable path.
//
// Outputs:
//   - *SegmentResolver: A pointer to the newly instantiated command.
func NewSegmentResolver(name string, exec executor.Executor, ffmpegPath string) *SegmentResolver {
	return &SegmentResolver{
		BaseCommand: *cor.NewBaseCommand(name),
		exec:        exec,
		ffmpegPath:  ffmpegPath,
	}
}

// IsExecutable checks that the artifacts, the plan, and the workspace are present.
func (c *SegmentResolver) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(c.GetInputParam()) != nil &&
		context.Get(GetPlanParamName()) != nil &&
		context.Get(GetWorkspaceParamName()) != nil
}

// Execute resolves every scene pair into an encoded segment.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *SegmentResolver) Execute(context cor.Context) {
	artifacts := context.Get(c.GetInputParam()).(*model.SceneArtifacts)
	plan := context.Get(GetPlanParamName()).(*model.ScenePlan)
	workspace := context.Get(GetWorkspaceParamName()).(string)

	segments := make([]*model.ResolvedSegment, 0, len(plan.Scenes))
	for _, scene := range plan.Scenes {
		clip, audio, err := artifacts.Pair(scene.SequenceNumber)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), &model.AssemblyError{Err: err})
			return
		}

		segment, err := c.resolvePair(context, scene.SequenceNumber, clip, audio, workspace)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), &model.AssemblyError{Err: err})
			return
		}
		segments = append(segments, segment)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), segments)
}

// resolvePair muxes one clip/narration pair at their max duration.
func (c *SegmentResolver) resolvePair(
	context cor.Context,
	sequenceNumber int,
	clip *model.RenderedClip,
	audio *model.AudioSegment,
	workspace string) (*model.ResolvedSegment, error) {
	resolved := clip.DurationSeconds
	if audio.DurationSeconds > resolved {
		resolved = audio.DurationSeconds
	}

	out := filepath.Join(workspace, fmt.Sprintf("segment_%03d.mp4", sequenceNumber))

	args := []string{"-y", "-i", clip.Path, "-i", audio.Path}
	if pad := resolved - clip.DurationSeconds; pad > padEpsilonSeconds {
		// Freeze the last frame rather than cutting to black.
		args = append(args, "-vf", fmt.Sprintf("tpad=stop_mode=clone:stop_duration=%.3f", pad))
	}
	if pad := resolved - audio.DurationSeconds; pad > padEpsilonSeconds {
		args = append(args, "-af", fmt.Sprintf("apad=pad_dur=%.3f", pad))
	}
	args = append(args,
		"-t", fmt.Sprintf("%.3f", resolved),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		out,
	)

	if _, err := c.exec.Execute(context.GetContext(), c.ffmpegPath, args...); err != nil {
		return nil, fmt.Errorf("failed to mux segment %d: %w", sequenceNumber, err)
	}

	return &model.ResolvedSegment{
		SequenceNumber:  sequenceNumber,
		Path:            out,
		DurationSeconds: resolved,
	}, nil
}
