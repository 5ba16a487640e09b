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
// optional command that appends a closing "Thank You" card to the video.
//
// Logic Flow:
//  1. Receives the ordered resolved segments from the segment resolver.
//  2. Renders a short closing card with the same animation toolchain the
//     scenes use, paired with silent audio so the concatenated streams stay
//     uniform.
//  3. Appends the card as one more segment after the final scene.
//
// The outro is decorative. If it fails to render, the command logs the
// failure and passes the segments through unchanged rather than failing a
// run whose actual content is complete.
package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/anayrshukla/manim-video-generation/internal/core/services"
	"github.com/anayrshukla/manim-video-generation/pkg/executor"
)

// outroDirective is the closing card's animation source. It deliberately uses
// nothing beyond Text and two basic animations, so it renders on any manim
// install that can render the scenes themselves.
const outroDirective = `class ThankYouOutro(Scene):
    def construct(self):
        message = Text("Thank You for Watching")
        self.play(Write(message))
        self.wait(1)
        self.play(FadeOut(message))
`

// OutroAppender is a command that appends the closing card segment.
type OutroAppender struct {
	cor.BaseCommand
	renderer        services.Renderer // Renders the card with the scene toolchain.
	exec            executor.Executor // Runs ffmpeg to pair the card with silence.
	ffmpegPath      string            // Path to the ffmpeg executable.
	durationSeconds float64           // Length of the card.
}

// NewOutroAppender is the constructor for the OutroAppender command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - renderer: The clip rendering service.
//   - exec: The process executor used to invoke ffmpeg.
//   - ffmpegPath: The ffmpeg executable path.
//   - durationSeconds: The target length of the outro card.
//
// Outputs:
//   - *OutroAppender: A pointer to the newly instantiated command.
func NewOutroAppender(
	name string,
	renderer services.Renderer,
	exec executor.Executor,
	ffmpegPath string,
	durationSeconds float64) *OutroAppender {
	return &OutroAppender{
		BaseCommand:     *cor.NewBaseCommand(name),
		renderer:        renderer,
		exec:            exec,
		ffmpegPath:      ffmpegPath,
		durationSeconds: durationSeconds,
	}
}

// IsExecutable checks that the resolved segments and the workspace are present.
func (c *OutroAppender) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(c.GetInputParam()) != nil &&
		context.Get(GetWorkspaceParamName()) != nil
}

// Execute appends the outro segment, or passes the input through on failure.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *OutroAppender) Execute(context cor.Context) {
	segments := context.Get(c.GetInputParam()).([]*model.ResolvedSegment)
	workspace := context.Get(GetWorkspaceParamName()).(string)

	// Sequence numbers are 0-based, so the next free slot is len(segments).
	outro, err := c.renderOutro(context, len(segments), workspace)
	if err != nil {
		slog.Warn("outro card failed; finishing without it", "error", err)
		context.Add(c.GetOutputParam(), segments)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), append(segments, outro))
}

// renderOutro renders the card and muxes it with silent audio.
func (c *OutroAppender) renderOutro(context cor.Context, sequenceNumber int, workspace string) (*model.ResolvedSegment, error) {
	scene := &model.Scene{
		SequenceNumber:        sequenceNumber,
		Directive:             model.Directive{Title: "Thank You", ManimCode: outroDirective},
		TargetDurationSeconds: c.durationSeconds,
	}

	clip, err := c.renderer.RenderClip(context.GetContext(), scene, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to render outro card: %w", err)
	}

	// Pair the card with generated silence so every concatenated segment
	// carries the same stream layout.
	out := filepath.Join(workspace, fmt.Sprintf("segment_%03d.mp4", sequenceNumber))
	args := []string{
		"-y",
		"-i", clip.Path,
		"-f", "lavfi", "-i", "anullsrc=channel_layout=mono:sample_rate=24000",
		"-t", fmt.Sprintf("%.3f", clip.DurationSeconds),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		out,
	}
	if _, err := c.exec.Execute(context.GetContext(), c.ffmpegPath, args...); err != nil {
		return nil, fmt.Errorf("failed to mux outro card: %w", err)
	}

	return &model.ResolvedSegment{
		SequenceNumber:  sequenceNumber,
		Path:            out,
		DurationSeconds: clip.DurationSeconds,
	}, nil
}
