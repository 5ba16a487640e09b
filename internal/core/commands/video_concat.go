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
// final command of the pipeline: concatenating the resolved segments into
// the summary video.
//
// Logic Flow:
//  1. Receives the ordered `[]*model.ResolvedSegment` from the context.
//  2. Writes an ffmpeg concat-demuxer list file into the workspace.
//  3. Concatenates in stream-copy mode: the segment resolver already encoded
//     every segment with identical stream parameters, so no re-encoding
//     happens here. `+faststart` moves the moov atom to the front for
//     immediate playback.
//  4. Encodes into the workspace first and only then moves the finished file
//     to the configured output path. A failed run never leaves a partial
//     video at the output path.
//  5. Emits a `model.FinalVideo` report: path, duration, scene count, and
//     which scenes shipped degraded artifacts.
package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/anayrshukla/manim-video-generation/pkg/executor"
)

// VideoConcat is a command that joins the resolved segments into the final video.
type VideoConcat struct {
	cor.BaseCommand
	exec       executor.Executor // Runs the ffmpeg process.
	ffmpegPath string            // Path to the ffmpeg executable.
	outputPath string            // Where the finished video is delivered.
}

// NewVideoConcat is the constructor for the VideoConcat command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - exec: The process executor used to invoke ffmpeg.
//   - ffmpegPath: The ffmpeg executable path.
//   - outputPath: The delivery path for the finished video.
//
// Outputs:
//   - *VideoConcat: A pointer to the newly instantiated command.
func NewVideoConcat(name string, exec executor.Executor, ffmpegPath string, outputPath string) *VideoConcat {
	return &VideoConcat{
		BaseCommand: *cor.NewBaseCommand(name),
		exec:        exec,
		ffmpegPath:  ffmpegPath,
		outputPath:  outputPath,
	}
}

// IsExecutable checks that the segments, the plan, and the workspace are present.
func (c *VideoConcat) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(c.GetInputParam()) != nil &&
		context.Get(GetPlanParamName()) != nil &&
		context.Get(GetWorkspaceParamName()) != nil
}

// Execute concatenates the segments and delivers the final video.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *VideoConcat) Execute(context cor.Context) {
	segments := context.Get(c.GetInputParam()).([]*model.ResolvedSegment)
	plan := context.Get(GetPlanParamName()).(*model.ScenePlan)
	workspace := context.Get(GetWorkspaceParamName()).(string)

	if len(segments) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.AssemblyError{Err: fmt.Errorf("no segments to concatenate")})
		return
	}

	listPath := filepath.Join(workspace, "concat.txt")
	if err := writeConcatList(listPath, segments); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.AssemblyError{Err: err})
		return
	}

	staging := filepath.Join(workspace, "summary.mp4")
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		staging,
	}
	if _, err := c.exec.Execute(context.GetContext(), c.ffmpegPath, args...); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.AssemblyError{Err: fmt.Errorf("concatenation failed: %w", err)})
		return
	}

	if err := moveFile(staging, c.outputPath); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.AssemblyError{Err: fmt.Errorf("failed to deliver video to %s: %w", c.outputPath, err)})
		return
	}

	var total float64
	for _, s := range segments {
		total += s.DurationSeconds
	}

	var degraded []int
	if artifacts, ok := context.Get(GetArtifactsParamName()).(*model.SceneArtifacts); ok {
		degraded = artifacts.DegradedScenes(len(plan.Scenes))
	}

	video := &model.FinalVideo{
		Path:            c.outputPath,
		DurationSeconds: total,
		SceneCount:      len(plan.Scenes),
		Degraded:        degraded,
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetFinalVideoParamName(), video)
	context.Add(c.GetOutputParam(), video)
}

// writeConcatList writes the ffmpeg concat-demuxer list for the segments, in
// the order they were resolved.
func writeConcatList(path string, segments []*model.ResolvedSegment) error {
	var builder strings.Builder
	for _, s := range segments {
		// The demuxer's quoting rule: single quotes close, escape, reopen.
		escaped := strings.ReplaceAll(s.Path, "'", `'\''`)
		fmt.Fprintf(&builder, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	return nil
}

// moveFile renames src to dest, falling back to copy-and-remove when the two
// paths sit on different filesystems.
func moveFile(src string, dest string) error {
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
