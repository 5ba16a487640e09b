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
// implements the Renderer against the manim CLI with ffmpeg post-processing.
//
// Logic Flow:
//  1. The scene's directive code is written to a scratch Python file inside a
//     per-scene directory, prefixed with the standard manim imports so the
//     directive only has to contain the Scene subclass itself.
//  2. The manim CLI renders the named scene class into the scene directory.
//     Manim scatters output under a media tree, so the renderer walks the
//     directory afterwards and picks the newest .mp4 that is not one of
//     manim's partial movie files.
//  3. ffprobe measures the actual duration. When the clip undershoots the
//     target by more than the tolerance it is freeze-frame padded (tpad with
//     the last frame cloned) up to the target. Overshoot is left alone; the
//     assembler resolves durations against the narration with max().
//  4. RenderPlaceholder covers the degrade policy: a black card of the target
//     duration generated from the lavfi color source, used when the directive
//     fails to render and the run is configured to continue.
package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/anayrshukla/manim-video-generation/internal/cloud"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/anayrshukla/manim-video-generation/pkg/executor"
)

// manimPreamble is prepended to every directive before rendering, matching the
// import surface the planner prompt promises the directive can rely on.
const manimPreamble = "from manim import *\nimport numpy as np\n\n"

// sceneClassPattern extracts the Scene subclass name from a directive.
var sceneClassPattern = regexp.MustCompile(`(?m)^class\s+(\w+)\s*\(\s*\w*Scene\w*\s*\)`)

// ManimRenderer is the production Renderer. It shells out to manim and ffmpeg
// through the executor so tests can substitute a fake.
type ManimRenderer struct {
	exec      executor.Executor // Runs manim/ffmpeg/ffprobe.
	prober    Prober            // Measures rendered clip durations.
	tools     cloud.Tools       // Toolchain paths and output geometry.
	tolerance float64           // Allowed undershoot before the clip is padded.
}

// NewManimRenderer is the constructor for ManimRenderer.
func NewManimRenderer(exec executor.Executor, prober Prober, tools cloud.Tools, toleranceSeconds float64) *ManimRenderer {
	return &ManimRenderer{exec: exec, prober: prober, tools: tools, tolerance: toleranceSeconds}
}

// RenderClip renders one scene's directive into the workspace.
func (r *ManimRenderer) RenderClip(ctx context.Context, scene *model.Scene, workspace string) (*model.RenderedClip, error) {
	sceneDir := filepath.Join(workspace, fmt.Sprintf("scene_%d", scene.SequenceNumber))
	if err := os.MkdirAll(sceneDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scene directory: %w", err)
	}

	className, err := sceneClassName(scene.Directive.ManimCode)
	if err != nil {
		return nil, err
	}

	scriptPath := filepath.Join(sceneDir, "scene.py")
	source := manimPreamble + scene.Directive.ManimCode + "\n"
	if err := os.WriteFile(scriptPath, []byte(source), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write scene script: %w", err)
	}

	_, err = r.exec.ExecuteInDir(ctx, sceneDir, r.tools.ManimPath,
		"render",
		"-qm",
		"-v", "WARNING",
		"--media_dir", sceneDir,
		"--resolution", fmt.Sprintf("%d,%d", r.tools.VideoWidth, r.tools.VideoHeight),
		"--frame_rate", fmt.Sprintf("%d", r.tools.FrameRate),
		scriptPath,
		className,
	)
	if err != nil {
		return nil, fmt.Errorf("manim render failed: %w", err)
	}

	rendered, err := newestRenderedFile(sceneDir)
	if err != nil {
		return nil, err
	}

	duration, err := r.prober.Duration(ctx, rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to probe rendered clip: %w", err)
	}

	// Deterministic conform policy: pad short clips up to the target with a
	// clone of the last frame, never trim long ones.
	if scene.TargetDurationSeconds-duration > r.tolerance {
		padded := filepath.Join(sceneDir, fmt.Sprintf("clip_%d_padded.mp4", scene.SequenceNumber))
		_, err = r.exec.Execute(ctx, r.tools.FFMpegPath,
			"-y", "-hide_banner",
			"-i", rendered,
			"-vf", fmt.Sprintf("tpad=stop_mode=clone:stop_duration=%.3f", scene.TargetDurationSeconds-duration),
			"-an",
			"-c:v", "libx264", "-pix_fmt", "yuv420p",
			padded,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to pad clip to target duration: %w", err)
		}
		rendered = padded
		duration = scene.TargetDurationSeconds
	}

	return &model.RenderedClip{
		SequenceNumber:  scene.SequenceNumber,
		Path:            rendered,
		DurationSeconds: duration,
	}, nil
}

// RenderPlaceholder produces the degraded black-card substitute for a scene.
func (r *ManimRenderer) RenderPlaceholder(ctx context.Context, scene *model.Scene, workspace string) (*model.RenderedClip, error) {
	out := filepath.Join(workspace, fmt.Sprintf("placeholder_%d.mp4", scene.SequenceNumber))
	_, err := r.exec.Execute(ctx, r.tools.FFMpegPath,
		"-y", "-hide_banner",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:s=%dx%d:r=%d", r.tools.VideoWidth, r.tools.VideoHeight, r.tools.FrameRate),
		"-t", fmt.Sprintf("%.3f", scene.TargetDurationSeconds),
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		out,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render placeholder clip: %w", err)
	}
	return &model.RenderedClip{
		SequenceNumber:  scene.SequenceNumber,
		Path:            out,
		DurationSeconds: scene.TargetDurationSeconds,
		Placeholder:     true,
	}, nil
}

// sceneClassName finds the Scene subclass declared in a directive. A directive
// without one can never render and is rejected up front.
func sceneClassName(code string) (string, error) {
	m := sceneClassPattern.FindStringSubmatch(code)
	if m == nil {
		return "", fmt.Errorf("directive declares no manim Scene subclass")
	}
	return m[1], nil
}

// newestRenderedFile walks a scene directory for the final render. Manim
// writes intermediate chunks under "partial_movie_files"; those never count.
func newestRenderedFile(dir string) (string, error) {
	var newest string
	var newestMod int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".mp4") || strings.Contains(path, "partial_movie_files") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = path
			newestMod = mod
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan render output: %w", err)
	}
	if newest == "" {
		return "", fmt.Errorf("manim produced no output file")
	}
	return newest, nil
}
