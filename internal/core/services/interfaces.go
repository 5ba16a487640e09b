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

// Package services holds the capability boundaries of the pipeline. Each
// external engine the run depends on (the summarization model, the animation
// renderer, the speech synthesizer, the media prober) sits behind one small
// interface so the orchestration commands can be exercised against
// deterministic fakes. The concrete implementations in this package talk to
// Gemini and shell out to manim/ffmpeg/ffprobe.
package services

import (
	"context"

	"github.com/anayrshukla/manim-video-generation/internal/core/model"
)

// Summarizer produces the structured scene-plan response for a document. The
// response is the service's raw JSON payload; parsing and validation happen in
// the pipeline so a malformed response is diagnosed in one place.
type Summarizer interface {
	// Summarize submits the extracted document text and returns the model's
	// scene-plan JSON. The call is non-deterministic; identical input may
	// yield different plans across runs.
	Summarize(ctx context.Context, documentText string, sceneCount int, targetDurationSeconds float64) (string, error)
}

// Renderer turns one scene's animation directive into a silent video clip.
type Renderer interface {
	// RenderClip renders the scene's directive into workspace and returns the
	// measured clip. Clips shorter than the target beyond the configured
	// tolerance are freeze-frame padded up to the target; long clips are left
	// alone for the assembler's max-duration resolution.
	RenderClip(ctx context.Context, scene *model.Scene, workspace string) (*model.RenderedClip, error)

	// RenderPlaceholder produces the degraded substitute for a scene whose
	// directive failed to render: a black card of the target duration.
	RenderPlaceholder(ctx context.Context, scene *model.Scene, workspace string) (*model.RenderedClip, error)
}

// Synthesizer turns one scene's narration into an audio segment.
type Synthesizer interface {
	// Synthesize produces narration audio for the scene in workspace.
	// Narration exceeding the backend's length constraint is truncated before
	// the call rather than surfaced as an opaque backend error.
	Synthesize(ctx context.Context, scene *model.Scene, workspace string) (*model.AudioSegment, error)

	// SynthesizeSilence produces the degraded substitute: silence of the
	// scene's target duration.
	SynthesizeSilence(ctx context.Context, scene *model.Scene, workspace string) (*model.AudioSegment, error)
}

// Prober measures the duration of a media file.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}
