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
// command that renders clips and synthesizes narration for every scene.
//
// Logic Flow:
// Rendering an animation and synthesizing speech are the two slowest stages
// of the pipeline, and every scene's work is independent of every other
// scene's. This command fans all of it out to a worker pool.
//
//  1. Receives the validated `model.ScenePlan` as input.
//  2. **Worker Pool Pattern**: creates a `jobs` channel and a `results`
//     channel, then launches a configurable number of worker goroutines.
//  3. **Distributing Work**: every scene produces two independent jobs, one
//     render and one synthesis, so a pool of W workers keeps W external
//     processes or API calls in flight regardless of the render/synthesis
//     duration ratio.
//  4. **Concurrent Processing**: each worker pulls jobs, runs them under a
//     per-operation timeout, and retries a failed operation once before
//     giving up on it.
//  5. **Degraded substitutes**: when an operation fails both attempts, the
//     worker produces the scene's degraded stand-in instead (a black card
//     for a failed render, silence for failed narration) so one bad scene
//     costs one scene, not the whole video. When the run is configured to
//     abort on scene failure, the failure is recorded on the context and no
//     substitute is made.
//  6. **Aggregating Results**: the results are collected into a
//     `model.SceneArtifacts` keyed by sequence number, which the segment
//     resolver consumes.
package commands

import (
	goctx "context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/anayrshukla/manim-video-generation/internal/core/services"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation kinds for scene jobs.
const (
	sceneJobRender     = "render"
	sceneJobSynthesize = "synthesize"
)

// SceneFanout is a command that produces every scene's clip and narration in parallel.
type SceneFanout struct {
	cor.BaseCommand
	renderer            services.Renderer    // Renders animation directives into clips.
	synthesizer         services.Synthesizer // Turns narration into audio segments.
	numberOfWorkers     int                  // The number of concurrent workers to spawn.
	renderTimeout       time.Duration        // Bound on a single render attempt.
	synthesisTimeout    time.Duration        // Bound on a single synthesis attempt.
	abortOnSceneFailure bool                 // When true, a failed scene fails the run instead of degrading.
}

// NewSceneFanout is the constructor for the SceneFanout command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - renderer: The clip rendering service.
//   - synthesizer: The narration synthesis service.
//   - numberOfWorkers: The size of the worker pool.
//   - renderTimeout: The per-attempt bound on rendering one scene.
//   - synthesisTimeout: The per-attempt bound on synthesizing one narration.
//   - abortOnSceneFailure: Whether scene failures abort the run.
//
// Outputs:
//   - *SceneFanout: A pointer to the newly instantiated command.
func NewSceneFanout(
	name string,
	renderer services.Renderer,
	synthesizer services.Synthesizer,
	numberOfWorkers int,
	renderTimeout time.Duration,
	synthesisTimeout time.Duration,
	abortOnSceneFailure bool) *SceneFanout {
	out := &SceneFanout{
		BaseCommand:         *cor.NewBaseCommand(name),
		renderer:            renderer,
		synthesizer:         synthesizer,
		numberOfWorkers:     numberOfWorkers,
		renderTimeout:       renderTimeout,
		synthesisTimeout:    synthesisTimeout,
		abortOnSceneFailure: abortOnSceneFailure,
	}
	out.OutputParamName = GetArtifactsParamName()
	return out
}

// IsExecutable checks that the scene plan and the run workspace are present.
func (c *SceneFanout) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(c.GetInputParam()) != nil &&
		context.Get(GetWorkspaceParamName()) != nil
}

// Execute fans the plan's scenes out to the worker pool and aggregates artifacts.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *SceneFanout) Execute(context cor.Context) {
	plan := context.Get(c.GetInputParam()).(*model.ScenePlan)
	workspace := context.Get(GetWorkspaceParamName()).(string)

	// Two jobs per scene: one render, one synthesis.
	var wg sync.WaitGroup
	jobs := make(chan *sceneJob, 2*len(plan.Scenes))
	results := make(chan *sceneJobResult, 2*len(plan.Scenes))

	for w := 0; w < c.numberOfWorkers; w++ {
		wg.Add(1)
		go c.sceneWorker(jobs, results, &wg)
	}

	for _, scene := range plan.Scenes {
		jobs <- c.newSceneJob(context.GetContext(), sceneJobRender, scene, workspace)
		jobs <- c.newSceneJob(context.GetContext(), sceneJobSynthesize, scene, workspace)
	}
	close(jobs)

	wg.Wait()
	close(results)

	artifacts := model.NewSceneArtifacts()
	for r := range results {
		if r.err != nil {
			// Degradation already failed or is disabled for this run.
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), r.err)
			continue
		}
		if r.clip != nil {
			artifacts.Clips[r.sequenceNumber] = r.clip
		}
		if r.audio != nil {
			artifacts.Audio[r.sequenceNumber] = r.audio
		}
	}

	if !context.HasErrors() {
		c.GetSuccessCounter().Add(context.GetContext(), 1)
	}

	context.Add(c.GetOutputParam(), artifacts)
	context.Add(cor.CtxOut, artifacts)
}

// sceneJobResult carries one finished operation back from a worker.
type sceneJobResult struct {
	sequenceNumber int
	clip           *model.RenderedClip
	audio          *model.AudioSegment
	err            error
}

// sceneJob encapsulates one render or synthesis operation for one scene.
type sceneJob struct {
	kind      string
	ctx       goctx.Context
	scene     *model.Scene
	workspace string
	span      trace.Span
}

// Close ends the OpenTelemetry span associated with this job.
func (j *sceneJob) Close(status codes.Code, description string) {
	j.span.SetStatus(status, description)
	j.span.End()
}

// newSceneJob starts a span for one per-scene operation and packages its inputs.
func (c *SceneFanout) newSceneJob(ctx goctx.Context, kind string, scene *model.Scene, workspace string) *sceneJob {
	jobCtx, span := c.Tracer.Start(ctx, fmt.Sprintf("%s_%s_scene_%d", c.GetName(), kind, scene.SequenceNumber))
	span.SetAttributes(
		attribute.String("operation", kind),
		attribute.Int("sequence", scene.SequenceNumber),
	)
	return &sceneJob{
		kind:      kind,
		ctx:       jobCtx,
		scene:     scene,
		workspace: workspace,
		span:      span,
	}
}

// sceneWorker is the function each concurrent goroutine runs. It pulls jobs
// until the channel closes, attempting each operation twice before degrading.
func (c *SceneFanout) sceneWorker(jobs <-chan *sceneJob, results chan<- *sceneJobResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		switch j.kind {
		case sceneJobRender:
			results <- c.runRender(j)
		case sceneJobSynthesize:
			results <- c.runSynthesis(j)
		}
	}
}

// runRender attempts a scene render, falling back to a placeholder card.
func (c *SceneFanout) runRender(j *sceneJob) *sceneJobResult {
	clip, err := c.attemptRender(j)
	if err == nil {
		j.Close(codes.Ok, "rendered scene")
		return &sceneJobResult{sequenceNumber: j.scene.SequenceNumber, clip: clip}
	}

	slog.Warn("scene render failed",
		"sequence", j.scene.SequenceNumber,
		"error", err)

	if c.abortOnSceneFailure {
		j.Close(codes.Error, "render failed")
		return &sceneJobResult{sequenceNumber: j.scene.SequenceNumber, err: &model.RenderError{SequenceNumber: j.scene.SequenceNumber, Err: err}}
	}

	placeholder, perr := c.renderer.RenderPlaceholder(j.ctx, j.scene, j.workspace)
	if perr != nil {
		j.Close(codes.Error, "render and placeholder failed")
		return &sceneJobResult{sequenceNumber: j.scene.SequenceNumber, err: &model.RenderError{SequenceNumber: j.scene.SequenceNumber, Err: perr}}
	}
	j.Close(codes.Error, "degraded to placeholder card")
	return &sceneJobResult{sequenceNumber: j.scene.SequenceNumber, clip: placeholder}
}

// attemptRender runs the renderer under the per-attempt timeout, retrying once.
func (c *SceneFanout) attemptRender(j *sceneJob) (clip *model.RenderedClip, err error) {
	for attempt := 0; attempt < 2; attempt++ {
		ctx, cancel := goctx.WithTimeout(j.ctx, c.renderTimeout)
		clip, err = c.renderer.RenderClip(ctx, j.scene, j.workspace)
		cancel()
		if err == nil {
			return clip, nil
		}
	}
	return nil, err
}

// runSynthesis attempts narration synthesis, falling back to silence.
func (c *SceneFanout) runSynthesis(j *sceneJob) *sceneJobResult {
	audio, err := c.attemptSynthesis(j)
	if err == nil {
		j.Close(codes.Ok, "synthesized narration")
		return &sceneJobResult{sequenceNumber: j.scene.SequenceNumber, audio: audio}
	}

	slog.Warn("narration synthesis failed",
		"sequence", j.scene.SequenceNumber,
		"error", err)

	if c.abortOnSceneFailure {
		j.Close(codes.Error, "synthesis failed")
		return &sceneJobResult{sequenceNumber: j.scene.SequenceNumber, err: &model.SynthesisError{SequenceNumber: j.scene.SequenceNumber, Err: err}}
	}

	silence, serr := c.synthesizer.SynthesizeSilence(j.ctx, j.scene, j.workspace)
	if serr != nil {
		j.Close(codes.Error, "synthesis and silence fallback failed")
		return &sceneJobResult{sequenceNumber: j.scene.SequenceNumber, err: &model.SynthesisError{SequenceNumber: j.scene.SequenceNumber, Err: serr}}
	}
	j.Close(codes.Error, "degraded to silent narration")
	return &sceneJobResult{sequenceNumber: j.scene.SequenceNumber, audio: silence}
}

// attemptSynthesis runs the synthesizer under the per-attempt timeout, retrying once.
func (c *SceneFanout) attemptSynthesis(j *sceneJob) (audio *model.AudioSegment, err error) {
	for attempt := 0; attempt < 2; attempt++ {
		ctx, cancel := goctx.WithTimeout(j.ctx, c.synthesisTimeout)
		audio, err = c.synthesizer.Synthesize(ctx, j.scene, j.workspace)
		cancel()
		if err == nil {
			return audio, nil
		}
	}
	return nil, err
}
