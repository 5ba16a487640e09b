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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements
// the summary-video workflow: one research paper in, one narrated one-minute
// animated video out.
package workflow

import (
	goctx "context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/anayrshukla/manim-video-generation/internal/cloud"
	"github.com/anayrshukla/manim-video-generation/internal/core/commands"
	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/anayrshukla/manim-video-generation/internal/core/services"
	"github.com/anayrshukla/manim-video-generation/pkg/executor"
)

// SummaryVideoWorkflow orchestrates the entire document-to-video pipeline.
// It's structured as a Chain of Responsibility (cor.Chain) that executes a
// sequence of commands: workspace setup, document fetch, text extraction,
// scene planning, parallel clip rendering and narration synthesis, per-scene
// duration reconciliation, and final assembly.
type SummaryVideoWorkflow struct {
	cor.BaseCommand
	config          *cloud.Config
	summarizer      services.Summarizer
	renderer        services.Renderer
	synthesizer     services.Synthesizer
	exec            executor.Executor
	numberOfWorkers int
	chain           cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the entire summary-video workflow by invoking the underlying chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (w *SummaryVideoWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run is the convenience entry point for one complete pipeline execution. It
// wires up a fresh chain context for the given document source, executes the
// workflow, and translates the chain's collected errors into a single error
// value. Scratch files are removed when Run returns, unless the operator
// configured the workspace to be kept.
//
// Inputs:
//   - ctx: The Go context bounding the whole run.
//   - source: The document source, either an http(s) URL or a local path.
//
// Outputs:
//   - *model.FinalVideo: The delivery report, nil when the run failed.
//   - error: The aggregated failure, nil on success.
func (w *SummaryVideoWorkflow) Run(ctx goctx.Context, source string) (*model.FinalVideo, error) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	defer chainCtx.Close()

	chainCtx.Add(cor.CtxIn, source)
	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		errs := make([]error, 0, len(chainCtx.GetErrors()))
		for name, err := range chainCtx.GetErrors() {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return nil, errors.Join(errs...)
	}

	video, ok := chainCtx.Get(commands.GetFinalVideoParamName()).(*model.FinalVideo)
	if !ok {
		return nil, fmt.Errorf("workflow finished without producing a video")
	}
	return video, nil
}

// initializeChain builds the sequence of commands that make up this workflow.
// Each command is an atomic unit of work whose output is piped into the next,
// creating the processing pipeline. This method is called by the constructor.
func (w *SummaryVideoWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Create the per-run scratch workspace and publish its path.
	out.AddCommand(commands.NewWorkspaceSetup(
		"setup-workspace",
		w.config.Application.WorkspaceDir,
		w.config.Application.KeepWorkspace))

	// Step 2: Resolve the source (URL or local path) to a verified local PDF.
	out.AddCommand(commands.NewPDFFetch(
		"fetch-pdf",
		time.Duration(w.config.Pipeline.FetchTimeoutSeconds)*time.Second))

	// Step 3: Extract the paper's plain text, truncated to the planner's
	// context budget.
	out.AddCommand(commands.NewPDFTextExtractor(
		"extract-pdf-text",
		w.config.Pipeline.TruncationLimit))

	// Step 4: Ask the planner model for the scene plan as raw JSON.
	out.AddCommand(commands.NewScenePlanCreator(
		"create-scene-plan",
		w.summarizer,
		w.config.Pipeline.SceneCount,
		w.config.Pipeline.TargetDurationSeconds))

	// Step 5: Parse, validate, and duration-normalize the plan.
	out.AddCommand(commands.NewScenePlanJsonToStruct(
		"convert-scene-plan",
		w.config.Pipeline.SceneCount,
		w.config.Pipeline.TargetDurationSeconds))

	// Step 6: Render every scene's clip and synthesize every narration in
	// parallel on the worker pool, degrading per-scene failures to
	// placeholder cards and silence.
	out.AddCommand(commands.NewSceneFanout(
		"produce-scene-artifacts",
		w.renderer,
		w.synthesizer,
		w.numberOfWorkers,
		time.Duration(w.config.Pipeline.RenderTimeoutSeconds)*time.Second,
		time.Duration(w.config.Pipeline.SynthesisTimeoutSeconds)*time.Second,
		w.config.Pipeline.AbortOnSceneFailure))

	// Step 7: Reconcile each scene's clip and narration durations and mux
	// them into uniformly encoded segments.
	out.AddCommand(commands.NewSegmentResolver(
		"resolve-segments",
		w.exec,
		w.config.Tools.FFMpegPath))

	// Step 8 (optional): Append the closing card.
	if w.config.Pipeline.OutroEnabled {
		out.AddCommand(commands.NewOutroAppender(
			"append-outro-card",
			w.renderer,
			w.exec,
			w.config.Tools.FFMpegPath,
			w.config.Pipeline.OutroDurationSeconds))
	}

	// Step 9: Concatenate the segments and deliver the final video.
	out.AddCommand(commands.NewVideoConcat(
		"concat-and-deliver",
		w.exec,
		w.config.Tools.FFMpegPath,
		w.config.Application.OutputPath))

	w.chain = out
}

// NewSummaryVideoWorkflow is the constructor for the SummaryVideoWorkflow. It
// builds the concrete services from the configured clients and toolchain,
// compiles the planner prompt template, and initializes the command chain.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: Initialized Gemini clients and model wrappers.
//   - exec: The process executor for the local toolchain (manim, ffmpeg, ffprobe).
//   - agentModelName: The agent model config to use for planning (e.g., "scene-planner").
//   - speechModelName: The speech model config to use for narration (e.g., "narrator").
//
// Outputs:
//   - A pointer to a newly created and fully initialized SummaryVideoWorkflow.
func NewSummaryVideoWorkflow(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	exec executor.Executor,
	agentModelName string,
	speechModelName string) *SummaryVideoWorkflow {

	planTemplate, err := template.New("scene-plan-template").Parse(config.PromptTemplates.ScenePlanPrompt)
	if err != nil {
		panic(err) // The app cannot run without a valid prompt template.
	}

	prober := services.NewFFProbe(exec, config.Tools.FFProbePath)
	speechModel := serviceClients.SpeechModels[speechModelName]

	return NewSummaryVideoWorkflowWithServices(
		config,
		services.NewGeminiScenePlanner(serviceClients.AgentModels[agentModelName], planTemplate),
		services.NewManimRenderer(exec, prober, config.Tools, config.Pipeline.DurationToleranceSeconds),
		services.NewGeminiSynthesizer(speechModel, config.Pipeline.MaxNarrationLength),
		exec)
}

// NewSummaryVideoWorkflowWithServices builds the workflow from explicit
// service implementations. The production constructor delegates here; tests
// use it directly to run the full chain against deterministic fakes.
func NewSummaryVideoWorkflowWithServices(
	config *cloud.Config,
	summarizer services.Summarizer,
	renderer services.Renderer,
	synthesizer services.Synthesizer,
	exec executor.Executor) *SummaryVideoWorkflow {

	pipeline := &SummaryVideoWorkflow{
		BaseCommand:     *cor.NewBaseCommand("summary-video-pipeline"),
		config:          config,
		summarizer:      summarizer,
		renderer:        renderer,
		synthesizer:     synthesizer,
		exec:            exec,
		numberOfWorkers: config.Application.ThreadPoolSize,
	}
	pipeline.initializeChain()
	return pipeline
}
