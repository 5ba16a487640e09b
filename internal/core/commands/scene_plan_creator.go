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
// command that asks the planner model for a structured scene plan.
//
// Logic Flow:
//  1. Receives the extracted model.SourceDocument from the context.
//  2. Submits the document text to the Summarizer, which prompts the model
//     for a fixed number of scenes, each with narration and an animation
//     directive, sized to the target video duration.
//  3. Places the model's raw JSON response into the context. Parsing and
//     validation are deliberately left to the next command so a malformed
//     response is diagnosed in exactly one place.
package commands

import (
	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/anayrshukla/manim-video-generation/internal/core/services"
)

// ScenePlanCreator is a command that generates the scene-plan JSON for a document.
type ScenePlanCreator struct {
	cor.BaseCommand
	summarizer            services.Summarizer // The planner backend.
	sceneCount            int                 // Number of scenes to request.
	targetDurationSeconds float64             // Target length of the final video.
}

// NewScenePlanCreator is the constructor for the ScenePlanCreator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - summarizer: The planner service that talks to the model.
//   - sceneCount: The exact number of scenes the plan must contain.
//   - targetDurationSeconds: The target duration the plan should sum to.
//
// Outputs:
//   - *ScenePlanCreator: A pointer to the newly instantiated command.
func NewScenePlanCreator(
	name string,
	summarizer services.Summarizer,
	sceneCount int,
	targetDurationSeconds float64) *ScenePlanCreator {
	return &ScenePlanCreator{
		BaseCommand:           *cor.NewBaseCommand(name),
		summarizer:            summarizer,
		sceneCount:            sceneCount,
		targetDurationSeconds: targetDurationSeconds,
	}
}

// Execute submits the document to the planner and emits the raw JSON response.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *ScenePlanCreator) Execute(context cor.Context) {
	doc := context.Get(c.GetInputParam()).(*model.SourceDocument)

	out, err := c.summarizer.Summarize(context.GetContext(), doc.Text, c.sceneCount, c.targetDurationSeconds)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.SummarizationError{Err: err})
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), out)
}
