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
// command that turns the planner's raw response into a validated ScenePlan.
//
// Logic Flow:
// Generative models do not reliably emit bare JSON: the payload may arrive
// wrapped in prose or markdown fences. This command is the single place where
// that unreliability is absorbed.
//
//  1. Receives the planner's raw response string from the context.
//  2. Scans out the first balanced top-level JSON object (services.
//     ExtractJSONObject), which survives both fenced and prose-wrapped
//     responses.
//  3. Unmarshals it into a model.ScenePlan and stamps the run identifier and
//     the target duration onto it.
//  4. Validates the plan: exact scene count, contiguous 0-based sequence
//     numbers, non-empty narration and directives. A plan that fails here is
//     a summarization failure, not a parsing bug to paper over.
//  5. Normalizes per-scene durations so they sum to the target.
//  6. Publishes the plan under both a named context key (for commands later
//     in the chain that need it alongside their own input) and the standard
//     output slot.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/anayrshukla/manim-video-generation/internal/core/services"
)

// ScenePlanJsonToStruct is a command that parses and validates the scene-plan JSON.
type ScenePlanJsonToStruct struct {
	cor.BaseCommand
	sceneCount            int     // The exact number of scenes the plan must contain.
	targetDurationSeconds float64 // Target length the scene durations are normalized to.
}

// NewScenePlanJsonToStruct is the constructor for the ScenePlanJsonToStruct command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - sceneCount: The scene count the plan is validated against.
//   - targetDurationSeconds: The duration the plan is normalized to.
//
// Outputs:
//   - *ScenePlanJsonToStruct: A pointer to the newly instantiated command.
func NewScenePlanJsonToStruct(name string, sceneCount int, targetDurationSeconds float64) *ScenePlanJsonToStruct {
	out := &ScenePlanJsonToStruct{
		BaseCommand:           *cor.NewBaseCommand(name),
		sceneCount:            sceneCount,
		targetDurationSeconds: targetDurationSeconds,
	}
	out.OutputParamName = GetPlanParamName()
	return out
}

// Execute parses, validates, and normalizes the scene plan.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *ScenePlanJsonToStruct) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)

	payload, err := services.ExtractJSONObject(in)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.SummarizationError{Err: fmt.Errorf("no JSON object in planner response: %w", err)})
		return
	}

	plan := &model.ScenePlan{}
	if err := json.Unmarshal([]byte(payload), plan); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.SummarizationError{Err: fmt.Errorf("failed to unmarshal scene plan: %w", err)})
		return
	}

	if runID, ok := context.Get(GetRunIDParamName()).(string); ok {
		plan.RunID = runID
	}
	plan.TargetDurationSeconds = c.targetDurationSeconds

	if err := plan.Validate(c.sceneCount); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.SummarizationError{Err: err})
		return
	}
	plan.NormalizeDurations()

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), plan)
	context.Add(cor.CtxOut, plan)
}
