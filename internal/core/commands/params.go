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
// Responsibility (COR) pattern's Command interface for the summary-video
// pipeline. This file defines the shared context parameter names so every
// command that needs cross-stage state (the run workspace, the scene plan)
// reads and writes the same keys.
package commands

const (
	workspaceParamName  = "__workspace__"
	runIDParamName      = "__run_id__"
	planParamName       = "__scene_plan__"
	artifactsParamName  = "__scene_artifacts__"
	finalVideoParamName = "__final_video__"
)

// GetWorkspaceParamName returns the context key holding the absolute path of
// the per-run scratch workspace.
func GetWorkspaceParamName() string { return workspaceParamName }

// GetRunIDParamName returns the context key holding the unique run identifier.
func GetRunIDParamName() string { return runIDParamName }

// GetPlanParamName returns the context key holding the validated *model.ScenePlan.
func GetPlanParamName() string { return planParamName }

// GetArtifactsParamName returns the context key holding the *model.SceneArtifacts
// produced by the per-scene fan-out.
func GetArtifactsParamName() string { return artifactsParamName }

// GetFinalVideoParamName returns the context key holding the *model.FinalVideo
// delivery report. The chain pipes each command's output into the next
// command's input, so the report is published under this stable key as well
// for the workflow to read after the chain completes.
func GetFinalVideoParamName() string { return finalVideoParamName }
