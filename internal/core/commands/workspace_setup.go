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
// command that prepares the per-run scratch workspace.
//
// Logic Flow:
// Every run of the pipeline gets its own workspace directory so concurrent or
// repeated runs never collide, and so a failed run leaves nothing behind at
// the output path.
//
//  1. Generates a unique run identifier (UUID).
//  2. Creates a dedicated workspace directory under the configured base
//     directory, named after the run identifier.
//  3. Publishes the run identifier and workspace path into the context for
//     every downstream command to use.
//  4. Registers the workspace for recursive removal when the workflow's
//     context is closed, unless the operator asked to keep scratch files.
//  5. Passes its input (the document source) through untouched, so the fetch
//     command downstream still receives it.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/google/uuid"
)

// WorkspaceSetup is a command that creates the scratch workspace for one run.
type WorkspaceSetup struct {
	cor.BaseCommand
	baseDir       string // The directory under which run workspaces are created.
	keepWorkspace bool   // When true, the workspace survives the run for debugging.
}

// NewWorkspaceSetup is the constructor for the WorkspaceSetup command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - baseDir: The parent directory for run workspaces.
//   - keepWorkspace: Whether to skip cleanup of the workspace after the run.
//
// Outputs:
//   - *WorkspaceSetup: A pointer to the newly instantiated command.
func NewWorkspaceSetup(name string, baseDir string, keepWorkspace bool) *WorkspaceSetup {
	return &WorkspaceSetup{
		BaseCommand:   *cor.NewBaseCommand(name),
		baseDir:       baseDir,
		keepWorkspace: keepWorkspace,
	}
}

// Execute creates the workspace and publishes its location to the context.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *WorkspaceSetup) Execute(context cor.Context) {
	source := context.Get(c.GetInputParam()).(string)

	runID := uuid.NewString()
	workspace := filepath.Join(c.baseDir, fmt.Sprintf("run-%s", runID))

	if err := os.MkdirAll(workspace, 0o755); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create workspace %s: %w", workspace, err))
		return
	}

	context.Add(GetRunIDParamName(), runID)
	context.Add(GetWorkspaceParamName(), workspace)
	if !c.keepWorkspace {
		context.AddTempDir(workspace)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	// Pass the document source through to the fetch command.
	context.Add(c.GetOutputParam(), source)
}
