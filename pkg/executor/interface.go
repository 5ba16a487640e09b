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

// Package executor provides a thin, context-aware wrapper around external
// command execution. The pipeline shells out to ffmpeg, ffprobe, and manim;
// routing every invocation through this interface keeps the commands that
// depend on those tools testable with an in-memory fake.
package executor

import "context"

// Executor runs an external command and returns its stdout.
type Executor interface {
	// Execute runs the named command with the given arguments. The context
	// bounds the process lifetime; cancellation kills the child process.
	Execute(ctx context.Context, name string, args ...string) (string, error)

	// ExecuteInDir is Execute with an explicit working directory. Manim
	// resolves its media output tree relative to the working directory,
	// so the renderer needs this variant.
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
}
