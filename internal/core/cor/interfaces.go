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

// Package cor (Chain of Responsibility) provides the fundamental building
// blocks for creating workflows: a Command is an atomic unit of work, a Chain
// executes commands in order while piping each output to the next input, and
// a Context is the shared state bag for one workflow execution.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys that manage the primary data flow within a
// BaseChain. The chain moves the value a command stored under CtxOut into
// CtxIn before running the next command.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context defines the interface for a shared state object passed through a
// chain of commands. It carries data, errors, and scratch-file bookkeeping for
// a single pipeline run.
type Context interface {
	// SetContext sets the standard Go `context.Context` used for cancellation
	// and OpenTelemetry trace propagation.
	SetContext(context context.Context)

	// GetContext retrieves the standard Go `context.Context`.
	GetContext() context.Context

	// Add stores a key-value pair. It returns the Context for fluent chaining.
	Add(key string, value interface{}) Context

	// AddError records an error produced by a command. The key should be the
	// name of the command that produced it.
	AddError(key string, err error)

	// GetErrors returns all errors collected during the workflow.
	GetErrors() map[string]error

	// Get retrieves a value by key, or nil.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// HasErrors reports whether any command recorded an error.
	HasErrors() bool

	// AddTempFile tracks a scratch file created during the workflow so it can
	// be cleaned up at the end of the run.
	AddTempFile(file string)

	// AddTempDir tracks a scratch directory; it is removed recursively on Close.
	AddTempDir(dir string)

	// GetTempFiles returns all tracked scratch file paths.
	GetTempFiles() []string

	// Close removes all tracked scratch files and directories. Defer it at the
	// start of a workflow run.
	Close()
}

// Executable is any object with a core execution method.
type Executable interface {
	// Execute reads its inputs from the Context and writes its outputs back.
	Execute(context Context)
}

// Command represents an atomic, testable unit of work in a workflow.
type Command interface {
	Executable

	// GetName returns the unique name of the command, used for logging and telemetry.
	GetName() string

	// GetInputParam returns the context key holding this command's primary input.
	GetInputParam() string

	// GetOutputParam returns the context key this command stores its output under.
	GetOutputParam() string

	// IsExecutable is a precondition check run before Execute.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetMeter returns the OpenTelemetry meter for creating metrics.
	GetMeter() metric.Meter

	// GetSuccessCounter returns a metric counter for successful executions.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns a metric counter for failed executions.
	GetErrorCounter() metric.Int64Counter
}

// Chain is a sequence of commands. A Chain is itself a Command, so chains can
// nest inside other chains.
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after a
	// command records an error. The pipeline leaves this false: every stage
	// depends on the output of the one before it.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
