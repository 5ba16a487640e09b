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

// Package model defines the core data structures for the pipeline. This file
// holds the error taxonomy. Each pipeline stage wraps its failures in the
// matching type so the entry point can report which stage (and scene, where
// applicable) killed the run. Fetch, summarization, and assembly errors are
// fatal; render and synthesis errors are per-scene and subject to the degrade
// policy.
package model

import "fmt"

// FetchError means the source document could not be retrieved or is not a
// readable PDF. Always fatal: there is no run without a document.
type FetchError struct {
	Source string // URL or path that failed.
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch: %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SummarizationError means the planner service call failed or returned a
// response that does not parse into a valid scene plan. Fatal after the
// bounded retry inside the service call.
type SummarizationError struct {
	Err error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization: %v", e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// RenderError is a per-scene rendering backend failure.
type RenderError struct {
	SequenceNumber int
	Err            error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render scene %d: %v", e.SequenceNumber, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// SynthesisError is a per-scene speech synthesis failure, including narration
// that violates the backend's length constraints.
type SynthesisError struct {
	SequenceNumber int
	Err            error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize scene %d: %v", e.SequenceNumber, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// AssemblyError means a scene is missing its clip or audio, or the final
// encode failed. Always fatal; no partial output file is left behind.
type AssemblyError struct {
	Err error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly: %v", e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }
