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
// holds the scene plan: the ordered set of narration/animation pairs the
// planner model produces for one run, and the validation and duration
// normalization rules that make the plan safe for downstream assembly.
package model

import (
	"fmt"
	"strings"
)

// Directive describes what a single clip should draw: a display title and a
// self-contained manim scene program restricted to primitive mobjects.
type Directive struct {
	Title     string `json:"title"`      // Short on-screen concept title for the scene.
	ManimCode string `json:"manim_code"` // A complete manim Scene subclass rendering the animation.
}

// Scene is one planned unit of the final video: narration plus an animation
// directive, with a target duration the renderer and synthesizer both aim for.
type Scene struct {
	SequenceNumber        int       `json:"sequence_number"`         // 0-based playback position; unique and contiguous within a plan.
	Narration             string    `json:"narration"`               // Voice-over text for this scene. Never empty in a valid plan.
	Directive             Directive `json:"directive"`               // What to draw.
	TargetDurationSeconds float64   `json:"target_duration_seconds"` // Planned length of the scene.
}

// ScenePlan is the ordered set of Scenes for one run. It is immutable after
// validation; everything downstream only reads it.
type ScenePlan struct {
	RunID                 string   `json:"run_id"`                  // Unique identifier of this pipeline run.
	TargetDurationSeconds float64  `json:"target_duration_seconds"` // Desired total video length.
	Scenes                []*Scene `json:"scenes"`                  // The scenes, ascending by SequenceNumber.
}

// Validate checks the structural invariants of a plan produced from a model
// response: exactly expectedCount scenes, contiguous 0-based sequence numbers,
// non-empty narration, and a usable directive for every scene. The planner
// treats any violation as a malformed summarization response.
func (p *ScenePlan) Validate(expectedCount int) error {
	if len(p.Scenes) != expectedCount {
		return fmt.Errorf("plan has %d scenes, expected %d", len(p.Scenes), expectedCount)
	}
	for i, s := range p.Scenes {
		if s == nil {
			return fmt.Errorf("scene %d is missing", i)
		}
		if s.SequenceNumber != i {
			return fmt.Errorf("scene at position %d carries sequence number %d", i, s.SequenceNumber)
		}
		if strings.TrimSpace(s.Narration) == "" {
			return fmt.Errorf("scene %d has empty narration", i)
		}
		if strings.TrimSpace(s.Directive.ManimCode) == "" {
			return fmt.Errorf("scene %d has an empty animation directive", i)
		}
	}
	return nil
}

// NormalizeDurations rescales the per-scene target durations so they sum to
// the plan's total target. When the model supplied no usable durations the
// total is split evenly. The operation is deterministic for a given response,
// which keeps rendering and assembly reproducible against the same plan.
func (p *ScenePlan) NormalizeDurations() {
	if len(p.Scenes) == 0 || p.TargetDurationSeconds <= 0 {
		return
	}
	var sum float64
	usable := true
	for _, s := range p.Scenes {
		if s.TargetDurationSeconds <= 0 {
			usable = false
			break
		}
		sum += s.TargetDurationSeconds
	}
	if !usable || sum <= 0 {
		even := p.TargetDurationSeconds / float64(len(p.Scenes))
		for _, s := range p.Scenes {
			s.TargetDurationSeconds = even
		}
		return
	}
	scale := p.TargetDurationSeconds / sum
	for _, s := range p.Scenes {
		s.TargetDurationSeconds *= scale
	}
}

// TotalTargetDuration returns the sum of the per-scene targets.
func (p *ScenePlan) TotalTargetDuration() float64 {
	var sum float64
	for _, s := range p.Scenes {
		sum += s.TargetDurationSeconds
	}
	return sum
}
