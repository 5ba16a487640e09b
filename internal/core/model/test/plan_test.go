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

// Package model_test contains unit tests for the data models defined in the
// model package. This file tests the scene plan's validation and duration
// normalization rules.
package model_test

import (
	"testing"

	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// newTestPlan builds a well-formed plan with the given per-scene durations.
func newTestPlan(target float64, durations ...float64) *model.ScenePlan {
	plan := &model.ScenePlan{TargetDurationSeconds: target}
	for i, d := range durations {
		plan.Scenes = append(plan.Scenes, &model.Scene{
			SequenceNumber:        i,
			Narration:             "narration",
			Directive:             model.Directive{Title: "t", ManimCode: "class S(Scene): pass"},
			TargetDurationSeconds: d,
		})
	}
	return plan
}

func TestValidateAcceptsWellFormedPlan(t *testing.T) {
	plan := newTestPlan(60, 15, 15, 15, 15)
	assert.NoError(t, plan.Validate(4))
}

func TestValidateRejectsWrongSceneCount(t *testing.T) {
	plan := newTestPlan(60, 20, 20, 20)
	err := plan.Validate(4)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "3 scenes, expected 4")
}

func TestValidateRejectsNonContiguousSequence(t *testing.T) {
	plan := newTestPlan(60, 30, 30)
	plan.Scenes[1].SequenceNumber = 5
	assert.Error(t, plan.Validate(2))
}

func TestValidateRejectsEmptyNarration(t *testing.T) {
	plan := newTestPlan(60, 30, 30)
	plan.Scenes[0].Narration = "   "
	assert.Error(t, plan.Validate(2))
}

func TestValidateRejectsEmptyDirective(t *testing.T) {
	plan := newTestPlan(60, 30, 30)
	plan.Scenes[1].Directive.ManimCode = ""
	assert.Error(t, plan.Validate(2))
}

// The model's durations rarely sum to the target exactly; normalization must
// rescale them proportionally so the plan's total equals the target.
func TestNormalizeDurationsRescalesProportionally(t *testing.T) {
	plan := newTestPlan(60, 10, 20, 30, 40) // sums to 100
	plan.NormalizeDurations()

	assert.InDelta(t, 60.0, plan.TotalTargetDuration(), 1e-9)
	assert.InDelta(t, 6.0, plan.Scenes[0].TargetDurationSeconds, 1e-9)
	assert.InDelta(t, 12.0, plan.Scenes[1].TargetDurationSeconds, 1e-9)
	assert.InDelta(t, 18.0, plan.Scenes[2].TargetDurationSeconds, 1e-9)
	assert.InDelta(t, 24.0, plan.Scenes[3].TargetDurationSeconds, 1e-9)
}

// A plan with missing or nonsense durations falls back to an even split.
func TestNormalizeDurationsEvenSplitWhenUnusable(t *testing.T) {
	plan := newTestPlan(60, 15, 0, 15, 15)
	plan.NormalizeDurations()

	for _, s := range plan.Scenes {
		assert.InDelta(t, 15.0, s.TargetDurationSeconds, 1e-9)
	}
}

// Normalization is deterministic: running it twice changes nothing.
func TestNormalizeDurationsIsIdempotent(t *testing.T) {
	plan := newTestPlan(60, 10, 20, 30, 40)
	plan.NormalizeDurations()
	first := make([]float64, len(plan.Scenes))
	for i, s := range plan.Scenes {
		first[i] = s.TargetDurationSeconds
	}

	plan.NormalizeDurations()
	for i, s := range plan.Scenes {
		assert.InDelta(t, first[i], s.TargetDurationSeconds, 1e-9)
	}
}
