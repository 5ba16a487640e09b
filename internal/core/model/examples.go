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

// Package model defines the data structures for the pipeline. This file
// provides factory functions for hardcoded example instances of the data
// models, used for few-shot prompting: embedding a complete, well-formed JSON
// example in the planner prompt makes the model's output far more likely to
// parse on the first try.
package model

// GetExamplePlan creates a sample ScenePlan used as the few-shot example in
// the planner prompt. It shows the model the exact JSON shape expected,
// including the manim code contract (primitive mobjects only, no LaTeX, no
// external assets).
func GetExamplePlan() *ScenePlan {
	return &ScenePlan{
		TargetDurationSeconds: 30,
		Scenes: []*Scene{
			{
				SequenceNumber: 0,
				Narration:      "Imagine compressing an entire research paper into one minute. We start with the central question the authors set out to answer.",
				Directive: Directive{
					Title: "The Central Question",
					ManimCode: `class CentralQuestion(Scene):
    def construct(self):
        title = Text("The Central Question", font_size=48)
        circle = Circle(radius=2, color=BLUE)
        self.play(Write(title))
        self.play(title.animate.to_edge(UP))
        self.play(Create(circle))
        self.wait(2)`,
				},
				TargetDurationSeconds: 15,
			},
			{
				SequenceNumber: 1,
				Narration:      "Their key idea is surprisingly simple: two quantities that looked unrelated turn out to move together.",
				Directive: Directive{
					Title: "The Key Idea",
					ManimCode: `class KeyIdea(Scene):
    def construct(self):
        left = Square(side_length=1.5, color=GREEN).shift(LEFT * 2)
        right = Dot(color=YELLOW).shift(RIGHT * 2)
        arrow = Arrow(start=left.get_right(), end=right.get_left(), color=WHITE)
        self.play(Create(left), Create(right))
        self.play(Create(arrow))
        self.wait(2)`,
				},
				TargetDurationSeconds: 15,
			},
		},
	}
}
