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

// Package test provides utility functions and mock data to support the
// application's test suite. It helps in setting up a consistent test
// environment, loading test-specific configurations, and providing sample
// planner responses for workflow and command tests.
package test

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/anayrshukla/manim-video-generation/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs, so the TOML files are loaded once per run.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is non-nil. A convenience to reduce
// boilerplate error-checking in tests.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// WriteTestPDF writes a minimal single-page PDF containing the given text,
// computing the cross-reference offsets as it goes so the file is structurally
// valid for the extractor.
//
// Inputs:
//   - t: The *testing.T object from the current test.
//   - path: Where the PDF file is written.
//   - text: The plain text placed on the page.
func WriteTestPDF(t *testing.T, path string, text string) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, 0, 5)
	addObject := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	addObject("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	addObject("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	addObject("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")
	addObject(fmt.Sprintf("4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream))
	addObject("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	HandleErr(os.WriteFile(path, buf.Bytes(), 0o644), t)
}

// GetTestPlannerResponseText returns a planner response the way the model
// actually emits one: valid scene-plan JSON wrapped in a markdown fence. Used
// to test the parse-and-validate path end to end.
//
// Returns:
//   - A string containing a fenced four-scene plan.
func GetTestPlannerResponseText() string {
	return "```json\n" + `{
  "scenes": [
    {
      "sequence_number": 0,
      "narration": "This paper introduces a new attention mechanism that scales linearly with sequence length.",
      "directive": {
        "title": "The Problem",
        "manim_code": "class TheProblem(Scene):\n    def construct(self):\n        title = Text(\"Quadratic Attention\")\n        self.play(Write(title))\n        self.wait(2)\n"
      },
      "target_duration_seconds": 15
    },
    {
      "sequence_number": 1,
      "narration": "The key idea is to factor the attention matrix into two low-rank components.",
      "directive": {
        "title": "The Key Idea",
        "manim_code": "class TheKeyIdea(Scene):\n    def construct(self):\n        eq = MathTex(\"A = L R\")\n        self.play(Write(eq))\n        self.wait(2)\n"
      },
      "target_duration_seconds": 15
    },
    {
      "sequence_number": 2,
      "narration": "On long-document benchmarks the method matches full attention at a fraction of the cost.",
      "directive": {
        "title": "Results",
        "manim_code": "class Results(Scene):\n    def construct(self):\n        axes = Axes(x_range=[0, 10], y_range=[0, 100])\n        self.play(Create(axes))\n        self.wait(2)\n"
      },
      "target_duration_seconds": 15
    },
    {
      "sequence_number": 3,
      "narration": "The authors conclude that linear attention makes million-token contexts practical.",
      "directive": {
        "title": "Conclusion",
        "manim_code": "class Conclusion(Scene):\n    def construct(self):\n        msg = Text(\"Million-token contexts\")\n        self.play(FadeIn(msg))\n        self.wait(2)\n"
      },
      "target_duration_seconds": 15
    }
  ]
}` + "\n```\n"
}

// GetTestShortPlannerResponseText returns a plan with too few scenes, used to
// exercise the scene-count validation path.
func GetTestShortPlannerResponseText() string {
	return `{
  "scenes": [
    {
      "sequence_number": 0,
      "narration": "Only scene.",
      "directive": {
        "title": "Only",
        "manim_code": "class Only(Scene):\n    def construct(self):\n        self.wait(1)\n"
      },
      "target_duration_seconds": 60
    }
  ]
}`
}

// SetupOS configures the environment variables the configuration loader
// depends on, pointing it at the test override file (`.env.test.toml`).
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration, loaded from
// the TOML files once and cached for subsequent calls.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
