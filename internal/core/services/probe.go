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

package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anayrshukla/manim-video-generation/pkg/executor"
)

// FFProbe measures container durations with the ffprobe CLI.
type FFProbe struct {
	exec executor.Executor
	path string // Path to the ffprobe executable.
}

// NewFFProbe is the constructor for FFProbe.
func NewFFProbe(exec executor.Executor, path string) *FFProbe {
	return &FFProbe{exec: exec, path: path}
}

// Duration returns the duration of a media file in seconds.
func (p *FFProbe) Duration(ctx context.Context, file string) (float64, error) {
	out, err := p.exec.Execute(ctx, p.path,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		file,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", file, err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned unparsable duration %q for %s: %w", strings.TrimSpace(out), file, err)
	}
	return duration, nil
}
