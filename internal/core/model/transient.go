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
// contains the transient, in-memory artifacts of a run: the fetched source
// document, the per-scene intermediate files, and the final muxed output.
// None of these persist across runs; the scratch files they point at live in
// the run workspace and are gone once the run finishes.
package model

import "fmt"

// These objects are used in memory during one pipeline run and are never persisted.

// SourceDocument is the fetched PDF and its extracted text layer. Created by
// the fetch/extract stages, consumed only by the planner, discarded after
// planning.
type SourceDocument struct {
	Path      string // Local path of the downloaded PDF in the run workspace.
	Text      string // Extracted text, already head-truncated to the configured limit.
	PageCount int    // Number of pages in the source PDF.
	Truncated bool   // Whether the truncation limit fired during extraction.
}

// RenderedClip is one silent video clip rendered for a scene.
type RenderedClip struct {
	SequenceNumber  int     // Scene this clip belongs to.
	Path            string  // Local path of the clip file.
	DurationSeconds float64 // Measured duration of the rendered file.
	Placeholder     bool    // True when this is a degraded black-card substitute.
}

// AudioSegment is the synthesized narration audio for one scene.
type AudioSegment struct {
	SequenceNumber  int     // Scene this audio belongs to.
	Path            string  // Local path of the audio file.
	DurationSeconds float64 // Measured duration of the audio file.
	Placeholder     bool    // True when this is a degraded silence substitute.
}

// SceneArtifacts is the per-run results table the fan-out stage fills in,
// keyed by scene sequence number. The assembler joins clip and audio through
// this table; a missing entry on either side is an assembly error.
type SceneArtifacts struct {
	Clips map[int]*RenderedClip
	Audio map[int]*AudioSegment
}

// NewSceneArtifacts returns an empty results table.
func NewSceneArtifacts() *SceneArtifacts {
	return &SceneArtifacts{
		Clips: make(map[int]*RenderedClip),
		Audio: make(map[int]*AudioSegment),
	}
}

// Pair returns the clip/audio pair for a scene, or an error naming whichever
// side is missing.
func (a *SceneArtifacts) Pair(sequenceNumber int) (*RenderedClip, *AudioSegment, error) {
	clip, ok := a.Clips[sequenceNumber]
	if !ok {
		return nil, nil, fmt.Errorf("scene %d has no rendered clip", sequenceNumber)
	}
	audio, ok := a.Audio[sequenceNumber]
	if !ok {
		return nil, nil, fmt.Errorf("scene %d has no audio segment", sequenceNumber)
	}
	return clip, audio, nil
}

// DegradedScenes lists, in ascending order, the scenes for which either side
// of the pair is a placeholder. Callers report these so the user knows the
// output is degraded.
func (a *SceneArtifacts) DegradedScenes(sceneCount int) []int {
	out := make([]int, 0)
	for i := 0; i < sceneCount; i++ {
		if clip, ok := a.Clips[i]; ok && clip.Placeholder {
			out = append(out, i)
			continue
		}
		if audio, ok := a.Audio[i]; ok && audio.Placeholder {
			out = append(out, i)
		}
	}
	return out
}

// ResolvedSegment is one duration-reconciled audio+video pairing, encoded and
// ready for concatenation. Segments are produced in ascending sequence order
// and the final video is exactly their concatenation.
type ResolvedSegment struct {
	SequenceNumber  int     // Playback position of this segment.
	Path            string  // Local path of the muxed per-scene file.
	DurationSeconds float64 // Resolved duration: max(clip, audio) for the scene.
}

// FinalVideo is the terminal artifact of a run: a single H.264/AAC MP4.
type FinalVideo struct {
	Path            string  // Path of the muxed output file.
	DurationSeconds float64 // Total duration, the sum of the resolved segment durations.
	SceneCount      int     // Number of scene segments in the video.
	Degraded        []int   // Sequence numbers that shipped with a placeholder clip or audio.
}
