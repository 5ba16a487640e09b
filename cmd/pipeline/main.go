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

// Command pipeline turns a research paper (PDF) into a narrated, animated
// one-minute summary video. Given a URL or local path it plans a fixed number
// of scenes with Gemini, renders each scene's animation with manim,
// synthesizes narration, and assembles everything with ffmpeg.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/anayrshukla/manim-video-generation/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	flagScenes   int
	flagDuration float64
	flagOutput   string
	flagKeep     bool
	flagAbort    bool
)

var rootCmd = &cobra.Command{
	Use:   "pipeline [source]",
	Short: "Generate a one-minute animated summary video from a research paper",
	Long: `Generates a narrated, animated summary video from a research paper PDF.

The source may be an http(s) URL or a local file path. When omitted, the
pipeline prompts for it interactively. Requires manim, ffmpeg, and ffprobe
on the local machine, and a Gemini API key in the environment.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPipeline,
}

func init() {
	rootCmd.Flags().IntVar(&flagScenes, "scenes", 0, "number of scenes in the video (overrides config)")
	rootCmd.Flags().Float64Var(&flagDuration, "duration", 0, "target video length in seconds (overrides config)")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output path for the finished video (overrides config)")
	rootCmd.Flags().BoolVar(&flagKeep, "keep-workspace", false, "keep the run's scratch files for debugging")
	rootCmd.Flags().BoolVar(&flagAbort, "abort-on-failure", false, "fail the run on any scene failure instead of degrading")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	config := GetConfig()
	applyFlags()

	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to setup OpenTelemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	source, err := resolveSource(args)
	if err != nil {
		return err
	}

	slog.Info("starting summary video run",
		"source", source,
		"scenes", config.Pipeline.SceneCount,
		"target_duration", config.Pipeline.TargetDurationSeconds,
		"output", config.Application.OutputPath)

	video, err := state.pipeline.Run(ctx, source)
	if err != nil {
		reportFailure(err)
		return err
	}

	fmt.Printf("Summary video written to %s (%.1fs, %d scenes)\n",
		video.Path, video.DurationSeconds, video.SceneCount)
	if len(video.Degraded) > 0 {
		fmt.Printf("Degraded scenes (placeholder video or silent narration): %v\n", video.Degraded)
	}
	return nil
}

// applyFlags folds command-line overrides into the loaded configuration.
func applyFlags() {
	config := GetConfig()
	if flagScenes > 0 {
		config.Pipeline.SceneCount = flagScenes
	}
	if flagDuration > 0 {
		config.Pipeline.TargetDurationSeconds = flagDuration
	}
	if flagOutput != "" {
		config.Application.OutputPath = flagOutput
	}
	if flagKeep {
		config.Application.KeepWorkspace = true
	}
	if flagAbort {
		config.Pipeline.AbortOnSceneFailure = true
	}
}

// resolveSource returns the document source from the argument list, or prompts
// for it when the pipeline is run without one.
func resolveSource(args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}

	fmt.Print("Enter the URL or path of the paper (PDF): ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read source: %w", err)
	}
	source := strings.TrimSpace(line)
	if source == "" {
		return "", fmt.Errorf("no document source provided")
	}
	return source, nil
}

// reportFailure names the failed stage so the operator knows where to look.
func reportFailure(err error) {
	var fetchErr *model.FetchError
	var planErr *model.SummarizationError
	var renderErr *model.RenderError
	var synthErr *model.SynthesisError
	var assemblyErr *model.AssemblyError

	switch {
	case errors.As(err, &fetchErr):
		slog.Error("document fetch failed", "source", fetchErr.Source, "error", err)
	case errors.As(err, &planErr):
		slog.Error("scene planning failed", "error", err)
	case errors.As(err, &renderErr):
		slog.Error("scene render failed", "sequence", renderErr.SequenceNumber, "error", err)
	case errors.As(err, &synthErr):
		slog.Error("narration synthesis failed", "sequence", synthErr.SequenceNumber, "error", err)
	case errors.As(err, &assemblyErr):
		slog.Error("video assembly failed", "error", err)
	default:
		slog.Error("pipeline run failed", "error", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
