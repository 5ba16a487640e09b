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

package main

import (
	"context"
	"log"
	"os"

	"github.com/anayrshukla/manim-video-generation/internal/cloud"
	"github.com/anayrshukla/manim-video-generation/internal/core/workflow"
	"github.com/anayrshukla/manim-video-generation/pkg/executor"
)

// StateManager holds the shared components for the application.
type StateManager struct {
	config   *cloud.Config
	cloud    *cloud.ServiceClients
	pipeline *workflow.SummaryVideoWorkflow
}

// state manages the application's dependencies.
var state = &StateManager{}

// SetupOS points the config loader at the bundled configs directory unless the
// operator already set the environment up themselves.
func SetupOS() (err error) {
	if _, ok := os.LookupEnv(cloud.EnvConfigFilePrefix); !ok {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if _, ok := os.LookupEnv(cloud.EnvConfigRuntime); !ok {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig lazily loads the hierarchical TOML configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment: %v\n", err)
		}
		// Create a default config and load it from the TOML files.
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState builds the Gemini clients and the pipeline workflow.
func InitState(ctx context.Context) {
	config := GetConfig()

	serviceClients, err := cloud.NewServiceClients(ctx, config)
	if err != nil {
		log.Fatalf("failed to initialize AI service clients: %v\n", err)
	}
	state.cloud = serviceClients

	state.pipeline = workflow.NewSummaryVideoWorkflow(
		config,
		serviceClients,
		executor.New(),
		"scene-planner",
		"narrator")
}
