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

// Package telemetry_test contains unit tests for the observability setup,
// covering the operator switch that turns span and metric export on and off.
package telemetry_test

import (
	"context"
	"os"
	"testing"

	"github.com/anayrshukla/manim-video-generation/internal/cloud"
	"github.com/anayrshukla/manim-video-generation/internal/telemetry"
	"github.com/stretchr/testify/assert"
)

func newTelemetryConfig(enabled bool) *cloud.Config {
	config := cloud.NewConfig()
	config.Application.Name = "manim-video-generation-test"
	config.Application.OtelEnabled = enabled
	return config
}

func TestSetupOpenTelemetryDisabledIsNoOp(t *testing.T) {
	t.Chdir(t.TempDir())

	shutdown, err := telemetry.SetupOpenTelemetry(context.Background(), newTelemetryConfig(false))
	assert.NoError(t, err)
	assert.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	// No exporters were set up, so no telemetry file appears.
	_, err = os.Stat(telemetry.TelemetryFileName)
	assert.True(t, os.IsNotExist(err))
}

func TestSetupOpenTelemetryEnabledWritesTelemetryFile(t *testing.T) {
	t.Chdir(t.TempDir())

	shutdown, err := telemetry.SetupOpenTelemetry(context.Background(), newTelemetryConfig(true))
	assert.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = os.Stat(telemetry.TelemetryFileName)
	assert.NoError(t, err)
}
