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

// Package commands_test contains unit tests for the pipeline's commands.
// This file tests the text-extraction stage, including the head-first
// truncation policy that keeps the planner prompt inside the model's context
// window.
package commands_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anayrshukla/manim-video-generation/internal/core/commands"
	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	test "github.com/anayrshukla/manim-video-generation/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPDFTextExtractorReadsDocument(t *testing.T) {
	workspace := t.TempDir()
	source := filepath.Join(workspace, "paper.pdf")
	test.WriteTestPDF(t, source, "Linear attention makes million-token contexts practical.")

	cmd := commands.NewPDFTextExtractor("extract-pdf-text", 60000)
	ctx := newCommandContext(workspace)
	ctx.Add(cor.CtxIn, source)
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())

	doc := ctx.Get(cor.CtxOut).(*model.SourceDocument)
	assert.Equal(t, source, doc.Path)
	assert.Contains(t, doc.Text, "attention")
	assert.Equal(t, 1, doc.PageCount)
	assert.False(t, doc.Truncated)
}

func TestPDFTextExtractorTruncatesLongDocuments(t *testing.T) {
	workspace := t.TempDir()
	source := filepath.Join(workspace, "paper.pdf")
	test.WriteTestPDF(t, source, strings.Repeat("attention is all you need ", 20))

	const limit = 40
	cmd := commands.NewPDFTextExtractor("extract-pdf-text", limit)
	ctx := newCommandContext(workspace)
	ctx.Add(cor.CtxIn, source)
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())

	// Head-first truncation: exactly the first `limit` runes survive.
	doc := ctx.Get(cor.CtxOut).(*model.SourceDocument)
	assert.True(t, doc.Truncated)
	assert.Equal(t, limit, len([]rune(doc.Text)))
}

func TestPDFTextExtractorZeroLimitDisablesTruncation(t *testing.T) {
	workspace := t.TempDir()
	source := filepath.Join(workspace, "paper.pdf")
	test.WriteTestPDF(t, source, strings.Repeat("attention is all you need ", 20))

	cmd := commands.NewPDFTextExtractor("extract-pdf-text", 0)
	ctx := newCommandContext(workspace)
	ctx.Add(cor.CtxIn, source)
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.False(t, ctx.Get(cor.CtxOut).(*model.SourceDocument).Truncated)
}

func TestPDFTextExtractorRejectsUnreadableFile(t *testing.T) {
	workspace := t.TempDir()
	source := filepath.Join(workspace, "not-a-paper.pdf")
	assert.NoError(t, os.WriteFile(source, []byte("plain text, no PDF structure"), 0o644))

	cmd := commands.NewPDFTextExtractor("extract-pdf-text", 60000)
	ctx := newCommandContext(workspace)
	ctx.Add(cor.CtxIn, source)
	cmd.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	var fetchErr *model.FetchError
	assert.True(t, errors.As(ctx.GetErrors()["extract-pdf-text"], &fetchErr))
	assert.Equal(t, source, fetchErr.Source)
}
