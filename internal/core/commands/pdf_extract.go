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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that extracts plain text from the fetched PDF.
//
// Logic Flow:
//  1. Receives the local PDF path from the context.
//  2. Reads the document's plain text and page count.
//  3. Truncates the text head-first to the configured rune limit, so the
//     planner prompt stays inside the model's context window. Papers front-
//     load their contribution (abstract, introduction), so the head is the
//     highest-signal slice to keep.
//  4. Places a model.SourceDocument into the context for the planner.
//
// A PDF that yields no extractable text (a pure image scan, for example) is a
// fatal failure: there is nothing to summarize.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/ledongthuc/pdf"
)

// PDFTextExtractor is a command that turns a local PDF file into plain text.
type PDFTextExtractor struct {
	cor.BaseCommand
	truncationLimit int // Maximum number of runes of text passed downstream.
}

// NewPDFTextExtractor is the constructor for the PDFTextExtractor command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - truncationLimit: The rune cap applied to the extracted text.
//
// Outputs:
//   - *PDFTextExtractor: A pointer to the newly instantiated command.
func NewPDFTextExtractor(name string, truncationLimit int) *PDFTextExtractor {
	return &PDFTextExtractor{
		BaseCommand:     *cor.NewBaseCommand(name),
		truncationLimit: truncationLimit,
	}
}

// Execute reads the PDF and emits the (possibly truncated) document text.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *PDFTextExtractor) Execute(context cor.Context) {
	path := context.Get(c.GetInputParam()).(string)

	f, reader, err := pdf.Open(path)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.FetchError{Source: path, Err: fmt.Errorf("failed to open PDF: %w", err)})
		return
	}
	defer func() { _ = f.Close() }()

	textReader, err := reader.GetPlainText()
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.FetchError{Source: path, Err: fmt.Errorf("failed to extract text: %w", err)})
		return
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, textReader); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.FetchError{Source: path, Err: fmt.Errorf("failed to read extracted text: %w", err)})
		return
	}

	text := strings.TrimSpace(builder.String())
	if len(text) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.FetchError{Source: path, Err: fmt.Errorf("PDF contains no extractable text")})
		return
	}

	doc := &model.SourceDocument{
		Path:      path,
		Text:      text,
		PageCount: reader.NumPage(),
	}
	if runes := []rune(text); c.truncationLimit > 0 && len(runes) > c.truncationLimit {
		doc.Text = string(runes[:c.truncationLimit])
		doc.Truncated = true
		slog.Warn("document text truncated for planning",
			"source", path,
			"pages", doc.PageCount,
			"original_runes", len(runes),
			"kept_runes", c.truncationLimit)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), doc)
}
