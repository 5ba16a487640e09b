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
// command that materializes the source document as a local PDF file.
//
// Logic Flow:
// The pipeline accepts either an http(s) URL or a local filesystem path as
// the document source. Either way, downstream extraction wants a verified
// local PDF inside the run workspace.
//
//  1. Receives the source string from the context.
//  2. For URLs: downloads the document with a bounded timeout, streaming the
//     response body straight to disk. A non-200 status is a fetch failure.
//     The download is a single attempt; a flaky network surfaces to the
//     operator rather than stalling the run on retries.
//  3. For local paths: copies the file into the workspace so the run never
//     mutates or depends on files outside its own scratch directory.
//  4. Sniffs the resulting file's magic bytes and rejects anything that is
//     not a PDF, so a 200-OK HTML error page or a mislabeled file fails
//     here with a clear message instead of deep inside text extraction.
//  5. Places the local PDF path into the context for the extractor.
//
// All failures are wrapped in model.FetchError: this stage is fatal, there is
// no degraded output to produce without a source document.
package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anayrshukla/manim-video-generation/internal/core/cor"
	"github.com/anayrshukla/manim-video-generation/internal/core/model"
	"github.com/h2non/filetype"
)

// PDFFetch is a command that resolves the document source to a local PDF file.
type PDFFetch struct {
	cor.BaseCommand
	client *http.Client // The HTTP client used for URL sources, with the fetch timeout applied.
}

// NewPDFFetch is the constructor for the PDFFetch command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - timeout: The bound on the whole download, connection included.
//
// Outputs:
//   - *PDFFetch: A pointer to the newly instantiated command.
func NewPDFFetch(name string, timeout time.Duration) *PDFFetch {
	return &PDFFetch{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      &http.Client{Timeout: timeout},
	}
}

// IsExecutable checks that the source string and the run workspace are present.
func (c *PDFFetch) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(c.GetInputParam()) != nil &&
		context.Get(GetWorkspaceParamName()) != nil
}

// Execute resolves the source to a verified local PDF in the workspace.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *PDFFetch) Execute(context cor.Context) {
	source := context.Get(c.GetInputParam()).(string)
	workspace := context.Get(GetWorkspaceParamName()).(string)

	localPath := filepath.Join(workspace, "source.pdf")

	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		err = c.download(context, source, localPath)
	} else {
		err = copyFile(source, localPath)
	}
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.FetchError{Source: source, Err: err})
		return
	}

	if err := verifyPDF(localPath); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.FetchError{Source: source, Err: err})
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), localPath)
}

// download streams the URL's body into dest.
func (c *PDFFetch) download(context cor.Context, url string, dest string) error {
	req, err := http.NewRequestWithContext(context.GetContext(), http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return out.Close()
}

// copyFile copies a local source document into the workspace.
func copyFile(src string, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return out.Close()
}

// verifyPDF sniffs the file header and rejects anything that is not a PDF.
func verifyPDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file header: %w", err)
	}

	kind, _ := filetype.Match(head[:n])
	if kind.Extension != "pdf" {
		return fmt.Errorf("source is not a PDF (detected %q)", kind.Extension)
	}
	return nil
}
