// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/ar-dfcov/internal/analysistest"
)

func runRender(t *testing.T, args ...string) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out.dot")
	flags, err := NewFlags(append([]string{"-o", out}, args...))
	if err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	if err := Run(flags); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return string(b)
}

func TestRenderMethod(t *testing.T) {
	out := runRender(t, "-method", "run()I", analysistest.Path("calc.yaml"))
	if n := strings.Count(out, "digraph"); n != 1 {
		t.Errorf("expected one graph, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, "run") {
		t.Errorf("expected the graph of run:\n%s", out)
	}
}

func TestRenderAllMethods(t *testing.T) {
	out := runRender(t, analysistest.Path("calc.yaml"))
	if n := strings.Count(out, "digraph"); n != 3 {
		t.Errorf("expected three graphs, got %d", n)
	}
}

func TestRenderSuperGraph(t *testing.T) {
	out := runRender(t, "-super", analysistest.Path("bar.yaml"))
	if n := strings.Count(out, "digraph"); n != 1 {
		t.Errorf("expected one graph, got %d", n)
	}
	if !strings.Contains(out, "darkgreen") {
		t.Errorf("expected return edges in the super graph:\n%s", out)
	}
}

func TestRenderNothing(t *testing.T) {
	flags, err := NewFlags([]string{"-o", filepath.Join(t.TempDir(), "out.dot"), "-method", "missing()V",
		analysistest.Path("calc.yaml")})
	if err != nil {
		t.Fatal(err)
	}
	if err := Run(flags); err == nil {
		t.Errorf("expected an error when no method matches")
	}
}
