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

// Package analysistest provides the decoded classes and observation logs shared by the tests of the analysis
// packages.
package analysistest

import (
	"bytes"
	"embed"
	"io"
	"path"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/awslabs/ar-dfcov/analysis/jvm"
)

//go:embed testdata
var testfsys embed.FS

// LoadClasses loads the classes of the yaml fixture file name (e.g. "bar.yaml")
func LoadClasses(t *testing.T, name string) []jvm.Class {
	t.Helper()
	b, err := testfsys.ReadFile(path.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	classes, err := jvm.ReadClasses(bytes.NewReader(b), jvm.FormatYAML)
	if err != nil {
		t.Fatalf("failed to decode fixture %s: %v", name, err)
	}
	return classes
}

// LoadClass loads the first class of the fixture file name
func LoadClass(t *testing.T, name string) jvm.Class {
	t.Helper()
	classes := LoadClasses(t, name)
	if len(classes) == 0 {
		t.Fatalf("fixture %s has no class", name)
	}
	return classes[0]
}

// LoadMethod returns the method with the given id (name and descriptor) of the first class in the fixture file
func LoadMethod(t *testing.T, name string, id string) (jvm.Class, jvm.Method) {
	t.Helper()
	c := LoadClass(t, name)
	m, ok := c.Method(id)
	if !ok {
		t.Fatalf("fixture %s has no method %s in class %s", name, id, c.Name)
	}
	return c, m
}

// OpenLog returns a reader of the observation log fixture name
func OpenLog(t *testing.T, name string) io.Reader {
	t.Helper()
	b, err := testfsys.ReadFile(path.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return bytes.NewReader(b)
}

// Path returns the path on disk of a fixture. Tests of the command line tool use it to pass files by name.
func Path(elem ...string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(append([]string{filepath.Dir(file), "testdata"}, elem...)...)
}
