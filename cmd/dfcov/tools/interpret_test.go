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

package tools

import (
	"strings"
	"testing"
)

func validateHint(t *testing.T, errorMsg string, containedHint string) {
	hint := HintForErrorMessage(errorMsg)
	if !strings.Contains(hint, containedHint) {
		t.Fatalf("incorrect hint; check and update error message if necessary")
	}
}

func TestHintForConfig(t *testing.T) {
	errorMsg := "error: failed to load config file dfcov.yaml: could not read config file: no such file"
	validateHint(t, errorMsg, "log-level must be between 1 and 5")
}

func TestHintForClassFormat(t *testing.T) {
	errorMsg := "error: could not load classes: unsupported class file extension \".class\""
	validateHint(t, errorMsg, "one of the extensions")
}

func TestHintForObservations(t *testing.T) {
	errorMsg := "error: could not read observations: run.log: line 3: malformed observation: missing insn"
	validateHint(t, errorMsg, "one logfmt record per line")
}

func TestNoHint(t *testing.T) {
	if hint := HintForErrorMessage("error: something else"); hint != "" {
		t.Fatalf("expected no hint, got %q", hint)
	}
}
