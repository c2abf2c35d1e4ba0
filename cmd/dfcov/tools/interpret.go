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

import "regexp"

// Captures errors happening before any analysis starts (config could not be read)
var regexCouldNotLoadConfig = regexp.MustCompile("failed to load config file")

// Captures the kind of error that happen when a class file has an extension that is not supported
var regexUnsupportedFormat = regexp.MustCompile("unsupported class file extension")

// Captures errors in observation logs
var regexMalformedObservation = regexp.MustCompile("malformed observation")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoadConfig.MatchString(errMsg) {
		return "check that the config file exists and is valid yaml; log-level must be between 1 and 5"
	}
	if regexUnsupportedFormat.MatchString(errMsg) {
		return "class files must have one of the extensions .yaml, .yml, .json, .msgpack or .mpk"
	}
	if regexMalformedObservation.MatchString(errMsg) {
		return "observation logs have one logfmt record per line with the keys class, method, name and insn"
	}
	return ""
}
