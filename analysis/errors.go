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

package analysis

import "fmt"

// UninstrumentableError is the error reported for a method whose analysis was abandoned
type UninstrumentableError struct {
	Class  string
	Method string
	Err    error
}

func (e *UninstrumentableError) Error() string {
	return fmt.Sprintf("%s.%s is uninstrumentable: %v", e.Class, e.Method, e.Err)
}

func (e *UninstrumentableError) Unwrap() error {
	return e.Err
}
