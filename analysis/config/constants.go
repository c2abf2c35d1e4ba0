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

package config

const (
	// DefaultWorkers is the default number of classes analyzed concurrently
	DefaultWorkers = 4
	// DefaultObservationShards is the default number of shards of the observation store
	DefaultObservationShards = 16
)

// DefaultPrimitiveDescriptors lists the descriptors of argument types that are not redefined at calls to impure
// methods. L is kept for compatibility with existing coverage reports.
var DefaultPrimitiveDescriptors = []string{"I", "D", "F", "L", "Ljava/lang/String;"}
