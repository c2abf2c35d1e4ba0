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

/*
Package config provides a simple way to manage configuration files of the def-use coverage analysis.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type. For example, a valid config file is as follows:

	options:
	  log-level: 4
	  workers: 8
	  model-impure-calls: true
	  primitive-descriptors: ["I", "J", "Ljava/lang/String;"]
	classes:
	  - classes/Bar.yaml
	observations:
	  - hits.log

Paths are relative to the directory of the config file.

# Impure calls

When model-impure-calls is set, a call to a method of the class that writes a field or an array element (directly or
through its own callees) is modeled as a new definition of each argument whose type descriptor is not listed in
primitive-descriptors. This approximates side effects and may over-approximate or under-approximate them.
*/
package config
