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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-dfcov/analysis"
	"github.com/awslabs/ar-dfcov/cmd/dfcov/analyze"
	"github.com/awslabs/ar-dfcov/cmd/dfcov/render"
	"github.com/awslabs/ar-dfcov/cmd/dfcov/statistics"
	"github.com/awslabs/ar-dfcov/cmd/dfcov/tools"
)

const usage = `dfcov: def-use data-flow coverage
Usage:
  dfcov [tool] [options] <class file(s)>
Tools:
  - analyze: computes the DU-pairs of classes and their coverage by the observation logs
  - render: renders the control-flow graphs or the super graph of classes in the DOT format
  - statistics: prints statistics about the control-flow graphs and DU-pairs of classes
Examples:
  Compute the coverage: dfcov analyze -observations run.log Calc.yaml
  Use a config file: dfcov analyze -config dfcov.yaml`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "analyze":
		flags, err := analyze.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := analyze.Run(flags); err != nil {
			errExit(err)
		}
	case "render":
		flags, err := render.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := render.Run(flags); err != nil {
			errExit(err)
		}
	case "statistics":
		flags, err := statistics.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := statistics.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
