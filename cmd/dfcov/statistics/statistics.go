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

// Package statistics implements the front-end printing statistics about the control-flow graphs of classes.
package statistics

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-dfcov/analysis"
	"github.com/awslabs/ar-dfcov/analysis/dataflow"
	"github.com/awslabs/ar-dfcov/cmd/dfcov/tools"
	"github.com/awslabs/ar-dfcov/internal/formatutil"
	jsoniter "github.com/json-iterator/go"
)

// Usage of the statistics sub-command
const Usage = `Compute statistics about the control-flow graphs and DU-pairs of classes.

Usage:
  dfcov statistics [options] <class file(s)>

Use the -help flag to display the options.

Examples:
% dfcov statistics Calc.yaml
`

// Flags represents the flags for the statistics sub-tool.
type Flags struct {
	tools.CommonFlags
	outputJSON bool
	output     string
}

// NewFlags returns parsed flags for statistics.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("statistics")
	outputJSON := flags.FlagSet.Bool("json", false, "output results as JSON")
	output := flags.FlagSet.String("o", "", "output file (standard output if not specified)")
	tools.SetUsage(flags.FlagSet, Usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command statistics with args %v: %v", args, err)
	}

	return Flags{
		CommonFlags: flags.Parsed(),
		outputJSON:  *outputJSON,
		output:      *output,
	}, nil
}

// MethodStatistics are the statistics of one method
type MethodStatistics struct {
	Class  string         `json:"class"`
	Method string         `json:"method"`
	Stats  dataflow.Stats `json:"stats"`
	Pairs  int            `json:"pairs"`
	// Visits is the largest number of visits of a node by the reaching definitions fixed point
	Visits int `json:"visits"`
}

// Result is the output of the statistics sub-tool
type Result struct {
	Summary analysis.Summary   `json:"summary"`
	Methods []MethodStatistics `json:"methods"`
}

// Run runs the statistics analysis on the class files.
func Run(flags Flags) error {
	fmt.Fprintf(os.Stderr, formatutil.Faint("Reading classes")+"\n")
	c, classes, err := tools.Setup(flags.CommonFlags, flags.FlagSet.Args(), nil, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, formatutil.Faint("Analyzing")+"\n")
	results, err := analysis.AnalyzeProgram(context.Background(), c, classes)
	if err != nil {
		return err
	}
	result := Compute(results)

	w, closeOutput, err := tools.CreateOutput(flags.output)
	if err != nil {
		return err
	}
	if flags.outputJSON {
		err = jsoniter.NewEncoder(w).Encode(result)
	} else {
		Print(w, result)
	}
	if cerr := closeOutput(); err == nil {
		err = cerr
	}
	return err
}

// Compute returns the statistics of the results
func Compute(results []*analysis.ClassResult) Result {
	r := Result{Summary: analysis.Statistics(results)}
	for _, cr := range results {
		for _, m := range cr.Methods {
			r.Methods = append(r.Methods, MethodStatistics{
				Class:  cr.Class,
				Method: m.ID,
				Stats:  m.Stats,
				Pairs:  len(m.AllPairs()),
				Visits: m.ReachStats.MaxVisits(),
			})
		}
	}
	return r
}

// Print writes the statistics in a human readable form
func Print(w io.Writer, r Result) {
	for _, m := range r.Methods {
		fmt.Fprintf(w, "%s.%s: %d nodes, %d edges, %d calls, %d loops, %d pairs, %d max visits\n",
			m.Class, m.Method, m.Stats.Nodes, m.Stats.Edges, m.Stats.Calls, m.Stats.Loops, m.Pairs, m.Visits)
	}
	fmt.Fprintf(w, "Number of classes: %d\n", r.Summary.Classes)
	fmt.Fprintf(w, "Number of methods: %d\n", r.Summary.Methods)
	fmt.Fprintf(w, "Number of uninstrumentable methods: %d\n", r.Summary.Uninstrumentable)
	fmt.Fprintf(w, "Number of nodes: %d\n", r.Summary.Nodes)
	fmt.Fprintf(w, "Number of edges: %d\n", r.Summary.Edges)
	fmt.Fprintf(w, "Number of DU-pairs: %d (%d derived)\n", r.Summary.Pairs, r.Summary.DerivedPairs)
	fmt.Fprintf(w, "Number of matches: %d\n", r.Summary.Matches)
	fmt.Fprintf(w, "Number of call cycles: %d\n", r.Summary.Cycles)
}
