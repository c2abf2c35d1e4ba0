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

// Package render implements a tool for rendering the control-flow graphs and the super graphs of classes in the
// graphviz DOT format.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-dfcov/analysis"
	"github.com/awslabs/ar-dfcov/analysis/dataflow"
	"github.com/awslabs/ar-dfcov/analysis/interproc"
	"github.com/awslabs/ar-dfcov/cmd/dfcov/tools"
	"github.com/awslabs/ar-dfcov/internal/formatutil"
	"github.com/awslabs/ar-dfcov/internal/funcutil"
)

// Usage of the render sub-command
const Usage = `Render the control-flow graphs or the super graph of classes.
Usage:
  dfcov render [options] <class file(s)>
Examples:
Render the CFG of one method
  % dfcov render -method 'run()I' -o run.dot Calc.yaml
Render the super graph of every class
  % dfcov render -super Calc.yaml Bar.yaml
`

// Flags represents the parsed render sub-command flags.
type Flags struct {
	tools.CommonFlags
	method string
	super  bool
	output string
}

// NewFlags returns the parsed render sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("render")
	method := flags.FlagSet.String("method", "", "id of the method to render, e.g. run()I (all methods if not specified)")
	super := flags.FlagSet.Bool("super", false, "render the super graph of each class instead of the CFGs")
	output := flags.FlagSet.String("o", "", "output file (standard output if not specified)")
	tools.SetUsage(flags.FlagSet, Usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command render with args %v: %v", args, err)
	}

	return Flags{
		CommonFlags: flags.Parsed(),
		method:      *method,
		super:       *super,
		output:      *output,
	}, nil
}

// Run renders the graphs of the classes
func Run(flags Flags) error {
	c, classes, err := tools.Setup(flags.CommonFlags, flags.FlagSet.Args(), nil, os.Stderr)
	if err != nil {
		return err
	}
	w, closeOutput, err := tools.CreateOutput(flags.output)
	if err != nil {
		return err
	}
	rendered := 0
	for _, class := range classes {
		res := analysis.AnalyzeClass(c, class)
		n, err := renderClass(w, res, flags)
		rendered += n
		if err != nil {
			closeOutput()
			return err
		}
	}
	if err := closeOutput(); err != nil {
		return err
	}
	if rendered == 0 {
		return fmt.Errorf("nothing to render")
	}
	fmt.Fprintf(os.Stderr, formatutil.Faint(fmt.Sprintf("Rendered %d graphs", rendered))+"\n")
	return nil
}

func renderClass(w io.Writer, res *analysis.ClassResult, flags Flags) (int, error) {
	if flags.super {
		sg := res.SuperGraph
		if sg == nil {
			sg = interproc.NewSuperGraph(res.Class,
				funcutil.Map(res.Methods, func(m *analysis.MethodResult) *dataflow.CFG { return m.CFG }))
		}
		return 1, sg.WriteDOT(w)
	}
	n := 0
	for _, m := range res.Methods {
		if flags.method != "" && m.ID != flags.method {
			continue
		}
		if err := dataflow.WriteDOT(w, m.CFG); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
