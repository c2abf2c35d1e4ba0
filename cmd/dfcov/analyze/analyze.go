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

// Package analyze implements the front-end of the def-use coverage analysis.
package analyze

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-dfcov/analysis"
	"github.com/awslabs/ar-dfcov/analysis/jvm"
	"github.com/awslabs/ar-dfcov/cmd/dfcov/tools"
	"github.com/awslabs/ar-dfcov/internal/formatutil"
)

// Usage of the analyze sub-command
const Usage = `Compute the def-use coverage of classes.
Usage:
  dfcov analyze [options] <class file(s)>
Class files are yaml, json or msgpack files produced by the class decoder.
Examples:
  % dfcov analyze -observations run.log -o report.yaml Calc.yaml
  % dfcov analyze -config dfcov.yaml -format json
`

// Flags represents the parsed analyze sub-command flags.
type Flags struct {
	tools.CommonFlags
	output       string
	format       string
	observations []string
}

// NewFlags returns the parsed analyze sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("analyze")
	output := flags.FlagSet.String("o", "", "output file for the report (standard output if not specified)")
	format := flags.FlagSet.String("format", "", "report format: yaml, json or msgpack (from the output extension "+
		"if not specified, yaml otherwise)")
	var observations tools.Paths
	flags.FlagSet.Var(&observations, "observations", "observation log (can be repeated)")
	tools.SetUsage(flags.FlagSet, Usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command analyze with args %v: %v", args, err)
	}

	return Flags{
		CommonFlags:  flags.Parsed(),
		output:       *output,
		format:       *format,
		observations: observations,
	}, nil
}

// ReportFormat returns the format of the report
func (f Flags) ReportFormat() (jvm.Format, error) {
	switch f.format {
	case "yaml":
		return jvm.FormatYAML, nil
	case "json":
		return jvm.FormatJSON, nil
	case "msgpack":
		return jvm.FormatMsgpack, nil
	case "":
		if f.output == "" {
			return jvm.FormatYAML, nil
		}
		return jvm.FormatOf(f.output)
	}
	return 0, fmt.Errorf("unsupported report format %q", f.format)
}

// Run runs the analysis and writes the report
func Run(flags Flags) error {
	format, err := flags.ReportFormat()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, formatutil.Faint("Reading classes and observations")+"\n")
	c, classes, err := tools.Setup(flags.CommonFlags, flags.FlagSet.Args(), flags.observations, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, formatutil.Faint("Analyzing")+"\n")
	results, err := analysis.AnalyzeProgram(context.Background(), c, classes)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	report := analysis.NewReport(results)

	w, closeOutput, err := tools.CreateOutput(flags.output)
	if err != nil {
		return err
	}
	if err := analysis.WriteReport(w, report, format); err != nil {
		closeOutput()
		return fmt.Errorf("could not write report: %w", err)
	}
	if err := closeOutput(); err != nil {
		return err
	}
	PrintSummary(os.Stderr, report)
	return nil
}

// PrintSummary prints the coverage of every method of the report and the totals
func PrintSummary(w io.Writer, report *analysis.Report) {
	for _, class := range report.Classes {
		if class.Error != "" {
			fmt.Fprintf(w, "%s: %s\n", formatutil.Bold(class.Class), formatutil.Red(class.Error))
			continue
		}
		fmt.Fprintf(w, "%s\n", formatutil.Bold(class.Class))
		for _, m := range class.Methods {
			fmt.Fprintf(w, "  %-40s %s\n", m.Method, formatutil.Ratio(m.CoveredPairs, len(m.Pairs)))
		}
		for m, e := range class.Uninstrumentable {
			fmt.Fprintf(w, "  %-40s %s\n", m, formatutil.Yellow("uninstrumentable: "+e))
		}
	}
	s := report.Summary
	fmt.Fprintf(w, "%d classes, %d methods, %d uninstrumentable, pairs covered: %s\n", s.Classes, s.Methods,
		s.Uninstrumentable, formatutil.Ratio(s.CoveredPairs, s.Pairs))
}
