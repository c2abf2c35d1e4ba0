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

import (
	"fmt"
	"io"

	"github.com/awslabs/ar-dfcov/analysis/dataflow"
	"github.com/awslabs/ar-dfcov/analysis/interproc"
	"github.com/awslabs/ar-dfcov/analysis/jvm"
	"github.com/awslabs/ar-dfcov/internal/funcutil"
	jsoniter "github.com/json-iterator/go"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// VariableReport is the report view of a variable. Parameter definitions have instruction and line -1.
type VariableReport struct {
	Class     string `yaml:"class" json:"class" msgpack:"class"`
	Method    string `yaml:"method" json:"method" msgpack:"method"`
	Name      string `yaml:"name" json:"name" msgpack:"name"`
	Type      string `yaml:"type" json:"type" msgpack:"type"`
	Slot      int    `yaml:"slot" json:"slot" msgpack:"slot"`
	Insn      int    `yaml:"insn" json:"insn" msgpack:"insn"`
	Line      int    `yaml:"line" json:"line" msgpack:"line"`
	Parameter bool   `yaml:"parameter,omitempty" json:"parameter,omitempty" msgpack:"parameter,omitempty"`
	Field     bool   `yaml:"field,omitempty" json:"field,omitempty" msgpack:"field,omitempty"`
}

func newVariableReport(v dataflow.Variable) VariableReport {
	r := VariableReport{
		Class:     v.Class,
		Method:    v.Method,
		Name:      v.Name,
		Type:      v.Descriptor,
		Slot:      v.Slot,
		Insn:      v.Insn,
		Line:      v.Line,
		Parameter: v.IsParameter(),
		Field:     v.IsField,
	}
	if r.Parameter {
		r.Insn, r.Line = -1, -1
	}
	return r
}

// PairReport is the report view of a DU-pair
type PairReport struct {
	Def         VariableReport `yaml:"def" json:"def" msgpack:"def"`
	Use         VariableReport `yaml:"use" json:"use" msgpack:"use"`
	Covered     bool           `yaml:"covered" json:"covered" msgpack:"covered"`
	CrossMethod bool           `yaml:"cross-method,omitempty" json:"cross-method,omitempty" msgpack:"cross-method,omitempty"`
}

// MatchReport is the report view of an inter-procedural match
type MatchReport struct {
	Caller    string          `yaml:"caller" json:"caller" msgpack:"caller"`
	Callee    string          `yaml:"callee" json:"callee" msgpack:"callee"`
	CallSite  int             `yaml:"call-site" json:"call-site" msgpack:"call-site"`
	Position  int             `yaml:"position" json:"position" msgpack:"position"`
	CallerUse *VariableReport `yaml:"caller-use,omitempty" json:"caller-use,omitempty" msgpack:"caller-use,omitempty"`
	CalleeDef VariableReport  `yaml:"callee-def" json:"callee-def" msgpack:"callee-def"`
	Constant  bool            `yaml:"constant,omitempty" json:"constant,omitempty" msgpack:"constant,omitempty"`
}

// MethodReport is the report of a method
type MethodReport struct {
	Method       string           `yaml:"method" json:"method" msgpack:"method"`
	Pairs        []PairReport     `yaml:"pairs" json:"pairs" msgpack:"pairs"`
	CoveredPairs int              `yaml:"covered-pairs" json:"covered-pairs" msgpack:"covered-pairs"`
	Covered      []VariableReport `yaml:"covered" json:"covered" msgpack:"covered"`
	Uncovered    []VariableReport `yaml:"uncovered" json:"uncovered" msgpack:"uncovered"`
	Stats        dataflow.Stats   `yaml:"stats" json:"stats" msgpack:"stats"`
}

// ClassReport is the report of a class
type ClassReport struct {
	Class            string            `yaml:"class" json:"class" msgpack:"class"`
	Source           string            `yaml:"source,omitempty" json:"source,omitempty" msgpack:"source,omitempty"`
	Methods          []MethodReport    `yaml:"methods" json:"methods" msgpack:"methods"`
	Matches          []MatchReport     `yaml:"matches,omitempty" json:"matches,omitempty" msgpack:"matches,omitempty"`
	Cycles           [][]string        `yaml:"cycles,omitempty" json:"cycles,omitempty" msgpack:"cycles,omitempty"`
	Uninstrumentable map[string]string `yaml:"uninstrumentable,omitempty" json:"uninstrumentable,omitempty" msgpack:"uninstrumentable,omitempty"`
	Error            string            `yaml:"error,omitempty" json:"error,omitempty" msgpack:"error,omitempty"`
}

// Report is the coverage report of a run
type Report struct {
	Summary Summary       `yaml:"summary" json:"summary" msgpack:"summary"`
	Classes []ClassReport `yaml:"classes" json:"classes" msgpack:"classes"`
}

// NewReport returns the report of the results
func NewReport(results []*ClassResult) *Report {
	r := &Report{Summary: Statistics(results)}
	for _, cr := range results {
		r.Classes = append(r.Classes, newClassReport(cr))
	}
	return r
}

func newClassReport(cr *ClassResult) ClassReport {
	rep := ClassReport{Class: cr.Class, Source: cr.Source}
	if cr.Err != nil {
		rep.Error = cr.Err.Error()
	}
	for _, m := range cr.Methods {
		rep.Methods = append(rep.Methods, newMethodReport(m))
	}
	if cr.Interproc != nil {
		rep.Matches = funcutil.Map(cr.Interproc.Matches, newMatchReport)
		rep.Cycles = cr.Interproc.Cycles
	}
	if len(cr.Uninstrumentable) > 0 {
		rep.Uninstrumentable = map[string]string{}
		for _, e := range cr.Uninstrumentable {
			rep.Uninstrumentable[e.Method] = e.Err.Error()
		}
	}
	return rep
}

func newMethodReport(m *MethodResult) MethodReport {
	rep := MethodReport{
		Method:    m.ID,
		Covered:   funcutil.Map(m.Covered, newVariableReport),
		Uncovered: funcutil.Map(m.Uncovered, newVariableReport),
		Stats:     m.Stats,
	}
	for _, p := range m.AllPairs() {
		covered := p.Covered()
		if covered {
			rep.CoveredPairs++
		}
		rep.Pairs = append(rep.Pairs, PairReport{
			Def:         newVariableReport(p.Def),
			Use:         newVariableReport(p.Use),
			Covered:     covered,
			CrossMethod: p.IsCrossMethod(),
		})
	}
	return rep
}

func newMatchReport(m interproc.Match) MatchReport {
	rep := MatchReport{
		Caller:    m.Caller,
		Callee:    m.Callee,
		CallSite:  m.CallSite.Insn,
		Position:  m.Position,
		CalleeDef: newVariableReport(m.CalleeDef),
		Constant:  m.Constant,
	}
	if !m.Constant {
		u := newVariableReport(m.CallerUse)
		rep.CallerUse = &u
	}
	return rep
}

// WriteReport encodes the report to w in the given format
func WriteReport(w io.Writer, r *Report, format jvm.Format) error {
	switch format {
	case jvm.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(r)
	case jvm.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case jvm.FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(r)
	}
	return fmt.Errorf("unsupported report format %s", format)
}

// ReadReport decodes a report written by WriteReport
func ReadReport(rd io.Reader, format jvm.Format) (*Report, error) {
	r := &Report{}
	var err error
	switch format {
	case jvm.FormatYAML:
		err = yaml.NewDecoder(rd).Decode(r)
	case jvm.FormatJSON:
		err = json.NewDecoder(rd).Decode(r)
	case jvm.FormatMsgpack:
		err = msgpack.NewDecoder(rd).Decode(r)
	default:
		err = fmt.Errorf("unsupported report format %s", format)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}
