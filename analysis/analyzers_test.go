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
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-dfcov/analysis/config"
	"github.com/awslabs/ar-dfcov/analysis/coverage"
	"github.com/awslabs/ar-dfcov/analysis/dataflow"
	"github.com/awslabs/ar-dfcov/analysis/interproc"
	"github.com/awslabs/ar-dfcov/analysis/jvm"
	"github.com/awslabs/ar-dfcov/internal/analysistest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, opts ...func(*config.Config)) *Context {
	t.Helper()
	cfg := config.NewDefault()
	for _, o := range opts {
		o(cfg)
	}
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	return NewContext(cfg, logger, nil)
}

func local(class, method string, slot int, name, desc string, insn, line int, def bool) dataflow.Variable {
	return dataflow.Variable{Class: class, Method: method, Slot: slot, Name: name, Descriptor: desc, Insn: insn,
		Line: line, IsDefinition: def}
}

func TestAnalyzeClassInterprocedural(t *testing.T) {
	c := newTestContext(t)
	res := AnalyzeClass(c, analysistest.LoadClass(t, "bar.yaml"))
	require.NoError(t, res.Err)
	assert.Empty(t, res.Uninstrumentable)
	require.Len(t, res.Methods, 4)
	require.NotNil(t, res.Interproc)

	foo, ok := res.Method("foo()V")
	require.True(t, ok)
	b6 := local("Bar", "foo()V", 0, "b", "LBar;", 6, 14, true)
	b7 := local("Bar", "foo()V", 0, "b", "LBar;", 7, 15, false)
	found := false
	for _, p := range foo.Pairs {
		found = found || (p.Def == b6 && p.Use == b7)
	}
	assert.True(t, found, "the call to the impure set(I)V should redefine b")
	assert.Len(t, foo.Derived, 2)
	assert.Len(t, foo.AllPairs(), len(foo.Pairs)+2)
	assert.Equal(t, 3, foo.Stats.Calls)
	assert.Greater(t, foo.ReachStats.Iterations, 0)
}

func TestAnalyzeClassSkipInterprocedural(t *testing.T) {
	c := newTestContext(t, func(cfg *config.Config) { cfg.SkipInterprocedural = true })
	res := AnalyzeClass(c, analysistest.LoadClass(t, "bar.yaml"))
	assert.Nil(t, res.Interproc)
	assert.Nil(t, res.SuperGraph)
	for _, m := range res.Methods {
		assert.Empty(t, m.Derived)
	}
}

func TestCoverageThroughCalls(t *testing.T) {
	c := newTestContext(t)
	_, err := coverage.ReadObservations(analysistest.OpenLog(t, "calc_run.log"), c.Store)
	require.NoError(t, err)
	res := AnalyzeClass(c, analysistest.LoadClass(t, "calc.yaml"))

	run, _ := res.Method("run()I")
	require.Len(t, run.Derived, 2)
	for _, p := range run.Derived {
		assert.True(t, p.Covered(), "%s should be covered", p)
	}

	// twice has no observation of its own: its parameter is observed through the call in run
	twice, _ := res.Method("twice(I)I")
	a := local("Calc", "twice(I)I", 0, "a", "I", dataflow.EntryInsn, dataflow.EntryInsn, true)
	assert.Contains(t, twice.Covered, a)
	assert.Len(t, twice.Uncovered, 2)
	for _, p := range twice.Pairs {
		assert.False(t, p.Covered())
	}

	s := Statistics([]*ClassResult{res})
	assert.Equal(t, Summary{Classes: 1, Methods: 3, Nodes: s.Nodes, Edges: s.Edges, Pairs: 8, CoveredPairs: 3,
		DerivedPairs: 2, Matches: 2, Cycles: 1}, s)
	assert.InDelta(t, 3.0/8.0, s.PairCoverage(), 1e-9)
}

func TestCoverageIsMonotone(t *testing.T) {
	c := newTestContext(t)
	_, err := coverage.ReadObservations(analysistest.OpenLog(t, "calc_run.log"), c.Store)
	require.NoError(t, err)
	res := AnalyzeClass(c, analysistest.LoadClass(t, "calc.yaml"))
	assert.Equal(t, 3, res.UpdateCoverage(coverage.NewStore(1)))
}

func TestAnalyzeClassUninstrumentable(t *testing.T) {
	c := newTestContext(t)
	res := AnalyzeClass(c, analysistest.LoadClass(t, "broken.yaml"))
	require.Len(t, res.Uninstrumentable, 2)
	assert.Equal(t, "dangling()V", res.Uninstrumentable[0].Method)
	assert.ErrorIs(t, res.Uninstrumentable[0], dataflow.ErrMissingNode)
	assert.Equal(t, "short()V", res.Uninstrumentable[1].Method)
	assert.ErrorIs(t, res.Uninstrumentable[1], interproc.ErrShortArgumentChain)

	var ids []string
	for _, m := range res.Methods {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"fine(I)I", "take(II)V"}, ids)
}

func TestAnalyzeProgram(t *testing.T) {
	c := newTestContext(t, func(cfg *config.Config) { cfg.Workers = 2 })
	var classes []jvm.Class
	for _, f := range []string{"simple.yaml", "bar.yaml", "calc.yaml", "broken.yaml"} {
		classes = append(classes, analysistest.LoadClasses(t, f)...)
	}
	results, err := AnalyzeProgram(context.Background(), c, classes)
	require.NoError(t, err)
	require.Len(t, results, len(classes))
	for i, r := range results {
		assert.Equal(t, classes[i].Name, r.Class)
	}
	errs := c.Err()
	assert.True(t, errors.Is(errs, dataflow.ErrMissingNode))
	assert.True(t, errors.Is(errs, interproc.ErrShortArgumentChain))
}

func TestAnalyzeProgramCancelled(t *testing.T) {
	c := newTestContext(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := AnalyzeProgram(ctx, c, analysistest.LoadClasses(t, "bar.yaml"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContextErrors(t *testing.T) {
	c := newTestContext(t)
	assert.NoError(t, c.Err())
	assert.NoError(t, c.CheckError())
	e := errors.New("boom")
	c.AddError(e)
	c.AddError(nil)
	assert.ErrorIs(t, c.Err(), e)
	assert.Equal(t, e, c.CheckError())
	assert.NoError(t, c.CheckError())
}

func TestContextLoad(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, jvm.WriteClasses(&buf, analysistest.LoadClasses(t, "calc.yaml"), jvm.FormatJSON))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.json"), buf.Bytes(), 0o600))
	logBytes, err := io.ReadAll(analysistest.OpenLog(t, "calc_run.log"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.log"), logBytes, 0o600))
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("classes: [calc.json]\nobservations: [run.log]\n"), 0o600))

	cfg, err := config.Load(cfgFile)
	require.NoError(t, err)
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	c := NewContext(cfg, logger, nil)

	classes, err := c.LoadClasses()
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "Calc", classes[0].Name)
	n, err := c.LoadObservations()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, c.Store.Len())

	cfg.Observations = []string{"missing.log"}
	_, err = c.LoadObservations()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReport(t *testing.T) {
	c := newTestContext(t)
	_, err := coverage.ReadObservations(analysistest.OpenLog(t, "calc_run.log"), c.Store)
	require.NoError(t, err)
	results := []*ClassResult{
		AnalyzeClass(c, analysistest.LoadClass(t, "calc.yaml")),
		AnalyzeClass(c, analysistest.LoadClass(t, "broken.yaml")),
	}
	report := NewReport(results)
	require.Len(t, report.Classes, 2)
	calc := report.Classes[0]
	assert.Equal(t, [][]string{{"fact(I)I", "fact(I)I"}}, calc.Cycles)
	require.Len(t, calc.Methods, 3)
	run := calc.Methods[1]
	assert.Equal(t, "run()I", run.Method)
	assert.Equal(t, 3, run.CoveredPairs)
	assert.Len(t, run.Pairs, 3)
	assert.Contains(t, report.Classes[1].Uninstrumentable, "short()V")

	for _, format := range []jvm.Format{jvm.FormatYAML, jvm.FormatJSON, jvm.FormatMsgpack} {
		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, report, format), format.String())
		back, err := ReadReport(&buf, format)
		require.NoError(t, err, format.String())
		assert.Equal(t, report.Summary, back.Summary, format.String())
		assert.Equal(t, report.Classes[0].Methods[1].Pairs, back.Classes[0].Methods[1].Pairs, format.String())
	}
}
