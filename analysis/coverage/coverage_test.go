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

package coverage

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/awslabs/ar-dfcov/analysis/dataflow"
	"github.com/awslabs/ar-dfcov/internal/analysistest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variable(method, name string, slot, insn, line int, def bool) dataflow.Variable {
	return dataflow.Variable{Class: "Calc", Method: method, Slot: slot, Name: name, Descriptor: "I", Insn: insn,
		Line: line, IsDefinition: def}
}

func TestStoreObserve(t *testing.T) {
	s := NewStore(3)
	assert.Len(t, s.shards, 4)

	x1 := variable("run()I", "x", 0, 1, 6, true)
	x2 := variable("run()I", "x", 0, 2, 7, false)
	assert.False(t, s.Observed(x1))
	assert.True(t, s.ObserveVariable(x1))
	assert.False(t, s.ObserveVariable(x1), "a second insert is a no-op")
	assert.True(t, s.Observed(x1))
	assert.False(t, s.Observed(x2))
	// a use is not a definition
	use := x1
	use.IsDefinition = false
	assert.False(t, s.Observed(use))
	assert.Equal(t, 1, s.Len())

	p := variable("run()I", "x", 0, dataflow.EntryInsn, dataflow.EntryInsn, true)
	assert.True(t, s.ObservedParameter(p))
	assert.False(t, s.ObservedParameter(variable("twice(I)I", "x", 0, dataflow.EntryInsn, dataflow.EntryInsn, true)))
	assert.True(t, dataflow.IsObserved(s, p))
}

func TestStoreConcurrentObserve(t *testing.T) {
	s := NewStore(8)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Observe(Observation{Class: "C", Method: fmt.Sprintf("m%d()V", i%10), Name: "v", Insn: i, Line: i})
				s.Observed(variable("m0()V", "v", 0, 0, 0, false))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, s.Len())
	assert.Len(t, s.Observations(), 100)
}

func TestStoreMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	s := NewStore(1)
	s.SetMetrics(m)
	o := Observation{Class: "C", Method: "m()V", Name: "v", Insn: 1, IsDefinition: true}
	s.Observe(o)
	s.Observe(o)
	o.IsDefinition = false
	s.Observe(o)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.observations.WithLabelValues("def")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.observations.WithLabelValues("use")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.duplicates))
}

func TestReadObservations(t *testing.T) {
	s := NewStore(4)
	n, err := ReadObservations(analysistest.OpenLog(t, "calc_run.log"), s)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, s.Observed(variable("run()I", "x", 0, 1, 6, true)))
	assert.True(t, s.Observed(variable("run()I", "x", 0, 2, 7, false)))

	obs := s.Observations()
	require.Len(t, obs, 2)
	assert.Equal(t, Observation{Class: "Calc", Method: "run()I", Name: "x", Slot: 0, Insn: 1, Line: 6,
		IsDefinition: true}, obs[0])
}

func TestReadObservationsErrors(t *testing.T) {
	tests := []struct {
		name string
		log  string
	}{
		{"bad int", "class=C method=m()V name=x insn=oops"},
		{"bad bool", "class=C method=m()V name=x insn=1 def=maybe"},
		{"missing name", "class=C method=m()V insn=1"},
		{"syntax", "class=C method=\"m()V name=x insn=1"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadObservations(strings.NewReader("\n"+test.log+"\n"), NewStore(1))
			assert.ErrorIs(t, err, ErrMalformedObservation)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestWriteObservations(t *testing.T) {
	s := NewStore(2)
	_, err := ReadObservations(analysistest.OpenLog(t, "calc_run.log"), s)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteObservations(&buf, s.Observations()))
	assert.Equal(t, "class=Calc method=run()I name=x slot=0 insn=1 line=6 def=true\n"+
		"class=Calc method=run()I name=x slot=0 insn=2 line=7 def=false\n", buf.String())

	again := NewStore(2)
	n, err := ReadObservations(&buf, again)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, s.Observations(), again.Observations())
}

func TestStoreCoversPairs(t *testing.T) {
	c, m := analysistest.LoadMethod(t, "simple.yaml", "identity(I)I")
	g, err := dataflow.BuildCFG(c.Name, m, dataflow.NewDomain(c.Name))
	require.NoError(t, err)
	dataflow.ReachingDefinitions(g)
	pairs := dataflow.DefUsePairs(g)
	require.Len(t, pairs, 1)

	s := NewStore(4)
	assert.Equal(t, 0, dataflow.UpdateCoverage(pairs, s))
	_, err = ReadObservations(analysistest.OpenLog(t, "simple_identity.log"), s)
	require.NoError(t, err)
	assert.Equal(t, 1, dataflow.UpdateCoverage(pairs, s))

	covered, uncovered := dataflow.MethodCoverage(g, s)
	assert.Len(t, covered, 2)
	assert.Empty(t, uncovered)
}
