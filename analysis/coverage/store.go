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
	"fmt"
	"sort"
	"sync"

	"github.com/awslabs/ar-dfcov/analysis/dataflow"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/atomic"
)

// Observation is a variable definition or use observed at runtime
type Observation struct {
	Class        string
	Method       string
	Name         string
	Slot         int
	Insn         int
	Line         int
	IsDefinition bool
}

// ObservationOf returns the observation of the variable v
func ObservationOf(v dataflow.Variable) Observation {
	return Observation{
		Class:        v.Class,
		Method:       v.Method,
		Name:         v.Name,
		Slot:         v.Slot,
		Insn:         v.Insn,
		Line:         v.Line,
		IsDefinition: v.IsDefinition,
	}
}

func (o Observation) String() string {
	kind := "use"
	if o.IsDefinition {
		kind = "def"
	}
	return fmt.Sprintf("%s.%s %s %s@%d (line %d)", o.Class, o.Method, kind, o.Name, o.Insn, o.Line)
}

// key identifies an observed variable. Lines are not part of the key since the instruction determines the line.
type key struct {
	class  string
	method string
	name   string
	slot   int
	insn   int
	def    bool
}

// location identifies a variable in a method regardless of the instruction
type location struct {
	class  string
	method string
	name   string
	slot   int
}

type shard struct {
	mu        sync.RWMutex
	exact     map[key]Observation
	locations map[location]bool
}

// Store is the set of runtime observations. It is safe for concurrent use: observations can be inserted while
// the store is queried, and an observed variable stays observed.
//
// Observations are sharded by method.
type Store struct {
	shards  []*shard
	mask    uint64
	count   atomic.Int64
	metrics *Metrics
}

// NewStore returns an empty store with at least n shards
func NewStore(n int) *Store {
	size := 1
	for size < n {
		size <<= 1
	}
	s := &Store{shards: make([]*shard, size), mask: uint64(size - 1)}
	for i := range s.shards {
		s.shards[i] = &shard{exact: map[key]Observation{}, locations: map[location]bool{}}
	}
	return s
}

// SetMetrics sets the metrics updated by the store
func (s *Store) SetMetrics(m *Metrics) {
	s.metrics = m
}

func (s *Store) shardFor(class, method string) *shard {
	return s.shards[xxhash.Sum64String(class+"."+method)&s.mask]
}

// Observe inserts the observation o and returns true if it was not already in the store
func (s *Store) Observe(o Observation) bool {
	k := key{class: o.Class, method: o.Method, name: o.Name, slot: o.Slot, insn: o.Insn, def: o.IsDefinition}
	sh := s.shardFor(o.Class, o.Method)
	sh.mu.Lock()
	_, found := sh.exact[k]
	if !found {
		sh.exact[k] = o
		sh.locations[location{class: o.Class, method: o.Method, name: o.Name, slot: o.Slot}] = true
	}
	sh.mu.Unlock()
	if found {
		s.metrics.duplicate()
		return false
	}
	s.count.Inc()
	s.metrics.observed(o)
	return true
}

// ObserveVariable inserts the observation of v
func (s *Store) ObserveVariable(v dataflow.Variable) bool {
	return s.Observe(ObservationOf(v))
}

// Observed returns true if the variable v has been observed at its instruction
func (s *Store) Observed(v dataflow.Variable) bool {
	k := key{class: v.Class, method: v.Method, name: v.Name, slot: v.Slot, insn: v.Insn, def: v.IsDefinition}
	sh := s.shardFor(v.Class, v.Method)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	_, ok := sh.exact[k]
	return ok
}

// ObservedParameter returns true if the variable of the parameter v has been observed anywhere in its method
func (s *Store) ObservedParameter(v dataflow.Variable) bool {
	l := location{class: v.Class, method: v.Method, name: v.Name, slot: v.Slot}
	sh := s.shardFor(v.Class, v.Method)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.locations[l]
}

// Len returns the number of distinct observations
func (s *Store) Len() int {
	return int(s.count.Load())
}

// Observations returns all the observations of the store, ordered by class, method, instruction and name
func (s *Store) Observations() []Observation {
	var all []Observation
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, o := range sh.exact {
			all = append(all, o)
		}
		sh.mu.RUnlock()
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		if a.Insn != b.Insn {
			return a.Insn < b.Insn
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.IsDefinition && !b.IsDefinition
	})
	return all
}

var _ dataflow.Observations = (*Store)(nil)
