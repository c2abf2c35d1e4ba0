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

package graphutil

import (
	"sort"

	"github.com/yourbasic/graph"
)

// FindAllElementaryCycles finds all elementary cycles in the digraph g. Self-loops are reported as cycles [v v].
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
func FindAllElementaryCycles(g *Digraph) [][]int64 {
	s := &state{
		blocked: map[int64]bool{},
		blist:   map[int64]map[int64]bool{},
		stack:   []int64{},
		cycles:  [][]int64{},
	}
	for v := int64(0); v < int64(g.Order()); v++ {
		if g.HasEdgeFromTo(v, v) {
			s.cycles = append(s.cycles, []int64{v, v})
		}
	}
	keys := make([]int64, g.Order())
	for i := range keys {
		keys[i] = int64(i)
	}
	nodeid := 0
	for nodeid < len(keys) {
		fg := Subgraph(g, keys[nodeid:])
		components := graph.StrongComponents(fg)
		var least []int
		for _, component := range components {
			if len(component) >= 2 {
				sort.Ints(component)
				if least == nil || component[0] < least[0] {
					least = component
				}
			}
		}
		if least == nil {
			return s.cycles
		}
		node := int64(least[0])
		s.stack = []int64{}
		s.blocked = map[int64]bool{}
		s.blist = map[int64]map[int64]bool{}
		s.circuit(node, node, Subgraph(fg, toInt64(least)))
		nodeid = least[0] + 1
	}
	return s.cycles
}

func toInt64(xs []int) []int64 {
	r := make([]int64, len(xs))
	for i, x := range xs {
		r[i] = int64(x)
	}
	return r
}

type state struct {
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
}

func (s *state) unblock(u int64) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		delete(s.blist[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *state) circuit(v int64, start int64, g *Digraph) bool {
	f := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for _, w := range g.Successors(v) {
		if w == v {
			continue
		}
		if w == start {
			cycle := make([]int64, len(s.stack), len(s.stack)+1)
			copy(cycle, s.stack)
			s.cycles = append(s.cycles, append(cycle, w))
			f = true
		} else if !s.blocked[w] {
			if s.circuit(w, start, g) {
				f = true
			}
		}
	}

	if f {
		s.unblock(v)
	} else {
		for _, w := range g.Successors(v) {
			if s.blist[w] == nil {
				s.blist[w] = map[int64]bool{}
			}
			s.blist[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return f
}
