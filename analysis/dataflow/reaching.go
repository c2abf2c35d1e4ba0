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

package dataflow

import (
	"golang.org/x/tools/container/intsets"
)

// ReachStats are the statistics of a run of the reaching definitions fixed point
type ReachStats struct {
	// Iterations is the number of nodes popped from the worklist
	Iterations int
	// Visits counts the visits per node
	Visits map[Index]int
}

// MaxVisits returns the largest number of visits of a node
func (s ReachStats) MaxVisits() int {
	m := 0
	for _, v := range s.Visits {
		if v > m {
			m = v
		}
	}
	return m
}

// A StepHook is called after each worklist step with the node visited and its reachOut before and after the step
type StepHook func(n *Node, before, after []Variable)

// ReachingDefinitions computes the definitions reaching every node of g with a worklist fixed point. It can be
// called again after definitions are added to nodes; the previous results are discarded.
//
// For each node popped, reach is the union of the reachOut of its predecessors, and reachOut is reach plus the
// definitions of the node, minus the definitions that have the name of a definition of the node at a different
// instruction index. When reachOut changes, the successors are enqueued again.
func ReachingDefinitions(g *CFG, hooks ...StepHook) ReachStats {
	stats := ReachStats{Visits: make(map[Index]int, g.Len())}
	for _, n := range g.order {
		n.reach.Clear()
		n.reachOut.Clear()
	}
	queue := make([]*Node, 0, g.Len())
	queued := make(map[*Node]bool, g.Len())
	for _, n := range g.order {
		queue = append(queue, n)
		queued[n] = true
	}

	var out intsets.Sparse
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		queued[n] = false
		stats.Iterations++
		stats.Visits[n.Index]++

		n.reach.Clear()
		for _, p := range n.preds {
			n.reach.UnionWith(&p.reachOut)
		}
		out.Copy(&n.reach)
		for _, d := range n.Defs {
			out.Insert(g.Domain.ID(d))
		}
		if len(n.Defs) > 0 {
			killDefinitions(g.Domain, n, &out)
		}

		if out.Equals(&n.reachOut) {
			continue
		}
		var before []Variable
		if len(hooks) > 0 {
			before = g.Domain.Variables(&n.reachOut)
		}
		n.reachOut.Copy(&out)
		for _, h := range hooks {
			h(n, before, g.Domain.Variables(&n.reachOut))
		}
		for _, s := range n.succs {
			if !queued[s] {
				queue = append(queue, s)
				queued[s] = true
			}
		}
	}
	return stats
}

// killDefinitions removes from out the definitions whose name is the name of a definition of n at a different
// instruction index
func killDefinitions(d *Domain, n *Node, out *intsets.Sparse) {
	var ids []int
	for _, id := range out.AppendTo(ids) {
		v := d.Variable(id)
		for _, def := range n.Defs {
			if def.Name == v.Name && def.Insn != v.Insn {
				out.Remove(id)
				break
			}
		}
	}
}
