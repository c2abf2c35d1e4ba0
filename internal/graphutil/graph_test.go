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
	"strings"
	"testing"

	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/topo"
)

func diamond() *Digraph {
	g := NewDigraph()
	a := g.AddNode("a")
	b := g.AddNode("b")
	c := g.AddNode("c")
	d := g.AddNode("d")
	g.AddEdge(a, b)
	g.AddEdge(a, c)
	g.AddEdge(b, d)
	g.AddEdge(c, d)
	return g
}

func TestDigraphDirected(t *testing.T) {
	g := diamond()
	if g.Order() != 4 {
		t.Fatalf("expected 4 nodes, got %d", g.Order())
	}
	if !g.HasEdgeFromTo(0, 1) || g.HasEdgeFromTo(1, 0) {
		t.Errorf("edge a->b should be directed")
	}
	if !g.HasEdgeBetween(1, 0) {
		t.Errorf("a and b should have an edge between them")
	}
	if n := g.To(3).Len(); n != 2 {
		t.Errorf("expected 2 predecessors of d, got %d", n)
	}
	if g.Edge(3, 0) != nil {
		t.Errorf("there is no edge d->a")
	}
	if !topo.PathExistsIn(g, g.Node(0), g.Node(3)) {
		t.Errorf("d should be reachable from a")
	}
	if topo.PathExistsIn(g, g.Node(3), g.Node(0)) {
		t.Errorf("a should not be reachable from d")
	}
	// unknown nodes are ignored
	g.AddEdge(0, 42)
	if len(g.Successors(0)) != 2 {
		t.Errorf("edge to unknown node should be ignored")
	}
}

func TestDigraphVisit(t *testing.T) {
	g := diamond()
	var visited []int
	g.Visit(0, func(w int, _ int64) bool {
		visited = append(visited, w)
		return false
	})
	if len(visited) != 2 || visited[0] != 1 || visited[1] != 2 {
		t.Errorf("expected successors [1 2] in order, got %v", visited)
	}
	aborted := g.Visit(0, func(int, int64) bool { return true })
	if !aborted {
		t.Errorf("visit should report abort")
	}
}

func TestDigraphMarshalDOT(t *testing.T) {
	g := diamond()
	b, err := dot.Marshal(g, "diamond", "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	s := string(b)
	if !strings.HasPrefix(s, "strict digraph diamond {") {
		t.Errorf("expected a digraph, got:\n%s", s)
	}
	if !strings.Contains(s, "n0 -> n1") {
		t.Errorf("expected edge n0 -> n1 in:\n%s", s)
	}
}

func TestFindAllElementaryCycles(t *testing.T) {
	g := NewDigraph()
	for i := 0; i < 5; i++ {
		g.AddNode("")
	}
	// 0 -> 1 -> 2 -> 0, 2 -> 3 -> 2, 4 -> 4
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 0)
	g.AddEdge(2, 3)
	g.AddEdge(3, 2)
	g.AddEdge(4, 4)

	cycles := FindAllElementaryCycles(g)
	var results []string
	for _, c := range cycles {
		var sb strings.Builder
		for _, x := range c {
			sb.WriteByte(byte('0' + x))
		}
		results = append(results, sb.String())
	}
	sort.Strings(results)
	expected := []string{"0120", "232", "44"}
	if strings.Join(results, ",") != strings.Join(expected, ",") {
		t.Fatalf("expected cycles %v, got %v", expected, results)
	}
}
