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
	"fmt"
	"strings"

	"github.com/awslabs/ar-dfcov/internal/graphutil"
	"github.com/yourbasic/graph"
	"gonum.org/v1/gonum/graph/encoding"
)

// ToDigraph converts the CFG into a digraph whose node ids follow the node order of the CFG. Node labels contain
// the definitions and uses of the nodes; exception edges are dashed.
func ToDigraph(g *CFG) (*graphutil.Digraph, map[Index]int64) {
	dg := graphutil.NewDigraph()
	ids := make(map[Index]int64, g.Len())
	for _, n := range g.order {
		ids[n.Index] = dg.AddNode(nodeLabel(n), nodeAttributes(n)...)
	}
	for _, n := range g.order {
		for _, s := range n.succs {
			var attrs []encoding.Attribute
			if g.IsExceptionEdge(n.Index, s.Index) {
				attrs = append(attrs, encoding.Attribute{Key: "style", Value: "dashed"})
			}
			dg.AddEdge(ids[n.Index], ids[s.Index], attrs...)
		}
	}
	return dg, ids
}

// nodeLabel returns the quoted DOT label of n, one line per variable
func nodeLabel(n *Node) string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(n.String(), `"`, `\"`))
	for _, d := range n.Defs {
		if !d.IsZero() {
			fmt.Fprintf(&b, "\\ndef %s:%s", d.Name, d.Descriptor)
		}
	}
	for _, u := range n.Uses {
		fmt.Fprintf(&b, "\\nuse %s:%s", u.Name, u.Descriptor)
	}
	b.WriteByte('"')
	return b.String()
}

func nodeAttributes(n *Node) []encoding.Attribute {
	switch n.Kind {
	case KindEntry, KindExit:
		return []encoding.Attribute{{Key: "shape", Value: "ellipse"}}
	case KindCall, KindReturn:
		return []encoding.Attribute{{Key: "shape", Value: "box"}, {Key: "style", Value: "rounded"}}
	}
	return []encoding.Attribute{{Key: "shape", Value: "box"}}
}

// Stats summarizes the shape of a CFG
type Stats struct {
	Nodes int `yaml:"nodes" json:"nodes"`
	Edges int `yaml:"edges" json:"edges"`
	Calls int `yaml:"calls" json:"calls"`
	Defs  int `yaml:"defs" json:"defs"`
	Uses  int `yaml:"uses" json:"uses"`
	// Loops is the number of strongly connected components with a cycle
	Loops int `yaml:"loops" json:"loops"`
	// Sinks is the number of nodes without successors. The Exit node is the only sink of a CFG where every
	// instruction can reach a return.
	Sinks int `yaml:"sinks" json:"sinks"`
}

// ComputeStats returns the statistics of g
func ComputeStats(g *CFG) Stats {
	dg, _ := ToDigraph(g)
	check := graph.Check(dg)
	s := Stats{
		Nodes: g.Len(),
		Edges: int(check.Size),
		Sinks: check.Isolated,
		Loops: check.Loops,
	}
	for _, comp := range graph.StrongComponents(dg) {
		if len(comp) > 1 {
			s.Loops++
		}
	}
	for _, n := range g.order {
		if n.Kind == KindCall {
			s.Calls++
		}
		for _, d := range n.Defs {
			if !d.IsZero() {
				s.Defs++
			}
		}
		s.Uses += len(n.Uses)
	}
	return s
}
