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

package interproc

import (
	"fmt"
	"io"

	"github.com/awslabs/ar-dfcov/analysis/dataflow"
	"github.com/awslabs/ar-dfcov/internal/funcutil"
	"github.com/awslabs/ar-dfcov/internal/graphutil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
)

// CallSite is a Call node of a method whose callee is a method of the same class
type CallSite struct {
	// Caller is the id of the calling method
	Caller string
	// Node is the Call node in the caller's CFG
	Node *dataflow.Node
	// Callee is the id of the called method
	Callee string
}

// SuperGraph is the inter-procedural graph of a class: the CFGs of its methods, where every Call node to a method
// of the class is linked to the Entry of the callee, and the Exit of the callee to the matching Return node.
type SuperGraph struct {
	// Class is the name of the class
	Class string

	cfgs  map[string]*dataflow.CFG
	calls map[string][]CallSite
}

// NewSuperGraph builds the super graph of class from the CFGs of its methods
func NewSuperGraph(class string, cfgs []*dataflow.CFG) *SuperGraph {
	sg := &SuperGraph{Class: class, cfgs: map[string]*dataflow.CFG{}, calls: map[string][]CallSite{}}
	for _, g := range cfgs {
		sg.cfgs[g.MethodID()] = g
	}
	sg.link()
	return sg
}

func (sg *SuperGraph) link() {
	sg.calls = map[string][]CallSite{}
	for id, g := range sg.cfgs {
		for _, call := range g.CallNodes() {
			if callee, ok := sg.callee(call); ok {
				sg.calls[id] = append(sg.calls[id], CallSite{Caller: id, Node: call, Callee: callee.MethodID()})
			}
		}
	}
}

// callee returns the CFG of the method called at the call node, if it is a method of the class
func (sg *SuperGraph) callee(call *dataflow.Node) (*dataflow.CFG, bool) {
	if call.Callee == nil || call.Callee.Owner != sg.Class {
		return nil, false
	}
	g, ok := sg.cfgs[call.Callee.ID()]
	return g, ok
}

// Remove removes the method id from the super graph. Calls to the method are no longer linked.
func (sg *SuperGraph) Remove(id string) {
	delete(sg.cfgs, id)
	sg.link()
}

// Methods returns the ids of the methods of the super graph, sorted
func (sg *SuperGraph) Methods() []string {
	ids := maps.Keys(sg.cfgs)
	slices.Sort(ids)
	return ids
}

// CFG returns the CFG of the method id
func (sg *SuperGraph) CFG(id string) (*dataflow.CFG, bool) {
	g, ok := sg.cfgs[id]
	return g, ok
}

// CallSites returns the linked call sites of the method id, in index order
func (sg *SuperGraph) CallSites(id string) []CallSite {
	return sg.calls[id]
}

// Callees returns the sorted ids of the methods of the class called by the method id
func (sg *SuperGraph) Callees(id string) []string {
	set := map[string]bool{}
	funcutil.Iter(sg.calls[id], func(c CallSite) { set[c.Callee] = true })
	return funcutil.SetToOrderedSlice(set)
}

// CalleeFirstOrder returns the methods grouped in strongly connected components of the call graph, callees before
// their callers
func (sg *SuperGraph) CalleeFirstOrder() [][]string {
	return graphutil.StronglyConnectedComponents(sg.Methods(), sg.Callees)
}

// CallGraph returns the call graph of the class as a digraph, with the method ids in sorted order as node ids
func (sg *SuperGraph) CallGraph() (*graphutil.Digraph, []string) {
	ids := sg.Methods()
	g := graphutil.NewDigraph()
	pos := map[string]int64{}
	for _, id := range ids {
		pos[id] = g.AddNode(id)
	}
	for _, id := range ids {
		for _, c := range sg.Callees(id) {
			g.AddEdge(pos[id], pos[c])
		}
	}
	return g, ids
}

// Cycles returns the elementary cycles of the call graph of the class. Each cycle starts and ends with the same
// method; a recursive method forms a cycle [m m].
func (sg *SuperGraph) Cycles() [][]string {
	g, ids := sg.CallGraph()
	return funcutil.Map(graphutil.FindAllElementaryCycles(g), func(c []int64) []string {
		return funcutil.Map(c, func(i int64) string { return ids[i] })
	})
}

var (
	callAttrs   = []encoding.Attribute{{Key: "color", Value: "blue"}, {Key: "style", Value: "dashed"}}
	returnAttrs = []encoding.Attribute{{Key: "color", Value: "darkgreen"}, {Key: "style", Value: "dashed"}}
)

// ToDigraph returns the whole super graph as a digraph: the nodes of all the CFGs, their edges, and the call and
// return edges between them
func (sg *SuperGraph) ToDigraph() *graphutil.Digraph {
	g := graphutil.NewDigraph()
	ids := map[string]map[dataflow.Index]int64{}
	for _, m := range sg.Methods() {
		cfg := sg.cfgs[m]
		ids[m] = map[dataflow.Index]int64{}
		for _, n := range cfg.Nodes() {
			ids[m][n.Index] = g.AddNode(fmt.Sprintf("%q", m+" "+n.String()))
		}
		for _, n := range cfg.Nodes() {
			for _, s := range n.Successors() {
				g.AddEdge(ids[m][n.Index], ids[m][s.Index])
			}
		}
	}
	for _, m := range sg.Methods() {
		for _, c := range sg.calls[m] {
			callee := sg.cfgs[c.Callee]
			g.AddEdge(ids[m][c.Node.Index], ids[c.Callee][dataflow.EntryIndex], callAttrs...)
			ret := dataflow.Index{Insn: c.Node.Index.Insn, Sub: 1}
			g.AddEdge(ids[c.Callee][callee.Exit().Index], ids[m][ret], returnAttrs...)
		}
	}
	return g
}

// WriteDOT writes the super graph in the graphviz DOT format
func (sg *SuperGraph) WriteDOT(w io.Writer) error {
	b, err := dot.Marshal(sg.ToDigraph(), sg.Class, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
