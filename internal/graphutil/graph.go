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
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/iterator"
)

// Digraph is a directed graph with dense node ids 0..n-1 that works with existing graph libraries. It implements
// the methods to satisfy yourbasic's graph.Iterator and Gonum's graph.Directed.
// Control-flow graphs and super graphs are converted to a Digraph to be rendered or to compute cycles and strongly
// connected components.
type Digraph struct {
	nodes []Node

	// succs[x][y] means there is a directed edge between x and y
	succs []map[int64]bool

	// preds[y][x] means there is a directed edge between x and y
	preds []map[int64]bool

	edgeAttrs map[[2]int64][]encoding.Attribute
}

// NewDigraph returns an empty digraph
func NewDigraph() *Digraph {
	return &Digraph{edgeAttrs: map[[2]int64][]encoding.Attribute{}}
}

// AddNode adds a node with the label and attributes provided and returns its id. Ids are allocated sequentially.
func (g *Digraph) AddNode(label string, attrs ...encoding.Attribute) int64 {
	id := int64(len(g.nodes))
	g.nodes = append(g.nodes, Node{id: id, Label: label, Attrs: attrs})
	g.succs = append(g.succs, map[int64]bool{})
	g.preds = append(g.preds, map[int64]bool{})
	return id
}

// AddEdge adds a directed edge from -> to. Adding an existing edge replaces its attributes if some are provided.
// Edges between unknown nodes are ignored.
func (g *Digraph) AddEdge(from, to int64, attrs ...encoding.Attribute) {
	if !g.has(from) || !g.has(to) {
		return
	}
	g.succs[from][to] = true
	g.preds[to][from] = true
	if len(attrs) > 0 {
		g.edgeAttrs[[2]int64{from, to}] = attrs
	}
}

func (g *Digraph) has(id int64) bool {
	return 0 <= id && id < int64(len(g.nodes))
}

// Successors returns the sorted ids of the successors of id
func (g *Digraph) Successors(id int64) []int64 {
	if !g.has(id) {
		return nil
	}
	return sortedKeys(g.succs[id])
}

// Label returns the label of the node id, or the empty string if there is no such node
func (g *Digraph) Label(id int64) string {
	if !g.has(id) {
		return ""
	}
	return g.nodes[id].Label
}

// Subgraph returns a new graph that is the original graph with only the edges between nodes in include.
// Node ids and labels are the same as in the original, meaning that node indices will stay consistent
// across subgraphs.
func Subgraph(original *Digraph, include []int64) *Digraph {
	keep := make(map[int64]bool, len(include))
	for _, i := range include {
		keep[i] = true
	}
	sub := NewDigraph()
	for _, n := range original.nodes {
		sub.AddNode(n.Label, n.Attrs...)
	}
	for _, i := range include {
		for j := range original.succs[i] {
			if keep[j] {
				sub.AddEdge(i, j, original.edgeAttrs[[2]int64{i, j}]...)
			}
		}
	}
	return sub
}

// *************** yourbasic graph.Iterator implementation **********************

// Order implements the order of the graph.Iterator interface for the Digraph
func (g *Digraph) Order() int {
	return len(g.nodes)
}

// Visit implements the graph.Iterator interface for the Digraph
func (g *Digraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if !g.has(int64(v)) {
		return false
	}
	for _, w := range sortedKeys(g.succs[v]) {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** Gonum graph.Directed implementation **********************

// Node implements the Graph interface
func (g *Digraph) Node(id int64) graph.Node {
	if !g.has(id) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns the set of nodes in the graph, ordered by id
func (g *Digraph) Nodes() graph.Nodes {
	ns := make([]graph.Node, len(g.nodes))
	for i, n := range g.nodes {
		ns[i] = n
	}
	return iterator.NewOrderedNodes(ns)
}

// From returns the set of nodes reachable from the id in one step
func (g *Digraph) From(id int64) graph.Nodes {
	if !g.has(id) {
		return graph.Empty
	}
	return g.nodeSet(g.succs[id])
}

// To returns the set of nodes that reach id in one step
func (g *Digraph) To(id int64) graph.Nodes {
	if !g.has(id) {
		return graph.Empty
	}
	return g.nodeSet(g.preds[id])
}

func (g *Digraph) nodeSet(ids map[int64]bool) graph.Nodes {
	keys := sortedKeys(ids)
	ns := make([]graph.Node, len(keys))
	for i, k := range keys {
		ns[i] = g.nodes[k]
	}
	return iterator.NewOrderedNodes(ns)
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (g *Digraph) HasEdgeBetween(xid, yid int64) bool {
	return g.HasEdgeFromTo(xid, yid) || g.HasEdgeFromTo(yid, xid)
}

// HasEdgeFromTo returns a boolean indicating whether there is a directed edge from uid to vid
func (g *Digraph) HasEdgeFromTo(uid, vid int64) bool {
	return g.has(uid) && g.succs[uid][vid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (g *Digraph) Edge(uid, vid int64) graph.Edge {
	if !g.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return Edge{from: g.nodes[uid], to: g.nodes[vid], attrs: g.edgeAttrs[[2]int64{uid, vid}]}
}

// *************** Nodes and edges **********************

// Node is a labelled digraph node that implements graph.Node, the DOT node interface and encoding.Attributer
type Node struct {
	id    int64
	Label string
	Attrs []encoding.Attribute
}

// ID returns the id of the node
func (n Node) ID() int64 {
	return n.id
}

// DOTID returns the identifier used for the node in DOT outputs
func (n Node) DOTID() string {
	return "n" + strconv.FormatInt(n.id, 10)
}

// Attributes returns the DOT attributes of the node. The label is always the first attribute.
func (n Node) Attributes() []encoding.Attribute {
	return append([]encoding.Attribute{{Key: "label", Value: n.Label}}, n.Attrs...)
}

func (n Node) String() string {
	return n.Label
}

// Edge implements the graph.Edge interface
type Edge struct {
	from  Node
	to    Node
	attrs []encoding.Attribute
}

// From returns the origin of the edge
func (e Edge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e Edge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e Edge) ReversedEdge() graph.Edge {
	return Edge{from: e.to, to: e.from, attrs: e.attrs}
}

// Attributes returns the DOT attributes of the edge
func (e Edge) Attributes() []encoding.Attribute {
	return e.attrs
}

func sortedKeys(m map[int64]bool) []int64 {
	keys := make([]int64, 0, len(m))
	for k, b := range m {
		if b {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
