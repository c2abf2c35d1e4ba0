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

/*
Package dataflow implements the intra-procedural part of the def-use coverage analysis of JVM methods.

The control-flow graph of a method is built by [BuildCFG] from a decoded [jvm.Method]. The instructions are first
turned into an immutable [Events] stream, which is consumed by independent builders: one builds the shape of the graph
(nodes, edges, Entry and Exit), and the [AccessBuilder] functions resolve the local variables and fields accessed
by each instruction:

	d := dataflow.NewDomain(class.Name)
	cfg, err := dataflow.BuildCFG(class.Name, method, d)

Invoke instructions are split into a Call node and a Return node at the same instruction index. Nodes are keyed by
an [Index], so that the nodes of a call can be inserted without renumbering the graph.

[ReachingDefinitions] then computes the definitions reaching every node with a worklist fixed point, and
[DefUsePairs] enumerates the DU-pairs of the method:

	stats := dataflow.ReachingDefinitions(cfg)
	pairs := dataflow.DefUsePairs(cfg)

The coverage of a pair is computed against an [Observations] feed by [DUPair.Update]. A pair that is covered stays
covered.
*/
package dataflow
