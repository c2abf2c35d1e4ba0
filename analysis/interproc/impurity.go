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
	"github.com/awslabs/ar-dfcov/analysis/dataflow"
)

// Impurity returns, for every method of the super graph, whether the method may have side effects: it writes a
// field or an array element, or it calls an impure method of the class. Calls to methods of other classes are
// considered pure.
func Impurity(sg *SuperGraph) map[string]bool {
	impure := map[string]bool{}
	for _, id := range sg.Methods() {
		g, _ := sg.CFG(id)
		impure[id] = writesMemory(g)
	}
	for changed := true; changed; {
		changed = false
		for _, id := range sg.Methods() {
			if impure[id] {
				continue
			}
			for _, c := range sg.CallSites(id) {
				if impure[c.Callee] {
					impure[id] = true
					changed = true
					break
				}
			}
		}
	}
	return impure
}

func writesMemory(g *dataflow.CFG) bool {
	for _, n := range g.Nodes() {
		if n.Kind == dataflow.KindInstruction && (n.Opcode.IsFieldWrite() || n.Opcode.IsArrayStore()) {
			return true
		}
	}
	return false
}
