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

	"go.uber.org/atomic"
	"golang.org/x/exp/slices"
)

// Observations is the runtime-observation feed queried to compute coverage
type Observations interface {
	// Observed returns true if the variable v has been observed at runtime
	Observed(v Variable) bool
	// ObservedParameter returns true if the parameter v has been observed at runtime anywhere in its method
	ObservedParameter(v Variable) bool
}

// IsObserved returns true if v has been observed. Parameter definitions of the Entry node are observed as soon as
// any observation of the parameter exists.
func IsObserved(obs Observations, v Variable) bool {
	if v.IsParameter() {
		return obs.ObservedParameter(v)
	}
	return obs.Observed(v)
}

// A DUPair is a definition and a use of the same variable name such that the definition reaches the use.
// Pairs derived across a call carry the uses at the call site that justify them.
type DUPair struct {
	Def Variable
	Use Variable
	// CallSiteUses are the uses in the caller that are matched to the callee definition of the pair
	CallSiteUses []Variable

	covered atomic.Bool
}

// NewDUPair returns an uncovered pair
func NewDUPair(def, use Variable, callSiteUses ...Variable) *DUPair {
	return &DUPair{Def: def, Use: use, CallSiteUses: callSiteUses}
}

// Covered returns true if the pair has been covered
func (p *DUPair) Covered() bool {
	return p.covered.Load()
}

// MarkCovered marks the pair as covered and returns true if it was not covered before. A covered pair never
// becomes uncovered.
func (p *DUPair) MarkCovered() bool {
	return p.covered.CompareAndSwap(false, true)
}

// IsCrossMethod returns true if the definition and the use are in different methods
func (p *DUPair) IsCrossMethod() bool {
	return p.Def.Class != p.Use.Class || p.Def.Method != p.Use.Method
}

// Update marks the pair covered if its definition and its use have been observed. The use of a cross-method pair
// is also considered observed when one of its call-site uses is. It returns whether the pair is covered.
func (p *DUPair) Update(obs Observations) bool {
	if p.Covered() {
		return true
	}
	if !IsObserved(obs, p.Def) {
		return false
	}
	useObserved := IsObserved(obs, p.Use)
	for _, u := range p.CallSiteUses {
		if useObserved {
			break
		}
		useObserved = IsObserved(obs, u)
	}
	if useObserved {
		p.MarkCovered()
	}
	return p.Covered()
}

func (p *DUPair) String() string {
	c := " "
	if p.Covered() {
		c = "x"
	}
	return fmt.Sprintf("[%s] %s.%s:%s -> %s.%s:%s", c, p.Def.Method, p.Def.Name, insnString(p.Def.Insn),
		p.Use.Method, p.Use.Name, insnString(p.Use.Insn))
}

func insnString(insn int) string {
	if insn == EntryInsn {
		return "entry"
	}
	return fmt.Sprintf("%d", insn)
}

// Less orders pairs by use, then by definition
func (p *DUPair) Less(q *DUPair) bool {
	if p.Use != q.Use {
		return p.Use.Less(q.Use)
	}
	return p.Def.Less(q.Def)
}

// DefUsePairs returns the DU-pairs of g, ordered by use then definition. The reaching definitions of g must have
// been computed. A pair (d, u) is emitted for every use u of a node and every definition d reaching the node with
// the same name, unless d or u has the UnknownDescriptor type.
func DefUsePairs(g *CFG) []*DUPair {
	var pairs []*DUPair
	for _, n := range g.order {
		if len(n.Uses) == 0 {
			continue
		}
		reach := g.Reach(n)
		for _, u := range n.Uses {
			if !u.IsResolved() {
				continue
			}
			for _, d := range reach {
				if d.Name == u.Name && d.IsResolved() && !d.IsZero() {
					pairs = append(pairs, NewDUPair(d, u))
				}
			}
		}
	}
	slices.SortFunc(pairs, (*DUPair).Less)
	return pairs
}

// UpdateCoverage updates the coverage of all pairs and returns the number of covered pairs
func UpdateCoverage(pairs []*DUPair, obs Observations) int {
	n := 0
	for _, p := range pairs {
		if p.Update(obs) {
			n++
		}
	}
	return n
}

// MethodCoverage partitions the definitions and uses of the CFG (the zero variable excepted) into the observed
// and the not observed variables, in node order.
func MethodCoverage(g *CFG, obs Observations) (covered []Variable, uncovered []Variable) {
	for _, n := range g.order {
		for _, vs := range [][]Variable{n.Defs, n.Uses} {
			for _, v := range vs {
				if v.IsZero() {
					continue
				}
				if IsObserved(obs, v) {
					covered = append(covered, v)
				} else {
					uncovered = append(uncovered, v)
				}
			}
		}
	}
	return covered, uncovered
}
