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
	"errors"
	"fmt"

	"github.com/awslabs/ar-dfcov/analysis/dataflow"
)

// ErrShortArgumentChain is returned when a call node has fewer predecessors than the number of arguments of the
// callee
var ErrShortArgumentChain = errors.New("call has fewer predecessors than arguments")

// Argument is the node providing the argument at some position of a call
type Argument struct {
	// Position is the position of the argument, the receiver of instance calls being at position 0
	Position int
	// Node is the node pushing the argument. A node without uses pushes a constant or a computed value.
	Node *dataflow.Node
}

// IsConstant returns true if the argument is not the value of a variable
func (a Argument) IsConstant() bool {
	return len(a.Node.Uses) == 0
}

// ArgumentCount returns the number of arguments passed at a call of the method of callee: the number of parameters
// of the method, including the receiver of instance methods.
func ArgumentCount(callee *dataflow.CFG) int {
	return len(callee.Parameters())
}

// ArgumentWalk returns the n nodes pushing the arguments of the call node, ordered by position. The walk goes
// backward from the call, through the nearest predecessor of each node: the node visited at the j-th step provides
// the argument at position n-j, so the receiver is found last. A Return node provides one computed argument and the
// Call node before it is skipped.
//
// The walk returns ErrShortArgumentChain when it reaches the Entry node, or a node without predecessors, before n
// arguments are found.
func ArgumentWalk(call *dataflow.Node, n int) ([]Argument, error) {
	args := make([]Argument, n)
	cur := call
	for pos := n - 1; pos >= 0; {
		cur = nearestPredecessor(cur)
		if cur == nil || cur.Kind == dataflow.KindEntry {
			return nil, fmt.Errorf("%w: %s in %s expects %d arguments, found %d", ErrShortArgumentChain,
				call, call.Method, n, n-1-pos)
		}
		if cur.Kind == dataflow.KindCall {
			continue
		}
		args[pos] = Argument{Position: pos, Node: cur}
		pos--
	}
	return args, nil
}

// nearestPredecessor returns the predecessor with the highest index lower than the node's, or the highest
// predecessor when all are after the node
func nearestPredecessor(n *dataflow.Node) *dataflow.Node {
	preds := n.Predecessors()
	if len(preds) == 0 {
		return nil
	}
	for i := len(preds) - 1; i >= 0; i-- {
		if preds[i].Index.Less(n.Index) {
			return preds[i]
		}
	}
	return preds[len(preds)-1]
}
