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
	"io"

	"gonum.org/v1/gonum/graph/encoding/dot"
)

// WriteDOT writes the CFG in the graphviz DOT format to w
func WriteDOT(w io.Writer, g *CFG) error {
	dg, _ := ToDigraph(g)
	b, err := dot.Marshal(dg, g.Class+"."+g.Method.Name, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
