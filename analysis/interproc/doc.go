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

// Package interproc links the control-flow graphs of the methods of a class into a super graph and matches the
// arguments of calls with the parameters of the callees.
//
// The arguments of a call are found by walking backward from the Call node (see ArgumentWalk). Each argument
// reading a variable is matched with the parameter definition at the same position in the Entry node of the
// callee, and the DU-pairs of the callee starting at that parameter give new pairs from the definitions of the
// caller to the uses in the callee. Those pairs are covered when the caller definition is observed and either the
// callee use or the argument at the call site is observed.
package interproc
