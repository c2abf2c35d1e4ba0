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

package funcutil

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollections(t *testing.T) {
	a := []int{3, 1, 4, 1, 5}
	assert.Equal(t, []string{"3", "1", "4", "1", "5"}, Map(a, strconv.Itoa))
	assert.Equal(t, []int{4}, Filter(a, func(x int) bool { return x%2 == 0 }))
	assert.Nil(t, Filter(a, func(x int) bool { return x > 10 }))
	assert.True(t, Contains(a, 5))
	assert.False(t, Contains(a, 2))

	sum := 0
	Iter(a, func(x int) { sum += x })
	assert.Equal(t, 14, sum)

	assert.Equal(t, []string{"a", "b", "c"}, SetToOrderedSlice(map[string]bool{"c": true, "a": true, "b": true, "z": false}))
	assert.Nil(t, SetToOrderedSlice(map[int]bool{}))
}
