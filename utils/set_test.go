// Copyright (c) 2024 The Sprite Programming Language
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package utils

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAddReportsNewness(t *testing.T) {
	s := NewSet[string]()
	require.True(t, s.Add("a"))
	require.False(t, s.Add("a"))
	require.True(t, s.Add("b"))
	require.Equal(t, 2, s.Length())
}

func TestSetContainsAndRemove(t *testing.T) {
	s := NewSet[string]()
	s.Add("a")
	require.True(t, s.Contains("a"))
	require.False(t, s.Contains("b"))
	require.True(t, s.Remove("a"))
	require.False(t, s.Contains("a"))
	require.False(t, s.Remove("a"))
}

func TestSetForEachVisitsEveryElement(t *testing.T) {
	s := NewSet[string]()
	s.Add("a")
	s.Add("b")
	s.Add("c")
	var seen []string
	s.ForEach(func(e string) { seen = append(seen, e) })
	sort.Strings(seen)
	require.Equal(t, []string{"a", "b", "c"}, seen)
}
