// Copyright (c) 2024 The Falcon Contributors
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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAny(t *testing.T) {
	require.True(t, Any(' ', ' ', '\t', '\n'))
	require.False(t, Any('x', ' ', '\t', '\n'))
	require.True(t, Any(3, 1, 2, 3))
}

func TestAlign16(t *testing.T) {
	cases := map[int]int{0: 0, 1: 16, 8: 16, 15: 16, 16: 16, 17: 32, 40: 48}
	for in, want := range cases {
		require.Equal(t, want, Align16(in), "Align16(%d)", in)
	}
}

func TestUnimplementPanics(t *testing.T) {
	require.Panics(t, func() { Unimplement() })
}

func TestShouldNotReachHerePanics(t *testing.T) {
	require.Panics(t, func() { ShouldNotReachHere() })
}
