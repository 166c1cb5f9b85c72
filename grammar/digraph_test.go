package grammar

import (
	"testing"

	"github.com/nihei9/lalrgen/grammar/symbol"
)

func TestDigraph(t *testing.T) {
	const termCount = 8
	genBase := func(nums ...symbol.SymbolNum) terminalSet {
		s := newTerminalSet(termCount)
		for _, n := range nums {
			s.add(n)
		}
		return s
	}

	// 0 → 1 → 2 → 1 forms a cycle {1, 2}; 3 → 0; 4 is isolated.
	relation := [][]int{
		{1},
		{2},
		{1},
		{0},
		{},
	}
	base := []terminalSet{
		genBase(2),
		genBase(3),
		genBase(4),
		genBase(5),
		genBase(6),
	}

	f := digraph(relation, base)

	expected := [][]symbol.SymbolNum{
		{2, 3, 4},
		{3, 4},
		{3, 4},
		{2, 3, 4, 5},
		{6},
	}
	for x, want := range expected {
		got := f[x].nums()
		if len(got) != len(want) {
			t.Errorf("F(%v) is mismatched; want: %v, got: %v", x, want, got)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("F(%v) is mismatched; want: %v, got: %v", x, want, got)
				break
			}
		}
	}

	// Members of a cycle own their sets.
	f[1].add(7)
	if f[2].contains(7) {
		t.Errorf("vertices of a strongly connected component must not share a set")
	}
	if base[0].contains(3) {
		t.Errorf("digraph must not modify base sets")
	}
}

func TestDigraph_LongChain(t *testing.T) {
	const n = 100000
	relation := make([][]int, n)
	base := make([]terminalSet, n)
	for i := 0; i < n; i++ {
		if i+1 < n {
			relation[i] = []int{i + 1}
		}
		base[i] = newTerminalSet(4)
	}
	base[n-1].add(3)

	f := digraph(relation, base)
	if !f[0].contains(3) {
		t.Errorf("F(0) must contain the base of the last vertex")
	}
}

func TestTerminalSet(t *testing.T) {
	s := newTerminalSet(130)
	s.add(1)
	s.add(64)
	s.add(129)

	for _, n := range []symbol.SymbolNum{1, 64, 129} {
		if !s.contains(n) {
			t.Errorf("%v must be a member", n)
		}
	}
	if s.contains(2) || s.contains(200) {
		t.Errorf("unexpected member")
	}

	u := newTerminalSet(130)
	u.add(64)
	if !u.isSubsetOf(s) {
		t.Errorf("{64} must be a subset")
	}
	if s.isSubsetOf(u) {
		t.Errorf("s must not be a subset of {64}")
	}
	if u.union(s) != true {
		t.Errorf("union must report a change")
	}
	if u.union(s) != false {
		t.Errorf("a second union must not report a change")
	}

	nums := u.nums()
	if len(nums) != 3 || nums[0] != 1 || nums[1] != 64 || nums[2] != 129 {
		t.Errorf("unexpected members: %v", nums)
	}
	if newTerminalSet(130).isEmpty() != true {
		t.Errorf("a new set must be empty")
	}
}
