package grammar

import (
	"math/bits"

	"github.com/nihei9/lalrgen/grammar/symbol"
)

// terminalSet is a set of terminal numbers. Every set of a grammar has the same size, so unions
// never grow a set.
type terminalSet []uint64

func newTerminalSet(termCount int) terminalSet {
	return make(terminalSet, (termCount+63)/64)
}

func (s terminalSet) add(num symbol.SymbolNum) {
	s[num/64] |= 1 << (num % 64)
}

func (s terminalSet) contains(num symbol.SymbolNum) bool {
	if int(num/64) >= len(s) {
		return false
	}
	return s[num/64]&(1<<(num%64)) != 0
}

// union adds all members of t to s and reports whether s changed.
func (s terminalSet) union(t terminalSet) bool {
	changed := false
	for i, w := range t {
		if s[i]|w != s[i] {
			s[i] |= w
			changed = true
		}
	}
	return changed
}

// isSubsetOf reports whether every member of s is also a member of t.
func (s terminalSet) isSubsetOf(t terminalSet) bool {
	for i, w := range s {
		if w&^t[i] != 0 {
			return false
		}
	}
	return true
}

func (s terminalSet) isEmpty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

func (s terminalSet) clone() terminalSet {
	c := make(terminalSet, len(s))
	copy(c, s)
	return c
}

// nums returns the members in ascending order.
func (s terminalSet) nums() []symbol.SymbolNum {
	var nums []symbol.SymbolNum
	for i, w := range s {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			nums = append(nums, symbol.SymbolNum(i*64+b))
			w &= w - 1
		}
	}
	return nums
}
