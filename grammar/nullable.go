package grammar

import (
	"github.com/nihei9/lalrgen/grammar/symbol"
)

// nullableSet tells whether a non-terminal derives the empty string.
type nullableSet struct {
	nullable []bool
}

// genNullable iterates until no non-terminal changes. A non-terminal is nullable when it has a
// production whose RHS consists only of nullable non-terminals; an empty production trivially
// qualifies.
func genNullable(prods *productionSet, nonTermCount int) *nullableSet {
	nullable := make([]bool, nonTermCount)
	for {
		changed := false
		for _, prod := range prods.getAllProductions() {
			if nullable[prod.lhs.Num()] {
				continue
			}

			allNullable := true
			for _, sym := range prod.rhs {
				if sym.IsTerminal() || !nullable[sym.Num()] {
					allNullable = false
					break
				}
			}
			if allNullable {
				nullable[prod.lhs.Num()] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return &nullableSet{
		nullable: nullable,
	}
}

func (s *nullableSet) isNullable(sym symbol.Symbol) bool {
	if !sym.IsNonTerminal() {
		return false
	}
	return s.nullable[sym.Num()]
}

// isNullableSeq reports whether every symbol of seq is nullable. An empty sequence is nullable.
func (s *nullableSet) isNullableSeq(seq []symbol.Symbol) bool {
	for _, sym := range seq {
		if !s.isNullable(sym) {
			return false
		}
	}
	return true
}

// derivesRelation maps each non-terminal to the productions it derives directly, in the order the
// productions are numbered.
type derivesRelation struct {
	derives [][]*production
}

func genDerives(prods *productionSet, nonTermCount int) *derivesRelation {
	derives := make([][]*production, nonTermCount)
	for _, prod := range prods.getAllProductions() {
		derives[prod.lhs.Num()] = append(derives[prod.lhs.Num()], prod)
	}

	return &derivesRelation{
		derives: derives,
	}
}

func (r *derivesRelation) find(sym symbol.Symbol) []*production {
	if !sym.IsNonTerminal() {
		return nil
	}
	return r.derives[sym.Num()]
}
