package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/lalrgen/grammar/symbol"
)

// gotoTransition is a transition on a non-terminal. The DeRemer and Pennello relations are defined
// over these transitions.
type gotoTransition struct {
	from stateNum
	sym  symbol.Symbol
	to   stateNum
}

type gotoKey struct {
	from stateNum
	sym  symbol.Symbol
}

// reduction is a reducible production in a state together with its LALR(1) look-ahead set.
type reduction struct {
	prod      productionNum
	lookAhead terminalSet

	// lookback holds the indexes of the goto transitions this reduction looks back to.
	lookback []int
}

type lalr1Automaton struct {
	*lr0Automaton

	// reductions is indexed by state number and ordered by production number.
	reductions [][]*reduction

	gotos []*gotoTransition

	// directReads is DR, the terminals each goto transition can read right away. The look-ahead
	// set of a reduction always contains the DR sets of the transitions it looks back to.
	directReads []terminalSet
}

func genLALR1Automaton(lr0 *lr0Automaton, prods *productionSet, derives *derivesRelation, nullable *nullableSet, termCount int) (*lalr1Automaton, error) {
	goal := symbol.SymbolNil
	{
		ps, ok := prods.findByLHS(symbol.SymbolStart)
		if !ok {
			return nil, fmt.Errorf("the augmented start symbol has no production")
		}
		goal = ps[0].rhs[0]
	}

	var gotos []*gotoTransition
	gotoIndex := map[gotoKey]int{}
	{
		for _, state := range lr0.states {
			for _, t := range state.transitions {
				if !t.symbol.IsNonTerminal() {
					continue
				}
				gotos = append(gotos, &gotoTransition{
					from: state.num,
					sym:  t.symbol,
					to:   t.state,
				})
			}
		}
		sort.Slice(gotos, func(i, j int) bool {
			if gotos[i].sym != gotos[j].sym {
				return gotos[i].sym.Num() < gotos[j].sym.Num()
			}
			return gotos[i].from < gotos[j].from
		})
		for i, g := range gotos {
			gotoIndex[gotoKey{from: g.from, sym: g.sym}] = i
		}
	}

	reductions := make([][]*reduction, len(lr0.states))
	for _, state := range lr0.states {
		for _, prod := range state.reducible {
			reductions[state.num] = append(reductions[state.num], &reduction{
				prod: prod,
			})
		}
	}
	findReduction := func(state stateNum, prod productionNum) *reduction {
		for _, r := range reductions[state] {
			if r.prod == prod {
				return r
			}
		}
		return nil
	}

	// DR(p, A) = { t | goto(p, A) has a transition on t }
	dr := make([]terminalSet, len(gotos))
	for i, g := range gotos {
		dr[i] = newTerminalSet(termCount)
		for _, t := range lr0.states[g.to].transitions {
			if !t.symbol.IsTerminal() {
				continue
			}
			dr[i].add(t.symbol.Num())
		}
		if g.from == lr0.initialState && g.sym == goal {
			dr[i].add(symbol.SymbolEOF.Num())
		}
	}

	// (p, A) reads (r, C) iff r = goto(p, A) and C is nullable.
	reads := make([][]int, len(gotos))
	for i, g := range gotos {
		for _, t := range lr0.states[g.to].transitions {
			if !nullable.isNullable(t.symbol) {
				continue
			}
			reads[i] = append(reads[i], gotoIndex[gotoKey{from: g.to, sym: t.symbol}])
		}
	}

	// (p', B) includes (p, A) iff B → βAγ, γ is nullable, and p' reaches p on β.
	// (q, A → ω) lookback (p, A) iff p reaches q on ω.
	includes := make([][]int, len(gotos))
	for i, g := range gotos {
		for _, prod := range derives.find(g.sym) {
			path := make([]stateNum, 0, prod.rhsLen+1)
			path = append(path, g.from)
			q := g.from
			for _, sym := range prod.rhs {
				next, ok := lr0.states[q].next[sym]
				if !ok {
					return nil, fmt.Errorf("state %v has no transition on %v", q, sym)
				}
				q = next
				path = append(path, q)
			}

			r := findReduction(q, prod.num)
			if r == nil {
				return nil, fmt.Errorf("state %v has no reducible item of production %v", q, prod.num)
			}
			r.lookback = append(r.lookback, i)

			for k := prod.rhsLen - 1; k >= 0; k-- {
				sym := prod.rhs[k]
				if !sym.IsNonTerminal() {
					break
				}
				j := gotoIndex[gotoKey{from: path[k], sym: sym}]
				includes[j] = append(includes[j], i)
				if !nullable.isNullable(sym) {
					break
				}
			}
		}
	}

	read := digraph(reads, dr)
	follow := digraph(includes, read)

	for _, rs := range reductions {
		for _, r := range rs {
			r.lookAhead = newTerminalSet(termCount)
			for _, i := range r.lookback {
				r.lookAhead.union(follow[i])
			}
		}
	}

	log.Infof("LALR(1) look-ahead: %v goto transitions", len(gotos))

	return &lalr1Automaton{
		lr0Automaton: lr0,
		reductions:   reductions,
		gotos:        gotos,
		directReads:  dr,
	}, nil
}
