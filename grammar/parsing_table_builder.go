package grammar

import (
	"fmt"

	"github.com/nihei9/lalrgen/grammar/symbol"
)

type lrTableBuilder struct {
	automaton    *lalr1Automaton
	prods        *productionSet
	termCount    int
	nonTermCount int
	symTab       *symbol.SymbolTableReader
	precAndAssoc *precAndAssoc

	// terms is indexed by terminal number.
	terms []symbol.Symbol
}

func (b *lrTableBuilder) build() (*ParsingTable, error) {
	stateCount := len(b.automaton.states)
	ptab := &ParsingTable{
		actionTable:       make([]actionEntry, stateCount*b.termCount),
		goToTable:         make([]goToEntry, stateCount*b.nonTermCount),
		stateCount:        stateCount,
		terminalCount:     b.termCount,
		nonTerminalCount:  b.nonTermCount,
		actions:           make([][]*action, stateCount),
		defaultReductions: make([]productionNum, stateCount),
		srConflicts:       make([]int, stateCount),
		rrConflicts:       make([]int, stateCount),
		usedProductions:   make([]bool, b.prods.tableSize()),
		InitialState:      b.automaton.initialState,
		FinalState:        b.automaton.finalState,
	}

	for _, state := range b.automaton.states {
		raw, err := b.genRawActions(state)
		if err != nil {
			return nil, err
		}

		res := resolveConflicts(state.num, state.num == ptab.FinalState, raw)
		defRed := selectDefaultReduction(res.actions)

		ptab.actions[state.num] = res.actions
		ptab.defaultReductions[state.num] = defRed
		ptab.conflicts = append(ptab.conflicts, res.conflicts...)
		ptab.srConflicts[state.num] = res.srCount
		ptab.rrConflicts[state.num] = res.rrCount
		ptab.srTotal += res.srCount
		ptab.rrTotal += res.rrCount

		for _, act := range res.actions {
			if act.ty != ActionTypeReduce {
				continue
			}
			if act.suppressed == suppressionNone || act.suppressed == suppressionDefault {
				ptab.usedProductions[act.prod] = true
			}
		}

		if res.srCount > 0 || res.rrCount > 0 {
			log.Warningf("state %v contains %v shift/reduce and %v reduce/reduce conflicts", state.num, res.srCount, res.rrCount)
		}

		b.writeActionRow(ptab, state.num, res.actions, defRed)

		for _, t := range state.transitions {
			if t.symbol.IsNonTerminal() {
				ptab.writeGoTo(state.num, t.symbol, t.state)
			}
		}
	}

	for _, prod := range ptab.unusedProductions() {
		log.Warningf("rule %v is never reduced", prod.External())
	}

	return ptab, nil
}

// genRawActions lists one shift per terminal transition, the accepting action in the final state,
// and one reduction per look-ahead terminal of each reducible production.
func (b *lrTableBuilder) genRawActions(state *lrState) ([]*action, error) {
	var acts []*action
	for _, t := range state.transitions {
		if !t.symbol.IsTerminal() {
			continue
		}
		acts = append(acts, &action{
			sym:   t.symbol,
			ty:    ActionTypeShift,
			state: t.state,
			prec:  b.precAndAssoc.terminalPrecedence(t.symbol.Num()),
			assoc: b.precAndAssoc.terminalAssociativity(t.symbol.Num()),
		})
	}

	if state.num == b.automaton.finalState {
		acts = append(acts, &action{
			sym:  symbol.SymbolEOF,
			ty:   ActionTypeAccept,
			prod: productionNumStart,
		})
	}

	for _, r := range b.automaton.reductions[state.num] {
		if r.prod == productionNumStart {
			return nil, fmt.Errorf("state %v reduces by the augmenting production", state.num)
		}
		for _, num := range r.lookAhead.nums() {
			sym, err := b.terminalSymbol(num)
			if err != nil {
				return nil, err
			}
			acts = append(acts, &action{
				sym:   sym,
				ty:    ActionTypeReduce,
				prod:  r.prod,
				prec:  b.precAndAssoc.productionPredence(r.prod),
				assoc: b.precAndAssoc.productionAssociativity(r.prod),
			})
		}
	}

	return acts, nil
}

func (b *lrTableBuilder) terminalSymbol(num symbol.SymbolNum) (symbol.Symbol, error) {
	if b.terms == nil {
		b.terms = make([]symbol.Symbol, b.termCount)
		for _, sym := range b.symTab.TerminalSymbols() {
			b.terms[sym.Num()] = sym
		}
	}
	if num.Int() >= len(b.terms) || b.terms[num].IsNil() {
		return symbol.SymbolNil, fmt.Errorf("terminal symbol not found: %v", num)
	}
	return b.terms[num], nil
}

// selectDefaultReduction picks the production whose active reductions cover the most terminals.
// A tie goes to the production defined earlier. The chosen production's active reductions are
// marked as covered by the default.
func selectDefaultReduction(acts []*action) productionNum {
	count := map[productionNum]int{}
	for _, act := range acts {
		if act.ty == ActionTypeReduce && act.isActive() {
			count[act.prod]++
		}
	}

	defRed := productionNumNil
	max := 0
	for prod, n := range count {
		if n > max || (n == max && prod < defRed) {
			defRed = prod
			max = n
		}
	}
	if defRed == productionNumNil {
		return productionNumNil
	}

	for _, act := range acts {
		if act.ty == ActionTypeReduce && act.prod == defRed && act.isActive() {
			act.suppressed = suppressionDefault
		}
	}

	return defRed
}

// writeActionRow fills a row of the dense action table. Terminals without an active action fall
// back to the default reduction, except those a non-associative precedence made errors.
func (b *lrTableBuilder) writeActionRow(ptab *ParsingTable, state stateNum, acts []*action, defRed productionNum) {
	explicitError := map[symbol.Symbol]struct{}{}
	for _, act := range acts {
		switch {
		case act.ty == ActionTypeError:
			explicitError[act.sym] = struct{}{}
		case !act.isActive():
		case act.ty == ActionTypeShift:
			ptab.writeAction(state, act.sym, newShiftActionEntry(act.state))
		case act.ty == ActionTypeAccept:
			ptab.writeAction(state, act.sym, newReduceActionEntry(productionNumStart))
		case act.ty == ActionTypeReduce:
			ptab.writeAction(state, act.sym, newReduceActionEntry(act.prod))
		}
	}

	if defRed == productionNumNil {
		return
	}
	base := state.Int() * ptab.terminalCount
	for num := symbol.SymbolEOF.Num().Int(); num < ptab.terminalCount; num++ {
		if !ptab.actionTable[base+num].isEmpty() {
			continue
		}
		if len(explicitError) > 0 {
			sym, err := b.terminalSymbol(symbol.SymbolNum(num))
			if err == nil {
				if _, ok := explicitError[sym]; ok {
					continue
				}
			}
		}
		ptab.actionTable[base+num] = newReduceActionEntry(defRed)
	}
}
