package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/lalrgen/grammar/symbol"
	spec "github.com/nihei9/lalrgen/spec/grammar"
)

func assocToText(assoc assocType) string {
	switch assoc {
	case assocTypeLeft:
		return spec.AssociativityLeft
	case assocTypeRight:
		return spec.AssociativityRight
	case assocTypeNonAssoc:
		return spec.AssociativityNonAssoc
	}
	return spec.AssociativityNone
}

func (s suppression) text() string {
	switch s {
	case suppressionConflict:
		return spec.SuppressionConflict
	case suppressionPrecedence:
		return spec.SuppressionPrecedence
	case suppressionDefault:
		return spec.SuppressionDefault
	}
	return spec.SuppressionNone
}

// genReport describes the automaton and the parsing table. Production numbers in the report are
// the external ones.
func genReport(gram *Grammar, automaton *lalr1Automaton, nullable *nullableSet, tab *ParsingTable) (*spec.Report, error) {
	symTab := gram.symbolTable
	pa := gram.precAndAssoc

	var terms []*spec.Terminal
	{
		termSyms := symTab.TerminalSymbols()
		terms = make([]*spec.Terminal, len(termSyms)+1)

		for _, sym := range termSyms {
			name, ok := symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate terminals: symbol not found: %v", sym)
			}

			terms[sym.Num()] = &spec.Terminal{
				Number:        sym.Num().Int(),
				Name:          name,
				Precedence:    pa.terminalPrecedence(sym.Num()),
				Associativity: assocToText(pa.terminalAssociativity(sym.Num())),
			}
		}
	}

	var nonTerms []*spec.NonTerminal
	{
		nonTermSyms := symTab.NonTerminalSymbols()
		nonTerms = make([]*spec.NonTerminal, len(nonTermSyms)+1)
		for _, sym := range nonTermSyms {
			name, ok := symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
			}

			nonTerms[sym.Num()] = &spec.NonTerminal{
				Number:   sym.Num().Int(),
				Name:     name,
				Nullable: nullable.isNullable(sym),
			}
		}
	}

	var prods []*spec.Production
	{
		ps := gram.productionSet.getAllProductions()
		prods = make([]*spec.Production, len(ps))
		for _, p := range ps {
			rhs := make([]int, len(p.rhs))
			for i, e := range p.rhs {
				if e.IsTerminal() {
					rhs[i] = e.Num().Int()
				} else {
					rhs[i] = e.Num().Int() * -1
				}
			}

			prods[p.num.External()] = &spec.Production{
				Number:        p.num.External(),
				LHS:           p.lhs.Num().Int(),
				RHS:           rhs,
				Precedence:    pa.productionPredence(p.num),
				Associativity: assocToText(pa.productionAssociativity(p.num)),
				Used:          p.lhs.IsStart() || tab.usedProductions[p.num],
			}
		}
	}

	var states []*spec.State
	{
		srConflicts := map[stateNum][]*shiftReduceConflict{}
		rrConflicts := map[stateNum][]*reduceReduceConflict{}
		for _, con := range tab.conflicts {
			switch c := con.(type) {
			case *shiftReduceConflict:
				srConflicts[c.state] = append(srConflicts[c.state], c)
			case *reduceReduceConflict:
				rrConflicts[c.state] = append(rrConflicts[c.state], c)
			}
		}

		states = make([]*spec.State, len(automaton.states))
		for _, s := range automaton.states {
			kernel := make([]*spec.Item, len(s.items))
			for i, item := range s.items {
				kernel[i] = &spec.Item{
					Production: item.prod.External(),
					Dot:        item.dot,
				}
			}

			sort.Slice(kernel, func(i, j int) bool {
				if kernel[i].Production < kernel[j].Production {
					return true
				}
				if kernel[i].Production > kernel[j].Production {
					return false
				}
				return kernel[i].Dot < kernel[j].Dot
			})

			acts := make([]*spec.Action, len(tab.actions[s.num]))
			for i, a := range tab.actions[s.num] {
				act := &spec.Action{
					Symbol:      a.sym.Num().Int(),
					Type:        string(a.ty),
					Suppression: a.suppressed.text(),
				}
				switch a.ty {
				case ActionTypeShift:
					act.State = a.state.Int()
				case ActionTypeReduce:
					act.Production = a.prod.External()
				}
				acts[i] = act
			}

			var defRed *int
			if d := tab.defaultReductions[s.num]; d != productionNumNil {
				n := d.External()
				defRed = &n
			}

			goTo := []*spec.Transition{}
			for _, t := range s.transitions {
				if !t.symbol.IsNonTerminal() {
					continue
				}
				goTo = append(goTo, &spec.Transition{
					Symbol: t.symbol.Num().Int(),
					State:  t.state.Int(),
				})
			}

			sr := []*spec.SRConflict{}
			for _, c := range srConflicts[s.num] {
				conflict := &spec.SRConflict{
					Symbol:     c.sym.Num().Int(),
					State:      c.nextState.Int(),
					Production: c.prodNum.External(),
					Accept:     c.accept,
					ResolvedBy: c.resolvedBy.Int(),
				}
				switch c.adopted {
				case ActionTypeShift:
					n := c.nextState.Int()
					conflict.AdoptedState = &n
				case ActionTypeReduce:
					n := c.prodNum.External()
					conflict.AdoptedProduction = &n
				}
				sr = append(sr, conflict)
			}

			rr := []*spec.RRConflict{}
			for _, c := range rrConflicts[s.num] {
				rr = append(rr, &spec.RRConflict{
					Symbol:            c.sym.Num().Int(),
					Production1:       c.prodNum1.External(),
					Production2:       c.prodNum2.External(),
					AdoptedProduction: c.prodNum1.External(),
					ResolvedBy:        c.resolvedBy.Int(),
				})
			}

			states[s.num.Int()] = &spec.State{
				Number:           s.num.Int(),
				Kernel:           kernel,
				Actions:          acts,
				DefaultReduction: defRed,
				GoTo:             goTo,
				SRConflict:       sr,
				RRConflict:       rr,
				SRConflictCount:  tab.srConflicts[s.num],
				RRConflictCount:  tab.rrConflicts[s.num],
			}
		}
	}

	return &spec.Report{
		Terminals:       terms,
		NonTerminals:    nonTerms,
		Productions:     prods,
		States:          states,
		InitialState:    tab.InitialState.Int(),
		FinalState:      tab.FinalState.Int(),
		SRConflictCount: tab.srTotal,
		RRConflictCount: tab.rrTotal,
		UnusedRuleCount: len(tab.unusedProductions()),
	}, nil
}

func symbolName(symTab *symbol.SymbolTableReader, sym symbol.Symbol) string {
	text, ok := symTab.ToText(sym)
	if !ok {
		return fmt.Sprintf("<symbol not found: %v>", sym)
	}
	return text
}
