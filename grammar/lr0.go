package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/lalrgen/grammar/symbol"
)

type lr0Automaton struct {
	initialState stateNum

	// finalState is the goto of the initial state on the start symbol. It has the item
	// `$accept → start・$end`.
	finalState stateNum

	// states is indexed by state number.
	states []*lrState
}

func genLR0Automaton(prods *productionSet, derives *derivesRelation, startSym symbol.Symbol) (*lr0Automaton, error) {
	if !startSym.IsStart() {
		return nil, fmt.Errorf("passed symbold is not a start symbol")
	}

	automaton := &lr0Automaton{
		initialState: stateNumInitial,
	}

	knownKernels := map[kernelID]stateNum{}
	addState := func(k *kernel, accessingSym symbol.Symbol) stateNum {
		num := stateNum(len(automaton.states))
		automaton.states = append(automaton.states, &lrState{
			kernel:          k,
			num:             num,
			accessingSymbol: accessingSym,
		})
		knownKernels[k.id] = num
		return num
	}

	// Generate an initial kernel.
	var goal symbol.Symbol
	{
		ps, ok := prods.findByLHS(startSym)
		if !ok || len(ps) != 1 {
			return nil, fmt.Errorf("the augmented start symbol must have exactly one production")
		}
		goal = ps[0].rhs[0]

		initialItem, err := newLR0Item(ps[0], 0)
		if err != nil {
			return nil, err
		}

		k, err := newKernel([]*lrItem{initialItem})
		if err != nil {
			return nil, err
		}

		addState(k, symbol.SymbolNil)
	}

	// States are numbered in the order they are discovered, and the loop visits them in the same
	// order, so the numbering depends only on the grammar.
	for i := 0; i < len(automaton.states); i++ {
		state := automaton.states[i]

		items, err := genLR0Closure(state.kernel, prods, derives)
		if err != nil {
			return nil, err
		}

		neighbours, err := genNeighbourKernels(items, prods)
		if err != nil {
			return nil, err
		}

		state.next = map[symbol.Symbol]stateNum{}
		state.transitions = make([]*transition, 0, len(neighbours))
		for _, n := range neighbours {
			to, known := knownKernels[n.kernel.id]
			if !known {
				to = addState(n.kernel, n.symbol)
				log.Debugf("state %v: %v items, reached from state %v", to, len(n.kernel.items), state.num)
			}
			state.next[n.symbol] = to
			state.transitions = append(state.transitions, &transition{
				symbol: n.symbol,
				state:  to,
			})
		}

		for _, item := range items {
			if item.reducible {
				state.reducible = append(state.reducible, item.prod)
			}
		}
		sort.Slice(state.reducible, func(i, j int) bool {
			return state.reducible[i] < state.reducible[j]
		})
	}

	finalState, ok := automaton.states[automaton.initialState].next[goal]
	if !ok {
		return nil, fmt.Errorf("the initial state has no transition on the start symbol")
	}
	automaton.finalState = finalState

	log.Infof("LR(0) automaton: %v states", len(automaton.states))

	return automaton, nil
}

// genLR0Closure returns the kernel items followed by the items the closure adds. The closure adds
// `B →・γ` for every production of B whenever some item has B right after its dot.
func genLR0Closure(k *kernel, prods *productionSet, derives *derivesRelation) ([]*lrItem, error) {
	items := []*lrItem{}
	knownItems := map[itemNum]struct{}{}
	knownNonTerms := map[symbol.Symbol]struct{}{}
	for _, item := range k.items {
		items = append(items, item)
		knownItems[item.num] = struct{}{}
	}
	for i := 0; i < len(items); i++ {
		sym := items[i].dottedSymbol
		if !sym.IsNonTerminal() {
			continue
		}
		if _, done := knownNonTerms[sym]; done {
			continue
		}
		knownNonTerms[sym] = struct{}{}

		for _, prod := range derives.find(sym) {
			item, err := newLR0Item(prod, 0)
			if err != nil {
				return nil, err
			}
			if _, exist := knownItems[item.num]; exist {
				continue
			}
			items = append(items, item)
			knownItems[item.num] = struct{}{}
		}
	}

	return items, nil
}

type neighbourKernel struct {
	symbol symbol.Symbol
	kernel *kernel
}

// genNeighbourKernels returns the successor kernels ordered by symbol.Less. `$end` never yields a
// successor because the parser accepts on it instead.
func genNeighbourKernels(items []*lrItem, prods *productionSet) ([]*neighbourKernel, error) {
	kItemMap := map[symbol.Symbol][]*lrItem{}
	for _, item := range items {
		if item.dottedSymbol.IsNil() || item.dottedSymbol.IsEOF() {
			continue
		}
		prod, ok := prods.findByNum(item.prod)
		if !ok {
			return nil, fmt.Errorf("a production was not found: %v", item.prod)
		}
		kItem, err := newLR0Item(prod, item.dot+1)
		if err != nil {
			return nil, err
		}
		kItemMap[item.dottedSymbol] = append(kItemMap[item.dottedSymbol], kItem)
	}

	nextSyms := []symbol.Symbol{}
	for sym := range kItemMap {
		nextSyms = append(nextSyms, sym)
	}
	sort.Slice(nextSyms, func(i, j int) bool {
		return symbol.Less(nextSyms[i], nextSyms[j])
	})

	kernels := []*neighbourKernel{}
	for _, sym := range nextSyms {
		k, err := newKernel(kItemMap[sym])
		if err != nil {
			return nil, err
		}
		kernels = append(kernels, &neighbourKernel{
			symbol: sym,
			kernel: k,
		})
	}

	return kernels, nil
}
