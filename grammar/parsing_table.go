package grammar

import (
	"github.com/nihei9/lalrgen/grammar/symbol"
)

type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state * -1)
}

func newReduceActionEntry(prod productionNum) actionEntry {
	return actionEntry(prod)
}

func (e actionEntry) isEmpty() bool {
	return e == actionEntryEmpty
}

// describe decodes an entry. The accepting entry is a reduction by the augmenting production.
func (e actionEntry) describe() (ActionType, stateNum, productionNum) {
	if e == actionEntryEmpty {
		return ActionTypeError, stateNumInitial, productionNumNil
	}
	if e < 0 {
		return ActionTypeShift, stateNum(e * -1), productionNumNil
	}
	if productionNum(e) == productionNumStart {
		return ActionTypeAccept, stateNumInitial, productionNumStart
	}
	return ActionTypeReduce, stateNumInitial, productionNum(e)
}

type GoToType string

const (
	GoToTypeRegistered = GoToType("registered")
	GoToTypeError      = GoToType("error")
)

type goToEntry uint

const goToEntryEmpty = goToEntry(0)

func newGoToEntry(state stateNum) goToEntry {
	return goToEntry(state)
}

func (e goToEntry) describe() (GoToType, stateNum) {
	if e == goToEntryEmpty {
		return GoToTypeError, stateNumInitial
	}
	return GoToTypeRegistered, stateNum(e)
}

type ParsingTable struct {
	actionTable      []actionEntry
	goToTable        []goToEntry
	stateCount       int
	terminalCount    int
	nonTerminalCount int

	// actions is indexed by state number and holds every action of the state after conflict
	// resolution, suppressed ones included.
	actions [][]*action

	// defaultReductions is indexed by state number. productionNumNil means the state has no
	// default reduction.
	defaultReductions []productionNum

	conflicts []conflict

	// srConflicts and rrConflicts are indexed by state number and count unresolved conflicts.
	srConflicts []int
	rrConflicts []int
	srTotal     int
	rrTotal     int

	// usedProductions is indexed by production number. A production is used when some state
	// reduces by it.
	usedProductions []bool

	InitialState stateNum
	FinalState   stateNum
}

func (t *ParsingTable) getAction(state stateNum, sym symbol.SymbolNum) (ActionType, stateNum, productionNum) {
	pos := state.Int()*t.terminalCount + sym.Int()
	return t.actionTable[pos].describe()
}

func (t *ParsingTable) getGoTo(state stateNum, sym symbol.SymbolNum) (GoToType, stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Int()
	return t.goToTable[pos].describe()
}

func (t *ParsingTable) writeAction(state stateNum, sym symbol.Symbol, act actionEntry) {
	t.actionTable[state.Int()*t.terminalCount+sym.Num().Int()] = act
}

func (t *ParsingTable) writeGoTo(state stateNum, sym symbol.Symbol, nextState stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Num().Int()
	t.goToTable[pos] = newGoToEntry(nextState)
}

// unusedProductions returns the user-defined productions no state reduces by.
func (t *ParsingTable) unusedProductions() []productionNum {
	var unused []productionNum
	for num := productionNumMin; num.Int() < len(t.usedProductions); num++ {
		if !t.usedProductions[num] {
			unused = append(unused, num)
		}
	}
	return unused
}
