package grammar

import (
	"sort"

	"github.com/nihei9/lalrgen/grammar/symbol"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
	ActionTypeError  = ActionType("error")
)

// order returns the position of the action type among the actions on the same terminal.
func (t ActionType) order() int {
	switch t {
	case ActionTypeAccept:
		return 0
	case ActionTypeShift:
		return 1
	case ActionTypeReduce:
		return 2
	default:
		return 3
	}
}

// suppression tells why an action does not take effect.
type suppression int

const (
	suppressionNone suppression = iota
	// suppressionConflict means the action lost a conflict no precedence could resolve.
	suppressionConflict
	// suppressionPrecedence means the action lost to precedence or associativity.
	suppressionPrecedence
	// suppressionDefault means the state's default reduction covers the action.
	suppressionDefault
)

type action struct {
	sym   symbol.Symbol
	ty    ActionType
	state stateNum
	prod  productionNum

	// prec and assoc come from the terminal for a shift and from the production for a reduction.
	prec  int
	assoc assocType

	suppressed suppression
}

func (a *action) isActive() bool {
	return a.suppressed == suppressionNone
}

// sortActions orders actions by terminal number. Actions on the same terminal are ordered accept,
// shift, reduce (by production number), error.
func sortActions(acts []*action) {
	sort.SliceStable(acts, func(i, j int) bool {
		a, b := acts[i], acts[j]
		if a.sym != b.sym {
			return a.sym.Num() < b.sym.Num()
		}
		if a.ty != b.ty {
			return a.ty.order() < b.ty.order()
		}
		return a.prod < b.prod
	})
}

type conflictResolutionMethod int

func (m conflictResolutionMethod) Int() int {
	return int(m)
}

const (
	ResolvedByPrec      conflictResolutionMethod = 1
	ResolvedByAssoc     conflictResolutionMethod = 2
	ResolvedByShift     conflictResolutionMethod = 3
	ResolvedByProdOrder conflictResolutionMethod = 4
	ResolvedByAccept    conflictResolutionMethod = 5
)

type conflict interface {
	conflict()
	// counted reports whether the conflict counts as unresolved.
	counted() bool
}

// shiftReduceConflict is a conflict between a shift (or the accepting action) and a reduction.
// adopted is ActionTypeError when a non-associative precedence made both lose.
type shiftReduceConflict struct {
	state      stateNum
	sym        symbol.Symbol
	nextState  stateNum
	prodNum    productionNum
	accept     bool
	adopted    ActionType
	resolvedBy conflictResolutionMethod
}

func (c *shiftReduceConflict) conflict() {
}

func (c *shiftReduceConflict) counted() bool {
	return c.resolvedBy == ResolvedByShift || c.resolvedBy == ResolvedByAccept
}

// reduceReduceConflict is a conflict between two reductions. prodNum1 is the adopted one.
type reduceReduceConflict struct {
	state      stateNum
	sym        symbol.Symbol
	prodNum1   productionNum
	prodNum2   productionNum
	resolvedBy conflictResolutionMethod
}

func (c *reduceReduceConflict) conflict() {
}

func (c *reduceReduceConflict) counted() bool {
	return true
}

var (
	_ conflict = &shiftReduceConflict{}
	_ conflict = &reduceReduceConflict{}
)

type resolution struct {
	// actions holds copies of the input actions, sorted by sortActions, with their suppression
	// levels set. An error action follows the actions of every terminal a non-associative
	// precedence turned into an error.
	actions []*action

	conflicts []conflict
	srCount   int
	rrCount   int
}

// resolveConflicts decides the winner among the actions on each terminal of a state. The input is
// left untouched.
//
// The first action on a terminal is the preferred one. Every following action is compared with it:
//   - On `$end` in the final state, reductions lose to the accepting action.
//   - Between a shift and a reduction having precedence, the higher precedence wins. On equal
//     precedence the associativity of the terminal decides: left reduces, right shifts, and
//     nonassoc makes both lose and the terminal an error.
//   - Between a shift and a reduction lacking precedence, the shift wins.
//   - Between two reductions, the one defined earlier wins.
//
// Only conflicts resolved by the last three of these rules (accepting, shift preference, and
// production order) are counted.
func resolveConflicts(state stateNum, isFinal bool, raw []*action) *resolution {
	acts := make([]*action, len(raw))
	for i, a := range raw {
		c := *a
		c.suppressed = suppressionNone
		acts[i] = &c
	}
	sortActions(acts)

	res := &resolution{
		actions: make([]*action, 0, len(acts)),
	}
	for i := 0; i < len(acts); {
		j := i + 1
		for j < len(acts) && acts[j].sym == acts[i].sym {
			j++
		}
		group := acts[i:j]
		i = j

		res.actions = append(res.actions, group...)
		if len(group) == 1 {
			continue
		}

		pref := group[0]
		madeError := false
		for _, a := range group[1:] {
			switch {
			case isFinal && a.sym.IsEOF():
				a.suppressed = suppressionConflict
				res.srCount++
				res.conflicts = append(res.conflicts, &shiftReduceConflict{
					state:      state,
					sym:        a.sym,
					prodNum:    a.prod,
					accept:     true,
					adopted:    ActionTypeAccept,
					resolvedBy: ResolvedByAccept,
				})
			case pref.ty == ActionTypeShift:
				c := &shiftReduceConflict{
					state:     state,
					sym:       a.sym,
					nextState: pref.state,
					prodNum:   a.prod,
				}
				if pref.prec > precNil && a.prec > precNil {
					switch {
					case pref.prec < a.prec:
						pref.suppressed = suppressionPrecedence
						c.adopted = ActionTypeReduce
						c.resolvedBy = ResolvedByPrec
					case pref.prec > a.prec:
						a.suppressed = suppressionPrecedence
						c.adopted = ActionTypeShift
						c.resolvedBy = ResolvedByPrec
					case pref.assoc == assocTypeLeft:
						pref.suppressed = suppressionPrecedence
						c.adopted = ActionTypeReduce
						c.resolvedBy = ResolvedByAssoc
					case pref.assoc == assocTypeRight:
						a.suppressed = suppressionPrecedence
						c.adopted = ActionTypeShift
						c.resolvedBy = ResolvedByAssoc
					case pref.assoc == assocTypeNonAssoc:
						pref.suppressed = suppressionPrecedence
						a.suppressed = suppressionPrecedence
						c.adopted = ActionTypeError
						c.resolvedBy = ResolvedByAssoc
						madeError = true
					default:
						// Precedence without associativity cannot settle a tie.
						a.suppressed = suppressionConflict
						c.adopted = ActionTypeShift
						c.resolvedBy = ResolvedByShift
						res.srCount++
					}
					res.conflicts = append(res.conflicts, c)
					if c.adopted == ActionTypeReduce {
						pref = a
					}
					break
				}
				a.suppressed = suppressionConflict
				c.adopted = ActionTypeShift
				c.resolvedBy = ResolvedByShift
				res.srCount++
				res.conflicts = append(res.conflicts, c)
			default:
				a.suppressed = suppressionConflict
				res.rrCount++
				res.conflicts = append(res.conflicts, &reduceReduceConflict{
					state:      state,
					sym:        a.sym,
					prodNum1:   pref.prod,
					prodNum2:   a.prod,
					resolvedBy: ResolvedByProdOrder,
				})
			}
		}

		if madeError {
			// A later action may still have won over the suppressed shift.
			active := false
			for _, a := range group {
				if a.isActive() {
					active = true
					break
				}
			}
			if !active {
				res.actions = append(res.actions, &action{
					sym: group[0].sym,
					ty:  ActionTypeError,
				})
			}
		}
	}

	return res
}
