package grammar

import (
	"fmt"
	"testing"

	"github.com/nihei9/lalrgen/compressor"
	"github.com/nihei9/lalrgen/grammar/symbol"
	spec "github.com/nihei9/lalrgen/spec/grammar"
)

func danglingElseGrammar() *spec.GrammarModel {
	return &spec.GrammarModel{
		Name:      "dangling_else",
		Terminals: []string{"if", "then", "else", "other", "cond"},
		Rules: []*spec.Rule{
			rule("S", "if", "E", "then", "S"),
			rule("S", "if", "E", "then", "S", "else", "S"),
			rule("S", "other"),
			rule("E", "cond"),
		},
	}
}

func ambiguousExprGrammar() *spec.GrammarModel {
	return &spec.GrammarModel{
		Name:      "ambiguous_expr",
		Terminals: []string{"id"},
		Precedence: []*spec.PrecedenceLevel{
			precLevel(spec.AssociativityLeft, "add"),
			precLevel(spec.AssociativityLeft, "mul"),
		},
		Rules: []*spec.Rule{
			rule("E", "E", "add", "E"),
			rule("E", "E", "mul", "E"),
			rule("E", "id"),
		},
	}
}

func nullableGrammar() *spec.GrammarModel {
	return &spec.GrammarModel{
		Name: "nullable",
		Rules: []*spec.Rule{
			rule("B", "A", "A"),
			rule("A"),
		},
	}
}

func testModels() []*spec.GrammarModel {
	return []*spec.GrammarModel{
		exprGrammar(),
		danglingElseGrammar(),
		ambiguousExprGrammar(),
		nullableGrammar(),
		{
			Name:      "reduce_reduce",
			Terminals: []string{"a"},
			Rules: []*spec.Rule{
				rule("s", "x"),
				rule("s", "y"),
				rule("x", "a"),
				rule("y", "a"),
			},
		},
		{
			Name:      "accept",
			Terminals: []string{"a"},
			Rules: []*spec.Rule{
				rule("s", "x"),
				rule("x", "s"),
				rule("x", "a"),
			},
		},
		{
			Name:      "nonassoc",
			Terminals: []string{"id"},
			Precedence: []*spec.PrecedenceLevel{
				precLevel(spec.AssociativityNonAssoc, "eq"),
			},
			Rules: []*spec.Rule{
				rule("E", "E", "eq", "E"),
				rule("E", "id"),
			},
		},
	}
}

// findReducingState returns the first state reducing by prod.
func findReducingState(t *testing.T, a *testAutomata, prod *production) *lrState {
	t.Helper()

	for _, state := range a.lr0.states {
		for _, p := range state.reducible {
			if p == prod.num {
				return state
			}
		}
	}
	t.Fatalf("no state reduces by production %v", prod.num)
	return nil
}

func TestParsingTable_LeftRecursion(t *testing.T) {
	a := genTestAutomata(t, &spec.GrammarModel{
		Name:      "test",
		Terminals: []string{"plus", "id"},
		Rules: []*spec.Rule{
			rule("E", "E", "plus", "T"),
			rule("E", "T"),
			rule("T", "id"),
		},
	})
	ptab := a.table

	// $accept : . E $end, T : id ., $accept : E . $end, E : T ., E : E plus . T, and E : E plus T .
	if ptab.stateCount != 6 {
		t.Errorf("unexpected state count; want: %v, got: %v", 6, ptab.stateCount)
	}
	if ptab.srTotal != 0 || ptab.rrTotal != 0 || len(ptab.conflicts) != 0 {
		t.Errorf("unexpected conflicts; shift/reduce: %v, reduce/reduce: %v", ptab.srTotal, ptab.rrTotal)
	}

	genSym := newTestSymbolGenerator(t, a.gram.symbolTable)
	genProd := newTestProductionGenerator(t, genSym, a.gram.productionSet)

	expected := []struct {
		state stateNum
		sym   string
		ty    ActionType
		next  stateNum
		prod  *production
	}{
		{state: 0, sym: "id", ty: ActionTypeShift, next: 1},
		{state: 0, sym: "plus", ty: ActionTypeError},
		{state: 0, sym: "$end", ty: ActionTypeError},
		{state: 1, sym: "plus", ty: ActionTypeReduce, prod: genProd("T", "id")},
		{state: 1, sym: "$end", ty: ActionTypeReduce, prod: genProd("T", "id")},
		{state: 2, sym: "$end", ty: ActionTypeAccept},
		{state: 2, sym: "plus", ty: ActionTypeShift, next: 4},
		{state: 3, sym: "plus", ty: ActionTypeReduce, prod: genProd("E", "T")},
		{state: 4, sym: "id", ty: ActionTypeShift, next: 1},
		{state: 5, sym: "$end", ty: ActionTypeReduce, prod: genProd("E", "E", "plus", "T")},
	}
	for _, e := range expected {
		t.Run(fmt.Sprintf("state #%v on %v", e.state, e.sym), func(t *testing.T) {
			ty, next, prod := ptab.getAction(e.state, genSym(e.sym).Num())
			if ty != e.ty {
				t.Fatalf("unexpected action; want: %v, got: %v", e.ty, ty)
			}
			switch ty {
			case ActionTypeShift:
				if next != e.next {
					t.Errorf("unexpected next state; want: %v, got: %v", e.next, next)
				}
			case ActionTypeReduce:
				if prod != e.prod.num {
					t.Errorf("unexpected production; want: %v, got: %v", e.prod.num, prod)
				}
			}
		})
	}

	goToTests := []struct {
		state stateNum
		sym   string
		next  stateNum
	}{
		{state: 0, sym: "E", next: 2},
		{state: 0, sym: "T", next: 3},
		{state: 4, sym: "T", next: 5},
	}
	for _, e := range goToTests {
		ty, next := ptab.getGoTo(e.state, genSym(e.sym).Num())
		if ty != GoToTypeRegistered || next != e.next {
			t.Errorf("unexpected goto; state: %v, symbol: %v, want: %v, got: %v %v", e.state, e.sym, e.next, ty, next)
		}
	}
	if ty, _ := ptab.getGoTo(1, genSym("E").Num()); ty != GoToTypeError {
		t.Errorf("state 1 must have no goto on E")
	}
}

func TestParsingTable_DanglingElse(t *testing.T) {
	a := genTestAutomata(t, danglingElseGrammar())
	ptab := a.table

	if ptab.srTotal != 1 || ptab.rrTotal != 0 {
		t.Fatalf("unexpected conflicts; want: 1/0, got: %v/%v", ptab.srTotal, ptab.rrTotal)
	}
	if len(ptab.conflicts) != 1 {
		t.Fatalf("unexpected conflict count; want: 1, got: %v", len(ptab.conflicts))
	}

	genSym := newTestSymbolGenerator(t, a.gram.symbolTable)
	genProd := newTestProductionGenerator(t, genSym, a.gram.productionSet)

	c, ok := ptab.conflicts[0].(*shiftReduceConflict)
	if !ok {
		t.Fatalf("unexpected conflict: %T", ptab.conflicts[0])
	}
	if c.sym != genSym("else") {
		t.Errorf("the conflict must be on else; got: %v", c.sym)
	}
	if c.prodNum != genProd("S", "if", "E", "then", "S").num {
		t.Errorf("unexpected production: %v", c.prodNum)
	}
	if c.adopted != ActionTypeShift || c.resolvedBy != ResolvedByShift || !c.counted() {
		t.Errorf("the shift must win; adopted: %v, resolved by: %v", c.adopted, c.resolvedBy)
	}

	state := findReducingState(t, a, genProd("S", "if", "E", "then", "S"))
	if state.num != c.state {
		t.Errorf("the conflict must be in state %v; got: %v", state.num, c.state)
	}
	if ptab.srConflicts[state.num] != 1 {
		t.Errorf("unexpected per-state count: %v", ptab.srConflicts[state.num])
	}
	ty, next, _ := ptab.getAction(state.num, genSym("else").Num())
	if ty != ActionTypeShift || next != c.nextState {
		t.Errorf("else must shift to %v; got: %v %v", c.nextState, ty, next)
	}
	ty, _, prod := ptab.getAction(state.num, genSym("$end").Num())
	if ty != ActionTypeReduce || prod != c.prodNum {
		t.Errorf("$end must reduce by %v; got: %v %v", c.prodNum, ty, prod)
	}
}

func TestParsingTable_PrecedenceResolvesEveryConflict(t *testing.T) {
	a := genTestAutomata(t, ambiguousExprGrammar())
	ptab := a.table

	if ptab.srTotal != 0 || ptab.rrTotal != 0 {
		t.Fatalf("unexpected unresolved conflicts; shift/reduce: %v, reduce/reduce: %v", ptab.srTotal, ptab.rrTotal)
	}
	if len(ptab.conflicts) != 4 {
		t.Fatalf("unexpected conflict count; want: 4, got: %v", len(ptab.conflicts))
	}
	for _, c := range ptab.conflicts {
		if c.counted() {
			t.Errorf("a conflict resolved by precedence must not be counted: %#v", c)
		}
	}

	genSym := newTestSymbolGenerator(t, a.gram.symbolTable)
	genProd := newTestProductionGenerator(t, genSym, a.gram.productionSet)

	addProd := genProd("E", "E", "add", "E")
	mulProd := genProd("E", "E", "mul", "E")

	tests := []struct {
		prod *production
		sym  string
		ty   ActionType
	}{
		// 1 + 2 + 3 groups to the left; 1 + 2 * 3 shifts the multiplication.
		{prod: addProd, sym: "add", ty: ActionTypeReduce},
		{prod: addProd, sym: "mul", ty: ActionTypeShift},
		{prod: mulProd, sym: "add", ty: ActionTypeReduce},
		{prod: mulProd, sym: "mul", ty: ActionTypeReduce},
		{prod: addProd, sym: "$end", ty: ActionTypeReduce},
	}
	for _, tt := range tests {
		state := findReducingState(t, a, tt.prod)
		ty, _, prod := ptab.getAction(state.num, genSym(tt.sym).Num())
		if ty != tt.ty {
			t.Errorf("unexpected action; state: %v, symbol: %v, want: %v, got: %v", state.num, tt.sym, tt.ty, ty)
		}
		if ty == ActionTypeReduce && prod != tt.prod.num {
			t.Errorf("unexpected production; state: %v, symbol: %v, want: %v, got: %v", state.num, tt.sym, tt.prod.num, prod)
		}
	}
}

func TestParsingTable_NullableNonTerminal(t *testing.T) {
	a := genTestAutomata(t, nullableGrammar())
	ptab := a.table

	genSym := newTestSymbolGenerator(t, a.gram.symbolTable)
	genProd := newTestProductionGenerator(t, genSym, a.gram.productionSet)

	if !a.nullable.isNullable(genSym("A")) || !a.nullable.isNullable(genSym("B")) {
		t.Fatalf("A and B must be nullable")
	}

	// $accept : . B $end, $accept : B . $end, B : A . A, and B : A A .
	if ptab.stateCount != 4 {
		t.Errorf("unexpected state count; want: %v, got: %v", 4, ptab.stateCount)
	}

	emptyProd := genProd("A")
	for _, s := range []stateNum{0, 2} {
		if ptab.defaultReductions[s] != emptyProd.num {
			t.Errorf("state %v must reduce by the empty production by default; got: %v", s, ptab.defaultReductions[s])
		}
		ty, _, prod := ptab.getAction(s, symbol.SymbolEOF.Num())
		if ty != ActionTypeReduce || prod != emptyProd.num {
			t.Errorf("state %v must reduce by the empty production on $end; got: %v %v", s, ty, prod)
		}
	}
	if ty, _, _ := ptab.getAction(ptab.FinalState, symbol.SymbolEOF.Num()); ty != ActionTypeAccept {
		t.Errorf("the final state must accept $end; got: %v", ty)
	}
}

func TestParsingTable_ReduceReduceConflict(t *testing.T) {
	a := genTestAutomata(t, testModels()[4])
	ptab := a.table

	if ptab.srTotal != 0 || ptab.rrTotal != 1 {
		t.Fatalf("unexpected conflicts; want: 0/1, got: %v/%v", ptab.srTotal, ptab.rrTotal)
	}

	genSym := newTestSymbolGenerator(t, a.gram.symbolTable)
	genProd := newTestProductionGenerator(t, genSym, a.gram.productionSet)

	xProd := genProd("x", "a")
	yProd := genProd("y", "a")

	c, ok := ptab.conflicts[0].(*reduceReduceConflict)
	if !ok {
		t.Fatalf("unexpected conflict: %T", ptab.conflicts[0])
	}
	if c.prodNum1 != xProd.num || c.prodNum2 != yProd.num {
		t.Errorf("the production defined earlier must win; got: %v over %v", c.prodNum1, c.prodNum2)
	}

	// `s → y` is still reduced in the state reached on y.
	unused := ptab.unusedProductions()
	if len(unused) != 1 || unused[0] != yProd.num {
		t.Errorf("unexpected unused productions: %v", unused)
	}
}

func TestParsingTable_AcceptConflict(t *testing.T) {
	a := genTestAutomata(t, testModels()[5])
	ptab := a.table

	if ptab.srTotal != 1 || ptab.rrTotal != 0 {
		t.Fatalf("unexpected conflicts; want: 1/0, got: %v/%v", ptab.srTotal, ptab.rrTotal)
	}

	c, ok := ptab.conflicts[0].(*shiftReduceConflict)
	if !ok {
		t.Fatalf("unexpected conflict: %T", ptab.conflicts[0])
	}
	if !c.accept || c.resolvedBy != ResolvedByAccept || c.state != ptab.FinalState || !c.sym.IsEOF() {
		t.Errorf("the accepting action must win; got: %#v", c)
	}

	if ty, _, _ := ptab.getAction(ptab.FinalState, symbol.SymbolEOF.Num()); ty != ActionTypeAccept {
		t.Errorf("the final state must accept $end; got: %v", ty)
	}
}

func TestParsingTable_NonAssoc(t *testing.T) {
	a := genTestAutomata(t, testModels()[6])
	ptab := a.table

	if ptab.srTotal != 0 || ptab.rrTotal != 0 {
		t.Fatalf("unexpected unresolved conflicts; shift/reduce: %v, reduce/reduce: %v", ptab.srTotal, ptab.rrTotal)
	}

	genSym := newTestSymbolGenerator(t, a.gram.symbolTable)
	genProd := newTestProductionGenerator(t, genSym, a.gram.productionSet)

	eqProd := genProd("E", "E", "eq", "E")
	state := findReducingState(t, a, eqProd)

	if ptab.defaultReductions[state.num] != eqProd.num {
		t.Errorf("unexpected default reduction: %v", ptab.defaultReductions[state.num])
	}
	// a == b == c is a syntax error even though the state reduces by default.
	if ty, _, _ := ptab.getAction(state.num, genSym("eq").Num()); ty != ActionTypeError {
		t.Errorf("eq must be an error; got: %v", ty)
	}
	if ty, _, prod := ptab.getAction(state.num, symbol.SymbolEOF.Num()); ty != ActionTypeReduce || prod != eqProd.num {
		t.Errorf("$end must reduce; got: %v %v", ty, prod)
	}

	hasError := false
	for _, act := range ptab.actions[state.num] {
		if act.ty == ActionTypeError && act.sym == genSym("eq") {
			hasError = true
		}
	}
	if !hasError {
		t.Errorf("the state must have an explicit error action on eq")
	}
}

// The dense action table agrees with the resolved actions of each state.
func TestParsingTable_Consistency(t *testing.T) {
	for _, m := range testModels() {
		t.Run(m.Name, func(t *testing.T) {
			a := genTestAutomata(t, m)
			ptab := a.table

			sr, rr := 0, 0
			for _, state := range a.lr0.states {
				sr += ptab.srConflicts[state.num]
				rr += ptab.rrConflicts[state.num]

				defRed := ptab.defaultReductions[state.num]
				if defRed != productionNumNil {
					found := false
					for _, p := range state.reducible {
						if p == defRed {
							found = true
							break
						}
					}
					if !found {
						t.Errorf("state %v reduces by production %v by default but has no reducible item of it", state.num, defRed)
					}
				}

				active := map[symbol.SymbolNum]*action{}
				errs := map[symbol.SymbolNum]struct{}{}
				for _, act := range ptab.actions[state.num] {
					if act.ty == ActionTypeError {
						errs[act.sym.Num()] = struct{}{}
						continue
					}
					if act.suppressed != suppressionNone && act.suppressed != suppressionDefault {
						continue
					}
					if prev, ok := active[act.sym.Num()]; ok {
						t.Fatalf("state %v has two effective actions on %v: %v and %v", state.num, act.sym, prev.ty, act.ty)
					}
					active[act.sym.Num()] = act
				}

				for num := symbol.SymbolEOF.Num(); num.Int() < ptab.terminalCount; num++ {
					ty, next, prod := ptab.getAction(state.num, num)
					act, ok := active[num]
					switch {
					case ok:
						if ty != act.ty {
							t.Errorf("state %v on %v: want: %v, got: %v", state.num, num, act.ty, ty)
						}
						if ty == ActionTypeShift && next != act.state {
							t.Errorf("state %v on %v: want: shift %v, got: shift %v", state.num, num, act.state, next)
						}
						if ty == ActionTypeReduce && prod != act.prod {
							t.Errorf("state %v on %v: want: reduce %v, got: reduce %v", state.num, num, act.prod, prod)
						}
					case defRed != productionNumNil:
						if _, isErr := errs[num]; isErr {
							if ty != ActionTypeError {
								t.Errorf("state %v on %v: want: error, got: %v", state.num, num, ty)
							}
							continue
						}
						if ty != ActionTypeReduce || prod != defRed {
							t.Errorf("state %v on %v: want: reduce %v by default, got: %v %v", state.num, num, defRed, ty, prod)
						}
					default:
						if ty != ActionTypeError {
							t.Errorf("state %v on %v: want: error, got: %v", state.num, num, ty)
						}
					}
				}

				for _, tr := range state.transitions {
					if !tr.symbol.IsNonTerminal() {
						continue
					}
					ty, next := ptab.getGoTo(state.num, tr.symbol.Num())
					if ty != GoToTypeRegistered || next != tr.state {
						t.Errorf("state %v on %v: want: goto %v, got: %v %v", state.num, tr.symbol, tr.state, ty, next)
					}
				}
			}

			if sr != ptab.srTotal || rr != ptab.rrTotal {
				t.Errorf("per-state counts disagree with totals; want: %v/%v, got: %v/%v", ptab.srTotal, ptab.rrTotal, sr, rr)
			}
			counted := 0
			for _, c := range ptab.conflicts {
				if c.counted() {
					counted++
				}
			}
			if counted != ptab.srTotal+ptab.rrTotal {
				t.Errorf("counted conflicts disagree with totals; want: %v, got: %v", ptab.srTotal+ptab.rrTotal, counted)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	for _, m := range testModels() {
		t.Run(m.Name, func(t *testing.T) {
			compile := func(opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report) {
				t.Helper()
				gram := buildTestGrammar(t, m)
				cg, rep, err := Compile(gram, opts...)
				if err != nil {
					t.Fatal(err)
				}
				return cg, rep
			}

			cg, rep := compile()
			if rep != nil {
				t.Errorf("a report must be nil unless reporting is enabled")
			}
			if cg.Name != m.Name {
				t.Errorf("unexpected name; want: %v, got: %v", m.Name, cg.Name)
			}
			if cg.Fingerprint == "" {
				t.Errorf("a fingerprint must be non-empty")
			}

			cg2, rep2 := compile(EnableReporting())
			if rep2 == nil {
				t.Fatalf("a report must be generated")
			}
			if cg2.Fingerprint != cg.Fingerprint {
				t.Errorf("fingerprints must be stable; got: %v and %v", cg.Fingerprint, cg2.Fingerprint)
			}

			ptab := cg.ParsingTable
			if len(ptab.Action) != ptab.StateCount*ptab.TerminalCount {
				t.Fatalf("unexpected action table size: %v", len(ptab.Action))
			}
			if ptab.ShiftReduceConflictCount != rep2.SRConflictCount || ptab.ReduceReduceConflictCount != rep2.RRConflictCount {
				t.Errorf("conflict counts disagree between the table and the report")
			}
			if ptab.Action[ptab.FinalState*ptab.TerminalCount+ptab.EOFSymbol] != ptab.StartProduction {
				t.Errorf("the final state must accept $end")
			}

			packedAction := &compressor.RowDisplacementTable{
				OriginalRowCount: ptab.PackedAction.OriginalRowCount,
				OriginalColCount: ptab.PackedAction.OriginalColCount,
				EmptyValue:       ptab.PackedAction.EmptyValue,
				Entries:          ptab.PackedAction.Entries,
				Bounds:           ptab.PackedAction.Bounds,
				RowDisplacement:  ptab.PackedAction.RowDisplacement,
				RowDefaults:      ptab.PackedAction.RowDefaults,
			}
			for state := 0; state < ptab.StateCount; state++ {
				for term := 0; term < ptab.TerminalCount; term++ {
					v, err := packedAction.Lookup(state, term)
					if err != nil {
						t.Fatal(err)
					}
					if want := ptab.Action[state*ptab.TerminalCount+term]; v != want {
						t.Fatalf("packed action table is mismatched at [%v, %v]; want: %v, got: %v", state, term, want, v)
					}
				}
			}

			packedGoTo := &compressor.UniqueRowsTable{
				UniqueRows:       ptab.PackedGoTo.UniqueRows,
				RowNums:          ptab.PackedGoTo.RowNums,
				OriginalRowCount: ptab.PackedGoTo.OriginalRowCount,
				OriginalColCount: ptab.PackedGoTo.OriginalColCount,
			}
			for state := 0; state < ptab.StateCount; state++ {
				for nonTerm := 0; nonTerm < ptab.NonTerminalCount; nonTerm++ {
					v, err := packedGoTo.Lookup(state, nonTerm)
					if err != nil {
						t.Fatal(err)
					}
					if want := ptab.GoTo[state*ptab.NonTerminalCount+nonTerm]; v != want {
						t.Fatalf("packed goto table is mismatched at [%v, %v]; want: %v, got: %v", state, nonTerm, want, v)
					}
				}
			}
		})
	}
}
