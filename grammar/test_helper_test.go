package grammar

import (
	"testing"

	"github.com/nihei9/lalrgen/grammar/symbol"
	spec "github.com/nihei9/lalrgen/spec/grammar"
)

func rule(lhs string, rhs ...string) *spec.Rule {
	return &spec.Rule{
		LHS: lhs,
		RHS: rhs,
	}
}

func precRule(prec string, lhs string, rhs ...string) *spec.Rule {
	return &spec.Rule{
		LHS:  lhs,
		RHS:  rhs,
		Prec: prec,
	}
}

func precLevel(assoc string, syms ...string) *spec.PrecedenceLevel {
	return &spec.PrecedenceLevel{
		Associativity: assoc,
		Symbols:       syms,
	}
}

func buildTestGrammar(t *testing.T, m *spec.GrammarModel) *Grammar {
	t.Helper()

	b := GrammarBuilder{
		Model: m,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build a grammar: %v", err)
	}
	return gram
}

// testAutomata holds every intermediate result of a compilation.
type testAutomata struct {
	gram     *Grammar
	nullable *nullableSet
	derives  *derivesRelation
	lr0      *lr0Automaton
	lalr1    *lalr1Automaton
	table    *ParsingTable
}

func genTestAutomata(t *testing.T, m *spec.GrammarModel) *testAutomata {
	t.Helper()

	gram := buildTestGrammar(t, m)
	nonTermCount := gram.symbolTable.NonTerminalCount()
	termCount := gram.symbolTable.TerminalCount()

	nullable := genNullable(gram.productionSet, nonTermCount)
	derives := genDerives(gram.productionSet, nonTermCount)

	lr0, err := genLR0Automaton(gram.productionSet, derives, gram.augmentedStartSymbol)
	if err != nil {
		t.Fatalf("failed to create an LR(0) automaton: %v", err)
	}

	lalr1, err := genLALR1Automaton(lr0, gram.productionSet, derives, nullable, termCount)
	if err != nil {
		t.Fatalf("failed to create an LALR(1) automaton: %v", err)
	}

	b := &lrTableBuilder{
		automaton:    lalr1,
		prods:        gram.productionSet,
		termCount:    termCount,
		nonTermCount: nonTermCount,
		symTab:       gram.symbolTable,
		precAndAssoc: gram.precAndAssoc,
	}
	tab, err := b.build()
	if err != nil {
		t.Fatalf("failed to build a parsing table: %v", err)
	}

	return &testAutomata{
		gram:     gram,
		nullable: nullable,
		derives:  derives,
		lr0:      lr0,
		lalr1:    lalr1,
		table:    tab,
	}
}

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, symTab *symbol.SymbolTableReader) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

type testProductionGenerator func(lhs string, rhs ...string) *production

// newTestProductionGenerator looks productions up in prods because numbers are assigned when
// a production joins a set.
func newTestProductionGenerator(t *testing.T, genSym testSymbolGenerator, prods *productionSet) testProductionGenerator {
	return func(lhs string, rhs ...string) *production {
		t.Helper()

		rhsSym := []symbol.Symbol{}
		for _, text := range rhs {
			rhsSym = append(rhsSym, genSym(text))
		}
		prod, ok := prods.findByID(genProductionID(genSym(lhs), rhsSym))
		if !ok {
			t.Fatalf("production was not found: %v → %v", lhs, rhs)
		}

		return prod
	}
}

type testLR0ItemGenerator func(lhs string, dot int, rhs ...string) *lrItem

func newTestLR0ItemGenerator(t *testing.T, genProd testProductionGenerator) testLR0ItemGenerator {
	return func(lhs string, dot int, rhs ...string) *lrItem {
		t.Helper()

		prod := genProd(lhs, rhs...)
		item, err := newLR0Item(prod, dot)
		if err != nil {
			t.Fatalf("failed to create a LR0 item: %v", err)
		}

		return item
	}
}

// exprGrammar is the classic expression grammar. It is LALR(1) and free of conflicts.
func exprGrammar() *spec.GrammarModel {
	return &spec.GrammarModel{
		Name:      "expr",
		Terminals: []string{"add", "mul", "l_paren", "r_paren", "id"},
		Rules: []*spec.Rule{
			rule("expr", "expr", "add", "term"),
			rule("expr", "term"),
			rule("term", "term", "mul", "factor"),
			rule("term", "factor"),
			rule("factor", "l_paren", "expr", "r_paren"),
			rule("factor", "id"),
		},
	}
}

func symSeq(genSym testSymbolGenerator, texts ...string) []symbol.Symbol {
	seq := make([]symbol.Symbol, len(texts))
	for i, text := range texts {
		seq[i] = genSym(text)
	}
	return seq
}
