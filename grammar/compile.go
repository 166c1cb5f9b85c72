package grammar

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/nihei9/lalrgen/compressor"
	spec "github.com/nihei9/lalrgen/spec/grammar"
)

type compileConfig struct {
	isReportingEnabled bool
}

type CompileOption func(config *compileConfig)

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// Compile builds the LALR(1) parsing table of a grammar. Conflicts never make Compile fail; they
// are resolved and counted in the returned table. The report is nil unless EnableReporting is
// passed.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{}
	for _, opt := range opts {
		opt(config)
	}

	log.Infof("compiling grammar %v (start symbol: %v)", gram.name, symbolName(gram.symbolTable, gram.startSymbol))

	terms := gram.symbolTable.TerminalTexts()
	nonTerms, err := gram.symbolTable.NonTerminalTexts()
	if err != nil {
		return nil, nil, err
	}

	nullable := genNullable(gram.productionSet, len(nonTerms))
	derives := genDerives(gram.productionSet, len(nonTerms))

	lr0, err := genLR0Automaton(gram.productionSet, derives, gram.augmentedStartSymbol)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate an LR(0) automaton: %w", err)
	}

	lalr1, err := genLALR1Automaton(lr0, gram.productionSet, derives, nullable, len(terms))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute look-ahead sets: %w", err)
	}

	b := &lrTableBuilder{
		automaton:    lalr1,
		prods:        gram.productionSet,
		termCount:    len(terms),
		nonTermCount: len(nonTerms),
		symTab:       gram.symbolTable,
		precAndAssoc: gram.precAndAssoc,
	}
	tab, err := b.build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build a parsing table: %w", err)
	}

	var report *spec.Report
	if config.isReportingEnabled {
		report, err = genReport(gram, lalr1, nullable, tab)
		if err != nil {
			return nil, nil, err
		}
	}

	ptab, err := genSpecParsingTable(gram, tab, terms, nonTerms)
	if err != nil {
		return nil, nil, err
	}

	fingerprint, err := structhash.Hash(ptab, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fingerprint the parsing table: %w", err)
	}

	log.Infof("%v states, %v shift/reduce conflicts, %v reduce/reduce conflicts", tab.stateCount, tab.srTotal, tab.rrTotal)

	return &spec.CompiledGrammar{
		Name:         gram.name,
		ParsingTable: ptab,
		Fingerprint:  fingerprint,
	}, report, nil
}

func genSpecParsingTable(gram *Grammar, tab *ParsingTable, terms, nonTerms []string) (*spec.ParsingTable, error) {
	action := make([]int, len(tab.actionTable))
	for i, e := range tab.actionTable {
		action[i] = int(e)
	}
	goTo := make([]int, len(tab.goToTable))
	for i, e := range tab.goToTable {
		goTo[i] = int(e)
	}
	defRed := make([]int, len(tab.defaultReductions))
	for i, p := range tab.defaultReductions {
		defRed[i] = p.Int()
	}

	packedAction, err := packActionTable(action, tab.terminalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack the action table: %w", err)
	}
	packedGoTo, err := packGoToTable(goTo, tab.nonTerminalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack the goto table: %w", err)
	}

	lhsSyms := make([]int, gram.productionSet.tableSize())
	altSymCounts := make([]int, gram.productionSet.tableSize())
	for _, p := range gram.productionSet.getAllProductions() {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = p.rhsLen
	}

	return &spec.ParsingTable{
		Action:                    action,
		GoTo:                      goTo,
		DefaultReductions:         defRed,
		PackedAction:              packedAction,
		PackedGoTo:                packedGoTo,
		StateCount:                tab.stateCount,
		InitialState:              tab.InitialState.Int(),
		FinalState:                tab.FinalState.Int(),
		StartProduction:           productionNumStart.Int(),
		LHSSymbols:                lhsSyms,
		AlternativeSymbolCounts:   altSymCounts,
		Terminals:                 terms,
		TerminalCount:             tab.terminalCount,
		NonTerminals:              nonTerms,
		NonTerminalCount:          tab.nonTerminalCount,
		EOFSymbol:                 gram.symbolTable.TerminalSymbols()[0].Num().Int(),
		ShiftReduceConflictCount:  tab.srTotal,
		ReduceReduceConflictCount: tab.rrTotal,
	}, nil
}

func packActionTable(action []int, termCount int) (*spec.RowDisplacementTable, error) {
	orig, err := compressor.NewOriginalTable(action, termCount)
	if err != nil {
		return nil, err
	}
	tab := compressor.NewRowDisplacementTable(int(actionEntryEmpty))
	if err := tab.Compress(orig); err != nil {
		return nil, err
	}
	return &spec.RowDisplacementTable{
		OriginalRowCount: tab.OriginalRowCount,
		OriginalColCount: tab.OriginalColCount,
		EmptyValue:       tab.EmptyValue,
		Entries:          tab.Entries,
		Bounds:           tab.Bounds,
		RowDisplacement:  tab.RowDisplacement,
		RowDefaults:      tab.RowDefaults,
	}, nil
}

func packGoToTable(goTo []int, nonTermCount int) (*spec.UniqueRowsTable, error) {
	orig, err := compressor.NewOriginalTable(goTo, nonTermCount)
	if err != nil {
		return nil, err
	}
	tab := compressor.NewUniqueRowsTable()
	if err := tab.Compress(orig); err != nil {
		return nil, err
	}
	return &spec.UniqueRowsTable{
		UniqueRows:       tab.UniqueRows,
		RowNums:          tab.RowNums,
		OriginalRowCount: tab.OriginalRowCount,
		OriginalColCount: tab.OriginalColCount,
	}, nil
}
