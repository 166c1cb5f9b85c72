package grammar

type CompiledGrammar struct {
	Name         string        `json:"name"`
	ParsingTable *ParsingTable `json:"parsing_table"`

	// Fingerprint identifies the parsing table. Compiling the same grammar model always yields
	// the same fingerprint.
	Fingerprint string `json:"fingerprint"`
}

// ParsingTable is the LALR(1) parsing table of a grammar.
//
// Action is a dense `StateCount × TerminalCount` table. An entry is 0 for an error, `-s` for a
// shift to the state `s`, and `+p` for a reduction by the production `p`. The accepting entry is
// the reduction by StartProduction on EOFSymbol in FinalState.
//
// GoTo is a dense `StateCount × NonTerminalCount` table. An entry is 0 when the state has no
// goto on the non-terminal.
type ParsingTable struct {
	Action            []int `json:"action"`
	GoTo              []int `json:"goto"`
	DefaultReductions []int `json:"default_reductions"`

	PackedAction *RowDisplacementTable `json:"packed_action"`
	PackedGoTo   *UniqueRowsTable      `json:"packed_goto"`

	StateCount              int      `json:"state_count"`
	InitialState            int      `json:"initial_state"`
	FinalState              int      `json:"final_state"`
	StartProduction         int      `json:"start_production"`
	LHSSymbols              []int    `json:"lhs_symbols"`
	AlternativeSymbolCounts []int    `json:"alternative_symbol_counts"`
	Terminals               []string `json:"terminals"`
	TerminalCount           int      `json:"terminal_count"`
	NonTerminals            []string `json:"non_terminals"`
	NonTerminalCount        int      `json:"non_terminal_count"`
	EOFSymbol               int      `json:"eof_symbol"`

	ShiftReduceConflictCount  int `json:"shift_reduce_conflict_count"`
	ReduceReduceConflictCount int `json:"reduce_reduce_conflict_count"`
}

type RowDisplacementTable struct {
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
	EmptyValue       int   `json:"empty_value"`
	Entries          []int `json:"entries"`
	Bounds           []int `json:"bounds"`
	RowDisplacement  []int `json:"row_displacement"`
	RowDefaults      []int `json:"row_defaults"`
}

type UniqueRowsTable struct {
	UniqueRows       []int `json:"unique_rows"`
	RowNums          []int `json:"row_nums"`
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
}
