package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nihei9/lalrgen/grammar"
	spec "github.com/nihei9/lalrgen/spec/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genReport(t *testing.T, m *spec.GrammarModel) *spec.Report {
	t.Helper()

	b := grammar.GrammarBuilder{
		Model: m,
	}
	gram, err := b.Build()
	require.NoError(t, err)

	_, rep, err := grammar.Compile(gram, grammar.EnableReporting())
	require.NoError(t, err)
	require.NotNil(t, rep)

	return rep
}

func TestWrite(t *testing.T) {
	rep := genReport(t, &spec.GrammarModel{
		Name:      "test",
		Terminals: []string{"plus", "id"},
		Rules: []*spec.Rule{
			{LHS: "E", RHS: []string{"E", "plus", "T"}},
			{LHS: "E", RHS: []string{"T"}},
			{LHS: "T", RHS: []string{"id"}},
		},
	})

	expected := "\f\n" +
		"state 0\n" +
		"\t$accept : . E $end  (0)\n" +
		"\n" +
		"\tid  shift 1\n" +
		"\t.  error\n" +
		"\n" +
		"\tE  goto 2\n" +
		"\tT  goto 3\n" +
		"\n\n" +
		"state 1\n" +
		"\tT : id .  (3)\n" +
		"\n" +
		"\t.  reduce 3\n" +
		"\n\n" +
		"state 2\n" +
		"\t$accept : E . $end  (0)\n" +
		"\tE : E . plus T  (1)\n" +
		"\n" +
		"\t$end  accept\n" +
		"\tplus  shift 4\n" +
		"\t.  error\n" +
		"\n\n" +
		"state 3\n" +
		"\tE : T .  (2)\n" +
		"\n" +
		"\t.  reduce 2\n" +
		"\n\n" +
		"state 4\n" +
		"\tE : E plus . T  (1)\n" +
		"\n" +
		"\tid  shift 1\n" +
		"\t.  error\n" +
		"\n" +
		"\tT  goto 5\n" +
		"\n\n" +
		"state 5\n" +
		"\tE : E plus T .  (1)\n" +
		"\n" +
		"\t.  reduce 1\n" +
		"\n\n" +
		"3 terminals, 3 nonterminals\n" +
		"4 grammar rules, 6 states\n"

	var b bytes.Buffer
	require.NoError(t, Write(&b, rep))
	assert.Equal(t, expected, b.String())
	assert.Equal(t, expected, String(rep))
}

func TestWrite_ShiftReduceConflict(t *testing.T) {
	rep := genReport(t, &spec.GrammarModel{
		Name:      "test",
		Terminals: []string{"if", "then", "else", "other", "cond"},
		Rules: []*spec.Rule{
			{LHS: "S", RHS: []string{"if", "E", "then", "S"}},
			{LHS: "S", RHS: []string{"if", "E", "then", "S", "else", "S"}},
			{LHS: "S", RHS: []string{"other"}},
			{LHS: "E", RHS: []string{"cond"}},
		},
	})

	assert.Equal(t, 1, rep.SRConflictCount)
	assert.Equal(t, 0, rep.RRConflictCount)

	text := String(rep)
	assert.Contains(t, text, "\n\n"+
		"7: shift/reduce conflict (shift 8, reduce 1) on else\n"+
		"state 7\n"+
		"\tS : if E then S .  (1)\n"+
		"\tS : if E then S . else S  (2)\n"+
		"\n"+
		"\telse  shift 8\n"+
		"\t.  reduce 1\n")
	assert.Contains(t, text, "\n\nState 7 contains 1 shift/reduce conflict.\n")
	assert.True(t, strings.HasSuffix(text, "\n\n6 terminals, 3 nonterminals\n5 grammar rules, 10 states\n"))
}

func TestWrite_ReduceReduceConflictAndUnusedRule(t *testing.T) {
	rep := genReport(t, &spec.GrammarModel{
		Name:      "test",
		Terminals: []string{"a"},
		Rules: []*spec.Rule{
			{LHS: "s", RHS: []string{"x"}},
			{LHS: "s", RHS: []string{"y"}},
			{LHS: "x", RHS: []string{"a"}},
			{LHS: "y", RHS: []string{"a"}},
		},
	})

	assert.Equal(t, 0, rep.SRConflictCount)
	assert.Equal(t, 1, rep.RRConflictCount)
	assert.Equal(t, 1, rep.UnusedRuleCount)
	assert.False(t, rep.Productions[4].Used)

	text := String(rep)
	assert.Contains(t, text, "\n\n"+
		"1: reduce/reduce conflict (reduce 3, reduce 4) on $end\n"+
		"state 1\n"+
		"\tx : a .  (3)\n"+
		"\ty : a .  (4)\n"+
		"\n"+
		"\t.  reduce 3\n")
	assert.Contains(t, text, "\n\nRules never reduced:\n\ty : a  (4)\n")
	assert.Contains(t, text, "\n\nState 1 contains 1 reduce/reduce conflict.\n")
}

func TestWrite_PrecedenceAndNullRules(t *testing.T) {
	rep := genReport(t, &spec.GrammarModel{
		Name:      "test",
		Terminals: []string{"id"},
		Precedence: []*spec.PrecedenceLevel{
			{Associativity: spec.AssociativityNonAssoc, Symbols: []string{"eq"}},
		},
		Rules: []*spec.Rule{
			{LHS: "s", RHS: []string{"opt", "E"}},
			{LHS: "opt"},
			{LHS: "E", RHS: []string{"E", "eq", "E"}},
			{LHS: "E", RHS: []string{"id"}},
		},
	})

	assert.Equal(t, 0, rep.SRConflictCount)
	assert.Equal(t, 0, rep.RRConflictCount)

	text := String(rep)
	assert.NotContains(t, text, "conflict")
	assert.Contains(t, text, "state 0\n"+
		"\t$accept : . s $end  (0)\n"+
		"\topt : .  (2)\n"+
		"\n"+
		"\t.  reduce 2\n")
	assert.Contains(t, text, "\teq  error\n")
}

func TestWrite_IsIdempotent(t *testing.T) {
	rep := genReport(t, &spec.GrammarModel{
		Name:      "test",
		Terminals: []string{"id"},
		Precedence: []*spec.PrecedenceLevel{
			{Associativity: spec.AssociativityLeft, Symbols: []string{"add"}},
			{Associativity: spec.AssociativityLeft, Symbols: []string{"mul"}},
		},
		Rules: []*spec.Rule{
			{LHS: "E", RHS: []string{"E", "add", "E"}},
			{LHS: "E", RHS: []string{"E", "mul", "E"}},
			{LHS: "E", RHS: []string{"id"}},
		},
	})

	first := String(rep)
	second := String(rep)
	assert.Equal(t, first, second)

	// A report read back from its JSON form renders the same text.
	b, err := json.Marshal(rep)
	require.NoError(t, err)
	rep2, err := spec.ReadReport(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, first, String(rep2))
}
