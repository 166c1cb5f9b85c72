// Package report renders a compiled grammar's report as the verbose text yacc writes to y.output.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	spec "github.com/nihei9/lalrgen/spec/grammar"
)

// Write renders rep to w. The output depends only on rep.
func Write(w io.Writer, rep *spec.Report) error {
	dw := &descriptionWriter{
		rep: rep,
	}
	dw.write()
	_, err := io.WriteString(w, dw.b.String())
	return err
}

// String is like Write but returns the text.
func String(rep *spec.Report) string {
	dw := &descriptionWriter{
		rep: rep,
	}
	dw.write()
	return dw.b.String()
}

type descriptionWriter struct {
	rep *spec.Report
	b   strings.Builder
}

func (dw *descriptionWriter) printf(format string, a ...interface{}) {
	fmt.Fprintf(&dw.b, format, a...)
}

func (dw *descriptionWriter) write() {
	dw.printf("\f\n")
	for _, state := range dw.rep.States {
		dw.writeState(state)
	}

	dw.writeUnused()
	dw.writeConflictCounts()

	termCount := 0
	for _, t := range dw.rep.Terminals {
		if t != nil {
			termCount++
		}
	}
	nonTermCount := 0
	for _, n := range dw.rep.NonTerminals {
		if n != nil {
			nonTermCount++
		}
	}
	dw.printf("\n\n%v terminals, %v nonterminals\n", termCount, nonTermCount)
	dw.printf("%v grammar rules, %v states\n", len(dw.rep.Productions), len(dw.rep.States))
}

func (dw *descriptionWriter) writeState(state *spec.State) {
	if state.Number != dw.rep.InitialState {
		dw.printf("\n\n")
	}
	if state.SRConflictCount > 0 || state.RRConflictCount > 0 {
		dw.writeConflicts(state)
	}
	dw.printf("state %v\n", state.Number)
	dw.writeCore(state)
	dw.writeNulls(state)
	dw.writeActions(state)
}

type conflictLine struct {
	symbol int
	prod   int
	text   string
}

// writeConflicts lists only the conflicts no precedence resolved, ordered by terminal and then by
// the losing production.
func (dw *descriptionWriter) writeConflicts(state *spec.State) {
	var lines []*conflictLine
	for _, c := range state.SRConflict {
		switch {
		case c.Accept:
			lines = append(lines, &conflictLine{
				symbol: c.Symbol,
				prod:   c.Production,
				text:   fmt.Sprintf("%v: shift/reduce conflict (accept, reduce %v) on %v", state.Number, c.Production, dw.terminalName(c.Symbol)),
			})
		case c.ResolvedBy == spec.ResolvedByShift:
			lines = append(lines, &conflictLine{
				symbol: c.Symbol,
				prod:   c.Production,
				text:   fmt.Sprintf("%v: shift/reduce conflict (shift %v, reduce %v) on %v", state.Number, c.State, c.Production, dw.terminalName(c.Symbol)),
			})
		}
	}
	for _, c := range state.RRConflict {
		lines = append(lines, &conflictLine{
			symbol: c.Symbol,
			prod:   c.Production2,
			text:   fmt.Sprintf("%v: reduce/reduce conflict (reduce %v, reduce %v) on %v", state.Number, c.Production1, c.Production2, dw.terminalName(c.Symbol)),
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].symbol != lines[j].symbol {
			return lines[i].symbol < lines[j].symbol
		}
		return lines[i].prod < lines[j].prod
	})
	for _, l := range lines {
		dw.printf("%v\n", l.text)
	}
}

func (dw *descriptionWriter) writeCore(state *spec.State) {
	for _, item := range state.Kernel {
		prod := dw.production(item.Production)
		if prod == nil {
			dw.printf("\t<production not found: %v>\n", item.Production)
			continue
		}
		dw.printf("\t%v : ", dw.nonTerminalName(prod.LHS))
		for _, sym := range prod.RHS[:item.Dot] {
			dw.printf("%v ", dw.symbolName(sym))
		}
		dw.printf(".")
		for _, sym := range prod.RHS[item.Dot:] {
			dw.printf(" %v", dw.symbolName(sym))
		}
		dw.printf("  (%v)\n", prod.Number)
	}
}

// writeNulls lists the empty productions the state reduces by. Their items are not kernel items,
// so the core does not show them.
func (dw *descriptionWriter) writeNulls(state *spec.State) {
	seen := map[int]struct{}{}
	var nulls []int
	for _, act := range state.Actions {
		if act.Type != spec.ActionReduce || act.Suppression == spec.SuppressionPrecedence {
			continue
		}
		prod := dw.production(act.Production)
		if prod == nil || len(prod.RHS) > 0 {
			continue
		}
		if _, ok := seen[prod.Number]; ok {
			continue
		}
		seen[prod.Number] = struct{}{}
		nulls = append(nulls, prod.Number)
	}
	sort.Ints(nulls)

	for _, num := range nulls {
		prod := dw.production(num)
		dw.printf("\t%v : .  (%v)\n", dw.nonTerminalName(prod.LHS), num)
	}
	dw.printf("\n")
}

func (dw *descriptionWriter) writeActions(state *spec.State) {
	if state.Number == dw.rep.FinalState {
		dw.printf("\t$end  accept\n")
	}

	for _, act := range state.Actions {
		if act.Type == spec.ActionShift && act.Suppression == spec.SuppressionNone {
			dw.printf("\t%v  shift %v\n", dw.terminalName(act.Symbol), act.State)
		}
	}
	for _, act := range state.Actions {
		if act.Type == spec.ActionError {
			dw.printf("\t%v  error\n", dw.terminalName(act.Symbol))
		}
	}

	anyReds := false
	for _, act := range state.Actions {
		if act.Type == spec.ActionReduce && act.Suppression != spec.SuppressionPrecedence {
			anyReds = true
			break
		}
	}
	if !anyReds {
		dw.printf("\t.  error\n")
	} else {
		for _, act := range state.Actions {
			if act.Type != spec.ActionReduce || act.Suppression != spec.SuppressionNone {
				continue
			}
			if state.DefaultReduction != nil && act.Production == *state.DefaultReduction {
				continue
			}
			dw.printf("\t%v  reduce %v\n", dw.terminalName(act.Symbol), act.Production)
		}
		if state.DefaultReduction != nil {
			dw.printf("\t.  reduce %v\n", *state.DefaultReduction)
		}
	}

	if len(state.GoTo) > 0 {
		dw.printf("\n")
		for _, g := range state.GoTo {
			dw.printf("\t%v  goto %v\n", dw.nonTerminalName(g.Symbol), g.State)
		}
	}
}

func (dw *descriptionWriter) writeUnused() {
	if dw.rep.UnusedRuleCount == 0 {
		return
	}

	dw.printf("\n\nRules never reduced:\n")
	for _, prod := range dw.rep.Productions {
		if prod == nil || prod.Used {
			continue
		}
		dw.printf("\t%v :", dw.nonTerminalName(prod.LHS))
		for _, sym := range prod.RHS {
			dw.printf(" %v", dw.symbolName(sym))
		}
		dw.printf("  (%v)\n", prod.Number)
	}
}

func (dw *descriptionWriter) writeConflictCounts() {
	if dw.rep.SRConflictCount == 0 && dw.rep.RRConflictCount == 0 {
		return
	}

	dw.printf("\n\n")
	for _, state := range dw.rep.States {
		sr := state.SRConflictCount
		rr := state.RRConflictCount
		if sr == 0 && rr == 0 {
			continue
		}
		dw.printf("State %v contains ", state.Number)
		if sr > 0 {
			dw.printf("%v", plural(sr, "shift/reduce conflict"))
		}
		if sr > 0 && rr > 0 {
			dw.printf(", ")
		}
		if rr > 0 {
			dw.printf("%v", plural(rr, "reduce/reduce conflict"))
		}
		dw.printf(".\n")
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %v", noun)
	}
	return fmt.Sprintf("%v %vs", n, noun)
}

func (dw *descriptionWriter) production(num int) *spec.Production {
	if num < 0 || num >= len(dw.rep.Productions) {
		return nil
	}
	return dw.rep.Productions[num]
}

// symbolName resolves an RHS element: a terminal number when positive, a non-terminal number when
// negative.
func (dw *descriptionWriter) symbolName(sym int) string {
	if sym < 0 {
		return dw.nonTerminalName(-sym)
	}
	return dw.terminalName(sym)
}

func (dw *descriptionWriter) terminalName(num int) string {
	if num <= 0 || num >= len(dw.rep.Terminals) || dw.rep.Terminals[num] == nil {
		return fmt.Sprintf("<terminal not found: %v>", num)
	}
	return dw.rep.Terminals[num].Name
}

func (dw *descriptionWriter) nonTerminalName(num int) string {
	if num <= 0 || num >= len(dw.rep.NonTerminals) || dw.rep.NonTerminals[num] == nil {
		return fmt.Sprintf("<non-terminal not found: %v>", num)
	}
	return dw.rep.NonTerminals[num].Name
}
