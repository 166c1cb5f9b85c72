package grammar

import (
	"errors"
	"fmt"
	"strings"

	verr "github.com/nihei9/lalrgen/error"
	"github.com/nihei9/lalrgen/grammar/symbol"
	spec "github.com/nihei9/lalrgen/spec/grammar"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("lalrgen.grammar")

type assocType string

const (
	assocTypeNil      = assocType("")
	assocTypeLeft     = assocType("left")
	assocTypeRight    = assocType("right")
	assocTypeNonAssoc = assocType("nonassoc")
)

const (
	precNil = 0
	precMin = 1
)

// precAndAssoc represents precedence and associativities of terminal symbols and productions.
// We use the priority of the production to resolve shift/reduce conflicts.
type precAndAssoc struct {
	// termPrec and termAssoc represent the precedence of the terminal symbols.
	termPrec  map[symbol.SymbolNum]int
	termAssoc map[symbol.SymbolNum]assocType

	// prodPrec and prodAssoc represent the precedence and the associativities of the production.
	// These values are inherited from the right-most terminal symbols in the RHS of the productions
	// unless the production names a terminal explicitly.
	prodPrec  map[productionNum]int
	prodAssoc map[productionNum]assocType
}

func (pa *precAndAssoc) terminalPrecedence(sym symbol.SymbolNum) int {
	prec, ok := pa.termPrec[sym]
	if !ok {
		return precNil
	}

	return prec
}

func (pa *precAndAssoc) terminalAssociativity(sym symbol.SymbolNum) assocType {
	assoc, ok := pa.termAssoc[sym]
	if !ok {
		return assocTypeNil
	}

	return assoc
}

func (pa *precAndAssoc) productionPredence(prod productionNum) int {
	prec, ok := pa.prodPrec[prod]
	if !ok {
		return precNil
	}

	return prec
}

func (pa *precAndAssoc) productionAssociativity(prod productionNum) assocType {
	assoc, ok := pa.prodAssoc[prod]
	if !ok {
		return assocTypeNil
	}

	return assoc
}

type Grammar struct {
	name                 string
	productionSet        *productionSet
	augmentedStartSymbol symbol.Symbol
	startSymbol          symbol.Symbol
	symbolTable          *symbol.SymbolTableReader
	precAndAssoc         *precAndAssoc
}

func (g *Grammar) Name() string {
	return g.name
}

type GrammarBuilder struct {
	Model *spec.GrammarModel

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	if b.Model.Name == "" {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoGrammarName,
		})
	}
	if len(b.Model.Rules) == 0 {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoProduction,
		})
	}
	for i, rule := range b.Model.Rules {
		if rule == nil {
			b.errs = append(b.errs, &verr.SpecError{
				Cause: semErrNullEntry,
				Rule:  i + 1,
			})
		}
	}
	for i, lv := range b.Model.Precedence {
		if lv == nil {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrNullEntry,
				Detail: fmt.Sprintf("precedence level %v", i+1),
			})
		}
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	symTab := b.genSymbolTable(b.Model)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	prods, startSym, err := b.genProductions(b.Model, symTab.Reader())
	if err != nil {
		return nil, err
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	pa := b.genPrecAndAssoc(b.Model, symTab.Reader(), prods)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	r := symTab.Reader()
	log.Debugf("grammar %v: %v terminals, %v non-terminals, %v productions",
		b.Model.Name, r.TerminalCount()-1, r.NonTerminalCount()-1, len(prods.getAllProductions()))

	return &Grammar{
		name:                 b.Model.Name,
		productionSet:        prods,
		augmentedStartSymbol: symbol.SymbolStart,
		startSymbol:          startSym,
		symbolTable:          r,
		precAndAssoc:         pa,
	}, nil
}

func (b *GrammarBuilder) checkName(name string, rule int) bool {
	if name == "" {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrInvalidName,
			Rule:  rule,
		})
		return false
	}
	if strings.HasPrefix(name, "$") {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrReservedName,
			Rule:   rule,
			Symbol: name,
		})
		return false
	}
	return true
}

// genSymbolTable registers non-terminals in the order their first rules appear, then terminals in
// the order they are declared. Precedence levels declare terminals implicitly.
func (b *GrammarBuilder) genSymbolTable(m *spec.GrammarModel) *symbol.SymbolTable {
	symTab := symbol.NewSymbolTable()
	w := symTab.Writer()
	r := symTab.Reader()

	for i, rule := range m.Rules {
		if !b.checkName(rule.LHS, i+1) {
			continue
		}
		if _, err := w.RegisterNonTerminalSymbol(rule.LHS); err != nil {
			b.registrationError(err, i+1, rule.LHS, "")
		}
	}

	declared := map[string]struct{}{}
	for _, name := range m.Terminals {
		if !b.checkName(name, 0) {
			continue
		}
		if _, ok := declared[name]; ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateTerminal,
				Symbol: name,
			})
			continue
		}
		declared[name] = struct{}{}

		if _, err := w.RegisterTerminalSymbol(name); err != nil {
			b.registrationError(err, 0, name, "")
		}
	}

	for _, lv := range m.Precedence {
		for _, name := range lv.Symbols {
			if !b.checkName(name, 0) {
				continue
			}
			if _, err := w.RegisterTerminalSymbol(name); err != nil {
				b.registrationError(err, 0, name, "a precedence level can contain only terminals")
			}
		}
	}

	for i, rule := range m.Rules {
		for _, name := range rule.RHS {
			if !b.checkName(name, i+1) {
				continue
			}
			if _, ok := r.ToSymbol(name); !ok {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedSym,
					Rule:   i + 1,
					Symbol: name,
				})
			}
		}
		if rule.Prec != "" {
			if !b.checkName(rule.Prec, i+1) {
				continue
			}
			sym, ok := r.ToSymbol(rule.Prec)
			if !ok {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedSym,
					Rule:   i + 1,
					Symbol: rule.Prec,
				})
				continue
			}
			if !sym.IsTerminal() {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedPrec,
					Rule:   i + 1,
					Symbol: rule.Prec,
					Detail: "a non-terminal cannot give precedence",
				})
			}
		}
	}

	return symTab
}

func (b *GrammarBuilder) registrationError(err error, rule int, name string, detail string) {
	if errors.Is(err, symbol.ErrTooManySymbols) {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrTooManySymbols,
			Rule:   rule,
			Symbol: name,
			Detail: err.Error(),
		})
		return
	}
	b.errs = append(b.errs, &verr.SpecError{
		Cause:  semErrDuplicateName,
		Rule:   rule,
		Symbol: name,
		Detail: detail,
	})
}

// genProductions appends the augmenting production `$accept → start $end` first and then the
// rules in the declared order.
func (b *GrammarBuilder) genProductions(m *spec.GrammarModel, symTab *symbol.SymbolTableReader) (*productionSet, symbol.Symbol, error) {
	startName := m.Start
	if startName == "" {
		startName = m.Rules[0].LHS
	}
	startSym, ok := symTab.ToSymbol(startName)
	if !ok || !startSym.IsNonTerminal() || startSym.IsStart() {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUndefinedStart,
			Symbol: startName,
		})
		return nil, symbol.SymbolNil, nil
	}

	prods := newProductionSet()

	startProd, err := newProduction(symbol.SymbolStart, []symbol.Symbol{startSym, symbol.SymbolEOF})
	if err != nil {
		return nil, symbol.SymbolNil, err
	}
	prods.append(startProd)

	for i, rule := range m.Rules {
		lhs, ok := symTab.ToSymbol(rule.LHS)
		if !ok {
			return nil, symbol.SymbolNil, fmt.Errorf("symbol '%v' is undefined", rule.LHS)
		}

		rhs := make([]symbol.Symbol, len(rule.RHS))
		for j, name := range rule.RHS {
			sym, ok := symTab.ToSymbol(name)
			if !ok {
				return nil, symbol.SymbolNil, fmt.Errorf("symbol '%v' is undefined", name)
			}
			rhs[j] = sym
		}

		p, err := newProduction(lhs, rhs)
		if err != nil {
			return nil, symbol.SymbolNil, err
		}
		if !prods.append(p) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateProduction,
				Rule:   i + 1,
				Symbol: rule.LHS,
			})
		}
	}

	return prods, startSym, nil
}

// genPrecAndAssoc assigns precedence levels from the lowest (precMin) to the highest in the
// declared order.
func (b *GrammarBuilder) genPrecAndAssoc(m *spec.GrammarModel, symTab *symbol.SymbolTableReader, prods *productionSet) *precAndAssoc {
	termPrec := map[symbol.SymbolNum]int{}
	termAssoc := map[symbol.SymbolNum]assocType{}
	{
		precN := precMin
		for _, lv := range m.Precedence {
			var assocTy assocType
			switch lv.Associativity {
			case spec.AssociativityNone:
				assocTy = assocTypeNil
			case spec.AssociativityLeft:
				assocTy = assocTypeLeft
			case spec.AssociativityRight:
				assocTy = assocTypeRight
			case spec.AssociativityNonAssoc:
				assocTy = assocTypeNonAssoc
			default:
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrInvalidAssoc,
					Detail: lv.Associativity,
				})
				return nil
			}

			if len(lv.Symbols) == 0 {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrEmptyPrecLevel,
					Detail: fmt.Sprintf("level %v", precN),
				})
				return nil
			}

			for _, name := range lv.Symbols {
				sym, ok := symTab.ToSymbol(name)
				if !ok {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrUndefinedSym,
						Symbol: name,
					})
					continue
				}
				if _, alreadySet := termPrec[sym.Num()]; alreadySet {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrDuplicateAssoc,
						Symbol: name,
					})
					continue
				}

				termPrec[sym.Num()] = precN
				termAssoc[sym.Num()] = assocTy
			}

			precN++
		}
	}
	if len(b.errs) > 0 {
		return nil
	}

	prodPrec := map[productionNum]int{}
	prodAssoc := map[productionNum]assocType{}
	for _, prod := range prods.getAllProductions() {
		if prod.lhs.IsStart() {
			continue
		}

		// Rules are appended right after the augmenting production in the declared order.
		rule := m.Rules[prod.num-productionNumMin]
		if rule.Prec != "" {
			term, _ := symTab.ToSymbol(rule.Prec)
			prec, ok := termPrec[term.Num()]
			if !ok {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedPrec,
					Rule:   prod.num.External(),
					Symbol: rule.Prec,
				})
				continue
			}
			prodPrec[prod.num] = prec
			prodAssoc[prod.num] = termAssoc[term.Num()]
			continue
		}

		// A production inherits precedence and associativity from the right-most terminal symbol.
		mostrightTerm := symbol.SymbolNil
		for _, sym := range prod.rhs {
			if !sym.IsTerminal() {
				continue
			}
			mostrightTerm = sym
		}
		if mostrightTerm.IsNil() {
			continue
		}
		if prec, ok := termPrec[mostrightTerm.Num()]; ok {
			prodPrec[prod.num] = prec
			prodAssoc[prod.num] = termAssoc[mostrightTerm.Num()]
		}
	}
	if len(b.errs) > 0 {
		return nil
	}

	return &precAndAssoc{
		termPrec:  termPrec,
		termAssoc: termAssoc,
		prodPrec:  prodPrec,
		prodAssoc: prodAssoc,
	}
}
