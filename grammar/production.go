package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/nihei9/lalrgen/grammar/symbol"
)

type productionID [32]byte

func (id productionID) String() string {
	return hex.EncodeToString(id[:])
}

func genProductionID(lhs symbol.Symbol, rhs []symbol.Symbol) productionID {
	seq := lhs.Byte()
	for _, sym := range rhs {
		seq = append(seq, sym.Byte()...)
	}
	return productionID(sha256.Sum256(seq))
}

type productionNum uint16

const (
	productionNumNil   = productionNum(0)
	productionNumStart = productionNum(1)
	productionNumMin   = productionNum(2)
)

func (n productionNum) Int() int {
	return int(n)
}

// External returns the rule number shown to users. The augmenting rule `$accept : start $end`
// becomes 0 and user-defined rules are numbered from 1 in the declared order.
func (n productionNum) External() int {
	return int(n) - int(productionNumStart)
}

type production struct {
	id     productionID
	num    productionNum
	lhs    symbol.Symbol
	rhs    []symbol.Symbol
	rhsLen int

	// itemBase is the item number of the item whose dot is at the head of the RHS.
	// The item `lhs → α・β` has the number itemBase + len(α).
	itemBase itemNum
}

func newProduction(lhs symbol.Symbol, rhs []symbol.Symbol) (*production, error) {
	if lhs.IsNil() {
		return nil, fmt.Errorf("LHS must be a non-nil symbol; LHS: %v, RHS: %v", lhs, rhs)
	}
	if !lhs.IsNonTerminal() {
		return nil, fmt.Errorf("LHS must be a non-terminal symbol; LHS: %v, RHS: %v", lhs, rhs)
	}
	for _, sym := range rhs {
		if sym.IsNil() {
			return nil, fmt.Errorf("a symbol of RHS must be a non-nil symbol; LHS: %v, RHS: %v", lhs, rhs)
		}
	}

	return &production{
		id:     genProductionID(lhs, rhs),
		lhs:    lhs,
		rhs:    rhs,
		rhsLen: len(rhs),
	}, nil
}

func (p *production) equals(q *production) bool {
	return q.id == p.id
}

func (p *production) isEmpty() bool {
	return p.rhsLen == 0
}

// productionSet holds productions in the declared order. Production numbers and item numbers
// are assigned on append and never change afterwards.
type productionSet struct {
	lhs2Prods map[symbol.Symbol][]*production
	id2Prod   map[productionID]*production
	num2Prod  []*production
	num       productionNum
	items     int
}

func newProductionSet() *productionSet {
	return &productionSet{
		lhs2Prods: map[symbol.Symbol][]*production{},
		id2Prod:   map[productionID]*production{},
		num2Prod:  make([]*production, productionNumMin),
		num:       productionNumMin,
	}
}

func (ps *productionSet) append(prod *production) bool {
	if _, ok := ps.id2Prod[prod.id]; ok {
		return false
	}

	if prod.lhs.IsStart() {
		if ps.num2Prod[productionNumStart] != nil {
			return false
		}
		prod.num = productionNumStart
		ps.num2Prod[productionNumStart] = prod
	} else {
		prod.num = ps.num
		ps.num++
		ps.num2Prod = append(ps.num2Prod, prod)
	}

	prod.itemBase = itemNum(ps.items)
	ps.items += prod.rhsLen + 1

	ps.lhs2Prods[prod.lhs] = append(ps.lhs2Prods[prod.lhs], prod)
	ps.id2Prod[prod.id] = prod

	return true
}

func (ps *productionSet) findByID(id productionID) (*production, bool) {
	prod, ok := ps.id2Prod[id]
	return prod, ok
}

func (ps *productionSet) findByNum(num productionNum) (*production, bool) {
	if num == productionNumNil || num.Int() >= len(ps.num2Prod) {
		return nil, false
	}
	prod := ps.num2Prod[num]
	return prod, prod != nil
}

func (ps *productionSet) findByLHS(lhs symbol.Symbol) ([]*production, bool) {
	if lhs.IsNil() {
		return nil, false
	}

	prods, ok := ps.lhs2Prods[lhs]
	return prods, ok
}

// getAllProductions returns all productions ordered by their numbers.
func (ps *productionSet) getAllProductions() []*production {
	prods := make([]*production, 0, len(ps.id2Prod))
	for _, prod := range ps.num2Prod {
		if prod == nil {
			continue
		}
		prods = append(prods, prod)
	}
	return prods
}

// tableSize returns the size of a table indexed by production numbers.
func (ps *productionSet) tableSize() int {
	return len(ps.num2Prod)
}

func (ps *productionSet) itemCount() int {
	return ps.items
}
