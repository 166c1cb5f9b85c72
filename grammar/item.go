package grammar

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"

	"github.com/nihei9/lalrgen/grammar/symbol"
)

// itemNum identifies an LR(0) item across the whole grammar. See production.itemBase.
type itemNum int

func (n itemNum) Int() int {
	return int(n)
}

type lrItem struct {
	num  itemNum
	prod productionNum

	// E → E + T
	//
	// Dot | Dotted Symbol | Item
	// ----+---------------+------------
	// 0   | E             | E →・E + T
	// 1   | +             | E → E・+ T
	// 2   | T             | E → E +・T
	// 3   | Nil           | E → E + T・
	dot          int
	dottedSymbol symbol.Symbol

	// When initial is true, the LHS of the production is the augmented start symbol and dot is 0.
	// It looks like $accept →・S $end.
	initial bool

	// When reducible is true, the item looks like E → E + T・.
	reducible bool

	// When kernel is true, the item is kernel item.
	kernel bool
}

func newLR0Item(prod *production, dot int) (*lrItem, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}

	if dot < 0 || dot > prod.rhsLen {
		return nil, fmt.Errorf("dot must be between 0 and %v", prod.rhsLen)
	}

	dottedSymbol := symbol.SymbolNil
	if dot < prod.rhsLen {
		dottedSymbol = prod.rhs[dot]
	}

	initial := false
	if prod.lhs.IsStart() && dot == 0 {
		initial = true
	}

	reducible := false
	if dot == prod.rhsLen {
		reducible = true
	}

	kernel := false
	if initial || dot > 0 {
		kernel = true
	}

	return &lrItem{
		num:          prod.itemBase + itemNum(dot),
		prod:         prod.num,
		dot:          dot,
		dottedSymbol: dottedSymbol,
		initial:      initial,
		reducible:    reducible,
		kernel:       kernel,
	}, nil
}

type kernelID [32]byte

func (id kernelID) String() string {
	return fmt.Sprintf("%x", binary.LittleEndian.Uint32(id[:]))
}

type kernel struct {
	id    kernelID
	items []*lrItem
}

func newKernel(items []*lrItem) (*kernel, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("a kernel need at least one item")
	}

	// Remove duplicates from items.
	var sortedItems []*lrItem
	{
		m := map[itemNum]*lrItem{}
		for _, item := range items {
			if !item.kernel {
				return nil, fmt.Errorf("not a kernel item: %v", item.num)
			}
			m[item.num] = item
		}
		sortedItems = []*lrItem{}
		for _, item := range m {
			sortedItems = append(sortedItems, item)
		}
		sort.Slice(sortedItems, func(i, j int) bool {
			return sortedItems[i].num < sortedItems[j].num
		})
	}

	var id kernelID
	{
		b := make([]byte, 0, len(sortedItems)*8)
		for _, item := range sortedItems {
			b = binary.LittleEndian.AppendUint64(b, uint64(item.num))
		}
		id = sha256.Sum256(b)
	}

	return &kernel{
		id:    id,
		items: sortedItems,
	}, nil
}

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return strconv.Itoa(int(n))
}

func (n stateNum) next() stateNum {
	return stateNum(n + 1)
}

type transition struct {
	symbol symbol.Symbol
	state  stateNum
}

type lrState struct {
	*kernel
	num stateNum

	// accessingSymbol is the symbol every transition into this state is labeled with.
	// The initial state has no accessing symbol.
	accessingSymbol symbol.Symbol

	// next and transitions hold the same edges. transitions is ordered by symbol.Less.
	next        map[symbol.Symbol]stateNum
	transitions []*transition

	// reducible holds the productions having a reducible item in the closure of the kernel,
	// ordered by production number. Empty productions appear here even though their items
	// `p → ・ε` are not kernel items.
	reducible []productionNum
}
