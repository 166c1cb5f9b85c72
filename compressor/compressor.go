package compressor

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// OriginalTable is a dense row-major table.
type OriginalTable struct {
	entries  []int
	rowCount int
	colCount int
}

func NewOriginalTable(entries []int, colCount int) (*OriginalTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("enries is empty")
	}
	if colCount <= 0 {
		return nil, fmt.Errorf("colCount must be >=1")
	}
	if len(entries)%colCount != 0 {
		return nil, fmt.Errorf("entries length or column count are incorrect; entries length: %v, column count: %v", len(entries), colCount)
	}

	return &OriginalTable{
		entries:  entries,
		rowCount: len(entries) / colCount,
		colCount: colCount,
	}, nil
}

func (t *OriginalTable) row(row int) []int {
	return t.entries[row*t.colCount : (row+1)*t.colCount]
}

type Compressor interface {
	Compress(orig *OriginalTable) error
	Lookup(row, col int) (int, error)
	OriginalTableSize() (int, int)
}

var (
	_ Compressor = &UniqueRowsTable{}
	_ Compressor = &RowDisplacementTable{}
)

// UniqueRowsTable stores each distinct row once. Goto tables compress well this way because
// many states have no gotos at all or share the same ones.
type UniqueRowsTable struct {
	UniqueRows       []int
	RowNums          []int
	OriginalRowCount int
	OriginalColCount int
}

func NewUniqueRowsTable() *UniqueRowsTable {
	return &UniqueRowsTable{}
}

func (tab *UniqueRowsTable) Lookup(row, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return 0, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	return tab.UniqueRows[tab.RowNums[row]*tab.OriginalColCount+col], nil
}

func (tab *UniqueRowsTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

func (tab *UniqueRowsTable) Compress(orig *OriginalTable) error {
	var uniqueRows []int
	rowNums := make([]int, orig.rowCount)
	key2RowNum := map[string]int{}
	buf := make([]byte, 0, orig.colCount*binary.MaxVarintLen64)
	for row := 0; row < orig.rowCount; row++ {
		entries := orig.row(row)

		buf = buf[:0]
		for _, v := range entries {
			buf = binary.AppendVarint(buf, int64(v))
		}
		key := string(buf)

		rowNum, ok := key2RowNum[key]
		if !ok {
			rowNum = len(key2RowNum)
			key2RowNum[key] = rowNum
			uniqueRows = append(uniqueRows, entries...)
		}
		rowNums[row] = rowNum
	}

	tab.UniqueRows = uniqueRows
	tab.RowNums = rowNums
	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount

	return nil
}

// ForbiddenValue marks a slot of RowDisplacementTable.Entries that no row owns.
const ForbiddenValue = -1

// RowDisplacementTable overlays the rows of a table into one array. Each row keeps only the
// entries differing from its default value; Lookup returns the row default for the others.
//
// The default of a row is its most frequent value. Ties are broken in favor of EmptyValue, then
// the smaller value. A row of an action table whose states have a default reduction therefore
// stores only its shifts, its accept entry, and its explicit errors.
type RowDisplacementTable struct {
	OriginalRowCount int
	OriginalColCount int
	EmptyValue       int
	Entries          []int
	Bounds           []int
	RowDisplacement  []int
	RowDefaults      []int
}

func NewRowDisplacementTable(emptyValue int) *RowDisplacementTable {
	return &RowDisplacementTable{
		EmptyValue: emptyValue,
	}
}

func (tab *RowDisplacementTable) Lookup(row int, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return tab.EmptyValue, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	d := tab.RowDisplacement[row]
	if d+col >= len(tab.Bounds) || tab.Bounds[d+col] != row {
		return tab.RowDefaults[row], nil
	}
	return tab.Entries[d+col], nil
}

func (tab *RowDisplacementTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

type rowInfo struct {
	rowNum     int
	defaultVal int
	explicit   []int
}

func (tab *RowDisplacementTable) rowDefault(entries []int) int {
	freq := map[int]int{}
	for _, v := range entries {
		freq[v]++
	}
	def := tab.EmptyValue
	max := freq[tab.EmptyValue]
	for v, n := range freq {
		if v == tab.EmptyValue {
			continue
		}
		if n > max || (n == max && def != tab.EmptyValue && v < def) {
			def = v
			max = n
		}
	}
	return def
}

func (tab *RowDisplacementTable) Compress(orig *OriginalTable) error {
	rows := make([]rowInfo, orig.rowCount)
	defaults := make([]int, orig.rowCount)
	for row := 0; row < orig.rowCount; row++ {
		entries := orig.row(row)
		def := tab.rowDefault(entries)
		var explicit []int
		for col, v := range entries {
			if v != def {
				explicit = append(explicit, col)
			}
		}
		rows[row] = rowInfo{
			rowNum:     row,
			defaultVal: def,
			explicit:   explicit,
		}
		defaults[row] = def
	}

	// Placing the densest rows first leaves the sparse ones to fill the gaps.
	sort.SliceStable(rows, func(i int, j int) bool {
		return len(rows[i].explicit) > len(rows[j].explicit)
	})

	var entries []int
	var bounds []int
	grow := func(size int) {
		for len(entries) < size {
			entries = append(entries, tab.EmptyValue)
			bounds = append(bounds, ForbiddenValue)
		}
	}
	rowDisplacement := make([]int, orig.rowCount)
	for _, r := range rows {
		if len(r.explicit) == 0 {
			continue
		}

		d := 0
		for {
			grow(d + orig.colCount)
			overlapped := false
			for _, col := range r.explicit {
				if bounds[d+col] != ForbiddenValue {
					overlapped = true
					break
				}
			}
			if !overlapped {
				break
			}
			d++
		}

		rowDisplacement[r.rowNum] = d
		for _, col := range r.explicit {
			entries[d+col] = orig.entries[r.rowNum*orig.colCount+col]
			bounds[d+col] = r.rowNum
		}
	}

	// Trim the unowned tail.
	bottom := len(bounds)
	for bottom > 0 && bounds[bottom-1] == ForbiddenValue {
		bottom--
	}

	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount
	tab.Entries = entries[:bottom]
	tab.Bounds = bounds[:bottom]
	tab.RowDisplacement = rowDisplacement
	tab.RowDefaults = defaults

	return nil
}
