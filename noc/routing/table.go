package routing

import "fmt"

// A Table maps a destination index to a bitmap over output ports. Tables are
// loaded once at configuration time and are read-only while the simulation
// runs.
type Table interface {
	Lookup(index uint64) uint64
	DefineRoute(index uint64, destBits uint64)
	Len() int
}

// NewTable creates a table with numEntries rows, all initially zero.
func NewTable(numEntries int) Table {
	return &table{rows: make([]uint64, numEntries)}
}

type table struct {
	rows []uint64
}

func (t *table) Lookup(index uint64) uint64 {
	if index >= uint64(len(t.rows)) {
		panic(fmt.Sprintf("route table index %d out of range, %d entries",
			index, len(t.rows)))
	}

	return t.rows[index]
}

func (t *table) DefineRoute(index uint64, destBits uint64) {
	if index >= uint64(len(t.rows)) {
		panic(fmt.Sprintf("route table index %d out of range, %d entries",
			index, len(t.rows)))
	}

	t.rows[index] = destBits
}

func (t *table) Len() int {
	return len(t.rows)
}
