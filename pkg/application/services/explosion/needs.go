package explosion

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/domain/entities"
)

// Truncation records a branch dropped by the depth limit
type Truncation struct {
	ItemID entities.ItemID
	Kg     decimal.Decimal
	Level  int
}

// Needs accumulates downstream kg per item for one explosion run.
// A Needs value belongs to a single run and is not shared between goroutines.
type Needs struct {
	Filling     map[entities.ItemID]decimal.Decimal
	Production  map[entities.ItemID]decimal.Decimal
	Truncations []Truncation
}

// NewNeeds creates an empty accumulator
func NewNeeds() *Needs {
	return &Needs{
		Filling:    make(map[entities.ItemID]decimal.Decimal),
		Production: make(map[entities.ItemID]decimal.Decimal),
	}
}

func (n *Needs) addFilling(id entities.ItemID, kg decimal.Decimal) {
	n.Filling[id] = n.Filling[id].Add(kg)
}

func (n *Needs) addProduction(id entities.ItemID, kg decimal.Decimal) {
	n.Production[id] = n.Production[id].Add(kg)
}

// Merge adds every total of other into n
func (n *Needs) Merge(other *Needs) {
	for id, kg := range other.Filling {
		n.addFilling(id, kg)
	}
	for id, kg := range other.Production {
		n.addProduction(id, kg)
	}
	n.Truncations = append(n.Truncations, other.Truncations...)
}

// Amount is one item's accumulated total
type Amount struct {
	ItemID entities.ItemID
	Kg     decimal.Decimal
}

// FillingAmounts returns the filling totals ordered by item
func (n *Needs) FillingAmounts() []Amount {
	return sortedAmounts(n.Filling)
}

// ProductionAmounts returns the production totals ordered by item
func (n *Needs) ProductionAmounts() []Amount {
	return sortedAmounts(n.Production)
}

func sortedAmounts(totals map[entities.ItemID]decimal.Decimal) []Amount {
	amounts := make([]Amount, 0, len(totals))
	for id, kg := range totals {
		amounts = append(amounts, Amount{ItemID: id, Kg: kg})
	}
	slices.SortFunc(amounts, func(a, b Amount) int { return cmp.Compare(a.ItemID, b.ItemID) })
	return amounts
}
