package testing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
	"github.com/vsinha/bomplan/pkg/infrastructure/repositories/memory"
)

// Dec parses a decimal literal - panics on bad input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Day parses a YYYY-MM-DD date in UTC - panics on bad input
func Day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// FGOptions describes a finished good for Fixture.FG
type FGOptions struct {
	WIP         string
	WIPF        string
	Factor      string
	KgPerUnit   string
	UnitsPerBag int
	MinLevel    string
	MaxLevel    string
}

// Fixture builds an item catalog and recipe table into any store
type Fixture struct {
	Store repositories.Store
	items map[string]*entities.Item
}

// NewFixture creates a fixture over a fresh in-memory store
func NewFixture() *Fixture {
	return NewFixtureFor(memory.NewStore(16))
}

// NewFixtureFor creates a fixture writing into store
func NewFixtureFor(store repositories.Store) *Fixture {
	return &Fixture{Store: store, items: make(map[string]*entities.Item)}
}

func (f *Fixture) save(item *entities.Item) *entities.Item {
	if err := f.Store.Items().Save(context.Background(), item); err != nil {
		panic(err)
	}
	f.items[string(item.Code)] = item
	return item
}

func (f *Fixture) plain(code string, kind entities.ItemKind) *entities.Item {
	item, err := entities.NewItem(entities.ItemCode(code), code+" description", kind)
	if err != nil {
		panic(err)
	}
	return f.save(item)
}

// RM adds a raw material
func (f *Fixture) RM(code string) *entities.Item {
	return f.plain(code, entities.RawMaterial{})
}

// WIP adds a work-in-progress item
func (f *Fixture) WIP(code string) *entities.Item {
	return f.plain(code, entities.WorkInProgress{})
}

// WIPF adds a work-in-progress filling item
func (f *Fixture) WIPF(code string) *entities.Item {
	return f.plain(code, entities.WorkInProgressFilling{})
}

// FG adds a finished good. Linked items must already exist.
func (f *Fixture) FG(code string, opts FGOptions) *entities.Item {
	kind := entities.FinishedGood{}
	if opts.WIP != "" {
		kind.WIP = f.ID(opts.WIP)
	}
	if opts.WIPF != "" {
		kind.WIPF = f.ID(opts.WIPF)
	}
	if opts.Factor != "" {
		kind.CalculationFactor = Dec(opts.Factor)
	}

	item, err := entities.NewItem(entities.ItemCode(code), code+" description", kind)
	if err != nil {
		panic(err)
	}
	if opts.KgPerUnit != "" {
		item.KgPerUnit = Dec(opts.KgPerUnit)
	}
	if opts.MinLevel != "" {
		item.MinLevel = Dec(opts.MinLevel)
	}
	if opts.MaxLevel != "" {
		item.MaxLevel = Dec(opts.MaxLevel)
	}
	item.UnitsPerBag = opts.UnitsPerBag
	return f.save(item)
}

// Recipe adds a recipe line between two existing items
func (f *Fixture) Recipe(parent, component, quantityKg string) *entities.RecipeLine {
	line, err := entities.NewRecipeLine(f.ID(parent), f.ID(component), Dec(quantityKg))
	if err != nil {
		panic(err)
	}
	if err := f.Store.Recipes().Save(context.Background(), line); err != nil {
		panic(err)
	}
	return line
}

// Item returns a fixture item by code
func (f *Fixture) Item(code string) *entities.Item {
	item, ok := f.items[code]
	if !ok {
		panic("unknown fixture item " + code)
	}
	return item
}

// ID returns the stored ID of a fixture item
func (f *Fixture) ID(code string) entities.ItemID {
	return f.Item(code).ID
}

// BuildPlant loads a small plant covering every flow. Links and recipes:
//
//	FG-COMPLEX  -> WIPF-SAUCE -> WIP-BASE, RM-SALT
//	FG-PROD     -> WIP-BASE -> RM-FLOUR, RM-WATER
//	FG-FILL     -> WIPF-SAUCE
//	FG-DIRECT   (no links, no recipe)
func BuildPlant() *Fixture {
	return BuildPlantInto(NewFixture())
}

// BuildPlantInto loads the BuildPlant catalog through an existing fixture
func BuildPlantInto(f *Fixture) *Fixture {
	f.RM("RM-FLOUR")
	f.RM("RM-WATER")
	f.RM("RM-SALT")
	f.WIP("WIP-BASE")
	f.WIPF("WIPF-SAUCE")

	f.Recipe("WIP-BASE", "RM-FLOUR", "0.6")
	f.Recipe("WIP-BASE", "RM-WATER", "0.4")
	f.Recipe("WIPF-SAUCE", "WIP-BASE", "0.9")
	f.Recipe("WIPF-SAUCE", "RM-SALT", "0.1")

	f.FG("FG-COMPLEX", FGOptions{
		WIP: "WIP-BASE", WIPF: "WIPF-SAUCE", Factor: "1",
		KgPerUnit: "2", UnitsPerBag: 10, MinLevel: "100", MaxLevel: "500",
	})
	f.FG("FG-PROD", FGOptions{
		WIP: "WIP-BASE", Factor: "1.5",
		KgPerUnit: "1", UnitsPerBag: 12, MinLevel: "50", MaxLevel: "200",
	})
	f.FG("FG-FILL", FGOptions{WIPF: "WIPF-SAUCE", KgPerUnit: "0.5", MinLevel: "40", MaxLevel: "100"})
	f.FG("FG-DIRECT", FGOptions{KgPerUnit: "1", MinLevel: "10", MaxLevel: "20"})

	f.Recipe("FG-COMPLEX", "WIPF-SAUCE", "1")
	f.Recipe("FG-PROD", "WIP-BASE", "1")
	f.Recipe("FG-FILL", "WIPF-SAUCE", "1")
	return f
}
