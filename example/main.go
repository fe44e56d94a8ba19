package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/bomplan/pkg/application/dto"
	"github.com/vsinha/bomplan/pkg/application/services/bom"
	"github.com/vsinha/bomplan/pkg/application/services/catalog"
	"github.com/vsinha/bomplan/pkg/application/services/planning"
	"github.com/vsinha/bomplan/pkg/infrastructure/events"
	"github.com/vsinha/bomplan/pkg/infrastructure/logging"
	"github.com/vsinha/bomplan/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()
	log := logging.New("development", "warn")

	store := memory.NewStore(8)
	eventStore := events.NewInMemoryEventStore(log)
	publisher := events.NewPublisher(eventStore)
	recorded := &events.Recorder{}
	eventStore.Subscribe(recorded)

	// A tomato sauce line: jars are filled from a sauce that is cooked from a base
	items := []dto.ItemRow{
		{Code: "RM-TOMATO", Description: "Tomato paste", Type: "RM"},
		{Code: "RM-OIL", Description: "Olive oil", Type: "RM"},
		{Code: "RM-SALT", Description: "Salt", Type: "RM"},
		{Code: "WIP-BASE", Description: "Cooked tomato base", Type: "WIP"},
		{Code: "WIPF-SAUCE", Description: "Sauce ready to fill", Type: "WIPF"},
		{
			Code: "FG-SAUCE-500", Description: "Tomato sauce 500g", Type: "FG",
			WIPCode: "WIP-BASE", WIPFCode: "WIPF-SAUCE",
			CalculationFactor: decimal.RequireFromString("1.05"),
			KgPerUnit:         decimal.RequireFromString("0.5"),
			UnitsPerBag:       12,
			MinLevel:          decimal.NewFromInt(400),
			MaxLevel:          decimal.NewFromInt(2000),
		},
	}
	recipes := []dto.RecipeRow{
		{ParentCode: "WIP-BASE", ComponentCode: "RM-TOMATO", QuantityKg: decimal.RequireFromString("0.9")},
		{ParentCode: "WIP-BASE", ComponentCode: "RM-OIL", QuantityKg: decimal.RequireFromString("0.1")},
		{ParentCode: "WIPF-SAUCE", ComponentCode: "WIP-BASE", QuantityKg: decimal.RequireFromString("0.98")},
		{ParentCode: "WIPF-SAUCE", ComponentCode: "RM-SALT", QuantityKg: decimal.RequireFromString("0.02")},
	}

	if _, err := catalog.NewService(store, log).Import(ctx, items, recipes); err != nil {
		fail("catalog import", err)
	}

	resolver := bom.NewResolver(store.Items(), store.Recipes(), log)
	summary, err := resolver.ExplosionSummary(ctx, "FG-SAUCE-500")
	if err != nil {
		fail("hierarchy", err)
	}
	fmt.Printf("FG-SAUCE-500: %s\n", summary.Flow)
	for _, level := range summary.Levels {
		fmt.Printf("  %d %-5s %s\n", level.Level, level.Type, level.Code)
	}
	fmt.Println()

	week := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	soh := planning.NewSOHService(store, publisher, log)
	result, err := soh.Save(ctx, planning.SOHInput{
		ItemCode:       "FG-SAUCE-500",
		WeekCommencing: week,
		DispatchBoxes:  decimal.NewFromInt(10),
		DispatchUnits:  decimal.NewFromInt(4),
		PackingBoxes:   decimal.NewFromInt(5),
	})
	if err != nil {
		fail("stock on hand", err)
	}
	fmt.Printf("Stock on hand: %s units\n", result.StockOnHand.TotalUnits)
	fmt.Printf("Packing requirement: %s kg / %s units\n", result.Packing.RequirementKg, result.Packing.RequirementUnit)
	fmt.Printf("%s\n\n", result.Message)

	sync := planning.NewSynchronizer(store, publisher, log)
	explosion, err := sync.ExplodeDay(ctx, week, week)
	if err != nil {
		fail("explosion", err)
	}
	fmt.Println(explosion.Summary)

	productions, err := store.Production().ListByDate(ctx, week, week)
	if err != nil {
		fail("production rows", err)
	}
	for _, p := range productions {
		fmt.Printf("  %s  %s kg  %s batches\n", p.ProductionCode, p.TotalKg.StringFixed(2), p.Batches.StringFixed(2))
	}

	fmt.Printf("\n%d planning events recorded\n", len(recorded.Events()))
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "%s failed: %v\n", step, err)
	os.Exit(1)
}
