package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vsinha/bomplan/pkg/application/dto"
	"github.com/vsinha/bomplan/pkg/application/services/bom"
	"github.com/vsinha/bomplan/pkg/application/services/catalog"
	"github.com/vsinha/bomplan/pkg/application/services/explosion"
	appingest "github.com/vsinha/bomplan/pkg/application/services/ingest"
	"github.com/vsinha/bomplan/pkg/application/services/planning"
	"github.com/vsinha/bomplan/pkg/application/services/reports"
	"github.com/vsinha/bomplan/pkg/domain/entities"
	appconfig "github.com/vsinha/bomplan/pkg/infrastructure/config"
	"github.com/vsinha/bomplan/pkg/infrastructure/database"
	"github.com/vsinha/bomplan/pkg/infrastructure/events"
	"github.com/vsinha/bomplan/pkg/infrastructure/ingest"
	"github.com/vsinha/bomplan/pkg/infrastructure/logging"
	"github.com/vsinha/bomplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/bomplan/pkg/infrastructure/repositories/gormrepo"
	"github.com/vsinha/bomplan/pkg/interfaces/cli/output"
)

// PlannerCommand runs one planner subcommand against the configured database
type PlannerCommand struct {
	config Config
	out    io.Writer
}

// NewPlannerCommand creates a planner command writing results to stdout
func NewPlannerCommand(config Config) *PlannerCommand {
	return &PlannerCommand{config: config, out: os.Stdout}
}

// app is the wiring shared by every subcommand
type app struct {
	cfg       *appconfig.Config
	log       zerolog.Logger
	db        *gorm.DB
	store     *gormrepo.Store
	recorded  *events.Recorder
	publisher *events.Publisher
	printer   *output.Printer
}

// Execute runs the planner command
func (c *PlannerCommand) Execute(ctx context.Context) error {
	if c.config.Help || c.config.Command == "help" {
		c.showHelp()
		return nil
	}

	if err := c.config.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	a, err := c.setup()
	if err != nil {
		return err
	}
	defer database.Close(a.db)

	if err := c.run(ctx, a); err != nil {
		return err
	}

	return a.printer.Events(a.recorded.Events())
}

func (c *PlannerCommand) setup() (*app, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, err
	}
	if c.config.Command == "migrate" {
		cfg.DBAutoMigrate = true
	}
	log := logging.New(cfg.Env, cfg.LogLevel)

	printer, err := output.NewPrinter(output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	}, c.out)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}

	eventStore := events.NewInMemoryEventStore(log)
	eventStore.Subscribe(events.LogHandler(log, zerolog.DebugLevel))
	recorded := &events.Recorder{}
	if c.config.Verbose {
		eventStore.Subscribe(recorded)
	}
	return &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		store:     gormrepo.NewStore(db),
		recorded:  recorded,
		publisher: events.NewPublisher(eventStore),
		printer:   printer,
	}, nil
}

func (c *PlannerCommand) run(ctx context.Context, a *app) error {
	switch c.config.Command {
	case "migrate":
		fmt.Fprintln(c.out, "Schema is up to date")
		return nil
	case "import":
		return c.importCatalog(ctx, a)
	case "explode":
		return c.explode(ctx, a)
	case "upload":
		return c.upload(ctx, a)
	case "hierarchy":
		return c.hierarchy(ctx, a)
	case "requirements":
		return c.requirements(ctx, a)
	case "validate":
		return c.validate(ctx, a)
	case "report-usage":
		return c.reportUsage(ctx, a)
	case "report-rm":
		return c.reportRawMaterials(ctx, a)
	default:
		return fmt.Errorf("unknown command %q", c.config.Command)
	}
}

func parseDay(name, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -%s %q, expected YYYY-MM-DD", name, value)
	}
	return t, nil
}

func parseKg(name, value string) (decimal.Decimal, error) {
	kg, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid -%s %q: %w", name, value, err)
	}
	return kg, nil
}

func (c *PlannerCommand) importCatalog(ctx context.Context, a *app) error {
	loader := csv.NewLoader()
	items, err := loader.LoadItems(c.config.ItemsFile)
	if err != nil {
		return fmt.Errorf("error loading items: %w", err)
	}
	var recipes []dto.RecipeRow
	if c.config.RecipesFile != "" {
		if recipes, err = loader.LoadRecipes(c.config.RecipesFile); err != nil {
			return fmt.Errorf("error loading recipes: %w", err)
		}
	}

	report, err := catalog.NewService(a.store, a.log).Import(ctx, items, recipes)
	if err != nil {
		return fmt.Errorf("error importing catalog: %w", err)
	}
	return a.printer.Import(report)
}

func (c *PlannerCommand) explode(ctx context.Context, a *app) error {
	packingDate, err := parseDay("date", c.config.Date)
	if err != nil {
		return err
	}
	week := entities.WeekCommencing(packingDate)
	if c.config.Week != "" {
		if week, err = parseDay("week", c.config.Week); err != nil {
			return err
		}
	}

	sync := planning.NewSynchronizer(a.store, a.publisher, a.log)
	result, runErr := sync.ExplodeDay(ctx, packingDate, week)
	if result != nil {
		if err := a.printer.Explosion(result); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("error running recipe explosion: %w", runErr)
	}
	return nil
}

func (c *PlannerCommand) upload(ctx context.Context, a *app) error {
	file, err := os.Open(c.config.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.config.File, err)
	}
	defer file.Close()

	var src appingest.RowSource
	switch strings.ToLower(filepath.Ext(c.config.File)) {
	case ".xlsx", ".xlsm":
		src, err = ingest.NewXLSXSource(file)
	default:
		encoding := c.config.Encoding
		if encoding == "" {
			encoding = a.cfg.CSVEncoding
		}
		src, err = ingest.NewCSVSource(file, encoding)
	}
	if err != nil {
		return err
	}

	opts := appingest.Options{BatchSize: a.cfg.UploadBatchSize}
	if c.config.Week != "" {
		if opts.WeekOverride, err = parseDay("week", c.config.Week); err != nil {
			return err
		}
	}

	soh := planning.NewSOHService(a.store, a.publisher, a.log)
	report, uploadErr := appingest.NewUploader(a.store, soh, a.publisher, a.log).Upload(ctx, src, opts)
	if report != nil {
		if err := a.printer.Upload(report); err != nil {
			return err
		}
	}
	if uploadErr != nil {
		return fmt.Errorf("upload stopped: %w", uploadErr)
	}
	return nil
}

func (c *PlannerCommand) hierarchy(ctx context.Context, a *app) error {
	resolver := bom.NewResolver(a.store.Items(), a.store.Recipes(), a.log)
	code := entities.ItemCode(c.config.FG)

	summary, err := resolver.ExplosionSummary(ctx, code)
	if err != nil {
		return err
	}

	var preview *dto.DownstreamPreview
	if c.config.Quantity != "" {
		qty, err := parseKg("qty", c.config.Quantity)
		if err != nil {
			return err
		}
		if preview, err = resolver.DownstreamRequirements(ctx, code, qty); err != nil {
			return err
		}
	}
	return a.printer.Hierarchy(summary, preview)
}

func (c *PlannerCommand) requirements(ctx context.Context, a *app) error {
	kg, err := parseKg("kg", c.config.Kg)
	if err != nil {
		return err
	}
	item, err := a.store.Items().FindByCode(ctx, entities.ItemCode(c.config.Item))
	if err != nil {
		return err
	}

	aggregator := explosion.NewAggregator(a.store.Items(), a.store.Recipes(), a.log)
	components, err := aggregator.CalculateComponentRequirements(ctx, item.ID, kg)
	if err != nil {
		return err
	}
	return a.printer.Requirements(c.config.Item, kg.String(), components)
}

func (c *PlannerCommand) validate(ctx context.Context, a *app) error {
	result, err := catalog.NewService(a.store, a.log).Validate(ctx)
	if err != nil {
		return err
	}
	if err := a.printer.Validation(result); err != nil {
		return err
	}
	if !result.Valid() {
		return fmt.Errorf("recipe table has %d problems", len(result.Errors))
	}
	return nil
}

func (c *PlannerCommand) reportService(a *app) (*reports.Service, error) {
	db, err := database.SQLX(a.db)
	if err != nil {
		return nil, err
	}
	return reports.NewService(db, a.log), nil
}

func (c *PlannerCommand) reportUsage(ctx context.Context, a *app) error {
	from, err := parseDay("from", c.config.From)
	if err != nil {
		return err
	}
	to, err := parseDay("to", c.config.To)
	if err != nil {
		return err
	}
	svc, err := c.reportService(a)
	if err != nil {
		return err
	}
	rows, err := svc.ProductionUsage(ctx, from, to)
	if err != nil {
		return err
	}
	return a.printer.Usage(rows)
}

func (c *PlannerCommand) reportRawMaterials(ctx context.Context, a *app) error {
	week, err := parseDay("week", c.config.Week)
	if err != nil {
		return err
	}
	svc, err := c.reportService(a)
	if err != nil {
		return err
	}
	rows, err := svc.RawMaterialWeekly(ctx, week)
	if err != nil {
		return err
	}
	return a.printer.RawMaterials(entities.WeekCommencing(week), rows)
}

// showHelp displays the help message
func (c *PlannerCommand) showHelp() {
	fmt.Fprintf(c.out, `Planner CLI - FG/WIPF/WIP/RM production planning

USAGE:
    planner <command> [flags]

COMMANDS:
    migrate                              Create or update the database schema
    import -items <file> [-recipes <f>]  Load the item catalog and recipe table
    explode -date <day> [-week <day>]    Rebuild filling and production rows for a packing date
    upload -file <csv|xlsx> [-week <d>]  Apply a stock-on-hand file in committed batches
    hierarchy -fg <code> [-qty <kg>]     Show a finished good's levels and downstream needs
    requirements -item <code> -kg <kg>   Show the components needed for a WIP or WIPF quantity
    validate                             Check the recipe table for cycles and bad references
    report-usage -from <day> -to <day>   Component usage of production rows in a date range
    report-rm -week <day>                Raw material kg for the productions of a week

COMMON FLAGS:
    -format <fmt>       Output format: text, json, csv (default: text)
    -output <dir>       Output directory for json and csv results (optional)
    -verbose            Print recorded planning events
    -help               Show this help message

ENVIRONMENT:
    APP_ENV             development | production
    LOG_LEVEL           debug, info, warn, error
    DB_DRIVER           sqlite | postgres | mysql | sqlserver
    DATABASE_URL        driver DSN
    UPLOAD_BATCH_SIZE   rows per committed upload batch (default: 20)
    CSV_ENCODING        utf-8, windows-1252, iso-8859-1

CSV FILE FORMATS:

items.csv:
    code,description,type,wip_code,wipf_code,calculation_factor,kg_per_unit,avg_weight_per_unit,units_per_bag,min_level,max_level
    FG-TOMATO-500,Tomato sauce 500g,FG,WIP-TOMATO,WIPF-TOMATO,1.05,0.5,,12,100,400

recipes.csv:
    parent_code,component_code,quantity_kg
    WIP-TOMATO,RM-TOMATO,0.85

soh upload:
    FG Code,Description,Week Commencing,Soh_dispatch_Box,Soh_dispatch_Unit,Soh_packing_Box,Soh_packing_Unit
    FG-TOMATO-500,Tomato sauce 500g,06-01-2025,10,3,2,0

EXAMPLES:
    planner migrate
    planner import -items data/items.csv -recipes data/recipes.csv
    planner upload -file soh.xlsx
    planner explode -date 2025-01-06 -verbose
    planner hierarchy -fg FG-TOMATO-500 -qty 1000 -format json
    planner report-rm -week 2025-01-06 -format csv -output reports/
`)
}
