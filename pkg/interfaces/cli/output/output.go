package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/vsinha/bomplan/pkg/application/dto"
	"github.com/vsinha/bomplan/pkg/domain/services"
	"github.com/vsinha/bomplan/pkg/infrastructure/events"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
}

// Table is one titled grid of a report
type Table struct {
	Name   string
	Title  string
	Header []string
	Rows   [][]string
}

// Printer renders command results as text, JSON or CSV
type Printer struct {
	config Config
	w      io.Writer
}

// NewPrinter creates a printer writing to w
func NewPrinter(config Config, w io.Writer) (*Printer, error) {
	switch config.Format {
	case "", "text":
		config.Format = "text"
	case "json", "csv":
	default:
		return nil, fmt.Errorf("unsupported output format: %s", config.Format)
	}
	return &Printer{config: config, w: w}, nil
}

// Render writes value as JSON, or its tables as text or CSV
func (p *Printer) Render(name string, value any, summary []string, tables ...Table) error {
	switch p.config.Format {
	case "json":
		return p.renderJSON(name, value)
	case "csv":
		return p.renderCSV(name, tables)
	default:
		return p.renderText(summary, tables)
	}
}

func (p *Printer) renderText(summary []string, tables []Table) error {
	for _, line := range summary {
		fmt.Fprintln(p.w, line)
	}
	if len(summary) > 0 {
		fmt.Fprintln(p.w)
	}

	for _, t := range tables {
		if len(t.Rows) == 0 {
			continue
		}
		fmt.Fprintf(p.w, "%s:\n", t.Title)
		tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
		dashes := make([]string, len(t.Header))
		for i, h := range t.Header {
			dashes[i] = strings.Repeat("-", len(h))
		}
		fmt.Fprintln(tw, strings.Join(dashes, "\t"))
		for _, row := range t.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
		fmt.Fprintln(p.w)
	}
	return nil
}

func (p *Printer) renderJSON(name string, value any) error {
	jsonData, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if p.config.OutputDir == "" {
		_, err := fmt.Fprintln(p.w, string(jsonData))
		return err
	}

	if err := os.MkdirAll(p.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(p.config.OutputDir, name+".json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if p.config.Verbose {
		fmt.Fprintf(p.w, "JSON results saved to: %s\n", filename)
	}
	return nil
}

func (p *Printer) renderCSV(name string, tables []Table) error {
	for _, t := range tables {
		if p.config.OutputDir == "" {
			if err := writeCSV(p.w, t); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(p.config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		filename := filepath.Join(p.config.OutputDir, fmt.Sprintf("%s_%s.csv", name, t.Name))
		file, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", filename, err)
		}
		err = writeCSV(file, t)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		if p.config.Verbose {
			fmt.Fprintf(p.w, "CSV results saved to: %s\n", filename)
		}
	}
	return nil
}

func writeCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write %s CSV: %w", t.Name, err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write %s CSV: %w", t.Name, err)
	}
	return nil
}

func date(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Explosion prints the outcome of a daily explosion
func (p *Printer) Explosion(result *dto.ExplosionResult) error {
	status := "OK"
	if !result.Success {
		status = "FAILED"
	}
	summary := []string{
		fmt.Sprintf("Recipe explosion %s [%s]", status, result.RunID),
		fmt.Sprintf("Packing date: %s  Week commencing: %s", date(result.PackingDate), date(result.WeekCommencing)),
		result.Summary,
	}
	table := Table{
		Name:   "totals",
		Title:  "Totals",
		Header: []string{"Stage", "Deleted", "Created", "Kg"},
		Rows: [][]string{
			{"packing", "", "", result.TotalPackingKg.String()},
			{"filling", fmt.Sprint(result.FillingDeleted), fmt.Sprint(result.FillingCreated), result.TotalFillingKg.String()},
			{"production", fmt.Sprint(result.ProductionDeleted), fmt.Sprint(result.ProductionCreated), result.TotalProductionKg.String()},
		},
	}
	if result.Truncated > 0 {
		summary = append(summary, fmt.Sprintf("Warning: %d branches cut at the recursion depth limit", result.Truncated))
	}
	return p.Render("explosion", result, summary, table)
}

// Upload prints an upload report
func (p *Printer) Upload(report *dto.UploadReport) error {
	summary := []string{
		fmt.Sprintf("Upload %s", report.UploadID),
		fmt.Sprintf("Rows read: %d  Processed: %d  Skipped: %d  Batches: %d",
			report.RowsRead, report.Processed, report.Skipped, report.Batches),
	}
	issues := Table{Name: "issues", Title: "Skipped rows", Header: []string{"Row", "Code", "Reason"}}
	for _, issue := range report.Issues {
		issues.Rows = append(issues.Rows, []string{fmt.Sprint(issue.Row), issue.Code, issue.Reason})
	}
	return p.Render("upload", report, summary, issues)
}

// Import prints a catalog import report
func (p *Printer) Import(report *dto.ImportReport) error {
	summary := []string{
		fmt.Sprintf("Items created: %d  updated: %d", report.ItemsCreated, report.ItemsUpdated),
		fmt.Sprintf("Recipe lines created: %d  updated: %d", report.RecipesCreated, report.RecipesUpdated),
	}
	return p.Render("import", report, summary)
}

// Hierarchy prints a finished good's levels and, when given, its downstream preview
func (p *Printer) Hierarchy(summary *dto.ExplosionSummary, preview *dto.DownstreamPreview) error {
	lines := []string{
		fmt.Sprintf("Finished good: %s", summary.FGCode),
		fmt.Sprintf("Flow: %s", summary.Flow),
		fmt.Sprintf("Calculation factor: %s", summary.CalculationFactor),
	}
	levels := Table{Name: "levels", Title: "Levels", Header: []string{"Level", "Type", "Code", "Description"}}
	for _, l := range summary.Levels {
		levels.Rows = append(levels.Rows, []string{fmt.Sprint(l.Level), l.Type.String(), string(l.Code), l.Description})
	}

	tables := []Table{levels}
	if preview != nil {
		lines = append(lines, fmt.Sprintf("Quantity: %s  Adjusted: %s", preview.Quantity, preview.AdjustedQuantity))
		for _, stage := range []*dto.StageRequirement{&preview.Packing, preview.Filling, preview.Production} {
			if stage != nil {
				tables = append(tables, stageTable(stage))
			}
		}
	}
	value := struct {
		Summary    *dto.ExplosionSummary
		Downstream *dto.DownstreamPreview `json:",omitempty"`
	}{summary, preview}
	return p.Render("hierarchy", value, lines, tables...)
}

func stageTable(stage *dto.StageRequirement) Table {
	t := Table{
		Name:  strings.ToLower(string(stage.ItemCode)),
		Title: fmt.Sprintf("%s (%s kg)", stage.ItemCode, stage.RequirementKg),
	}
	t.Header, t.Rows = componentRows(stage.Components)
	return t
}

func componentRows(components []dto.ComponentRequirement) ([]string, [][]string) {
	header := []string{"Component", "Description", "Type", "Qty kg", "Required kg"}
	rows := make([][]string, 0, len(components))
	for _, c := range components {
		rows = append(rows, []string{
			string(c.ComponentCode), c.Description, c.Type.String(),
			c.QuantityKg.String(), c.RequiredKg.String(),
		})
	}
	return header, rows
}

// Requirements prints the direct component needs of an item
func (p *Printer) Requirements(code string, kg string, components []dto.ComponentRequirement) error {
	t := Table{Name: "components", Title: fmt.Sprintf("Components of %s for %s kg", code, kg)}
	t.Header, t.Rows = componentRows(components)
	return p.Render("requirements", components, nil, t)
}

// Validation prints a recipe table check
func (p *Printer) Validation(result *services.ValidationResult) error {
	summary := []string{"Recipe table is valid"}
	if !result.Valid() {
		summary = []string{fmt.Sprintf("Recipe table has %d problems", len(result.Errors))}
	}
	problems := Table{Name: "problems", Title: "Problems", Header: []string{"Problem"}}
	for _, e := range result.Errors {
		problems.Rows = append(problems.Rows, []string{e})
	}
	return p.Render("validation", result, summary, problems)
}

// Usage prints the production usage report
func (p *Printer) Usage(rows []dto.UsageRow) error {
	t := Table{
		Name:   "usage",
		Title:  "Production usage",
		Header: []string{"Date", "Production", "Batches", "Component", "Type", "Qty kg", "Usage kg"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			date(r.ProductionDate), r.ProductionCode, r.Batches.StringFixed(2),
			r.ComponentCode, r.ComponentType, r.QuantityKg.String(), r.UsageKg.StringFixed(2),
		})
	}
	return p.Render("production_usage", rows, []string{fmt.Sprintf("%d usage rows", len(rows))}, t)
}

// RawMaterials prints the weekly raw material report
func (p *Printer) RawMaterials(week time.Time, rows []dto.RawMaterialUsage) error {
	t := Table{
		Name:   "raw_materials",
		Title:  "Raw material usage",
		Header: []string{"Code", "Description", "Usage kg"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Code, r.Description, r.UsageKg.StringFixed(2)})
	}
	return p.Render("raw_material_usage", rows, []string{fmt.Sprintf("Week commencing %s", date(week))}, t)
}

// Events prints recorded planning events
func (p *Printer) Events(recorded []events.Event) error {
	if !p.config.Verbose || p.config.Format != "text" || len(recorded) == 0 {
		return nil
	}
	t := Table{Name: "events", Title: "Events", Header: []string{"Time", "Type", "Stream"}}
	for _, e := range recorded {
		t.Rows = append(t.Rows, []string{e.Timestamp().Format(time.RFC3339), e.Type(), e.StreamID()})
	}
	return p.renderText(nil, []Table{t})
}
