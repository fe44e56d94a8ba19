package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

// Config holds the parsed command line of one planner invocation
type Config struct {
	Command string

	Date        string
	Week        string
	File        string
	Encoding    string
	ItemsFile   string
	RecipesFile string
	FG          string
	Item        string
	Kg          string
	Quantity    string
	From        string
	To          string

	Format    string
	OutputDir string
	Verbose   bool
	Help      bool
}

// ParseArgs reads "<command> [flags]". An empty command line asks for help.
func ParseArgs(args []string, stderr io.Writer) (Config, error) {
	if len(args) == 0 {
		return Config{Help: true}, nil
	}

	config := Config{Command: args[0]}
	fs := flag.NewFlagSet(config.Command, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&config.Format, "format", "text", "Output format: text, json, csv")
	fs.StringVar(&config.OutputDir, "output", "", "Output directory for results (optional)")
	fs.BoolVar(&config.Verbose, "verbose", false, "Enable verbose output")
	fs.BoolVar(&config.Help, "help", false, "Show help message")

	switch config.Command {
	case "migrate", "validate", "help":
	case "import":
		fs.StringVar(&config.ItemsFile, "items", "", "Path to items CSV file")
		fs.StringVar(&config.RecipesFile, "recipes", "", "Path to recipes CSV file")
	case "explode":
		fs.StringVar(&config.Date, "date", "", "Packing date (YYYY-MM-DD)")
		fs.StringVar(&config.Week, "week", "", "Week commencing (YYYY-MM-DD), defaults to the Monday of -date")
	case "upload":
		fs.StringVar(&config.File, "file", "", "Path to SOH CSV or XLSX file")
		fs.StringVar(&config.Encoding, "encoding", "", "CSV encoding: utf-8, windows-1252, iso-8859-1")
		fs.StringVar(&config.Week, "week", "", "Override week commencing for every row (YYYY-MM-DD)")
	case "hierarchy":
		fs.StringVar(&config.FG, "fg", "", "Finished good code")
		fs.StringVar(&config.Quantity, "qty", "", "Preview downstream requirements for this quantity (kg)")
	case "requirements":
		fs.StringVar(&config.Item, "item", "", "WIP or WIPF item code")
		fs.StringVar(&config.Kg, "kg", "", "Required kg of the item")
	case "report-usage":
		fs.StringVar(&config.From, "from", "", "First production date (YYYY-MM-DD)")
		fs.StringVar(&config.To, "to", "", "Last production date (YYYY-MM-DD)")
	case "report-rm":
		fs.StringVar(&config.Week, "week", "", "Week commencing (YYYY-MM-DD)")
	default:
		return Config{}, fmt.Errorf("unknown command %q", config.Command)
	}

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			config.Help = true
			return config, nil
		}
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return config, nil
}

// validateInputs checks the flags each command requires
func (c Config) validateInputs() error {
	required := map[string][]struct{ name, value string }{
		"import":       {{"items", c.ItemsFile}},
		"explode":      {{"date", c.Date}},
		"upload":       {{"file", c.File}},
		"hierarchy":    {{"fg", c.FG}},
		"requirements": {{"item", c.Item}, {"kg", c.Kg}},
		"report-usage": {{"from", c.From}, {"to", c.To}},
		"report-rm":    {{"week", c.Week}},
	}
	for _, flagValue := range required[c.Command] {
		if flagValue.value == "" {
			return fmt.Errorf("-%s is required for %s", flagValue.name, c.Command)
		}
	}
	return nil
}
