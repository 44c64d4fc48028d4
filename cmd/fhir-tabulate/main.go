// Package main implements the fhir-tabulate CLI tool: it cracks FHIR
// bundles into tables according to a JSON design config and writes one
// output file per table.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	ft "github.com/gofhir/tabulate"
	"github.com/gofhir/tabulate/crack"
	"github.com/gofhir/tabulate/design"
	"github.com/gofhir/tabulate/reshape"
	"github.com/gofhir/tabulate/table"
	"github.com/gofhir/tabulate/tree"
)

const (
	version = "0.1.0"
	usage   = `fhir-tabulate - flatten FHIR bundles into tables

Usage:
  fhir-tabulate -design design.json [options] <bundle>...
  fhir-tabulate -design design.json -            (read bundle from stdin)
  cat bundle.json | fhir-tabulate -design d.json -

Bundle files are decoded by extension (.xml or .json); stdin is sniffed.

The design config is JSON:
  {
    "tables": [
      {
        "name": "patients",
        "resource": "Patient",
        "columns": [
          {"name": "given", "path": "name/given"},
          {"name": "family", "path": "name/family"}
        ],
        "sep": " ",
        "brackets": ["[", "]"]
      }
    ]
  }
Omit "columns" to auto-discover every populated path.

Examples:
  fhir-tabulate -design d.json bundles/*.xml
  fhir-tabulate -design d.json -format json -output out/ bundle.json
  fhir-tabulate -design d.json -melt patients:name bundle.xml
  fhir-tabulate -design d.json -rm-indices bundle.xml

Options:
`
)

// OutputFormat specifies the output format.
type OutputFormat string

// Output format constants.
const (
	OutputCSV  OutputFormat = "csv"
	OutputJSON OutputFormat = "json"
)

// Config holds CLI configuration
type Config struct {
	DesignFile    string
	OutputDir     string
	Output        OutputFormat
	Filter        string
	Melt          string
	RemoveIndices bool
	Parallel      bool
	Quiet         bool
	ShowVersion   bool
	Help          bool
	Files         []string
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("fhir-tabulate v%s\n", version)
		os.Exit(0)
	}

	if config.Help || config.DesignFile == "" || len(config.Files) == 0 {
		flag.Usage()
		os.Exit(0)
	}

	os.Exit(run(config))
}

func parseFlags() *Config {
	config := &Config{
		OutputDir: ".",
		Output:    OutputCSV,
	}

	var output string

	flag.StringVar(&config.DesignFile, "design", "", "Design config JSON file (required)")
	flag.StringVar(&config.OutputDir, "output", ".", "Directory for output files")
	flag.StringVar(&output, "format", "csv", "Output format: csv, json")
	flag.StringVar(&config.Filter, "filter", "", "FHIRPath expression; resources it does not accept are skipped")
	flag.StringVar(&config.Melt, "melt", "", "Melt a table by column prefix, as table:prefix")
	flag.BoolVar(&config.RemoveIndices, "rm-indices", false, "Strip index markers from all output cells")
	flag.BoolVar(&config.Parallel, "parallel", false, "Crack design entries in parallel")
	flag.BoolVar(&config.Quiet, "quiet", false, "Suppress progress and advisory warnings")
	flag.BoolVar(&config.ShowVersion, "v", false, "Show version")
	flag.BoolVar(&config.Help, "help", false, "Show help")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	switch strings.ToLower(output) {
	case "json":
		config.Output = OutputJSON
	default:
		config.Output = OutputCSV
	}

	config.Files = flag.Args()
	return config
}

func run(config *Config) int {
	d, err := loadDesign(config.DesignFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	bundles, err := loadBundles(config.Files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !config.Quiet {
		fmt.Fprintf(os.Stderr, "Cracking %d bundle(s) into %d table(s)...\n", bundles.Len(), d.Len())
	}

	opts := []ft.Option{ft.WithParallelTables(config.Parallel)}
	if config.Filter != "" {
		opts = append(opts, ft.WithFilter(config.Filter))
	}

	cracker, err := crack.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	start := time.Now()
	result, err := cracker.Crack(context.Background(), bundles, d)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cracking failed: %v\n", err)
		return 1
	}

	issues := result.Issues
	tables := make(map[string]*table.Table, result.Len())
	for _, name := range result.Names() {
		tables[name] = result.Get(name)
	}

	if config.Melt != "" {
		name, melted, meltIssues, err := meltTable(tables, d, config.Melt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		tables[name] = melted
		issues = append(issues, meltIssues...)
	}

	if config.RemoveIndices {
		for name, tbl := range tables {
			brackets := design.DefaultStyle().Brackets
			if desc := d.Get(name); desc != nil {
				brackets = desc.Style().Brackets
			}
			clean, rmIssues, err := reshape.RemoveIndices(tbl, brackets)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return 1
			}
			tables[name] = clean
			issues = append(issues, rmIssues...)
		}
	}

	if !config.Quiet {
		for _, is := range issues {
			fmt.Fprintf(os.Stderr, "%s\n", is)
		}
	}

	for _, name := range result.Names() {
		if err := writeTable(config, name, tables[name]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if !config.Quiet {
		fmt.Fprintf(os.Stderr, "Done in %s.\n", time.Since(start).Round(time.Millisecond))
	}
	return 0
}

func loadDesign(path string) (*design.Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open design config: %w", err)
	}
	defer f.Close()
	return design.ReadDesign(f)
}

func loadBundles(args []string) (tree.Bundles, error) {
	var bundles tree.Bundles

	for _, arg := range args {
		if arg == "-" {
			b, err := readBundleSniffed(os.Stdin)
			if err != nil {
				return nil, fmt.Errorf("stdin: %w", err)
			}
			bundles = append(bundles, b)
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}

		for _, path := range matches {
			b, err := readBundleFile(path)
			if err != nil {
				return nil, err
			}
			bundles = append(bundles, b)
		}
	}
	return bundles, nil
}

func readBundleFile(path string) (*tree.Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		b, err := tree.ReadBundleXML(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return b, nil
	case ".json":
		b, err := tree.ReadBundleJSON(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%s: unsupported extension (want .xml or .json)", path)
	}
}

// readBundleSniffed picks the decoder from the first non-space byte.
func readBundleSniffed(r io.Reader) (*tree.Bundle, error) {
	br := bufio.NewReader(r)
	for {
		b, err := br.Peek(1)
		if err != nil {
			return nil, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return nil, err
			}
			continue
		case '<':
			return tree.ReadBundleXML(br)
		default:
			return tree.ReadBundleJSON(br)
		}
	}
}

// meltTable parses "table:prefix" and melts the named table in place.
func meltTable(tables map[string]*table.Table, d *design.Design, spec string) (string, *table.Table, []ft.Issue, error) {
	name, prefix, ok := strings.Cut(spec, ":")
	if !ok || name == "" || prefix == "" {
		return "", nil, nil, fmt.Errorf("-melt wants table:prefix, got %q", spec)
	}

	tbl, exists := tables[name]
	if !exists {
		return "", nil, nil, fmt.Errorf("-melt: design has no table %q", name)
	}

	cols, err := reshape.ColumnsByPrefix(tbl, prefix)
	if err != nil {
		return "", nil, nil, err
	}

	style := design.DefaultStyle()
	if desc := d.Get(name); desc != nil {
		style = desc.Style()
	}

	melted, issues, err := reshape.Melt(tbl, cols, style)
	if err != nil {
		return "", nil, nil, err
	}
	return name, melted, issues, nil
}

func writeTable(config *Config, name string, tbl *table.Table) error {
	ext := string(config.Output)
	path := filepath.Join(config.OutputDir, name+"."+ext)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	switch config.Output {
	case OutputJSON:
		err = writeJSON(f, tbl)
	default:
		err = tbl.WriteCSV(f)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if !config.Quiet {
		fmt.Fprintf(os.Stderr, "  %s: %d row(s), %d column(s)\n", path, tbl.NumRows(), tbl.NumCols())
	}
	return nil
}

// writeJSON emits the table as an array of column-keyed row objects.
func writeJSON(w io.Writer, tbl *table.Table) error {
	cols := tbl.Columns()
	rows := make([]map[string]string, 0, tbl.NumRows())
	for i := 0; i < tbl.NumRows(); i++ {
		row := make(map[string]string, len(cols))
		for _, c := range cols {
			v, _ := tbl.Cell(i, c)
			row[c] = v
		}
		rows = append(rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
