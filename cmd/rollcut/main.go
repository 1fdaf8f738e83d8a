// RollCut — 1D Cutting Stock Optimizer
//
// A command-line tool for computing minimum-cost cutting plans for
// one-dimensional stock (rolls, bars, beams, extrusions).
//
// Build:
//
//	go build -o rollcut ./cmd/rollcut
//
// Usage:
//
//	rollcut -request job.json -out result.json -pdf plan.pdf
//	rollcut -import demand.csv -length 6000 -algorithm column_generation
//	rollcut -request job.json -range 5500:6500:100
//	rollcut -template "door frames" -preset "Steel bar 6000mm"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/piwi3910/RollCut/internal/engine"
	"github.com/piwi3910/RollCut/internal/export"
	"github.com/piwi3910/RollCut/internal/importer"
	"github.com/piwi3910/RollCut/internal/model"
	"github.com/piwi3910/RollCut/internal/project"
)

// options collects the parsed command-line flags.
type options struct {
	requestPath  string
	importPath   string
	length       int
	rangeSpec    string
	algorithm    string
	goal         string
	unitCost     float64
	template     string
	saveTemplate string
	preset       string
	outPath      string
	csvPath      string
	pdfPath      string
	xlsxPath     string
	labelsPath   string
	dxfPath      string
	jobPath      string
	backupPath   string
	restorePath  string
	compare      bool
	configPath   string
}

func main() {
	var opts options
	flag.StringVar(&opts.requestPath, "request", "", "JSON request file ('-' for stdin)")
	flag.StringVar(&opts.importPath, "import", "", "CSV or XLSX demand file (alternative to -request)")
	flag.IntVar(&opts.length, "length", 0, "master roll length (with -import, or to override the request)")
	flag.StringVar(&opts.rangeSpec, "range", "", "sweep roll lengths: min:max:step")
	flag.StringVar(&opts.algorithm, "algorithm", "", "column_generation | first_fit_decreasing | best_fit_decreasing | hybrid")
	flag.StringVar(&opts.goal, "goal", "", "minimize_waste | minimize_rolls | minimize_cost | balance_all")
	flag.Float64Var(&opts.unitCost, "unit-cost", 0, "cost per master roll (default 1)")
	flag.StringVar(&opts.template, "template", "", "load demand and solver choices from a saved template")
	flag.StringVar(&opts.saveTemplate, "save-template", "", "save this run's demand and solver choices as a template")
	flag.StringVar(&opts.preset, "preset", "", "take roll length and cost from a saved roll preset")
	flag.StringVar(&opts.outPath, "out", "", "write the result as JSON to this path")
	flag.StringVar(&opts.csvPath, "csv", "", "export patterns and instructions as CSV")
	flag.StringVar(&opts.pdfPath, "pdf", "", "export the cutting plan as PDF")
	flag.StringVar(&opts.xlsxPath, "xlsx", "", "export the result as an XLSX workbook")
	flag.StringVar(&opts.labelsPath, "labels", "", "export QR roll labels as PDF")
	flag.StringVar(&opts.dxfPath, "dxf", "", "export the roll layouts as DXF")
	flag.StringVar(&opts.jobPath, "save-job", "", "save request and result as a job file")
	flag.StringVar(&opts.backupPath, "backup", "", "export config, inventory, and templates to a backup file and exit")
	flag.StringVar(&opts.restorePath, "restore", "", "restore config, inventory, and templates from a backup file and exit")
	flag.BoolVar(&opts.compare, "compare", false, "run all four algorithms and print a comparison table")
	flag.StringVar(&opts.configPath, "config", project.DefaultConfigPath(), "application config file")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "rollcut: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	config, err := project.LoadAppConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if opts.backupPath != "" {
		return backupAllData(opts.backupPath, config)
	}
	if opts.restorePath != "" {
		return restoreAllData(opts.restorePath, opts.configPath)
	}

	req, err := buildRequest(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	solver := engine.New(config.Solver)

	if opts.saveTemplate != "" {
		if err := saveTemplate(opts.saveTemplate, req); err != nil {
			return err
		}
	}
	if opts.compare {
		return printComparison(ctx, solver, req)
	}

	job := project.NewJob("rollcut run")
	var result model.Result

	if opts.rangeSpec != "" {
		rangeReq, err := buildRangeRequest(req, opts.rangeSpec)
		if err != nil {
			return err
		}
		sweep, err := solver.SolveRange(ctx, rangeReq, func(ev model.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "solving %d/%d (L=%dmm)\n", ev.Completed+1, ev.Total, ev.CurrentConfiguration)
		})
		if err != nil {
			return err
		}
		printSweep(sweep)
		if opts.outPath != "" {
			if err := export.ExportRangeJSON(opts.outPath, sweep); err != nil {
				return err
			}
		}
		if sweep.BestConfiguration == nil || sweep.BestConfiguration.Optimization == nil {
			return nil
		}
		result = *sweep.BestConfiguration.Optimization
		req.MasterRollLength = sweep.BestConfiguration.MasterRollLength
		job.Range = &rangeReq
		job.Sweep = &sweep
	} else {
		result, err = solver.Solve(ctx, req)
		if err != nil {
			return err
		}
		printResult(result, req.MasterRollLength)
		if opts.outPath != "" {
			if err := export.ExportJSON(opts.outPath, result); err != nil {
				return err
			}
		}
		job.Request = &req
		job.Result = &result
	}

	exports := []struct {
		path string
		fn   func() error
	}{
		{opts.csvPath, func() error { return export.ExportCSV(opts.csvPath, result) }},
		{opts.pdfPath, func() error { return export.ExportPDF(opts.pdfPath, result, req.MasterRollLength) }},
		{opts.xlsxPath, func() error { return export.ExportExcel(opts.xlsxPath, result, req.MasterRollLength) }},
		{opts.labelsPath, func() error { return export.ExportLabels(opts.labelsPath, result, req.MasterRollLength) }},
		{opts.dxfPath, func() error { return export.ExportDXF(opts.dxfPath, result, req.MasterRollLength) }},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.fn(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", e.path)
	}

	if opts.jobPath != "" {
		if err := project.SaveJob(opts.jobPath, job); err != nil {
			return fmt.Errorf("saving job: %w", err)
		}
		project.AddRecentJob(&config, opts.jobPath)
		if err := project.SaveAppConfig(opts.configPath, config); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
	}
	return nil
}

// buildRequest assembles the solve request from a request file, an
// imported demand file, or a saved template, plus flags. Flags override
// file values.
func buildRequest(opts options) (model.Request, error) {
	var req model.Request

	switch {
	case opts.requestPath != "":
		var data []byte
		var err error
		if opts.requestPath == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(opts.requestPath)
		}
		if err != nil {
			return model.Request{}, fmt.Errorf("reading request: %w", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return model.Request{}, fmt.Errorf("parsing request: %w", err)
		}

	case opts.importPath != "":
		imported := importer.Import(opts.importPath)
		for _, w := range imported.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		if len(imported.Errors) > 0 {
			for _, e := range imported.Errors {
				fmt.Fprintf(os.Stderr, "error: %s\n", e)
			}
			return model.Request{}, fmt.Errorf("demand import failed")
		}
		req.Demand = imported.Demand

	case opts.template != "":
		store, err := project.LoadDefaultTemplates()
		if err != nil {
			return model.Request{}, fmt.Errorf("loading templates: %w", err)
		}
		tmpl := store.FindByName(opts.template)
		if tmpl == nil {
			return model.Request{}, fmt.Errorf("unknown template %q (saved: %v)", opts.template, store.Names())
		}
		req = tmpl.ToRequest(0)

	default:
		return model.Request{}, fmt.Errorf("one of -request, -import, or -template is required")
	}

	if opts.preset != "" {
		inv, _, err := project.LoadOrCreateInventory()
		if err != nil {
			return model.Request{}, fmt.Errorf("loading inventory: %w", err)
		}
		rp := inv.FindRollByName(opts.preset)
		if rp == nil {
			return model.Request{}, fmt.Errorf("unknown roll preset %q (saved: %v)", opts.preset, inv.RollNames())
		}
		req = rp.Apply(req)
	}

	if opts.length > 0 {
		req.MasterRollLength = opts.length
	}
	if opts.algorithm != "" {
		req.Algorithm = model.Algorithm(opts.algorithm)
	}
	if req.Algorithm == "" {
		req.Algorithm = model.AlgorithmColumnGeneration
	}
	if opts.goal != "" {
		req.Goal = model.Goal(opts.goal)
	}
	if req.Goal == "" {
		req.Goal = model.GoalMinimizeWaste
	}
	if opts.unitCost > 0 {
		req.UnitCost = opts.unitCost
	}
	return req, nil
}

// saveTemplate stores the request's demand and solver choices in the
// default template store under the given name, replacing any template
// that already uses it.
func saveTemplate(name string, req model.Request) error {
	store, err := project.LoadDefaultTemplates()
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	if existing := store.FindByName(name); existing != nil {
		store.Remove(existing.ID)
	}
	store.Add(model.NewDemandTemplate(name, "", req.Demand, req.Algorithm, req.Goal, req.UnitCost))
	if err := project.SaveDefaultTemplates(store); err != nil {
		return fmt.Errorf("saving templates: %w", err)
	}
	fmt.Fprintf(os.Stderr, "saved template %q\n", name)
	return nil
}

// backupAllData writes config, roll inventory, and templates to one file.
func backupAllData(path string, config model.AppConfig) error {
	inv, _, err := project.LoadOrCreateInventory()
	if err != nil {
		return fmt.Errorf("loading inventory: %w", err)
	}
	templates, err := project.LoadDefaultTemplates()
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	if err := project.ExportAllData(path, config, inv, templates); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote backup %s\n", path)
	return nil
}

// restoreAllData applies a backup file over the saved application data.
func restoreAllData(path, configPath string) error {
	backup, err := project.ImportAllData(path)
	if err != nil {
		return err
	}
	if err := project.SaveAppConfig(configPath, backup.Config); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	if err := project.SaveInventory(project.DefaultInventoryPath(), backup.Inventory); err != nil {
		return fmt.Errorf("saving inventory: %w", err)
	}
	if err := project.SaveDefaultTemplates(backup.Templates); err != nil {
		return fmt.Errorf("saving templates: %w", err)
	}
	fmt.Fprintf(os.Stderr, "restored backup from %s\n", path)
	return nil
}

func buildRangeRequest(req model.Request, spec string) (model.RangeRequest, error) {
	var min, max, step int
	if _, err := fmt.Sscanf(spec, "%d:%d:%d", &min, &max, &step); err != nil {
		return model.RangeRequest{}, fmt.Errorf("invalid -range %q, expected min:max:step", spec)
	}
	return model.RangeRequest{
		Range:     model.LengthRange{Min: min, Max: max, Step: step},
		UnitCost:  req.UnitCost,
		Algorithm: req.Algorithm,
		Goal:      req.Goal,
		Demand:    req.Demand,
	}, nil
}

func printResult(r model.Result, rollLength int) {
	fmt.Printf("Rolls: %d of %dmm  Efficiency: %.2f%%  Waste: %dmm  Convergence: %s\n",
		r.TotalRolls, rollLength, r.Efficiency, r.TotalWaste, r.Performance.Convergence)
	for _, ins := range r.CuttingInstructions {
		fmt.Printf("  %d. %s  %s\n", ins.Step, ins.Description, ins.Pattern)
	}
}

func printSweep(s model.RangeResult) {
	fmt.Printf("Feasible configurations: %d  Efficiency best/mean/worst: %.2f/%.2f/%.2f\n",
		s.Summary.TotalConfigurations, s.Summary.BestEfficiency, s.Summary.MeanEfficiency, s.Summary.WorstEfficiency)
	if s.BestConfiguration != nil && s.BestConfiguration.Optimization != nil {
		fmt.Printf("Best length: %dmm (%d rolls, %.2f%% efficiency)\n",
			s.BestConfiguration.MasterRollLength,
			s.BestConfiguration.Optimization.TotalRolls,
			s.BestConfiguration.Optimization.Efficiency)
	}
}

func printComparison(ctx context.Context, solver *engine.Solver, req model.Request) error {
	fmt.Printf("%-22s %8s %10s %12s\n", "algorithm", "rolls", "waste", "efficiency")
	for _, c := range solver.CompareAlgorithms(ctx, req) {
		if c.Err != nil {
			fmt.Printf("%-22s failed: %v\n", c.Algorithm, c.Err)
			continue
		}
		fmt.Printf("%-22s %8d %8dmm %11.2f%%\n", c.Algorithm, c.TotalRolls, c.TotalWaste, c.Efficiency)
	}
	return nil
}
