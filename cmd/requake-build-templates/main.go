// Command requake-build-templates builds one stacked template trace
// per selected family: fetch every member's waveform, cross-correlate
// and align them, stack, and write the result as a SAC file under the
// configured template directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/requake-go/requake/internal/archive"
	"github.com/requake-go/requake/internal/config"
	"github.com/requake-go/requake/internal/families"
	"github.com/requake-go/requake/internal/fetch"
	"github.com/requake-go/requake/internal/templates"
	"github.com/requake-go/requake/internal/waveform"
)

func main() {
	var (
		configFile    string
		familiesIn    string
		archivePath   string
		stationCSV    string
		familyNumbers string
	)
	flag.StringVar(&configFile, "config", "", "path to YAML config file (optional)")
	flag.StringVar(&familiesIn, "families", "", "input family CSV (required)")
	flag.StringVar(&archivePath, "archive", "", "sqlite waveform archive to read members from (required)")
	flag.StringVar(&stationCSV, "stations", "", "station metadata CSV, used when the archive has no coordinates of its own")
	flag.StringVar(&familyNumbers, "families-select", "all", "family numbers to build templates for: single, comma list, range, or \"all\"")
	flag.Parse()

	if familiesIn == "" || archivePath == "" {
		log.Fatal("requake-build-templates: -families and -archive are required")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("requake-build-templates: loading config: %v", err)
	}

	fams, err := families.ReadCSV(familiesIn, cfg.MagToSlipModel, cfg.SlipParams)
	if err != nil {
		log.Fatalf("requake-build-templates: reading %s: %v", familiesIn, err)
	}

	built, selected, err := run(context.Background(), *cfg, fams, familyNumbers, archivePath, stationCSV)
	if err != nil {
		log.Fatalf("requake-build-templates: %v", err)
	}
	fmt.Printf("requake-build-templates: built %d of %d selected families\n", built, selected)
}

// run selects the families named by familyNumbers (or all of fams),
// builds and writes a stacked SAC template for each, and returns the
// number successfully built and the number selected. A family that
// fails to build is logged and skipped rather than aborting the run.
func run(ctx context.Context, cfg config.Config, fams []*families.Family, familyNumbers, archivePath, stationCSV string) (built, selected int, err error) {
	numbers, err := families.ParseNumberList(mapAllToEmpty(familyNumbers))
	if err != nil {
		return 0, 0, fmt.Errorf("parsing -families-select: %w", err)
	}
	selectedFams, err := families.Select(fams, numbers, families.SelectionFilter{})
	if err != nil {
		return 0, 0, fmt.Errorf("selecting families: %w", err)
	}

	arc, err := archive.Open(archivePath)
	if err != nil {
		return 0, 0, fmt.Errorf("opening archive: %w", err)
	}
	defer arc.Close()

	var provider waveform.Provider = arc
	if stationCSV != "" {
		coords, err := waveform.NewCSVCoordsReader(stationCSV)
		if err != nil {
			return 0, 0, fmt.Errorf("reading station metadata: %w", err)
		}
		provider = waveform.Composed{CoordsProvider: coords, WaveformProvider: arc}
	}

	opts := templates.Options{
		Window:               fetch.Window{PreP: cfg.CCPreP, Length: cfg.CCTraceLength},
		MaxShiftSec:          cfg.CCMaxShift.Seconds(),
		FreqMin:              cfg.CCFreqMin,
		FreqMax:              cfg.CCFreqMax,
		FilterOrder:          cfg.CCFilterOrder,
		AllowNegative:        cfg.CCAllowNegative,
		NormalizeBeforeStack: cfg.NormalizeTracesBeforeAveraging,
		TemplateDir:          cfg.TemplateDir,
	}

	for _, fam := range selectedFams {
		tpl, err := templates.Build(ctx, provider, fam, opts)
		if err != nil {
			log.Printf("requake-build-templates: family %d: %v", fam.Number, err)
			continue
		}
		coords, err := provider.Coords(ctx, tpl.Stack.Trace.ID, tpl.Stack.Trace.StartTime)
		if err != nil {
			log.Printf("requake-build-templates: family %d: resolving station coords: %v", fam.Number, err)
			continue
		}
		if err := templates.WriteSAC(tpl, opts, coords); err != nil {
			log.Printf("requake-build-templates: family %d: writing template: %v", fam.Number, err)
			continue
		}
		built++
	}
	return built, len(selectedFams), nil
}

func mapAllToEmpty(s string) string {
	if s == "all" {
		return ""
	}
	return s
}
