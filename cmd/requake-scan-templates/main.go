// Command requake-scan-templates scans continuous waveform data for
// occurrences of one or more stacked family templates, writing one
// detection catalog per template.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/requake-go/requake/internal/archive"
	"github.com/requake-go/requake/internal/config"
	"github.com/requake-go/requake/internal/families"
	"github.com/requake-go/requake/internal/monitoring"
	"github.com/requake-go/requake/internal/scanner"
	"github.com/requake-go/requake/internal/waveform"
)

func main() {
	var (
		configFile   string
		familiesIn   string
		archivePath  string
		stationCSV   string
		templateFile string
	)
	flag.StringVar(&configFile, "config", "", "path to YAML config file (optional)")
	flag.StringVar(&familiesIn, "families", "", "family CSV to load templates for (required unless -template is set)")
	flag.StringVar(&archivePath, "archive", "", "sqlite waveform archive to scan (required)")
	flag.StringVar(&stationCSV, "stations", "", "station metadata CSV, used when the archive has no coordinates of its own")
	flag.StringVar(&templateFile, "template", "", "scan a single user-supplied template SAC file instead of every family's")
	flag.Parse()

	if archivePath == "" || (familiesIn == "" && templateFile == "") {
		log.Fatal("requake-scan-templates: -archive is required, along with -families or -template")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("requake-scan-templates: loading config: %v", err)
	}

	var fams []*families.Family
	if familiesIn != "" {
		fams, err = families.ReadCSV(familiesIn, cfg.MagToSlipModel, cfg.SlipParams)
		if err != nil {
			log.Fatalf("requake-scan-templates: reading %s: %v", familiesIn, err)
		}
	}

	detections, numTemplates, err := run(context.Background(), *cfg, fams, archivePath, stationCSV, templateFile)
	if err != nil {
		log.Fatalf("requake-scan-templates: %v", err)
	}
	fmt.Printf("requake-scan-templates: %d detections across %d templates, written under %s\n",
		detections, numTemplates, cfg.OutDir)
}

// run loads the templates for fams (or the single templateFile, if
// given), scans archivePath over cfg's configured time range, and
// returns the number of detections written and the number of templates
// scanned.
func run(ctx context.Context, cfg config.Config, fams []*families.Family, archivePath, stationCSV, templateFile string) (detections, numTemplates int, err error) {
	var templates []scanner.Template
	if templateFile != "" {
		tpl, err := scanner.LoadTemplateFile(templateFile, fams)
		if err != nil {
			return 0, 0, fmt.Errorf("loading %s: %w", templateFile, err)
		}
		templates = []scanner.Template{tpl}
	} else {
		templates = scanner.LoadFamilyTemplates(cfg.TemplateDir, fams)
	}
	if len(templates) == 0 {
		return 0, 0, fmt.Errorf("no templates to scan")
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

	s := &scanner.Scanner{
		Provider: provider,
		Config: scanner.Config{
			StartTime:     cfg.TemplateStartTime,
			EndTime:       cfg.TemplateEndTime,
			TimeChunk:     cfg.TimeChunk,
			ChunkOverlap:  cfg.TimeChunkOverlap,
			PreP:          cfg.CCPreP,
			TraceLength:   cfg.CCTraceLength,
			FreqMin:       cfg.CCFreqMin,
			FreqMax:       cfg.CCFreqMax,
			FilterOrder:   cfg.CCFilterOrder,
			AllowNegative: cfg.CCAllowNegative,
			MinCCMadRatio: cfg.MinCCMadRatio,
			OutDir:        cfg.OutDir,
		},
		Logf: monitoring.Logf,
	}

	n, err := s.Scan(ctx, templates)
	if err != nil {
		return 0, 0, fmt.Errorf("scanning: %w", err)
	}
	return n, len(templates), nil
}
