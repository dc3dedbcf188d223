// Command requake-scan-catalog scans an event catalog for spatially
// eligible pairs, cross-correlates each pair's waveforms on the
// configured trace ids, and streams the result to a pair-stream CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/requake-go/requake/internal/archive"
	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/config"
	"github.com/requake-go/requake/internal/fetch"
	"github.com/requake-go/requake/internal/monitoring"
	"github.com/requake-go/requake/internal/pairs"
	"github.com/requake-go/requake/internal/waveform"
)

func main() {
	var (
		configFile  string
		catalogIn   string
		pairsOut    string
		archivePath string
		stationCSV  string
	)
	flag.StringVar(&configFile, "config", "", "path to YAML config file (optional)")
	flag.StringVar(&catalogIn, "catalog", "", "input FDSN text catalog (required)")
	flag.StringVar(&pairsOut, "out", "pairs.csv", "output pair-stream CSV")
	flag.StringVar(&archivePath, "archive", "", "sqlite waveform archive to read from (required)")
	flag.StringVar(&stationCSV, "stations", "", "station metadata CSV, used when the archive has no coordinates of its own")
	flag.Parse()

	if catalogIn == "" || archivePath == "" {
		log.Fatal("requake-scan-catalog: -catalog and -archive are required")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("requake-scan-catalog: loading config: %v", err)
	}

	var cat catalog.Catalog
	if err := cat.Read(catalogIn); err != nil {
		log.Fatalf("requake-scan-catalog: reading %s: %v", catalogIn, err)
	}

	start := time.Now()
	visited, err := run(context.Background(), *cfg, cat, pairsOut, archivePath, stationCSV)
	if err != nil {
		log.Fatalf("requake-scan-catalog: %v", err)
	}
	log.Printf("requake-scan-catalog: visited %d pairs in %s, wrote results to %s", visited, time.Since(start), pairsOut)
}

// run opens archivePath, scans cat for spatially eligible pairs per
// cfg's cross-correlation settings, and writes pairsOut, returning the
// number of pairs visited.
func run(ctx context.Context, cfg config.Config, cat catalog.Catalog, pairsOut, archivePath, stationCSV string) (int, error) {
	arc, err := archive.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}
	defer arc.Close()

	var provider waveform.Provider = arc
	if stationCSV != "" {
		coords, err := waveform.NewCSVCoordsReader(stationCSV)
		if err != nil {
			return 0, fmt.Errorf("reading station metadata: %w", err)
		}
		provider = waveform.Composed{CoordsProvider: coords, WaveformProvider: arc}
	}

	w, err := pairs.NewWriter(pairsOut)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", pairsOut, err)
	}
	defer w.Close()

	scanner := &pairs.Scanner{
		Provider: provider,
		Config: pairs.Config{
			TraceIDs:      cfg.CatalogTraceID,
			Window:        fetch.Window{PreP: cfg.CCPreP, Length: cfg.CCTraceLength},
			SearchRangeKM: cfg.CatalogSearchRange,
			MaxShiftSec:   cfg.CCMaxShift.Seconds(),
			FreqMin:       cfg.CCFreqMin,
			FreqMax:       cfg.CCFreqMax,
			FilterOrder:   cfg.CCFilterOrder,
			AllowNegative: cfg.CCAllowNegative,
			Workers:       cfg.Workers,
		},
		Logf: monitoring.Logf,
	}

	return scanner.ScanCatalog(ctx, cat, w)
}
