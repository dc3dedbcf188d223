// Command requake-read-catalog reads an input earthquake catalog (FDSN
// text or CSV with loosely-named columns), deduplicates and sorts it,
// optionally fixes events missing a location by averaging the
// configured trace ids' station coordinates, and writes the result
// back out as FDSN text.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/requake-go/requake/internal/catalog"
	"github.com/requake-go/requake/internal/config"
	"github.com/requake-go/requake/internal/waveform"
)

func main() {
	var (
		configFile string
		inFile     string
		outFile    string
		asCSV      bool
		stationCSV string
	)
	flag.StringVar(&configFile, "config", "", "path to YAML config file (optional)")
	flag.StringVar(&inFile, "in", "", "input catalog file (required)")
	flag.StringVar(&outFile, "out", "catalog.txt", "output FDSN text catalog file")
	flag.BoolVar(&asCSV, "csv", false, "read -in as CSV instead of FDSN text")
	flag.StringVar(&stationCSV, "stations", "", "station metadata CSV, used to fix events missing a location")
	flag.Parse()

	if inFile == "" {
		log.Fatal("requake-read-catalog: -in is required")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("requake-read-catalog: loading config: %v", err)
	}

	n, err := run(*cfg, inFile, outFile, asCSV, stationCSV)
	if err != nil {
		log.Fatalf("requake-read-catalog: %v", err)
	}
	fmt.Printf("requake-read-catalog: wrote %d events to %s\n", n, outFile)
}

// run reads inFile, optionally fixes events missing a location, sorts,
// and writes outFile, returning the number of events written.
func run(cfg config.Config, inFile, outFile string, asCSV bool, stationCSV string) (int, error) {
	var cat catalog.Catalog
	var err error
	if asCSV {
		cat, err = catalog.ReadCSV(inFile)
	} else {
		err = cat.Read(inFile)
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", inFile, err)
	}

	if stationCSV != "" && len(cat) > 0 {
		if err := fixNonLocatable(cat, cfg, stationCSV); err != nil {
			return 0, err
		}
	}

	cat.Sort()
	if err := cat.Write(outFile); err != nil {
		return 0, fmt.Errorf("writing %s: %w", outFile, err)
	}
	return len(cat), nil
}

// fixNonLocatable fills in missing event locations from the average of
// the configured trace ids' station coordinates, as of the first
// event's origin time.
func fixNonLocatable(cat catalog.Catalog, cfg config.Config, stationCSV string) error {
	reader, err := waveform.NewCSVCoordsReader(stationCSV)
	if err != nil {
		return fmt.Errorf("reading station metadata: %w", err)
	}
	traceCoords := make(map[string][2]float64, len(cfg.CatalogTraceID))
	for _, traceID := range cfg.CatalogTraceID {
		id, err := waveform.ParseTraceID(traceID)
		if err != nil {
			log.Printf("requake-read-catalog: skipping invalid trace id %q: %v", traceID, err)
			continue
		}
		coords, err := reader.Coords(context.Background(), id, cat[0].OrigTime)
		if err != nil {
			log.Printf("requake-read-catalog: no station coords for %s: %v", traceID, err)
			continue
		}
		traceCoords[traceID] = [2]float64{coords.Latitude, coords.Longitude}
	}
	cat.FixNonLocatable(traceCoords)
	return nil
}
