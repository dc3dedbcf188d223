// Command requake-admin serves a debug HTTP surface over one sqlite
// waveform archive: live SQL queries via tailSQL and an
// on-demand backup endpoint, for an operator inspecting ingested data
// without shelling into the host.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/requake-go/requake/internal/archive"
)

func main() {
	var (
		listen      string
		archivePath string
		label       string
	)
	flag.StringVar(&listen, "listen", "localhost:8090", "address to serve the debug UI on")
	flag.StringVar(&archivePath, "archive", "", "sqlite waveform archive to expose (required)")
	flag.StringVar(&label, "label", "requake archive", "label shown for this archive in the tailSQL UI")
	flag.Parse()

	if archivePath == "" {
		log.Fatal("requake-admin: -archive is required")
	}

	mux, arc, err := buildMux(archivePath, label)
	if err != nil {
		log.Fatalf("requake-admin: %v", err)
	}
	defer arc.Close()

	log.Printf("requake-admin: serving debug UI for %s on %s (see /debug/)", archivePath, listen)
	if err := http.ListenAndServe(listen, mux); err != nil {
		log.Fatalf("requake-admin: %v", err)
	}
}

// buildMux opens archivePath and returns a mux with its admin routes
// attached under label. The caller is responsible for closing the
// returned archive once done with the mux.
func buildMux(archivePath, label string) (*http.ServeMux, *archive.ArchiveProvider, error) {
	arc, err := archive.Open(archivePath)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	if err := arc.AttachAdminRoutes(mux, label, archivePath); err != nil {
		arc.Close()
		return nil, nil, err
	}
	return mux, arc, nil
}
