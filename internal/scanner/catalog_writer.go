package scanner

import (
	"fmt"
	"os"
	"path/filepath"
)

// catalogWriter appends detection lines to one template's detection
// catalog file, matching the
// `template_catalogs/catalogNN.<trace_id>.txt` naming convention. One
// writer is opened per template before the chunk loop begins and kept
// open across every chunk, so no internal locking is needed: the scan
// visits templates one at a time, in order, for each chunk.
type catalogWriter struct {
	f *os.File
}

func newCatalogWriter(outDir string, tpl Template) (*catalogWriter, error) {
	dir := filepath.Join(outDir, "template_catalogs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("scanner: creating %s: %w", dir, err)
	}
	filename := filepath.Join(dir, fmt.Sprintf("catalog%02d.%s.txt", tpl.FamilyNumber, tpl.TraceID))
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("scanner: creating %s: %w", filename, err)
	}
	return &catalogWriter{f: f}, nil
}

func (w *catalogWriter) writeDetection(line string) error {
	_, err := w.f.WriteString(line)
	if err != nil {
		return err
	}
	return w.f.Sync()
}

func (w *catalogWriter) Close() error {
	return w.f.Close()
}
