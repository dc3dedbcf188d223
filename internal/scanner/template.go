// Package scanner implements the template scanner: chunked
// continuous-waveform cross-correlation against one or more stacked
// templates, with trigger detection and per-template detection catalogs.
package scanner

import (
	"fmt"
	"path/filepath"

	"github.com/requake-go/requake/internal/families"
	"github.com/requake-go/requake/internal/sacio"
)

// Template is a stacked family template loaded from a SAC file, per
// `_read_templates`.
type Template struct {
	FamilyNumber int
	TraceID      string
	File         sacio.File
}

// Dt returns the template's sampling interval.
func (t Template) Dt() float64 { return t.File.Header.Delta }

// Data returns the template's sample data.
func (t Template) Data() []float64 { return t.File.Data }

// PArrivalOffsetSec returns the P-arrival time offset from the
// template's reference time, per `template.stats.sac.a`.
func (t Template) PArrivalOffsetSec() float64 { return t.File.Header.A }

// LoadFamilyTemplates reads the on-disk template file for each selected
// family, per `_read_templates`. Families whose template file is
// missing are silently skipped, matching the original's
// `except (FileNotFoundError, TypeError)` handling.
func LoadFamilyTemplates(templateDir string, fams []*families.Family) []Template {
	var out []Template
	for _, fam := range fams {
		if len(fam.Events) == 0 {
			continue
		}
		filename := filepath.Join(templateDir,
			fmt.Sprintf("template%02d.%s.sac", fam.Number, fam.TraceID))
		f, err := sacio.Read(filename)
		if err != nil {
			continue
		}
		out = append(out, Template{FamilyNumber: fam.Number, TraceID: fam.TraceID, File: f})
	}
	return out
}

// LoadTemplateFile reads a single user-supplied template file, assigning
// it the next family number above every existing family, per
// `_read_template_from_file`.
func LoadTemplateFile(path string, fams []*families.Family) (Template, error) {
	f, err := sacio.Read(path)
	if err != nil {
		return Template{}, fmt.Errorf("scanner: reading template file %s: %w", path, err)
	}
	number := 0
	for _, fam := range fams {
		if fam.Number >= number {
			number = fam.Number + 1
		}
	}
	return Template{FamilyNumber: number, File: f}, nil
}
