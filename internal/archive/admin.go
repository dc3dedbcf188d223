package archive

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"
)

// AttachAdminRoutes mounts a tailSQL live-query surface and an
// on-demand backup endpoint under mux's /debug tree, for an
// operator-facing requake-admin process. label identifies this
// archive's sqlite source in the tailSQL UI when more than one archive
// is attached to the same admin server.
func (a *ArchiveProvider) AttachAdminRoutes(mux *http.ServeMux, label, dbPath string) error {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{RoutePrefix: "/debug/tailsql/"})
	if err != nil {
		return fmt.Errorf("archive: creating tailsql server: %w", err)
	}
	tsql.SetDB(fmt.Sprintf("sqlite://%s", dbPath), a.db, &tailsql.DBOptions{Label: label})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the archive now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backupPath := fmt.Sprintf("%s.backup-%d", dbPath, time.Now().Unix())
		if _, err := a.db.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("backup failed: %v", err), http.StatusInternalServerError)
			return
		}
		defer func() {
			if err := os.Remove(backupPath); err != nil {
				log.Printf("archive: removing temporary backup %s: %v", backupPath, err)
			}
		}()

		f, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("opening backup: %v", err), http.StatusInternalServerError)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=archive-%d.sqlite", time.Now().Unix()))
		w.Header().Set("Content-Type", "application/octet-stream")
		http.ServeContent(w, r, "", time.Now(), f)
	}))

	return nil
}
