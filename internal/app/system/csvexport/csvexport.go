// internal/app/system/csvexport/csvexport.go

// Package csvexport renders registration data as CSV downloads.
package csvexport

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/projecthub/internal/domain/models"
)

// WriteRegistrations writes a form's committed registrations as CSV.
// One row per group; team members are joined with "; " inside a single
// cell so the column count stays fixed.
func WriteRegistrations(w io.Writer, form models.Form, groups []models.GroupRegistration) error {
	titles := make(map[string]string, len(form.Projects))
	for _, p := range form.Projects {
		titles[p.ProjectID] = p.Title
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"Receipt ID", "Project ID", "Project Title",
		"Team Leader", "Team Members", "Registered At",
	}); err != nil {
		return err
	}

	for _, g := range groups {
		row := []string{
			g.ReceiptID,
			g.ProjectID,
			titles[g.ProjectID],
			g.TeamLeader,
			strings.Join(g.TeamMembers, "; "),
			g.RegisteredAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
