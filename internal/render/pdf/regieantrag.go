package pdf

import (
	"fmt"

	"baureport/internal/model"
	"baureport/internal/render"
)

// regieantrag lays out the labor request: the planned counterpart of the
// Regiebericht, before any work happened.
func (g *Generator) regieantrag(d *doc, rec *model.ReportRecord, req *model.CreateReportRequest) error {
	d.title("Regieantrag", rec)

	d.kv("Kunde", req.Kunde)
	d.kv("Kürzel", req.Kuerzel)
	d.kv("Geplantes Datum", render.GermanDate(req.Arbeitsdatum))

	if req.Arbeitszeit != "" {
		d.kv("Geplante Arbeitszeit", req.Arbeitszeit)
		dur, err := render.SpanDuration(req.Arbeitszeit)
		if err != nil {
			return fmt.Errorf("arbeitszeit: %w", err)
		}
		d.kv("Geplante Dauer", fmt.Sprintf("%s Std.", dur))
	}

	d.employeeTable(req.Mitarbeiter)
	d.listBlock("Beantragte Leistungen", req.RegieTextData)
	d.notes(req.ZusatzInformationen)
	return nil
}
