package pdf

import (
	"fmt"

	"baureport/internal/model"
	"baureport/internal/render"
)

// regiebericht lays out the labor report. It may span several days: the
// arbeitsdatum then carries a "YYYY-MM-DD - YYYY-MM-DD" range and the total
// duration is the single-day duration times the inclusive day count.
func (g *Generator) regiebericht(d *doc, rec *model.ReportRecord, req *model.CreateReportRequest) error {
	d.title("Regiebericht", rec)

	d.kv("Kunde", req.Kunde)
	d.kv("Kürzel", req.Kuerzel)
	d.kv("Zeitraum", req.Arbeitsdatum)

	if req.Arbeitszeit != "" {
		d.kv("Arbeitszeit", req.Arbeitszeit)
		daily, err := render.SpanDuration(req.Arbeitszeit)
		if err != nil {
			return fmt.Errorf("arbeitszeit: %w", err)
		}
		total, err := render.RangeDuration(daily, req.Arbeitsdatum)
		if err != nil {
			return fmt.Errorf("arbeitsdatum: %w", err)
		}
		d.kv("Gesamtdauer", fmt.Sprintf("%s Std.", total))
	}

	// Individual day/time overrides replace the uniform schedule where given.
	if len(req.IndividualDates) > 0 {
		lines := make([]string, 0, len(req.IndividualDates))
		for i, date := range req.IndividualDates {
			span := req.Arbeitszeit
			if i < len(req.IndividualTimes) && req.IndividualTimes[i] != "" {
				span = req.IndividualTimes[i]
			}
			lines = append(lines, fmt.Sprintf("%s  %s", render.GermanDate(date), span))
		}
		d.listBlock("Einzeltage", lines)
	}

	d.employeeTable(req.Mitarbeiter)
	d.listBlock("Regieleistungen", req.RegieTextData)
	d.listBlock("Material", req.Materials)
	d.notes(req.ZusatzInformationen)
	return nil
}
