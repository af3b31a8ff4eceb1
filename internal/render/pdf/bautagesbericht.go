package pdf

import (
	"context"
	"fmt"

	"baureport/internal/model"
	"baureport/internal/render"
)

// bautagesbericht lays out the daily construction site report: site block,
// crew, work time with computed duration and the weather line.
func (g *Generator) bautagesbericht(ctx context.Context, d *doc, rec *model.ReportRecord, req *model.CreateReportRequest) error {
	d.title("Bautagesbericht", rec)

	d.kv("Kunde", req.Kunde)
	d.kv("Kürzel", req.Kuerzel)
	if req.Strasse != "" || req.Ort != "" {
		d.kv("Baustelle", fmt.Sprintf("%s, %s", req.Strasse, req.Ort))
	}
	d.kv("Datum", render.GermanDate(req.Arbeitsdatum))
	if year, week, err := render.YearWeek(req.Arbeitsdatum); err == nil {
		d.kv("Kalenderwoche", fmt.Sprintf("KW %d / %d", week, year))
	}

	if req.Arbeitszeit != "" {
		d.kv("Arbeitszeit", req.Arbeitszeit)
		dur, err := render.SpanDuration(req.Arbeitszeit)
		if err != nil {
			return fmt.Errorf("arbeitszeit: %w", err)
		}
		d.kv("Dauer", fmt.Sprintf("%s Std.", dur))
	}

	obs := g.weather.Observe(ctx, req.Arbeitsdatum)
	d.kv("Wetter", fmt.Sprintf("%.0f °C, %s", obs.TempC, obs.Condition))

	d.employeeTable(req.Mitarbeiter)
	d.listBlock("Material", req.Materials)
	d.listBlock("WZ", req.WzData)
	d.notes(req.ZusatzInformationen)
	return nil
}
