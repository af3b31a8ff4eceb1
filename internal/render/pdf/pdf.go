package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"baureport/internal/model"
	"baureport/internal/render"
	"baureport/internal/weather"
)

// Generator renders report PDFs into a local scratch directory. One instance
// handles all document types and is safe for concurrent use; every call
// builds its own gofpdf document.
type Generator struct {
	scratchDir string
	weather    weather.Source
	appHost    string
}

var _ render.Renderer = (*Generator)(nil)

// NewGenerator creates a PDF generator. weatherSrc feeds the weather line of
// the Bautagesbericht; appHost is embedded into the QR footer so a scan leads
// back to the report download.
func NewGenerator(scratchDir string, weatherSrc weather.Source, appHost string) *Generator {
	return &Generator{scratchDir: scratchDir, weather: weatherSrc, appHost: appHost}
}

// Generate dispatches on the record's document type and writes the finished
// PDF to the scratch directory.
func (g *Generator) Generate(ctx context.Context, rec *model.ReportRecord, req *model.CreateReportRequest) (render.RenderedFile, error) {
	doc := newDoc()

	var title string
	var err error
	switch rec.DocumentType {
	case model.TypeBautagesbericht:
		title = "Bautagesbericht"
		err = g.bautagesbericht(ctx, doc, rec, req)
	case model.TypeRegiebericht:
		title = "Regiebericht"
		err = g.regiebericht(doc, rec, req)
	case model.TypeRegieantrag:
		title = "Regieantrag"
		err = g.regieantrag(doc, rec, req)
	default:
		return render.RenderedFile{}, fmt.Errorf("no renderer for document type %q", rec.DocumentType)
	}
	if err != nil {
		return render.RenderedFile{}, err
	}

	g.qrFooter(doc, rec)

	name := fmt.Sprintf("%s_%s_Nr%d.pdf", title, rec.ClientCode, rec.ReportNumber)
	path := filepath.Join(g.scratchDir, name)
	if err := writeOut(doc.pdf, path); err != nil {
		return render.RenderedFile{}, err
	}
	return render.RenderedFile{Path: path, Name: name}, nil
}

// doc bundles the pdf handle with the cp1252 translator needed for umlauts
// in the core fonts.
type doc struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newDoc() *doc {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	return &doc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *doc) title(text string, rec *model.ReportRecord) {
	d.pdf.SetFont("Arial", "B", 16)
	d.pdf.CellFormat(0, 10, d.tr(text), "", 1, "L", false, 0, "")
	d.pdf.SetFont("Arial", "", 10)
	d.pdf.CellFormat(0, 6, d.tr(fmt.Sprintf("Bericht-Nr. %d", rec.ReportNumber)), "", 1, "L", false, 0, "")
	d.pdf.Ln(4)
}

// kv prints one labelled line of the site/client block.
func (d *doc) kv(label, value string) {
	d.pdf.SetFont("Arial", "B", 10)
	d.pdf.CellFormat(45, 6, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Arial", "", 10)
	d.pdf.CellFormat(0, 6, d.tr(value), "", 1, "L", false, 0, "")
}

// employeeTable prints the snapshot of assigned employees.
func (d *doc) employeeTable(employees []model.Employee) {
	if len(employees) == 0 {
		return
	}
	d.pdf.Ln(4)
	d.pdf.SetFont("Arial", "B", 10)
	d.pdf.SetFillColor(230, 230, 230)
	d.pdf.CellFormat(90, 7, d.tr("Mitarbeiter"), "1", 0, "L", true, 0, "")
	d.pdf.CellFormat(90, 7, d.tr("Qualifikation"), "1", 1, "L", true, 0, "")
	d.pdf.SetFont("Arial", "", 10)
	for _, e := range employees {
		d.pdf.CellFormat(90, 7, d.tr(e.Name), "1", 0, "L", false, 0, "")
		d.pdf.CellFormat(90, 7, d.tr(e.Qualifikation), "1", 1, "L", false, 0, "")
	}
	d.pdf.Ln(2)
}

// listBlock prints a heading followed by bullet-less lines.
func (d *doc) listBlock(heading string, lines []string) {
	if len(lines) == 0 {
		return
	}
	d.pdf.Ln(2)
	d.pdf.SetFont("Arial", "B", 10)
	d.pdf.CellFormat(0, 6, d.tr(heading), "", 1, "L", false, 0, "")
	d.pdf.SetFont("Arial", "", 10)
	for _, line := range lines {
		d.pdf.MultiCell(0, 5, d.tr(line), "", "L", false)
	}
}

func (d *doc) notes(text string) {
	if text == "" {
		return
	}
	d.listBlock("Zusatzinformationen", []string{text})
}

// qrFooter stamps the download QR code in the bottom right corner of the
// first page.
func (g *Generator) qrFooter(d *doc, rec *model.ReportRecord) {
	content := fmt.Sprintf("https://%s/api/reports/%s/download", g.appHost, rec.ID)
	png, err := qrcode.Encode(content, qrcode.Low, 256)
	if err != nil {
		// A missing QR code is cosmetic, the document is still valid.
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	_ = d.pdf.RegisterImageOptionsReader("qr_download", opts, bytes.NewReader(png))
	d.pdf.ImageOptions("qr_download", 175, 272, 20, 20, false, opts, 0, "")
}

func writeOut(pdf *gofpdf.Fpdf, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf file: %w", err)
	}
	defer f.Close()
	if err := pdf.Output(f); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
