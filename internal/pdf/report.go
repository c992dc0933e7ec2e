package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator is implemented by ReportGenerator; services depend on this.
type Generator interface {
	LeadsReport(w io.Writer, data LeadsReportData) error
	SaveLeadsReport(data LeadsReportData) (string, error)
}

// ReportGenerator renders dashboard reports. With FontPath set it embeds a
// UTF-8 TTF; otherwise it falls back to the core Helvetica font.
type ReportGenerator struct {
	RootDir  string
	FontPath string
	fontName string
}

type LeadRow struct {
	ID        int
	Name      string
	Phone     string
	Project   string
	Status    string
	Priority  string
	CreatedAt time.Time
}

type LeadsReportData struct {
	Title       string
	Company     string
	GeneratedAt time.Time
	FilterLabel string
	Figures     map[string]string
	Leads       []LeadRow
	Filename    string
}

func NewReportGenerator(rootDir, fontPath string) *ReportGenerator {
	g := &ReportGenerator{RootDir: filepath.Clean(rootDir), FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err == nil {
			g.fontName = "DejaVu"
		}
	}
	return g
}

func (g *ReportGenerator) LeadsReport(w io.Writer, data LeadsReportData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	title := data.Title
	if title == "" {
		title = "Leads report"
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor(data.Company, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	g.addUTF8Font(pdf)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	sub := data.GeneratedAt.Format("02 Jan 2006 15:04")
	if data.Company != "" {
		sub = data.Company + "  |  " + sub
	}
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	g.sectionTitle(pdf, "Filters")
	label := data.FilterLabel
	if label == "" {
		label = "none"
	}
	g.kvLine(pdf, "Applied", label)
	pdf.Ln(1)

	if len(data.Figures) > 0 {
		g.hr(pdf)
		g.sectionTitle(pdf, "Summary")
		keys := make([]string, 0, len(data.Figures))
		for k := range data.Figures {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			g.kvLine(pdf, k, data.Figures[k])
		}
		pdf.Ln(1)
	}

	g.hr(pdf)
	g.sectionTitle(pdf, fmt.Sprintf("Leads (%d)", len(data.Leads)))
	g.leadsTable(pdf, data.Leads)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render leads report: %w", err)
	}
	return pdf.Output(w)
}

// SaveLeadsReport writes the report under RootDir and returns its public path.
func (g *ReportGenerator) SaveLeadsReport(data LeadsReportData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("leads_%s.pdf", data.GeneratedAt.Format("20060102_150405"))
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}
	f, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	if err := g.LeadsReport(f, data); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(filepath.Base(absPath)), nil
}

var leadColumns = []struct {
	title string
	width float64
}{
	{"#", 12}, {"Name", 40}, {"Phone", 32}, {"Project", 34}, {"Status", 24}, {"Priority", 18}, {"Created", 20},
}

func (g *ReportGenerator) leadsTable(pdf *gofpdf.Fpdf, rows []LeadRow) {
	header := func() {
		pdf.SetFont(g.fontName, "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range leadColumns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(g.fontName, "", 9)
	}
	header()
	if len(rows) == 0 {
		pdf.CellFormat(0, 7, "No leads match the selected filters.", "1", 1, "C", false, 0, "")
		return
	}
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, r := range rows {
		if pdf.GetY()+7 > pageH-bottom {
			pdf.AddPage()
			header()
		}
		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Format("02.01.2006")
		}
		cells := []string{fmt.Sprintf("%d", r.ID), r.Name, r.Phone, r.Project, r.Status, r.Priority, created}
		for i, c := range leadColumns {
			pdf.CellFormat(c.width, 7, fit(pdf, cells[i], c.width-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fit truncates s so it renders within width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"..") > width {
		r = r[:len(r)-1]
	}
	return string(r) + ".."
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(55, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(15, y, 195, y)
	pdf.SetY(y + 2)
}

func (g *ReportGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename)
	return filepath.Join(g.RootDir, filename), nil
}

func (g *ReportGenerator) addUTF8Font(pdf *gofpdf.Fpdf) {
	if g.fontName == "Helvetica" {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}
