package services

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"realtycrm/internal/logger"
	"realtycrm/internal/models"
	"realtycrm/internal/pdf"
)

type ReportService struct {
	dashboard *DashboardService
	pdf       pdf.Generator
	email     EmailService
	company   string
	digestTo  []string
	now       func() time.Time
	log       logger.Logger
}

type ReportOptions struct {
	Company  string
	DigestTo []string
	Now      func() time.Time
}

func NewReportService(dashboard *DashboardService, gen pdf.Generator, email EmailService, opts ReportOptions, log logger.Logger) *ReportService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &ReportService{
		dashboard: dashboard,
		pdf:       gen,
		email:     email,
		company:   opts.Company,
		digestTo:  opts.DigestTo,
		now:       opts.Now,
		log:       log,
	}
}

// LeadsPDF renders the filtered leads and summary as a PDF document.
func (s *ReportService) LeadsPDF(ctx context.Context, q DashboardQuery) ([]byte, error) {
	view := s.dashboard.View(ctx, q)
	var buf bytes.Buffer
	if err := s.pdf.LeadsReport(&buf, s.reportData(view, q)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SendDigest mails the leads report to the given recipients, or to the
// configured digest list when to is empty.
func (s *ReportService) SendDigest(ctx context.Context, q DashboardQuery, to []string) error {
	if s.email == nil {
		return fmt.Errorf("send digest: %w", ErrMailerNotConfigured)
	}
	if len(to) == 0 {
		to = s.digestTo
	}
	view := s.dashboard.View(ctx, q)

	var buf bytes.Buffer
	data := s.reportData(view, q)
	if err := s.pdf.LeadsReport(&buf, data); err != nil {
		return err
	}

	subject := fmt.Sprintf("%s: leads digest %s", s.companyName(), data.GeneratedAt.Format("02 Jan 2006"))
	attachment := Attachment{
		Name: fmt.Sprintf("leads_%s.pdf", data.GeneratedAt.Format("20060102")),
		Data: buf.Bytes(),
	}
	if err := s.email.SendDigest(to, subject, digestHTML(data), attachment); err != nil {
		s.log.WithError(err).Error("digest not sent", map[string]interface{}{"recipients": len(to)})
		return err
	}
	s.log.Info("digest sent", map[string]interface{}{"recipients": len(to), "leads": len(data.Leads)})
	return nil
}

func (s *ReportService) companyName() string {
	if s.company == "" {
		return "Realty CRM"
	}
	return s.company
}

func (s *ReportService) reportData(view DashboardView, q DashboardQuery) pdf.LeadsReportData {
	rows := make([]pdf.LeadRow, 0, len(view.Leads))
	for _, l := range view.Leads {
		rows = append(rows, pdf.LeadRow{
			ID:        l.ID,
			Name:      l.Name,
			Phone:     l.Phone,
			Project:   view.ProjectNames[l.ProjectID],
			Status:    string(l.Status),
			Priority:  string(l.Priority),
			CreatedAt: l.CreatedAt,
		})
	}
	sum := view.Summary
	return pdf.LeadsReportData{
		Title:       "Leads report",
		Company:     s.companyName(),
		GeneratedAt: s.now(),
		FilterLabel: describeQuery(q, view.ProjectNames),
		Figures: map[string]string{
			"Total leads":         strconv.Itoa(sum.TotalLeads),
			"Qualified leads":     strconv.Itoa(sum.LeadsByStatus[models.LeadStatusQualified]),
			"Opportunities":       strconv.Itoa(sum.TotalOpportunities),
			"Pipeline value":      formatAmount(sum.PipelineValue),
			"Weighted value":      formatAmount(sum.WeightedValue),
			"Booked value":        formatAmount(sum.BookedValue),
			"Site visits":         strconv.Itoa(sum.TotalSiteVisits),
			"Upcoming follow-ups": strconv.Itoa(sum.UpcomingFollowUps),
		},
		Leads: rows,
	}
}

func describeQuery(q DashboardQuery, projects map[int]string) string {
	var parts []string
	switch q.DateFilter.Type {
	case "":
	case models.DateCustom:
		parts = append(parts, fmt.Sprintf("date %s to %s",
			q.DateFilter.StartDate.Format(models.DateLayout), q.DateFilter.EndDate.Format(models.DateLayout)))
	default:
		parts = append(parts, "date "+string(q.DateFilter.Type))
	}
	if q.ProjectID != nil {
		name := projects[*q.ProjectID]
		if name == "" {
			name = "#" + strconv.Itoa(*q.ProjectID)
		}
		parts = append(parts, "project "+name)
	}
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", q.Search))
	}
	return strings.Join(parts, ", ")
}

// formatAmount renders whole units with thousands separators.
func formatAmount(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func digestHTML(d pdf.LeadsReportData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(d.Title))
	if d.FilterLabel != "" {
		fmt.Fprintf(&b, "<p>Filters: %s</p>\n", html.EscapeString(d.FilterLabel))
	}
	b.WriteString("<ul>\n")
	for _, k := range []string{"Total leads", "Qualified leads", "Opportunities", "Pipeline value", "Booked value", "Upcoming follow-ups"} {
		fmt.Fprintf(&b, "<li>%s: <strong>%s</strong></li>\n", k, html.EscapeString(d.Figures[k]))
	}
	b.WriteString("</ul>\n<p>The full list is attached as a PDF.</p>\n")
	return b.String()
}
