package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"realtycrm/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
	loc     *time.Location
}

func NewReportHandler(service *services.ReportService, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{Service: service, loc: loc}
}

// @Summary      Leads PDF
// @Description  Filtered leads with summary figures as a PDF document
// @Tags         Reports
// @Produce      application/pdf
// @Param        date        query  string  false  "today | week | month | custom"
// @Param        start       query  string  false  "custom range start, YYYY-MM-DD"
// @Param        end         query  string  false  "custom range end, YYYY-MM-DD"
// @Param        project_id  query  int     false  "project filter"
// @Param        q           query  string  false  "lead search term"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Security     BearerAuth
// @Router       /reports/leads.pdf [get]
func (h *ReportHandler) LeadsPDF(c *gin.Context) {
	q, err := parseDashboardQuery(c, h.loc)
	if err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Service.LeadsPDF(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}
	name := fmt.Sprintf("leads_%s.pdf", time.Now().In(h.loc).Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, name))
	c.Data(http.StatusOK, "application/pdf", out)
}

type digestRequest struct {
	To []string `json:"to" binding:"omitempty,dive,email"`
}

// @Summary      Send leads digest
// @Description  Mails the leads PDF to the given or configured recipients
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        body  body      digestRequest  false  "recipients"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Security     BearerAuth
// @Router       /reports/digest [post]
func (h *ReportHandler) SendDigest(c *gin.Context) {
	q, err := parseDashboardQuery(c, h.loc)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req digestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	err = h.Service.SendDigest(c.Request.Context(), q, req.To)
	switch {
	case errors.Is(err, services.ErrNoRecipients):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrMailerNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email is not configured"})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send digest"})
	default:
		c.JSON(http.StatusAccepted, gin.H{"message": "digest sent"})
	}
}
