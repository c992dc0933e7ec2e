package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"realtycrm/internal/services"
	"realtycrm/internal/store"
)

type DashboardHandler struct {
	Service *services.DashboardService
	loc     *time.Location
}

func NewDashboardHandler(service *services.DashboardService, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardHandler{Service: service, loc: loc}
}

func (h *DashboardHandler) view(c *gin.Context) (services.DashboardView, bool) {
	q, err := parseDashboardQuery(c, h.loc)
	if err != nil {
		badRequest(c, err)
		return services.DashboardView{}, false
	}
	return h.Service.View(c.Request.Context(), q), true
}

// @Summary      Dashboard
// @Description  Filtered leads, opportunities, site visits and summary figures
// @Tags         Dashboard
// @Produce      json
// @Param        date        query  string  false  "today | week | month | custom"
// @Param        start       query  string  false  "custom range start, YYYY-MM-DD"
// @Param        end         query  string  false  "custom range end, YYYY-MM-DD"
// @Param        project_id  query  int     false  "project filter"
// @Param        q           query  string  false  "lead search term"
// @Success      200  {object}  services.DashboardView
// @Failure      400  {object}  map[string]string
// @Security     BearerAuth
// @Router       /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Filtered leads
// @Tags         Dashboard
// @Produce      json
// @Param        date        query  string  false  "today | week | month | custom"
// @Param        project_id  query  int     false  "project filter"
// @Param        q           query  string  false  "lead search term"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Security     BearerAuth
// @Router       /leads [get]
func (h *DashboardHandler) ListLeads(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":   view.Leads,
		"count":   len(view.Leads),
		"loading": view.Loading[store.CollectionLeads],
	})
}

// @Summary      Filtered opportunities
// @Tags         Dashboard
// @Produce      json
// @Param        project_id  query  int  false  "project filter"
// @Success      200  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /opportunities [get]
func (h *DashboardHandler) ListOpportunities(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":   view.Opportunities,
		"count":   len(view.Opportunities),
		"loading": view.Loading[store.CollectionOpportunities],
	})
}

// @Summary      Filtered site visits
// @Tags         Dashboard
// @Produce      json
// @Param        project_id  query  int  false  "project filter"
// @Success      200  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /site-visits [get]
func (h *DashboardHandler) ListSiteVisits(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":   view.SiteVisits,
		"count":   len(view.SiteVisits),
		"loading": view.Loading[store.CollectionSiteVisits],
	})
}

// @Summary      Projects
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /projects [get]
func (h *DashboardHandler) ListProjects(c *gin.Context) {
	projects, loading := h.Service.Projects()
	c.JSON(http.StatusOK, gin.H{
		"items":   projects,
		"count":   len(projects),
		"loading": loading,
	})
}

const refreshTimeout = 30 * time.Second

// @Summary      Refresh collections
// @Description  Re-fetches every collection, or only ?collection=leads|opportunities|projects|site_visits
// @Tags         Admin
// @Produce      json
// @Param        collection  query  string  false  "single collection"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Security     BearerAuth
// @Router       /refresh [post]
func (h *DashboardHandler) Refresh(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), refreshTimeout)
	defer cancel()

	var err error
	if name := c.Query("collection"); name != "" {
		err = h.Service.RefreshCollection(ctx, name)
	} else {
		err = h.Service.Refresh(ctx)
	}
	switch {
	case errors.Is(err, store.ErrUnknownCollection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "refreshed"})
	}
}
