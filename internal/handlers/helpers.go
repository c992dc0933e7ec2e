package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"realtycrm/internal/middleware"
	"realtycrm/internal/models"
	"realtycrm/internal/services"
)

// tolerant of int / int64 / float64 / string context values
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getUserAndRole(c *gin.Context) (userID int, role string) {
	if id, ok := getIntFromCtx(c, middleware.CtxUserID); ok {
		userID = id
	}
	role = c.GetString(middleware.CtxRole)
	return
}

type dashboardParams struct {
	Date      string `form:"date"`
	Start     string `form:"start"`
	End       string `form:"end"`
	ProjectID *int   `form:"project_id" binding:"omitempty,min=1"`
	Search    string `form:"q" binding:"max=100"`
}

// parseDashboardQuery reads date, start, end, project_id and q. An absent
// date means today.
func parseDashboardQuery(c *gin.Context, loc *time.Location) (services.DashboardQuery, error) {
	var p dashboardParams
	if err := c.ShouldBindQuery(&p); err != nil {
		return services.DashboardQuery{}, err
	}
	df, err := models.ParseDateFilter(p.Date, p.Start, p.End, loc)
	if err != nil {
		return services.DashboardQuery{}, err
	}
	return services.DashboardQuery{
		DateFilter: df,
		ProjectID:  p.ProjectID,
		Search:     strings.TrimSpace(p.Search),
	}, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
