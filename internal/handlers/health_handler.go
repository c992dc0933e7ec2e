package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	installed func() bool
	policy    string
}

func NewHealthHandler(installed func() bool, policy string) *HealthHandler {
	return &HealthHandler{installed: installed, policy: policy}
}

// @Summary      Liveness
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /healthz [get]
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"installed":     h.installed(),
		"filter_policy": h.policy,
	})
}
