package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"realtycrm/internal/services"
)

type InstallHandler struct {
	Service *services.InstallService
}

func NewInstallHandler(service *services.InstallService) *InstallHandler {
	return &InstallHandler{Service: service}
}

func installError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, services.ErrUnknownStep):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyInstalled), errors.Is(err, services.ErrStepOutOfOrder):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConnectionFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// @Summary      Install wizard state
// @Tags         Install
// @Produce      json
// @Success      200  {object}  services.WizardState
// @Router       /install [get]
func (h *InstallHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.State())
}

// @Summary      Submit an install step
// @Description  Steps are database, app, admin and confirm (or 1-4), in order
// @Tags         Install
// @Accept       json
// @Produce      json
// @Param        step  path      string  true  "step name or number"
// @Success      200   {object}  services.WizardState
// @Failure      400   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /install/steps/{step} [post]
func (h *InstallHandler) SubmitStep(c *gin.Context) {
	step, err := services.ParseStep(c.Param("step"))
	if err != nil {
		installError(c, err)
		return
	}

	var state services.WizardState
	switch step {
	case services.StepDatabase:
		var req services.DatabaseStep
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		state, err = h.Service.SubmitDatabase(c.Request.Context(), req)
	case services.StepApp:
		var req services.AppStep
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		state, err = h.Service.SubmitApp(req)
	case services.StepAdmin:
		var req services.AdminStep
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		state, err = h.Service.SubmitAdmin(req)
	case services.StepConfirm:
		if _, err = h.Service.Confirm(); err == nil {
			state = h.Service.State()
		}
	}
	if err != nil {
		installError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// @Summary      Test database connection
// @Tags         Install
// @Accept       json
// @Produce      json
// @Param        body  body      services.DatabaseStep  true  "database settings"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]interface{}
// @Failure      422   {object}  map[string]string
// @Router       /install/test-connection [post]
func (h *InstallHandler) TestConnection(c *gin.Context) {
	var req services.DatabaseStep
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.TestConnection(c.Request.Context(), req); err != nil {
		installError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "connection ok"})
}

// @Summary      Previous install step
// @Tags         Install
// @Produce      json
// @Success      200  {object}  services.WizardState
// @Router       /install/back [post]
func (h *InstallHandler) Back(c *gin.Context) {
	state, err := h.Service.Back()
	if err != nil {
		installError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
