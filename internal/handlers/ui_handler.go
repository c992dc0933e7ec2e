package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"realtycrm/internal/uistate"
)

type UIHandler struct {
	Panels *uistate.Manager
}

func NewUIHandler(panels *uistate.Manager) *UIHandler {
	return &UIHandler{Panels: panels}
}

// @Summary      Panel visibility
// @Tags         UI
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Security     BearerAuth
// @Router       /ui/panels [get]
func (h *UIHandler) List(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	c.JSON(http.StatusOK, h.Panels.Snapshot(userID))
}

func (h *UIHandler) reply(c *gin.Context, name string, open bool, err error) {
	if errors.Is(err, uistate.ErrUnknownPanel) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "panels": h.Panels.Panels()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"panel": name, "open": open})
}

// @Summary      Panel state
// @Tags         UI
// @Produce      json
// @Param        name  path  string  true  "panel name"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /ui/panels/{name} [get]
func (h *UIHandler) Get(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	name := c.Param("name")
	open, err := h.Panels.IsOpen(userID, name)
	h.reply(c, name, open, err)
}

// @Summary      Close every panel
// @Tags         UI
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Security     BearerAuth
// @Router       /ui/panels/close-all [post]
func (h *UIHandler) CloseAll(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	h.Panels.CloseAll(userID)
	c.JSON(http.StatusOK, h.Panels.Snapshot(userID))
}

// @Summary      Open a panel
// @Tags         UI
// @Produce      json
// @Param        name  path  string  true  "panel name"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /ui/panels/{name}/open [post]
func (h *UIHandler) Open(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	name := c.Param("name")
	h.reply(c, name, true, h.Panels.Open(userID, name))
}

// @Summary      Close a panel
// @Tags         UI
// @Produce      json
// @Param        name  path  string  true  "panel name"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /ui/panels/{name}/close [post]
func (h *UIHandler) Close(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	name := c.Param("name")
	h.reply(c, name, false, h.Panels.Close(userID, name))
}

// @Summary      Toggle a panel
// @Tags         UI
// @Produce      json
// @Param        name  path  string  true  "panel name"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /ui/panels/{name}/toggle [post]
func (h *UIHandler) Toggle(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	name := c.Param("name")
	open, err := h.Panels.Toggle(userID, name)
	h.reply(c, name, open, err)
}
