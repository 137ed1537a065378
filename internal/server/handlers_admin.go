package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MarcoPoloResearchLab/linkden/internal/analytics"
	"github.com/MarcoPoloResearchLab/linkden/internal/contact"
	"github.com/MarcoPoloResearchLab/linkden/internal/render"
	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	"github.com/MarcoPoloResearchLab/linkden/internal/social"
	"github.com/MarcoPoloResearchLab/linkden/internal/theme"
	"github.com/gin-gonic/gin"
)

func (h *httpHandler) handleGetSettings(c *gin.Context) {
	values, err := h.settings.GetAll(c.Request.Context())
	if err != nil {
		h.respondError(c, "settings.get_all", err)
		return
	}
	c.JSON(http.StatusOK, values)
}

func (h *httpHandler) handleUpdateSettings(c *gin.Context) {
	var entries []settings.Entry
	if err := c.ShouldBindJSON(&entries); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
		return
	}
	if err := h.settings.UpdateBulk(c.Request.Context(), entries); err != nil {
		h.respondError(c, "settings.update_bulk", err)
		return
	}
	values, err := h.settings.GetAll(c.Request.Context())
	if err != nil {
		h.respondError(c, "settings.get_all", err)
		return
	}
	h.notify(RealtimeEventSettingsChanged)
	c.JSON(http.StatusOK, values)
}

func (h *httpHandler) handleListSocial(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("activeOnly", "false"))
	networks, err := h.social.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.respondError(c, "social.list", err)
		return
	}
	if networks == nil {
		networks = []social.Network{}
	}
	c.JSON(http.StatusOK, networks)
}

type socialRequest struct {
	URL      string `json:"url"`
	Label    string `json:"label"`
	IsActive *bool  `json:"isActive"`
	Position int    `json:"position"`
}

func (h *httpHandler) handleUpsertSocial(c *gin.Context) {
	var request socialRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
		return
	}
	active := true
	if request.IsActive != nil {
		active = *request.IsActive
	}
	network, err := h.social.Upsert(c.Request.Context(), social.Network{
		Slug:     c.Param("slug"),
		URL:      request.URL,
		Label:    request.Label,
		IsActive: active,
		Position: request.Position,
	})
	if err != nil {
		h.respondError(c, "social.upsert", err)
		return
	}
	h.notify(RealtimeEventSettingsChanged)
	c.JSON(http.StatusOK, network)
}

func (h *httpHandler) handleDeleteSocial(c *gin.Context) {
	if err := h.social.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		h.respondError(c, "social.delete", err)
		return
	}
	h.notify(RealtimeEventSettingsChanged)
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleClickCounts(c *gin.Context) {
	counts, err := h.analytics.CountsByBlock(c.Request.Context(), h.profileID.String())
	if err != nil {
		h.respondError(c, "analytics.counts_by_block", err)
		return
	}
	if counts == nil {
		counts = []analytics.BlockCount{}
	}
	c.JSON(http.StatusOK, counts)
}

func (h *httpHandler) handleListSubmissions(c *gin.Context) {
	submissions, err := h.contact.List(c.Request.Context(), h.profileID.String())
	if err != nil {
		h.respondError(c, "contact.list", err)
		return
	}
	if submissions == nil {
		submissions = []contact.Submission{}
	}
	c.JSON(http.StatusOK, submissions)
}

// handlePreview renders the draft page. The mode query parameter overrides
// the stored colour mode.
func (h *httpHandler) handlePreview(c *gin.Context) {
	var colorMode theme.ColorMode
	if raw := strings.TrimSpace(c.Query("mode")); raw != "" {
		colorMode = theme.ParseColorMode(raw)
	}
	c.Header("Cache-Control", "no-store")
	h.writePage(c, http.StatusOK, render.ModePreview, colorMode, render.ContactState{})
}
