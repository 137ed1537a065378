package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/analytics"
	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/contact"
	"github.com/MarcoPoloResearchLab/linkden/internal/render"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const clickTrackingTimeout = 5 * time.Second

type clickRequest struct {
	BlockID string `json:"blockId"`
}

type contactResponse struct {
	Success bool `json:"success"`
}

func (h *httpHandler) handlePublicPage(c *gin.Context) {
	h.writePage(c, http.StatusOK, render.ModeLive, "", render.ContactState{})
}

// handleContactForm accepts the HTML form post and renders the page again
// with the outcome next to the form.
func (h *httpHandler) handleContactForm(c *gin.Context) {
	var request contact.Request
	if err := c.ShouldBind(&request); err != nil {
		h.writePage(c, http.StatusBadRequest, render.ModeLive, "", render.ContactState{Failed: true})
		return
	}
	state := render.ContactState{BlockID: request.BlockID, Values: request}

	_, err := h.contact.Submit(c.Request.Context(), h.profileID.String(), request)
	var fieldErrs contact.FieldErrors
	switch {
	case err == nil:
		state.Submitted = true
		state.Values = contact.Request{}
		h.writePage(c, http.StatusOK, render.ModeLive, "", state)
	case errors.As(err, &fieldErrs):
		state.Errors = fieldErrs
		h.writePage(c, http.StatusBadRequest, render.ModeLive, "", state)
	default:
		h.logger.Error("contact form submission failed", zap.Error(err))
		state.Failed = true
		h.writePage(c, http.StatusInternalServerError, render.ModeLive, "", state)
	}
}

func (h *httpHandler) handleSubmitContact(c *gin.Context) {
	var request contact.Request
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
		return
	}
	if _, err := h.contact.Submit(c.Request.Context(), h.profileID.String(), request); err != nil {
		h.respondError(c, "contact.submit", err)
		return
	}
	c.JSON(http.StatusOK, contactResponse{Success: true})
}

func (h *httpHandler) handleTrackClick(c *gin.Context) {
	var request clickRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
		return
	}
	blockID, err := blocks.NewBlockID(request.BlockID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
		return
	}
	h.trackClick(c, blockID.String())
	c.Status(http.StatusAccepted)
}

// handleLinkRedirect sends the visitor to a link block's destination and
// records the click without waiting for the insert.
func (h *httpHandler) handleLinkRedirect(c *gin.Context) {
	blockID, err := blocks.NewBlockID(c.Param("blockId"))
	if err != nil {
		c.String(http.StatusNotFound, "Link not found.")
		return
	}
	list, err := h.blocks.List(c.Request.Context(), h.profileID)
	if err != nil {
		h.logger.Error("redirect lookup failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Something went wrong.")
		return
	}
	for _, block := range blocks.PublicBlocks(list, h.clock()) {
		if block.ID != blockID.String() {
			continue
		}
		target, ok := render.LinkTarget(block)
		if !ok {
			break
		}
		h.trackClick(c, block.ID)
		c.Redirect(http.StatusFound, target)
		return
	}
	c.String(http.StatusNotFound, "Link not found.")
}

// trackClick records the click on a context detached from the request so the
// response is not delayed and a closed connection does not cancel the insert.
func (h *httpHandler) trackClick(c *gin.Context, blockID string) {
	click := analytics.Click{
		ProfileID: h.profileID.String(),
		BlockID:   blockID,
		Referrer:  c.Request.Referer(),
		UserAgent: c.Request.UserAgent(),
	}
	detached := context.WithoutCancel(c.Request.Context())
	go func() {
		ctx, cancel := context.WithTimeout(detached, clickTrackingTimeout)
		defer cancel()
		if err := h.analytics.Track(ctx, click); err != nil {
			h.logger.Warn("click tracking failed", zap.String("block_id", blockID), zap.Error(err))
		}
	}()
}
