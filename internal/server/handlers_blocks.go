package server

import (
	"io"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/gin-gonic/gin"
)

type hasDraftResponse struct {
	HasDraft bool `json:"hasDraft"`
}

type toggleRequest struct {
	IsEnabled *bool `json:"isEnabled"`
}

type reorderRequest struct {
	Updates []blocks.PositionUpdate `json:"updates"`
}

type publishResponse struct {
	Published int `json:"published"`
}

func (h *httpHandler) handleListBlocks(c *gin.Context) {
	list, err := h.blocks.List(c.Request.Context(), h.profileID)
	if err != nil {
		h.respondError(c, "blocks.list", err)
		return
	}
	if list == nil {
		list = []blocks.Block{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *httpHandler) handleHasDraft(c *gin.Context) {
	hasDraft, err := h.blocks.HasDraft(c.Request.Context(), h.profileID)
	if err != nil {
		h.respondError(c, "blocks.has_draft", err)
		return
	}
	c.JSON(http.StatusOK, hasDraftResponse{HasDraft: hasDraft})
}

func (h *httpHandler) handleCreateBlock(c *gin.Context) {
	var request blocks.CreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
		return
	}
	created, err := h.blocks.Create(c.Request.Context(), h.profileID, request)
	if err != nil {
		h.respondError(c, "blocks.create", err)
		return
	}
	h.notify(RealtimeEventBlocksChanged, created.ID)
	c.JSON(http.StatusCreated, created)
}

func (h *httpHandler) handleUpdateBlock(c *gin.Context) {
	blockID, ok := h.blockIDParam(c)
	if !ok {
		return
	}
	var fields blocks.UpdateFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
		return
	}
	updated, err := h.blocks.Update(c.Request.Context(), h.profileID, blockID, fields)
	if err != nil {
		h.respondError(c, "blocks.update", err)
		return
	}
	if !fields.IsEmpty() {
		h.notify(RealtimeEventBlocksChanged, updated.ID)
	}
	c.JSON(http.StatusOK, updated)
}

func (h *httpHandler) handleToggleBlock(c *gin.Context) {
	blockID, ok := h.blockIDParam(c)
	if !ok {
		return
	}
	var request toggleRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.IsEnabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
		return
	}
	updated, err := h.blocks.ToggleEnabled(c.Request.Context(), h.profileID, blockID, *request.IsEnabled)
	if err != nil {
		h.respondError(c, "blocks.toggle_enabled", err)
		return
	}
	h.notify(RealtimeEventBlocksChanged, updated.ID)
	c.JSON(http.StatusOK, updated)
}

func (h *httpHandler) handleDeleteBlock(c *gin.Context) {
	blockID, ok := h.blockIDParam(c)
	if !ok {
		return
	}
	if err := h.blocks.Delete(c.Request.Context(), h.profileID, blockID); err != nil {
		h.respondError(c, "blocks.delete", err)
		return
	}
	h.notify(RealtimeEventBlocksChanged, blockID.String())
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleReorderBlocks(c *gin.Context) {
	var request reorderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
		return
	}
	if err := h.blocks.Reorder(c.Request.Context(), h.profileID, request.Updates); err != nil {
		h.respondError(c, "blocks.reorder", err)
		return
	}
	ids := make([]string, 0, len(request.Updates))
	for _, update := range request.Updates {
		ids = append(ids, update.ID)
	}
	h.notify(RealtimeEventBlocksChanged, ids...)
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handlePublishAll(c *gin.Context) {
	published, err := h.blocks.PublishAll(c.Request.Context(), h.profileID)
	if err != nil {
		h.respondError(c, "blocks.publish_all", err)
		return
	}
	if published > 0 {
		h.notify(RealtimeEventBlocksChanged)
	}
	c.JSON(http.StatusOK, publishResponse{Published: published})
}

// handleBlocksStream keeps an SSE connection open and forwards change events
// for the owner's profile, with periodic heartbeats.
func (h *httpHandler) handleBlocksStream(c *gin.Context) {
	ctx := c.Request.Context()
	stream, cleanup := h.realtime.Subscribe(ctx, h.profileID.String())
	defer cleanup()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent(realtimeEventHeartbeat, newRealtimePayload(RealtimeMessage{Timestamp: h.clock()}))
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case message, open := <-stream:
			if !open {
				return false
			}
			c.SSEvent(message.EventType, newRealtimePayload(message))
			return true
		case now := <-ticker.C:
			c.SSEvent(realtimeEventHeartbeat, newRealtimePayload(RealtimeMessage{Timestamp: now}))
			return true
		}
	})
}

func (h *httpHandler) blockIDParam(c *gin.Context) (blocks.BlockID, bool) {
	blockID, err := blocks.NewBlockID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
		return "", false
	}
	return blockID, true
}
