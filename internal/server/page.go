package server

import (
	"bytes"
	"net/http"

	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/render"
	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	"github.com/MarcoPoloResearchLab/linkden/internal/theme"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const htmlContentType = "text/html; charset=utf-8"

// writePage renders the profile page. Preview mode shows every enabled block
// with its current fields; live mode shows the published view.
func (h *httpHandler) writePage(c *gin.Context, status int, mode render.Mode, colorMode theme.ColorMode, contactState render.ContactState) {
	ctx := c.Request.Context()
	list, err := h.blocks.List(ctx, h.profileID)
	if err != nil {
		h.logger.Error("page blocks unavailable", zap.Error(err))
		c.Data(http.StatusInternalServerError, htmlContentType, []byte("Something went wrong."))
		return
	}
	values, err := h.settings.GetAll(ctx)
	if err != nil {
		h.logger.Warn("page settings unavailable", zap.Error(err))
		values = map[string]string{}
	}
	networks, err := h.social.List(ctx, true)
	if err != nil {
		h.logger.Warn("page social networks unavailable", zap.Error(err))
		networks = nil
	}

	visible := blocks.PublicBlocks(list, h.clock())
	if mode == render.ModePreview {
		visible = blocks.PreviewBlocks(list)
	}
	colors, resolved := theme.Resolve(values, colorMode)
	page := render.Page{
		Profile: render.Profile{
			Name:   values[settings.KeyProfileName],
			Bio:    values[settings.KeyProfileBio],
			Avatar: values[settings.KeyProfileAvatar],
		},
		Blocks: visible,
		Options: render.Options{
			Mode:      mode,
			ColorMode: resolved,
			Colors:    colors,
			Networks:  networks,
			Contact:   contactState,
		},
	}

	var buffer bytes.Buffer
	if err := h.renderer.RenderPage(&buffer, page); err != nil {
		h.logger.Error("page render failed", zap.Error(err))
		c.Data(http.StatusInternalServerError, htmlContentType, []byte("Something went wrong."))
		return
	}
	c.Data(status, htmlContentType, buffer.Bytes())
}
