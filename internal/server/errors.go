package server

import (
	"errors"
	"net/http"

	"github.com/MarcoPoloResearchLab/linkden/internal/analytics"
	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/contact"
	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	"github.com/MarcoPoloResearchLab/linkden/internal/social"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	errorInvalidRequest   = "invalid_request"
	errorPayloadTooLarge  = "payload_too_large"
	errorValidationFailed = "validation_failed"
	errorNotFound         = "not_found"
	errorDuplicateID      = "duplicate_id"
	errorDeliveryFailed   = "delivery_failed"
	errorInternal         = "internal_error"
)

var badRequestErrors = []error{
	blocks.ErrInvalidBlockID,
	blocks.ErrInvalidProfileID,
	blocks.ErrInvalidKind,
	blocks.ErrInvalidReorder,
	settings.ErrInvalidKey,
	social.ErrInvalidSlug,
	social.ErrInvalidURL,
	analytics.ErrInvalidClick,
}

type codedError interface {
	Code() string
}

// respondError maps service errors onto JSON error responses.
func (h *httpHandler) respondError(c *gin.Context, operation string, err error) {
	var fieldErrs contact.FieldErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorValidationFailed, "fields": fieldErrs})
		return
	}
	if errors.Is(err, blocks.ErrBlockNotFound) || errors.Is(err, social.ErrNetworkNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": errorNotFound})
		return
	}
	if errors.Is(err, blocks.ErrDuplicateBlockID) {
		c.JSON(http.StatusConflict, gin.H{"error": errorDuplicateID})
		return
	}
	for _, candidate := range badRequestErrors {
		if errors.Is(err, candidate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
			return
		}
	}

	slug := errorInternal
	if errors.Is(err, contact.ErrDeliveryFailed) {
		slug = errorDeliveryFailed
	}
	body := gin.H{"error": slug}
	var coded codedError
	if errors.As(err, &coded) {
		body["code"] = coded.Code()
	}
	h.logger.Error("request failed", zap.String("operation", operation), zap.Error(err))
	c.JSON(http.StatusInternalServerError, body)
}
