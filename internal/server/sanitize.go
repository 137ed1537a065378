package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// maxPublicBodyBytes bounds unauthenticated request bodies. A contact message
// is at most 5000 characters, so this leaves room for multi-byte text.
const maxPublicBodyBytes = 64 << 10

// limitBodyMiddleware caps the request body at limit bytes.
func limitBodyMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": errorPayloadTooLarge})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// sanitizeJSONMiddleware strips markup from every string in a public JSON
// body. Entities are decoded again so templates escape exactly once.
func sanitizeJSONMiddleware() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}
		if !strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": errorPayloadTooLarge})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
			return
		}
		var body any
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
			return
		}

		var cleaned bytes.Buffer
		encoder := json.NewEncoder(&cleaned)
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(sanitizeValue(policy, body)); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errorInvalidRequest})
			return
		}
		c.Request.Body = io.NopCloser(&cleaned)
		c.Request.ContentLength = int64(cleaned.Len())
		c.Next()
	}
}

func sanitizeValue(policy *bluemonday.Policy, value any) any {
	switch typed := value.(type) {
	case string:
		return html.UnescapeString(policy.Sanitize(typed))
	case map[string]any:
		for key, nested := range typed {
			typed[key] = sanitizeValue(policy, nested)
		}
		return typed
	case []any:
		for index, nested := range typed {
			typed[index] = sanitizeValue(policy, nested)
		}
		return typed
	default:
		return value
	}
}
