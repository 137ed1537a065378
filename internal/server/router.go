package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/analytics"
	"github.com/MarcoPoloResearchLab/linkden/internal/auth"
	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/contact"
	"github.com/MarcoPoloResearchLab/linkden/internal/render"
	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	"github.com/MarcoPoloResearchLab/linkden/internal/social"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionUserIDContextKey = "linkden_user_id"
	accessTokenQueryParam   = "access_token"
)

var (
	errMissingSessionValidator = errors.New("session validator dependency required")
	errMissingBlocksService    = errors.New("blocks service dependency required")
	errMissingSettingsService  = errors.New("settings service dependency required")
	errMissingSocialService    = errors.New("social service dependency required")
	errMissingAnalyticsService = errors.New("analytics service dependency required")
	errMissingContactService   = errors.New("contact service dependency required")
	errMissingOwner            = errors.New("owner profile id required")
)

// SessionValidator authenticates admin requests.
type SessionValidator interface {
	ValidateRequest(r *http.Request) (auth.SessionClaims, error)
	ValidateToken(token string) (auth.SessionClaims, error)
}

type Dependencies struct {
	Sessions       SessionValidator
	OwnerID        string
	Blocks         *blocks.Service
	Settings       *settings.Service
	Social         *social.Service
	Analytics      *analytics.Service
	Contact        *contact.Service
	Renderer       *render.Renderer
	Realtime       *RealtimeDispatcher
	AllowedOrigins []string
	Clock          func() time.Time
	Logger         *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Sessions == nil {
		return nil, errMissingSessionValidator
	}
	profileID, err := blocks.NewProfileID(deps.OwnerID)
	if err != nil {
		return nil, errMissingOwner
	}
	switch {
	case deps.Blocks == nil:
		return nil, errMissingBlocksService
	case deps.Settings == nil:
		return nil, errMissingSettingsService
	case deps.Social == nil:
		return nil, errMissingSocialService
	case deps.Analytics == nil:
		return nil, errMissingAnalyticsService
	case deps.Contact == nil:
		return nil, errMissingContactService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = render.NewRenderer(logger)
	}
	realtime := deps.Realtime
	if realtime == nil {
		realtime = NewRealtimeDispatcher()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	handler := &httpHandler{
		sessions:          deps.Sessions,
		profileID:         profileID,
		blocks:            deps.Blocks,
		settings:          deps.Settings,
		social:            deps.Social,
		analytics:         deps.Analytics,
		contact:           deps.Contact,
		renderer:          renderer,
		realtime:          realtime,
		clock:             clock,
		heartbeatInterval: defaultHeartbeatInterval,
		logger:            logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(deps.AllowedOrigins))

	router.GET("/healthz", handler.handleHealth)
	router.GET("/", handler.handlePublicPage)
	router.POST("/contact", limitBodyMiddleware(maxPublicBodyBytes), handler.handleContactForm)
	router.GET("/go/:blockId", handler.handleLinkRedirect)

	public := router.Group("/api/public")
	public.Use(limitBodyMiddleware(maxPublicBodyBytes), sanitizeJSONMiddleware())
	public.POST("/contact", handler.handleSubmitContact)
	public.POST("/click", handler.handleTrackClick)

	admin := router.Group("/")
	admin.Use(handler.authorizeRequest)
	admin.GET("/admin/preview", handler.handlePreview)

	api := admin.Group("/api")
	api.GET("/blocks", handler.handleListBlocks)
	api.POST("/blocks", handler.handleCreateBlock)
	api.GET("/blocks/draft", handler.handleHasDraft)
	api.GET("/blocks/stream", handler.handleBlocksStream)
	api.POST("/blocks/reorder", handler.handleReorderBlocks)
	api.POST("/blocks/publish", handler.handlePublishAll)
	api.PATCH("/blocks/:id", handler.handleUpdateBlock)
	api.DELETE("/blocks/:id", handler.handleDeleteBlock)
	api.POST("/blocks/:id/enabled", handler.handleToggleBlock)
	api.GET("/settings", handler.handleGetSettings)
	api.PUT("/settings", handler.handleUpdateSettings)
	api.GET("/social", handler.handleListSocial)
	api.PUT("/social/:slug", handler.handleUpsertSocial)
	api.DELETE("/social/:slug", handler.handleDeleteSocial)
	api.GET("/analytics/clicks", handler.handleClickCounts)
	api.GET("/contact/submissions", handler.handleListSubmissions)

	return router, nil
}

type httpHandler struct {
	sessions          SessionValidator
	profileID         blocks.ProfileID
	blocks            *blocks.Service
	settings          *settings.Service
	social            *social.Service
	analytics         *analytics.Service
	contact           *contact.Service
	renderer          *render.Renderer
	realtime          *RealtimeDispatcher
	clock             func() time.Time
	heartbeatInterval time.Duration
	logger            *zap.Logger
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		config.AllowOriginFunc = func(string) bool { return true }
	} else {
		config.AllowOrigins = allowedOrigins
	}
	return cors.New(config)
}

// authorizeRequest accepts a session from the bearer header, the session
// cookie or, for EventSource clients, the access_token query parameter. Only
// the configured owner is admitted.
func (h *httpHandler) authorizeRequest(c *gin.Context) {
	claims, err := h.sessions.ValidateRequest(c.Request)
	if errors.Is(err, auth.ErrMissingSessionToken) {
		if token := strings.TrimSpace(c.Query(accessTokenQueryParam)); token != "" {
			claims, err = h.sessions.ValidateToken(token)
		}
	}
	if err != nil {
		if errors.Is(err, auth.ErrExpiredSessionToken) || errors.Is(err, auth.ErrMissingSessionToken) {
			h.logger.Info("session validation failed", zap.Error(err))
		} else {
			h.logger.Warn("session validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if claims.UserID != h.profileID.String() {
		h.logger.Warn("session user is not the owner", zap.String("user_id", claims.UserID))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.Set(sessionUserIDContextKey, claims.UserID)
	c.Next()
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// notify tells open builders that the block list changed.
func (h *httpHandler) notify(eventType string, blockIDs ...string) {
	h.realtime.Publish(RealtimeMessage{
		ProfileID: h.profileID.String(),
		EventType: eventType,
		BlockIDs:  blockIDs,
		Timestamp: h.clock().UTC(),
	})
}
