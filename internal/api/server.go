package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsroomhq/rundown/internal/ctxutil"
	"github.com/newsroomhq/rundown/internal/database"
	"github.com/newsroomhq/rundown/internal/models"
	"github.com/newsroomhq/rundown/internal/services"
)

type Server struct {
	router          *gin.Engine
	bulletinService *services.BulletinService
	rundownService  *services.RundownService
	timingService   *services.TimingService
	templateService *services.TemplateService
	segmentService  *services.SegmentService
	poolService     *services.PoolService
	trashService    *services.TrashService
	auditService    *services.AuditService
	userService     *services.UserService
}

func NewServer(
	bulletinService *services.BulletinService,
	rundownService *services.RundownService,
	timingService *services.TimingService,
	templateService *services.TemplateService,
	segmentService *services.SegmentService,
	poolService *services.PoolService,
	trashService *services.TrashService,
	auditService *services.AuditService,
	userService *services.UserService,
) *Server {
	router := gin.Default()
	s := &Server{
		router:          router,
		bulletinService: bulletinService,
		rundownService:  rundownService,
		timingService:   timingService,
		templateService: templateService,
		segmentService:  segmentService,
		poolService:     poolService,
		trashService:    trashService,
		auditService:    auditService,
		userService:     userService,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	api.Use(identity())
	{
		api.GET("/bulletins", s.listBulletins)
		api.POST("/bulletins", requireRole(models.RoleProducer, models.RoleAdmin), s.createBulletin)
		api.GET("/bulletins/:id", s.getBulletin)
		api.PATCH("/bulletins/:id", requireRole(models.RoleProducer, models.RoleAdmin), s.updateBulletin)
		api.DELETE("/bulletins/:id", requireRole(models.RoleProducer, models.RoleAdmin), s.deleteBulletin)
		api.POST("/bulletins/:id/restore", requireRole(models.RoleProducer, models.RoleAdmin), s.restoreBulletin)
		api.POST("/bulletins/:id/lock", requireRole(models.RoleProducer, models.RoleAdmin), s.lockBulletin)
		api.POST("/bulletins/:id/unlock", requireRole(models.RoleProducer, models.RoleAdmin), s.unlockBulletin)
		api.GET("/bulletins/:id/timing", s.getTiming)
		api.POST("/bulletins/:id/template", requireRole(models.RoleProducer, models.RoleAdmin), s.generateTemplate)

		api.GET("/bulletins/:id/rows", s.listRows)
		api.POST("/bulletins/:id/rows", requireRole(models.RoleProducer, models.RoleAdmin), s.addRow)
		api.PATCH("/bulletins/:id/rows/:rowId", requireRole(models.RoleProducer, models.RoleAdmin), s.updateRow)
		api.DELETE("/bulletins/:id/rows/:rowId", requireRole(models.RoleProducer, models.RoleAdmin), s.deleteRow)
		api.POST("/bulletins/:id/rows/:rowId/restore", requireRole(models.RoleProducer, models.RoleAdmin), s.restoreRow)
		api.POST("/bulletins/:id/rows/:rowId/move", requireRole(models.RoleProducer, models.RoleAdmin), s.moveRow)
		api.POST("/bulletins/:id/rows/:rowId/actual", requireRole(models.RoleProducer, models.RoleAdmin), s.setActualDuration)

		api.GET("/bulletins/:id/rows/:rowId/segments", s.listSegments)
		api.POST("/bulletins/:id/rows/:rowId/segments",
			requireRole(models.RoleEditor, models.RoleProducer, models.RoleAdmin), s.addSegment)
		api.PATCH("/bulletins/:id/rows/:rowId/segments/:segmentId",
			requireRole(models.RoleEditor, models.RoleProducer, models.RoleAdmin), s.updateSegment)
		api.DELETE("/bulletins/:id/rows/:rowId/segments/:segmentId",
			requireRole(models.RoleEditor, models.RoleProducer, models.RoleAdmin), s.deleteSegment)

		api.GET("/pool", s.listPoolStories)
		api.POST("/pool", requireRole(models.RoleReporter, models.RoleEditor, models.RoleProducer, models.RoleAdmin), s.createPoolStory)
		api.PATCH("/pool/:id", requireRole(models.RoleEditor, models.RoleProducer, models.RoleAdmin), s.updatePoolStory)
		api.POST("/pool/:id/assign", requireRole(models.RoleProducer, models.RoleAdmin), s.assignPoolStory)

		api.GET("/trash", requireRole(models.RoleProducer, models.RoleAdmin), s.listTrash)
		api.GET("/audit", requireRole(models.RoleAdmin), s.listAudit)
		api.GET("/users", requireRole(models.RoleAdmin), s.listUsers)
		api.POST("/users", requireRole(models.RoleAdmin), s.createUser)
	}
}

// identity trusts the gateway-verified identity headers and puts the actor on
// the request context. Requests with no identity are rejected before any
// handler runs.
func identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		role := models.Role(c.GetHeader("X-User-Role"))
		if userID == "" || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity headers"})
			return
		}

		switch role {
		case models.RoleAdmin, models.RoleProducer, models.RoleEditor, models.RoleReporter:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown role"})
			return
		}

		actor := ctxutil.Actor{UserID: userID, Role: role}
		c.Request = c.Request.WithContext(ctxutil.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func requireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ctxutil.ActorFromContext(c.Request.Context())
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// respondError maps service errors onto status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrBulletinLocked), errors.Is(err, services.ErrStoryUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
