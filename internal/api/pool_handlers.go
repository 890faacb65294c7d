package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newsroomhq/rundown/internal/models"
	"github.com/newsroomhq/rundown/internal/services"
)

func (s *Server) listPoolStories(c *gin.Context) {
	status := models.PoolStoryStatus(c.Query("status"))
	stories, err := s.poolService.ListStories(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

func (s *Server) createPoolStory(c *gin.Context) {
	var in services.PoolStoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	story, err := s.poolService.CreateStory(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

func (s *Server) updatePoolStory(c *gin.Context) {
	var patch services.PoolStoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	story, err := s.poolService.UpdateStory(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (s *Server) assignPoolStory(c *gin.Context) {
	var body struct {
		BulletinID string `json:"bulletin_id"`
		Position   *int   `json:"position"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.BulletinID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bulletin_id is required"})
		return
	}

	row, result, err := s.poolService.Assign(c.Request.Context(), c.Param("id"), body.BulletinID, body.Position)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"row":    row,
		"timing": result,
	})
}

func (s *Server) listAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := s.auditService.List(c.Request.Context(), c.Query("bulletin_id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) createUser(c *gin.Context) {
	var in services.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.userService.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
