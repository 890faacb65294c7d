package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsroomhq/rundown/internal/services"
)

func (s *Server) createBulletin(c *gin.Context) {
	var in services.BulletinInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bulletin, err := s.bulletinService.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bulletin)
}

func (s *Server) listBulletins(c *gin.Context) {
	bulletins, err := s.bulletinService.List(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bulletins": bulletins})
}

func (s *Server) getBulletin(c *gin.Context) {
	bulletin, rows, err := s.bulletinService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bulletin": bulletin,
		"rows":     rows,
	})
}

func (s *Server) updateBulletin(c *gin.Context) {
	var patch services.BulletinPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bulletin, result, err := s.bulletinService.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bulletin": bulletin,
		"timing":   result,
	})
}

func (s *Server) deleteBulletin(c *gin.Context) {
	if err := s.bulletinService.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bulletin moved to trash"})
}

func (s *Server) restoreBulletin(c *gin.Context) {
	if err := s.bulletinService.Restore(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bulletin restored"})
}

func (s *Server) lockBulletin(c *gin.Context) {
	if err := s.bulletinService.Lock(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bulletin locked"})
}

func (s *Server) unlockBulletin(c *gin.Context) {
	if err := s.bulletinService.Unlock(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bulletin unlocked"})
}

func (s *Server) getTiming(c *gin.Context) {
	result, err := s.timingService.Recalculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) generateTemplate(c *gin.Context) {
	rows, result, err := s.templateService.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"rows":   rows,
		"timing": result,
	})
}

func (s *Server) listTrash(c *gin.Context) {
	contents, err := s.trashService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contents)
}
