package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsroomhq/rundown/internal/services"
)

func (s *Server) listRows(c *gin.Context) {
	_, rows, err := s.bulletinService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (s *Server) addRow(c *gin.Context) {
	var in services.RowInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, result, err := s.rundownService.AddRow(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"row":    row,
		"timing": result,
	})
}

func (s *Server) updateRow(c *gin.Context) {
	var patch services.RowPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, result, err := s.rundownService.UpdateRow(c.Request.Context(), c.Param("id"), c.Param("rowId"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"row":    row,
		"timing": result,
	})
}

func (s *Server) setActualDuration(c *gin.Context) {
	var body struct {
		ActualDurationSecs *int `json:"actual_duration_secs"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.rundownService.SetActualDuration(c.Request.Context(), c.Param("id"), c.Param("rowId"), body.ActualDurationSecs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) moveRow(c *gin.Context) {
	var body struct {
		To int `json:"to"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.rundownService.MoveRow(c.Request.Context(), c.Param("id"), c.Param("rowId"), body.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) deleteRow(c *gin.Context) {
	result, err := s.rundownService.DeleteRow(c.Request.Context(), c.Param("id"), c.Param("rowId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "row moved to trash",
		"timing":  result,
	})
}

func (s *Server) restoreRow(c *gin.Context) {
	result, err := s.rundownService.RestoreRow(c.Request.Context(), c.Param("id"), c.Param("rowId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "row restored",
		"timing":  result,
	})
}

func (s *Server) listSegments(c *gin.Context) {
	segments, err := s.segmentService.List(c.Request.Context(), c.Param("id"), c.Param("rowId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": segments})
}

func (s *Server) addSegment(c *gin.Context) {
	var in services.SegmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	segment, err := s.segmentService.Add(c.Request.Context(), c.Param("id"), c.Param("rowId"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, segment)
}

func (s *Server) updateSegment(c *gin.Context) {
	var patch services.SegmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	segment, err := s.segmentService.Update(c.Request.Context(),
		c.Param("id"), c.Param("rowId"), c.Param("segmentId"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, segment)
}

func (s *Server) deleteSegment(c *gin.Context) {
	err := s.segmentService.Delete(c.Request.Context(), c.Param("id"), c.Param("rowId"), c.Param("segmentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "segment deleted"})
}
