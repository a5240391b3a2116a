package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
)

func (s *Server) IngestEvents(c *gin.Context) {
	var events []ingestdomain.CreateEventRequest
	if err := c.ShouldBindJSON(&events); err != nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}

	accepted, err := s.ingestSvc.IngestEvents(c.Request.Context(), events)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"accepted": accepted}})
}

func (s *Server) IngestCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "required", "multipart file field is required"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}
	defer f.Close()

	accepted, err := s.ingestSvc.IngestCSV(c.Request.Context(), f)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"accepted": accepted}})
}
