package server

import (
	"github.com/gin-gonic/gin"
	referencedomain "github.com/shelfpulselabs/shelfpulse/internal/reference/domain"
)

func (s *Server) ReplaceStoreCities(c *gin.Context) {
	var req referencedomain.ReplaceStoreCitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}

	count, err := s.referenceSvc.ReplaceStoreCities(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, gin.H{"replaced": count})
}

func (s *Server) ReplaceCategoryRefs(c *gin.Context) {
	var req referencedomain.ReplaceCategoryRefsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError(err))
		return
	}

	count, err := s.referenceSvc.ReplaceCategoryRefs(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, gin.H{"replaced": count})
}
