package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	exportdomain "github.com/shelfpulselabs/shelfpulse/internal/export/domain"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
)

func (s *Server) RunTransform(c *gin.Context) {
	summary, err := s.insightsSvc.Run(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, summary)
}

func (s *Server) ListInsights(c *gin.Context) {
	req := insightsdomain.ListInsightsRequest{
		CityName:  strings.TrimSpace(c.Query("city")),
		SkuID:     strings.TrimSpace(c.Query("sku_id")),
		PageToken: c.Query("page_token"),
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			AbortWithError(c, newValidationError("date", "invalid_date", "date must be YYYY-MM-DD"))
			return
		}
		req.Date = &date
	}
	if sizeStr := c.Query("page_size"); sizeStr != "" {
		size, err := strconv.ParseInt(sizeStr, 10, 32)
		if err != nil || size < 0 {
			AbortWithError(c, newValidationError("page_size", "invalid_page_size", "page_size must be a non-negative integer"))
			return
		}
		req.PageSize = int32(size)
	}

	resp, err := s.insightsSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Insights, &resp.PageInfo)
}

func (s *Server) GetAvailability(c *gin.Context) {
	view, err := s.insightsSvc.Availability(c.Request.Context(), c.Param("sku"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, view)
}

func (s *Server) ExportInsights(c *gin.Context) {
	format, err := exportdomain.ParseFormat(c.Query("format"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.exportSvc.Export(c.Request.Context(), format)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.FileAttachment(result.Path, result.Filename)
}
