package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	exportdomain "github.com/shelfpulselabs/shelfpulse/internal/export/domain"
	ingestdomain "github.com/shelfpulselabs/shelfpulse/internal/ingest/domain"
	insightsdomain "github.com/shelfpulselabs/shelfpulse/internal/insights/domain"
	referencedomain "github.com/shelfpulselabs/shelfpulse/internal/reference/domain"
)

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

func invalidRequestError(err error) *apiError {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: err.Error(),
	}
}

// badRequestErrors maps domain sentinels onto 400 responses; anything not
// listed here or in notFoundErrors falls through to a 500.
var badRequestErrors = []error{
	ingestdomain.ErrEmptyBatch,
	ingestdomain.ErrInvalidStoreID,
	ingestdomain.ErrInvalidSkuID,
	ingestdomain.ErrInvalidRecordedAt,
	ingestdomain.ErrInvalidInventory,
	ingestdomain.ErrMalformedCSV,
	referencedomain.ErrEmptyStoreID,
	referencedomain.ErrEmptyCityName,
	referencedomain.ErrEmptyCategory,
	insightsdomain.ErrInvalidSkuID,
	exportdomain.ErrUnsupportedFormat,
}

var notFoundErrors = []error{
	insightsdomain.ErrInsightNotFound,
	insightsdomain.ErrNoSnapshots,
	exportdomain.ErrNothingToExport,
}

func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
		return
	}

	for _, sentinel := range badRequestErrors {
		if errors.Is(err, sentinel) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"code": sentinel.Error(), "message": err.Error()},
			})
			return
		}
	}
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": gin.H{"code": sentinel.Error(), "message": err.Error()},
			})
			return
		}
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"code": "internal", "message": "internal server error"},
	})
}
