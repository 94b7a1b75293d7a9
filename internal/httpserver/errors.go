package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/api"
	"storefront/internal/blobstore"
	"storefront/internal/domain"
	"storefront/internal/upload"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps domain errors onto HTTP status codes and the JSON error body.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		verr     *domain.ValidationError
		stockErr *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, api.ErrorFromStock(stockErr))
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: verr.Error(), Code: api.CodeValidation})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeEmptyCart})
	case errors.Is(err, domain.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Customer profile not found", Code: api.CodeCustomerNotFound})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "not found", Code: api.CodeNotFound})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "the resource was modified concurrently, retry the request", Code: api.CodeConflict})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "already exists", Code: api.CodeAlreadyExists})
	case errors.Is(err, upload.ErrNoFile):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "No file provided", Code: api.CodeValidation})
	case errors.Is(err, upload.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: err.Error(), Code: api.CodeValidation})
	case errors.Is(err, blobstore.ErrInvalidName):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeValidation})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		logger.Warn("upstream unavailable", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "upstream service unavailable", Code: api.CodeUpstream})
	default:
		logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error", Code: api.CodeInternal})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: msg, Code: api.CodeValidation})
}
