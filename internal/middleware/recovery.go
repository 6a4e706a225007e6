package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-dev/portfolio-api/internal/models"
	"github.com/folio-dev/portfolio-api/pkg/logger"
)

// RecoveryMiddleware converts a handler panic into a 500 whose error is the
// panic message.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		message := fmt.Sprint(recovered)
		if err, ok := recovered.(error); ok {
			message = err.Error()
		}

		logger.Error("Unhandled panic in request handler",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("panic", message),
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: message})
	})
}
