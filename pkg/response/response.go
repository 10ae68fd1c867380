package response

import (
	"net/http"

	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Error writes the standardized error body for err.
func Error(c *gin.Context, err error) {
	status, code := apperror.Classify(err)

	if status >= http.StatusInternalServerError {
		logger.ErrorWithContext(c.Request.Context(), "%s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	message := err.Error()
	if code == apperror.CodeInternal {
		message = apperror.ErrInternal.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"code": code, "error": message})
}

// BadRequest reports a request that failed binding or validation.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": apperror.CodeInvalidInput, "error": message})
}

// ParamUUID parses a uuid path parameter, writing a 400 on failure.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
