package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/roadquest/apperr"
	mw "github.com/kasuganosora/roadquest/middleware"
	"go.uber.org/zap"
)

// renderError writes {"error", "code"} with the status mapped from the code.
func renderError(c *gin.Context, logger *zap.Logger, err error) {
	code := apperr.GetCode(err)
	status := code.HTTPStatus()
	msg := apperr.GetMessage(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("trace_id", mw.GetTraceID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": apperr.CodeValidation})
}

// charID parses the :id path parameter, writing a 400 on failure.
func charID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
