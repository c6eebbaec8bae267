package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "agro-advisor/internal/transport/http/response"
)

// PanicEnvelope is the recovery handler passed to ginzap: the panic is
// already logged with its stack, the client gets the usual envelope.
func PanicEnvelope(c *gin.Context, _ any) {
	c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeServerError, "internal error"))
}
