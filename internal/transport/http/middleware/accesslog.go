package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"agro-advisor/internal/transport/http/ez"
)

// 敏感字段 key（query 中统一按 key 脱敏）
var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "authorization": {},
	"secret": {}, "access_token": {},
}

func mask(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
		} else {
			out[k] = v
		}
	}
	return out
}

// AccessFields adds request id, the authenticated username and the masked
// query to each access log line written by ginzap.
func AccessFields(c *gin.Context) []zapcore.Field {
	fields := []zapcore.Field{zap.String("rid", c.GetString(KeyRequestID))}
	if s := ez.Session(c); s != nil {
		fields = append(fields, zap.String("username", s.Username))
	}
	if q := c.Request.URL.Query(); len(q) > 0 {
		fields = append(fields, zap.Any("query", mask(q)))
	}
	return fields
}
