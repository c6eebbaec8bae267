package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agro-advisor/internal/core/auth"
	"agro-advisor/internal/domain"
	mdw "agro-advisor/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, reg *Registry, o Options) *gin.Engine {
	o = o.withDefaults()
	r := newEngine(l, o)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, o.Sessions, l, domain.RoleAdmin))
	reg.MountAdmin(admin)
	return r
}
