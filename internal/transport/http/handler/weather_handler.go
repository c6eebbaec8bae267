package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agro-advisor/internal/domain"
	"agro-advisor/internal/service"
	"agro-advisor/internal/transport/http/ez"
)

type WeatherHandler struct {
	Weather *service.WeatherService
	// Accounts supplies the profile location when the query omits one.
	Accounts *service.AccountService
	Log      *zap.Logger
}

type weatherQ struct {
	Location string `form:"location"`
}

type weatherOut struct {
	Forecast *domain.Forecast `json:"forecast"`
	Cached   bool             `json:"cached"`
}

func (h *WeatherHandler) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed, h.Log)

	ez.RegisterAction(e, ez.Action[weatherQ, weatherOut]{
		Method: http.MethodGet,
		Path:   "/weather",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *weatherQ) (weatherOut, error) {
			loc := in.Location
			if loc == "" && h.Accounts != nil {
				// 未指定时用资料里的农场位置
				if u, err := h.Accounts.Get(c.Request.Context(), ez.Session(c).Username); err == nil {
					loc = u.Location
				}
			}
			f, cached, err := h.Weather.Forecast(c.Request.Context(), loc)
			if err != nil {
				return weatherOut{}, err
			}
			return weatherOut{Forecast: f, Cached: cached}, nil
		},
	})
}
