package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agro-advisor/internal/core/auth"
	"agro-advisor/internal/domain"
	"agro-advisor/internal/i18n"
	"agro-advisor/internal/service"
	"agro-advisor/internal/transport/http/ez"
)

type AuthHandler struct {
	Reg   *service.RegistrationService
	Login *service.LoginService
	JWT   *auth.JWTer
	Log   *zap.Logger
}

type registerIn struct {
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirmPassword"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	FarmSize        *float64 `json:"farmSize"`
	Location        string   `json:"location"`
}

func (in *registerIn) draft() (domain.UserDraft, error) {
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return domain.UserDraft{}, domain.ErrPasswordMismatch
	}
	return domain.UserDraft{
		Username: in.Username,
		Password: in.Password,
		Name:     in.Name,
		Email:    in.Email,
		Role:     in.Role,
		FarmSize: in.FarmSize,
		Location: in.Location,
	}, nil
}

type loginIn struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginOut struct {
	Token string              `json:"token"`
	User  *domain.SessionUser `json:"user"`
}

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(public, _ *gin.RouterGroup) {
	e := ez.New(public, h.Log)

	// 未登录注册只能创建普通用户；管理员由 /admin/v1/users 创建
	ez.RegisterAction(e, ez.Action[registerIn, *domain.SessionUser]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Msg:    i18n.KeyRegistered,
		Handler: func(c *gin.Context, in *registerIn) (*domain.SessionUser, error) {
			d, err := in.draft()
			if err != nil {
				return nil, err
			}
			u, err := h.Reg.Register(c.Request.Context(), nil, d)
			if err != nil {
				return nil, err
			}
			return u.Session(), nil
		},
	})

	ez.RegisterAction(e, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			u, err := h.Login.Login(c.Request.Context(), in.Username, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			tok, err := h.JWT.Issue(u)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{Token: tok, User: u}, nil
		},
	})
}
