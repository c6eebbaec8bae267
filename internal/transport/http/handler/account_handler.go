package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agro-advisor/internal/domain"
	"agro-advisor/internal/i18n"
	"agro-advisor/internal/service"
	"agro-advisor/internal/transport/http/ez"
)

// AccountHandler serves the caller's own profile and the admin user paths.
type AccountHandler struct {
	Accounts *service.AccountService
	Reg      *service.RegistrationService
	Log      *zap.Logger
}

type profileIn struct {
	FarmSize *float64 `json:"farmSize"`
	Location *string  `json:"location"`
}

func (h *AccountHandler) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed, h.Log)

	ez.RegisterAction(e, ez.Action[struct{}, *domain.SessionUser]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.SessionUser, error) {
			return h.Accounts.Get(c.Request.Context(), ez.Session(c).Username)
		},
	})

	ez.RegisterAction(e, ez.Action[profileIn, *domain.SessionUser]{
		Method: http.MethodPut,
		Path:   "/me/profile",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *profileIn) (*domain.SessionUser, error) {
			return h.Accounts.UpdateProfile(c.Request.Context(), ez.Session(c),
				domain.ProfileUpdate{FarmSize: in.FarmSize, Location: in.Location})
		},
	})
}

type userList struct {
	Total int                  `json:"total"`
	Items []domain.SessionUser `json:"items"`
}

func (h *AccountHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.Log)
	admins := []string{domain.RoleAdmin}

	ez.RegisterAction(e, ez.Action[struct{}, userList]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  admins,
		Handler: func(c *gin.Context, _ *struct{}) (userList, error) {
			us, err := h.Accounts.List(c.Request.Context(), ez.Session(c))
			if err != nil {
				return userList{}, err
			}
			return userList{Total: len(us), Items: us}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[registerIn, *domain.SessionUser]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  admins,
		Msg:    i18n.KeyRegistered,
		Handler: func(c *gin.Context, in *registerIn) (*domain.SessionUser, error) {
			d, err := in.draft()
			if err != nil {
				return nil, err
			}
			u, err := h.Reg.Register(c.Request.Context(), ez.Session(c), d)
			if err != nil {
				return nil, err
			}
			return u.Session(), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:username",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  admins,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			name := c.Param("username")
			ok, err := h.Accounts.Delete(c.Request.Context(), ez.Session(c), name)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, domain.ErrUserNotFound
			}
			return gin.H{"username": name}, nil
		},
	})
}
