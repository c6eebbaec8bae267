package ez

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agro-advisor/internal/domain"
	"agro-advisor/internal/i18n"
	resp "agro-advisor/internal/transport/http/response"
)

// KeySession is the gin context key holding the *domain.SessionUser set by
// the JWT middleware.
const KeySession = "session"

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ {
	if log == nil {
		log = zap.NewNop()
	}
	return EZ{g: g, log: log}
}

func (e EZ) Log() *zap.Logger { return e.log }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.FormFile 取
)

// AErr is a transport-level failure that is not a domain error, such as a
// malformed request body.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool     // 是否要求登录
	Roles   []string // 限定角色（可选）
	Msg     i18n.Key // success message, defaults to "OK"
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth {
			s := Session(c)
			if s == nil {
				c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 && !slices.Contains(a.Roles, s.Role) {
				Fail(c, e.log, domain.ErrInsufficientPrivilege)
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			Fail(c, e.log, &AErr{Code: resp.CodeBadRequest, Msg: "invalid request: " + bindErr.Error(), Err: bindErr})
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, e.log, err)
			return
		}
		r := resp.OK(out)
		if a.Msg != "" {
			r.Msg = i18n.T(Lang(c), a.Msg)
		}
		c.JSON(http.StatusOK, r)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// Session returns the authenticated user of the request, or nil.
func Session(c *gin.Context) *domain.SessionUser {
	v, ok := c.Get(KeySession)
	if !ok {
		return nil
	}
	s, _ := v.(*domain.SessionUser)
	return s
}

// Lang is the response language negotiated from Accept-Language.
func Lang(c *gin.Context) i18n.Lang {
	return i18n.Parse(c.GetHeader("Accept-Language"))
}

// Fail writes the envelope for err. Domain errors map to a business code by
// kind and a localised message by code; storage and unknown failures are
// logged and reported with a generic message.
func Fail(c *gin.Context, log *zap.Logger, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	var ae *AErr
	if errors.As(err, &ae) {
		c.JSON(http.StatusOK, resp.Error(ae.Code, ae.Error()))
		return
	}

	lang := Lang(c)
	code, reason := StatusOf(err), domain.CodeOf(err)
	switch domain.KindOf(err) {
	case domain.KindStorage, domain.KindCredentialFormat, domain.KindUnknown:
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("reason", reason),
			zap.Error(err))
		c.JSON(http.StatusOK, resp.Fail(code, reason, i18n.T(lang, i18n.KeyTryAgain)))
		return
	}

	msg := i18n.T(lang, i18n.Key(reason))
	var de *domain.Error
	if domain.KindOf(err) == domain.KindValidation && errors.As(err, &de) && de.Err != nil {
		msg += ": " + de.Err.Error()
	}
	c.JSON(http.StatusOK, resp.Fail(code, reason, msg))
}

// StatusOf maps an error kind onto the HTTP-flavoured business code.
func StatusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return resp.CodeBadRequest
	case domain.KindAuth:
		return resp.CodeUnauthorized
	case domain.KindPrivilege:
		return resp.CodeForbidden
	case domain.KindNotFound:
		return resp.CodeNotFound
	case domain.KindConflict:
		return resp.CodeConflict
	default:
		return resp.CodeServerError
	}
}
