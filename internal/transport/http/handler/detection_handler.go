package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agro-advisor/internal/domain"
	"agro-advisor/internal/service"
	"agro-advisor/internal/transport/http/ez"
	resp "agro-advisor/internal/transport/http/response"
)

// ImageField is the multipart field carrying the leaf photo.
const ImageField = "image"

type DetectionHandler struct {
	Detect *service.DetectionService
	Log    *zap.Logger
}

func (h *DetectionHandler) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed, h.Log)

	ez.RegisterAction(e, ez.Action[struct{}, *service.Detection]{
		Method: http.MethodPost,
		Path:   "/detections",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Detection, error) {
			fh, err := c.FormFile(ImageField)
			if err != nil {
				if tooLarge(err) {
					return nil, &ez.AErr{Code: resp.CodeTooLarge, Msg: "image too large", Err: err}
				}
				return nil, domain.Invalid(domain.ErrInvalidImage, "missing "+ImageField+" file")
			}
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, err
			}
			return h.Detect.Analyze(c.Request.Context(), ez.Session(c).Username, data)
		},
	})
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
