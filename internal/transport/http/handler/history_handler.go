package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agro-advisor/internal/domain"
	"agro-advisor/internal/service"
	"agro-advisor/internal/transport/http/ez"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HistoryHandler exposes the caller's crop and detection history.
type HistoryHandler struct {
	History *service.HistoryService
	Log     *zap.Logger
}

type cropIn struct {
	Crop          string  `json:"crop"`
	PlantedDate   string  `json:"plantedDate"`
	HarvestedDate string  `json:"harvestedDate"`
	YieldAmount   float64 `json:"yieldAmount"`
	Notes         string  `json:"notes"`
}

type idOut struct {
	ID uint `json:"id"`
}

type listOut[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

func (h *HistoryHandler) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed, h.Log)

	ez.RegisterAction(e, ez.Action[cropIn, idOut]{
		Method: http.MethodPost,
		Path:   "/crops",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *cropIn) (idOut, error) {
			id, err := h.History.AddCropRecord(c.Request.Context(), ez.Session(c).Username, domain.CropRecord{
				Crop:          in.Crop,
				PlantedDate:   in.PlantedDate,
				HarvestedDate: in.HarvestedDate,
				YieldAmount:   in.YieldAmount,
				Notes:         in.Notes,
			})
			return idOut{ID: id}, err
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, listOut[domain.CropRecord]]{
		Method: http.MethodGet,
		Path:   "/crops",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (listOut[domain.CropRecord], error) {
			recs, err := h.History.ListCropRecords(c.Request.Context(), ez.Session(c).Username)
			return listOut[domain.CropRecord]{Total: len(recs), Items: recs}, err
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, domain.CropStats]{
		Method: http.MethodGet,
		Path:   "/crops/stats",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.CropStats, error) {
			return h.History.CropStats(c.Request.Context(), ez.Session(c).Username)
		},
	})

	authed.GET("/crops/export", h.exportCrops)

	ez.RegisterAction(e, ez.Action[struct{}, listOut[domain.DetectionRecord]]{
		Method: http.MethodGet,
		Path:   "/detections",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (listOut[domain.DetectionRecord], error) {
			recs, err := h.History.ListDetectionRecords(c.Request.Context(), ez.Session(c).Username)
			return listOut[domain.DetectionRecord]{Total: len(recs), Items: recs}, err
		},
	})
}

// exportCrops streams the crop history as an xlsx workbook.
func (h *HistoryHandler) exportCrops(c *gin.Context) {
	s := ez.Session(c)
	if s == nil {
		ez.Fail(c, h.Log, ez.Unauthorized("unauthorized"))
		return
	}
	recs, err := h.History.ListCropRecords(c.Request.Context(), s.Username)
	if err != nil {
		ez.Fail(c, h.Log, err)
		return
	}
	b, err := service.CropHistoryXLSX(recs)
	if err != nil {
		ez.Fail(c, h.Log, err)
		return
	}
	name := fmt.Sprintf("crop-history-%s-%s.xlsx", s.Username, time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxMime, b)
}
