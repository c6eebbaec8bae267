package service

import (
	"context"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"agro-advisor/internal/domain"
)

const (
	// ConfidenceThreshold is the percentage below which a label is reported
	// as uncertain.
	ConfidenceThreshold = 60.0
	HealthyLabel        = "Healthy"
)

var supportedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// TreatmentAdvice is attached to every non-healthy detection.
var TreatmentAdvice = []string{
	"Remove and destroy infected plants to prevent spread",
	"Apply appropriate fungicide/insecticide as recommended",
	"Improve air circulation around plants by proper spacing",
	"Maintain proper watering schedule (avoid overwatering)",
}

type Detection struct {
	Record    domain.DetectionRecord `json:"record"`
	Uncertain bool                   `json:"uncertain"`
	Advice    []string               `json:"advice"`
}

// DetectionService runs an uploaded leaf image through the classifier and
// records the outcome in the user's history.
type DetectionService struct {
	classifier domain.Classifier
	files      domain.FileStore
	history    *HistoryService
	log        *zap.Logger
	Now        func() time.Time
}

func NewDetectionService(c domain.Classifier, files domain.FileStore, history *HistoryService, log *zap.Logger) *DetectionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DetectionService{classifier: c, files: files, history: history, log: log, Now: time.Now}
}

func (s *DetectionService) Analyze(ctx context.Context, username string, image []byte) (*Detection, error) {
	if len(image) == 0 {
		return nil, domain.Invalid(domain.ErrInvalidImage, "empty upload")
	}
	mt := mimetype.Detect(image)
	if _, ok := supportedImageTypes[mt.String()]; !ok {
		detectionTotal.WithLabelValues("unsupported_mime").Inc()
		return nil, domain.Invalid(domain.ErrInvalidImage, "unsupported image type "+mt.String())
	}

	label, confidence, err := s.classifier.Classify(ctx, image)
	if err != nil {
		detectionTotal.WithLabelValues(domain.CodeOf(err)).Inc()
		return nil, err
	}
	confidence = clamp(confidence, 0, 100)

	path, err := s.files.Save(ctx, image, username)
	if err != nil {
		s.log.Error("store leaf image", zap.String("username", username), zap.Error(err))
		return nil, domain.Storage("save image", err)
	}

	rec := domain.DetectionRecord{
		ImagePath:     path,
		DetectionDate: s.Now(),
		DiseaseName:   label,
		Confidence:    confidence,
	}
	var advice []string
	if !strings.EqualFold(label, HealthyLabel) {
		advice = TreatmentAdvice
		rec.TreatmentAdvice = strings.Join(advice, "\n")
	}
	id, err := s.history.AddDetectionRecord(ctx, username, rec)
	if err != nil {
		// 没有记录指向的图片不保留
		if rerr := s.files.Remove(ctx, path); rerr != nil {
			s.log.Warn("orphan leaf image", zap.String("path", path), zap.Error(rerr))
		}
		return nil, err
	}
	rec.ID = id
	rec.Username = username

	uncertain := confidence < ConfidenceThreshold
	if uncertain {
		detectionTotal.WithLabelValues("uncertain").Inc()
	} else {
		detectionTotal.WithLabelValues("ok").Inc()
	}
	return &Detection{Record: rec, Uncertain: uncertain, Advice: advice}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
