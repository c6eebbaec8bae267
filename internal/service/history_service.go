package service

import (
	"context"
	"strings"
	"time"

	"agro-advisor/internal/domain"
)

// HistoryService validates and records per-user crop and detection history.
type HistoryService struct {
	repo domain.HistoryRepository
	Now  func() time.Time
}

func NewHistoryService(repo domain.HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo, Now: time.Now}
}

func (s *HistoryService) AddCropRecord(ctx context.Context, username string, r domain.CropRecord) (uint, error) {
	if username == "" {
		return 0, domain.ErrInvalidCredentials
	}
	r.Crop = strings.TrimSpace(r.Crop)
	r.Notes = strings.TrimSpace(r.Notes)
	if err := ValidateCropRecord(&r); err != nil {
		return 0, err
	}
	return s.repo.AddCropRecord(ctx, username, &r)
}

// ListCropRecords is ordered newest planting first.
func (s *HistoryService) ListCropRecords(ctx context.Context, username string) ([]domain.CropRecord, error) {
	return s.repo.ListCropRecords(ctx, username)
}

func (s *HistoryService) CropStats(ctx context.Context, username string) (domain.CropStats, error) {
	recs, err := s.repo.ListCropRecords(ctx, username)
	if err != nil {
		return domain.CropStats{}, err
	}
	var st domain.CropStats
	if len(recs) == 0 {
		return st, nil
	}
	for _, r := range recs {
		st.TotalYield += r.YieldAmount
	}
	st.Count = len(recs)
	st.AverageYield = st.TotalYield / float64(st.Count)
	st.LastCrop = recs[0].Crop
	return st, nil
}

func (s *HistoryService) AddDetectionRecord(ctx context.Context, username string, r domain.DetectionRecord) (uint, error) {
	if username == "" {
		return 0, domain.ErrInvalidCredentials
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return 0, domain.Invalid(domain.ErrInvalidRecord, "confidence must be within 0..100")
	}
	if strings.TrimSpace(r.DiseaseName) == "" {
		return 0, domain.Invalid(domain.ErrInvalidRecord, "disease name is required")
	}
	if r.DetectionDate.IsZero() {
		r.DetectionDate = s.Now()
	}
	return s.repo.AddDetectionRecord(ctx, username, &r)
}

// ListDetectionRecords is ordered newest detection first.
func (s *HistoryService) ListDetectionRecords(ctx context.Context, username string) ([]domain.DetectionRecord, error) {
	return s.repo.ListDetectionRecords(ctx, username)
}

// ValidateCropRecord checks the crop name, the YYYY-MM-DD dates and the yield.
// The harvest date is optional for crops still in the field.
func ValidateCropRecord(r *domain.CropRecord) error {
	if r.Crop == "" {
		return domain.Invalid(domain.ErrInvalidRecord, "crop is required")
	}
	if len(r.Crop) > 64 {
		return domain.Invalid(domain.ErrInvalidRecord, "crop name too long")
	}
	planted, err := time.Parse(domain.DateLayout, r.PlantedDate)
	if err != nil {
		return domain.Invalid(domain.ErrInvalidRecord, "planted date must be YYYY-MM-DD")
	}
	if r.HarvestedDate != "" {
		harvested, err := time.Parse(domain.DateLayout, r.HarvestedDate)
		if err != nil {
			return domain.Invalid(domain.ErrInvalidRecord, "harvested date must be YYYY-MM-DD")
		}
		if harvested.Before(planted) {
			return domain.Invalid(domain.ErrInvalidRecord, "harvested date is before planted date")
		}
	}
	if r.YieldAmount < 0 {
		return domain.Invalid(domain.ErrInvalidRecord, "yield must not be negative")
	}
	return nil
}
