package repo

import (
	"context"

	"gorm.io/gorm"

	"agro-advisor/internal/domain"
)

// HistoryRepo stores append-only crop and detection history.
type HistoryRepo struct{ db *gorm.DB }

func NewHistoryRepo(db *gorm.DB) *HistoryRepo { return &HistoryRepo{db: db} }

var _ domain.HistoryRepository = (*HistoryRepo)(nil)

func (r *HistoryRepo) AddCropRecord(ctx context.Context, username string, rec *domain.CropRecord) (uint, error) {
	rec.ID = 0
	rec.Username = username
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isFKViolation(err) {
			return 0, domain.ErrUserNotFound
		}
		return 0, domain.Storage("add crop record", err)
	}
	return rec.ID, nil
}

func (r *HistoryRepo) ListCropRecords(ctx context.Context, username string) ([]domain.CropRecord, error) {
	out := []domain.CropRecord{}
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("planted_date DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, domain.Storage("list crop records", err)
	}
	return out, nil
}

func (r *HistoryRepo) AddDetectionRecord(ctx context.Context, username string, rec *domain.DetectionRecord) (uint, error) {
	rec.ID = 0
	rec.Username = username
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isFKViolation(err) {
			return 0, domain.ErrUserNotFound
		}
		return 0, domain.Storage("add detection record", err)
	}
	return rec.ID, nil
}

func (r *HistoryRepo) ListDetectionRecords(ctx context.Context, username string) ([]domain.DetectionRecord, error) {
	out := []domain.DetectionRecord{}
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("detection_date DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, domain.Storage("list detection records", err)
	}
	return out, nil
}
