package domain

import (
	"context"
	"time"
)

// DateLayout is the layout of planted/harvested date strings.
const DateLayout = "2006-01-02"

type CropRecord struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string  `gorm:"size:64;index;not null" json:"username"`
	Crop          string  `gorm:"size:64;not null" json:"crop"`
	PlantedDate   string  `gorm:"size:10;index" json:"plantedDate"`
	HarvestedDate string  `gorm:"size:10" json:"harvestedDate"`
	YieldAmount   float64 `gorm:"not null;default:0" json:"yieldAmount"`
	Notes         string  `gorm:"size:1024" json:"notes"`
	Owner         *User   `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE" json:"-"`
}

func (CropRecord) TableName() string { return "crop_history" }

type DetectionRecord struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username        string    `gorm:"size:64;index;not null" json:"username"`
	ImagePath       string    `gorm:"size:512" json:"imagePath"`
	DetectionDate   time.Time `gorm:"index" json:"detectionDate"`
	DiseaseName     string    `gorm:"size:128" json:"diseaseName"`
	Confidence      float64   `json:"confidence"`
	TreatmentAdvice string    `gorm:"size:2048" json:"treatmentAdvice"`
	Owner           *User     `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE" json:"-"`
}

func (DetectionRecord) TableName() string { return "disease_history" }

// CropStats summarises a user's crop history.
type CropStats struct {
	Count        int     `json:"count"`
	AverageYield float64 `json:"averageYield"`
	TotalYield   float64 `json:"totalYield"`
	LastCrop     string  `json:"lastCrop"`
}

type HistoryRepository interface {
	AddCropRecord(ctx context.Context, username string, r *CropRecord) (uint, error)
	ListCropRecords(ctx context.Context, username string) ([]CropRecord, error)
	AddDetectionRecord(ctx context.Context, username string, r *DetectionRecord) (uint, error)
	ListDetectionRecords(ctx context.Context, username string) ([]DetectionRecord, error)
}
