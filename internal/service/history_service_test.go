package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"agro-advisor/internal/domain"
	"agro-advisor/internal/repo"
)

func newHistory(t *testing.T) *HistoryService {
	t.Helper()
	db := openTestDB(t)
	seedUsers(t, db, "ravi", "asha")
	return NewHistoryService(repo.NewHistoryRepo(db))
}

func TestHistory_CropRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHistory(t)

	id, err := h.AddCropRecord(ctx, "ravi", domain.CropRecord{
		Crop: "Wheat", PlantedDate: "2024-01-15", HarvestedDate: "2024-04-20", YieldAmount: 4.2, Notes: "good",
	})
	if err != nil || id == 0 {
		t.Fatalf("AddCropRecord = %d, %v", id, err)
	}
	recs, err := h.ListCropRecords(ctx, "ravi")
	if err != nil || len(recs) != 1 {
		t.Fatalf("ListCropRecords = %v, %v", recs, err)
	}
	r := recs[0]
	if r.ID != id || r.Crop != "Wheat" || r.YieldAmount != 4.2 || r.HarvestedDate != "2024-04-20" {
		t.Fatalf("record = %+v", r)
	}
	if other, _ := h.ListCropRecords(ctx, "asha"); len(other) != 0 {
		t.Fatalf("records leaked across users: %v", other)
	}
}

func TestHistory_InvalidCropRecords(t *testing.T) {
	h := newHistory(t)
	for name, rec := range map[string]domain.CropRecord{
		"no crop":         {PlantedDate: "2024-01-15"},
		"bad planted":     {Crop: "Wheat", PlantedDate: "15/01/2024"},
		"harvest first":   {Crop: "Wheat", PlantedDate: "2024-04-20", HarvestedDate: "2024-01-15"},
		"bad harvest":     {Crop: "Wheat", PlantedDate: "2024-01-15", HarvestedDate: "soon"},
		"negative yield":  {Crop: "Wheat", PlantedDate: "2024-01-15", YieldAmount: -1},
		"whitespace crop": {Crop: "   ", PlantedDate: "2024-01-15"},
	} {
		if _, err := h.AddCropRecord(context.Background(), "ravi", rec); !errors.Is(err, domain.ErrInvalidRecord) {
			t.Errorf("%s: error = %v", name, err)
		}
	}
}

func TestHistory_CropStats(t *testing.T) {
	ctx := context.Background()
	h := newHistory(t)

	st, err := h.CropStats(ctx, "ravi")
	if err != nil || st != (domain.CropStats{}) {
		t.Fatalf("empty stats = %+v, %v", st, err)
	}
	for _, r := range []domain.CropRecord{
		{Crop: "Rice", PlantedDate: "2023-06-10", YieldAmount: 3},
		{Crop: "Wheat", PlantedDate: "2024-01-15", YieldAmount: 5},
	} {
		if _, err := h.AddCropRecord(ctx, "ravi", r); err != nil {
			t.Fatal(err)
		}
	}
	st, _ = h.CropStats(ctx, "ravi")
	if st.Count != 2 || st.TotalYield != 8 || st.AverageYield != 4 || st.LastCrop != "Wheat" {
		t.Fatalf("stats = %+v", st)
	}
}

func TestHistory_DetectionRecords(t *testing.T) {
	ctx := context.Background()
	h := newHistory(t)
	at := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	h.Now = func() time.Time { return at }

	if _, err := h.AddDetectionRecord(ctx, "ravi", domain.DetectionRecord{DiseaseName: "Leaf Rust", Confidence: 101}); !errors.Is(err, domain.ErrInvalidRecord) {
		t.Fatalf("confidence > 100 error = %v", err)
	}
	if _, err := h.AddDetectionRecord(ctx, "ravi", domain.DetectionRecord{Confidence: 50}); !errors.Is(err, domain.ErrInvalidRecord) {
		t.Fatalf("missing name error = %v", err)
	}
	if _, err := h.AddDetectionRecord(ctx, "ravi", domain.DetectionRecord{DiseaseName: "Leaf Rust", Confidence: 78}); err != nil {
		t.Fatal(err)
	}
	recs, _ := h.ListDetectionRecords(ctx, "ravi")
	if len(recs) != 1 || !recs[0].DetectionDate.Equal(at) {
		t.Fatalf("records = %+v", recs)
	}
}

func TestCropHistoryXLSX(t *testing.T) {
	b, err := CropHistoryXLSX([]domain.CropRecord{
		{Crop: "Wheat", PlantedDate: "2024-01-15", HarvestedDate: "2024-04-20", YieldAmount: 4.2},
		{Crop: "Rice", PlantedDate: "2023-06-10"},
	})
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(cropSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != "Crop" || rows[1][0] != "Wheat" || rows[1][3] != "4.2" || rows[2][0] != "Rice" {
		t.Fatalf("rows = %v", rows)
	}
}
