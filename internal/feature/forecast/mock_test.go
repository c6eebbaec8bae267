package forecast

import (
	"context"
	"testing"
	"time"
)

func TestMock_Fetch(t *testing.T) {
	day := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	m := &Mock{Now: func() time.Time { return day }}

	f, err := m.Fetch(context.Background(), "Pune")
	if err != nil {
		t.Fatalf("Fetch error = %v", err)
	}
	if len(f.Daily) != Days {
		t.Fatalf("len(Daily) = %d, want %d", len(f.Daily), Days)
	}
	if f.Daily[0].Date != "2024-06-01" || f.Daily[6].Date != "2024-06-07" {
		t.Fatalf("unexpected dates: %s .. %s", f.Daily[0].Date, f.Daily[6].Date)
	}
	if f.Temp < 15 || f.Temp > 30 {
		t.Errorf("Temp = %v, want within 15..30", f.Temp)
	}
	if f.Humidity < 40 || f.Humidity > 80 {
		t.Errorf("Humidity = %v, want within 40..80", f.Humidity)
	}

	again, _ := m.Fetch(context.Background(), "  pune ")
	if again.Temp != f.Temp || again.Humidity != f.Humidity {
		t.Errorf("same location and day should give the same forecast")
	}
}

func TestMock_FetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMock().Fetch(ctx, "Pune"); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
