package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"agro-advisor/internal/domain"
	"agro-advisor/internal/feature/imagestore"
	"agro-advisor/internal/repo"
)

func TestAccount_ProfileAndAdminPaths(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustRegister(t, "ravi", "harvest2024", "ravi@farm.in")
	f.mustRegister(t, "asha", "harvest2024", "asha@farm.in")

	images := imagestore.NewLocal(t.TempDir())
	a := NewAccountService(f.users, images, nil)
	ravi := &domain.SessionUser{Username: "ravi", Role: domain.RoleUser}
	root := &domain.SessionUser{Username: "root", Role: domain.RoleAdmin}

	size, loc := 8.0, "Nashik"
	s, err := a.UpdateProfile(ctx, ravi, domain.ProfileUpdate{FarmSize: &size, Location: &loc})
	if err != nil || s.FarmSize != 8 || s.Location != "Nashik" {
		t.Fatalf("UpdateProfile = %+v, %v", s, err)
	}
	neg := -2.0
	if _, err := a.UpdateProfile(ctx, ravi, domain.ProfileUpdate{FarmSize: &neg}); !errors.Is(err, domain.ErrInvalidFarmSize) {
		t.Fatalf("negative farm error = %v", err)
	}

	if _, err := a.List(ctx, ravi); !errors.Is(err, domain.ErrInsufficientPrivilege) {
		t.Fatalf("List by user error = %v", err)
	}
	all, err := a.List(ctx, root)
	if err != nil || len(all) != 2 {
		t.Fatalf("List by admin = %d, %v", len(all), err)
	}

	if _, err := a.Delete(ctx, ravi, "asha"); !errors.Is(err, domain.ErrInsufficientPrivilege) {
		t.Fatalf("Delete by user error = %v", err)
	}

	path, err := images.Save(ctx, []byte("img"), "asha")
	if err != nil {
		t.Fatal(err)
	}
	hist := repo.NewHistoryRepo(f.db)
	if _, err := hist.AddCropRecord(ctx, "asha", &domain.CropRecord{Crop: "Gram", PlantedDate: "2023-11-02"}); err != nil {
		t.Fatal(err)
	}

	ok, err := a.Delete(ctx, root, "asha")
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Fatalf("image dir still present: %v", err)
	}
	if recs, _ := hist.ListCropRecords(ctx, "asha"); len(recs) != 0 {
		t.Fatalf("history not cascaded: %d", len(recs))
	}
	if _, err := a.Get(ctx, "asha"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("Get deleted user error = %v", err)
	}
	ok, err = a.Delete(ctx, root, "asha")
	if err != nil || ok {
		t.Fatalf("second Delete = %v, %v", ok, err)
	}
}
