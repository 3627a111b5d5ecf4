package medicalinfo

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/healthcare/medinfo/internal/platform/db"
)

func newSQLiteRepo(t *testing.T) MedicalInfoRepository {
	t.Helper()
	sqlDB, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	repo, err := NewMedicalInfoRepoSQLite(context.Background(), sqlDB)
	if err != nil {
		t.Fatalf("NewMedicalInfoRepoSQLite: %v", err)
	}
	return repo
}

func TestSQLiteRepo_RoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	in := &Record{
		Class:                 ClassName,
		Owner:                 strPtr("p1"),
		MedID:                 strPtr("m1"),
		PastVisitsArray:       []string{"v1", "v2"},
		PermissionedDoctorsID: nil,
	}
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByMedID(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByMedID: %v", err)
	}
	if got.Class != ClassName || strVal(got.Owner) != "p1" || got.Medication != nil {
		t.Errorf("unexpected record %+v", got)
	}
	if !slices.Equal(got.PastVisitsArray, []string{"v1", "v2"}) || got.PermissionedDoctorsID != nil {
		t.Errorf("unexpected sequences %+v", got)
	}
}

func TestSQLiteRepo_Errors(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	repo.Create(ctx, &Record{MedID: strPtr("m1")})

	if err := repo.Create(ctx, &Record{MedID: strPtr("m1")}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
	if _, err := repo.GetByMedID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found on get, got %v", err)
	}
	if err := repo.Update(ctx, &Record{MedID: strPtr("missing")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found on update, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found on delete, got %v", err)
	}
}

func TestSQLiteRepo_UpdateAndListOrder(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		if err := repo.Create(ctx, &Record{MedID: strPtr(id)}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	if err := repo.Update(ctx, &Record{MedID: strPtr("a"), Medication: strPtr("aspirin")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.Delete(ctx, "c"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := ids(items); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("expected insertion order [a b], got %v", got)
	}
	if strVal(items[0].Medication) != "aspirin" {
		t.Errorf("expected updated medication, got %+v", items[0])
	}
}
