package driver

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fleetops/fleetops/internal/common/apperr"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Driver{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreateDriverAssignsStableID(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	a, err := s.CreateDriver(ctx, DriverInput{Name: "Abebe Kebede", IDNumber: "ID-001", Phone: "0911000001"})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := s.CreateDriver(ctx, DriverInput{Name: "Marta Hailu", IDNumber: "ID-002"})
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if a.ID == 0 || b.ID <= a.ID {
		t.Fatalf("ids must be assigned and increasing, got %d then %d", a.ID, b.ID)
	}

	got, err := s.GetDriver(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetDriver: %v", err)
	}
	if got.Name != "Abebe Kebede" || got.Phone != "0911000001" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCreateDriverDuplicateIDNumber(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	first, err := s.CreateDriver(ctx, DriverInput{Name: "Abebe Kebede", IDNumber: "ID-001"})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err = s.CreateDriver(ctx, DriverInput{Name: "Someone Else", IDNumber: "ID-001"})
	if !apperr.IsKind(err, apperr.KindDuplicateKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	// 失败的创建不得影响已有行
	got, err := s.GetDriver(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetDriver: %v", err)
	}
	if got.Name != "Abebe Kebede" {
		t.Fatalf("existing row changed: %+v", got)
	}
}

func TestUpdateDriverKeepsOwnIDNumber(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	a, err := s.CreateDriver(ctx, DriverInput{Name: "Abebe Kebede", IDNumber: "ID-001"})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := s.CreateDriver(ctx, DriverInput{Name: "Marta Hailu", IDNumber: "ID-002"}); err != nil {
		t.Fatalf("create b: %v", err)
	}

	// 改回自己的证件号不算重复
	if _, err := s.UpdateDriver(ctx, a.ID, DriverInput{Name: "Abebe K.", IDNumber: "ID-001"}); err != nil {
		t.Fatalf("self update: %v", err)
	}
	// 抢占他人证件号要报重复
	if _, err := s.UpdateDriver(ctx, a.ID, DriverInput{Name: "Abebe K.", IDNumber: "ID-002"}); !apperr.IsKind(err, apperr.KindDuplicateKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestCreateDriverRequiresName(t *testing.T) {
	s := NewService(setupDB(t))
	if _, err := s.CreateDriver(context.Background(), DriverInput{Name: "   ", IDNumber: "ID-001"}); !apperr.IsKind(err, apperr.KindInvalidFormat) {
		t.Fatalf("expected invalid format error, got %v", err)
	}
}

func TestDriverLookups(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	if _, err := s.CreateDriver(ctx, DriverInput{Name: "Abebe Kebede", IDNumber: "ID-001"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	d, err := s.FindByIDNumber(ctx, " ID-001 ")
	if err != nil {
		t.Fatalf("FindByIDNumber: %v", err)
	}
	if d.Name != "Abebe Kebede" {
		t.Fatalf("unexpected driver: %+v", d)
	}

	d, err = s.SearchByName(ctx, "abebe")
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if d.IDNumber != "ID-001" {
		t.Fatalf("unexpected driver: %+v", d)
	}

	if _, err := s.FindByIDNumber(ctx, "ID-404"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteDriverNotFound(t *testing.T) {
	s := NewService(setupDB(t))
	if err := s.DeleteDriver(context.Background(), 42); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
