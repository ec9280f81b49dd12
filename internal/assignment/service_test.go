package assignment

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fleetops/fleetops/internal/common/apperr"
	"github.com/fleetops/fleetops/internal/driver"
	"github.com/fleetops/fleetops/internal/vehicle"
)

// setupService 起一个内存库并预置一辆车（AA1234B）和一名司机。
func setupService(t *testing.T) (*Service, uint) {
	t.Helper()
	// 具名共享内存库：Service 的引用检查与事务写入走不同连接，
	// 匿名 :memory: 会让每个连接各自拿到一个空库。
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&vehicle.Vehicle{}, &driver.Driver{}, &Assignment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	v := &vehicle.Vehicle{PlateNumber: "AA1234B", Chassis: "CH-0001"}
	if err := vehicle.NewRepo(db).Create(ctx, v); err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	d := &driver.Driver{Name: "Abebe Kebede", IDNumber: "ID-001"}
	if err := driver.NewRepo(db).Create(ctx, d); err != nil {
		t.Fatalf("seed driver: %v", err)
	}

	return NewService(db, vehicle.NewRepo(db), driver.NewRepo(db)), d.ID
}

func input(driverID string) AssignmentInput {
	return AssignmentInput{
		PlateNumber: "aa1234b",
		DriverID:    driverID,
		WorkPlace:   "Addis Ababa",
		StartDate:   "2025-01-10",
	}
}

func TestCreateAssignmentOpenEnded(t *testing.T) {
	s, did := setupService(t)
	ctx := context.Background()

	a, err := s.CreateAssignment(ctx, input(itoa(did)))
	if err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	if a.PlateNumber != "AA1234B" {
		t.Fatalf("plate not normalized: %q", a.PlateNumber)
	}
	if a.EndDate != nil {
		t.Fatalf("empty end date must persist as null, got %v", a.EndDate)
	}
	if a.GeofenceViolations != 0 {
		t.Fatalf("violations default to 0, got %d", a.GeofenceViolations)
	}
}

func TestCreateAssignmentReferentialChecks(t *testing.T) {
	s, did := setupService(t)
	ctx := context.Background()

	in := input(itoa(did))
	in.PlateNumber = "ZZ9999Z"
	if _, err := s.CreateAssignment(ctx, in); !apperr.IsKind(err, apperr.KindReferential) {
		t.Fatalf("expected referential error for vehicle, got %v", err)
	}

	in = input("9999")
	if _, err := s.CreateAssignment(ctx, in); !apperr.IsKind(err, apperr.KindReferential) {
		t.Fatalf("expected referential error for driver, got %v", err)
	}

	as, err := s.ListAssignments(ctx)
	if err != nil {
		t.Fatalf("ListAssignments: %v", err)
	}
	if len(as) != 0 {
		t.Fatalf("failed creates must not write, have %d rows", len(as))
	}
}

func TestCreateAssignmentRejectsBadDatesAndCounts(t *testing.T) {
	s, did := setupService(t)
	ctx := context.Background()

	in := input(itoa(did))
	in.StartDate = "10/01/2025"
	if _, err := s.CreateAssignment(ctx, in); !apperr.IsKind(err, apperr.KindInvalidFormat) {
		t.Fatalf("expected invalid format for start date, got %v", err)
	}

	in = input(itoa(did))
	in.EndDate = "2025-01-09" // 早于开始日期
	if _, err := s.CreateAssignment(ctx, in); !apperr.IsKind(err, apperr.KindInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}

	in = input(itoa(did))
	in.EndDate = "2025-01-10" // 同日往返属于合法区间
	if _, err := s.CreateAssignment(ctx, in); err != nil {
		t.Fatalf("same-day assignment must be accepted: %v", err)
	}

	in = input(itoa(did))
	in.GeofenceViolations = "-3"
	if _, err := s.CreateAssignment(ctx, in); !apperr.IsKind(err, apperr.KindInvalidRange) {
		t.Fatalf("expected invalid range for negative count, got %v", err)
	}

	in = input(itoa(did))
	in.GeofenceViolations = "many"
	if _, err := s.CreateAssignment(ctx, in); !apperr.IsKind(err, apperr.KindInvalidFormat) {
		t.Fatalf("expected invalid format for count, got %v", err)
	}
}

func TestUpdateAssignmentReplacesFields(t *testing.T) {
	s, did := setupService(t)
	ctx := context.Background()

	a, err := s.CreateAssignment(ctx, input(itoa(did)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	in := input(itoa(did))
	in.EndDate = "2025-03-01"
	in.GeofenceViolations = "2"
	updated, err := s.UpdateAssignment(ctx, a.ID, in)
	if err != nil {
		t.Fatalf("UpdateAssignment: %v", err)
	}
	if updated.ID != a.ID {
		t.Fatalf("id must be stable, got %d", updated.ID)
	}
	if updated.EndDate == nil || updated.GeofenceViolations != 2 {
		t.Fatalf("fields not replaced: %+v", updated)
	}

	if _, err := s.UpdateAssignment(ctx, 9999, in); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateAssignmentFailedCheckLeavesRow(t *testing.T) {
	s, did := setupService(t)
	ctx := context.Background()

	a, err := s.CreateAssignment(ctx, input(itoa(did)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 引用检查失败的编辑整体回滚，原行保持不变
	in := input("9999")
	in.WorkPlace = "Hawassa"
	if _, err := s.UpdateAssignment(ctx, a.ID, in); !apperr.IsKind(err, apperr.KindReferential) {
		t.Fatalf("expected referential error, got %v", err)
	}

	got, err := s.GetAssignment(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if got.WorkPlace != "Addis Ababa" || got.DriverID != did {
		t.Fatalf("row changed by failed update: %+v", got)
	}
}

func TestDeleteAssignmentNotFound(t *testing.T) {
	s, _ := setupService(t)
	if err := s.DeleteAssignment(context.Background(), 42); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
