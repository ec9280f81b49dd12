package vehicle

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
	if err := db.AutoMigrate(&Vehicle{}, &Compliance{}, &Maintenance{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func validInput() VehicleInput {
	return VehicleInput{
		PlateNumber:     "AA1234B",
		Chassis:         "CH-0001",
		VehicleType:     "Pickup",
		Make:            "Toyota",
		Model:           "Hilux",
		Year:            "2020",
		FuelType:        "Diesel",
		FuelCapacity:    "80",
		FuelConsumption: "9.5",
		AssignedFor:     "Project",
	}
}

func TestCreateVehicleNormalizesPlate(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	in := validInput()
	in.PlateNumber = "  aa1234b  "
	v, err := s.CreateVehicle(ctx, in)
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	if v.PlateNumber != "AA1234B" {
		t.Fatalf("expected normalized plate AA1234B, got %q", v.PlateNumber)
	}

	// 任何空白/大小写形态的车牌都应命中同一行
	got, err := s.GetVehicle(ctx, " Aa1234b ")
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if got.Chassis != "CH-0001" || got.FuelCapacity != 80 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCreateVehicleDuplicatePlate(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	if _, err := s.CreateVehicle(ctx, validInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	dup := validInput()
	dup.PlateNumber = "aa1234b" // 规范化后与已有车牌相同
	dup.Chassis = "CH-0002"
	_, err := s.CreateVehicle(ctx, dup)
	if !apperr.IsKind(err, apperr.KindDuplicateKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	vs, err := s.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("ListVehicles: %v", err)
	}
	if len(vs) != 1 {
		t.Fatalf("failed create must not write, have %d rows", len(vs))
	}
}

func TestCreateVehicleDuplicateChassis(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	if _, err := s.CreateVehicle(ctx, validInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	dup := validInput()
	dup.PlateNumber = "BB5678C"
	_, err := s.CreateVehicle(ctx, dup)
	if !apperr.IsKind(err, apperr.KindDuplicateKey) {
		t.Fatalf("expected duplicate key error for chassis, got %v", err)
	}
}

func TestCreateVehicleRejectsBadInput(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*VehicleInput)
	}{
		{"missing chassis", func(in *VehicleInput) { in.Chassis = "" }},
		{"unknown vehicle type", func(in *VehicleInput) { in.VehicleType = "Sedan" }},
		{"unknown fuel type", func(in *VehicleInput) { in.FuelType = "Coal" }},
		{"unknown assigned-for", func(in *VehicleInput) { in.AssignedFor = "Branch" }},
		{"bad fuel capacity", func(in *VehicleInput) { in.FuelCapacity = "eighty" }},
	}
	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		if _, err := s.CreateVehicle(ctx, in); !apperr.IsKind(err, apperr.KindInvalidFormat) {
			t.Fatalf("%s: expected invalid format error, got %v", tc.name, err)
		}
	}
}

func TestUpdateVehiclePlateImmutable(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	if _, err := s.CreateVehicle(ctx, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}

	in := validInput()
	in.PlateNumber = "ZZ9999Z" // 入参里的车牌被忽略
	in.Model = "Land Cruiser"
	v, err := s.UpdateVehicle(ctx, "AA1234B", in)
	if err != nil {
		t.Fatalf("UpdateVehicle: %v", err)
	}
	if v.PlateNumber != "AA1234B" || v.Model != "Land Cruiser" {
		t.Fatalf("unexpected update result: %+v", v)
	}

	if _, err := s.GetVehicle(ctx, "ZZ9999Z"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("plate must not change, got %v", err)
	}
}

func TestUpdateVehicleNotFound(t *testing.T) {
	s := NewService(setupDB(t))
	if _, err := s.UpdateVehicle(context.Background(), "XX0000X", validInput()); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteVehicleNotFound(t *testing.T) {
	s := NewService(setupDB(t))
	if err := s.DeleteVehicle(context.Background(), "XX0000X"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpsertComplianceReferentialAndOverwrite(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	in := ComplianceInput{
		InsuranceType:    "Fully Insured",
		InsuranceDate:    "2025-06-01",
		YearlyInspection: "Yes",
		InspectionDate:   "2025-06-01",
		SafetyAudit:      "Safe",
	}
	if _, err := s.UpsertCompliance(ctx, "AA1234B", in); !apperr.IsKind(err, apperr.KindReferential) {
		t.Fatalf("expected referential error before vehicle exists, got %v", err)
	}

	if _, err := s.CreateVehicle(ctx, validInput()); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	if _, err := s.UpsertCompliance(ctx, "aa1234b", in); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// 重复保存是覆盖，不追加
	in.SafetyAudit = "Fair"
	if _, err := s.UpsertCompliance(ctx, "AA1234B", in); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	c, err := s.GetCompliance(ctx, "AA1234B")
	if err != nil {
		t.Fatalf("GetCompliance: %v", err)
	}
	if c.SafetyAudit != SafetyFair {
		t.Fatalf("expected overwritten safety audit, got %s", c.SafetyAudit)
	}
}

func TestUpsertComplianceRejectsBadFields(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()
	if _, err := s.CreateVehicle(ctx, validInput()); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	if _, err := s.UpsertCompliance(ctx, "AA1234B", ComplianceInput{YearlyInspection: "Maybe"}); !apperr.IsKind(err, apperr.KindInvalidFormat) {
		t.Fatalf("expected invalid format for enum, got %v", err)
	}
	if _, err := s.UpsertCompliance(ctx, "AA1234B", ComplianceInput{InsuranceDate: "01/06/2025"}); !apperr.IsKind(err, apperr.KindInvalidFormat) {
		t.Fatalf("expected invalid format for date, got %v", err)
	}
}

func TestAddMaintenanceAppendsPerVehicle(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	in := MaintenanceInput{NextServiceDate: "2025-09-01", MaintenanceCenter: "Moenco"}
	if _, err := s.AddMaintenance(ctx, "AA1234B", in); !apperr.IsKind(err, apperr.KindReferential) {
		t.Fatalf("expected referential error, got %v", err)
	}

	if _, err := s.CreateVehicle(ctx, validInput()); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	if _, err := s.AddMaintenance(ctx, "AA1234B", in); err != nil {
		t.Fatalf("first record: %v", err)
	}
	in.NextServiceDate = "2025-12-01"
	if _, err := s.AddMaintenance(ctx, "AA1234B", in); err != nil {
		t.Fatalf("second record: %v", err)
	}

	ms, err := s.ListMaintenance(ctx, "AA1234B")
	if err != nil {
		t.Fatalf("ListMaintenance: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("expected 2 maintenance records, got %d", len(ms))
	}

	if err := s.DeleteMaintenance(ctx, ms[0].ID); err != nil {
		t.Fatalf("DeleteMaintenance: %v", err)
	}
	if err := s.DeleteMaintenance(ctx, ms[0].ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestAddMaintenanceRejectsBadFields(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()
	if _, err := s.CreateVehicle(ctx, validInput()); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	if _, err := s.AddMaintenance(ctx, "AA1234B", MaintenanceInput{NextServiceKM: "soon"}); !apperr.IsKind(err, apperr.KindInvalidFormat) {
		t.Fatalf("expected invalid format for km, got %v", err)
	}
	if _, err := s.AddMaintenance(ctx, "AA1234B", MaintenanceInput{MaintenanceCenter: "Garage"}); !apperr.IsKind(err, apperr.KindInvalidFormat) {
		t.Fatalf("expected invalid format for center, got %v", err)
	}
}
