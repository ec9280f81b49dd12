package vehicle

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/fleetops/fleetops/internal/common/apperr"
	"github.com/fleetops/fleetops/internal/common/dates"
)

// Service 封装车辆聚合的核心用例（不依赖 HTTP），创建/编辑前的校验都在这里。
// 校验与写入在同一事务内提交：失败时零行落库。
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// VehicleInput 车辆表单入参。数值字段保持字符串形态，解析失败报 InvalidFormat。
type VehicleInput struct {
	PlateNumber     string
	Chassis         string
	VehicleType     string
	Make            string
	Model           string
	Year            string
	FuelType        string
	FuelCapacity    string
	FuelConsumption string
	LoadingCapacity string
	AssignedFor     string
}

// CreateVehicle 新建车辆。车牌/底盘号查重，重复报 DuplicateKey。
func (s *Service) CreateVehicle(ctx context.Context, in VehicleInput) (*Vehicle, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	v, err := buildVehicle(in)
	if err != nil {
		return nil, err
	}
	if v.PlateNumber == "" {
		return nil, apperr.New(apperr.KindInvalidFormat, "plate number is required")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		exists, err := repo.PlateExists(ctx, v.PlateNumber)
		if err != nil {
			return err
		}
		if exists {
			return apperr.New(apperr.KindDuplicateKey, "plate number %s already exists", v.PlateNumber)
		}
		exists, err = repo.ChassisExists(ctx, v.Chassis, "")
		if err != nil {
			return err
		}
		if exists {
			return apperr.New(apperr.KindDuplicateKey, "chassis number %s already exists", v.Chassis)
		}
		return repo.Create(ctx, v)
	})
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return v, nil
}

// UpdateVehicle 编辑车辆。车牌是主键不可改，入参里的车牌被忽略。
func (s *Service) UpdateVehicle(ctx context.Context, plate string, in VehicleInput) (*Vehicle, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	plate = NormalizePlate(plate)

	in.PlateNumber = plate
	updated, err := buildVehicle(in)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		current, err := repo.FindByPlate(ctx, plate)
		if err != nil {
			return err
		}
		exists, err := repo.ChassisExists(ctx, updated.Chassis, plate)
		if err != nil {
			return err
		}
		if exists {
			return apperr.New(apperr.KindDuplicateKey, "chassis number %s already exists", updated.Chassis)
		}
		updated.CreatedAt = current.CreatedAt
		return repo.Save(ctx, updated)
	})
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return updated, nil
}

func (s *Service) DeleteVehicle(ctx context.Context, plate string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("service not initialized")
	}
	plate = NormalizePlate(plate)
	n, err := NewRepo(s.db).Delete(ctx, plate)
	if err != nil {
		return apperr.FromStore(err)
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "vehicle %s not found", plate)
	}
	return nil
}

func (s *Service) GetVehicle(ctx context.Context, plate string) (*Vehicle, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	v, err := NewRepo(s.db).FindByPlate(ctx, NormalizePlate(plate))
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return v, nil
}

func (s *Service) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return NewRepo(s.db).ListAll(ctx)
}

// ComplianceInput 合规表单入参。
type ComplianceInput struct {
	InsuranceType      string
	InsuranceDate      string
	YearlyInspection   string
	InspectionDate     string
	SafetyAudit        string
	UtilizationHistory string
	AccidentHistory    string
}

// UpsertCompliance 保存合规记录。车辆不存在报 ReferentialError；
// 日期/枚举解析失败报 InvalidFormat；此外无领域约束，总是接受。
func (s *Service) UpsertCompliance(ctx context.Context, plate string, in ComplianceInput) (*Compliance, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	plate = NormalizePlate(plate)

	c := &Compliance{
		PlateNumber:        plate,
		UtilizationHistory: in.UtilizationHistory,
		AccidentHistory:    in.AccidentHistory,
	}

	if v := strings.TrimSpace(in.InsuranceType); v != "" {
		c.InsuranceType = InsuranceType(v)
		if !c.InsuranceType.Valid() {
			return nil, apperr.New(apperr.KindInvalidFormat, "invalid insurance type: %s", v)
		}
	}
	if v := strings.TrimSpace(in.YearlyInspection); v != "" {
		c.YearlyInspection = YesNo(v)
		if !c.YearlyInspection.Valid() {
			return nil, apperr.New(apperr.KindInvalidFormat, "invalid yearly inspection flag: %s", v)
		}
	}
	if v := strings.TrimSpace(in.SafetyAudit); v != "" {
		c.SafetyAudit = SafetyRating(v)
		if !c.SafetyAudit.Valid() {
			return nil, apperr.New(apperr.KindInvalidFormat, "invalid safety audit result: %s", v)
		}
	}

	var err error
	if c.InsuranceDate, err = dates.ParseOptional(in.InsuranceDate); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidFormat, err, "insurance date")
	}
	if c.InspectionDate, err = dates.ParseOptional(in.InspectionDate); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidFormat, err, "inspection date")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		exists, err := repo.PlateExists(ctx, plate)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.New(apperr.KindReferential, "vehicle %s not found", plate)
		}
		return repo.SaveCompliance(ctx, c)
	})
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return c, nil
}

func (s *Service) GetCompliance(ctx context.Context, plate string) (*Compliance, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	c, err := NewRepo(s.db).FindCompliance(ctx, NormalizePlate(plate))
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return c, nil
}

// MaintenanceInput 保养表单入参。
type MaintenanceInput struct {
	LastServiceKM     string
	LastServiceDate   string
	NextServiceKM     string
	NextServiceDate   string
	MaintenanceCenter string
}

// AddMaintenance 追加一条保养记录（一车多条）。
func (s *Service) AddMaintenance(ctx context.Context, plate string, in MaintenanceInput) (*Maintenance, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	plate = NormalizePlate(plate)

	m := &Maintenance{PlateNumber: plate}

	var err error
	if m.LastServiceKM, err = parseOptionalInt(in.LastServiceKM); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidFormat, err, "last service km")
	}
	if m.NextServiceKM, err = parseOptionalInt(in.NextServiceKM); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidFormat, err, "next service km")
	}
	if m.LastServiceDate, err = dates.ParseOptional(in.LastServiceDate); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidFormat, err, "last service date")
	}
	if m.NextServiceDate, err = dates.ParseOptional(in.NextServiceDate); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidFormat, err, "next service date")
	}
	if v := strings.TrimSpace(in.MaintenanceCenter); v != "" {
		m.MaintenanceCenter = Center(v)
		if !m.MaintenanceCenter.Valid() {
			return nil, apperr.New(apperr.KindInvalidFormat, "invalid maintenance center: %s", v)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		exists, err := repo.PlateExists(ctx, plate)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.New(apperr.KindReferential, "vehicle %s not found", plate)
		}
		return repo.CreateMaintenance(ctx, m)
	})
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return m, nil
}

func (s *Service) DeleteMaintenance(ctx context.Context, id uint) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("service not initialized")
	}
	n, err := NewRepo(s.db).DeleteMaintenance(ctx, id)
	if err != nil {
		return apperr.FromStore(err)
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "maintenance record %d not found", id)
	}
	return nil
}

func (s *Service) ListMaintenance(ctx context.Context, plate string) ([]Maintenance, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return NewRepo(s.db).ListMaintenanceByPlate(ctx, NormalizePlate(plate))
}

func buildVehicle(in VehicleInput) (*Vehicle, error) {
	v := &Vehicle{
		PlateNumber:     NormalizePlate(in.PlateNumber),
		Chassis:         strings.TrimSpace(in.Chassis),
		Make:            strings.TrimSpace(in.Make),
		Model:           strings.TrimSpace(in.Model),
		Year:            strings.TrimSpace(in.Year),
		LoadingCapacity: strings.TrimSpace(in.LoadingCapacity),
	}
	if v.Chassis == "" {
		return nil, apperr.New(apperr.KindInvalidFormat, "chassis number is required")
	}

	if t := strings.TrimSpace(in.VehicleType); t != "" {
		v.VehicleType = VehicleType(t)
		if !v.VehicleType.Valid() {
			return nil, apperr.New(apperr.KindInvalidFormat, "invalid vehicle type: %s", t)
		}
	}
	if t := strings.TrimSpace(in.FuelType); t != "" {
		v.FuelType = FuelType(t)
		if !v.FuelType.Valid() {
			return nil, apperr.New(apperr.KindInvalidFormat, "invalid fuel type: %s", t)
		}
	}
	if t := strings.TrimSpace(in.AssignedFor); t != "" {
		v.AssignedFor = AssignedFor(t)
		if !v.AssignedFor.Valid() {
			return nil, apperr.New(apperr.KindInvalidFormat, "invalid assigned-for category: %s", t)
		}
	}

	var err error
	if v.FuelCapacity, err = parseOptionalFloat(in.FuelCapacity); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidFormat, err, "fuel capacity")
	}
	if v.FuelConsumption, err = parseOptionalFloat(in.FuelConsumption); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidFormat, err, "fuel consumption")
	}
	return v, nil
}

// parseOptionalFloat 空串视为 0。
func parseOptionalFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

func parseOptionalInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}
