package assignment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/fleetops/fleetops/internal/common/apperr"
	"github.com/fleetops/fleetops/internal/common/dates"
	"github.com/fleetops/fleetops/internal/vehicle"
)

// VehicleDirectory 创建/编辑派遣时的车辆存在性检查。
type VehicleDirectory interface {
	PlateExists(ctx context.Context, plate string) (bool, error)
}

// DriverDirectory 创建/编辑派遣时的司机存在性检查。
type DriverDirectory interface {
	DriverExists(ctx context.Context, id uint) (bool, error)
}

// Service 派遣用例。校验与写入在同一事务内提交。
// 只在创建/编辑时做引用检查：
// 之后删除被引用的车辆/司机不会级联保护既有派遣（历史行允许悬挂）。
type Service struct {
	db       *gorm.DB
	vehicles VehicleDirectory
	drivers  DriverDirectory
}

func NewService(db *gorm.DB, vehicles VehicleDirectory, drivers DriverDirectory) *Service {
	return &Service{db: db, vehicles: vehicles, drivers: drivers}
}

// AssignmentInput 派遣表单入参。日期/数值保持字符串形态。
type AssignmentInput struct {
	PlateNumber        string
	DriverID           string
	WorkPlace          string
	StartDate          string
	EndDate            string
	GPSPosition        string
	GeofenceViolations string
}

func (s *Service) CreateAssignment(ctx context.Context, in AssignmentInput) (*Assignment, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	var a *Assignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		a, err = s.buildAssignment(ctx, in)
		if err != nil {
			return err
		}
		return NewRepo(tx).Create(ctx, a)
	})
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return a, nil
}

func (s *Service) UpdateAssignment(ctx context.Context, id uint, in AssignmentInput) (*Assignment, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	var updated *Assignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		updated, err = s.buildAssignment(ctx, in)
		if err != nil {
			return err
		}
		updated.ID = id
		updated.CreatedAt = current.CreatedAt
		return repo.Save(ctx, updated)
	})
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return updated, nil
}

func (s *Service) DeleteAssignment(ctx context.Context, id uint) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("service not initialized")
	}
	n, err := NewRepo(s.db).Delete(ctx, id)
	if err != nil {
		return apperr.FromStore(err)
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "assignment %d not found", id)
	}
	return nil
}

func (s *Service) GetAssignment(ctx context.Context, id uint) (*Assignment, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	a, err := NewRepo(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return a, nil
}

func (s *Service) ListAssignments(ctx context.Context) ([]Assignment, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return NewRepo(s.db).ListAll(ctx)
}

// buildAssignment 解析 + 校验。校验顺序：引用存在性 -> 日期格式 -> 日期区间 -> 数值。
// 任何一步失败都不会产生写入。
func (s *Service) buildAssignment(ctx context.Context, in AssignmentInput) (*Assignment, error) {
	plate := vehicle.NormalizePlate(in.PlateNumber)
	if plate == "" {
		return nil, apperr.New(apperr.KindInvalidFormat, "plate number is required")
	}

	driverID, err := strconv.ParseUint(strings.TrimSpace(in.DriverID), 10, 32)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidFormat, "invalid driver id %q", in.DriverID)
	}

	if s.vehicles != nil {
		exists, err := s.vehicles.PlateExists(ctx, plate)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.New(apperr.KindReferential, "vehicle %s does not exist", plate)
		}
	}
	if s.drivers != nil {
		exists, err := s.drivers.DriverExists(ctx, uint(driverID))
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.New(apperr.KindReferential, "driver %d does not exist", driverID)
		}
	}

	start, err := dates.Parse(in.StartDate)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidFormat, err, "start date")
	}
	end, err := dates.ParseOptional(in.EndDate)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidFormat, err, "end date")
	}
	if end != nil && end.Before(start) {
		return nil, apperr.New(apperr.KindInvalidRange, "end date %s is earlier than start date %s",
			end.Format(dates.Layout), start.Format(dates.Layout))
	}

	violations := 0
	if v := strings.TrimSpace(in.GeofenceViolations); v != "" {
		violations, err = strconv.Atoi(v)
		if err != nil {
			return nil, apperr.New(apperr.KindInvalidFormat, "invalid geofence violation count %q", v)
		}
	}
	if violations < 0 {
		return nil, apperr.New(apperr.KindInvalidRange, "geofence violation count must be non-negative")
	}

	return &Assignment{
		PlateNumber:        plate,
		DriverID:           uint(driverID),
		WorkPlace:          strings.TrimSpace(in.WorkPlace),
		StartDate:          start,
		EndDate:            end,
		GPSPosition:        strings.TrimSpace(in.GPSPosition),
		GeofenceViolations: violations,
	}, nil
}
