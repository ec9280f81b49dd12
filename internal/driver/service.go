package driver

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/fleetops/fleetops/internal/common/apperr"
)

// Service 司机档案用例。证件号查重与写入在同一事务内提交。
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DriverInput 司机表单入参。
type DriverInput struct {
	Name        string
	IDNumber    string
	Phone       string
	ReportingTo string
}

func (s *Service) CreateDriver(ctx context.Context, in DriverInput) (*Driver, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	d, err := buildDriver(in)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		if d.IDNumber != "" {
			exists, err := repo.IDNumberExists(ctx, d.IDNumber, 0)
			if err != nil {
				return err
			}
			if exists {
				return apperr.New(apperr.KindDuplicateKey, "driver id number %s already exists", d.IDNumber)
			}
		}
		return repo.Create(ctx, d)
	})
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return d, nil
}

func (s *Service) UpdateDriver(ctx context.Context, id uint, in DriverInput) (*Driver, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	updated, err := buildDriver(in)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if updated.IDNumber != "" {
			exists, err := repo.IDNumberExists(ctx, updated.IDNumber, id)
			if err != nil {
				return err
			}
			if exists {
				return apperr.New(apperr.KindDuplicateKey, "driver id number %s already exists", updated.IDNumber)
			}
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

func (s *Service) DeleteDriver(ctx context.Context, id uint) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("service not initialized")
	}
	n, err := NewRepo(s.db).Delete(ctx, id)
	if err != nil {
		return apperr.FromStore(err)
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "driver %d not found", id)
	}
	return nil
}

func (s *Service) GetDriver(ctx context.Context, id uint) (*Driver, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	d, err := NewRepo(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return d, nil
}

// FindByIDNumber / SearchByName 供基础检索报表使用。
func (s *Service) FindByIDNumber(ctx context.Context, idNumber string) (*Driver, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	d, err := NewRepo(s.db).FindByIDNumber(ctx, strings.TrimSpace(idNumber))
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return d, nil
}

func (s *Service) SearchByName(ctx context.Context, name string) (*Driver, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	d, err := NewRepo(s.db).SearchByName(ctx, name)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return d, nil
}

func buildDriver(in DriverInput) (*Driver, error) {
	d := &Driver{
		Name:        strings.TrimSpace(in.Name),
		IDNumber:    strings.TrimSpace(in.IDNumber),
		Phone:       strings.TrimSpace(in.Phone),
		ReportingTo: strings.TrimSpace(in.ReportingTo),
	}
	if d.Name == "" {
		return nil, apperr.New(apperr.KindInvalidFormat, "driver name is required")
	}
	return d, nil
}
