package driver

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, d *Driver) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(d).Error
}

func (r *Repo) Save(ctx context.Context, d *Driver) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(d).Error
}

func (r *Repo) FindByID(ctx context.Context, id uint) (*Driver, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var d Driver
	if err := db.First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByIDNumber 按证件号精确查找（报表检索用）。
func (r *Repo) FindByIDNumber(ctx context.Context, idNumber string) (*Driver, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var d Driver
	if err := db.Where("id_number = ?", idNumber).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// SearchByName 按姓名子串查找（不区分大小写），返回首个匹配。
func (r *Repo) SearchByName(ctx context.Context, name string) (*Driver, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var d Driver
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	if err := db.Where("LOWER(name) LIKE ?", pattern).Order("id").First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// IDNumberExists 证件号查重；excludeID 非零时排除指定司机（编辑自身）。
func (r *Repo) IDNumberExists(ctx context.Context, idNumber string, excludeID uint) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	q := db.Model(&Driver{}).Where("id_number = ?", idNumber)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// DriverExists 实现 assignment 包的 DriverDirectory。
func (r *Repo) DriverExists(ctx context.Context, id uint) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var n int64
	if err := db.Model(&Driver{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListAll 全量扫描，按 id 排序保证报表行序稳定。
func (r *Repo) ListAll(ctx context.Context) ([]Driver, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var ds []Driver
	if err := db.Order("id").Find(&ds).Error; err != nil {
		return nil, err
	}
	return ds, nil
}

func (r *Repo) CountAll(ctx context.Context) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var n int64
	if err := db.Model(&Driver{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) Delete(ctx context.Context, id uint) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	res := db.Delete(&Driver{}, id)
	return res.RowsAffected, res.Error
}
