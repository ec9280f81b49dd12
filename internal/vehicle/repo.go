package vehicle

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repo 车辆聚合的存储访问：vehicles / compliances / maintenances 三张表。
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

func (r *Repo) Create(ctx context.Context, v *Vehicle) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(v).Error
}

func (r *Repo) Save(ctx context.Context, v *Vehicle) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(v).Error
}

func (r *Repo) FindByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
	if err := db.Where("plate_number = ?", plate).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// PlateExists 实现 assignment 包的 VehicleDirectory。
func (r *Repo) PlateExists(ctx context.Context, plate string) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var n int64
	if err := db.Model(&Vehicle{}).Where("plate_number = ?", plate).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ChassisExists 底盘号查重；excludePlate 非空时排除指定车辆（编辑自身）。
func (r *Repo) ChassisExists(ctx context.Context, chassis, excludePlate string) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	q := db.Model(&Vehicle{}).Where("chassis = ?", chassis)
	if excludePlate != "" {
		q = q.Where("plate_number <> ?", excludePlate)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListAll 全量扫描（报表快照用）。扫描顺序固定为主键序。
func (r *Repo) ListAll(ctx context.Context) ([]Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var vs []Vehicle
	if err := db.Order("plate_number").Find(&vs).Error; err != nil {
		return nil, err
	}
	return vs, nil
}

func (r *Repo) CountAll(ctx context.Context) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var n int64
	if err := db.Model(&Vehicle{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// AssignedForCount 按用途类别分组计数的一行。
type AssignedForCount struct {
	AssignedFor AssignedFor
	Count       int64
}

// CountByAssignedFor 按 assigned_for 分组计数，按类别名排序保证稳定输出。
func (r *Repo) CountByAssignedFor(ctx context.Context) ([]AssignedForCount, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rows []AssignedForCount
	err := db.Model(&Vehicle{}).
		Select("assigned_for, count(*) as count").
		Group("assigned_for").
		Order("assigned_for").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) Delete(ctx context.Context, plate string) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	res := db.Where("plate_number = ?", plate).Delete(&Vehicle{})
	return res.RowsAffected, res.Error
}

// --- Compliance ---

func (r *Repo) FindCompliance(ctx context.Context, plate string) (*Compliance, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Compliance
	if err := db.Where("plate_number = ?", plate).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCompliance 按主键 upsert：一车至多一条合规记录。
func (r *Repo) SaveCompliance(ctx context.Context, c *Compliance) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(c).Error
}

func (r *Repo) ListAllCompliance(ctx context.Context) ([]Compliance, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var cs []Compliance
	if err := db.Order("plate_number").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

// --- Maintenance ---

func (r *Repo) CreateMaintenance(ctx context.Context, m *Maintenance) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(m).Error
}

func (r *Repo) ListMaintenanceByPlate(ctx context.Context, plate string) ([]Maintenance, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var ms []Maintenance
	if err := db.Where("plate_number = ?", plate).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

func (r *Repo) ListAllMaintenance(ctx context.Context) ([]Maintenance, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var ms []Maintenance
	if err := db.Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

func (r *Repo) DeleteMaintenance(ctx context.Context, id uint) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	res := db.Delete(&Maintenance{}, id)
	return res.RowsAffected, res.Error
}
