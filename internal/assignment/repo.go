package assignment

import (
	"context"
	"fmt"

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

func (r *Repo) Create(ctx context.Context, a *Assignment) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(a).Error
}

func (r *Repo) Save(ctx context.Context, a *Assignment) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(a).Error
}

func (r *Repo) FindByID(ctx context.Context, id uint) (*Assignment, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var a Assignment
	if err := db.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAll 全量扫描，按 id 排序：报表的确定性连接（取最小 id）依赖该顺序。
func (r *Repo) ListAll(ctx context.Context) ([]Assignment, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var as []Assignment
	if err := db.Order("id").Find(&as).Error; err != nil {
		return nil, err
	}
	return as, nil
}

func (r *Repo) Delete(ctx context.Context, id uint) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	res := db.Delete(&Assignment{}, id)
	return res.RowsAffected, res.Error
}
