package repository

import (
	"context"

	"github.com/linskybing/regscan/internal/domain/repo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RepositoryRepo interface {
	Upsert(ctx context.Context, r *repo.Repository) error
	FindByName(ctx context.Context, name string) (*repo.Repository, error)
	ListWithImageCount(ctx context.Context) ([]repo.RepositoryWithCount, error)
	Count(ctx context.Context) (int64, error)
	WithTx(tx *gorm.DB) RepositoryRepo
}

type DBRepositoryRepo struct {
	db *gorm.DB
}

func NewRepositoryRepo(db *gorm.DB) *DBRepositoryRepo {
	return &DBRepositoryRepo{
		db: db,
	}
}

// Upsert inserts the repository or replaces every column of the existing row.
func (r *DBRepositoryRepo) Upsert(ctx context.Context, rec *repo.Repository) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "repository_name"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

func (r *DBRepositoryRepo) FindByName(ctx context.Context, name string) (*repo.Repository, error) {
	var rec repo.Repository
	if err := r.db.WithContext(ctx).Where("repository_name = ?", name).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DBRepositoryRepo) ListWithImageCount(ctx context.Context) ([]repo.RepositoryWithCount, error) {
	var rows []repo.RepositoryWithCount
	err := r.db.WithContext(ctx).
		Table("repositories AS r").
		Select("r.repository_name, r.repository_uri, r.created_at, r.last_updated, r.region, COUNT(i.id) AS image_count").
		Joins("LEFT JOIN images i ON i.repository_name = r.repository_name").
		Group("r.repository_name, r.repository_uri, r.created_at, r.last_updated, r.region").
		Order("r.repository_name").
		Scan(&rows).Error
	return rows, err
}

func (r *DBRepositoryRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&repo.Repository{}).Count(&n).Error
	return n, err
}

func (r *DBRepositoryRepo) WithTx(tx *gorm.DB) RepositoryRepo {
	if tx == nil {
		return r
	}
	return &DBRepositoryRepo{
		db: tx,
	}
}
