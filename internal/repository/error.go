package repository

import (
	"context"

	"github.com/linskybing/regscan/internal/domain/scanerror"
	"github.com/linskybing/regscan/pkg/utils"
	"gorm.io/gorm"
)

type ErrorRepo interface {
	Append(ctx context.Context, repositoryName, message string) (*scanerror.ErrorRecord, error)
	List(ctx context.Context, limit int) ([]scanerror.ErrorRecord, error)
	Count(ctx context.Context) (int64, error)
	WithTx(tx *gorm.DB) ErrorRepo
}

type DBErrorRepo struct {
	db *gorm.DB
}

func NewErrorRepo(db *gorm.DB) *DBErrorRepo {
	return &DBErrorRepo{
		db: db,
	}
}

// Append records a scan failure stamped with the current time. An empty
// repository name is stored as "unknown".
func (r *DBErrorRepo) Append(ctx context.Context, repositoryName, message string) (*scanerror.ErrorRecord, error) {
	if repositoryName == "" {
		repositoryName = scanerror.UnknownRepository
	}
	rec := &scanerror.ErrorRecord{
		RepositoryName: repositoryName,
		ErrorMessage:   message,
		Timestamp:      utils.NowISO(),
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the newest records first. A limit of zero or less returns all.
func (r *DBErrorRepo) List(ctx context.Context, limit int) ([]scanerror.ErrorRecord, error) {
	var recs []scanerror.ErrorRecord
	q := r.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&recs).Error
	return recs, err
}

func (r *DBErrorRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&scanerror.ErrorRecord{}).Count(&n).Error
	return n, err
}

func (r *DBErrorRepo) WithTx(tx *gorm.DB) ErrorRepo {
	if tx == nil {
		return r
	}
	return &DBErrorRepo{
		db: tx,
	}
}
