package repository

import (
	"context"

	"github.com/linskybing/regscan/internal/domain/scan"
	"gorm.io/gorm"
)

type ScanRepo interface {
	Create(ctx context.Context, s *scan.Scan) error
	Update(ctx context.Context, s *scan.Scan) error
	FindByID(ctx context.Context, id uint) (*scan.Scan, error)
	List(ctx context.Context, limit int) ([]scan.Scan, error)
	Latest(ctx context.Context) (*scan.Scan, error)
	WithTx(tx *gorm.DB) ScanRepo
}

type DBScanRepo struct {
	db *gorm.DB
}

func NewScanRepo(db *gorm.DB) *DBScanRepo {
	return &DBScanRepo{
		db: db,
	}
}

func (r *DBScanRepo) Create(ctx context.Context, s *scan.Scan) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *DBScanRepo) Update(ctx context.Context, s *scan.Scan) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *DBScanRepo) FindByID(ctx context.Context, id uint) (*scan.Scan, error) {
	var s scan.Scan
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns scans newest first. A limit of zero or less returns all.
func (r *DBScanRepo) List(ctx context.Context, limit int) ([]scan.Scan, error) {
	var scans []scan.Scan
	q := r.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&scans).Error
	return scans, err
}

// Latest returns the most recent scan, or gorm.ErrRecordNotFound.
func (r *DBScanRepo) Latest(ctx context.Context) (*scan.Scan, error) {
	var s scan.Scan
	if err := r.db.WithContext(ctx).Order("id DESC").First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *DBScanRepo) WithTx(tx *gorm.DB) ScanRepo {
	if tx == nil {
		return r
	}
	return &DBScanRepo{
		db: tx,
	}
}
