package repository

import (
	"context"

	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/domain/repo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// neverPulled is the canonical never-pulled predicate over the images alias "i".
const neverPulled = "(i.last_recorded_pull_time IS NULL OR i.last_recorded_pull_time = '')"

// mergeColumns are the only columns refreshed when an image is seen again.
var mergeColumns = []string{"image_tags", "image_size_in_bytes", "image_pushed_at"}

type ImageRepo interface {
	Upsert(ctx context.Context, img *image.Image) error
	DeleteImages(ctx context.Context, repositoryName string, digests []string) (int64, error)
	FindByRepository(ctx context.Context, repositoryName string) ([]image.Image, error)
	FindByDigest(ctx context.Context, repositoryName, digest string) (*image.Image, error)
	Count(ctx context.Context) (int64, error)
	TotalSize(ctx context.Context) (int64, error)
	TopBySize(ctx context.Context, limit int) ([]repo.RepositorySize, error)
	TopByImageCount(ctx context.Context, limit int) ([]repo.RepositoryImageCount, error)
	NeverPulledByRepository(ctx context.Context, repositoryNames []string) ([]image.NeverPulledSummary, error)
	NeverPulledImages(ctx context.Context, repositoryName, region string) ([]image.Image, error)
	TagsByRepository(ctx context.Context, repositoryName string) (map[string][]string, error)
	WithTx(tx *gorm.DB) ImageRepo
}

type DBImageRepo struct {
	db *gorm.DB
}

func NewImageRepo(db *gorm.DB) *DBImageRepo {
	return &DBImageRepo{
		db: db,
	}
}

// Upsert inserts the image, or on a (repository, digest) conflict refreshes
// only tags, size and pushed-at. Scan status, findings, media types and pull
// time keep the values of the first insert.
func (r *DBImageRepo) Upsert(ctx context.Context, img *image.Image) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "repository_name"}, {Name: "image_digest"}},
			DoUpdates: clause.AssignmentColumns(mergeColumns),
		}).
		Create(img).Error
}

// DeleteImages removes the repository's images whose digest is listed and
// returns how many rows went away. No digests, or no matches, is not an error.
func (r *DBImageRepo) DeleteImages(ctx context.Context, repositoryName string, digests []string) (int64, error) {
	if len(digests) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("repository_name = ? AND image_digest IN ?", repositoryName, digests).
		Delete(&image.Image{})
	return res.RowsAffected, res.Error
}

func (r *DBImageRepo) FindByRepository(ctx context.Context, repositoryName string) ([]image.Image, error) {
	var imgs []image.Image
	err := r.db.WithContext(ctx).
		Where("repository_name = ?", repositoryName).
		Order("id ASC").
		Find(&imgs).Error
	return imgs, err
}

func (r *DBImageRepo) FindByDigest(ctx context.Context, repositoryName, digest string) (*image.Image, error) {
	var img image.Image
	err := r.db.WithContext(ctx).
		Where("repository_name = ? AND image_digest = ?", repositoryName, digest).
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *DBImageRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&image.Image{}).Count(&n).Error
	return n, err
}

func (r *DBImageRepo) TotalSize(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&image.Image{}).
		Select("COALESCE(SUM(image_size_in_bytes), 0)").
		Scan(&total).Error
	return total, err
}

func (r *DBImageRepo) TopBySize(ctx context.Context, limit int) ([]repo.RepositorySize, error) {
	var rows []repo.RepositorySize
	err := r.db.WithContext(ctx).
		Table("images AS i").
		Select("i.repository_name AS repository_name, r.region AS region, SUM(i.image_size_in_bytes) AS total_size").
		Joins("JOIN repositories r ON r.repository_name = i.repository_name").
		Group("i.repository_name, r.region").
		Order("total_size DESC, i.repository_name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *DBImageRepo) TopByImageCount(ctx context.Context, limit int) ([]repo.RepositoryImageCount, error) {
	var rows []repo.RepositoryImageCount
	err := r.db.WithContext(ctx).
		Table("images AS i").
		Select("i.repository_name AS repository_name, r.region AS region, COUNT(i.image_digest) AS image_count").
		Joins("JOIN repositories r ON r.repository_name = i.repository_name").
		Group("i.repository_name, r.region").
		Order("image_count DESC, i.repository_name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// NeverPulledByRepository groups never-pulled images per repository with
// their count and summed size. A non-empty name list restricts the result.
func (r *DBImageRepo) NeverPulledByRepository(ctx context.Context, repositoryNames []string) ([]image.NeverPulledSummary, error) {
	q := r.db.WithContext(ctx).
		Table("images AS i").
		Select("i.repository_name AS repository_name, r.region AS region, COUNT(*) AS image_count, COALESCE(SUM(i.image_size_in_bytes), 0) AS image_size_in_bytes").
		Joins("JOIN repositories r ON r.repository_name = i.repository_name").
		Where(neverPulled)
	if len(repositoryNames) > 0 {
		q = q.Where("i.repository_name IN ?", repositoryNames)
	}

	var rows []image.NeverPulledSummary
	err := q.Group("i.repository_name, r.region").
		Order("image_count DESC, i.repository_name ASC").
		Scan(&rows).Error
	return rows, err
}

// NeverPulledImages lists the never-pulled images of one repository. An empty
// region matches any region.
func (r *DBImageRepo) NeverPulledImages(ctx context.Context, repositoryName, region string) ([]image.Image, error) {
	q := r.db.WithContext(ctx).
		Table("images AS i").
		Select("i.*").
		Joins("JOIN repositories r ON r.repository_name = i.repository_name").
		Where(neverPulled).
		Where("i.repository_name = ?", repositoryName)
	if region != "" {
		q = q.Where("r.region = ?", region)
	}

	var imgs []image.Image
	err := q.Order("i.id ASC").Find(&imgs).Error
	return imgs, err
}

// TagsByRepository collects every tag of every image, keyed by repository.
// An empty name means all repositories.
func (r *DBImageRepo) TagsByRepository(ctx context.Context, repositoryName string) (map[string][]string, error) {
	q := r.db.WithContext(ctx).Model(&image.Image{}).Select("repository_name, image_tags")
	if repositoryName != "" {
		q = q.Where("repository_name = ?", repositoryName)
	}

	var rows []struct {
		RepositoryName string
		ImageTags      string
	}
	if err := q.Order("repository_name ASC, id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	tags := make(map[string][]string)
	for _, row := range rows {
		if _, ok := tags[row.RepositoryName]; !ok {
			tags[row.RepositoryName] = []string{}
		}
		tags[row.RepositoryName] = append(tags[row.RepositoryName], image.SplitTags(row.ImageTags)...)
	}
	return tags, nil
}

func (r *DBImageRepo) WithTx(tx *gorm.DB) ImageRepo {
	if tx == nil {
		return r
	}
	return &DBImageRepo{
		db: tx,
	}
}
