package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/domain/repo"
	"github.com/linskybing/regscan/internal/domain/report"
	"github.com/linskybing/regscan/internal/repository"
	"gorm.io/gorm"
)

var ErrRepositoryNotFound = errors.New("repository not found")

// InventoryService answers read-only questions about the local snapshot.
type InventoryService struct {
	Repos   *repository.Repos
	grouper *image.TagGrouper
	topN    int
}

func NewInventoryService(repos *repository.Repos, grouper *image.TagGrouper, topN int) *InventoryService {
	if grouper == nil {
		grouper, _ = image.NewTagGrouper(nil)
	}
	return &InventoryService{
		Repos:   repos,
		grouper: grouper,
		topN:    topN,
	}
}

func (s *InventoryService) ListRepositories(ctx context.Context) ([]repo.RepositoryWithCount, error) {
	return s.Repos.Repository.ListWithImageCount(ctx)
}

func (s *InventoryService) GetRepository(ctx context.Context, name string) (*report.RepositoryDetail, error) {
	r, err := s.Repos.Repository.FindByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRepositoryNotFound
	}
	if err != nil {
		return nil, err
	}
	imgs, err := s.Repos.Image.FindByRepository(ctx, name)
	if err != nil {
		return nil, err
	}
	return &report.RepositoryDetail{Repository: *r, Images: imgs}, nil
}

// Stats gathers totals and the top-N rankings. A limit of zero or less uses
// the service default.
func (s *InventoryService) Stats(ctx context.Context, limit int) (*report.Stats, error) {
	if limit <= 0 {
		limit = s.topN
	}
	st := &report.Stats{}
	var err error

	if st.Repositories, err = s.Repos.Repository.Count(ctx); err != nil {
		return nil, fmt.Errorf("count repositories: %w", err)
	}
	if st.Images, err = s.Repos.Image.Count(ctx); err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}
	if st.TotalSize, err = s.Repos.Image.TotalSize(ctx); err != nil {
		return nil, fmt.Errorf("sum image sizes: %w", err)
	}
	if st.TopBySize, err = s.Repos.Image.TopBySize(ctx, limit); err != nil {
		return nil, fmt.Errorf("rank by size: %w", err)
	}
	if st.TopByImageCount, err = s.Repos.Image.TopByImageCount(ctx, limit); err != nil {
		return nil, fmt.Errorf("rank by image count: %w", err)
	}
	if st.NeverPulled, err = s.Repos.Image.NeverPulledByRepository(ctx, nil); err != nil {
		return nil, fmt.Errorf("find never-pulled images: %w", err)
	}
	if st.ErrorsRecorded, err = s.Repos.Error.Count(ctx); err != nil {
		return nil, fmt.Errorf("count errors: %w", err)
	}

	for _, np := range st.NeverPulled {
		st.NeverPulledSize += np.ImageSizeInBytes
	}
	st.MonthlySavings = report.MonthlyCost(st.NeverPulledSize)

	last, err := s.Repos.Scan.Latest(ctx)
	switch {
	case err == nil:
		st.LastScan = last
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load last scan: %w", err)
	}
	return st, nil
}

// Analyse groups the tags of one repository, or all when name is empty.
func (s *InventoryService) Analyse(ctx context.Context, name string) ([]image.TagGroupCount, error) {
	if name != "" {
		if _, err := s.Repos.Repository.FindByName(ctx, name); errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRepositoryNotFound
		} else if err != nil {
			return nil, err
		}
	}
	tags, err := s.Repos.Image.TagsByRepository(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.grouper.GroupByRepository(tags), nil
}

// NeverPulled summarises never-pulled images, optionally for the named repositories only.
func (s *InventoryService) NeverPulled(ctx context.Context, names []string) ([]image.NeverPulledSummary, error) {
	return s.Repos.Image.NeverPulledByRepository(ctx, names)
}

func (s *InventoryService) TopN() int {
	return s.topN
}
