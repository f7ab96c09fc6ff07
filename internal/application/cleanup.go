package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/metrics"
	"github.com/linskybing/regscan/internal/registry"
	"github.com/linskybing/regscan/internal/repository"
	"github.com/samber/lo"
	"k8s.io/klog/v2"
)

// Confirmer approves a deletion plan before anything is removed.
type Confirmer interface {
	Confirm(plan []image.NeverPulledSummary) (bool, error)
}

// CleanupResult tallies one deletion run.
type CleanupResult struct {
	Confirmed    bool     `json:"confirmed"`
	Repositories int      `json:"repositories"`
	Deleted      int      `json:"deleted"`
	Failed       int      `json:"failed"`
	LocalDeleted int64    `json:"localDeleted"`
	Errors       []string `json:"errors,omitempty"`
}

// CleanupService deletes never-pulled images remotely and from the snapshot.
type CleanupService struct {
	Repos  *repository.Repos
	client registry.Client
}

func NewCleanupService(repos *repository.Repos, client registry.Client) *CleanupService {
	return &CleanupService{
		Repos:  repos,
		client: client,
	}
}

// Plan lists the repositories holding never-pulled images. A non-empty name
// list restricts the plan to those repositories.
func (s *CleanupService) Plan(ctx context.Context, names []string) ([]image.NeverPulledSummary, error) {
	plan, err := s.Repos.Image.NeverPulledByRepository(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("plan cleanup: %w", err)
	}
	return plan, nil
}

// Suggest plans, asks for confirmation and then executes. It returns
// ErrNothingToDelete for an empty plan and an unconfirmed result when declined.
func (s *CleanupService) Suggest(ctx context.Context, profile string, names []string, confirm Confirmer) (*CleanupResult, error) {
	plan, err := s.Plan(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		return nil, ErrNothingToDelete
	}
	ok, err := confirm.Confirm(plan)
	if err != nil {
		return nil, fmt.Errorf("confirm cleanup: %w", err)
	}
	if !ok {
		klog.Info("Deletion cancelled")
		return &CleanupResult{}, nil
	}
	return s.Execute(ctx, profile, plan)
}

// Execute deletes every never-pulled image of the planned repositories in
// batches of registry.MaxDeleteBatch. Each batch is removed remotely first,
// then locally minus the digests the registry refused. A failed batch skips the
// rest of its repository; credential failures abort the run.
func (s *CleanupService) Execute(ctx context.Context, profile string, plan []image.NeverPulledSummary) (*CleanupResult, error) {
	res := &CleanupResult{Confirmed: true}
	for _, p := range plan {
		if err := s.cleanRepository(ctx, profile, p, res); err != nil {
			return res, err
		}
		res.Repositories++
	}
	metrics.ImagesDeleted(res.Deleted, res.Failed)
	klog.Infof("Deleted %d images (%d failed) across %d repositories", res.Deleted, res.Failed, res.Repositories)
	return res, nil
}

func (s *CleanupService) cleanRepository(ctx context.Context, profile string, p image.NeverPulledSummary, res *CleanupResult) error {
	imgs, err := s.Repos.Image.NeverPulledImages(ctx, p.RepositoryName, p.Region)
	if err != nil {
		return fmt.Errorf("load never-pulled images of %s: %w", p.RepositoryName, err)
	}
	digests := lo.Map(imgs, func(img image.Image, _ int) string { return img.ImageDigest })

	for _, batch := range lo.Chunk(digests, registry.MaxDeleteBatch) {
		klog.Infof("Deleting %d images from %s (%s)", len(batch), p.RepositoryName, p.Region)
		out, err := s.client.DeleteImages(ctx, profile, p.Region, p.RepositoryName, batch)
		if err != nil {
			var cerr *registry.CredentialError
			if errors.As(err, &cerr) {
				return err
			}
			res.Failed += len(batch)
			return s.recordFailure(ctx, p.RepositoryName, fmt.Errorf("delete images: %w", err), res)
		}

		failed := out.FailedDigests()
		removed := lo.Without(batch, failed...)
		res.Deleted += len(removed)
		res.Failed += len(failed)

		var local int64
		err = s.Repos.ExecTx(func(tx *repository.Repos) error {
			n, err := tx.Image.DeleteImages(ctx, p.RepositoryName, removed)
			if err != nil {
				return err
			}
			local = n
			if len(failed) > 0 {
				msg := describeFailures(out.Failures)
				klog.Errorf("Repository %q: %s", p.RepositoryName, msg)
				_, err = tx.Error.Append(ctx, p.RepositoryName, msg)
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("remove deleted images of %s from store: %w", p.RepositoryName, err)
		}
		res.LocalDeleted += local
	}
	return nil
}

func (s *CleanupService) recordFailure(ctx context.Context, repositoryName string, cause error, res *CleanupResult) error {
	klog.Errorf("Repository %q: %v", repositoryName, cause)
	res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", repositoryName, cause))
	if _, err := s.Repos.Error.Append(ctx, repositoryName, cause.Error()); err != nil {
		return fmt.Errorf("record error for %s: %w", repositoryName, err)
	}
	return nil
}

func describeFailures(failures []registry.DeleteFailure) string {
	parts := lo.Map(failures, func(f registry.DeleteFailure, _ int) string {
		return fmt.Sprintf("%s (%s: %s)", f.Digest, f.Code, f.Reason)
	})
	return "delete images failed for " + strings.Join(parts, ", ")
}
