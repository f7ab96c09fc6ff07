package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/linskybing/regscan/internal/application"
	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/registry"
	"github.com/linskybing/regscan/internal/registry/mock_registry"
	"github.com/linskybing/regscan/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// spyImageRepo records every local delete, including those made inside transactions.
type spyImageRepo struct {
	repository.ImageRepo
	deletes *[][]string
}

func (s *spyImageRepo) DeleteImages(ctx context.Context, name string, digests []string) (int64, error) {
	*s.deletes = append(*s.deletes, digests)
	return s.ImageRepo.DeleteImages(ctx, name, digests)
}

func (s *spyImageRepo) WithTx(tx *gorm.DB) repository.ImageRepo {
	return &spyImageRepo{ImageRepo: s.ImageRepo.WithTx(tx), deletes: s.deletes}
}

type confirmFunc func([]image.NeverPulledSummary) (bool, error)

func (f confirmFunc) Confirm(plan []image.NeverPulledSummary) (bool, error) { return f(plan) }

func TestCleanupDeletesInBatches(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	digests := seedNeverPulled(t, repos, "app", "us-east-1", 150)
	pulled := "2024-05-01T00:00:00.000Z"
	require.NoError(t, repos.Image.Upsert(ctx, &image.Image{RepositoryName: "app", ImageDigest: "sha256:pulled", LastRecordedPullTime: &pulled}))

	var deletes [][]string
	repos.Image = &spyImageRepo{ImageRepo: repos.Image, deletes: &deletes}

	ctrl := gomock.NewController(t)
	client := mock_registry.NewMockClient(ctrl)
	gomock.InOrder(
		client.EXPECT().DeleteImages(gomock.Any(), "prod", "us-east-1", "app", digests[:100]).Return(&registry.DeleteResult{
			Deleted:  digests[:99],
			Failures: []registry.DeleteFailure{{Digest: digests[99], Code: "ImageReferencedByManifestList", Reason: "in use"}},
		}, nil),
		client.EXPECT().DeleteImages(gomock.Any(), "prod", "us-east-1", "app", digests[100:]).Return(&registry.DeleteResult{
			Deleted: digests[100:],
		}, nil),
	)

	svc := application.NewCleanupService(repos, client)
	plan, err := svc.Plan(ctx, nil)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.EqualValues(t, 150, plan[0].ImageCount)

	res, err := svc.Execute(ctx, "prod", plan)
	require.NoError(t, err)
	assert.Equal(t, 149, res.Deleted)
	assert.Equal(t, 1, res.Failed)
	assert.EqualValues(t, 149, res.LocalDeleted)

	require.Len(t, deletes, 2)
	assert.Len(t, deletes[0], 99)
	assert.NotContains(t, deletes[0], digests[99])
	assert.Len(t, deletes[1], 50)

	left, err := repos.Image.FindByRepository(ctx, "app")
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, digests[99], left[0].ImageDigest)
	assert.Equal(t, "sha256:pulled", left[1].ImageDigest)

	recs, err := repos.Error.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].ErrorMessage, digests[99])
}

func TestCleanupSkipsRepositoryOnRemoteFailure(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedNeverPulled(t, repos, "a", "us-east-1", 3)
	seedNeverPulled(t, repos, "b", "eu-west-1", 2)

	ctrl := gomock.NewController(t)
	client := mock_registry.NewMockClient(ctrl)
	client.EXPECT().DeleteImages(gomock.Any(), "", "us-east-1", "a", gomock.Any()).
		Return(nil, &registry.TransportError{Op: "delete images", Err: errors.New("denied")})
	client.EXPECT().DeleteImages(gomock.Any(), "", "eu-west-1", "b", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, _ string, d []string) (*registry.DeleteResult, error) {
			return &registry.DeleteResult{Deleted: d}, nil
		})

	svc := application.NewCleanupService(repos, client)
	plan, err := svc.Plan(ctx, nil)
	require.NoError(t, err)
	res, err := svc.Execute(ctx, "", plan)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Deleted)
	assert.Equal(t, 3, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "denied")

	left, err := repos.Image.FindByRepository(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, left, 3)
	left, err = repos.Image.FindByRepository(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, left)

	n, err := repos.Error.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCleanupAbortsOnCredentialError(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedNeverPulled(t, repos, "a", "us-east-1", 2)
	seedNeverPulled(t, repos, "b", "us-east-1", 1)

	ctrl := gomock.NewController(t)
	client := mock_registry.NewMockClient(ctrl)
	client.EXPECT().DeleteImages(gomock.Any(), "gone", "us-east-1", "a", gomock.Any()).
		Return(nil, &registry.CredentialError{Op: "delete images", Profile: "gone", Err: errors.New("no profile")})

	svc := application.NewCleanupService(repos, client)
	plan, err := svc.Plan(ctx, nil)
	require.NoError(t, err)
	_, err = svc.Execute(ctx, "gone", plan)
	var cerr *registry.CredentialError
	assert.ErrorAs(t, err, &cerr)
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	ctrl := gomock.NewController(t)
	client := mock_registry.NewMockClient(ctrl)
	svc := application.NewCleanupService(repos, client)

	never := confirmFunc(func([]image.NeverPulledSummary) (bool, error) {
		t.Fatal("confirmation asked for an empty plan")
		return false, nil
	})
	_, err := svc.Suggest(ctx, "", nil, never)
	assert.ErrorIs(t, err, application.ErrNothingToDelete)

	seedNeverPulled(t, repos, "a", "us-east-1", 1)
	seedNeverPulled(t, repos, "b", "us-east-1", 1)

	var asked []image.NeverPulledSummary
	res, err := svc.Suggest(ctx, "", []string{"b"}, confirmFunc(func(plan []image.NeverPulledSummary) (bool, error) {
		asked = plan
		return false, nil
	}))
	require.NoError(t, err)
	assert.False(t, res.Confirmed)
	require.Len(t, asked, 1)
	assert.Equal(t, "b", asked[0].RepositoryName)

	client.EXPECT().DeleteImages(gomock.Any(), "", "us-east-1", "b", []string{digestFor("b", 0)}).
		Return(&registry.DeleteResult{Deleted: []string{digestFor("b", 0)}}, nil)
	res, err = svc.Suggest(ctx, "", []string{"b"}, confirmFunc(func([]image.NeverPulledSummary) (bool, error) {
		return true, nil
	}))
	require.NoError(t, err)
	assert.True(t, res.Confirmed)
	assert.Equal(t, 1, res.Deleted)
}
