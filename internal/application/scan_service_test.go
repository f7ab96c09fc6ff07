package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/linskybing/regscan/internal/application"
	"github.com/linskybing/regscan/internal/domain/scan"
	"github.com/linskybing/regscan/internal/progress"
	"github.com/linskybing/regscan/internal/registry/mock_registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanServiceRejectsConcurrentScan(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	ctrl := gomock.NewController(t)
	client := mock_registry.NewMockClient(ctrl)
	pager := mock_registry.NewMockRepositoryPager(ctrl)

	release := make(chan struct{})
	client.EXPECT().ListRepositories(gomock.Any(), "prod", "us-east-1").Return(pager, nil)
	pager.EXPECT().More().DoAndReturn(func() bool {
		<-release
		return false
	})

	svc := application.NewScanService(repos, application.NewScanner(client, repos, progress.NewBus()))
	first, err := svc.Start(ctx, application.ScanRequest{Profile: "prod", Region: "us-east-1"})
	require.NoError(t, err)
	assert.Equal(t, scan.StatusPending, first.Status)
	assert.True(t, svc.Running())

	_, err = svc.Start(ctx, application.ScanRequest{Profile: "prod", Region: "us-east-1"})
	assert.ErrorIs(t, err, application.ErrScanInProgress)

	close(release)
	svc.Wait()
	assert.False(t, svc.Running())

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, scan.StatusSuccess, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Nil(t, got.ErrorMessage)

	list, err := svc.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestScanServiceRecordsFailure(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	ctrl := gomock.NewController(t)
	client := mock_registry.NewMockClient(ctrl)
	client.EXPECT().ListRegions(gomock.Any(), "", "").Return(nil, errors.New("network down"))

	svc := application.NewScanService(repos, application.NewScanner(client, repos, progress.NewBus()))
	rec, err := svc.Start(ctx, application.ScanRequest{})
	require.NoError(t, err)
	svc.Shutdown()

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, scan.StatusError, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "network down")
}
